package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
)

// academyDoc é o formato da academia na coleção remota.
type academyDoc struct {
	ID        string `json:"$id,omitempty"`
	CreatedAt string `json:"$createdAt,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	OwnerID   string `json:"ownerId"`
}

type AcademyRepository struct {
	Client       *appwrite.Client
	DatabaseID   string
	CollectionID string
}

func NewAcademyRepository(client *appwrite.Client, databaseID, collectionID string) *AcademyRepository {
	return &AcademyRepository{
		Client:       client,
		DatabaseID:   databaseID,
		CollectionID: collectionID,
	}
}

// FindByOwner devolve a academia do usuário ou nil quando não existe.
func (r *AcademyRepository) FindByOwner(ctx context.Context, ownerID string) (*entity.Academy, error) {
	list, err := r.Client.ListDocuments(ctx, r.DatabaseID, r.CollectionID,
		appwrite.QueryEqual("ownerId", ownerID),
		appwrite.QueryLimit(1),
	)
	if err != nil {
		return nil, err
	}
	if len(list.Documents) == 0 {
		return nil, nil
	}
	return decodeAcademy(list.Documents[0])
}

func (r *AcademyRepository) FindByID(ctx context.Context, id string) (*entity.Academy, error) {
	raw, err := r.Client.GetDocument(ctx, r.DatabaseID, r.CollectionID, id)
	if err != nil {
		return nil, err
	}
	return decodeAcademy(raw)
}

func (r *AcademyRepository) Create(ctx context.Context, academy *entity.Academy) (*entity.Academy, error) {
	doc := academyDoc{
		Name:    academy.Name,
		Phone:   academy.Phone,
		Email:   academy.Email,
		Address: academy.Address,
		OwnerID: academy.OwnerID,
	}

	raw, err := r.Client.CreateDocument(ctx, r.DatabaseID, r.CollectionID, uuid.NewString(), doc)
	if err != nil {
		return nil, err
	}
	return decodeAcademy(raw)
}

// Update grava apenas os dados de contato; ownerId não muda de mãos.
func (r *AcademyRepository) Update(ctx context.Context, academy *entity.Academy) error {
	fields := map[string]any{
		"name":    academy.Name,
		"phone":   academy.Phone,
		"email":   academy.Email,
		"address": academy.Address,
	}
	return r.Client.UpdateDocument(ctx, r.DatabaseID, r.CollectionID, academy.ID, fields)
}

func decodeAcademy(raw json.RawMessage) (*entity.Academy, error) {
	var doc academyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("documento de academia ilegível: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, doc.CreatedAt)

	return &entity.Academy{
		ID:        doc.ID,
		Name:      doc.Name,
		Phone:     doc.Phone,
		Email:     doc.Email,
		Address:   doc.Address,
		OwnerID:   doc.OwnerID,
		CreatedAt: createdAt,
	}, nil
}
