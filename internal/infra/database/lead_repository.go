package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
	"github.com/tatamedev/tatame-crm/internal/usecase"
)

// LeadRepository é a coleção de leads no banco de documentos hospedado.
type LeadRepository struct {
	Client       *appwrite.Client
	DatabaseID   string
	CollectionID string
}

func NewLeadRepository(client *appwrite.Client, databaseID, collectionID string) *LeadRepository {
	return &LeadRepository{
		Client:       client,
		DatabaseID:   databaseID,
		CollectionID: collectionID,
	}
}

func (r *LeadRepository) List(ctx context.Context, academyID string, limit int) ([]usecase.LeadDocument, error) {
	list, err := r.Client.ListDocuments(ctx, r.DatabaseID, r.CollectionID,
		appwrite.QueryEqual("academyId", academyID),
		appwrite.QueryLimit(limit),
		appwrite.QueryOrderDesc("$createdAt"),
	)
	if err != nil {
		return nil, err
	}

	docs := make([]usecase.LeadDocument, 0, len(list.Documents))
	for _, raw := range list.Documents {
		var doc usecase.LeadDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("documento de lead ilegível: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Create gera o id do documento no cliente (equivalente ao ID.unique do
// SDK) e devolve o documento com $id e $createdAt atribuídos.
func (r *LeadRepository) Create(ctx context.Context, doc usecase.LeadDocument) (usecase.LeadDocument, error) {
	raw, err := r.Client.CreateDocument(ctx, r.DatabaseID, r.CollectionID, uuid.NewString(), doc)
	if err != nil {
		return usecase.LeadDocument{}, err
	}

	var created usecase.LeadDocument
	if err := json.Unmarshal(raw, &created); err != nil {
		return usecase.LeadDocument{}, fmt.Errorf("documento criado ilegível: %w", err)
	}
	return created, nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.Client.UpdateDocument(ctx, r.DatabaseID, r.CollectionID, id, fields)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	return r.Client.DeleteDocument(ctx, r.DatabaseID, r.CollectionID, id)
}
