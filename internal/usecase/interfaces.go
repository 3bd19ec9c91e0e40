package usecase

import (
	"context"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
	"github.com/tatamedev/tatame-crm/internal/infra/queue"
)

// LeadRepository é o banco de documentos remoto visto pela store.
// List devolve os documentos da academia do mais novo para o mais velho.
// Create recebe o documento sem $id/$createdAt e devolve o documento
// completo; Update nunca recebe campos de posse do repositório.
type LeadRepository interface {
	List(ctx context.Context, academyID string, limit int) ([]LeadDocument, error)
	Create(ctx context.Context, doc LeadDocument) (LeadDocument, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// AcademyRepository resolve a academia de um usuário (no máximo uma).
// FindByOwner devolve nil sem erro quando não existe.
type AcademyRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (*entity.Academy, error)
	FindByID(ctx context.Context, id string) (*entity.Academy, error)
	Create(ctx context.Context, academy *entity.Academy) (*entity.Academy, error)
	Update(ctx context.Context, academy *entity.Academy) error
}

// NotificationProducer publica eventos do funil para o worker de
// notificações (WhatsApp/email). Publicação é sempre best-effort.
type NotificationProducer interface {
	PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error
}

// AuthGateway é o serviço de contas do backend hospedado.
type AuthGateway interface {
	Register(ctx context.Context, userID, email, password, name string) (*appwrite.User, error)
	CreateEmailSession(ctx context.Context, email, password string) (*appwrite.Session, error)
	GetAccount(ctx context.Context, sessionSecret string) (*appwrite.User, error)
	DeleteSession(ctx context.Context, sessionSecret string) error
}
