package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
)

// MockAuthGateway - Mock para o backend de autenticação
type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Register(ctx context.Context, userID, email, password, name string) (*appwrite.User, error) {
	args := m.Called(ctx, userID, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appwrite.User), args.Error(1)
}

func (m *MockAuthGateway) CreateEmailSession(ctx context.Context, email, password string) (*appwrite.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appwrite.Session), args.Error(1)
}

func (m *MockAuthGateway) GetAccount(ctx context.Context, sessionSecret string) (*appwrite.User, error) {
	args := m.Called(ctx, sessionSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appwrite.User), args.Error(1)
}

func (m *MockAuthGateway) DeleteSession(ctx context.Context, sessionSecret string) error {
	args := m.Called(ctx, sessionSecret)
	return args.Error(0)
}

func newSessionFixture(t *testing.T) (*MockAuthGateway, *MockAcademyRepository, *MockLeadRepository, *SessionManager) {
	t.Helper()
	auth := new(MockAuthGateway)
	academyRepo := new(MockAcademyRepository)
	leadRepo := new(MockLeadRepository)

	academies := NewAcademyService(academyRepo, zerolog.Nop())
	newStore := func() *LeadStore { return NewLeadStore(leadRepo, nil, zerolog.Nop()) }
	manager := NewSessionManager(auth, academies, newStore, zerolog.Nop())
	return auth, academyRepo, leadRepo, manager
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("abre sessão com store escopada e primeira busca", func(t *testing.T) {
		auth, academyRepo, leadRepo, manager := newSessionFixture(t)

		auth.On("CreateEmailSession", ctx, "dono@academia.com", "senha123").
			Return(&appwrite.Session{ID: "s1", UserID: "u1", Secret: "secret-1"}, nil).Once()
		auth.On("GetAccount", ctx, "secret-1").
			Return(&appwrite.User{ID: "u1", Name: "Dono", Email: "dono@academia.com"}, nil).Once()
		academyRepo.On("FindByOwner", ctx, "u1").
			Return(&entity.Academy{ID: "ac1", Name: "Academia Centro", OwnerID: "u1"}, nil).Once()
		leadRepo.On("List", ctx, "ac1", FetchLimit).Return([]LeadDocument{
			{ID: "l1", Name: "João", CreatedAt: time.Now().UTC().Format(time.RFC3339)},
		}, nil).Once()

		sess, err := manager.Login(ctx, "dono@academia.com", "senha123")
		assert.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.Equal(t, "u1", sess.User.ID)
		assert.Equal(t, "ac1", sess.Academy.ID)
		assert.Equal(t, "ac1", sess.Store.AcademyID())
		assert.Len(t, sess.Store.Leads(), 1)

		got, ok := manager.Get(sess.Token)
		assert.True(t, ok)
		assert.Same(t, sess, got)
	})

	t.Run("credenciais inválidas", func(t *testing.T) {
		auth, _, _, manager := newSessionFixture(t)

		auth.On("CreateEmailSession", ctx, "dono@academia.com", "errada").
			Return(nil, errors.New("401")).Once()

		_, err := manager.Login(ctx, "dono@academia.com", "errada")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("busca inicial falhando não impede o login", func(t *testing.T) {
		auth, academyRepo, leadRepo, manager := newSessionFixture(t)

		auth.On("CreateEmailSession", ctx, "dono@academia.com", "senha123").
			Return(&appwrite.Session{Secret: "secret-1"}, nil).Once()
		auth.On("GetAccount", ctx, "secret-1").
			Return(&appwrite.User{ID: "u1"}, nil).Once()
		academyRepo.On("FindByOwner", ctx, "u1").
			Return(&entity.Academy{ID: "ac1", OwnerID: "u1"}, nil).Once()
		leadRepo.On("List", ctx, "ac1", FetchLimit).Return(nil, errors.New("rede fora")).Once()

		sess, err := manager.Login(ctx, "dono@academia.com", "senha123")
		assert.NoError(t, err)
		assert.Empty(t, sess.Store.Leads())
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	auth, academyRepo, leadRepo, manager := newSessionFixture(t)

	auth.On("CreateEmailSession", ctx, "dono@academia.com", "senha123").
		Return(&appwrite.Session{Secret: "secret-1"}, nil).Once()
	auth.On("GetAccount", ctx, "secret-1").
		Return(&appwrite.User{ID: "u1"}, nil).Once()
	academyRepo.On("FindByOwner", ctx, "u1").
		Return(&entity.Academy{ID: "ac1", OwnerID: "u1"}, nil).Once()
	leadRepo.On("List", ctx, "ac1", FetchLimit).Return([]LeadDocument{}, nil).Once()

	sess, err := manager.Login(ctx, "dono@academia.com", "senha123")
	assert.NoError(t, err)

	auth.On("DeleteSession", ctx, "secret-1").Return(nil).Once()
	manager.Logout(ctx, sess.Token)

	_, ok := manager.Get(sess.Token)
	assert.False(t, ok)
	// Store desmontada: escopo e coleção zerados.
	assert.Empty(t, sess.Store.AcademyID())
	assert.Empty(t, sess.Store.Leads())
	auth.AssertExpectations(t)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("cadastro bem-sucedido já loga", func(t *testing.T) {
		auth, academyRepo, leadRepo, manager := newSessionFixture(t)

		auth.On("Register", ctx, mock.Anything, "novo@academia.com", "senha123", "Novo Dono").
			Return(&appwrite.User{ID: "u2"}, nil).Once()
		auth.On("CreateEmailSession", ctx, "novo@academia.com", "senha123").
			Return(&appwrite.Session{Secret: "secret-2"}, nil).Once()
		auth.On("GetAccount", ctx, "secret-2").
			Return(&appwrite.User{ID: "u2", Name: "Novo Dono", Email: "novo@academia.com"}, nil).Once()
		academyRepo.On("FindByOwner", ctx, "u2").Return(nil, nil).Once()
		academyRepo.On("Create", ctx, mock.Anything).
			Return(&entity.Academy{ID: "ac2", OwnerID: "u2"}, nil).Once()
		leadRepo.On("List", ctx, "ac2", FetchLimit).Return([]LeadDocument{}, nil).Once()

		sess, err := manager.Register(ctx, "Novo Dono", "novo@academia.com", "senha123")
		assert.NoError(t, err)
		assert.Equal(t, "ac2", sess.Academy.ID)
	})

	t.Run("cadastro recusado", func(t *testing.T) {
		auth, _, _, manager := newSessionFixture(t)

		auth.On("Register", ctx, mock.Anything, "repetido@academia.com", "senha123", "Dono").
			Return(nil, errors.New("409 user exists")).Once()

		_, err := manager.Register(ctx, "Dono", "repetido@academia.com", "senha123")
		assert.True(t, IsDomainError(err))
	})
}
