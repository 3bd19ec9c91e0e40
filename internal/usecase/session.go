package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
)

// Session é o estado de um login: o usuário, a academia resolvida e uma
// LeadStore própria. A store é criada no login e destruída no logout —
// nada de singleton global mutável.
type Session struct {
	Token   string
	User    appwrite.User
	Secret  string // sessão no backend hospedado
	Academy *entity.Academy
	Store   *LeadStore
}

// SessionManager guarda as sessões ativas por token Bearer.
type SessionManager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	auth      AuthGateway
	academies *AcademyService
	newStore  func() *LeadStore
	log       zerolog.Logger
}

func NewSessionManager(auth AuthGateway, academies *AcademyService, newStore func() *LeadStore, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		auth:      auth,
		academies: academies,
		newStore:  newStore,
		log:       logger,
	}
}

// Login autentica no backend, resolve (ou cria) a academia do usuário,
// escopa uma store nova e dispara a primeira busca de leads.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*Session, error) {
	remote, err := m.auth.CreateEmailSession(ctx, email, password)
	if err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("login recusado")
		return nil, ErrInvalidCredentials
	}

	user, err := m.auth.GetAccount(ctx, remote.Secret)
	if err != nil {
		m.log.Error().Err(err).Msg("sessão criada mas conta não resolvida")
		return nil, errRemoteFailure("login")
	}

	academy, err := m.academies.ResolveByOwner(ctx, *user)
	if err != nil {
		return nil, err
	}

	store := m.newStore()
	store.SetAcademyID(academy.ID)
	if err := store.FetchLeads(ctx); err != nil {
		// Busca inicial é conveniência; o login não depende dela.
		m.log.Warn().Err(err).Str("academy_id", academy.ID).Msg("busca inicial de leads falhou")
	}

	sess := &Session{
		Token:   uuid.NewString(),
		User:    *user,
		Secret:  remote.Secret,
		Academy: academy,
		Store:   store,
	}

	m.mu.Lock()
	m.sessions[sess.Token] = sess
	m.mu.Unlock()

	m.log.Info().Str("user_id", user.ID).Str("academy_id", academy.ID).Msg("sessão aberta")
	return sess, nil
}

// Register cria a conta e abre a sessão na sequência (mesmo fluxo do
// cadastro do app).
func (m *SessionManager) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if _, err := m.auth.Register(ctx, uuid.NewString(), email, password, name); err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("cadastro recusado")
		return nil, &DomainError{Code: "registration_failed", Message: "não foi possível criar a conta"}
	}
	return m.Login(ctx, email, password)
}

// Get resolve uma sessão ativa pelo token Bearer.
func (m *SessionManager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	return sess, ok
}

// Logout encerra a sessão remota (best-effort) e desmonta a store.
func (m *SessionManager) Logout(ctx context.Context, token string) {
	m.mu.Lock()
	sess := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if sess == nil {
		return
	}

	if err := m.auth.DeleteSession(ctx, sess.Secret); err != nil {
		m.log.Warn().Err(err).Msg("sessão remota não encerrada")
	}
	sess.Store.Reset()
}
