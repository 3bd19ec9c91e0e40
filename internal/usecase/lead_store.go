package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/queue"
)

const (
	// FetchLimit é o teto fixo de documentos por busca (sem paginação).
	FetchLimit = 500

	// DefaultRecentWindow protege registros criados localmente contra um
	// fetch defasado: um lead que ainda não aparece na listagem remota é
	// mantido se foi criado dentro dessa janela. Ajustável por instância
	// via RecentWindow.
	DefaultRecentWindow = 2 * time.Minute
)

// LeadStore é a fonte única da coleção de leads da academia ativa.
// Toda mutação vai primeiro ao repositório remoto e só é aplicada em
// memória quando o remoto confirma — uma falha nunca deixa o estado
// local parcialmente atualizado.
type LeadStore struct {
	mu       sync.Mutex
	repo     LeadRepository
	producer NotificationProducer // opcional; publicação é best-effort

	academyID string
	leads     []entity.Lead
	loading   bool

	// RecentWindow é a janela de reconciliação (ver DefaultRecentWindow).
	RecentWindow time.Duration

	now func() time.Time
	log zerolog.Logger
}

func NewLeadStore(repo LeadRepository, producer NotificationProducer, logger zerolog.Logger) *LeadStore {
	return &LeadStore{
		repo:         repo,
		producer:     producer,
		RecentWindow: DefaultRecentWindow,
		now:          time.Now,
		log:          logger,
	}
}

// SetAcademyID troca o escopo ativo. Não dispara busca; quem chama
// decide quando buscar.
func (s *LeadStore) SetAcademyID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.academyID = id
}

// Reset limpa escopo e coleção (teardown de sessão no logout).
func (s *LeadStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.academyID = ""
	s.leads = nil
	s.loading = false
}

func (s *LeadStore) AcademyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.academyID
}

func (s *LeadStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Leads devolve uma cópia da coleção atual, do mais novo para o mais velho.
func (s *LeadStore) Leads() []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// FetchLeads busca até FetchLimit documentos da academia ativa e
// reconcilia com o estado local. Falha remota é não-destrutiva: a
// coleção anterior permanece intacta.
func (s *LeadStore) FetchLeads(ctx context.Context) error {
	s.mu.Lock()
	if s.academyID == "" {
		s.mu.Unlock()
		return ErrNoAcademyScope
	}
	academyID := s.academyID
	s.loading = true
	s.mu.Unlock()

	docs, err := s.repo.List(ctx, academyID, FetchLimit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.log.Error().Err(err).Str("academy_id", academyID).Msg("fetchLeads falhou, estado anterior mantido")
		return errRemoteFailure("fetchLeads")
	}
	if s.academyID != academyID {
		// Escopo trocou durante a busca; resultado defasado é descartado.
		return nil
	}

	fetched := make([]entity.Lead, 0, len(docs))
	for _, doc := range docs {
		fetched = append(fetched, DecodeLead(doc))
	}
	s.leads = s.reconcile(fetched)
	return nil
}

// reconcile aplica a política de merge: o resultado remoto é
// autoritativo, exceto para registros locais que ainda não aparecem nele
// e foram criados dentro da janela recente — esses continuam na frente.
func (s *LeadStore) reconcile(fetched []entity.Lead) []entity.Lead {
	seen := make(map[string]struct{}, len(fetched))
	for _, l := range fetched {
		seen[l.ID] = struct{}{}
	}

	cutoff := s.now().Add(-s.RecentWindow)
	var pending []entity.Lead
	for _, l := range s.leads {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		if l.CreatedAt.After(cutoff) {
			pending = append(pending, l)
		}
	}

	return append(pending, fetched...)
}

// AddLead cria o lead no remoto e insere a versão confirmada (com id e
// createdAt do repositório) na frente da coleção.
func (s *LeadStore) AddLead(ctx context.Context, lead entity.Lead) (entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.academyID == "" {
		return entity.Lead{}, ErrNoAcademyScope
	}
	if err := lead.Validate(); err != nil {
		return entity.Lead{}, &DomainError{Code: "invalid_lead", Message: err.Error()}
	}

	created, err := s.repo.Create(ctx, EncodeLead(lead, s.academyID))
	if err != nil {
		s.log.Error().Err(err).Str("name", lead.Name).Msg("addLead falhou")
		return entity.Lead{}, errRemoteFailure("addLead")
	}

	// O registro local preserva os campos como o chamador mandou; só id e
	// createdAt vêm do repositório.
	newLead := lead
	newLead.ID = created.ID
	newLead.CreatedAt = parseCreatedAt(created.CreatedAt, created.ID)
	if newLead.Notes == nil {
		newLead.Notes = []entity.Note{}
	}

	s.leads = append([]entity.Lead{newLead}, s.leads...)
	s.notifyStatus(ctx, "", newLead)
	return newLead, nil
}

// UpdateLead aplica um patch parcial: valida a transição de status,
// grava no remoto só os campos alterados (com os auxiliares empacotados
// em notes) e, no sucesso, aplica o mesmo merge parcial em memória.
func (s *LeadStore) UpdateLead(ctx context.Context, id string, patch LeadPatch) (entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return entity.Lead{}, ErrLeadNotFound
	}
	current := s.leads[idx]

	if patch.Status != nil {
		if !entity.ValidStatus(*patch.Status) {
			return entity.Lead{}, errInvalidStatus(*patch.Status)
		}
		from := current.Status
		if from == "" {
			from = entity.StatusNew
		}
		if !entity.CanTransition(from, *patch.Status) {
			return entity.Lead{}, errInvalidTransition(from, *patch.Status)
		}
	}

	merged := patch.apply(current)
	fields := patch.remoteFields(merged)
	if len(fields) == 0 {
		return current, nil
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		s.log.Error().Err(err).Str("lead_id", id).Msg("updateLead falhou, estado local mantido")
		return entity.Lead{}, errRemoteFailure("updateLead")
	}

	s.leads[idx] = merged
	s.notifyStatus(ctx, current.Status, merged)
	return merged, nil
}

// DeleteLead remove no remoto e, confirmado, tira da coleção local.
func (s *LeadStore) DeleteLead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Str("lead_id", id).Msg("deleteLead falhou")
		return errRemoteFailure("deleteLead")
	}

	if idx := s.indexOf(id); idx >= 0 {
		s.leads = append(s.leads[:idx], s.leads[idx+1:]...)
	}
	return nil
}

// ImportResult resume uma importação de planilha.
type ImportResult struct {
	Imported []entity.Lead
	Skipped  int
}

// ImportLeads cria uma linha por vez (uma requisição em voo, na ordem da
// planilha). Linha que falha é pulada com log e não aborta as demais; o
// lote bem-sucedido entra na frente da coleção ao final.
func (s *LeadStore) ImportLeads(ctx context.Context, rows []entity.Lead) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.academyID == "" {
		return ImportResult{}, ErrNoAcademyScope
	}

	var result ImportResult
	for _, row := range rows {
		if row.Type == "" {
			row.Type = entity.TypeAdult
		}
		if row.Origin == "" {
			row.Origin = entity.OriginSpreadsheet
		}
		if row.Status == "" {
			row.Status = entity.StatusNew
		}
		row.Notes = []entity.Note{}

		created, err := s.repo.Create(ctx, EncodeLead(row, s.academyID))
		if err != nil {
			s.log.Warn().Err(err).Str("name", row.Name).Msg("linha da planilha ignorada")
			result.Skipped++
			continue
		}

		row.ID = created.ID
		row.CreatedAt = parseCreatedAt(created.CreatedAt, created.ID)
		result.Imported = append(result.Imported, row)
	}

	if len(result.Imported) > 0 {
		batch := make([]entity.Lead, 0, len(result.Imported)+len(s.leads))
		batch = append(batch, result.Imported...)
		s.leads = append(batch, s.leads...)
	}
	return result, nil
}

// GetLeadByID é uma consulta síncrona à coleção em memória.
func (s *LeadStore) GetLeadByID(id string) (entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.leads[idx], nil
	}
	return entity.Lead{}, ErrLeadNotFound
}

func (s *LeadStore) indexOf(id string) int {
	for i, l := range s.leads {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// notifyStatus publica eventos do funil após mutação confirmada.
// Falha de publicação é logada e nunca desfaz a mutação.
func (s *LeadStore) notifyStatus(ctx context.Context, prevStatus string, lead entity.Lead) {
	if s.producer == nil {
		return
	}

	payload := queue.LeadEventPayload{
		AcademyID:     s.academyID,
		LeadID:        lead.ID,
		Name:          lead.Name,
		Phone:         lead.Phone,
		ScheduledDate: lead.ScheduledDate,
		ScheduledTime: lead.ScheduledTime,
	}

	switch {
	case lead.Status == entity.StatusScheduled && prevStatus != entity.StatusScheduled && lead.ScheduledDate != "":
		payload.Kind = queue.KindClassConfirmation
	case lead.Status == entity.StatusConverted && prevStatus != entity.StatusConverted:
		payload.Kind = queue.KindEnrollment
	default:
		return
	}

	if err := s.producer.PublishLeadEvent(ctx, payload); err != nil {
		s.log.Warn().Err(err).Str("kind", payload.Kind).Str("lead_id", lead.ID).Msg("evento não publicado")
	}
}
