package usecase

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tatamedev/tatame-crm/internal/entity"
)

// LeadDocument é o formato do lead na coleção remota. O histórico de
// observações e os atributos auxiliares (primeira experiência, faixa,
// kimono/camisa emprestados) viajam empacotados no campo notes — a
// coleção só tem um campo de texto livre disponível e empacotar evita
// migração de schema.
type LeadDocument struct {
	ID        string `json:"$id,omitempty"`
	CreatedAt string `json:"$createdAt,omitempty"`

	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Type          string `json:"type"`
	Origin        string `json:"origin"`
	Status        string `json:"status"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	ParentName    string `json:"parentName"`
	Age           string `json:"age"`
	Notes         string `json:"notes"`
	AcademyID     string `json:"academyId"`
}

// packedNotes é o conteúdo serializado do campo notes no formato atual.
// Dados antigos gravaram o histórico como array puro; ver unpackNotes.
type packedNotes struct {
	History           []entity.Note `json:"history"`
	IsFirstExperience string        `json:"isFirstExperience"`
	Belt              string        `json:"belt"`
	BorrowedKimono    string        `json:"borrowedKimono"`
	BorrowedShirt     string        `json:"borrowedShirt"`
}

func defaultPackedNotes() packedNotes {
	return packedNotes{
		History:           []entity.Note{},
		IsFirstExperience: "Sim",
	}
}

// EncodeLead monta o documento remoto a partir do lead, aplicando os
// defaults de gravação. Campos de posse do repositório ($id, $createdAt)
// nunca são preenchidos aqui.
func EncodeLead(lead entity.Lead, academyID string) LeadDocument {
	doc := LeadDocument{
		Name:          lead.Name,
		Phone:         lead.Phone,
		Type:          lead.Type,
		Origin:        lead.Origin,
		Status:        lead.Status,
		ScheduledDate: lead.ScheduledDate,
		ScheduledTime: lead.ScheduledTime,
		ParentName:    lead.ParentName,
		Age:           lead.Age,
		Notes:         packNotes(lead),
		AcademyID:     academyID,
	}
	if doc.Type == "" {
		doc.Type = entity.TypeAdult
	}
	if doc.Status == "" {
		doc.Status = entity.StatusNew
	}
	return doc
}

// DecodeLead reconstrói o lead a partir do documento remoto.
// Nunca falha: campo notes ilegível vira histórico vazio com defaults.
func DecodeLead(doc LeadDocument) entity.Lead {
	packed := unpackNotes(doc.Notes, doc.ID)

	leadType := doc.Type
	if leadType == "" {
		leadType = entity.TypeAdult
	}

	return entity.Lead{
		ID:                doc.ID,
		Name:              doc.Name,
		Phone:             doc.Phone,
		Type:              leadType,
		Origin:            doc.Origin,
		Status:            doc.Status,
		ScheduledDate:     doc.ScheduledDate,
		ScheduledTime:     doc.ScheduledTime,
		ParentName:        doc.ParentName,
		Age:               doc.Age,
		IsFirstExperience: packed.IsFirstExperience,
		Belt:              packed.Belt,
		BorrowedKimono:    packed.BorrowedKimono,
		BorrowedShirt:     packed.BorrowedShirt,
		Notes:             packed.History,
		CreatedAt:         parseCreatedAt(doc.CreatedAt, doc.ID),
	}
}

func packNotes(lead entity.Lead) string {
	packed := packedNotes{
		History:           lead.Notes,
		IsFirstExperience: lead.IsFirstExperience,
		Belt:              lead.Belt,
		BorrowedKimono:    lead.BorrowedKimono,
		BorrowedShirt:     lead.BorrowedShirt,
	}
	if packed.History == nil {
		packed.History = []entity.Note{}
	}
	if packed.IsFirstExperience == "" {
		packed.IsFirstExperience = "Sim"
	}

	b, err := json.Marshal(packed)
	if err != nil {
		// Marshal de struct só de strings não falha; mantido por segurança.
		log.Error().Err(err).Msg("falha ao empacotar campo notes")
		return ""
	}
	return string(b)
}

// unpackNotes resolve o formato do campo uma única vez: vazio, array
// legado (histórico puro) ou objeto atual. Qualquer conteúdo ilegível é
// engolido com log — decodificação jamais propaga erro.
func unpackNotes(raw, leadID string) packedNotes {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultPackedNotes()
	}

	if strings.HasPrefix(trimmed, "[") {
		// Formato legado: o campo inteiro é o histórico.
		var history []entity.Note
		if err := json.Unmarshal([]byte(trimmed), &history); err != nil {
			log.Warn().Err(err).Str("lead_id", leadID).Msg("campo notes legado ilegível, usando defaults")
			return defaultPackedNotes()
		}
		packed := defaultPackedNotes()
		if history != nil {
			packed.History = history
		}
		return packed
	}

	var packed packedNotes
	if err := json.Unmarshal([]byte(trimmed), &packed); err != nil {
		log.Warn().Err(err).Str("lead_id", leadID).Msg("campo notes ilegível, usando defaults")
		return defaultPackedNotes()
	}
	if packed.History == nil {
		packed.History = []entity.Note{}
	}
	if packed.IsFirstExperience == "" {
		packed.IsFirstExperience = "Sim"
	}
	return packed
}

func parseCreatedAt(raw, leadID string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		log.Warn().Str("lead_id", leadID).Str("createdAt", raw).Msg("timestamp remoto ilegível")
		return time.Time{}
	}
	return t
}
