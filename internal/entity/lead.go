package entity

import (
	"errors"
	"strings"
	"time"
)

// Status do funil. Os valores ficam em pt-BR porque são gravados assim
// no banco remoto e exibidos direto na interface.
const (
	StatusNew       = "Novo"
	StatusScheduled = "Agendado"
	StatusCompleted = "Compareceu"
	StatusMissed    = "Não Compareceu"
	StatusConverted = "Matriculado"
	StatusLost      = "Não fechou"
)

// Perfil do aluno
const (
	TypeChild = "Criança"
	TypeTeen  = "Teen"
	TypeAdult = "Adulto"
)

// Origens conhecidas de um lead. Texto livre é tolerado; a lista existe
// para selects do front e validação frouxa da importação.
var Origins = []string{"Instagram", "Indicação", "WhatsApp", "Passou na porta", "Evento"}

// OriginSpreadsheet é atribuída a linhas importadas sem origem própria.
const OriginSpreadsheet = "Planilha"

// Note é uma entrada do histórico de observações do lead.
// Date fica como string ISO porque é o formato já gravado pelos dados antigos.
type Note struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

// Entidade: Lead (aluno em potencial acompanhado pelo funil de matrícula)
type Lead struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Type   string `json:"type"`
	Origin string `json:"origin"`
	Status string `json:"status"`

	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`

	// Relevantes apenas quando Type == Criança
	ParentName string `json:"parentName,omitempty"`
	Age        string `json:"age,omitempty"`

	// Atributos auxiliares empacotados no campo notes do documento remoto
	IsFirstExperience string `json:"isFirstExperience"`
	Belt              string `json:"belt,omitempty"`
	BorrowedKimono    string `json:"borrowedKimono,omitempty"`
	BorrowedShirt     string `json:"borrowedShirt,omitempty"`

	Notes []Note `json:"notes"`

	// Atribuído exclusivamente pelo repositório remoto na criação.
	CreatedAt time.Time `json:"createdAt"`
}

// Factory
func NewLead(name, phone string) (*Lead, error) {
	lead := &Lead{
		Name:              name,
		Phone:             phone,
		Type:              TypeAdult,
		Status:            StatusNew,
		IsFirstExperience: "Sim",
		Notes:             []Note{},
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// AddNote acrescenta uma entrada ao histórico (append-only).
func (l *Lead) AddNote(text string, at time.Time) {
	l.Notes = append(l.Notes, Note{Text: text, Date: at.UTC().Format(time.RFC3339)})
}

// ValidStatus informa se s pertence ao conjunto fechado de status do funil.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusScheduled, StatusCompleted, StatusMissed, StatusConverted, StatusLost:
		return true
	}
	return false
}

// Grafo de transições permitido:
//
//	Novo           → Agendado | Não fechou
//	Agendado       → Compareceu | Não Compareceu | Não fechou
//	Compareceu     → Matriculado | Não fechou
//	Não Compareceu → Matriculado | Agendado | Não fechou
//	Matriculado e Não fechou são terminais.
//
// Não Compareceu → Agendado cobre a remarcação de aula perdida.
var transitions = map[string][]string{
	StatusNew:       {StatusScheduled, StatusLost},
	StatusScheduled: {StatusCompleted, StatusMissed, StatusLost},
	StatusCompleted: {StatusConverted, StatusLost},
	StatusMissed:    {StatusConverted, StatusScheduled, StatusLost},
	StatusConverted: {},
	StatusLost:      {},
}

// CanTransition valida uma mudança de status. Repetir o status atual é
// sempre permitido (o front reenvia o valor corrente em alguns fluxos).
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DigitsOnly normaliza um telefone no ponto de uso (discagem/WhatsApp).
// O valor armazenado nunca é canonizado.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
