package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLeadDefaults(t *testing.T) {
	lead, err := NewLead("João Silva", "(11) 99999-0000")

	assert.NoError(t, err)
	assert.Equal(t, TypeAdult, lead.Type)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, "Sim", lead.IsFirstExperience)
	assert.NotNil(t, lead.Notes)
	assert.Empty(t, lead.ID, "id é atribuído pelo repositório, nunca pela factory")
}

func TestNewLeadRequiresName(t *testing.T) {
	_, err := NewLead("   ", "11999990000")
	assert.Error(t, err)
}

func TestAddNoteAppends(t *testing.T) {
	lead, _ := NewLead("Maria", "")
	at := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

	lead.AddNote("ligou pedindo horário", at)
	lead.AddNote("confirmou aula", at.Add(time.Hour))

	assert.Len(t, lead.Notes, 2)
	assert.Equal(t, "ligou pedindo horário", lead.Notes[0].Text)
	assert.Equal(t, "2024-06-01T18:00:00Z", lead.Notes[0].Date)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusNew, StatusScheduled, true},
		{StatusNew, StatusLost, true},
		{StatusNew, StatusConverted, false},
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusMissed, true},
		{StatusCompleted, StatusConverted, true},
		{StatusCompleted, StatusScheduled, false},
		{StatusMissed, StatusScheduled, true}, // remarcação
		{StatusMissed, StatusConverted, true},
		{StatusConverted, StatusLost, false}, // terminal
		{StatusLost, StatusNew, false},       // terminal
		{StatusScheduled, StatusScheduled, true},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s → %s", c.from, c.to)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusMissed))
	assert.False(t, ValidStatus("Pendente"))
	assert.False(t, ValidStatus(""))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "11999990000", DigitsOnly("(11) 99999-0000"))
	assert.Equal(t, "5511988887777", DigitsOnly("+55 11 98888-7777"))
	assert.Equal(t, "", DigitsOnly("sem telefone"))
}
