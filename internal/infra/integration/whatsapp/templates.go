package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tatamedev/tatame-crm/internal/entity"
)

// Template é uma mensagem pronta que a recepção copia ou dispara pelo
// link wa.me. O texto é montado com os dados do lead.
type Template struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
	Link  string `json:"link"`
}

// TemplatesFor monta as mensagens prontas para um lead, uma por momento
// do funil (confirmação, lembrete, pós-aula, falta e recuperação).
func TemplatesFor(lead entity.Lead) []Template {
	name := firstName(lead.Name)
	dateStr := formatDateBR(lead.ScheduledDate)
	timeStr := lead.ScheduledTime

	datePart := ""
	if dateStr != "" {
		datePart = fmt.Sprintf(" no dia %s", dateStr)
	}
	timePart := ""
	if timeStr != "" {
		timePart = fmt.Sprintf(" às %s", timeStr)
	}
	reminderDay := "amanhã"
	if dateStr != "" {
		reminderDay = fmt.Sprintf("amanhã (%s)", dateStr)
	}

	templates := []Template{
		{
			ID:    "confirm",
			Label: "✅ Confirmar Aula",
			Text:  fmt.Sprintf("Olá %s! 😊 Confirmando sua aula experimental%s%s. Venha com roupa confortável! Qualquer dúvida, estamos à disposição. 🥋", name, datePart, timePart),
		},
		{
			ID:    "reminder",
			Label: "⏰ Lembrete",
			Text:  fmt.Sprintf("Oi %s! Passando para lembrar da sua aula experimental %s%s. Estamos te esperando! 💪", name, reminderDay, timePart),
		},
		{
			ID:    "post_class",
			Label: "🎉 Pós-Aula",
			Text:  fmt.Sprintf("%s, foi um prazer ter você na nossa academia! 🥋 O que achou da aula? Temos condições especiais para matrícula essa semana. Posso te passar mais informações?", name),
		},
		{
			ID:    "missed",
			Label: "😢 Não Compareceu",
			Text:  fmt.Sprintf("Oi %s! Sentimos sua falta na aula experimental. 😕 Sei que imprevistos acontecem! Quer remarcar para outro dia? Estamos com horários disponíveis essa semana. 🥋", name),
		},
		{
			ID:    "recovery",
			Label: "🔄 Recuperação",
			Text:  fmt.Sprintf("Olá %s! Tudo bem? 😊 Vi que você visitou nossa academia recentemente. Ainda tem interesse em começar no Jiu-Jitsu? Temos turmas nos horários da manhã e noite. Vou adorar ajudar! 💪", name),
		},
	}

	for i := range templates {
		templates[i].Link = Link(lead.Phone, templates[i].Text)
	}
	return templates
}

// Link monta o deep link wa.me do lead. O telefone é normalizado para
// dígitos apenas aqui, no ponto de uso, com o DDI 55 na frente.
func Link(phone, text string) string {
	number := entity.DigitsOnly(phone)
	if number == "" {
		return ""
	}
	link := "https://wa.me/55" + number
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Aluno"
	}
	return fields[0]
}

// formatDateBR converte a data agendada (AAAA-MM-DD) para dd/mm/aaaa.
// Entrada fora do formato volta como veio.
func formatDateBR(scheduledDate string) string {
	if scheduledDate == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", scheduledDate)
	if err != nil {
		return scheduledDate
	}
	return t.Format("02/01/2006")
}
