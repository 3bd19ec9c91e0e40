package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/queue"
)

// Client fala com a API oficial do WhatsApp (Cloud API) para mensagens
// de template. Mensagens livres continuam saindo por link wa.me — ver
// templates.go.
type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	http        *http.Client
}

func NewClient(accessToken, phoneID string) *Client {
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		baseURL:     "https://graph.facebook.com/v18.0",
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured indica se o cliente tem credenciais para enviar.
func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

// SendClassConfirmation implementa o contrato do worker de notificações:
// confirma a aula experimental direto no WhatsApp do lead.
func (c *Client) SendClassConfirmation(ctx context.Context, payload queue.LeadEventPayload) error {
	number := entity.DigitsOnly(payload.Phone)
	if number == "" {
		log.Warn().Str("lead_id", payload.LeadID).Msg("whatsapp: lead sem telefone, confirmação ignorada")
		return nil
	}

	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  "55" + number,
		TemplateName: "confirmacao_aula_experimental",
		Parameters: []string{
			firstName(payload.Name),
			formatDateBR(payload.ScheduledDate),
			payload.ScheduledTime,
		},
	})
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if !c.Configured() {
		return fmt.Errorf("whatsapp não configurado")
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                input.PhoneNumber,
		"type":              "template",
		"template": map[string]interface{}{
			"name": input.TemplateName,
			"language": map[string]string{
				"code": "pt_BR",
			},
			"components": []map[string]interface{}{
				{
					"type":       "body",
					"parameters": convertParametersToAPI(input.Parameters),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao enviar mensagem: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp api error: %d: %s", resp.StatusCode, string(respBody))
	}

	var result SendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("whatsapp: erro ao parsear resposta: %w", err)
	}

	if result.Error != nil {
		return fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}

	log.Info().Str("to", input.PhoneNumber).Str("template", input.TemplateName).Msg("whatsapp: mensagem enviada")
	return nil
}

func convertParametersToAPI(params []string) []map[string]string {
	result := make([]map[string]string, 0, len(params))
	for _, param := range params {
		result = append(result, map[string]string{
			"type": "text",
			"text": param,
		})
	}
	return result
}
