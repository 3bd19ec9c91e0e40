package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/whatsapp"
)

type HealthHandler struct {
	Appwrite  *appwrite.Client
	RabbitMQ  *amqp091.Connection
	WhatsApp  *whatsapp.Client
	MailHost  string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(aw *appwrite.Client, rabbitMQ *amqp091.Connection, wa *whatsapp.Client, mailHost string) *HealthHandler {
	return &HealthHandler{
		Appwrite:  aw,
		RabbitMQ:  rabbitMQ,
		WhatsApp:  wa,
		MailHost:  mailHost,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	// Check Appwrite
	if h.Appwrite != nil {
		if err := h.Appwrite.Health(r.Context()); err != nil {
			deps["appwrite"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["appwrite"] = "healthy"
		}
	} else {
		deps["appwrite"] = "not configured"
	}

	// Check RabbitMQ
	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	// Check WhatsApp API
	if h.WhatsApp != nil && h.WhatsApp.Configured() {
		deps["whatsapp"] = "configured"
	} else {
		deps["whatsapp"] = "not configured"
	}

	// Check SMTP
	if h.MailHost != "" {
		deps["mail"] = "configured"
	} else {
		deps["mail"] = "not configured"
	}

	// Determine overall status
	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	uptime := time.Since(h.StartTime).Round(time.Second).String()

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       uptime,
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}
