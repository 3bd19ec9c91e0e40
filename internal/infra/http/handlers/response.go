package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tatamedev/tatame-crm/internal/infra/http/middleware"
	"github.com/tatamedev/tatame-crm/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeUsecaseError mapeia erros de domínio e técnicos para status HTTP.
func writeUsecaseError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case "lead_not_found":
			status = http.StatusNotFound
		case "no_academy_scope":
			status = http.StatusConflict
		case "invalid_status_transition":
			status = http.StatusUnprocessableEntity
		case "invalid_credentials":
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})
		return
	}

	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		middleware.RecordIntegrationError("appwrite")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: techErr.Message, Code: techErr.Code})
		return
	}

	writeError(w, http.StatusInternalServerError, "erro interno")
}
