package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tatamedev/tatame-crm/internal/infra/http/middleware"
	"github.com/tatamedev/tatame-crm/internal/usecase"
)

type AcademyHandler struct {
	academies *usecase.AcademyService
}

func NewAcademyHandler(academies *usecase.AcademyService) *AcademyHandler {
	return &AcademyHandler{academies: academies}
}

type UpdateAcademyRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (h *AcademyHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "sessão inválida")
		return
	}

	writeJSON(w, http.StatusOK, sess.Academy)
}

func (h *AcademyHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "sessão inválida")
		return
	}

	var req UpdateAcademyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "nome da academia é obrigatório")
		return
	}

	academy := *sess.Academy
	academy.Name = req.Name
	academy.Phone = req.Phone
	academy.Email = req.Email
	academy.Address = req.Address

	if err := h.academies.Update(r.Context(), &academy); err != nil {
		writeUsecaseError(w, err)
		return
	}

	*sess.Academy = academy
	writeJSON(w, http.StatusOK, sess.Academy)
}
