package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/http/middleware"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/whatsapp"
	"github.com/tatamedev/tatame-crm/internal/infra/sheet"
	"github.com/tatamedev/tatame-crm/internal/usecase"
)

type LeadHandler struct{}

func NewLeadHandler() *LeadHandler {
	return &LeadHandler{}
}

type LeadListResponse struct {
	Leads   []entity.Lead `json:"leads"`
	Loading bool          `json:"loading"`
}

type ImportResponse struct {
	Imported []entity.Lead `json:"imported"`
	Skipped  int           `json:"skipped"`
}

// List devolve o snapshot em memória sem tocar o banco remoto.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, LeadListResponse{
		Leads:   store.Leads(),
		Loading: store.Loading(),
	})
}

// Refresh força uma busca no banco remoto e devolve o estado resultante.
func (h *LeadHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	if err := store.FetchLeads(r.Context()); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LeadListResponse{
		Leads:   store.Leads(),
		Loading: store.Loading(),
	})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	var lead entity.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	created, err := store.AddLead(r.Context(), lead)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadCreated(created.Origin)
	writeJSON(w, http.StatusCreated, created)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	lead, err := store.GetLeadByID(chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	var patch usecase.LeadPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	updated, err := store.UpdateLead(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	if updated.Status == entity.StatusConverted {
		middleware.RecordLeadConverted()
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	if err := store.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import recebe uma planilha CSV multipart e cria os leads linha a linha.
func (h *LeadHandler) Import(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "arquivo da planilha não informado")
		return
	}
	defer file.Close()

	rows, err := sheet.ParseLeads(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := store.ImportLeads(r.Context(), rows)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordImport(len(result.Imported), result.Skipped)
	writeJSON(w, http.StatusOK, ImportResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}

// Export serializa o snapshot atual como CSV para download.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sheet.ExportFileName("leads", time.Now())+`"`)

	if err := sheet.WriteLeads(w, store.Leads()); err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao gerar a planilha")
	}
}

// WhatsAppTemplates devolve as mensagens prontas e os links wa.me do lead.
func (h *LeadHandler) WhatsAppTemplates(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	lead, err := store.GetLeadByID(chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, whatsapp.TemplatesFor(lead))
}

func storeFrom(w http.ResponseWriter, r *http.Request) (*usecase.LeadStore, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "sessão inválida")
		return nil, false
	}
	return sess.Store, true
}
