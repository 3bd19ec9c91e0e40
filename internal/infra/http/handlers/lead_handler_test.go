package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/http/middleware"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
	"github.com/tatamedev/tatame-crm/internal/usecase"
)

// stubAuth aceita qualquer credencial; suficiente para abrir sessões.
type stubAuth struct{}

func (stubAuth) Register(ctx context.Context, userID, email, password, name string) (*appwrite.User, error) {
	return &appwrite.User{ID: userID, Email: email, Name: name}, nil
}

func (stubAuth) CreateEmailSession(ctx context.Context, email, password string) (*appwrite.Session, error) {
	return &appwrite.Session{ID: "s1", UserID: "u1", Secret: "secret-1"}, nil
}

func (stubAuth) GetAccount(ctx context.Context, sessionSecret string) (*appwrite.User, error) {
	return &appwrite.User{ID: "u1", Name: "Dono", Email: "dono@academia.com"}, nil
}

func (stubAuth) DeleteSession(ctx context.Context, sessionSecret string) error { return nil }

// stubLeadRepo guarda os documentos em memória simulando a coleção remota.
type stubLeadRepo struct {
	docs []usecase.LeadDocument
	seq  int
}

func (s *stubLeadRepo) List(ctx context.Context, academyID string, limit int) ([]usecase.LeadDocument, error) {
	return s.docs, nil
}

func (s *stubLeadRepo) Create(ctx context.Context, doc usecase.LeadDocument) (usecase.LeadDocument, error) {
	s.seq++
	doc.ID = fmt.Sprintf("l%d", s.seq)
	doc.CreatedAt = "2026-09-01T12:00:00.000+00:00"
	s.docs = append([]usecase.LeadDocument{doc}, s.docs...)
	return doc, nil
}

func (s *stubLeadRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	return nil
}

func (s *stubLeadRepo) Delete(ctx context.Context, id string) error { return nil }

// stubAcademyRepo devolve sempre a mesma academia.
type stubAcademyRepo struct{}

func (stubAcademyRepo) FindByOwner(ctx context.Context, ownerID string) (*entity.Academy, error) {
	return &entity.Academy{ID: "ac1", Name: "Academia Centro", OwnerID: ownerID}, nil
}

func (stubAcademyRepo) FindByID(ctx context.Context, id string) (*entity.Academy, error) {
	return &entity.Academy{ID: id, Name: "Academia Centro"}, nil
}

func (stubAcademyRepo) Create(ctx context.Context, academy *entity.Academy) (*entity.Academy, error) {
	academy.ID = "ac1"
	return academy, nil
}

func (stubAcademyRepo) Update(ctx context.Context, academy *entity.Academy) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	leadRepo := &stubLeadRepo{}
	academies := usecase.NewAcademyService(stubAcademyRepo{}, zerolog.Nop())
	newStore := func() *usecase.LeadStore {
		return usecase.NewLeadStore(leadRepo, nil, zerolog.Nop())
	}
	sessions := usecase.NewSessionManager(stubAuth{}, academies, newStore, zerolog.Nop())

	authHandler := NewAuthHandler(sessions)
	leadHandler := NewLeadHandler()
	academyHandler := NewAcademyHandler(academies)

	r := chi.NewRouter()
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))
		r.Get("/leads", leadHandler.List)
		r.Post("/leads", leadHandler.Create)
		r.Post("/leads/import", leadHandler.Import)
		r.Get("/leads/export", leadHandler.Export)
		r.Get("/leads/{id}", leadHandler.Get)
		r.Patch("/leads/{id}", leadHandler.Update)
		r.Delete("/leads/{id}", leadHandler.Delete)
		r.Get("/leads/{id}/whatsapp", leadHandler.WhatsAppTemplates)
		r.Get("/academy", academyHandler.Get)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	body, _ := json.Marshal(LoginRequest{Email: "dono@academia.com", Password: "senha123"})
	resp, err := http.Post(server.URL+"/auth/login", "application/json", bytes.NewReader(body))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sess SessionResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.Equal(t, "ac1", sess.Academy.ID)

	return server, sess.Token
}

func doRequest(t *testing.T, server *httptest.Server, token, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	return resp
}

func TestLeadEndpoints(t *testing.T) {
	server, token := newTestServer(t)

	t.Run("sem token é 401", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/leads")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var created entity.Lead

	t.Run("cria lead", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodPost, "/leads",
			map[string]string{"name": "João", "phone": "11999990000"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "João", created.Name)
	})

	t.Run("lista o snapshot", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodGet, "/leads", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var list LeadListResponse
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Len(t, list.Leads, 1)
		assert.Equal(t, created.ID, list.Leads[0].ID)
		assert.False(t, list.Loading)
	})

	t.Run("avança o status pelo funil", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodPatch, "/leads/"+created.ID,
			map[string]string{"status": entity.StatusScheduled, "scheduledDate": "2026-09-10"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated entity.Lead
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, entity.StatusScheduled, updated.Status)
	})

	t.Run("transição proibida é 422", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodPatch, "/leads/"+created.ID,
			map[string]string{"status": entity.StatusConverted})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("lead inexistente é 404", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodPatch, "/leads/ghost",
			map[string]string{"status": entity.StatusScheduled})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("mensagens de WhatsApp do lead", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodGet, "/leads/"+created.ID+"/whatsapp", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var templates []map[string]string
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&templates))
		assert.Len(t, templates, 5)
		assert.Contains(t, templates[0]["link"], "wa.me/5511999990000")
	})

	t.Run("exporta CSV", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodGet, "/leads/export", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	})

	t.Run("academia da sessão", func(t *testing.T) {
		resp := doRequest(t, server, token, http.MethodGet, "/academy", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var academy entity.Academy
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&academy))
		assert.Equal(t, "ac1", academy.ID)
	})
}

func TestImportEndpoint(t *testing.T) {
	server, token := newTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "planilha.csv")
	assert.NoError(t, err)
	_, err = part.Write([]byte("Nome,Telefone\nAna,11977776666\n,semnome\nBia,11966665555\n"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/leads/import", &buf)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result ImportResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	// A linha sem nome cai no parse, não conta como pulada na importação.
	assert.Len(t, result.Imported, 2)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, entity.OriginSpreadsheet, result.Imported[0].Origin)

	listResp := doRequest(t, server, token, http.MethodGet, "/leads", nil)
	defer listResp.Body.Close()
	var list LeadListResponse
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	assert.Len(t, list.Leads, 2)
}
