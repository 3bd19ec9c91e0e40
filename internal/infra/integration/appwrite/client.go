package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client fala com a API REST do Appwrite (banco de documentos hospedado
// e contas de usuário). Todas as coleções do CRM vivem lá; a aplicação
// não tem banco próprio.
type Client struct {
	baseURL string
	project string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, project, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		project: project,
		apiKey:  apiKey,
		// 15s: o fetch de até 500 documentos precisa de folga, e o timeout
		// garante que nenhuma operação da store fique pendurada para sempre.
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// ListDocuments busca documentos de uma coleção aplicando as queries
// (ver query.go). O retorno fica cru para o repositório decodificar.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*DocumentList, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)

	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}

	var list DocumentList
	if err := c.do(ctx, http.MethodGet, path+"?"+params.Encode(), nil, "", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateDocument cria um documento com o id informado e devolve o
// documento completo ($id e $createdAt atribuídos pelo servidor).
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)

	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}

	var doc json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, "", &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)

	var doc json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, "", &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) error {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	return c.do(ctx, http.MethodPatch, path, map[string]any{"data": data}, "", nil)
}

func (c *Client) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// Register cria a conta do usuário via API de servidor.
func (c *Client) Register(ctx context.Context, userID, email, password, name string) (*User, error) {
	body := map[string]any{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}

	var user User
	if err := c.do(ctx, http.MethodPost, "/users", body, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateEmailSession autentica por email/senha e devolve a sessão
// (o secret é usado nas chamadas seguintes em nome do usuário).
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", body, "", &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetAccount devolve o usuário dono da sessão.
func (c *Client) GetAccount(ctx context.Context, sessionSecret string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/account", nil, sessionSecret, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionSecret string) error {
	return c.do(ctx, http.MethodDelete, "/account/sessions/current", nil, sessionSecret, nil)
}

// Health confere se o serviço remoto responde (usado pelo /health da API).
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, sessionSecret string, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erro ao marshal payload appwrite: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	if sessionSecret != "" {
		req.Header.Set("X-Appwrite-Session", sessionSecret)
	} else if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request appwrite: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return &apiErr
		}
		return fmt.Errorf("appwrite: status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("erro decode appwrite: %w", err)
	}
	return nil
}
