package appwrite

import (
	"encoding/json"
	"fmt"
)

// DocumentList é a resposta de listagem do Appwrite. Os documentos ficam
// crus porque cada repositório conhece a própria coleção.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

type User struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// APIError é o corpo de erro padrão do Appwrite.
type APIError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("appwrite: %s (code %d)", e.Message, e.Code)
}

// NotFound informa se o erro representa um documento inexistente.
func (e *APIError) NotFound() bool {
	return e.Code == 404
}
