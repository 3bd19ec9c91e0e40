package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tatamedev/tatame-crm/internal/usecase"
)

type contextKey string

const sessionKey contextKey = "session"

// RequireSession valida o token Bearer e injeta a sessão no contexto.
func RequireSession(sessions *usecase.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "token de acesso não informado")
				return
			}

			session, ok := sessions.Get(token)
			if !ok {
				unauthorized(w, "sessão inválida ou expirada")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom recupera a sessão injetada pelo middleware RequireSession.
func SessionFrom(ctx context.Context) (*usecase.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*usecase.Session)
	return session, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
