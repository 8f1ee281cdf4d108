package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/userauth/userauth-go/internal/crypto"
	"github.com/userauth/userauth-go/internal/model"
)

type contextKey string

const emailKey contextKey = "email"

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*crypto.Claims, error)
}

// BearerAuth returns middleware that validates a Bearer token from the
// Authorization header and stores its email claim in the request context.
func BearerAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext extracts the authenticated email from the request context.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		StatusCode: status,
		Message:    msg,
		Error:      http.StatusText(status),
	})
}
