// Package middleware provides HTTP middleware for bearer-token authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// subjectKey is the context key for the authenticated token subject.
const subjectKey ContextKey = "subject"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (SubjectGetter, error)
}

// SubjectGetter extracts the session subject from token claims.
type SubjectGetter interface {
	SessionSubject() uuid.UUID
}

// AuthMiddleware validates bearer tokens and stores the subject in the
// request context. Paths in public pass through, as do CORS preflights.
func AuthMiddleware(validator TokenValidator, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.SessionSubject())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="cv-architect"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// GetSubject extracts the authenticated subject from the request context.
func GetSubject(r *http.Request) (uuid.UUID, error) {
	subject, ok := r.Context().Value(subjectKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("subject not found in request context")
	}
	return subject, nil
}
