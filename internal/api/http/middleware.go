package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/security"
)

type contextKey string

const callerKey contextKey = "caller"

// authMiddleware validates the bearer token and stashes the resolved caller
// in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, fmt.Errorf("missing bearer token: %w", security.ErrInvalidToken))
			return
		}

		caller, err := s.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, *caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) security.Caller {
	caller, _ := r.Context().Value(callerKey).(security.Caller)
	return caller
}

// loggingMiddleware logs every request after it completes.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		logger.Debug("Request handled", "method", r.Method, "path", r.URL.Path)
	})
}
