package apitest

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const userIDKey contextKey = "userID"

func userIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// requireAuth validates the Bearer token and sets the user id in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if auth == "" || !strings.HasPrefix(auth, prefix) {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		token := strings.TrimSpace(auth[len(prefix):])

		s.mu.Lock()
		revoked := s.revoked[token]
		now := s.clock
		s.mu.Unlock()
		if revoked {
			writeDetail(w, http.StatusUnauthorized, errInvalidToken.Error())
			return
		}
		userID, _, err := s.tokens.Verify(token, now)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, err.Error())
			return
		}

		s.mu.Lock()
		_, ok := s.users[userID]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// intercept records each request, applies injected failures and holds gated requests.
func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		var gate *Gate
		for i, g := range s.gates {
			if g.method == r.Method && g.path == r.URL.Path {
				gate = g
				s.gates = append(s.gates[:i], s.gates[i+1:]...)
				break
			}
		}
		var fail *failure
		for i, f := range s.failures {
			if f.method == r.Method && f.path == r.URL.Path {
				fail = &f
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		if gate != nil {
			close(gate.arrived)
			<-gate.release
		}
		if fail != nil {
			if fail.detail == "" {
				w.WriteHeader(fail.status)
				return
			}
			writeDetail(w, fail.status, fail.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logging logs each request with method, path, status and duration.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", r.Header.Get("X-Request-ID"),
		)
	})
}
