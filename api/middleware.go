package api

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ─────────────────────────────────────────────────────────────────────────────
// Authenticated owner in the request context
// ─────────────────────────────────────────────────────────────────────────────

type ctxKey string

const ctxKeyUserID ctxKey = "userID"

// ContextWithUserID stores the authenticated user id.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// UserIDFromContext returns the id stored by Authenticate.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(int64)
	return id, ok && id > 0
}

// Authenticate rejects requests without a valid bearer token with 401 and
// otherwise puts the token's user id into the request context. Handlers behind
// it take the owner from there and never from client input.
func Authenticate(tokens TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "bearer "
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Not authenticated")
				return
			}
			if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
				unauthorized(w, "Could not validate credentials")
				return
			}

			userID, err := tokens.Resolve(strings.TrimSpace(header[len(prefix):]))
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, message)
}

// ─────────────────────────────────────────────────────────────────────────────
// Access log and panic recovery
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", r.RemoteAddr),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// recoverPanics turns a handler panic into a 500 envelope.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.ErrorContext(r.Context(), "handler panic",
				slog.Any("panic", rec),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("stack", string(debug.Stack())),
			)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
