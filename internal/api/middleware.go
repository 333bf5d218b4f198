package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeshare-backend/internal/auth"
	"codeshare-backend/internal/models"
	"codeshare-backend/internal/service"

	"github.com/go-chi/chi/v5/middleware"
)

// contextKey is private to avoid collisions in the request context.
type contextKey string

const userContextKey = contextKey("user")

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// tokenFromRequest reads the session cookie, falling back to a Bearer header.
func (h *Handler) tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(h.opts.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session token and puts
// the user in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.tokenService.ValidateToken(h.tokenFromRequest(r))
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				h.respondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			slog.Debug("token rejected", "err", err)
			h.respondWithError(w, http.StatusForbidden, "invalid token")
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				h.respondWithError(w, http.StatusUnauthorized, "user not found")
				return
			}
			h.respondInternal(w, r, "authentication failed", err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// RequestLog emits one structured log line per request.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		slog.Info(
			"http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
