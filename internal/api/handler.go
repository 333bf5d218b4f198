package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"codeshare-backend/internal/auth"
	"codeshare-backend/internal/models"
	"codeshare-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options holds the HTTP-level settings.
type Options struct {
	CookieName     string
	CookieSecure   bool
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	userService  *service.UserService
	fileService  *service.FileService
	tokenService *auth.TokenService
	health       Pinger
	validate     *validator.Validate
	opts         Options
}

// NewHandler creates a Handler.
func NewHandler(
	userSvc *service.UserService,
	fileSvc *service.FileService,
	tokenSvc *auth.TokenService,
	health Pinger,
	opts Options,
) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "token"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Handler{
		userService:  userSvc,
		fileService:  fileSvc,
		tokenService: tokenSvc,
		health:       health,
		validate:     validator.New(),
		opts:         opts,
	}
}

// === Response helpers ===

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

// respondInternal logs err and replies with a generic 500.
func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "err", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	h.respondWithError(w, http.StatusInternalServerError, msg)
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"internal error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return req, false
	}
	return req, true
}

// === Public handlers ===

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("hello"))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "err", err)
			h.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRegister (POST /register)
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			h.respondWithError(w, http.StatusConflict, "username already exists")
		case errors.Is(err, service.ErrValidation):
			h.respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.respondInternal(w, r, "user registration failed", err)
		}
		return
	}

	h.respondWithJSON(w, http.StatusCreated, struct {
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}{"user registered successfully", user})
}

// handleLogin (POST /login)
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	// registration rules live in the service; login only needs both fields
	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, _, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			// same answer for both so usernames cannot be probed
			h.respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.respondInternal(w, r, "authentication failed", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenService.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "login successful",
		"token":   token,
	})
}

// handleLogout (GET /logout) only clears the cookie; the token itself stays
// valid until it expires.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// === Authenticated handlers ===

// handleUpload (POST /uploads)
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.respondWithError(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer file.Close()

	record, err := h.fileService.Upload(r.Context(), user.ID, header.Filename, file, header.Size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondInternal(w, r, "file upload failed", err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "file uploaded",
		"code":    record.Code,
	})
}

// handleListFiles (GET /files)
func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	files, err := h.fileService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.respondInternal(w, r, "file retrieval failed", err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, files)
}

// handleDeleteFile (DELETE /files/{id})
func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, "file not found")
		return
	}

	if err := h.fileService.DeleteOwned(r.Context(), user.ID, fileID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "file not found")
			return
		}
		h.respondInternal(w, r, "file deletion failed", err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

// handleDownload (GET /download/{code}) streams the blob to any
// authenticated user who knows the code.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	file, rc, err := h.fileService.Open(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "file not found")
			return
		}
		h.respondInternal(w, r, "file retrieval failed", err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": file.OriginalName,
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		// headers are gone already, nothing to tell the client
		slog.Warn("download interrupted", "file_id", file.ID, "err", err)
	}
}
