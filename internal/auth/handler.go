package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *TokenIssuer
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenIssuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

// MountAuthenticatedRoutes registers routes that expect a principal in the
// request context.
func (h *Handler) MountAuthenticatedRoutes(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
}

type meResponse struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Role         rbac.Role         `json:"role"`
	Capabilities []rbac.Capability `json:"capabilities"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok || principal.IsZero() {
		httpx.Unauthorized(w, "Authentication credentials were not provided.")
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		ID:           principal.UserID,
		Username:     principal.Username,
		Role:         principal.Role,
		Capabilities: principal.Role.Capabilities(),
	})
}

type tokenRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	fields := httpx.FieldErrors{}
	if err := httpx.ValidateStruct(h.validator, req, fields); err != nil {
		h.logger.Error("validate token request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if len(fields) > 0 {
		httpx.RespondError(w, &httpx.ValidationError{Fields: fields})
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Info("login rejected", slog.String("username", req.Username))
			httpx.Unauthorized(w, "No active account found with the given credentials.")
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, token)
}
