package assets

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

// IdempotencyHeader carries the optional client supplied request key.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes asset endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /assets routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(rbac.CapAssetView))
			r.Get("/", h.list)
			r.Get("/{id}", h.show)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAll(rbac.CapAssetCreate))
			r.Post("/", h.create)
		})
	})
}

type listResponse struct {
	Items      []Asset           `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	caller, _ := rbac.PrincipalFromContext(r.Context())
	asset, err := h.service.Create(r.Context(), caller, req, r.Header.Get(IdempotencyHeader))
	if err != nil {
		h.logError("create asset", err, caller)
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Location", "/api/assets/"+strconv.FormatInt(asset.ID, 10))
	httpx.JSON(w, http.StatusCreated, asset)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.PrincipalFromContext(r.Context())
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.List(r.Context(), caller, filters)
	if err != nil {
		h.logError("list assets", err, caller)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, ErrNotFound)
		return
	}
	caller, _ := rbac.PrincipalFromContext(r.Context())
	asset, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.logError("get asset", err, caller)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

// logError logs rejected requests at info and unexpected failures at error.
func (h *Handler) logError(op string, err error, caller rbac.Principal) {
	attrs := []any{slog.Any("error", err), slog.Int64("user_id", caller.UserID)}
	if httpx.IsClientError(err) {
		h.logger.Info(op+" rejected", attrs...)
		return
	}
	h.logger.Error(op+" failed", attrs...)
}
