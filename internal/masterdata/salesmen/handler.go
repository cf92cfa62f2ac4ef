package salesmen

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
	"github.com/medipos-erp/medipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the salesman lookup list.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs a salesmen handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers salesman routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// List returns all salesmen.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list salesmen", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"salesmen": items})
}

// Create stores a new salesman.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil || strings.TrimSpace(form.Name) == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "salesman name is required")
		return
	}
	s, err := h.repo.Create(r.Context(), strings.TrimSpace(form.Name), form.Phone)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

// Delete removes a salesman.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid salesman id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
