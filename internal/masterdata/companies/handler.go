package companies

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

// Handler wires HTTP endpoints for the company lookup list.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs a companies handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// List returns all companies.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": items})
}

// Create stores a new company name.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil || strings.TrimSpace(form.Name) == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "company name is required")
		return
	}
	company, err := h.repo.Create(r.Context(), strings.TrimSpace(form.Name))
	if err != nil {
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

// Delete removes a company.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid company id")
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
