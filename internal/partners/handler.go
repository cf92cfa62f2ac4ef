package partners

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/platform/db"
	"github.com/medipos-erp/medipos/internal/platform/httpx"
	"github.com/medipos-erp/medipos/internal/shared"
)

// Handler wires HTTP endpoints for one counterparty kind. Two instances are
// mounted, one under /customers and one under /suppliers.
type Handler struct {
	logger  *slog.Logger
	service *Service
	kind    Kind
}

// NewHandler constructs a partners handler for the given kind.
func NewHandler(logger *slog.Logger, service *Service, kind Kind) *Handler {
	return &Handler{logger: logger, service: service, kind: kind}
}

// MountRoutes registers counterparty routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List returns a paginated counterparty listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pagination := shared.NewPagination(page, limit, 0)

	items, total, err := h.service.List(r.Context(), h.kind, r.URL.Query().Get("search"), pagination)
	if err != nil {
		h.logger.Error("list counterparties", slog.String("kind", string(h.kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(pagination.Page, pagination.PerPage, total),
	})
}

// Show returns one counterparty.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	party, err := h.service.Get(r.Context(), h.kind, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, party)
}

// Create stores a new counterparty.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form PartyForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	party, err := h.service.Create(r.Context(), h.kind, form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, party)
}

// Update overwrites counterparty fields with opening-balance delta semantics.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form PartyForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	party, err := h.service.Update(r.Context(), h.kind, id, form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, party)
}

// Delete removes a counterparty with no ledger activity.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), h.kind, id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInUse):
		httpx.Problem(w, http.StatusConflict, "In Use", err.Error())
	case errors.Is(err, db.ErrVersionConflict):
		httpx.Problem(w, http.StatusConflict, "Write Conflict", "record was modified concurrently, reload and retry")
	default:
		httpx.Problem(w, http.StatusBadRequest, "Request Failed", err.Error())
	}
}
