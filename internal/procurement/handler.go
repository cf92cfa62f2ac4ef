package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/platform/httpx"
	"github.com/medipos-erp/medipos/internal/shared"
)

// Handler wires purchase HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditLogger
}

// NewHandler constructs a procurement handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// WithAudit enables audit records for deletes.
func (h *Handler) WithAudit(audit *shared.AuditLogger) *Handler {
	h.audit = audit
	return h
}

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Delete)
}

// List returns purchases matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	supplierID, _ := strconv.ParseInt(q.Get("supplier_id"), 10, 64)
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	purchases, total, err := h.service.List(r.Context(), ListFilter{
		From:       q.Get("from"),
		To:         q.Get("to"),
		SupplierID: supplierID,
		Search:     q.Get("search"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.logger.Error("list purchases", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": purchases, "total": total})
}

// Show returns one purchase with its lines.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	purchase, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
}

// Create stores a purchase and reports the batches created and balance
// adjustments made.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form PurchaseForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	purchase, outcomes, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"purchase": purchase, "adjustments": outcomes})
}

// Delete removes a purchase. Received stock stays; the response lists the
// skipped reversions so the operator sees the policy applied.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	outcomes, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if h.audit != nil {
		log := shared.AuditLog{Action: "purchase.delete", Entity: "purchase", EntityID: strconv.FormatInt(id, 10)}
		if err := h.audit.Record(r.Context(), log); err != nil {
			h.logger.Warn("audit record", slog.String("action", "purchase.delete"), slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"adjustments": outcomes})
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
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Product", err.Error())
	default:
		httpx.Problem(w, http.StatusBadRequest, "Request Failed", err.Error())
	}
}
