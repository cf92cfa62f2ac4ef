package billing

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

// Handler wires bill HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditLogger
}

// NewHandler constructs a billing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// WithAudit enables audit records for edits and deletes.
func (h *Handler) WithAudit(audit *shared.AuditLogger) *Handler {
	h.audit = audit
	return h
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64, meta map[string]any) {
	if h.audit == nil {
		return
	}
	log := shared.AuditLog{Action: action, Entity: "bill", EntityID: strconv.FormatInt(id, 10), Meta: meta}
	if err := h.audit.Record(r.Context(), log); err != nil {
		h.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

// MountRoutes registers bill routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List returns bills matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, _ := strconv.ParseInt(q.Get("customer_id"), 10, 64)
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	bills, total, err := h.service.List(r.Context(), ListFilter{
		From:       q.Get("from"),
		To:         q.Get("to"),
		CustomerID: customerID,
		Search:     q.Get("search"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.logger.Error("list bills", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": bills, "total": total})
}

// Show returns one bill with its lines.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	bill, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

// Create stores a bill and reports the stock and balance adjustments made.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form BillForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	bill, outcomes, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"bill": bill, "adjustments": outcomes})
}

// Update edits a bill, reconciling stock and balances against the stored
// version.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form BillForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	bill, outcomes, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "bill.update", id, map[string]any{"number": bill.Number, "grand_total": bill.GrandTotal})
	httpx.JSON(w, http.StatusOK, map[string]any{"bill": bill, "adjustments": outcomes})
}

// Delete removes a bill and reports the restorations performed.
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
	h.recordAudit(r, "bill.delete", id, nil)
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
	case errors.Is(err, ErrBatchNotFound), errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Stock Error", err.Error())
	case errors.Is(err, db.ErrVersionConflict):
		httpx.Problem(w, http.StatusConflict, "Write Conflict", "bill was modified concurrently, reload and retry")
	default:
		httpx.Problem(w, http.StatusBadRequest, "Request Failed", err.Error())
	}
}
