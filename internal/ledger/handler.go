package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for ledger statements.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers/{id}/statement", h.customerStatement)
	r.Get("/suppliers/{id}/statement", h.supplierStatement)
}

func (h *Handler) customerStatement(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, PartyCustomer)
}

func (h *Handler) supplierStatement(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, PartySupplier)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request, party PartyType) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid counterparty id")
		return
	}
	from, ok := parseDate(r.URL.Query().Get("from"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD")
		return
	}
	to, ok := parseDate(r.URL.Query().Get("to"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD")
		return
	}

	var stmt *PartyStatement
	if party == PartyCustomer {
		stmt, err = h.service.CustomerStatement(r.Context(), id, from, to)
	} else {
		stmt, err = h.service.SupplierStatement(r.Context(), id, from, to)
	}
	if err != nil {
		if err == ErrNotFound {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("build statement", slog.String("party", string(party)), slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
