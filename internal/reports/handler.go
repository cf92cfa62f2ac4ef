package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/platform/httpx"
)

// Handler wires report HTTP endpoints. Every report has a JSON view and a
// `?format=csv` attachment variant.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.SalesRegister)
	r.Get("/gst", h.GstSummary)
	r.Get("/items", h.ItemSales)
	r.Get("/low-stock", h.LowStock)
	r.Get("/expiry", h.Expiry)
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func attach(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.csv", name, time.Now().UTC().Format("2006-01-02")))
}

// SalesRegister serves the per-bill sales report.
func (h *Handler) SalesRegister(w http.ResponseWriter, r *http.Request) {
	dr, err := h.service.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	report, err := h.service.SalesRegister(r.Context(), dr)
	if err != nil {
		h.logger.Error("sales register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsCSV(r) {
		attach(w, "sales_register")
		if err := WriteSalesRegisterCSV(w, report); err != nil {
			h.logger.Error("stream sales register csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// GstSummary serves the per-slab tax report.
func (h *Handler) GstSummary(w http.ResponseWriter, r *http.Request) {
	dr, err := h.service.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	report, err := h.service.GstSummary(r.Context(), dr)
	if err != nil {
		h.logger.Error("gst summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsCSV(r) {
		attach(w, "gst_summary")
		if err := WriteGstSummaryCSV(w, report); err != nil {
			h.logger.Error("stream gst summary csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// ItemSales serves the per-product sales report.
func (h *Handler) ItemSales(w http.ResponseWriter, r *http.Request) {
	dr, err := h.service.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rows, err := h.service.ItemSales(r.Context(), dr)
	if err != nil {
		h.logger.Error("item sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsCSV(r) {
		attach(w, "item_sales")
		if err := WriteItemSalesCSV(w, rows); err != nil {
			h.logger.Error("stream item sales csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// LowStock serves the low-stock report.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsCSV(r) {
		attach(w, "low_stock")
		if err := WriteLowStockCSV(w, rows); err != nil {
			h.logger.Error("stream low stock csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// Expiry serves the near-expiry report.
func (h *Handler) Expiry(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Expiry(r.Context())
	if err != nil {
		h.logger.Error("expiry report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsCSV(r) {
		attach(w, "expiry")
		if err := WriteExpiryCSV(w, rows); err != nil {
			h.logger.Error("stream expiry csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}
