package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/backup"
	"github.com/medipos-erp/medipos/internal/billing"
	"github.com/medipos-erp/medipos/internal/ledger"
	"github.com/medipos-erp/medipos/internal/masterdata/companies"
	"github.com/medipos-erp/medipos/internal/masterdata/gstrates"
	"github.com/medipos-erp/medipos/internal/masterdata/products"
	"github.com/medipos-erp/medipos/internal/masterdata/salesmen"
	"github.com/medipos-erp/medipos/internal/observability"
	"github.com/medipos-erp/medipos/internal/partners"
	"github.com/medipos-erp/medipos/internal/payments"
	"github.com/medipos-erp/medipos/internal/procurement"
	"github.com/medipos-erp/medipos/internal/reports"
	"github.com/medipos-erp/medipos/internal/settings"
	"github.com/medipos-erp/medipos/jobs"
)

// RouterParams collects every mounted handler. Nil entries are skipped so
// partial wiring (tests, the worker binary) stays possible.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Products    *products.Handler
	GstRates    *gstrates.Handler
	Companies   *companies.Handler
	Salesmen    *salesmen.Handler
	Settings    *settings.Handler
	Customers   *partners.Handler
	Suppliers   *partners.Handler
	Billing     *billing.Handler
	Procurement *procurement.Handler
	Payments    *payments.Handler
	Ledger      *ledger.Handler
	Reports     *reports.Handler
	Backup      *backup.Handler
	Jobs        *jobs.Handler
}

// NewRouter assembles the HTTP surface.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		mount(api, "/products", p.Products)
		mount(api, "/gst-rates", p.GstRates)
		mount(api, "/companies", p.Companies)
		mount(api, "/salesmen", p.Salesmen)
		mount(api, "/settings", p.Settings)
		mount(api, "/customers", p.Customers)
		mount(api, "/suppliers", p.Suppliers)
		mount(api, "/bills", p.Billing)
		mount(api, "/purchases", p.Procurement)
		mount(api, "/payments", p.Payments)
		if p.Ledger != nil {
			// Adds /customers/{id}/statement and /suppliers/{id}/statement.
			p.Ledger.MountRoutes(api)
		}
		mount(api, "/reports", p.Reports)
		mount(api, "/backup", p.Backup)
		mount(api, "/jobs", p.Jobs)
	})

	return r
}

type mountable interface {
	MountRoutes(chi.Router)
}

func mount[H mountable](r chi.Router, path string, h H) {
	var zero H
	if any(h) == any(zero) {
		return
	}
	r.Route(path, h.MountRoutes)
}
