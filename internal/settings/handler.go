package settings

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/medipos-erp/medipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the singleton settings records.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs a settings handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.SaveProfile)
	r.Get("/config", h.GetConfig)
	r.Put("/config", h.SaveConfig)
}

// GetProfile returns the company profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetProfile(r.Context())
	if err != nil {
		h.logger.Error("get profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// SaveProfile upserts the company profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p CompanyProfile
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.repo.SaveProfile(r.Context(), p); err != nil {
		h.logger.Error("save profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// GetConfig returns the system config.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetConfig(r.Context())
	if err != nil {
		h.logger.Error("get config", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// SaveConfig upserts the system config.
func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var c SystemConfig
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if c.BillPrefix == "" {
		c.BillPrefix = "B"
	}
	if err := h.repo.SaveConfig(r.Context(), c); err != nil {
		h.logger.Error("save config", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
