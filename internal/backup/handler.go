package backup

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler serves the snapshot download.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a backup handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the backup route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Download)
}

// Download streams the snapshot as a JSON attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.service.Filename()))
	if err := h.service.Write(r.Context(), w); err != nil {
		h.logger.Error("stream backup", slog.Any("error", err))
	}
}
