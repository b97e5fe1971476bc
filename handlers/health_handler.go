package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/research-gateway/config"
	"github.com/upb/research-gateway/services/research"
	"github.com/upb/research-gateway/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string   `json:"status"`
	PrimaryModel   string   `json:"primaryModel"`
	FallbackModels []string `json:"fallbackModels"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	cfg    config.ResearchConfig
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(cfg config.ResearchConfig, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:    cfg,
		logger: logger,
	}
}

// HandleHealth handles GET /api/health. It reports the configured model
// chain without executing a query.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	fallbacks := make([]string, 0)
	for _, entry := range strings.Split(h.cfg.FallbackModels, ",") {
		if model := strings.TrimSpace(entry); model != "" {
			fallbacks = append(fallbacks, model)
		}
	}

	primary := h.cfg.DefaultModel
	if primary == "" {
		primary = research.DefaultModel
	}

	response := HealthResponse{
		Status:         "ok",
		PrimaryModel:   primary,
		FallbackModels: fallbacks,
	}

	if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to write health response", zap.Error(err))
	}
}
