package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/upb/research-gateway/services"
	"github.com/upb/research-gateway/services/research"
	"github.com/upb/research-gateway/utils"
)

// ResearchRequest is the wire shape of POST /api/research
type ResearchRequest struct {
	Query         string `json:"query" validate:"required"`
	Model         string `json:"model,omitempty"`
	MaxIterations int    `json:"maxIterations,omitempty" validate:"omitempty,gt=0"`
}

// ResearchService defines the service interface the handler depends on
type ResearchService interface {
	Research(ctx context.Context, req research.Request) (*research.RunResult, error)
}

// ResearchHandler handles research HTTP requests
type ResearchHandler struct {
	service ResearchService
	logger  *zap.Logger
}

// NewResearchHandler creates a new ResearchHandler
func NewResearchHandler(service ResearchService, logger *zap.Logger) *ResearchHandler {
	return &ResearchHandler{
		service: service,
		logger:  logger,
	}
}

// HandleResearch handles POST /api/research
func (h *ResearchHandler) HandleResearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	var req ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, err.Error())
		return
	}

	h.logger.Info("processing research request",
		zap.String("request_id", requestID),
		zap.String("model", req.Model),
		zap.Int("max_iterations", req.MaxIterations))

	result, err := h.service.Research(ctx, research.Request{
		Query:         req.Query,
		Model:         req.Model,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger.With(zap.String("request_id", requestID)))
		return
	}

	h.logger.Info("research request completed",
		zap.String("request_id", requestID),
		zap.String("model", result.Model),
		zap.Int("iterations", result.Iterations),
		zap.Int("tool_calls", len(result.ToolCalls)),
		zap.Float64("total_time_ms", result.TotalTime))

	if err := utils.WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// HandleServiceError maps service errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var allFailed *research.AllModelsFailedError
	switch {
	case errors.As(err, &allFailed):
		logger.Error("all models failed",
			zap.Int("attempts", len(allFailed.Failures)))
		_ = utils.WriteInternalServerError(w, allFailed.Error())

	case utils.IsValidationError(err), services.IsValidationError(err):
		_ = utils.WriteBadRequest(w, err.Error())

	default:
		logger.Error("research request failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, err.Error())
	}
}
