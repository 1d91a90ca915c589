package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ueba-service/internal/model"
	"ueba-service/internal/service"
	"ueba-service/internal/util"
)

// PipelineHandler exposes pipeline runs and their outputs over HTTP.
type PipelineHandler struct {
	pipeline *service.PipelineService
	logger   *zap.Logger
}

func NewPipelineHandler(pipeline *service.PipelineService, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// RegisterRoutes registers all pipeline routes.
func (h *PipelineHandler) RegisterRoutes(router chi.Router) {
	router.Post("/runs", h.TriggerRun)
	router.Get("/features", h.GetFeatures)
	router.Get("/scores", h.GetScores)
	router.Get("/risk-graph", h.GetRiskGraph)
}

// TriggerRun executes a full batch run synchronously and returns its
// summary.
func (h *PipelineHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	result, err := h.pipeline.Run(ctx)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Pipeline run failed")
		return
	}

	summary := map[string]interface{}{
		"run_id":          result.RunID,
		"started_at":      result.StartedAt,
		"finished_at":     result.FinishedAt,
		"users":           len(result.Merged),
		"high_risk_nodes": len(result.Risk.Nodes),
	}
	h.respondWithJSON(w, http.StatusCreated, successResponse(summary, "Pipeline run completed"))
	h.logger.Info("pipeline run triggered via HTTP",
		util.String("run_id", result.RunID),
		util.Duration("duration", time.Since(startTime)),
	)
}

// GetFeatures returns the merged feature matrix of the latest run.
func (h *PipelineHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.LastResult(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, err, "No pipeline result available")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"run_id":  result.RunID,
		"columns": model.MergedFeatureColumns,
		"rows":    result.Merged,
	}, "Merged features retrieved"))
}

// GetScores returns the per-detector anomaly scores of the latest run.
func (h *PipelineHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.LastResult(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, err, "No pipeline result available")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"run_id": result.RunID,
		"scores": result.Scores,
	}, "Anomaly scores retrieved"))
}

// GetRiskGraph returns the one-hop risk subgraph of the latest run.
func (h *PipelineHandler) GetRiskGraph(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.LastResult(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, err, "No pipeline result available")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]interface{}{
		"run_id": result.RunID,
		"risk":   result.Risk,
	}, "Risk subgraph retrieved"))
}

func (h *PipelineHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", util.ErrorField(err))
	}
}

func (h *PipelineHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}

func (h *PipelineHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrSchema):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrDataSource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
