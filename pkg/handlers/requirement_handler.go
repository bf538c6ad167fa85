package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

// SummaryRequest for POST /api/requirements/summary
type SummaryRequest struct {
	RequirementIDs []int64 `json:"requirement_ids"`
}

// RequirementHandler serves the requirement catalog.
type RequirementHandler struct {
	requirementService services.RequirementService
	logger             *zap.Logger
}

// NewRequirementHandler creates a new requirement handler.
func NewRequirementHandler(requirementService services.RequirementService, logger *zap.Logger) *RequirementHandler {
	return &RequirementHandler{
		requirementService: requirementService,
		logger:             logger,
	}
}

// RegisterRoutes registers the requirement handler's routes on the given mux.
func (h *RequirementHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/requirements/{id}", h.Get)
	mux.HandleFunc("POST /api/requirements/summary", h.Summary)
}

// Get handles GET /api/requirements/{id}
func (h *RequirementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRequirementID(w, r, "id", h.logger)
	if !ok {
		return
	}

	detail, err := h.requirementService.GetDetails(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_requirement_failed")
		return
	}

	writeData(w, http.StatusOK, detail, h.logger)
}

// Summary handles POST /api/requirements/summary
func (h *RequirementHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	summary, err := h.requirementService.Summarize(r.Context(), req.RequirementIDs)
	if err != nil {
		writeServiceError(w, h.logger, err, "summarize_requirements_failed")
		return
	}

	writeData(w, http.StatusOK, summary, h.logger)
}
