package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

// OrganizationAssessmentRequest for POST /api/organizations/{oid}/assessments
type OrganizationAssessmentRequest struct {
	Attest bool `json:"attest"`
}

// AssessmentHandler handles compliance assessment requests.
type AssessmentHandler struct {
	assessmentService services.AssessmentService
	logger            *zap.Logger
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(assessmentService services.AssessmentService, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		logger:            logger,
	}
}

// RegisterRoutes registers the assessment handler's routes on the given mux.
func (h *AssessmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assessments", h.Assess)
	mux.HandleFunc("POST /api/organizations/{oid}/assessments", h.AssessOrganization)
}

// Assess handles POST /api/assessments
func (h *AssessmentHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req services.AssessmentRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	assessment, err := h.assessmentService.Assess(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "assessment_failed")
		return
	}

	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	writeData(w, status, assessment, h.logger)
}

// AssessOrganization handles POST /api/organizations/{oid}/assessments
// An empty body is accepted and means attest=false.
func (h *AssessmentHandler) AssessOrganization(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := ParseOrganizationID(w, r, h.logger)
	if !ok {
		return
	}

	var req OrganizationAssessmentRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, h.logger) {
		return
	}

	assessment, err := h.assessmentService.AssessOrganization(r.Context(), organizationID, req.Attest)
	if err != nil {
		writeServiceError(w, h.logger, err, "assessment_failed")
		return
	}

	writeData(w, http.StatusOK, assessment, h.logger)
}
