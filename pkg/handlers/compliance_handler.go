package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

// UpdateStatusRequest for PUT /api/organizations/{oid}/requirements/{rid}/status
type UpdateStatusRequest struct {
	Status models.ComplianceStatusValue `json:"status"`
	Notes  string                       `json:"notes,omitempty"`
}

// ComplianceStatusListResponse for GET /api/organizations/{oid}/requirements/status
type ComplianceStatusListResponse struct {
	Statuses []*models.ComplianceStatus `json:"statuses"`
	Total    int                        `json:"total"`
}

// ComplianceHandler handles per-organization completion tracking.
type ComplianceHandler struct {
	ledgerService services.ComplianceLedgerService
	logger        *zap.Logger
}

// NewComplianceHandler creates a new compliance ledger handler.
func NewComplianceHandler(ledgerService services.ComplianceLedgerService, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// RegisterRoutes registers the compliance handler's routes on the given mux.
func (h *ComplianceHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/organizations/{oid}/requirements"

	mux.HandleFunc("GET "+base+"/status", h.List)
	mux.HandleFunc("PUT "+base+"/{rid}/status", h.UpdateStatus)
}

// List handles GET /api/organizations/{oid}/requirements/status
func (h *ComplianceHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := ParseOrganizationID(w, r, h.logger)
	if !ok {
		return
	}

	statuses, err := h.ledgerService.List(r.Context(), organizationID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_statuses_failed")
		return
	}

	writeData(w, http.StatusOK, ComplianceStatusListResponse{Statuses: statuses, Total: len(statuses)}, h.logger)
}

// UpdateStatus handles PUT /api/organizations/{oid}/requirements/{rid}/status
func (h *ComplianceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := ParseOrganizationID(w, r, h.logger)
	if !ok {
		return
	}
	requirementID, ok := ParseRequirementID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	row, err := h.ledgerService.UpdateStatus(r.Context(), organizationID, requirementID, req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, h.logger, err, "update_status_failed")
		return
	}

	writeData(w, http.StatusOK, row, h.logger)
}
