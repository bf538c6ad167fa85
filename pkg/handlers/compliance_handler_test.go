package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

func newComplianceMux(svc *mockLedgerService) *http.ServeMux {
	mux := http.NewServeMux()
	NewComplianceHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestComplianceHandler_UpdateStatus(t *testing.T) {
	svc := &mockLedgerService{}
	mux := newComplianceMux(svc)
	orgID := uuid.New()

	req := httptest.NewRequest(http.MethodPut,
		"/api/organizations/"+orgID.String()+"/requirements/12/status",
		strings.NewReader(`{"status":"completed","notes":"policy signed"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.rows, 1)
	assert.Equal(t, orgID, svc.rows[0].OrganizationID)
	assert.Equal(t, int64(12), svc.rows[0].RequirementID)
	assert.Equal(t, models.ComplianceCompleted, svc.rows[0].Status)
	assert.Equal(t, "policy signed", svc.rows[0].Notes)

	listRec := httptest.NewRecorder()
	mux.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/organizations/"+orgID.String()+"/requirements/status", nil))
	require.Equal(t, http.StatusOK, listRec.Code)

	var resp struct {
		Data ComplianceStatusListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(listRec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.Total)
}

func TestComplianceHandler_UpdateStatusErrors(t *testing.T) {
	verr := &apperrors.ValidationError{}
	verr.Add("status", "must be not_started or completed")
	orgPath := "/api/organizations/" + uuid.NewString()

	tests := []struct {
		name     string
		path     string
		body     string
		err      error
		wantCode int
	}{
		{name: "bad organization", path: "/api/organizations/nope/requirements/1/status", body: `{"status":"completed"}`, wantCode: http.StatusBadRequest},
		{name: "bad requirement", path: orgPath + "/requirements/x/status", body: `{"status":"completed"}`, wantCode: http.StatusBadRequest},
		{name: "bad body", path: orgPath + "/requirements/1/status", body: `status=completed`, wantCode: http.StatusBadRequest},
		{name: "bad status", path: orgPath + "/requirements/1/status", body: `{"status":"done"}`, err: verr, wantCode: http.StatusBadRequest},
		{name: "unknown requirement", path: orgPath + "/requirements/999/status", body: `{"status":"completed"}`, err: apperrors.ErrNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newComplianceMux(&mockLedgerService{err: tt.err}).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
