package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

// mockAssessmentService records the last request and returns a canned result.
type mockAssessmentService struct {
	assessment  *models.Assessment
	err         error
	lastRequest services.AssessmentRequest
	lastOrgID   uuid.UUID
	lastAttest  bool
}

func (m *mockAssessmentService) Assess(ctx context.Context, req services.AssessmentRequest) (*models.Assessment, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.assessment, nil
}

func (m *mockAssessmentService) AssessOrganization(ctx context.Context, organizationID uuid.UUID, attest bool) (*models.Assessment, error) {
	m.lastOrgID = organizationID
	m.lastAttest = attest
	if m.err != nil {
		return nil, m.err
	}
	return m.assessment, nil
}

// mockRequirementService serves one requirement detail.
type mockRequirementService struct {
	detail  *models.RequirementDetail
	summary *models.RequirementsSummary
	err     error
	lastIDs []int64
}

func (m *mockRequirementService) GetDetails(ctx context.Context, id int64) (*models.RequirementDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *mockRequirementService) Summarize(ctx context.Context, ids []int64) (*models.RequirementsSummary, error) {
	m.lastIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

// mockLedgerService echoes updates back as ledger rows.
type mockLedgerService struct {
	rows []*models.ComplianceStatus
	err  error
}

func (m *mockLedgerService) UpdateStatus(ctx context.Context, organizationID uuid.UUID, requirementID int64, status models.ComplianceStatusValue, notes string) (*models.ComplianceStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	row := &models.ComplianceStatus{
		OrganizationID: organizationID,
		RequirementID:  requirementID,
		Status:         status,
		Notes:          notes,
	}
	m.rows = append(m.rows, row)
	return row, nil
}

func (m *mockLedgerService) List(ctx context.Context, organizationID uuid.UUID) ([]*models.ComplianceStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}
