package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// ComplianceLedgerService records per-organization requirement completion.
type ComplianceLedgerService interface {
	// UpdateStatus sets the status of one requirement for one organization.
	// Completing stamps CompletedAt; reopening clears it.
	UpdateStatus(ctx context.Context, organizationID uuid.UUID, requirementID int64, status models.ComplianceStatusValue, notes string) (*models.ComplianceStatus, error)

	// List returns the organization's ledger rows.
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.ComplianceStatus, error)
}

type complianceLedgerService struct {
	statuses repositories.ComplianceStatusRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewComplianceLedgerService creates a new ledger service.
func NewComplianceLedgerService(statuses repositories.ComplianceStatusRepository, logger *zap.Logger) ComplianceLedgerService {
	return &complianceLedgerService{
		statuses: statuses,
		now:      time.Now,
		logger:   logger.Named("ledger"),
	}
}

func (s *complianceLedgerService) UpdateStatus(
	ctx context.Context,
	organizationID uuid.UUID,
	requirementID int64,
	status models.ComplianceStatusValue,
	notes string,
) (*models.ComplianceStatus, error) {
	if !models.IsValidComplianceStatus(status) {
		verr := &apperrors.ValidationError{}
		verr.Add("status", "must be not_started or completed")
		return nil, verr
	}

	row := &models.ComplianceStatus{
		OrganizationID: organizationID,
		RequirementID:  requirementID,
		Status:         status,
		Notes:          notes,
	}
	if status == models.ComplianceCompleted {
		completedAt := s.now().UTC()
		row.CompletedAt = &completedAt
	}

	if err := s.statuses.Upsert(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Info("Updated compliance status",
		zap.String("organization_id", organizationID.String()),
		zap.Int64("requirement_id", requirementID),
		zap.String("status", string(status)))

	return row, nil
}

func (s *complianceLedgerService) List(ctx context.Context, organizationID uuid.UUID) ([]*models.ComplianceStatus, error) {
	return s.statuses.List(ctx, organizationID)
}
