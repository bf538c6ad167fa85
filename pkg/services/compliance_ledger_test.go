package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

func newLedgerForTest(repo *mockComplianceStatusRepository, now time.Time) ComplianceLedgerService {
	svc := NewComplianceLedgerService(repo, zap.NewNop())
	svc.(*complianceLedgerService).now = func() time.Time { return now }
	return svc
}

func TestComplianceLedgerService_UpdateStatus(t *testing.T) {
	repo := newMockComplianceStatusRepository()
	svc := newLedgerForTest(repo, windowStart)
	ctx := context.Background()
	orgID := uuid.New()

	row, err := svc.UpdateStatus(ctx, orgID, 2, models.ComplianceCompleted, "encryption rolled out")
	require.NoError(t, err)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, windowStart, *row.CompletedAt)
	assert.Equal(t, "encryption rolled out", row.Notes)

	row, err = svc.UpdateStatus(ctx, orgID, 2, models.ComplianceNotStarted, "")
	require.NoError(t, err)
	assert.Nil(t, row.CompletedAt, "reopening clears the completion time")

	rows, err := svc.List(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ComplianceNotStarted, rows[0].Status)
}

func TestComplianceLedgerService_InvalidStatus(t *testing.T) {
	repo := newMockComplianceStatusRepository()
	svc := newLedgerForTest(repo, windowStart)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), 2, "done", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "status")
	assert.Empty(t, repo.rows)
}

func TestComplianceLedgerService_RepositoryError(t *testing.T) {
	repo := newMockComplianceStatusRepository()
	repo.upsertErr = apperrors.ErrNotFound
	svc := newLedgerForTest(repo, windowStart)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), 404, models.ComplianceCompleted, "")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
