package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/database"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// ComplianceStatusRepository defines the interface for the per-organization completion ledger.
type ComplianceStatusRepository interface {
	// Upsert writes the status row keyed by (organization, requirement).
	// Returns apperrors.ErrNotFound when the organization or requirement does not exist.
	Upsert(ctx context.Context, status *models.ComplianceStatus) error

	// List returns every ledger row for an organization ordered by requirement ID.
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.ComplianceStatus, error)

	// ListCompleted returns the IDs of requirements the organization has completed.
	ListCompleted(ctx context.Context, organizationID uuid.UUID) ([]int64, error)
}

type complianceStatusRepository struct{}

// NewComplianceStatusRepository creates a new compliance status repository.
func NewComplianceStatusRepository() ComplianceStatusRepository {
	return &complianceStatusRepository{}
}

func (r *complianceStatusRepository) Upsert(ctx context.Context, status *models.ComplianceStatus) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO dpdp_compliance_status (organization_id, requirement_id, status, completed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (organization_id, requirement_id) DO UPDATE
		SET status = EXCLUDED.status,
		    completed_at = EXCLUDED.completed_at,
		    notes = EXCLUDED.notes,
		    updated_at = NOW()
		RETURNING updated_at`

	err := scope.QueryRow(ctx, query,
		status.OrganizationID,
		status.RequirementID,
		string(status.Status),
		status.CompletedAt,
		status.Notes,
	).Scan(&status.UpdatedAt)
	if err != nil {
		// Foreign key violation: unknown organization or requirement
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to upsert compliance status: %w", err)
	}

	return nil
}

func (r *complianceStatusRepository) List(ctx context.Context, organizationID uuid.UUID) ([]*models.ComplianceStatus, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Query(ctx, `
		SELECT organization_id, requirement_id, status, completed_at, notes, updated_at
		FROM dpdp_compliance_status
		WHERE organization_id = $1
		ORDER BY requirement_id`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance status: %w", err)
	}
	defer rows.Close()

	statuses := make([]*models.ComplianceStatus, 0)
	for rows.Next() {
		s, err := scanComplianceStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance status: %w", err)
		}
		statuses = append(statuses, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compliance status: %w", err)
	}

	return statuses, nil
}

func (r *complianceStatusRepository) ListCompleted(ctx context.Context, organizationID uuid.UUID) ([]int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Query(ctx, `
		SELECT requirement_id
		FROM dpdp_compliance_status
		WHERE organization_id = $1 AND status = $2
		ORDER BY requirement_id`, organizationID, string(models.ComplianceCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to list completed requirements: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan requirement id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed requirements: %w", err)
	}

	return ids, nil
}
