package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/database"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// ScheduleThresholdRepository defines the interface for schedule threshold access.
type ScheduleThresholdRepository interface {
	// InsertIfAbsent stores the threshold unless (schedule, entity class) already exists.
	InsertIfAbsent(ctx context.Context, threshold *models.ScheduleThreshold) (bool, error)

	// List returns every stored threshold ordered by schedule and entity class.
	List(ctx context.Context) ([]*models.ScheduleThreshold, error)

	// GetByClass returns the threshold for an entity class in a schedule.
	GetByClass(ctx context.Context, scheduleName, entityClass string) (*models.ScheduleThreshold, error)
}

type scheduleThresholdRepository struct{}

// NewScheduleThresholdRepository creates a new schedule threshold repository.
func NewScheduleThresholdRepository() ScheduleThresholdRepository {
	return &scheduleThresholdRepository{}
}

func (r *scheduleThresholdRepository) InsertIfAbsent(ctx context.Context, threshold *models.ScheduleThreshold) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO dpdp_schedule_thresholds (schedule_name, entity_class, threshold_users, retention_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (schedule_name, entity_class) DO NOTHING
		RETURNING id`

	err := scope.QueryRow(ctx, query,
		threshold.ScheduleName,
		threshold.EntityClass,
		threshold.ThresholdUsers,
		threshold.RetentionDays,
	).Scan(&threshold.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert schedule threshold %s: %w", threshold.EntityClass, err)
	}
	return true, nil
}

func (r *scheduleThresholdRepository) List(ctx context.Context) ([]*models.ScheduleThreshold, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Query(ctx, `
		SELECT id, schedule_name, entity_class, threshold_users, retention_days
		FROM dpdp_schedule_thresholds
		ORDER BY schedule_name, entity_class`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule thresholds: %w", err)
	}
	defer rows.Close()

	thresholds := make([]*models.ScheduleThreshold, 0)
	for rows.Next() {
		s, err := scanScheduleThreshold(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule threshold: %w", err)
		}
		thresholds = append(thresholds, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule thresholds: %w", err)
	}

	return thresholds, nil
}

func (r *scheduleThresholdRepository) GetByClass(ctx context.Context, scheduleName, entityClass string) (*models.ScheduleThreshold, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, schedule_name, entity_class, threshold_users, retention_days
		FROM dpdp_schedule_thresholds
		WHERE schedule_name = $1 AND entity_class = $2`

	s, err := scanScheduleThreshold(scope.QueryRow(ctx, query, scheduleName, entityClass))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule threshold: %w", err)
	}
	return s, nil
}
