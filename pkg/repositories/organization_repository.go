package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/database"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// OrganizationRepository defines the interface for organization profile persistence.
type OrganizationRepository interface {
	// Create stores a profile. A nil ID is replaced with a new UUID.
	Create(ctx context.Context, profile *models.OrganizationProfile) error

	// GetByID returns a stored profile.
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationProfile, error)

	// UpdateAssessmentScore records the latest compliance score for a profile.
	UpdateAssessmentScore(ctx context.Context, id uuid.UUID, score float64) error
}

type organizationRepository struct{}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository() OrganizationRepository {
	return &organizationRepository{}
}

func (r *organizationRepository) Create(ctx context.Context, profile *models.OrganizationProfile) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	query := `
		INSERT INTO dpdp_organizations (
			id, business_name, entity_type, registered_users,
			processes_children_data, cross_border_transfers, uses_data_processors,
			tracks_behavior, targeted_advertising, has_consent_mechanism,
			has_grievance_mechanism, has_breach_plan, is_significant_entity,
			uses_ai, annual_revenue_band, security_measures, data_categories
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err := scope.QueryRow(ctx, query,
		profile.ID,
		profile.Name,
		string(profile.EntityType),
		profile.RegisteredUsers,
		profile.ProcessesChildrenData,
		profile.CrossBorderTransfers,
		profile.UsesDataProcessors,
		profile.TracksBehavior,
		profile.TargetedAdvertising,
		profile.HasConsentMechanism,
		profile.HasGrievanceMechanism,
		profile.HasBreachPlan,
		profile.IsSignificantEntity,
		profile.UsesAI,
		profile.AnnualRevenueBand,
		toStrings(profile.SecurityMeasures),
		toStrings(profile.DataCategories),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationProfile, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, business_name, entity_type, registered_users,
		       processes_children_data, cross_border_transfers, uses_data_processors,
		       tracks_behavior, targeted_advertising, has_consent_mechanism,
		       has_grievance_mechanism, has_breach_plan, is_significant_entity,
		       uses_ai, annual_revenue_band, security_measures, data_categories,
		       assessment_score::float8, created_at, updated_at
		FROM dpdp_organizations
		WHERE id = $1`

	profile, err := scanOrganization(scope.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return profile, nil
}

func (r *organizationRepository) UpdateAssessmentScore(ctx context.Context, id uuid.UUID, score float64) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	result, err := scope.Exec(ctx, `
		UPDATE dpdp_organizations
		SET assessment_score = $2, updated_at = NOW()
		WHERE id = $1`, id, score)
	if err != nil {
		return fmt.Errorf("failed to update assessment score: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
