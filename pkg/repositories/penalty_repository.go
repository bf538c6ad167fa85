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

// PenaltyCategoryRepository defines the interface for penalty category access.
type PenaltyCategoryRepository interface {
	// Upsert inserts the category or refreshes its amount and citation by name.
	// category.ID is populated from the stored row.
	Upsert(ctx context.Context, category *models.PenaltyCategory) error

	// GetByName returns the category with the given name.
	GetByName(ctx context.Context, name string) (*models.PenaltyCategory, error)

	// List returns all categories ordered by ID.
	List(ctx context.Context) ([]*models.PenaltyCategory, error)
}

type penaltyCategoryRepository struct{}

// NewPenaltyCategoryRepository creates a new penalty category repository.
func NewPenaltyCategoryRepository() PenaltyCategoryRepository {
	return &penaltyCategoryRepository{}
}

func (r *penaltyCategoryRepository) Upsert(ctx context.Context, category *models.PenaltyCategory) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO dpdp_penalty_categories (category_name, penalty_amount, section_reference)
		VALUES ($1, $2, $3)
		ON CONFLICT (category_name) DO UPDATE
		SET penalty_amount = EXCLUDED.penalty_amount,
		    section_reference = EXCLUDED.section_reference
		RETURNING id`

	err := scope.QueryRow(ctx, query, category.Name, category.AmountPaise, category.SectionReference).
		Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert penalty category %s: %w", category.Name, err)
	}
	return nil
}

func (r *penaltyCategoryRepository) GetByName(ctx context.Context, name string) (*models.PenaltyCategory, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, category_name, penalty_amount, section_reference
		FROM dpdp_penalty_categories
		WHERE category_name = $1`

	category, err := scanPenaltyCategory(scope.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get penalty category: %w", err)
	}
	return category, nil
}

func (r *penaltyCategoryRepository) List(ctx context.Context) ([]*models.PenaltyCategory, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Query(ctx, `
		SELECT id, category_name, penalty_amount, section_reference
		FROM dpdp_penalty_categories
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalty categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.PenaltyCategory
	for rows.Next() {
		c, err := scanPenaltyCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan penalty category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating penalty categories: %w", err)
	}

	return categories, nil
}
