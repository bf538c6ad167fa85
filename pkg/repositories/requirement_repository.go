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

// RequirementRepository defines the interface for requirement catalog access.
type RequirementRepository interface {
	// Exists reports whether a requirement with this identifier and exact text is stored.
	Exists(ctx context.Context, ruleID models.RuleIdentifier, text string) (bool, error)

	// Insert stores the requirement unless (rule identifier, text) is already present.
	// On insert, req.ID and req.CreatedAt are populated and true is returned.
	Insert(ctx context.Context, req *models.Requirement) (bool, error)

	// ListAll returns every requirement joined with its penalty category,
	// ordered by rule number then ID.
	ListAll(ctx context.Context) ([]*models.RequirementDetail, error)

	// GetByID returns a single requirement with its penalty category.
	GetByID(ctx context.Context, id int64) (*models.RequirementDetail, error)

	// GetByIDs returns the requirements with the given IDs; unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]*models.RequirementDetail, error)

	// Count returns the number of stored requirements.
	Count(ctx context.Context) (int, error)

	// CountDuplicateTexts returns how many requirement texts are stored under more than one identifier.
	CountDuplicateTexts(ctx context.Context) (int, error)

	// CountDuplicateEntries returns how many (identifier, text) pairs are stored more than once.
	CountDuplicateEntries(ctx context.Context) (int, error)

	// CountByRule returns the number of requirements per main rule number.
	CountByRule(ctx context.Context) (map[int]int, error)
}

type requirementRepository struct{}

// NewRequirementRepository creates a new requirement repository.
func NewRequirementRepository() RequirementRepository {
	return &requirementRepository{}
}

func (r *requirementRepository) Exists(ctx context.Context, ruleID models.RuleIdentifier, text string) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM dpdp_requirements
			WHERE rule_identifier = $1 AND requirement_text = $2
		)`

	var exists bool
	if err := scope.QueryRow(ctx, query, ruleID.String(), text).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check requirement: %w", err)
	}
	return exists, nil
}

func (r *requirementRepository) Insert(ctx context.Context, req *models.Requirement) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO dpdp_requirements (
			rule_identifier, main_rule, requirement_text, obligation_type,
			penalty_category_id, deadline, is_sdf_specific
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rule_identifier, requirement_text) DO NOTHING
		RETURNING id, created_at`

	err := scope.QueryRow(ctx, query,
		req.RuleID.String(),
		req.RuleID.Rule,
		req.Text,
		string(req.ObligationType),
		req.PenaltyCategoryID,
		nullDate(req.Deadline),
		req.IsSignificantEntitySpecific,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert requirement %s: %w", req.RuleID, err)
	}

	return true, nil
}

func (r *requirementRepository) ListAll(ctx context.Context) ([]*models.RequirementDetail, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + requirementDetailColumns + requirementDetailFrom + `
		ORDER BY r.main_rule, r.id`

	return r.queryDetails(ctx, scope, query)
}

func (r *requirementRepository) GetByID(ctx context.Context, id int64) (*models.RequirementDetail, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + requirementDetailColumns + requirementDetailFrom + `
		WHERE r.id = $1`

	detail, err := scanRequirementDetail(scope.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	return detail, nil
}

func (r *requirementRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.RequirementDetail, error) {
	if len(ids) == 0 {
		return []*models.RequirementDetail{}, nil
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + requirementDetailColumns + requirementDetailFrom + `
		WHERE r.id = ANY($1)
		ORDER BY r.main_rule, r.id`

	return r.queryDetails(ctx, scope, query, ids)
}

func (r *requirementRepository) queryDetails(ctx context.Context, scope database.Querier, query string, args ...any) ([]*models.RequirementDetail, error) {
	rows, err := scope.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer rows.Close()

	details := make([]*models.RequirementDetail, 0)
	for rows.Next() {
		d, err := scanRequirementDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirements: %w", err)
	}

	return details, nil
}

func (r *requirementRepository) Count(ctx context.Context) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	var n int
	if err := scope.QueryRow(ctx, `SELECT COUNT(*) FROM dpdp_requirements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count requirements: %w", err)
	}
	return n, nil
}

func (r *requirementRepository) CountDuplicateTexts(ctx context.Context) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT COUNT(*) FROM (
			SELECT requirement_text
			FROM dpdp_requirements
			GROUP BY requirement_text
			HAVING COUNT(*) > 1
		) dup`

	var n int
	if err := scope.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count duplicate requirements: %w", err)
	}
	return n, nil
}

func (r *requirementRepository) CountDuplicateEntries(ctx context.Context) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT COUNT(*) FROM (
			SELECT rule_identifier, requirement_text
			FROM dpdp_requirements
			GROUP BY rule_identifier, requirement_text
			HAVING COUNT(*) > 1
		) dup`

	var n int
	if err := scope.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count duplicate entries: %w", err)
	}
	return n, nil
}

func (r *requirementRepository) CountByRule(ctx context.Context) (map[int]int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Query(ctx, `
		SELECT main_rule, COUNT(*)
		FROM dpdp_requirements
		GROUP BY main_rule`)
	if err != nil {
		return nil, fmt.Errorf("failed to count requirements by rule: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rule, n int
		if err := rows.Scan(&rule, &n); err != nil {
			return nil, fmt.Errorf("failed to scan rule count: %w", err)
		}
		counts[rule] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule counts: %w", err)
	}

	return counts, nil
}
