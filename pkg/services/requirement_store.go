package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/logging"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// logTextLen bounds requirement text in log fields.
const logTextLen = 80

// RequirementStore persists extracted requirements without duplicates.
type RequirementStore interface {
	// Insert stores a requirement unless the same identifier and text already exist.
	// The penalty category and deadline are resolved from the rule number and type.
	// Returns false, nil for a duplicate.
	Insert(ctx context.Context, ruleID models.RuleIdentifier, text string, obligationType models.ObligationType, significantEntitySpecific bool) (bool, error)

	// ResetCategories forgets resolved penalty category IDs.
	// Category rows seeded inside a rolled-back transaction no longer exist.
	ResetCategories()
}

type requirementStore struct {
	requirements repositories.RequirementRepository
	penalties    repositories.PenaltyCategoryRepository
	rules        *config.ComplianceRules
	logger       *zap.Logger

	mu         sync.Mutex
	categories map[string]*int64 // nil value: looked up and missing
}

// NewRequirementStore creates a new requirement store.
func NewRequirementStore(
	requirements repositories.RequirementRepository,
	penalties repositories.PenaltyCategoryRepository,
	rules *config.ComplianceRules,
	logger *zap.Logger,
) RequirementStore {
	return &requirementStore{
		requirements: requirements,
		penalties:    penalties,
		rules:        rules,
		logger:       logger.Named("requirement-store"),
		categories:   make(map[string]*int64),
	}
}

func (s *requirementStore) Insert(
	ctx context.Context,
	ruleID models.RuleIdentifier,
	text string,
	obligationType models.ObligationType,
	significantEntitySpecific bool,
) (bool, error) {
	exists, err := s.requirements.Exists(ctx, ruleID, text)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Debug("Requirement already stored",
			zap.String("rule", ruleID.String()),
			zap.String("text", logging.TruncateString(text, logTextLen)))
		return false, nil
	}

	categoryID, err := s.resolveCategory(ctx, ruleID.Rule)
	if err != nil {
		return false, err
	}

	deadline := s.rules.DeadlineFor(obligationType)
	req := &models.Requirement{
		RuleID:                      ruleID,
		Text:                        text,
		ObligationType:              obligationType,
		PenaltyCategoryID:           categoryID,
		Deadline:                    &deadline,
		IsSignificantEntitySpecific: significantEntitySpecific,
	}

	return s.requirements.Insert(ctx, req)
}

func (s *requirementStore) ResetCategories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make(map[string]*int64)
}

// resolveCategory maps a main rule number to its penalty category row.
// A category missing from the database yields nil and a warning, once per name.
func (s *requirementStore) resolveCategory(ctx context.Context, rule int) (*int64, error) {
	name := s.rules.PenaltyCategoryForRule(rule)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.categories[name]; ok {
		return id, nil
	}

	category, err := s.penalties.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("resolve penalty category for rule %d: %w", rule, err)
		}
		s.logger.Warn("Penalty category not seeded; storing requirement without category",
			zap.Int("rule", rule),
			zap.String("category", name))
		s.categories[name] = nil
		return nil, nil
	}

	s.categories[name] = &category.ID
	return &category.ID, nil
}
