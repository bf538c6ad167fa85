package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// SeedingService writes the configured reference data that extraction depends on.
type SeedingService interface {
	// SeedPenaltyCategories upserts every configured penalty category and returns
	// the stored rows keyed by name. Safe to run repeatedly.
	SeedPenaltyCategories(ctx context.Context) (map[string]*models.PenaltyCategory, error)
}

type seedingService struct {
	penalties repositories.PenaltyCategoryRepository
	rules     *config.ComplianceRules
	logger    *zap.Logger
}

// NewSeedingService creates a new seeding service.
func NewSeedingService(
	penalties repositories.PenaltyCategoryRepository,
	rules *config.ComplianceRules,
	logger *zap.Logger,
) SeedingService {
	return &seedingService{
		penalties: penalties,
		rules:     rules,
		logger:    logger.Named("seeding"),
	}
}

func (s *seedingService) SeedPenaltyCategories(ctx context.Context) (map[string]*models.PenaltyCategory, error) {
	seeded := make(map[string]*models.PenaltyCategory, len(s.rules.PenaltyCategories))
	for _, pc := range s.rules.PenaltyCategories {
		category := &models.PenaltyCategory{
			Name:             pc.Name,
			AmountPaise:      pc.AmountPaise,
			SectionReference: pc.SectionReference,
		}
		if err := s.penalties.Upsert(ctx, category); err != nil {
			return nil, fmt.Errorf("seed penalty categories: %w", err)
		}
		seeded[category.Name] = category
	}

	s.logger.Info("Seeded penalty categories", zap.Int("count", len(seeded)))
	return seeded, nil
}
