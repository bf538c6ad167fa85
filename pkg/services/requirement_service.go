package services

import (
	"context"

	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// RequirementService answers read-only questions about the requirement catalog.
type RequirementService interface {
	// GetDetails returns one requirement with its penalty category.
	GetDetails(ctx context.Context, id int64) (*models.RequirementDetail, error)

	// Summarize counts the given requirements by type and penalty category and
	// totals their penalty exposure. Unknown and repeated IDs are ignored.
	Summarize(ctx context.Context, ids []int64) (*models.RequirementsSummary, error)
}

type requirementService struct {
	requirements repositories.RequirementRepository
	catalog      CatalogProvider
}

// NewRequirementService creates a new requirement service.
func NewRequirementService(requirements repositories.RequirementRepository, catalog CatalogProvider) RequirementService {
	return &requirementService{
		requirements: requirements,
		catalog:      catalog,
	}
}

func (s *requirementService) GetDetails(ctx context.Context, id int64) (*models.RequirementDetail, error) {
	return s.requirements.GetByID(ctx, id)
}

func (s *requirementService) Summarize(ctx context.Context, ids []int64) (*models.RequirementsSummary, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(catalog, ids), nil
}

// Summarize aggregates requirements from a catalog snapshot.
func Summarize(catalog *Catalog, ids []int64) *models.RequirementsSummary {
	summary := &models.RequirementsSummary{
		ByType:            map[models.ObligationType]int{},
		ByPenaltyCategory: map[string]int{},
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		req, ok := catalog.Get(id)
		if !ok {
			continue
		}

		summary.Total++
		summary.ByType[req.ObligationType]++
		category := models.UncategorizedPenalty
		if req.PenaltyCategory != nil {
			category = req.PenaltyCategory.Name
		}
		summary.ByPenaltyCategory[category]++

		amount := req.PenaltyAmount()
		summary.TotalPenaltyExposure += amount
		if amount > summary.MaxPenalty {
			summary.MaxPenalty = amount
		}
	}

	return summary
}
