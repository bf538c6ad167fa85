package services

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/metrics"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// Catalog is an immutable snapshot of the requirement catalog and the
// schedule thresholds. It is shared between concurrent assessments and
// must not be modified after NewCatalog returns.
type Catalog struct {
	requirements []*models.RequirementDetail
	byID         map[int64]*models.RequirementDetail
	thresholds   map[string]*models.ScheduleThreshold
}

// NewCatalog builds a snapshot. Requirements keep the given order; thresholds are
// keyed by entity class, the first entry per class winning.
func NewCatalog(requirements []*models.RequirementDetail, thresholds []*models.ScheduleThreshold) *Catalog {
	c := &Catalog{
		requirements: requirements,
		byID:         make(map[int64]*models.RequirementDetail, len(requirements)),
		thresholds:   make(map[string]*models.ScheduleThreshold, len(thresholds)),
	}
	for _, r := range requirements {
		c.byID[r.ID] = r
	}
	for _, t := range thresholds {
		if _, ok := c.thresholds[t.EntityClass]; !ok {
			c.thresholds[t.EntityClass] = t
		}
	}
	return c
}

// Requirements returns every requirement in catalog order.
func (c *Catalog) Requirements() []*models.RequirementDetail {
	return c.requirements
}

// Get returns the requirement with the given ID.
func (c *Catalog) Get(id int64) (*models.RequirementDetail, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Len returns the number of requirements.
func (c *Catalog) Len() int {
	return len(c.requirements)
}

// Threshold returns the schedule threshold for an entity class.
func (c *Catalog) Threshold(entityClass string) (*models.ScheduleThreshold, bool) {
	t, ok := c.thresholds[entityClass]
	return t, ok
}

// CatalogProvider serves the current catalog snapshot.
type CatalogProvider interface {
	// Catalog returns the cached snapshot, loading it when absent or expired.
	// Returns apperrors.ErrCatalogEmpty when no requirements have been extracted.
	Catalog(ctx context.Context) (*Catalog, error)

	// Invalidate drops the cached snapshot.
	Invalidate()
}

type catalogProvider struct {
	requirements repositories.RequirementRepository
	schedules    repositories.ScheduleThresholdRepository
	key          string
	cache        *expirable.LRU[string, *Catalog]
	logger       *zap.Logger
}

// NewCatalogProvider creates a provider caching snapshots for ttl.
// Snapshots are keyed by the configured schedule name, so size bounds the number of
// rule sets held at once.
func NewCatalogProvider(
	requirements repositories.RequirementRepository,
	schedules repositories.ScheduleThresholdRepository,
	rules *config.ComplianceRules,
	size int,
	ttl time.Duration,
	logger *zap.Logger,
) CatalogProvider {
	return &catalogProvider{
		requirements: requirements,
		schedules:    schedules,
		key:          rules.Schedule.Name,
		cache:        expirable.NewLRU[string, *Catalog](size, nil, ttl),
		logger:       logger.Named("catalog"),
	}
}

func (p *catalogProvider) Catalog(ctx context.Context) (*Catalog, error) {
	if c, ok := p.cache.Get(p.key); ok {
		metrics.CatalogCacheHits.Inc()
		return c, nil
	}
	metrics.CatalogCacheMisses.Inc()

	requirements, err := p.requirements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(requirements) == 0 {
		return nil, apperrors.ErrCatalogEmpty
	}

	all, err := p.schedules.List(ctx)
	if err != nil {
		return nil, err
	}
	thresholds := make([]*models.ScheduleThreshold, 0, len(all))
	for _, t := range all {
		if t.ScheduleName == p.key {
			thresholds = append(thresholds, t)
		}
	}

	c := NewCatalog(requirements, thresholds)
	p.cache.Add(p.key, c)

	p.logger.Debug("Loaded requirement catalog",
		zap.Int("requirements", c.Len()),
		zap.Int("thresholds", len(thresholds)))

	return c, nil
}

func (p *catalogProvider) Invalidate() {
	p.cache.Purge()
}
