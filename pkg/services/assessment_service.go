package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/metrics"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// AssessmentRequest is the input to a one-off assessment.
type AssessmentRequest struct {
	Profile models.ProfileInput `json:"profile"`
	// CompletedRequirementIDs are requirements the caller reports as done.
	CompletedRequirementIDs []int64 `json:"completed_requirement_ids,omitempty"`
	// Attest adds requirements evidenced by the profile answers to the completed set.
	Attest bool `json:"attest,omitempty"`
	// Save persists the profile and its compliance score.
	Save bool `json:"save,omitempty"`
}

// AssessmentService runs matching and gap analysis for organizations.
type AssessmentService interface {
	// Assess validates the profile, matches requirements and scores the gaps.
	// Profile problems are returned as *apperrors.ValidationError.
	Assess(ctx context.Context, req AssessmentRequest) (*models.Assessment, error)

	// AssessOrganization re-assesses a stored organization against its completion
	// ledger and records the resulting score.
	AssessOrganization(ctx context.Context, organizationID uuid.UUID, attest bool) (*models.Assessment, error)
}

type assessmentService struct {
	tx            TxRunner
	catalog       CatalogProvider
	matcher       RequirementMatcher
	analyzer      GapAnalyzer
	attestor      Attestor
	organizations repositories.OrganizationRepository
	statuses      repositories.ComplianceStatusRepository
	now           func() time.Time
	logger        *zap.Logger
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(
	tx TxRunner,
	catalog CatalogProvider,
	matcher RequirementMatcher,
	analyzer GapAnalyzer,
	attestor Attestor,
	organizations repositories.OrganizationRepository,
	statuses repositories.ComplianceStatusRepository,
	logger *zap.Logger,
) AssessmentService {
	return &assessmentService{
		tx:            tx,
		catalog:       catalog,
		matcher:       matcher,
		analyzer:      analyzer,
		attestor:      attestor,
		organizations: organizations,
		statuses:      statuses,
		now:           time.Now,
		logger:        logger.Named("assessment"),
	}
}

func (s *assessmentService) Assess(ctx context.Context, req AssessmentRequest) (*models.Assessment, error) {
	profile, err := models.NewOrganizationProfile(req.Profile)
	if err != nil {
		metrics.AssessmentsTotal.WithLabelValues(metrics.AssessmentInvalid).Inc()
		return nil, err
	}

	assessment, err := s.evaluate(ctx, profile, req.CompletedRequirementIDs, req.Attest)
	if err != nil {
		return nil, s.fail(err)
	}

	if req.Save {
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			if err := s.organizations.Create(ctx, profile); err != nil {
				return err
			}
			return s.organizations.UpdateAssessmentScore(ctx, profile.ID, assessment.Report.ComplianceScore)
		})
		if err != nil {
			return nil, s.fail(fmt.Errorf("save assessment: %w", err))
		}
		score := assessment.Report.ComplianceScore
		profile.AssessmentScore = &score
	}

	s.record(assessment)
	return assessment, nil
}

func (s *assessmentService) AssessOrganization(ctx context.Context, organizationID uuid.UUID, attest bool) (*models.Assessment, error) {
	profile, err := s.organizations.GetByID(ctx, organizationID)
	if err != nil {
		return nil, s.fail(err)
	}

	completed, err := s.statuses.ListCompleted(ctx, organizationID)
	if err != nil {
		return nil, s.fail(err)
	}

	assessment, err := s.evaluate(ctx, profile, completed, attest)
	if err != nil {
		return nil, s.fail(err)
	}

	score := assessment.Report.ComplianceScore
	if err := s.organizations.UpdateAssessmentScore(ctx, organizationID, score); err != nil {
		return nil, s.fail(err)
	}
	profile.AssessmentScore = &score

	s.record(assessment)
	return assessment, nil
}

func (s *assessmentService) evaluate(ctx context.Context, profile *models.OrganizationProfile, completed []int64, attest bool) (*models.Assessment, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	match := s.matcher.Match(catalog, profile)

	var attested []int64
	if attest {
		attested = s.attestor.Attest(catalog, profile, match.RequirementIDs)
		completed = append(append([]int64{}, completed...), attested...)
	}

	now := s.now()
	return &models.Assessment{
		ID:          uuid.New(),
		Profile:     profile,
		Match:       match,
		Report:      s.analyzer.Analyze(catalog, match.RequirementIDs, completed, now),
		Attested:    attested,
		EvaluatedAt: now,
	}, nil
}

func (s *assessmentService) record(a *models.Assessment) {
	metrics.AssessmentsTotal.WithLabelValues(metrics.AssessmentOK).Inc()
	metrics.GapCount.Observe(float64(len(a.Report.Gaps)))
	if a.Match.ProhibitedActivity != nil {
		metrics.ProhibitedActivityTotal.Inc()
		s.logger.Warn("Prohibited activity reported",
			zap.String("assessment_id", a.ID.String()),
			zap.String("activity", a.Match.ProhibitedActivity.Activity))
	}

	s.logger.Info("Assessment complete",
		zap.String("assessment_id", a.ID.String()),
		zap.String("entity_type", string(a.Profile.EntityType)),
		zap.Int("applicable", a.Report.Total),
		zap.Int("gaps", len(a.Report.Gaps)),
		zap.Float64("compliance_score", a.Report.ComplianceScore))
}

func (s *assessmentService) fail(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
		metrics.AssessmentsTotal.WithLabelValues(metrics.AssessmentInvalid).Inc()
	} else {
		metrics.AssessmentsTotal.WithLabelValues(metrics.AssessmentError).Inc()
	}
	return err
}
