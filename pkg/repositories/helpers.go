package repositories

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

const requirementDetailColumns = `
	r.id, r.rule_identifier, r.requirement_text, r.obligation_type,
	r.penalty_category_id, r.deadline, r.is_sdf_specific, r.created_at,
	p.id, p.category_name, p.penalty_amount, p.section_reference`

const requirementDetailFrom = `
	FROM dpdp_requirements r
	LEFT JOIN dpdp_penalty_categories p ON p.id = r.penalty_category_id`

func scanRequirementDetail(row pgx.Row) (*models.RequirementDetail, error) {
	var (
		d         models.RequirementDetail
		ruleID    string
		obType    string
		catID     *int64
		catName   *string
		catAmount *int64
		catRef    *string
	)

	err := row.Scan(
		&d.ID, &ruleID, &d.Text, &obType,
		&d.PenaltyCategoryID, &d.Deadline, &d.IsSignificantEntitySpecific, &d.CreatedAt,
		&catID, &catName, &catAmount, &catRef,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := models.ParseRuleIdentifier(ruleID)
	if err != nil {
		return nil, fmt.Errorf("requirement %d: %w", d.ID, err)
	}
	d.RuleID = parsed
	d.ObligationType = models.ObligationType(obType)

	if catID != nil {
		d.PenaltyCategory = &models.PenaltyCategory{
			ID:               *catID,
			Name:             derefString(catName),
			AmountPaise:      derefInt64(catAmount),
			SectionReference: derefString(catRef),
		}
	}

	return &d, nil
}

func scanPenaltyCategory(row pgx.Row) (*models.PenaltyCategory, error) {
	var c models.PenaltyCategory
	if err := row.Scan(&c.ID, &c.Name, &c.AmountPaise, &c.SectionReference); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanScheduleThreshold(row pgx.Row) (*models.ScheduleThreshold, error) {
	var s models.ScheduleThreshold
	if err := row.Scan(&s.ID, &s.ScheduleName, &s.EntityClass, &s.ThresholdUsers, &s.RetentionDays); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanOrganization(row pgx.Row) (*models.OrganizationProfile, error) {
	var (
		p          models.OrganizationProfile
		entityType string
		measures   []string
		categories []string
	)

	err := row.Scan(
		&p.ID, &p.Name, &entityType, &p.RegisteredUsers,
		&p.ProcessesChildrenData, &p.CrossBorderTransfers, &p.UsesDataProcessors,
		&p.TracksBehavior, &p.TargetedAdvertising, &p.HasConsentMechanism,
		&p.HasGrievanceMechanism, &p.HasBreachPlan, &p.IsSignificantEntity,
		&p.UsesAI, &p.AnnualRevenueBand, &measures, &categories,
		&p.AssessmentScore, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.EntityType = models.EntityType(entityType)
	p.SecurityMeasures = make([]models.SecurityMeasure, 0, len(measures))
	for _, m := range measures {
		p.SecurityMeasures = append(p.SecurityMeasures, models.SecurityMeasure(m))
	}
	p.DataCategories = make([]models.DataCategory, 0, len(categories))
	for _, c := range categories {
		p.DataCategories = append(p.DataCategories, models.DataCategory(c))
	}

	return &p, nil
}

func scanComplianceStatus(row pgx.Row) (*models.ComplianceStatus, error) {
	var (
		s      models.ComplianceStatus
		status string
	)
	if err := row.Scan(&s.OrganizationID, &s.RequirementID, &status, &s.CompletedAt, &s.Notes, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = models.ComplianceStatusValue(status)
	return &s, nil
}

// nullDate converts an optional deadline to a DATE parameter.
func nullDate(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.DateOnly)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}
