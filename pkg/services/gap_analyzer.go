package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// GapAnalyzer scores the unmet requirements of an applicable set.
type GapAnalyzer interface {
	// Analyze builds the gap report for the applicable requirements, treating
	// completed IDs as done. IDs unknown to the catalog and completed IDs outside
	// the applicable set are ignored.
	Analyze(catalog *Catalog, applicable, completed []int64, now time.Time) *models.GapReport

	// PriorityScore returns the 0-100 remediation priority of one requirement.
	// daysRemaining counts days to the full-compliance deadline.
	PriorityScore(obligationType models.ObligationType, penaltyAmount int64, daysRemaining int) float64
}

type gapAnalyzer struct {
	rules *config.ComplianceRules
}

// NewGapAnalyzer creates a gap analyzer for the given compliance rules.
func NewGapAnalyzer(rules *config.ComplianceRules) GapAnalyzer {
	return &gapAnalyzer{rules: rules}
}

func (a *gapAnalyzer) Analyze(catalog *Catalog, applicable, completed []int64, now time.Time) *models.GapReport {
	report := &models.GapReport{
		Gaps:                 []models.Gap{},
		PriorityRequirements: []models.Gap{},
		ByType:               map[models.ObligationType]int{},
		ByPenaltyCategory:    map[string]int{},
	}

	done := make(map[int64]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	seen := make(map[int64]bool, len(applicable))
	for _, id := range applicable {
		if seen[id] {
			continue
		}
		seen[id] = true

		req, ok := catalog.Get(id)
		if !ok {
			continue
		}

		report.Total++
		report.ByType[req.ObligationType]++

		amount := req.PenaltyAmount()
		category := models.UncategorizedPenalty
		if req.PenaltyCategory != nil {
			category = req.PenaltyCategory.Name
		}
		report.ByPenaltyCategory[category]++
		report.TotalPenaltyExposure += amount
		if amount > report.MaxPenalty {
			report.MaxPenalty = amount
		}

		if done[id] {
			report.Completed++
			continue
		}
		report.Gaps = append(report.Gaps, a.gapFor(req, now))
	}

	if report.Total == 0 {
		return report
	}

	sort.SliceStable(report.Gaps, func(i, j int) bool {
		return report.Gaps[i].PriorityScore > report.Gaps[j].PriorityScore
	})

	top := a.rules.PriorityListSize
	if top > len(report.Gaps) {
		top = len(report.Gaps)
	}
	report.PriorityRequirements = append(report.PriorityRequirements, report.Gaps[:top]...)

	report.ComplianceScore = round(float64(report.Completed)/float64(report.Total)*100, 1)
	report.DeadlineWarning = a.deadlineWarning(now)

	return report
}

func (a *gapAnalyzer) gapFor(req *models.RequirementDetail, now time.Time) models.Gap {
	deadline := a.rules.Deadlines.FullCompliance.Time
	if req.Deadline != nil && !req.Deadline.IsZero() {
		deadline = *req.Deadline
	}
	days := daysUntil(now, deadline)
	// Urgency always measures the full-compliance deadline; the per-requirement
	// deadline is reported but does not change the ranking.
	urgencyDays := daysUntil(now, a.rules.Deadlines.FullCompliance.Time)

	gap := models.Gap{
		RequirementID:  req.ID,
		RuleID:         req.RuleID,
		Text:           req.Text,
		ObligationType: req.ObligationType,
		PenaltyAmount:  req.PenaltyAmount(),
		Deadline:       deadline,
		DaysRemaining:  days,
		PriorityScore:  a.PriorityScore(req.ObligationType, req.PenaltyAmount(), urgencyDays),
	}
	if req.PenaltyCategory != nil {
		gap.PenaltyCategory = req.PenaltyCategory.Name
		gap.SectionReference = req.PenaltyCategory.SectionReference
	}
	return gap
}

func (a *gapAnalyzer) PriorityScore(obligationType models.ObligationType, penaltyAmount int64, daysRemaining int) float64 {
	penalty := 0.0
	if a.rules.MaxPenaltyPaise > 0 {
		penalty = math.Min(float64(penaltyAmount)/float64(a.rules.MaxPenaltyPaise)*100, 100)
	}

	urgency := 100.0
	if daysRemaining > 0 {
		urgency = math.Max((1-float64(daysRemaining)/float64(a.rules.ComplianceWindowDays))*100, 0)
	}

	w := a.rules.Weights
	score := w.Penalty*penalty + w.Urgency*urgency + w.Complexity*a.rules.ComplexityFor(obligationType)
	return round(score, 2)
}

func (a *gapAnalyzer) deadlineWarning(now time.Time) *models.DeadlineWarning {
	deadline := a.rules.Deadlines.FullCompliance.Time
	days := daysUntil(now, deadline)
	if days >= a.rules.DeadlineWarningDays {
		return nil
	}

	msg := fmt.Sprintf("Less than %d days remain until the full compliance deadline", a.rules.DeadlineWarningDays)
	if days < 0 {
		msg = "The full compliance deadline has passed"
	}
	return &models.DeadlineWarning{
		Deadline:      deadline,
		DaysRemaining: days,
		Message:       msg,
	}
}

// daysUntil returns the whole days from now to deadline, rounded down.
// A deadline earlier today counts as -1.
func daysUntil(now, deadline time.Time) int {
	return int(math.Floor(deadline.Sub(now).Hours() / 24))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
