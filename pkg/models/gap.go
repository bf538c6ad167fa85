package models

import (
	"time"

	"github.com/google/uuid"
)

// ProhibitedActivityWarning flags a profile combination the Act forbids outright.
// It is surfaced alongside matching results and never adds requirements.
type ProhibitedActivityWarning struct {
	Activity        string `json:"activity"`
	Reason          string `json:"reason"`
	LegalReference  string `json:"legal_reference"`
	PenaltyCategory string `json:"penalty_category"`
}

// MatchResult is the applicable requirement set for one profile.
type MatchResult struct {
	// RequirementIDs is sorted ascending and free of duplicates.
	RequirementIDs []int64 `json:"requirement_ids"`
	// Sources counts how many requirements each selection rule contributed before union.
	Sources            map[string]int             `json:"sources"`
	ProhibitedActivity *ProhibitedActivityWarning `json:"prohibited_activity,omitempty"`
}

// Gap is an applicable requirement that has not been completed.
type Gap struct {
	RequirementID    int64          `json:"requirement_id"`
	RuleID           RuleIdentifier `json:"rule_identifier"`
	Text             string         `json:"text"`
	ObligationType   ObligationType `json:"obligation_type"`
	PenaltyCategory  string         `json:"penalty_category,omitempty"`
	PenaltyAmount    int64          `json:"penalty_amount_paise"`
	SectionReference string         `json:"section_reference,omitempty"`
	Deadline         time.Time      `json:"deadline"`
	DaysRemaining    int            `json:"days_remaining"`
	PriorityScore    float64        `json:"priority_score"`
}

// DeadlineWarning is raised when the full-compliance deadline is close.
type DeadlineWarning struct {
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"days_remaining"`
	Message       string    `json:"message"`
}

// GapReport is the ranked outcome of gap analysis for one assessment.
type GapReport struct {
	Total                int                    `json:"total"`
	Completed            int                    `json:"completed"`
	Gaps                 []Gap                  `json:"gaps"`
	PriorityRequirements []Gap                  `json:"priority_requirements"`
	ComplianceScore      float64                `json:"compliance_score"`
	MaxPenalty           int64                  `json:"max_penalty_paise"`
	TotalPenaltyExposure int64                  `json:"total_penalty_exposure_paise"`
	ByType               map[ObligationType]int `json:"by_type"`
	ByPenaltyCategory    map[string]int         `json:"by_penalty_category"`
	DeadlineWarning      *DeadlineWarning       `json:"deadline_warning,omitempty"`
}

// RequirementsSummary aggregates a list of requirements without gap scoring.
type RequirementsSummary struct {
	Total                int                    `json:"total"`
	ByType               map[ObligationType]int `json:"by_type"`
	ByPenaltyCategory    map[string]int         `json:"by_penalty_category"`
	MaxPenalty           int64                  `json:"max_penalty_paise"`
	TotalPenaltyExposure int64                  `json:"total_penalty_exposure_paise"`
}

// Assessment bundles a profile, its match and its gap report.
type Assessment struct {
	ID          uuid.UUID            `json:"id"`
	Profile     *OrganizationProfile `json:"profile"`
	Match       *MatchResult         `json:"match"`
	Report      *GapReport           `json:"report"`
	Attested    []int64              `json:"attested_requirement_ids,omitempty"`
	EvaluatedAt time.Time            `json:"evaluated_at"`
}

// Selection rules reported in MatchResult.Sources.
const (
	MatchSourceUniversal         = "universal"
	MatchSourceThreshold         = "threshold"
	MatchSourceChildren          = "children"
	MatchSourceCrossBorder       = "cross_border"
	MatchSourceSignificantEntity = "significant_entity"
)

// UncategorizedPenalty is the ByPenaltyCategory key for requirements without a category.
const UncategorizedPenalty = "uncategorized"
