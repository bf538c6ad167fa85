package models

import (
	"time"
)

// ============================================================================
// Obligation Types
// ============================================================================

// ObligationType is the closed category tag carried by every requirement.
type ObligationType string

const (
	ObligationNotice         ObligationType = "notice"
	ObligationSecurity       ObligationType = "security"
	ObligationBreach         ObligationType = "breach"
	ObligationRights         ObligationType = "rights"
	ObligationRetention      ObligationType = "retention"
	ObligationSDF            ObligationType = "sdf"
	ObligationChildren       ObligationType = "children"
	ObligationCrossBorder    ObligationType = "cross_border"
	ObligationConsentManager ObligationType = "consent_manager"
	ObligationGeneral        ObligationType = "general"
)

// ValidObligationTypes contains all valid obligation type values.
var ValidObligationTypes = []ObligationType{
	ObligationNotice,
	ObligationSecurity,
	ObligationBreach,
	ObligationRights,
	ObligationRetention,
	ObligationSDF,
	ObligationChildren,
	ObligationCrossBorder,
	ObligationConsentManager,
	ObligationGeneral,
}

// IsValidObligationType checks if the given obligation type is valid.
func IsValidObligationType(t ObligationType) bool {
	for _, v := range ValidObligationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ============================================================================
// Requirement
// ============================================================================

// Requirement is a single addressable obligation extracted from the rules text.
// Stored in dpdp_requirements; (rule_identifier, requirement_text) is unique.
type Requirement struct {
	ID                          int64          `json:"id"`
	RuleID                      RuleIdentifier `json:"rule_identifier"`
	Text                        string         `json:"text"`
	ObligationType              ObligationType `json:"obligation_type"`
	PenaltyCategoryID           *int64         `json:"penalty_category_id,omitempty"`
	Deadline                    *time.Time     `json:"deadline,omitempty"`
	IsSignificantEntitySpecific bool           `json:"is_significant_entity_specific"`
	CreatedAt                   time.Time      `json:"created_at"`
}

// MainRule returns the leading rule number of the requirement's identifier.
func (r *Requirement) MainRule() int {
	return r.RuleID.Rule
}

// RequirementDetail joins a requirement with its penalty category.
type RequirementDetail struct {
	Requirement
	PenaltyCategory *PenaltyCategory `json:"penalty_category,omitempty"`
}

// PenaltyAmount returns the joined category amount, or zero when uncategorized.
func (d *RequirementDetail) PenaltyAmount() int64 {
	if d.PenaltyCategory == nil {
		return 0
	}
	return d.PenaltyCategory.AmountPaise
}
