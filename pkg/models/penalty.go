package models

// Penalty category names as defined by Section 33 of the Act.
const (
	PenaltySecurityBreach      = "security_breach"
	PenaltyBreachNotification  = "breach_notification"
	PenaltyChildrenData        = "children_data"
	PenaltySDFObligations      = "sdf_obligations"
	PenaltyGeneralViolations   = "general_violations"
	PenaltyDataPrincipalDuties = "data_principal_duties"
)

// PaisePerRupee converts rupee amounts into the stored minor unit.
const PaisePerRupee = 100

// PaisePerCrore is one crore rupees expressed in paise.
const PaisePerCrore = 10_000_000 * PaisePerRupee

// PenaltyCategory is a monetary penalty band and its statutory citation.
// Stored in dpdp_penalty_categories. Seeded once, never mutated by extraction.
type PenaltyCategory struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	AmountPaise      int64  `json:"amount_paise"`
	SectionReference string `json:"section_reference"`
}

// AmountCrore returns the penalty amount in crore rupees.
func (p *PenaltyCategory) AmountCrore() float64 {
	return float64(p.AmountPaise) / PaisePerCrore
}
