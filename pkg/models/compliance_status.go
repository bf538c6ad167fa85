package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceStatusValue is the completion state of one requirement for one organization.
type ComplianceStatusValue string

const (
	ComplianceNotStarted ComplianceStatusValue = "not_started"
	ComplianceCompleted  ComplianceStatusValue = "completed"
)

// IsValidComplianceStatus checks if the given status is valid.
func IsValidComplianceStatus(s ComplianceStatusValue) bool {
	return s == ComplianceNotStarted || s == ComplianceCompleted
}

// ComplianceStatus is a ledger row keyed by (organization, requirement).
// Stored in dpdp_compliance_status.
type ComplianceStatus struct {
	OrganizationID uuid.UUID             `json:"organization_id"`
	RequirementID  int64                 `json:"requirement_id"`
	Status         ComplianceStatusValue `json:"status"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}
