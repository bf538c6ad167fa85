package services

import (
	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// Attestor derives completed requirements from a profile's own answers.
type Attestor interface {
	// Attest returns the applicable requirement IDs evidenced by the profile,
	// in the order they appear in applicable.
	Attest(catalog *Catalog, profile *models.OrganizationProfile, applicable []int64) []int64
}

type attestor struct {
	rules *config.ComplianceRules
}

// NewAttestor creates a self-attestation evaluator.
func NewAttestor(rules *config.ComplianceRules) Attestor {
	return &attestor{rules: rules}
}

func (a *attestor) Attest(catalog *Catalog, profile *models.OrganizationProfile, applicable []int64) []int64 {
	attested := make(map[int]bool, 4)
	if profile.HasBaselineSecurity() {
		attested[a.rules.Attestation.SecurityRule] = true
	}
	if profile.HasBreachPlan {
		attested[a.rules.Attestation.BreachPlanRule] = true
	}
	if profile.HasConsentMechanism {
		attested[a.rules.Attestation.ConsentRule] = true
	}
	if profile.HasGrievanceMechanism {
		attested[a.rules.Attestation.GrievanceRule] = true
	}

	ids := make([]int64, 0)
	if len(attested) == 0 {
		return ids
	}
	for _, id := range applicable {
		req, ok := catalog.Get(id)
		if ok && attested[req.MainRule()] {
			ids = append(ids, id)
		}
	}
	return ids
}
