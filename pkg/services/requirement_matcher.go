package services

import (
	"sort"
	"strings"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// RequirementMatcher selects the requirements that apply to an organization.
type RequirementMatcher interface {
	// Match is pure over the catalog snapshot: the same catalog and profile always
	// yield the same result.
	Match(catalog *Catalog, profile *models.OrganizationProfile) *models.MatchResult
}

type requirementMatcher struct {
	rules *config.ComplianceRules
}

// NewRequirementMatcher creates a matcher for the given compliance rules.
func NewRequirementMatcher(rules *config.ComplianceRules) RequirementMatcher {
	return &requirementMatcher{rules: rules}
}

func (m *requirementMatcher) Match(catalog *Catalog, profile *models.OrganizationProfile) *models.MatchResult {
	result := &models.MatchResult{
		Sources: map[string]int{
			models.MatchSourceUniversal:         0,
			models.MatchSourceThreshold:         0,
			models.MatchSourceChildren:          0,
			models.MatchSourceCrossBorder:       0,
			models.MatchSourceSignificantEntity: 0,
		},
		ProhibitedActivity: m.prohibitedActivity(profile),
	}

	thresholdGated := m.meetsThreshold(catalog, profile)
	anchor := models.NewRuleIdentifier(m.rules.Rules.ScheduleAnchor)
	contact := models.NewRuleIdentifier(m.rules.Rules.ContactInformation)
	crossBorder := models.NewRuleIdentifier(m.rules.Rules.CrossBorder)
	significant := models.NewRuleIdentifier(m.rules.Rules.SignificantEntity)

	selected := make(map[int64]struct{})
	add := func(source string, id int64) {
		result.Sources[source]++
		selected[id] = struct{}{}
	}

	for _, r := range catalog.Requirements() {
		if m.rules.IsUniversalType(r.ObligationType) && !r.IsSignificantEntitySpecific {
			add(models.MatchSourceUniversal, r.ID)
		}
		if thresholdGated && (r.ObligationType == models.ObligationRetention || r.RuleID.Within(anchor)) {
			add(models.MatchSourceThreshold, r.ID)
		}
		if profile.ProcessesChildrenData && r.ObligationType == models.ObligationChildren && !r.RuleID.Within(contact) {
			add(models.MatchSourceChildren, r.ID)
		}
		if profile.CrossBorderTransfers && r.RuleID.Within(crossBorder) {
			add(models.MatchSourceCrossBorder, r.ID)
		}
		if profile.IsSignificantEntity &&
			(r.IsSignificantEntitySpecific || r.ObligationType == models.ObligationSDF || r.RuleID.Within(significant)) {
			add(models.MatchSourceSignificantEntity, r.ID)
		}
	}

	result.RequirementIDs = make([]int64, 0, len(selected))
	for id := range selected {
		result.RequirementIDs = append(result.RequirementIDs, id)
	}
	sort.Slice(result.RequirementIDs, func(i, j int) bool {
		return result.RequirementIDs[i] < result.RequirementIDs[j]
	})

	return result
}

// meetsThreshold reports whether the profile's entity class has a schedule
// threshold and the registered user count reaches it.
func (m *requirementMatcher) meetsThreshold(catalog *Catalog, profile *models.OrganizationProfile) bool {
	class, ok := profile.EntityType.ScheduleClass()
	if !ok {
		return false
	}
	threshold, ok := catalog.Threshold(class)
	if !ok {
		return false
	}
	return threshold.Applies(profile.RegisteredUsers)
}

// prohibitedActivity flags tracking or targeted advertising of children.
func (m *requirementMatcher) prohibitedActivity(profile *models.OrganizationProfile) *models.ProhibitedActivityWarning {
	if !profile.ProcessesChildrenData || !(profile.TracksBehavior || profile.TargetedAdvertising) {
		return nil
	}

	var activities []string
	if profile.TracksBehavior {
		activities = append(activities, "behavioural tracking of children")
	}
	if profile.TargetedAdvertising {
		activities = append(activities, "targeted advertising directed at children")
	}

	return &models.ProhibitedActivityWarning{
		Activity:        strings.Join(activities, " and "),
		Reason:          "A Data Fiduciary must not track or behaviourally monitor children, or direct targeted advertising at them.",
		LegalReference:  m.rules.ProhibitedActivity.LegalReference,
		PenaltyCategory: m.rules.ProhibitedActivity.PenaltyCategory,
	}
}
