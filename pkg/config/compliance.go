package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// DateLayout is the calendar date format used for deadlines in YAML.
const DateLayout = "2006-01-02"

// Date is a calendar day decoded from "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns the UTC midnight of the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: date must be a string: %w", node.Line, err)
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q: %w", node.Line, raw, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.Format(DateLayout), nil
}

// Deadlines are the phased commencement dates of the Rules.
type Deadlines struct {
	Notification   Date `yaml:"notification"`
	ConsentManager Date `yaml:"consent_manager"`
	FullCompliance Date `yaml:"full_compliance"`
}

// PenaltyCategoryRule seeds one row of dpdp_penalty_categories.
type PenaltyCategoryRule struct {
	Name             string `yaml:"name"`
	AmountPaise      int64  `yaml:"amount_paise"`
	SectionReference string `yaml:"section_reference"`
}

// PriorityWeights weight the three gap priority components. They must sum to 1.
type PriorityWeights struct {
	Penalty    float64 `yaml:"penalty"`
	Urgency    float64 `yaml:"urgency"`
	Complexity float64 `yaml:"complexity"`
}

// RuleNumbers names the rules that matching treats specially.
type RuleNumbers struct {
	MaxRule            int `yaml:"max_rule"`
	ScheduleAnchor     int `yaml:"schedule_anchor"`
	ContactInformation int `yaml:"contact_information"`
	CrossBorder        int `yaml:"cross_border"`
	SignificantEntity  int `yaml:"significant_entity"`
}

// ExtractionLimits bound the text accepted as a requirement.
type ExtractionLimits struct {
	MinSubClauseLength   int `yaml:"min_sub_clause_length"`
	MinRequirementLength int `yaml:"min_requirement_length"`
	MaxRuleContentLength int `yaml:"max_rule_content_length"`
}

// ScheduleVocabulary is one recognised threshold clause in the schedule text.
// A clause matches when both Phrase and ThresholdPhrase occur in it.
type ScheduleVocabulary struct {
	EntityClass     string `yaml:"entity_class"`
	Phrase          string `yaml:"phrase"`
	ThresholdPhrase string `yaml:"threshold_phrase"`
	ThresholdUsers  int64  `yaml:"threshold_users"`
	RetentionDays   int    `yaml:"retention_days"`
}

// ScheduleRules locates the threshold schedule and its vocabulary.
type ScheduleRules struct {
	Name         string               `yaml:"name"`
	StartHeading string               `yaml:"start_heading"`
	EndHeading   string               `yaml:"end_heading"`
	Vocabulary   []ScheduleVocabulary `yaml:"vocabulary"`
}

// ProhibitedActivityRule describes the warning raised for tracking or targeting children.
type ProhibitedActivityRule struct {
	LegalReference  string `yaml:"legal_reference"`
	PenaltyCategory string `yaml:"penalty_category"`
}

// AttestationRules map profile answers to the rules they evidence.
type AttestationRules struct {
	SecurityRule   int `yaml:"security_rule"`
	BreachPlanRule int `yaml:"breach_plan_rule"`
	ConsentRule    int `yaml:"consent_rule"`
	GrievanceRule  int `yaml:"grievance_rule"`
}

// ComplianceRules is the statutory configuration shared by extraction, matching and
// gap analysis. Load it once at startup and treat it as read-only afterwards.
type ComplianceRules struct {
	Deadlines            Deadlines `yaml:"deadlines"`
	ComplianceWindowDays int       `yaml:"compliance_window_days"`
	DeadlineWarningDays  int       `yaml:"deadline_warning_days"`
	MaxPenaltyPaise      int64     `yaml:"max_penalty_paise"`
	PriorityListSize     int       `yaml:"priority_list_size"`

	Weights           PriorityWeights                   `yaml:"weights"`
	Complexity        map[models.ObligationType]float64 `yaml:"complexity"`
	DefaultComplexity float64                           `yaml:"default_complexity"`

	PenaltyCategories      []PenaltyCategoryRule `yaml:"penalty_categories"`
	RulePenaltyCategories  map[int]string        `yaml:"rule_penalty_categories"`
	DefaultPenaltyCategory string                `yaml:"default_penalty_category"`

	// RuleObligationTypes tags each extracted rule. Rules without an entry are not extracted.
	RuleObligationTypes map[int]models.ObligationType `yaml:"rule_obligation_types"`
	UniversalTypes      []models.ObligationType       `yaml:"universal_types"`

	Rules              RuleNumbers            `yaml:"rules"`
	Extraction         ExtractionLimits       `yaml:"extraction"`
	Schedule           ScheduleRules          `yaml:"schedule"`
	ProhibitedActivity ProhibitedActivityRule `yaml:"prohibited_activity"`
	Attestation        AttestationRules       `yaml:"attestation"`
}

// DefaultComplianceRules returns the tables for the DPDP Rules, 2025 as notified.
func DefaultComplianceRules() *ComplianceRules {
	return &ComplianceRules{
		Deadlines: Deadlines{
			Notification:   NewDate(2025, time.November, 13),
			ConsentManager: NewDate(2026, time.November, 13),
			FullCompliance: NewDate(2027, time.May, 13),
		},
		ComplianceWindowDays: 545,
		DeadlineWarningDays:  180,
		MaxPenaltyPaise:      250 * models.PaisePerCrore,
		PriorityListSize:     10,

		Weights: PriorityWeights{Penalty: 0.4, Urgency: 0.3, Complexity: 0.3},
		Complexity: map[models.ObligationType]float64{
			models.ObligationSecurity:       90,
			models.ObligationBreach:         85,
			models.ObligationChildren:       80,
			models.ObligationSDF:            75,
			models.ObligationCrossBorder:    70,
			models.ObligationConsentManager: 65,
			models.ObligationRights:         60,
			models.ObligationRetention:      50,
			models.ObligationNotice:         40,
		},
		DefaultComplexity: 50,

		PenaltyCategories: []PenaltyCategoryRule{
			{Name: models.PenaltySecurityBreach, AmountPaise: 250 * models.PaisePerCrore, SectionReference: "Section 33(1)"},
			{Name: models.PenaltyBreachNotification, AmountPaise: 200 * models.PaisePerCrore, SectionReference: "Section 33(2)"},
			{Name: models.PenaltyChildrenData, AmountPaise: 200 * models.PaisePerCrore, SectionReference: "Section 33(3)"},
			{Name: models.PenaltySDFObligations, AmountPaise: 150 * models.PaisePerCrore, SectionReference: "Section 33(4)"},
			{Name: models.PenaltyGeneralViolations, AmountPaise: 50 * models.PaisePerCrore, SectionReference: "Section 33(5)"},
			{Name: models.PenaltyDataPrincipalDuties, AmountPaise: 10_000 * models.PaisePerRupee, SectionReference: "Section 33(6)"},
		},
		RulePenaltyCategories: map[int]string{
			6:  models.PenaltySecurityBreach,
			7:  models.PenaltyBreachNotification,
			10: models.PenaltyChildrenData,
			11: models.PenaltyChildrenData,
			13: models.PenaltySDFObligations,
		},
		DefaultPenaltyCategory: models.PenaltyGeneralViolations,

		RuleObligationTypes: map[int]models.ObligationType{
			3:  models.ObligationNotice,
			6:  models.ObligationSecurity,
			7:  models.ObligationBreach,
			8:  models.ObligationRetention,
			9:  models.ObligationNotice,
			10: models.ObligationChildren,
			13: models.ObligationSDF,
			14: models.ObligationRights,
			15: models.ObligationCrossBorder,
		},
		UniversalTypes: []models.ObligationType{
			models.ObligationNotice,
			models.ObligationSecurity,
			models.ObligationBreach,
			models.ObligationRights,
		},

		Rules: RuleNumbers{
			MaxRule:            16,
			ScheduleAnchor:     8,
			ContactInformation: 9,
			CrossBorder:        15,
			SignificantEntity:  13,
		},
		Extraction: ExtractionLimits{
			MinSubClauseLength:   30,
			MinRequirementLength: 50,
			MaxRuleContentLength: 2000,
		},
		Schedule: ScheduleRules{
			Name:         models.ScheduleThird,
			StartHeading: "THIRD SCHEDULE",
			EndHeading:   "FOURTH SCHEDULE",
			Vocabulary: []ScheduleVocabulary{
				{EntityClass: models.EntityClassEcommerce, Phrase: "e-commerce entity", ThresholdPhrase: "two crore", ThresholdUsers: 20_000_000, RetentionDays: 1095},
				{EntityClass: models.EntityClassGaming, Phrase: "online gaming", ThresholdPhrase: "fifty lakh", ThresholdUsers: 5_000_000, RetentionDays: 1095},
				{EntityClass: models.EntityClassSocialMedia, Phrase: "social media", ThresholdPhrase: "two crore", ThresholdUsers: 20_000_000, RetentionDays: 1095},
			},
		},
		ProhibitedActivity: ProhibitedActivityRule{
			LegalReference:  "Section 9(3) of DPDP Act, 2023",
			PenaltyCategory: models.PenaltyChildrenData,
		},
		Attestation: AttestationRules{
			SecurityRule:   6,
			BreachPlanRule: 7,
			ConsentRule:    3,
			GrievanceRule:  14,
		},
	}
}

// LoadComplianceRules returns the defaults overlaid with the YAML document at path.
// Keys absent from the file keep their default values; lists in the file replace the default lists.
// An empty path returns the validated defaults.
func LoadComplianceRules(path string) (*ComplianceRules, error) {
	rules := DefaultComplianceRules()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read compliance rules file: %w", err)
		}
		if err := yaml.Unmarshal(data, rules); err != nil {
			return nil, fmt.Errorf("failed to parse compliance rules file: %w", err)
		}
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Validate checks internal consistency of the tables.
func (r *ComplianceRules) Validate() error {
	if r.Deadlines.FullCompliance.IsZero() {
		return fmt.Errorf("deadlines.full_compliance is required")
	}
	if r.ComplianceWindowDays <= 0 {
		return fmt.Errorf("compliance_window_days must be positive, got %d", r.ComplianceWindowDays)
	}
	if r.MaxPenaltyPaise <= 0 {
		return fmt.Errorf("max_penalty_paise must be positive, got %d", r.MaxPenaltyPaise)
	}
	if r.PriorityListSize < 0 {
		return fmt.Errorf("priority_list_size must not be negative, got %d", r.PriorityListSize)
	}

	w := r.Weights
	if w.Penalty < 0 || w.Urgency < 0 || w.Complexity < 0 {
		return fmt.Errorf("weights must not be negative")
	}
	if sum := w.Penalty + w.Urgency + w.Complexity; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}

	for t, v := range r.Complexity {
		if !models.IsValidObligationType(t) {
			return fmt.Errorf("complexity: unknown obligation type %q", t)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("complexity[%s] must be within 0..100, got %v", t, v)
		}
	}
	if r.DefaultComplexity < 0 || r.DefaultComplexity > 100 {
		return fmt.Errorf("default_complexity must be within 0..100, got %v", r.DefaultComplexity)
	}

	known := make(map[string]bool, len(r.PenaltyCategories))
	for _, c := range r.PenaltyCategories {
		if c.Name == "" {
			return fmt.Errorf("penalty category name is required")
		}
		if c.AmountPaise < 0 {
			return fmt.Errorf("penalty category %s: amount must not be negative", c.Name)
		}
		if known[c.Name] {
			return fmt.Errorf("penalty category %s declared twice", c.Name)
		}
		known[c.Name] = true
	}
	if !known[r.DefaultPenaltyCategory] {
		return fmt.Errorf("default_penalty_category %q is not a declared penalty category", r.DefaultPenaltyCategory)
	}
	if r.ProhibitedActivity.PenaltyCategory != "" && !known[r.ProhibitedActivity.PenaltyCategory] {
		return fmt.Errorf("prohibited_activity.penalty_category %q is not a declared penalty category", r.ProhibitedActivity.PenaltyCategory)
	}

	if r.Rules.MaxRule <= 0 {
		return fmt.Errorf("rules.max_rule must be positive, got %d", r.Rules.MaxRule)
	}
	for rule := range r.RulePenaltyCategories {
		if rule < 1 || rule > r.Rules.MaxRule {
			return fmt.Errorf("rule_penalty_categories: rule %d outside 1..%d", rule, r.Rules.MaxRule)
		}
	}
	for rule, t := range r.RuleObligationTypes {
		if rule < 1 || rule > r.Rules.MaxRule {
			return fmt.Errorf("rule_obligation_types: rule %d outside 1..%d", rule, r.Rules.MaxRule)
		}
		if !models.IsValidObligationType(t) {
			return fmt.Errorf("rule_obligation_types[%d]: unknown obligation type %q", rule, t)
		}
	}
	for _, t := range r.UniversalTypes {
		if !models.IsValidObligationType(t) {
			return fmt.Errorf("universal_types: unknown obligation type %q", t)
		}
	}

	if r.Extraction.MinSubClauseLength < 0 || r.Extraction.MinRequirementLength < 0 {
		return fmt.Errorf("extraction minimum lengths must not be negative")
	}
	if r.Extraction.MaxRuleContentLength <= 0 {
		return fmt.Errorf("extraction.max_rule_content_length must be positive")
	}

	classes := make(map[string]bool, len(r.Schedule.Vocabulary))
	for _, v := range r.Schedule.Vocabulary {
		if v.EntityClass == "" || v.Phrase == "" || v.ThresholdPhrase == "" {
			return fmt.Errorf("schedule vocabulary entries need entity_class, phrase and threshold_phrase")
		}
		if v.ThresholdUsers <= 0 || v.RetentionDays <= 0 {
			return fmt.Errorf("schedule vocabulary %s: threshold and retention must be positive", v.EntityClass)
		}
		if classes[v.EntityClass] {
			return fmt.Errorf("schedule vocabulary %s declared twice", v.EntityClass)
		}
		classes[v.EntityClass] = true
	}
	return nil
}

// PenaltyCategoryForRule returns the penalty category name for a main rule number.
func (r *ComplianceRules) PenaltyCategoryForRule(rule int) string {
	if name, ok := r.RulePenaltyCategories[rule]; ok {
		return name
	}
	return r.DefaultPenaltyCategory
}

// ObligationTypeForRule returns the obligation type tagged on requirements of a rule.
func (r *ComplianceRules) ObligationTypeForRule(rule int) models.ObligationType {
	if t, ok := r.RuleObligationTypes[rule]; ok {
		return t
	}
	return models.ObligationGeneral
}

// IsExtractedRule reports whether requirements are extracted from the rule.
func (r *ComplianceRules) IsExtractedRule(rule int) bool {
	_, ok := r.RuleObligationTypes[rule]
	return ok
}

// ComplexityFor returns the implementation complexity score of an obligation type.
func (r *ComplianceRules) ComplexityFor(t models.ObligationType) float64 {
	if v, ok := r.Complexity[t]; ok {
		return v
	}
	return r.DefaultComplexity
}

// DeadlineFor returns the compliance date stamped on requirements of the given type.
func (r *ComplianceRules) DeadlineFor(t models.ObligationType) time.Time {
	if t == models.ObligationConsentManager && !r.Deadlines.ConsentManager.IsZero() {
		return r.Deadlines.ConsentManager.Time
	}
	return r.Deadlines.FullCompliance.Time
}

// IsUniversalType reports whether requirements of type t apply to every organization.
func (r *ComplianceRules) IsUniversalType(t models.ObligationType) bool {
	for _, u := range r.UniversalTypes {
		if u == t {
			return true
		}
	}
	return false
}

// IsSignificantEntityRule reports whether a rule carries significant-entity obligations.
func (r *ComplianceRules) IsSignificantEntityRule(rule int) bool {
	return rule == r.Rules.SignificantEntity
}
