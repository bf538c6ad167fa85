package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
)

// ============================================================================
// Entity Types
// ============================================================================

// EntityType classifies the organization being assessed.
type EntityType string

const (
	EntityStartup     EntityType = "startup"
	EntitySMB         EntityType = "smb"
	EntityEcommerce   EntityType = "ecommerce"
	EntitySocialMedia EntityType = "social_media"
	EntityFintech     EntityType = "fintech"
	EntityHealthcare  EntityType = "healthcare"
	EntityEdtech      EntityType = "edtech"
	EntityGaming      EntityType = "gaming"
	EntityOther       EntityType = "other"
)

// ValidEntityTypes contains all valid entity type values.
var ValidEntityTypes = []EntityType{
	EntityStartup,
	EntitySMB,
	EntityEcommerce,
	EntitySocialMedia,
	EntityFintech,
	EntityHealthcare,
	EntityEdtech,
	EntityGaming,
	EntityOther,
}

// IsValidEntityType checks if the given entity type is valid.
func IsValidEntityType(t EntityType) bool {
	for _, v := range ValidEntityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ScheduleClass returns the Third Schedule entity class for the type, if any.
func (t EntityType) ScheduleClass() (string, bool) {
	switch t {
	case EntityEcommerce:
		return EntityClassEcommerce, true
	case EntitySocialMedia:
		return EntityClassSocialMedia, true
	case EntityGaming:
		return EntityClassGaming, true
	}
	return "", false
}

// ============================================================================
// Security Measures and Data Categories
// ============================================================================

// SecurityMeasure is a safeguard the organization reports having in place.
type SecurityMeasure string

const (
	SecurityEncryption    SecurityMeasure = "encryption"
	SecurityAccessControl SecurityMeasure = "access_control"
	SecurityLogging       SecurityMeasure = "logging"
	SecurityBackups       SecurityMeasure = "backups"
	SecurityNone          SecurityMeasure = "none"
)

// ValidSecurityMeasures contains all valid security measure values.
var ValidSecurityMeasures = []SecurityMeasure{
	SecurityEncryption,
	SecurityAccessControl,
	SecurityLogging,
	SecurityBackups,
	SecurityNone,
}

// BaselineSecurityMeasures is the minimum set of safeguards expected under rule 6.
var BaselineSecurityMeasures = []SecurityMeasure{
	SecurityEncryption,
	SecurityAccessControl,
	SecurityLogging,
	SecurityBackups,
}

// DataCategory tags a kind of personal data the organization processes.
type DataCategory string

const (
	DataName        DataCategory = "name"
	DataEmail       DataCategory = "email"
	DataPhone       DataCategory = "phone"
	DataAddress     DataCategory = "address"
	DataPaymentInfo DataCategory = "payment_info"
	DataHealth      DataCategory = "health_data"
	DataBiometric   DataCategory = "biometric"
	DataLocation    DataCategory = "location"
	DataBehavioral  DataCategory = "behavioral"
)

// ValidDataCategories contains all valid data category values.
var ValidDataCategories = []DataCategory{
	DataName,
	DataEmail,
	DataPhone,
	DataAddress,
	DataPaymentInfo,
	DataHealth,
	DataBiometric,
	DataLocation,
	DataBehavioral,
}

// ============================================================================
// Profile
// ============================================================================

// ProfileInput is the wire form of an organization profile.
// Pointer fields distinguish "absent" from zero; unknown JSON fields are ignored.
type ProfileInput struct {
	BusinessName          string   `json:"business_name,omitempty"`
	EntityType            *string  `json:"entity_type"`
	UserCount             *int64   `json:"user_count"`
	ProcessesChildrenData bool     `json:"processes_children_data,omitempty"`
	CrossBorderTransfers  bool     `json:"cross_border_transfers,omitempty"`
	HasProcessors         bool     `json:"has_processors,omitempty"`
	TracksBehavior        bool     `json:"tracks_behavior,omitempty"`
	TargetedAdvertising   bool     `json:"targeted_advertising,omitempty"`
	HasConsentMechanism   bool     `json:"has_consent_mechanism,omitempty"`
	HasGrievanceSystem    bool     `json:"has_grievance_system,omitempty"`
	HasBreachPlan         bool     `json:"has_breach_plan,omitempty"`
	IsSDF                 bool     `json:"is_sdf,omitempty"`
	UsesAI                *bool    `json:"uses_ai,omitempty"`
	AnnualRevenue         string   `json:"annual_revenue,omitempty"`
	CurrentSecurity       []string `json:"current_security,omitempty"`
	DataTypes             []string `json:"data_types,omitempty"`
}

// OrganizationProfile is the validated, read-only input to matching and gap analysis.
type OrganizationProfile struct {
	ID                    uuid.UUID         `json:"id"`
	Name                  string            `json:"name"`
	EntityType            EntityType        `json:"entity_type"`
	RegisteredUsers       int64             `json:"registered_users"`
	ProcessesChildrenData bool              `json:"processes_children_data"`
	CrossBorderTransfers  bool              `json:"cross_border_transfers"`
	UsesDataProcessors    bool              `json:"uses_data_processors"`
	TracksBehavior        bool              `json:"tracks_behavior"`
	TargetedAdvertising   bool              `json:"targeted_advertising"`
	HasConsentMechanism   bool              `json:"has_consent_mechanism"`
	HasGrievanceMechanism bool              `json:"has_grievance_mechanism"`
	HasBreachPlan         bool              `json:"has_breach_plan"`
	// IsSignificantEntity has no automatic trigger; designation criteria are unpublished.
	IsSignificantEntity   bool              `json:"is_significant_entity"`
	UsesAI                *bool             `json:"uses_ai,omitempty"`
	AnnualRevenueBand     string            `json:"annual_revenue_band,omitempty"`
	SecurityMeasures      []SecurityMeasure `json:"security_measures"`
	DataCategories        []DataCategory    `json:"data_categories"`
	AssessmentScore       *float64          `json:"assessment_score,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// NewOrganizationProfile validates input and builds a profile.
// entity_type and user_count are required; every flag defaults to false.
// Returns *apperrors.ValidationError listing every invalid field.
func NewOrganizationProfile(in ProfileInput) (*OrganizationProfile, error) {
	verr := &apperrors.ValidationError{}

	p := &OrganizationProfile{
		Name:                  strings.TrimSpace(in.BusinessName),
		ProcessesChildrenData: in.ProcessesChildrenData,
		CrossBorderTransfers:  in.CrossBorderTransfers,
		UsesDataProcessors:    in.HasProcessors,
		TracksBehavior:        in.TracksBehavior,
		TargetedAdvertising:   in.TargetedAdvertising,
		HasConsentMechanism:   in.HasConsentMechanism,
		HasGrievanceMechanism: in.HasGrievanceSystem,
		HasBreachPlan:         in.HasBreachPlan,
		IsSignificantEntity:   in.IsSDF,
		UsesAI:                in.UsesAI,
		AnnualRevenueBand:     strings.TrimSpace(in.AnnualRevenue),
		SecurityMeasures:      []SecurityMeasure{},
		DataCategories:        []DataCategory{},
	}

	switch {
	case in.EntityType == nil || strings.TrimSpace(*in.EntityType) == "":
		verr.Add("entity_type", "is required")
	case !IsValidEntityType(EntityType(strings.TrimSpace(*in.EntityType))):
		verr.Add("entity_type", "unknown entity type "+*in.EntityType)
	default:
		p.EntityType = EntityType(strings.TrimSpace(*in.EntityType))
	}

	switch {
	case in.UserCount == nil:
		verr.Add("user_count", "is required")
	case *in.UserCount < 0:
		verr.Add("user_count", "must not be negative")
	default:
		p.RegisteredUsers = *in.UserCount
	}

	seenMeasures := make(map[SecurityMeasure]bool)
	for _, raw := range in.CurrentSecurity {
		m := SecurityMeasure(strings.TrimSpace(raw))
		if !isValidSecurityMeasure(m) {
			verr.Add("current_security", "unknown security measure "+raw)
			continue
		}
		if seenMeasures[m] {
			continue
		}
		seenMeasures[m] = true
		p.SecurityMeasures = append(p.SecurityMeasures, m)
	}
	if seenMeasures[SecurityNone] && len(seenMeasures) > 1 {
		verr.Add("current_security", "\"none\" cannot be combined with other measures")
	}

	seenData := make(map[DataCategory]bool)
	for _, raw := range in.DataTypes {
		c := DataCategory(strings.TrimSpace(raw))
		if !isValidDataCategory(c) {
			verr.Add("data_types", "unknown data category "+raw)
			continue
		}
		if seenData[c] {
			continue
		}
		seenData[c] = true
		p.DataCategories = append(p.DataCategories, c)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return p, nil
}

// HasSecurityMeasure reports whether the profile lists the given safeguard.
func (p *OrganizationProfile) HasSecurityMeasure(m SecurityMeasure) bool {
	for _, have := range p.SecurityMeasures {
		if have == m {
			return true
		}
	}
	return false
}

// HasBaselineSecurity reports whether every baseline safeguard is present.
func (p *OrganizationProfile) HasBaselineSecurity() bool {
	for _, m := range BaselineSecurityMeasures {
		if !p.HasSecurityMeasure(m) {
			return false
		}
	}
	return true
}

func isValidSecurityMeasure(m SecurityMeasure) bool {
	for _, v := range ValidSecurityMeasures {
		if v == m {
			return true
		}
	}
	return false
}

func isValidDataCategory(c DataCategory) bool {
	for _, v := range ValidDataCategories {
		if v == c {
			return true
		}
	}
	return false
}
