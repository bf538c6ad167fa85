package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func validInput() ProfileInput {
	return ProfileInput{
		BusinessName: "  Pixel Arena ",
		EntityType:   strPtr("gaming"),
		UserCount:    int64Ptr(6_000_000),
	}
}

func TestNewOrganizationProfile_Defaults(t *testing.T) {
	p, err := NewOrganizationProfile(validInput())
	require.NoError(t, err)

	assert.Equal(t, "Pixel Arena", p.Name)
	assert.Equal(t, EntityGaming, p.EntityType)
	assert.Equal(t, int64(6_000_000), p.RegisteredUsers)
	assert.False(t, p.ProcessesChildrenData)
	assert.False(t, p.IsSignificantEntity)
	assert.Empty(t, p.SecurityMeasures)
	assert.NotNil(t, p.SecurityMeasures)
	assert.NotNil(t, p.DataCategories)
}

func TestNewOrganizationProfile_MapsFlags(t *testing.T) {
	in := validInput()
	in.ProcessesChildrenData = true
	in.CrossBorderTransfers = true
	in.HasProcessors = true
	in.HasGrievanceSystem = true
	in.IsSDF = true
	in.CurrentSecurity = []string{"encryption", "logging", "encryption"}
	in.DataTypes = []string{"email", "location"}

	p, err := NewOrganizationProfile(in)
	require.NoError(t, err)

	assert.True(t, p.ProcessesChildrenData)
	assert.True(t, p.CrossBorderTransfers)
	assert.True(t, p.UsesDataProcessors)
	assert.True(t, p.HasGrievanceMechanism)
	assert.True(t, p.IsSignificantEntity)
	assert.Equal(t, []SecurityMeasure{SecurityEncryption, SecurityLogging}, p.SecurityMeasures)
	assert.Equal(t, []DataCategory{DataEmail, DataLocation}, p.DataCategories)
}

func TestNewOrganizationProfile_ZeroUsersIsValid(t *testing.T) {
	in := validInput()
	in.UserCount = int64Ptr(0)

	p, err := NewOrganizationProfile(in)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.RegisteredUsers)
}

func TestNewOrganizationProfile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ProfileInput)
		fields []string
	}{
		{
			name:   "missing entity type and user count",
			mutate: func(in *ProfileInput) { in.EntityType = nil; in.UserCount = nil },
			fields: []string{"entity_type", "user_count"},
		},
		{
			name:   "blank entity type",
			mutate: func(in *ProfileInput) { in.EntityType = strPtr("  ") },
			fields: []string{"entity_type"},
		},
		{
			name:   "unknown entity type",
			mutate: func(in *ProfileInput) { in.EntityType = strPtr("bank") },
			fields: []string{"entity_type"},
		},
		{
			name:   "negative user count",
			mutate: func(in *ProfileInput) { in.UserCount = int64Ptr(-1) },
			fields: []string{"user_count"},
		},
		{
			name:   "unknown security measure",
			mutate: func(in *ProfileInput) { in.CurrentSecurity = []string{"firewall"} },
			fields: []string{"current_security"},
		},
		{
			name:   "none combined with a measure",
			mutate: func(in *ProfileInput) { in.CurrentSecurity = []string{"none", "backups"} },
			fields: []string{"current_security"},
		},
		{
			name:   "unknown data category",
			mutate: func(in *ProfileInput) { in.DataTypes = []string{"dna"} },
			fields: []string{"data_types"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			p, err := NewOrganizationProfile(in)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestOrganizationProfile_HasBaselineSecurity(t *testing.T) {
	p := &OrganizationProfile{SecurityMeasures: []SecurityMeasure{SecurityEncryption, SecurityAccessControl, SecurityLogging}}
	assert.False(t, p.HasBaselineSecurity())

	p.SecurityMeasures = append(p.SecurityMeasures, SecurityBackups)
	assert.True(t, p.HasBaselineSecurity())
	assert.True(t, p.HasSecurityMeasure(SecurityLogging))
	assert.False(t, p.HasSecurityMeasure(SecurityNone))
}

func TestEntityType_ScheduleClass(t *testing.T) {
	class, ok := EntityEcommerce.ScheduleClass()
	assert.True(t, ok)
	assert.Equal(t, EntityClassEcommerce, class)

	_, ok = EntityFintech.ScheduleClass()
	assert.False(t, ok)
}

func TestScheduleThreshold_Applies(t *testing.T) {
	s := &ScheduleThreshold{ThresholdUsers: 20_000_000}
	assert.False(t, s.Applies(19_999_999))
	assert.True(t, s.Applies(20_000_000))
}
