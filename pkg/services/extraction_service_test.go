package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

type extractionFixture struct {
	tx        *fakeTx
	penalties *mockPenaltyCategoryRepository
	reqs      *mockRequirementRepository
	schedules *mockScheduleThresholdRepository
	svc       ExtractionService
}

func newExtractionFixture() *extractionFixture {
	rules := config.DefaultComplianceRules()
	f := &extractionFixture{
		tx:        &fakeTx{},
		penalties: newMockPenaltyCategoryRepository(),
		schedules: &mockScheduleThresholdRepository{},
	}
	f.reqs = newMockRequirementRepository(f.penalties)
	logger := zap.NewNop()
	f.svc = NewExtractionService(
		f.tx,
		NewSeedingService(f.penalties, rules, logger),
		NewRequirementStore(f.reqs, f.penalties, rules, logger),
		f.reqs,
		f.penalties,
		f.schedules,
		rules,
		logger,
	)
	return f
}

func loadRulesSample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../extraction/testdata/rules_sample.txt")
	require.NoError(t, err)
	return string(data)
}

func TestExtractionService_Build(t *testing.T) {
	f := newExtractionFixture()

	result, err := f.svc.Build(context.Background(), BuildInput{
		RulesText: loadRulesSample(t),
		ActText:   "The Digital Personal Data Protection Act,   2023",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, 11, result.RulesSegmented)
	assert.Equal(t, 9, result.RulesProcessed)
	assert.Equal(t, 18, result.Candidates)
	assert.Equal(t, 18, result.Inserted)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 0, result.TooShort)
	assert.Equal(t, 3, result.ThresholdsFound)
	assert.Equal(t, 3, result.ThresholdsInserted)
	assert.Equal(t, 46, result.ActCharacters)

	var ids []string
	for _, r := range f.reqs.requirements {
		ids = append(ids, r.RuleID.String())
	}
	assert.Equal(t, []string{
		"Rule 3(a)", "Rule 3(b)", "Rule 3(c)",
		"Rule 6(1)(a)", "Rule 6(1)(b)", "Rule 6(1)(c)", "Rule 6(2)",
		"Rule 7(1)", "Rule 7(2)",
		"Rule 8",
		"Rule 9",
		"Rule 10(1)", "Rule 10(2)",
		"Rule 13(1)", "Rule 13(2)",
		"Rule 14(1)", "Rule 14(2)",
		"Rule 15",
	}, ids)
}

func TestExtractionService_BuildTagsRequirements(t *testing.T) {
	f := newExtractionFixture()
	_, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
	require.NoError(t, err)

	byID := make(map[string]*models.Requirement)
	for _, r := range f.reqs.requirements {
		byID[r.RuleID.String()] = r
	}

	tests := []struct {
		ruleID      string
		obType      models.ObligationType
		category    string
		significant bool
	}{
		{ruleID: "Rule 3(a)", obType: models.ObligationNotice, category: models.PenaltyGeneralViolations},
		{ruleID: "Rule 6(1)(a)", obType: models.ObligationSecurity, category: models.PenaltySecurityBreach},
		{ruleID: "Rule 7(2)", obType: models.ObligationBreach, category: models.PenaltyBreachNotification},
		{ruleID: "Rule 8", obType: models.ObligationRetention, category: models.PenaltyGeneralViolations},
		{ruleID: "Rule 9", obType: models.ObligationNotice, category: models.PenaltyGeneralViolations},
		{ruleID: "Rule 10(1)", obType: models.ObligationChildren, category: models.PenaltyChildrenData},
		{ruleID: "Rule 13(2)", obType: models.ObligationSDF, category: models.PenaltySDFObligations, significant: true},
		{ruleID: "Rule 14(1)", obType: models.ObligationRights, category: models.PenaltyGeneralViolations},
		{ruleID: "Rule 15", obType: models.ObligationCrossBorder, category: models.PenaltyGeneralViolations},
	}

	for _, tt := range tests {
		t.Run(tt.ruleID, func(t *testing.T) {
			r, ok := byID[tt.ruleID]
			require.True(t, ok)
			assert.Equal(t, tt.obType, r.ObligationType)
			assert.Equal(t, tt.significant, r.IsSignificantEntitySpecific)
			require.NotNil(t, r.PenaltyCategoryID)
			assert.Equal(t, tt.category, f.penalties.byID(*r.PenaltyCategoryID).Name)
			assert.Greater(t, len([]rune(r.Text)), 50)
			assert.NotContains(t, r.Text, "Illustration")
		})
	}
}

func TestExtractionService_BuildIsIdempotent(t *testing.T) {
	f := newExtractionFixture()
	in := BuildInput{RulesText: loadRulesSample(t)}

	_, err := f.svc.Build(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.Build(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 18, second.Duplicates)
	assert.Equal(t, 0, second.ThresholdsInserted)
	assert.Len(t, f.reqs.requirements, 18)
	assert.Len(t, f.schedules.thresholds, 3)
	assert.Len(t, f.penalties.byName, 6)
}

func TestExtractionService_BuildEmptyText(t *testing.T) {
	f := newExtractionFixture()

	result, err := f.svc.Build(context.Background(), BuildInput{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.RulesSegmented)
	assert.Equal(t, 0, result.Inserted)
	assert.Len(t, f.penalties.byName, 6, "reference data is seeded even without rules")
}

func TestExtractionService_BuildErrors(t *testing.T) {
	t.Run("transaction", func(t *testing.T) {
		f := newExtractionFixture()
		f.tx.err = errors.New("could not begin")

		_, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extraction build failed")
	})

	t.Run("insert", func(t *testing.T) {
		f := newExtractionFixture()
		f.reqs.insertErr = errors.New("unique violation")

		_, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store Rule 3(a)")
		assert.Contains(t, err.Error(), "unique violation")
	})

	t.Run("thresholds", func(t *testing.T) {
		f := newExtractionFixture()
		f.schedules.insertErr = errors.New("schedule table missing")

		_, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schedule table missing")
	})
}

func TestExtractionService_BuildAfterRollback(t *testing.T) {
	f := newExtractionFixture()
	f.schedules.insertErr = errors.New("schedule table missing")
	_, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
	require.Error(t, err)

	// Discard what the failed transaction wrote. Sequences do not rewind.
	f.penalties.byName = make(map[string]*models.PenaltyCategory)
	f.penalties.nextID = 100
	f.reqs.requirements = nil
	f.schedules.insertErr = nil

	result, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
	require.NoError(t, err)
	require.Positive(t, result.Inserted)

	for _, r := range f.reqs.requirements {
		require.NotNil(t, r.PenaltyCategoryID, "requirement %s", r.RuleID)
		assert.GreaterOrEqual(t, *r.PenaltyCategoryID, int64(100), "requirement %s references a rolled-back category", r.RuleID)
	}
}

func TestExtractionService_Verify(t *testing.T) {
	f := newExtractionFixture()
	_, err := f.svc.Build(context.Background(), BuildInput{RulesText: loadRulesSample(t)})
	require.NoError(t, err)

	report, err := f.svc.Verify(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Passed())
	assert.Equal(t, 18, report.TotalRequirements)
	assert.Equal(t, 0, report.DuplicateEntries)
	assert.Equal(t, 0, report.DuplicateTexts)
	assert.Equal(t, 6, report.PenaltyCategories)
	assert.Equal(t, 3, report.ExpectedThresholds)
	assert.Len(t, report.Thresholds, 3)
	assert.Equal(t, map[int]int{3: 3, 6: 4, 7: 2, 8: 1, 9: 1, 10: 2, 13: 2, 14: 2, 15: 1}, report.ByRule)
}

func TestVerifyReport_Passed(t *testing.T) {
	assert.False(t, (&VerifyReport{DuplicateEntries: 1, ExpectedThresholds: 0}).Passed())
	assert.True(t, (&VerifyReport{DuplicateTexts: 2, ExpectedThresholds: 0}).Passed(), "shared texts do not fail verification")
	assert.False(t, (&VerifyReport{ExpectedThresholds: 3}).Passed())
	assert.True(t, (&VerifyReport{Thresholds: []*models.ScheduleThreshold{{}}, ExpectedThresholds: 1}).Passed())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "ab...", truncateRunes("abc", 2))
	assert.Equal(t, "डेटा...", truncateRunes("डेटा संरक्षण", 4))
	assert.Equal(t, "abc", truncateRunes("abc", 0))
}
