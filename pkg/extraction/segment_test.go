package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleNumbers(rules []Rule) []int {
	numbers := make([]int, 0, len(rules))
	for _, r := range rules {
		numbers = append(numbers, r.Number)
	}
	return numbers
}

func TestSegmentRules_Sample(t *testing.T) {
	rules := SegmentRules(Normalize(loadSample(t)), 16)

	assert.Equal(t, []int{1, 2, 3, 6, 7, 8, 9, 10, 13, 14, 15}, ruleNumbers(rules))

	byNumber := make(map[int]Rule, len(rules))
	for _, r := range rules {
		byNumber[r.Number] = r
	}

	assert.Equal(t, "Notice given by Data Fiduciary to Data Principal", byNumber[3].Title, "wrapped title joined on one line")
	assert.Equal(t, "Reasonable security safeguards", byNumber[6].Title)
	assert.NotContains(t, byNumber[3].Content, "\n")
	assert.True(t, len(byNumber[15].Content) > 0)
	assert.NotContains(t, byNumber[15].Content, "SCHEDULE", "content stops at the first schedule heading")
	assert.NotContains(t, byNumber[1].Content, "Registration of Consent Manager")
}

func TestSegmentRules_MaxRuleFilters(t *testing.T) {
	rules := SegmentRules(Normalize(loadSample(t)), 10)
	assert.Equal(t, []int{1, 2, 3, 6, 7, 8, 9, 10}, ruleNumbers(rules))
}

func TestSegmentRules_InlineScheduleMentionDoesNotTruncate(t *testing.T) {
	text := "8. Retention.—A Data Fiduciary listed in the First Schedule shall erase data.\n" +
		"9. Contact.—Every Data Fiduciary shall publish contact details.\n"

	rules := SegmentRules(text, 16)
	require.Len(t, rules, 2)
	assert.Equal(t, "A Data Fiduciary listed in the First Schedule shall erase data.", rules[0].Content)
}

func TestSegmentRules_ScheduleHeadingCaseInsensitive(t *testing.T) {
	text := "4. Consent Manager.—A Consent Manager shall be registered.\nFirst Schedule\n5. Not a rule.—Schedule row."
	rules := SegmentRules(text, 16)
	require.Len(t, rules, 1)
	assert.Equal(t, 4, rules[0].Number)
}

func TestSegmentRules_DropsEmptyContent(t *testing.T) {
	text := "4. Consent Manager.— \n5. Processing for State.—The State may process personal data."
	rules := SegmentRules(text, 16)
	require.Len(t, rules, 1)
	assert.Equal(t, 5, rules[0].Number)
	assert.Equal(t, "Processing for State", rules[0].Title)
}

func TestSegmentRules_NoHeadings(t *testing.T) {
	assert.Empty(t, SegmentRules("No numbered rules here at all.", 16))
	assert.Empty(t, SegmentRules("", 16))
}

func TestSegmentRules_InlineSectionReferenceIsNotAHeading(t *testing.T) {
	text := "3. Notice by Data Fiduciary.—The notice shall be given as required under section 5. " +
		"The Data Fiduciary shall keep a record of every notice given.\n" +
		"4. Registration of Consent Manager.—A person may apply to the Board for registration as a Consent Manager.\n"

	rules := SegmentRules(text, 16)
	require.Equal(t, []int{3, 4}, ruleNumbers(rules))

	assert.Equal(t, "The notice shall be given as required under section 5. "+
		"The Data Fiduciary shall keep a record of every notice given.", rules[0].Content)
	assert.Equal(t, "Registration of Consent Manager", rules[1].Title)
	assert.Equal(t, "A person may apply to the Board for registration as a Consent Manager.", rules[1].Content)
}

func TestSegmentRules_HeadingMustStartLine(t *testing.T) {
	text := "7. Breach.—Intimate the Board as set out in rule 4. Consent Manager.—text that is not a heading.\n"

	rules := SegmentRules(text, 16)
	require.Len(t, rules, 1)
	assert.Equal(t, 7, rules[0].Number)
	assert.Contains(t, rules[0].Content, "rule 4. Consent Manager.—text")
}
