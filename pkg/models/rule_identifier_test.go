package models

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  RuleIdentifier
	}{
		{input: "Rule 8", want: NewRuleIdentifier(8)},
		{input: "Rule 6(1)(a)", want: NewRuleIdentifier(6, "1", "a")},
		{input: "  Rule 13 (2) ", want: NewRuleIdentifier(13, "2")},
		{input: "Rule 3(iv)", want: NewRuleIdentifier(3, "iv")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRuleIdentifier(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseRuleIdentifier_Invalid(t *testing.T) {
	for _, input := range []string{"", "Rule", "Rule x", "Section 6", "Rule 6(A)", "Rule 6(1"} {
		_, err := ParseRuleIdentifier(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseClausePath(t *testing.T) {
	path, err := ParseClausePath("1(a)")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "a"}, path)

	path, err = ParseClausePath("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, path)

	_, err = ParseClausePath("(a)")
	assert.Error(t, err)
}

func TestRuleIdentifier_String(t *testing.T) {
	assert.Equal(t, "Rule 6(1)(a)", NewRuleIdentifier(6, "1", "a").String())
	assert.Equal(t, "Rule 15", NewRuleIdentifier(15).String())
	assert.Equal(t, "Rule 7(2)", NewRuleIdentifier(7).Child("2").String())
}

func TestRuleIdentifier_NewCopiesPath(t *testing.T) {
	path := []string{"1", "a"}
	id := NewRuleIdentifier(6, path...)
	path[0] = "9"
	assert.Equal(t, "Rule 6(1)(a)", id.String())
}

func TestRuleIdentifier_Within(t *testing.T) {
	rule6 := NewRuleIdentifier(6)
	rule61 := NewRuleIdentifier(6, "1")

	assert.True(t, NewRuleIdentifier(6, "1", "a").Within(rule6))
	assert.True(t, NewRuleIdentifier(6, "1", "a").Within(rule61))
	assert.True(t, rule61.Within(rule61))
	assert.False(t, rule6.Within(rule61))
	assert.False(t, NewRuleIdentifier(16).Within(NewRuleIdentifier(1)), "rule numbers are not string prefixes")
	assert.False(t, NewRuleIdentifier(6, "10").Within(rule61))
}

func TestRuleIdentifier_Less(t *testing.T) {
	ids := []RuleIdentifier{
		NewRuleIdentifier(10, "1"),
		NewRuleIdentifier(6, "10"),
		NewRuleIdentifier(6, "2"),
		NewRuleIdentifier(6),
		NewRuleIdentifier(3, "b"),
		NewRuleIdentifier(3, "a"),
		NewRuleIdentifier(6, "2", "a"),
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	got := make([]string, len(ids))
	for i, id := range ids {
		got[i] = id.String()
	}
	assert.Equal(t, []string{
		"Rule 3(a)", "Rule 3(b)", "Rule 6", "Rule 6(2)", "Rule 6(2)(a)", "Rule 6(10)", "Rule 10(1)",
	}, got)
}

func TestRuleIdentifier_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		ID RuleIdentifier `json:"id"`
	}{NewRuleIdentifier(9, "2")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"Rule 9(2)"}`, string(data))

	var decoded struct {
		ID RuleIdentifier `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"Rule 14(1)"}`), &decoded))
	assert.True(t, decoded.ID.Equal(NewRuleIdentifier(14, "1")))

	assert.Error(t, json.Unmarshal([]byte(`{"id":"14(1)"}`), &decoded))
}

func TestRuleIdentifier_IsZero(t *testing.T) {
	assert.True(t, RuleIdentifier{}.IsZero())
	assert.False(t, NewRuleIdentifier(1).IsZero())
}
