package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ruleIdentifierPattern = regexp.MustCompile(`^Rule\s+(\d+)((?:\s*\([0-9a-z]+\))*)$`)
	clauseSegmentPattern  = regexp.MustCompile(`\(([0-9a-z]+)\)`)
	clausePathPattern     = regexp.MustCompile(`^([0-9a-z]+)((?:\([0-9a-z]+\))*)$`)
)

// RuleIdentifier addresses a rule and an optional nested clause path.
// "Rule 6(1)(a)" is {Rule: 6, Path: ["1", "a"]}.
// Identifiers are compared structurally, never by string prefix.
type RuleIdentifier struct {
	Rule int
	Path []string
}

// NewRuleIdentifier builds an identifier for a rule and clause path.
func NewRuleIdentifier(rule int, path ...string) RuleIdentifier {
	p := make([]string, len(path))
	copy(p, path)
	return RuleIdentifier{Rule: rule, Path: p}
}

// ParseRuleIdentifier parses the canonical "Rule N(x)(y)" form.
func ParseRuleIdentifier(s string) (RuleIdentifier, error) {
	m := ruleIdentifierPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return RuleIdentifier{}, fmt.Errorf("invalid rule identifier %q", s)
	}
	rule, err := strconv.Atoi(m[1])
	if err != nil {
		return RuleIdentifier{}, fmt.Errorf("invalid rule number in %q: %w", s, err)
	}
	var path []string
	for _, seg := range clauseSegmentPattern.FindAllStringSubmatch(m[2], -1) {
		path = append(path, seg[1])
	}
	return RuleIdentifier{Rule: rule, Path: path}, nil
}

// ParseClausePath splits a sub-clause identifier such as "a", "2" or "1(a)"
// into its path segments.
func ParseClausePath(id string) ([]string, error) {
	m := clausePathPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return nil, fmt.Errorf("invalid clause identifier %q", id)
	}
	path := []string{m[1]}
	for _, seg := range clauseSegmentPattern.FindAllStringSubmatch(m[2], -1) {
		path = append(path, seg[1])
	}
	return path, nil
}

// Child returns a new identifier with the given segments appended.
func (r RuleIdentifier) Child(segments ...string) RuleIdentifier {
	path := make([]string, 0, len(r.Path)+len(segments))
	path = append(path, r.Path...)
	path = append(path, segments...)
	return RuleIdentifier{Rule: r.Rule, Path: path}
}

// Equal reports whether both identifiers address the same clause.
func (r RuleIdentifier) Equal(other RuleIdentifier) bool {
	if r.Rule != other.Rule || len(r.Path) != len(other.Path) {
		return false
	}
	for i := range r.Path {
		if r.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Within reports whether r is ancestor itself or nested beneath it.
func (r RuleIdentifier) Within(ancestor RuleIdentifier) bool {
	if r.Rule != ancestor.Rule || len(r.Path) < len(ancestor.Path) {
		return false
	}
	for i := range ancestor.Path {
		if r.Path[i] != ancestor.Path[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the identifier is unset.
func (r RuleIdentifier) IsZero() bool {
	return r.Rule == 0 && len(r.Path) == 0
}

func (r RuleIdentifier) String() string {
	var b strings.Builder
	b.WriteString("Rule ")
	b.WriteString(strconv.Itoa(r.Rule))
	for _, seg := range r.Path {
		b.WriteByte('(')
		b.WriteString(seg)
		b.WriteByte(')')
	}
	return b.String()
}

// Less orders identifiers by rule number, then clause path segment by segment.
// Numeric segments compare numerically so "Rule 6(10)" follows "Rule 6(9)".
func (r RuleIdentifier) Less(other RuleIdentifier) bool {
	if r.Rule != other.Rule {
		return r.Rule < other.Rule
	}
	for i := 0; i < len(r.Path) && i < len(other.Path); i++ {
		a, b := r.Path[i], other.Path[i]
		if a == b {
			continue
		}
		ai, aErr := strconv.Atoi(a)
		bi, bErr := strconv.Atoi(b)
		if aErr == nil && bErr == nil {
			return ai < bi
		}
		return a < b
	}
	return len(r.Path) < len(other.Path)
}

// MarshalText renders the canonical form for JSON.
func (r RuleIdentifier) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses the canonical form.
func (r *RuleIdentifier) UnmarshalText(text []byte) error {
	parsed, err := ParseRuleIdentifier(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
