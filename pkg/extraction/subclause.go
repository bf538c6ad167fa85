package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinSubClauseLength is the rune count a sub-clause must exceed to be kept.
const DefaultMinSubClauseLength = 30

var (
	letteredMarkerPattern = regexp.MustCompile(`\(([a-z])\)\s+`)
	numberedMarkerPattern = regexp.MustCompile(`\((\d+)\)\s+`)

	// nestedLetteredMarkerPattern matches lettered markers inside a numbered clause.
	// Roman numerals such as "(ii)" and doubled letters such as "(aa)" are accepted here.
	nestedLetteredMarkerPattern = regexp.MustCompile(`\(([a-z]{1,2}|[ivxl]+)\)\s+`)
	// clauseReferencePattern matches text ending in "clause", so "clause (a) of" is a
	// reference rather than an item marker.
	clauseReferencePattern = regexp.MustCompile(`(?i)\bclauses?\s*$`)

	illustrationStartPattern = regexp.MustCompile(`(?i)\bIllustration\.?\s+`)
	siblingMarkerPattern     = regexp.MustCompile(`(?i)\s*\((?:[a-z]|\d+)\)`)
	caseStartPattern         = regexp.MustCompile(`(?i)\bCase \d+:`)
	nextCasePattern          = regexp.MustCompile(`(?i)\s*Case \d+:`)

	bareLabelPattern = regexp.MustCompile(`(?i)^(?:illustrations?\.?|case(?:\s+\d+)?:?|note:?)$`)
)

// SubClause is one enumerated clause of a rule. ID is "a", "3" or, for a lettered
// clause nested inside a numbered one, "3(b)".
type SubClause struct {
	ID   string
	Text string
}

// Path returns the clause identifier as path segments: "3(b)" becomes ["3", "b"].
func (c SubClause) Path() []string {
	if i := strings.IndexByte(c.ID, '('); i >= 0 {
		return []string{c.ID[:i], strings.TrimSuffix(c.ID[i+1:], ")")}
	}
	return []string{c.ID}
}

type marker struct {
	start, end int
	id         string
}

// findMarkers returns the matches of re in s. A match glued to a preceding letter or
// digit, as in "rule 4(1)" or "section 9(a)", is a cross-reference and is skipped.
func findMarkers(re *regexp.Regexp, s string) []marker {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	markers := make([]marker, 0, len(locs))
	for _, l := range locs {
		if l[0] > 0 {
			if prev, _ := utf8.DecodeLastRuneInString(s[:l[0]]); unicode.IsLetter(prev) || unicode.IsDigit(prev) {
				continue
			}
		}
		markers = append(markers, marker{start: l[0], end: l[1], id: s[l[2]:l[3]]})
	}
	return markers
}

// ExtractSubClauses splits rule content into its top-level clauses using the default
// minimum length. An empty result means the content has no clause markers and should
// be stored as a single requirement.
func ExtractSubClauses(content string) []SubClause {
	return ExtractSubClausesWithMin(content, DefaultMinSubClauseLength)
}

// ExtractSubClausesWithMin is ExtractSubClauses with an explicit minimum clause length.
//
// The marker style whose first occurrence comes earliest is treated as top-level, with
// lettered markers winning when the numbered style is absent. Text between consecutive
// top-level markers becomes one clause. When the top level is numbered and a numbered
// clause holds more than one lettered marker, it is replaced by its lettered parts.
func ExtractSubClausesWithMin(content string, minLen int) []SubClause {
	lettered := findMarkers(letteredMarkerPattern, content)
	numbered := findMarkers(numberedMarkerPattern, content)

	var top []marker
	isLettered := false
	switch {
	case len(lettered) > 0 && (len(numbered) == 0 || lettered[0].start < numbered[0].start):
		top = lettered
		isLettered = true
	case len(numbered) > 0:
		top = numbered
	default:
		return nil
	}

	clauses := make([]SubClause, 0, len(top))
	for i, m := range top {
		end := len(content)
		if i+1 < len(top) {
			end = top[i+1].start
		}
		text := CollapseWhitespace(content[m.end:end])
		if keepClause(text, minLen) {
			clauses = append(clauses, SubClause{ID: m.id, Text: text})
		}
	}

	if isLettered || len(clauses) == 0 {
		return clauses
	}

	refined := make([]SubClause, 0, len(clauses))
	for _, c := range clauses {
		nested := splitNestedLettered(c.Text)
		if len(nested) <= 1 {
			refined = append(refined, c)
			continue
		}
		for _, n := range nested {
			if keepClause(n.Text, minLen) {
				refined = append(refined, SubClause{ID: c.ID + "(" + n.ID + ")", Text: n.Text})
			}
		}
	}
	return refined
}

// splitNestedLettered returns the lettered items of a numbered clause. An item runs from
// its marker to the next lettered marker or the end of the clause; parentheticals and
// numbered cross-references stay inside the item.
func splitNestedLettered(text string) []SubClause {
	var markers []marker
	for _, m := range findMarkers(nestedLetteredMarkerPattern, text) {
		if clauseReferencePattern.MatchString(text[:m.start]) {
			continue
		}
		markers = append(markers, m)
	}

	items := make([]SubClause, 0, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		body := CollapseWhitespace(text[m.end:end])
		if body == "" {
			continue
		}
		items = append(items, SubClause{ID: m.id, Text: body})
	}
	return items
}

func keepClause(text string, minLen int) bool {
	if utf8.RuneCountInString(text) <= minLen {
		return false
	}
	return !bareLabelPattern.MatchString(text)
}

// StripIllustrations removes worked examples from rule content: each "Illustration."
// block up to the next clause marker, and each "Case N:" block up to the next case.
func StripIllustrations(content string) string {
	content = removeBlocks(content, illustrationStartPattern, siblingMarkerPattern)
	return removeBlocks(content, caseStartPattern, nextCasePattern)
}

// removeBlocks deletes every span starting at a match of start and ending just before
// the next match of stop (or at the end of s).
func removeBlocks(s string, start, stop *regexp.Regexp) string {
	var b strings.Builder
	pos := 0
	for pos < len(s) {
		loc := start.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		blockStart := pos + loc[0]
		searchFrom := pos + loc[1]

		blockEnd := len(s)
		if next := stop.FindStringIndex(s[searchFrom:]); next != nil {
			blockEnd = searchFrom + next[0]
		}

		b.WriteString(s[pos:blockStart])
		pos = blockEnd
	}
	b.WriteString(s[pos:])
	return b.String()
}
