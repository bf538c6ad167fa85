package extraction

import (
	"regexp"
	"strings"
)

// ThresholdTerm is a recognised schedule clause: when both Phrase and ThresholdPhrase
// occur in the schedule section, the entity class carries the given threshold.
type ThresholdTerm struct {
	EntityClass     string
	Phrase          string
	ThresholdPhrase string
	ThresholdUsers  int64
	RetentionDays   int
}

// Threshold is a schedule entry detected in the text.
type Threshold struct {
	EntityClass    string
	ThresholdUsers int64
	RetentionDays  int
}

// ScheduleSection returns the text between the start heading and the end heading
// (or the end of text). A heading on its own line is preferred; otherwise the first
// case-insensitive occurrence is used. ok is false when the start heading is absent.
func ScheduleSection(text, startHeading, endHeading string) (section string, ok bool) {
	start := findHeading(text, startHeading)
	if start < 0 {
		return "", false
	}
	rest := text[start:]

	// The end heading is searched for after the start heading.
	from := len(startHeading)
	if from > len(rest) {
		from = len(rest)
	}
	if endHeading != "" {
		if end := findHeading(rest[from:], endHeading); end >= 0 {
			return rest[:from+end], true
		}
	}
	return rest, true
}

func findHeading(text, heading string) int {
	quoted := regexp.QuoteMeta(heading)
	if loc := regexp.MustCompile(`(?im)^[ \t]*` + quoted + `[ \t]*\r?$`).FindStringIndex(text); loc != nil {
		return loc[0]
	}
	if loc := regexp.MustCompile(`(?i)` + quoted).FindStringIndex(text); loc != nil {
		return loc[0]
	}
	return -1
}

// ExtractThresholds detects the known threshold clauses inside a schedule section.
// Only vocabulary entries are recognised; anything else in the schedule is ignored.
// Results follow vocabulary order and hold at most one entry per entity class.
func ExtractThresholds(text, startHeading, endHeading string, vocabulary []ThresholdTerm) []Threshold {
	section, ok := ScheduleSection(text, startHeading, endHeading)
	if !ok {
		return nil
	}
	haystack := strings.ToLower(whitespaceRunPattern.ReplaceAllString(section, " "))

	seen := make(map[string]bool, len(vocabulary))
	thresholds := make([]Threshold, 0, len(vocabulary))
	for _, term := range vocabulary {
		if seen[term.EntityClass] {
			continue
		}
		if !strings.Contains(haystack, strings.ToLower(term.Phrase)) ||
			!strings.Contains(haystack, strings.ToLower(term.ThresholdPhrase)) {
			continue
		}
		seen[term.EntityClass] = true
		thresholds = append(thresholds, Threshold{
			EntityClass:    term.EntityClass,
			ThresholdUsers: term.ThresholdUsers,
			RetentionDays:  term.RetentionDays,
		})
	}
	return thresholds
}
