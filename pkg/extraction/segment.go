package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// firstScheduleHeadingPattern matches "FIRST SCHEDULE" standing alone on its line.
	// Inline references such as "specified in the First Schedule" do not match.
	firstScheduleHeadingPattern = regexp.MustCompile(`(?im)^[ \t]*FIRST SCHEDULE[ \t]*\r?$`)

	// ruleHeadingPattern matches "<n>. <Title>. —" with the number at the start of a line.
	// The title may wrap across lines but holds no full stop or dash, so an inline
	// "section 5. The ..." never reaches a later heading's dash.
	ruleHeadingPattern = regexp.MustCompile(`(?m)^[ \t]*(\d{1,2})\.[ \t]+([A-Z][^.—–]*?)\s*\.\s*[—–]`)

	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// Rule is one top-level numbered rule of the rules document.
type Rule struct {
	Number  int
	Title   string
	Content string
}

// TruncateAtSchedules returns text up to the first schedule heading.
func TruncateAtSchedules(text string) string {
	if loc := firstScheduleHeadingPattern.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}

// SegmentRules splits normalized rules text into rules numbered 1..maxRule, in document order.
// Each rule's content runs from the end of its heading to the start of the next heading
// (any number) or the first schedule heading. Titles and content are collapsed to single
// spaces. Rules with empty content are dropped and numbering gaps are allowed.
func SegmentRules(text string, maxRule int) []Rule {
	body := TruncateAtSchedules(text)

	matches := ruleHeadingPattern.FindAllStringSubmatchIndex(body, -1)
	rules := make([]Rule, 0, len(matches))

	for i, m := range matches {
		number, err := strconv.Atoi(body[m[2]:m[3]])
		if err != nil || number < 1 || number > maxRule {
			continue
		}

		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		content := CollapseWhitespace(body[m[1]:end])
		if content == "" {
			continue
		}

		rules = append(rules, Rule{
			Number:  number,
			Title:   CollapseWhitespace(body[m[4]:m[5]]),
			Content: content,
		})
	}

	return rules
}

// CollapseWhitespace joins every whitespace run into one space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(s, " "))
}
