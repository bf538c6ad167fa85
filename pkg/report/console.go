// Package report renders assessments for terminal output.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

const (
	lineWidth      = 70
	gapTextPreview = 100
)

// printer stops writing after the first error and keeps it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) heading(title string) {
	p.printf("%s\n%s\n", title, strings.Repeat("-", lineWidth))
}

// WriteConsole renders an assessment as a plain-text report.
func WriteConsole(w io.Writer, a *models.Assessment) error {
	p := &printer{w: w}
	report := a.Report

	p.printf("%s\nDPDP COMPLIANCE ASSESSMENT REPORT\n%s\n\n", strings.Repeat("=", lineWidth), strings.Repeat("=", lineWidth))

	p.heading("BUSINESS PROFILE")
	name := a.Profile.Name
	if name == "" {
		name = "N/A"
	}
	p.printf("  Name: %s\n", name)
	p.printf("  Type: %s\n", a.Profile.EntityType)
	p.printf("  Users: %s\n", groupDigits(a.Profile.RegisteredUsers))
	p.printf("  Children's Data: %s\n", yesNo(a.Profile.ProcessesChildrenData))
	p.printf("  Cross-Border Transfers: %s\n\n", yesNo(a.Profile.CrossBorderTransfers))

	if pa := a.Match.ProhibitedActivity; pa != nil {
		p.heading("PROHIBITED ACTIVITY")
		p.printf("  %s\n", pa.Activity)
		p.printf("  %s\n", pa.Reason)
		p.printf("  %s (penalty category: %s)\n\n", pa.LegalReference, pa.PenaltyCategory)
	}

	p.heading("APPLICABLE REQUIREMENTS")
	p.printf("  Total: %d requirements\n\n", report.Total)
	if len(report.ByType) > 0 {
		p.printf("  By Obligation Type:\n")
		for _, tc := range sortedTypeCounts(report.ByType) {
			p.printf("    - %-15s: %3d requirements\n", tc.typ, tc.count)
		}
		p.printf("\n")
	}

	p.heading("COMPLIANCE STATUS")
	p.printf("  Completed: %d / %d\n", report.Completed, report.Total)
	if len(a.Attested) > 0 {
		p.printf("  Self-attested: %d\n", len(a.Attested))
	}
	p.printf("  Gaps: %d\n", len(report.Gaps))
	p.printf("  Score: %.1f%%\n\n", report.ComplianceScore)

	p.heading("PENALTY EXPOSURE")
	p.printf("  Highest Single Penalty: Rs %s crore\n", crore(report.MaxPenalty))
	p.printf("  Total Exposure: Rs %s crore\n\n", crore(report.TotalPenaltyExposure))

	if len(report.PriorityRequirements) > 0 {
		p.heading(fmt.Sprintf("TOP %d PRIORITY REQUIREMENTS", len(report.PriorityRequirements)))
		for i, g := range report.PriorityRequirements {
			p.printf("%2d. %-20s [%-12s]\n", i+1, g.RuleID, g.ObligationType)
			p.printf("    Penalty: Rs %6s crore | Priority: %5.1f/100 | %d days left\n",
				crore(g.PenaltyAmount), g.PriorityScore, g.DaysRemaining)
			p.printf("    %s\n\n", preview(g.Text))
		}
	}

	if dw := report.DeadlineWarning; dw != nil {
		p.heading("DEADLINE")
		p.printf("  Full Compliance: %s\n", dw.Deadline.Format("January 2, 2006"))
		p.printf("  Days Remaining: %d\n", dw.DaysRemaining)
		p.printf("  WARNING: %s\n\n", dw.Message)
	} else if len(report.Gaps) > 0 {
		p.heading("DEADLINE")
		p.printf("  Full Compliance: %s\n", report.Gaps[0].Deadline.Format("January 2, 2006"))
		p.printf("  Days Remaining: %d\n\n", report.Gaps[0].DaysRemaining)
	}

	p.printf("%s\n", strings.Repeat("=", lineWidth))
	return p.err
}

type typeCount struct {
	typ   models.ObligationType
	count int
}

// sortedTypeCounts orders by count descending, then type name.
func sortedTypeCounts(byType map[models.ObligationType]int) []typeCount {
	out := make([]typeCount, 0, len(byType))
	for t, n := range byType {
		out = append(out, typeCount{typ: t, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].typ < out[j].typ
	})
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// crore renders paise as whole crore rupees with digit grouping.
func crore(paise int64) string {
	return groupDigits(int64(math.Round(float64(paise) / models.PaisePerCrore)))
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= gapTextPreview {
		return text
	}
	return string([]rune(text)[:gapTextPreview]) + "..."
}
