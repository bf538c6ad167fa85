package extraction

import (
	"regexp"
)

var (
	// pageBreakPattern matches the banner written between pages by the PDF-to-text step:
	// a row of '=' characters, "PAGE n", another row of '='.
	pageBreakPattern = regexp.MustCompile(`={70,}\s*\r?\n\s*PAGE \d+\s*\r?\n\s*={70,}\s*\r?\n`)

	// hindiPartHeaderPattern matches the bracketed part marker of the bilingual gazette, e.g. "[भाग II—खण्ड 3(i)]".
	hindiPartHeaderPattern = regexp.MustCompile(`\[भाग[^\]]*\]\s*\r?\n`)

	// hindiGazetteHeaderPattern matches the Hindi masthead line. The extracted text drops a
	// conjunct inside "राजपत्र", so the middle is matched loosely.
	hindiGazetteHeaderPattern = regexp.MustCompile(`भारत का रा\S*पत्र[^\n]*\r?\n`)

	// englishGazetteHeaderPattern matches the English masthead and the part/section line below it.
	englishGazetteHeaderPattern = regexp.MustCompile(`(?i)THE GAZETTE OF INDIA[^\n]*\r?\n[^\n]*\r?\n`)

	// standalonePageNumberPattern matches lines containing only a page number.
	standalonePageNumberPattern = regexp.MustCompile(`(?m)^\s*\d+\s*$`)

	horizontalSpacePattern = regexp.MustCompile(`[ \t]+`)
	blankLineRunPattern    = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips page banners, gazette headers and stray page numbers from text
// produced by the PDF-to-text step, then collapses horizontal whitespace and keeps
// at most one blank line between paragraphs. Text without such noise passes through
// with only whitespace collapsed.
func Normalize(raw string) string {
	text := pageBreakPattern.ReplaceAllString(raw, "\n")

	text = hindiPartHeaderPattern.ReplaceAllString(text, "")
	text = hindiGazetteHeaderPattern.ReplaceAllString(text, "")
	text = englishGazetteHeaderPattern.ReplaceAllString(text, "")

	text = standalonePageNumberPattern.ReplaceAllString(text, "")

	text = horizontalSpacePattern.ReplaceAllString(text, " ")
	text = blankLineRunPattern.ReplaceAllString(text, "\n\n")

	return text
}
