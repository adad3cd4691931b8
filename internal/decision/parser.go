package decision

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// The upstream model's output format is not contractually fixed, so each
// pattern tolerates emphasis markers, several punctuation variants after the
// label, and the verdict appearing on the next line behind an optional bullet.
// The final pattern is a loose catch-all for replies that skip the labeled
// format entirely.
var decisionPatterns = []*regexp.Regexp{
	// "Pass/Fail: Pass" or next-line bullet.
	regexp.MustCompile(`(?ims)^\s*\*{0,2}\s*pass\s*/\s*fail\s*[:\-\x{2013}\x{2014}\x{FF1A}]?\s*(?:\r?\n\s*[-*]?\s*)?(pass|fail)\b`),
	// "Pass or Fail: - Pass".
	regexp.MustCompile(`(?ims)^\s*\*{0,2}\s*pass\s*or\s*fail\s*[:\-\x{2013}\x{2014}\x{FF1A}]*\s*(?:\r?\n\s*[-*]?\s*)?(pass|fail)\b`),
	// "Status: Pass".
	regexp.MustCompile(`(?ims)^\s*\*{0,2}\s*status\s*[:\-\x{2013}\x{2014}\x{FF1A}]\s*(?:\r?\n\s*[-*]?\s*)?(pass|fail)\b`),
	// "Decision: Pass".
	regexp.MustCompile(`(?ims)^\s*\*{0,2}\s*decision\s*[:\-\x{2013}\x{2014}\x{FF1A}]\s*(?:\r?\n\s*[-*]?\s*)?(pass|fail)\b`),
	// "Result: Pass".
	regexp.MustCompile(`(?ims)^\s*\*{0,2}\s*result\s*[:\-\x{2013}\x{2014}\x{FF1A}]\s*(?:\r?\n\s*[-*]?\s*)?(pass|fail)\b`),
	// "Evaluation: Pass".
	regexp.MustCompile(`(?ims)^\s*\*{0,2}\s*evaluation\s*[:\-\x{2013}\x{2014}\x{FF1A}]\s*(?:\r?\n\s*[-*]?\s*)?(pass|fail)\b`),
	// Fallback: "evaluation" followed by pass/fail within ~200 characters.
	regexp.MustCompile(`(?is)\bevaluation\b[\s\S]{0,200}?\b(pass|fail)\b`),
}

var boldMarkers = regexp.MustCompile(`\*\*(.*?)\*\*`)

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// Normalize prepares raw reply text for pattern matching: NFKC unicode
// normalization, bold markdown stripped, typographic dashes collapsed to a
// plain hyphen. Normalizing already-normalized text is a no-op.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = boldMarkers.ReplaceAllString(s, "$1")
	return dashReplacer.Replace(s)
}

// Parse scans the reply text and returns Pass, Fail or Unknown. Every match
// of every pattern is observed, not just the first; Fail wins whenever both
// verdicts appear anywhere in the text. Empty input yields Unknown.
func Parse(content string) Outcome {
	if content == "" {
		return Unknown
	}
	text := Normalize(content)

	var sawPass, sawFail bool
	for _, pattern := range decisionPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			switch strings.ToUpper(strings.TrimSpace(match[1])) {
			case "FAIL":
				sawFail = true
			case "PASS":
				sawPass = true
			}
		}
	}

	if sawFail {
		return Fail
	}
	if sawPass {
		return Pass
	}
	return Unknown
}
