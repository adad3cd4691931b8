package decision_test

import (
	"strings"
	"testing"

	"github.com/example/docverify-service/internal/decision"
)

func TestParseLabeledForms(t *testing.T) {
	cases := []struct {
		name string
		text string
		want decision.Outcome
	}{
		{"status pass", "Status: Pass", decision.Pass},
		{"status fail", "Status: Fail", decision.Fail},
		{"decision lower", "decision - fail", decision.Fail},
		{"result next line bullet", "Result:\n- Pass", decision.Pass},
		{"pass slash fail", "Pass/Fail: Pass", decision.Pass},
		{"pass or fail bullet", "Pass or Fail:\n- Fail", decision.Fail},
		{"evaluation labeled", "Evaluation: Pass", decision.Pass},
		{"bold decision em dash", "**Decision:** Fail — document expired", decision.Fail},
		{"bold status", "**Status:** Pass", decision.Pass},
		{"en dash after label", "Status – Fail", decision.Fail},
		{"fullwidth colon", "Decision： Pass", decision.Pass},
		{"evaluation fallback", "The evaluation of the package indicates everything should pass.", decision.Pass},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := decision.Parse(tc.text); got != tc.want {
				t.Fatalf("Parse(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseFailPrecedence(t *testing.T) {
	cases := []string{
		"Status: Pass\nEvaluation: Fail",
		"Evaluation: Fail\nStatus: Pass",
		"Result: Pass\n\nSome narrative.\n\nDecision: Fail",
	}

	for _, text := range cases {
		if got := decision.Parse(text); got != decision.Fail {
			t.Fatalf("Parse(%q) = %s, want FAIL", text, got)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	cases := []string{
		"",
		"All documents are present and legible.",
		"The package looks complete.",
	}

	for _, text := range cases {
		if got := decision.Parse(text); got != decision.Unknown {
			t.Fatalf("Parse(%q) = %s, want UNKNOWN", text, got)
		}
	}
}

func TestParseFallbackWindowBound(t *testing.T) {
	// The catch-all only accepts a verdict within 200 characters of the word
	// "evaluation".
	near := "evaluation " + strings.Repeat("x ", 80) + "pass"
	if got := decision.Parse(near); got != decision.Pass {
		t.Fatalf("expected PASS within the fallback window, got %s", got)
	}

	far := "evaluation " + strings.Repeat("x ", 150) + "pass"
	if got := decision.Parse(far); got != decision.Unknown {
		t.Fatalf("expected UNKNOWN beyond the fallback window, got %s", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"**Decision:** Fail — document expired",
		"Status – Pass",
		"plain text with no markup",
		"ﬁnancial statement", // NFKC expands the ligature
	}

	for _, text := range cases {
		once := decision.Normalize(text)
		twice := decision.Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", text, once, twice)
		}
	}
}

func TestNormalizeStripsMarkup(t *testing.T) {
	got := decision.Normalize("**Status:** Pass — ok")
	want := "Status: Pass - ok"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}
