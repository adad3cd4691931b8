// Package extract pulls readable text out of binary documents and bounds it
// for inclusion in the instruction payload.
package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// MaxExcerptChars is the default character budget for a single document's
// excerpt.
const MaxExcerptChars = 8000

// TruncationMarker is appended whenever an excerpt is cut.
const TruncationMarker = " ...[truncated]"

// PDFExtractor extracts plain text from PDF bytes.
type PDFExtractor struct{}

// NewPDFExtractor constructs a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Text returns the plain text content of the supplied PDF document.
func (e *PDFExtractor) Text(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: read pdf text: %w", err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract: drain pdf text: %w", err)
	}
	return string(text), nil
}

// Truncate bounds s to max characters, appending TruncationMarker when text
// was cut. Empty input stays empty and is never marked.
func Truncate(s string, max int) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + TruncationMarker
}
