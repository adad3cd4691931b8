// Package assembler builds the outbound multi-document validation request:
// per-document encoded content plus a combined, length-bounded text excerpt,
// wrapped in a chat-style instruction payload.
package assembler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/collector"
	"github.com/example/docverify-service/internal/extract"
	"github.com/example/docverify-service/internal/models"
	"github.com/example/docverify-service/internal/util"
)

// ErrNoDocuments is returned when collection and filtering leave nothing to
// send. The assembler never emits an empty request.
var ErrNoDocuments = errors.New("no valid documents to send")

// systemPrompt establishes the assistant's role for every request.
const systemPrompt = "You are a precise assistant for loan document validation."

// fallbackFileName is used when a document address carries no path segment.
const fallbackFileName = "unknown"

// ByteFetcher retrieves raw document bytes from an address.
type ByteFetcher interface {
	Fetch(ctx context.Context, addr *url.URL) ([]byte, error)
}

// TextExtractor derives readable text from raw document bytes.
type TextExtractor interface {
	Text(data []byte) (string, error)
}

// Config carries the assembly settings.
type Config struct {
	// Prompt is the externally supplied validation instruction prepended to
	// the excerpt buffer.
	Prompt string
	// ExcerptMaxChars bounds each document's excerpt. Zero selects the
	// default budget.
	ExcerptMaxChars int
}

// Assembler builds validation requests from collected document addresses.
type Assembler struct {
	cfg       Config
	fetcher   ByteFetcher
	extractor TextExtractor
	logger    zerolog.Logger
}

// New constructs an Assembler and validates its collaborators.
func New(cfg Config, fetcher ByteFetcher, extractor TextExtractor, logger zerolog.Logger) (*Assembler, error) {
	if fetcher == nil {
		return nil, errors.New("assembler: fetcher is required")
	}
	if extractor == nil {
		return nil, errors.New("assembler: extractor is required")
	}
	if cfg.ExcerptMaxChars <= 0 {
		cfg.ExcerptMaxChars = extract.MaxExcerptChars
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Assembler{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger,
	}, nil
}

// Build assembles a validation request for the loan from the supplied
// document addresses, preserving their order. Ineligible addresses are
// skipped silently; a fetch or extraction failure aborts the whole request.
// Zero eligible documents yields ErrNoDocuments.
func (a *Assembler) Build(ctx context.Context, loanID string, addrs []*url.URL) (*models.ValidationRequest, error) {
	if strings.TrimSpace(loanID) == "" {
		return nil, errors.New("assembler: loan id is required")
	}

	var excerpts strings.Builder
	docs := make([]models.DocumentEntry, 0, len(addrs))

	for i, addr := range addrs {
		if !collector.IsEligible(addr) {
			a.logger.Debug().Str("address", addr.String()).Msg("assembler: skipping ineligible document")
			continue
		}

		data, err := a.fetcher.Fetch(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("assembler: document %s: %w", addr, err)
		}

		name := util.LastPathSegment(addr.Path, fallbackFileName)

		text, err := a.extractor.Text(data)
		if err != nil {
			return nil, fmt.Errorf("assembler: document %s: %w", name, err)
		}
		fmt.Fprintf(&excerpts, "\n\n--- Document: %s ---\n%s", name, extract.Truncate(text, a.cfg.ExcerptMaxChars))

		docs = append(docs, models.DocumentEntry{
			Type:     models.DocumentEntryTypeBase64,
			ID:       fmt.Sprintf("DOC-%d", i+1),
			Content:  base64.StdEncoding.EncodeToString(data),
			MimeType: inferMimeType(name),
			FileName: name,
		})
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	req := &models.ValidationRequest{
		Task:      models.TaskValidatePackage,
		LoanID:    loanID,
		BatchID:   uuid.NewString(),
		Documents: docs,
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: systemPrompt},
			{Role: models.RoleUser, Content: a.cfg.Prompt + excerpts.String()},
		},
	}

	a.logger.Info().
		Str("loan_id", loanID).
		Str("batch_id", req.BatchID).
		Int("documents", len(docs)).
		Msg("assembler: validation request built")

	return req, nil
}

func inferMimeType(fileName string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); t != "" {
		return t
	}
	return "application/pdf"
}
