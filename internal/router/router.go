// Package router turns decision-service replies into routed verification
// events. Routing is fail-closed: anything other than an explicit PASS goes
// to the failure destination.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/decision"
	"github.com/example/docverify-service/internal/models"
	"github.com/example/docverify-service/internal/util"
)

// ErrUnroutableReply is returned when a reply arrives on a destination that
// does not match the configured reply base, leaving no loan to attribute it
// to. Such replies are reported, never dropped silently.
var ErrUnroutableReply = errors.New("reply destination does not match reply topic base")

// RoutedPublisher forwards the reply payload to the per-loan verified or
// failed destination.
type RoutedPublisher interface {
	PublishVerified(ctx context.Context, loanID, destination string, payload []byte) error
	PublishFailed(ctx context.Context, loanID, destination string, payload []byte) error
}

// FailurePublisher emits the failure event schema for non-passing outcomes.
type FailurePublisher interface {
	PublishFailure(ctx context.Context, event models.DocumentFailureEvent) error
}

// Config carries the destination bases the router needs.
type Config struct {
	ReplyTopicBase    string
	VerifiedTopicBase string
	FailedTopicBase   string
	SourceSystem      string
}

// Router resolves replies into PASS/FAIL routing decisions.
type Router struct {
	cfg      Config
	routed   RoutedPublisher
	failures FailurePublisher
	logger   zerolog.Logger
	now      func() time.Time
}

// New constructs a Router.
func New(cfg Config, routed RoutedPublisher, failures FailurePublisher, logger zerolog.Logger, now func() time.Time) (*Router, error) {
	if strings.TrimSpace(cfg.ReplyTopicBase) == "" {
		return nil, errors.New("router: reply topic base must be set (non-empty)")
	}
	if strings.TrimSpace(cfg.VerifiedTopicBase) == "" {
		return nil, errors.New("router: verified topic base must be set (non-empty)")
	}
	if strings.TrimSpace(cfg.FailedTopicBase) == "" {
		return nil, errors.New("router: failed topic base must be set (non-empty)")
	}
	if routed == nil {
		return nil, errors.New("router: routed publisher is required")
	}
	if failures == nil {
		return nil, errors.New("router: failure publisher is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Router{cfg: cfg, routed: routed, failures: failures, logger: logger, now: now}, nil
}

// RecoverLoanID extracts the loan id from the destination a reply arrived on
// by stripping the configured reply base and its separator.
func (r *Router) RecoverLoanID(destination string) (string, error) {
	loanID, ok := util.StripTopicPrefix(destination, r.cfg.ReplyTopicBase)
	if !ok {
		return "", fmt.Errorf("router: destination %q: %w", destination, ErrUnroutableReply)
	}
	return loanID, nil
}

// HandleReply routes a single reply: recover the loan id from the arrival
// destination, derive the decision from the reply text, and republish to the
// per-loan verified or failed destination. FAIL and UNKNOWN route identically
// and additionally emit a DocumentFailureEvent.
func (r *Router) HandleReply(ctx context.Context, destination string, payload []byte) error {
	loanID, err := r.RecoverLoanID(destination)
	if err != nil {
		r.logger.Error().
			Str("destination", destination).
			Err(err).
			Msg("router: reply cannot be attributed to a loan")
		return err
	}

	content := extractContent(payload)
	outcome := decision.Parse(content)

	log := r.logger.With().
		Str("loan_id", loanID).
		Str("outcome", string(outcome)).
		Logger()

	if outcome == decision.Pass {
		dest := util.ChildTopic(r.cfg.VerifiedTopicBase, loanID)
		if err := r.routed.PublishVerified(ctx, loanID, dest, payload); err != nil {
			log.Error().Err(err).Msg("router: failed to publish verified event")
			return err
		}
		log.Info().Str("destination", dest).Msg("router: documents verified")
		return nil
	}

	dest := util.ChildTopic(r.cfg.FailedTopicBase, loanID)
	if err := r.routed.PublishFailed(ctx, loanID, dest, payload); err != nil {
		log.Error().Err(err).Msg("router: failed to publish failed event")
		return err
	}

	if err := r.failures.PublishFailure(ctx, r.failureEvent(loanID, outcome)); err != nil {
		log.Error().Err(err).Msg("router: failed to publish failure event")
		return err
	}

	log.Info().Str("destination", dest).Msg("router: documents failed verification")
	return nil
}

func (r *Router) failureEvent(loanID string, outcome decision.Outcome) models.DocumentFailureEvent {
	now := r.now().UTC()

	reason := "decision service reported FAIL"
	if outcome == decision.Unknown {
		reason = "no recognizable decision in reply"
	}

	return models.DocumentFailureEvent{
		EventID:       uuid.NewString(),
		SourceSystem:  r.cfg.SourceSystem,
		CorrelationID: loanID,
		EventType:     models.EventTypeDocumentVerificationFailed,
		Timestamp:     now,
		Document: &models.FailedDocument{
			LoanID:        loanID,
			Status:        models.DocumentStatusFailed,
			FailedAt:      &now,
			FailureReason: reason,
		},
	}
}

// extractContent pulls the reply text from a record-shaped payload's content
// field, or falls back to the payload's string form. The reply shape is not
// contractually fixed, so both are accepted.
func extractContent(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	var record map[string]any
	if err := json.Unmarshal(payload, &record); err == nil {
		if v, ok := record["content"]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}

	var scalar string
	if err := json.Unmarshal(payload, &scalar); err == nil {
		return scalar
	}

	return string(payload)
}
