package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/models"
	"github.com/example/docverify-service/internal/router"
)

const (
	replyBase    = "loan-project/llm-service/response/app1"
	verifiedBase = "loans/originationservices/documents/verified"
	failedBase   = "loans/originationservices/documents/failed"
)

type routedCall struct {
	loanID      string
	destination string
	payload     []byte
}

type routedCollector struct {
	mu       sync.Mutex
	verified []routedCall
	failed   []routedCall
}

func (r *routedCollector) PublishVerified(_ context.Context, loanID, destination string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified = append(r.verified, routedCall{loanID, destination, payload})
	return nil
}

func (r *routedCollector) PublishFailed(_ context.Context, loanID, destination string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, routedCall{loanID, destination, payload})
	return nil
}

type failureCollector struct {
	mu     sync.Mutex
	events []models.DocumentFailureEvent
}

func (f *failureCollector) PublishFailure(_ context.Context, event models.DocumentFailureEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func newRouter(t *testing.T, routed router.RoutedPublisher, failures router.FailurePublisher, now func() time.Time) *router.Router {
	t.Helper()
	r, err := router.New(router.Config{
		ReplyTopicBase:    replyBase,
		VerifiedTopicBase: verifiedBase,
		FailedTopicBase:   failedBase,
		SourceSystem:      "loan-origination-docverify",
	}, routed, failures, zerolog.New(io.Discard), now)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return r
}

func contentPayload(t *testing.T, content string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"content": content})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func TestRecoverLoanIDRoundTrip(t *testing.T) {
	r := newRouter(t, &routedCollector{}, &failureCollector{}, nil)

	got, err := r.RecoverLoanID(replyBase + "/L-100")
	if err != nil {
		t.Fatalf("unexpected recovery error: %v", err)
	}
	if got != "L-100" {
		t.Fatalf("recovered %q, want L-100", got)
	}
}

func TestRecoverLoanIDUnroutable(t *testing.T) {
	r := newRouter(t, &routedCollector{}, &failureCollector{}, nil)

	for _, dest := range []string{"", replyBase, replyBase + "/", "other/topic/L-1"} {
		if _, err := r.RecoverLoanID(dest); !errors.Is(err, router.ErrUnroutableReply) {
			t.Fatalf("expected ErrUnroutableReply for %q, got %v", dest, err)
		}
	}
}

func TestHandleReplyPassRoutesVerified(t *testing.T) {
	routed := &routedCollector{}
	failures := &failureCollector{}
	r := newRouter(t, routed, failures, nil)

	payload := contentPayload(t, "Decision: Pass")
	if err := r.HandleReply(context.Background(), replyBase+"/L-7", payload); err != nil {
		t.Fatalf("unexpected routing error: %v", err)
	}

	if len(routed.verified) != 1 || len(routed.failed) != 0 {
		t.Fatalf("expected one verified event, got verified=%d failed=%d", len(routed.verified), len(routed.failed))
	}
	call := routed.verified[0]
	if call.destination != verifiedBase+"/L-7" {
		t.Fatalf("unexpected destination %q", call.destination)
	}
	if !bytes.Equal(call.payload, payload) {
		t.Fatalf("reply payload must be forwarded unchanged")
	}
	if len(failures.events) != 0 {
		t.Fatalf("no failure event may be emitted for PASS")
	}
}

func TestHandleReplyFailRoutesFailed(t *testing.T) {
	routed := &routedCollector{}
	failures := &failureCollector{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newRouter(t, routed, failures, func() time.Time { return now })

	payload := contentPayload(t, "**Decision:** Fail — document expired")
	if err := r.HandleReply(context.Background(), replyBase+"/L-100", payload); err != nil {
		t.Fatalf("unexpected routing error: %v", err)
	}

	if len(routed.failed) != 1 || len(routed.verified) != 0 {
		t.Fatalf("expected one failed event, got failed=%d verified=%d", len(routed.failed), len(routed.verified))
	}
	if routed.failed[0].destination != failedBase+"/L-100" {
		t.Fatalf("unexpected destination %q", routed.failed[0].destination)
	}

	if len(failures.events) != 1 {
		t.Fatalf("expected one failure event, got %d", len(failures.events))
	}
	event := failures.events[0]
	if event.EventType != models.EventTypeDocumentVerificationFailed {
		t.Fatalf("unexpected event type %q", event.EventType)
	}
	if event.CorrelationID != "L-100" {
		t.Fatalf("unexpected correlation id %q", event.CorrelationID)
	}
	if !event.Timestamp.Equal(now) {
		t.Fatalf("unexpected timestamp %v", event.Timestamp)
	}
	if event.EventID == "" {
		t.Fatalf("event id must be populated")
	}
	if event.Document == nil || event.Document.LoanID != "L-100" || event.Document.Status != models.DocumentStatusFailed {
		t.Fatalf("unexpected document record %+v", event.Document)
	}
}

func TestHandleReplyFailPrecedence(t *testing.T) {
	routed := &routedCollector{}
	r := newRouter(t, routed, &failureCollector{}, nil)

	payload := contentPayload(t, "Status: Pass\nEvaluation: Fail")
	if err := r.HandleReply(context.Background(), replyBase+"/L-2", payload); err != nil {
		t.Fatalf("unexpected routing error: %v", err)
	}

	if len(routed.failed) != 1 || len(routed.verified) != 0 {
		t.Fatalf("FAIL must win over PASS: failed=%d verified=%d", len(routed.failed), len(routed.verified))
	}
}

func TestHandleReplyUnknownRoutesFailed(t *testing.T) {
	routed := &routedCollector{}
	failures := &failureCollector{}
	r := newRouter(t, routed, failures, nil)

	payload := contentPayload(t, "The documents are legible and complete.")
	if err := r.HandleReply(context.Background(), replyBase+"/L-3", payload); err != nil {
		t.Fatalf("unexpected routing error: %v", err)
	}

	if len(routed.failed) != 1 || len(routed.verified) != 0 {
		t.Fatalf("UNKNOWN must route to the failure destination")
	}
	if len(failures.events) != 1 {
		t.Fatalf("expected a failure event for UNKNOWN")
	}
	if reason := failures.events[0].Document.FailureReason; reason != "no recognizable decision in reply" {
		t.Fatalf("unexpected failure reason %q", reason)
	}
}

func TestHandleReplyScalarPayloads(t *testing.T) {
	routed := &routedCollector{}
	r := newRouter(t, routed, &failureCollector{}, nil)

	// JSON string scalar.
	if err := r.HandleReply(context.Background(), replyBase+"/L-4", []byte(`"Decision: Pass"`)); err != nil {
		t.Fatalf("unexpected routing error: %v", err)
	}
	// Raw text payload.
	if err := r.HandleReply(context.Background(), replyBase+"/L-5", []byte("Decision: Pass")); err != nil {
		t.Fatalf("unexpected routing error: %v", err)
	}

	if len(routed.verified) != 2 {
		t.Fatalf("expected both scalar shapes to route verified, got %d", len(routed.verified))
	}
}

func TestHandleReplyUnroutableIsReported(t *testing.T) {
	routed := &routedCollector{}
	failures := &failureCollector{}
	r := newRouter(t, routed, failures, nil)

	err := r.HandleReply(context.Background(), "unrelated/topic", contentPayload(t, "Decision: Pass"))
	if !errors.Is(err, router.ErrUnroutableReply) {
		t.Fatalf("expected ErrUnroutableReply, got %v", err)
	}
	if len(routed.verified) != 0 || len(routed.failed) != 0 || len(failures.events) != 0 {
		t.Fatalf("nothing may be published for an unroutable reply")
	}
}
