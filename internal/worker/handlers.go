// Package worker binds the document-verification pipeline to the messaging
// transport. Each delivered record is handled by an independent unit of work;
// the handlers hold no shared mutable state between invocations, so a slow
// document source stalls only its own loan.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/example/docverify-service/internal/assembler"
	"github.com/example/docverify-service/internal/kafka/publisher"
	"github.com/example/docverify-service/internal/models"
)

// DocumentSource enumerates eligible document addresses under a base
// location.
type DocumentSource interface {
	Collect(baseDir string) ([]*url.URL, error)
}

// RequestBuilder assembles a validation request from document addresses.
type RequestBuilder interface {
	Build(ctx context.Context, loanID string, addrs []*url.URL) (*models.ValidationRequest, error)
}

// RequestDispatcher publishes an assembled request with reply correlation.
type RequestDispatcher interface {
	Dispatch(ctx context.Context, req *models.ValidationRequest) error
}

// ReplyRouter resolves a decision-service reply into a routed event.
type ReplyRouter interface {
	HandleReply(ctx context.Context, destination string, payload []byte) error
}

// RecordHandler is the contract both handlers expose to the transport bridge.
type RecordHandler interface {
	HandleRecord(ctx context.Context, record *Record)
}

// SubmitHandler reacts to loan-submission events: collect, assemble,
// dispatch. Failures abort the operation and are reported; nothing is
// retried and no partial request is ever published.
type SubmitHandler struct {
	baseDir    string
	source     DocumentSource
	builder    RequestBuilder
	dispatcher RequestDispatcher
	sem        *semaphore.Weighted
	logger     zerolog.Logger
}

// NewSubmitHandler constructs a SubmitHandler.
func NewSubmitHandler(baseDir string, source DocumentSource, builder RequestBuilder, dispatcher RequestDispatcher, concurrency int, logger zerolog.Logger) (*SubmitHandler, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("worker: document base directory is required")
	}
	if source == nil {
		return nil, errors.New("worker: document source is required")
	}
	if builder == nil {
		return nil, errors.New("worker: request builder is required")
	}
	if dispatcher == nil {
		return nil, errors.New("worker: request dispatcher is required")
	}
	if concurrency < 1 {
		return nil, errors.New("worker: concurrency must be >= 1")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &SubmitHandler{
		baseDir:    baseDir,
		source:     source,
		builder:    builder,
		dispatcher: dispatcher,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		logger:     logger.With().Str("component", "submit_handler").Logger(),
	}, nil
}

// HandleRecord triggers asynchronous processing of a loan-submission record
// under the concurrency bound.
func (h *SubmitHandler) HandleRecord(ctx context.Context, record *Record) {
	if record == nil {
		return
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		h.logger.Error().Err(err).Msg("worker: failed to acquire concurrency semaphore")
		return
	}
	go h.process(ctx, record.Clone())
}

func (h *SubmitHandler) process(ctx context.Context, record *Record) {
	defer h.sem.Release(1)
	defer h.commitRecord(ctx, record)

	var event models.LoanSubmitEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		h.logger.Error().Err(err).Msg("worker: invalid loan submit event payload")
		return
	}

	loanID := strings.TrimSpace(event.LoanApplication.LoanID)
	if loanID == "" {
		h.logger.Error().Msg("worker: loan submit event carries no loan id")
		return
	}

	log := h.logger.With().Str("loan_id", loanID).Logger()
	log.Info().Msg("worker: loan submit event received")

	addrs, err := h.source.Collect(h.baseDir)
	if err != nil {
		log.Error().Err(err).Msg("worker: document collection failed")
		return
	}

	req, err := h.builder.Build(ctx, loanID, addrs)
	if err != nil {
		if errors.Is(err, assembler.ErrNoDocuments) {
			log.Error().Err(err).Msg("worker: no eligible documents for loan")
		} else {
			log.Error().Err(err).Msg("worker: request assembly failed")
		}
		return
	}

	if err := h.dispatcher.Dispatch(ctx, req); err != nil {
		log.Error().Err(err).Str("batch_id", req.BatchID).Msg("worker: request dispatch failed")
		return
	}
}

func (h *SubmitHandler) commitRecord(ctx context.Context, record *Record) {
	if err := record.Commit(ctx); err != nil {
		h.logger.Error().
			Str("topic", record.Topic).
			Int64("offset", record.Offset).
			Err(err).
			Msg("worker: failed to commit record offset")
	}
}

// ReplyHandler reacts to decision-service replies by delegating to the
// response router. The logical reply destination is read from the record's
// destination header, falling back to the topic the record arrived on.
type ReplyHandler struct {
	router ReplyRouter
	sem    *semaphore.Weighted
	logger zerolog.Logger
}

// NewReplyHandler constructs a ReplyHandler.
func NewReplyHandler(router ReplyRouter, concurrency int, logger zerolog.Logger) (*ReplyHandler, error) {
	if router == nil {
		return nil, errors.New("worker: reply router is required")
	}
	if concurrency < 1 {
		return nil, errors.New("worker: concurrency must be >= 1")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &ReplyHandler{
		router: router,
		sem:    semaphore.NewWeighted(int64(concurrency)),
		logger: logger.With().Str("component", "reply_handler").Logger(),
	}, nil
}

// HandleRecord triggers asynchronous routing of a reply record under the
// concurrency bound.
func (h *ReplyHandler) HandleRecord(ctx context.Context, record *Record) {
	if record == nil {
		return
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		h.logger.Error().Err(err).Msg("worker: failed to acquire concurrency semaphore")
		return
	}
	go h.process(ctx, record.Clone())
}

func (h *ReplyHandler) process(ctx context.Context, record *Record) {
	defer h.sem.Release(1)
	defer h.commitRecord(ctx, record)

	destination := record.Header(publisher.HeaderDestination)
	if destination == "" {
		destination = record.Topic
	}

	// Routing errors are surfaced by the router itself; an unroutable reply
	// is reported, and redelivery would not make it routable.
	_ = h.router.HandleReply(ctx, destination, record.Value)
}

func (h *ReplyHandler) commitRecord(ctx context.Context, record *Record) {
	if err := record.Commit(ctx); err != nil {
		h.logger.Error().
			Str("topic", record.Topic).
			Int64("offset", record.Offset).
			Err(err).
			Msg("worker: failed to commit record offset")
	}
}
