package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/models"
)

var errProducerNotInitialised = errors.New("kafka publisher: producer not initialised")

// Transport-level header names shared by every publisher. Destination carries
// the logical topic path (base + "/" + loanId); ReplyTo tells the decision
// service where to send its verdict.
const (
	HeaderContentType = "content-type"
	HeaderDestination = "destination"
	HeaderReplyTo     = "reply-to"
)

const contentTypeJSON = "application/json"

// SyncProducer captures the subset of producer behaviour the publishers need.
type SyncProducer interface {
	PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error
}

// ErrProducerNotInitialised exposes the sentinel error for callers and tests.
func ErrProducerNotInitialised() error {
	return errProducerNotInitialised
}

// RequestPublisher sends assembled validation requests to the decision
// service's request topic.
type RequestPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewRequestPublisher constructs a RequestPublisher.
func NewRequestPublisher(prod SyncProducer, topic string, logger zerolog.Logger) *RequestPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &RequestPublisher{producer: prod, topic: topic, logger: logger}
}

// PublishRequest marshals the request and publishes it with its logical
// destination and the reply address the decision service must answer to.
func (p *RequestPublisher) PublishRequest(_ context.Context, req *models.ValidationRequest, destination, replyTo string) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialised
	}
	if req == nil {
		return errors.New("kafka publisher: request is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("kafka publisher: marshal validation request: %w", err)
	}

	headers := map[string][]byte{
		HeaderContentType: []byte(contentTypeJSON),
		HeaderDestination: []byte(destination),
		HeaderReplyTo:     []byte(replyTo),
	}

	if err := p.producer.PublishSync(p.topic, []byte(req.LoanID), headers, payload); err != nil {
		return fmt.Errorf("kafka publisher: publish validation request: %w", err)
	}
	return nil
}

// RoutedPublisher forwards decision-service replies to the verified or failed
// destination for a loan. The original reply payload is forwarded unchanged,
// annotated with the routed destination header.
type RoutedPublisher struct {
	producer      SyncProducer
	verifiedTopic string
	failedTopic   string
	logger        zerolog.Logger
}

// NewRoutedPublisher constructs a RoutedPublisher.
func NewRoutedPublisher(prod SyncProducer, verifiedTopic, failedTopic string, logger zerolog.Logger) *RoutedPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &RoutedPublisher{
		producer:      prod,
		verifiedTopic: verifiedTopic,
		failedTopic:   failedTopic,
		logger:        logger,
	}
}

// PublishVerified forwards a passing reply to the verified topic.
func (p *RoutedPublisher) PublishVerified(_ context.Context, loanID, destination string, payload []byte) error {
	return p.publish(p.verifiedTopic, loanID, destination, payload)
}

// PublishFailed forwards a failing reply to the failed topic.
func (p *RoutedPublisher) PublishFailed(_ context.Context, loanID, destination string, payload []byte) error {
	return p.publish(p.failedTopic, loanID, destination, payload)
}

func (p *RoutedPublisher) publish(topic, loanID, destination string, payload []byte) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialised
	}

	headers := map[string][]byte{
		HeaderContentType: []byte(contentTypeJSON),
		HeaderDestination: []byte(destination),
	}

	if err := p.producer.PublishSync(topic, []byte(loanID), headers, payload); err != nil {
		return fmt.Errorf("kafka publisher: publish routed reply: %w", err)
	}
	return nil
}

// FailureEventPublisher emits DocumentFailureEvent records to the failure
// event topic.
type FailureEventPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewFailureEventPublisher constructs a FailureEventPublisher.
func NewFailureEventPublisher(prod SyncProducer, topic string, logger zerolog.Logger) *FailureEventPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &FailureEventPublisher{producer: prod, topic: topic, logger: logger}
}

// PublishFailure writes the supplied failure event synchronously. Events are
// keyed by correlation id so replays for the same loan land in one partition.
func (p *FailureEventPublisher) PublishFailure(_ context.Context, event models.DocumentFailureEvent) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialised
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka publisher: marshal failure event: %w", err)
	}

	headers := map[string][]byte{
		HeaderContentType: []byte(contentTypeJSON),
	}

	if err := p.producer.PublishSync(p.topic, []byte(event.CorrelationID), headers, payload); err != nil {
		return fmt.Errorf("kafka publisher: publish failure event: %w", err)
	}
	return nil
}
