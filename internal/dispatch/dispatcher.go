// Package dispatch publishes assembled validation requests with the
// reply-routing information the decision service needs. Suffixing both the
// request and reply destinations with the loan id is the entire correlation
// mechanism; there is no side table of in-flight requests.
package dispatch

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/models"
	"github.com/example/docverify-service/internal/util"
)

// RequestPublisher publishes a validation request with its destination and
// reply address.
type RequestPublisher interface {
	PublishRequest(ctx context.Context, req *models.ValidationRequest, destination, replyTo string) error
}

// Config carries the logical destination bases for the request/reply
// round trip.
type Config struct {
	RequestTopicBase string
	ReplyTopicBase   string
}

// Dispatcher attaches per-loan correlation to validation requests and
// publishes them.
type Dispatcher struct {
	cfg       Config
	publisher RequestPublisher
	logger    zerolog.Logger
}

// New constructs a Dispatcher. Both destination bases must be configured;
// failing fast here prevents a request from ever being sent with no way to
// route its reply.
func New(cfg Config, publisher RequestPublisher, logger zerolog.Logger) (*Dispatcher, error) {
	if strings.TrimSpace(cfg.RequestTopicBase) == "" {
		return nil, errors.New("dispatch: request topic base must be set (non-empty)")
	}
	if strings.TrimSpace(cfg.ReplyTopicBase) == "" {
		return nil, errors.New("dispatch: reply topic base must be set (non-empty)")
	}
	if publisher == nil {
		return nil, errors.New("dispatch: request publisher is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Dispatcher{cfg: cfg, publisher: publisher, logger: logger}, nil
}

// Dispatch publishes the request to the per-loan request destination and
// names the per-loan reply destination the decision service must answer to.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.ValidationRequest) error {
	if req == nil {
		return errors.New("dispatch: request is required")
	}
	if strings.TrimSpace(req.LoanID) == "" {
		return errors.New("dispatch: request loan id is required")
	}

	destination := util.ChildTopic(d.cfg.RequestTopicBase, req.LoanID)
	replyTo := util.ChildTopic(d.cfg.ReplyTopicBase, req.LoanID)

	if err := d.publisher.PublishRequest(ctx, req, destination, replyTo); err != nil {
		return err
	}

	d.logger.Info().
		Str("loan_id", req.LoanID).
		Str("batch_id", req.BatchID).
		Str("destination", destination).
		Str("reply_to", replyTo).
		Msg("dispatch: validation request published")

	return nil
}
