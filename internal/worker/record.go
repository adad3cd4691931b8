package worker

import (
	"context"
	"time"
)

// Record represents an inbound message delivered to a handler. It is a
// minimal abstraction that keeps the handlers decoupled from the concrete
// consumer implementation.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string][]byte

	commit func(context.Context) error
}

// Commit marks the record as processed with the underlying transport. Records
// without a commit binding commit as a no-op, which keeps handlers testable
// with synthetic records.
func (r *Record) Commit(ctx context.Context) error {
	if r == nil || r.commit == nil {
		return nil
	}
	return r.commit(ctx)
}

// Clone returns a deep copy of the record so it can be safely handed to an
// asynchronous goroutine without risking data races.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Key = cloneBytes(r.Key)
	clone.Value = cloneBytes(r.Value)
	if len(r.Headers) > 0 {
		clone.Headers = cloneHeaders(r.Headers)
	}

	return &clone
}

// Header returns the named header value as a string, or empty when absent.
func (r *Record) Header(name string) string {
	if r == nil || len(r.Headers) == 0 {
		return ""
	}
	return string(r.Headers[name])
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}

func cloneHeaders(headers map[string][]byte) map[string][]byte {
	if len(headers) == 0 {
		return nil
	}
	clone := make(map[string][]byte, len(headers))
	for k, v := range headers {
		clone[k] = cloneBytes(v)
	}
	return clone
}
