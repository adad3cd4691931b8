// Package fetch retrieves raw document bytes from local-file and HTTP(S)
// addresses. Any other scheme is rejected so a misaddressed document aborts
// the whole batch instead of being silently dropped.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnsupportedScheme is returned for addresses the fetcher cannot resolve.
var ErrUnsupportedScheme = errors.New("unsupported address scheme")

const defaultHTTPTimeout = 30 * time.Second

// Fetcher resolves document addresses to their raw bytes.
type Fetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// Option customises the fetcher during construction.
type Option func(*Fetcher)

// WithHTTPTimeout overrides the timeout applied to HTTP(S) retrievals.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// New constructs a Fetcher.
func New(logger zerolog.Logger, opts ...Option) *Fetcher {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	f := &Fetcher{
		client: &http.Client{Timeout: defaultHTTPTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fetch reads the full contents of the supplied address. Local files and
// HTTP(S) URLs are supported; anything else fails with ErrUnsupportedScheme.
func (f *Fetcher) Fetch(ctx context.Context, addr *url.URL) ([]byte, error) {
	if addr == nil {
		return nil, errors.New("fetch: address is required")
	}

	switch strings.ToLower(addr.Scheme) {
	case "file", "":
		return f.fetchLocal(addr)
	case "http", "https":
		return f.fetchHTTP(ctx, addr)
	default:
		return nil, fmt.Errorf("fetch: scheme %q: %w", addr.Scheme, ErrUnsupportedScheme)
	}
}

func (f *Fetcher) fetchLocal(addr *url.URL) ([]byte, error) {
	data, err := os.ReadFile(addr.Path)
	if err != nil {
		return nil, fmt.Errorf("fetch: read file %s: %w", addr.Path, err)
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, addr *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request for %s: %w", addr, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: get %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: get %s: unexpected status %d", addr, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body from %s: %w", addr, err)
	}
	return data, nil
}
