// Package collector enumerates candidate input documents for a loan and
// filters them down to the supported types.
package collector

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

// supportedExtensions lists the document types the pipeline forwards. Drop
// folders are heterogeneous, so anything else is skipped silently rather than
// reported.
var supportedExtensions = []string{".pdf"}

// Collector lists the regular files below a configured base directory.
type Collector struct {
	logger zerolog.Logger
}

// New constructs a Collector.
func New(logger zerolog.Logger) *Collector {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Collector{logger: logger}
}

// IsEligible reports whether the address points at a supported document type.
func IsEligible(addr *url.URL) bool {
	if addr == nil {
		return false
	}
	p := strings.ToLower(addr.Path)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// Collect returns file addresses for every eligible regular file directly
// under baseDir, in directory order. Ineligible files are skipped without
// error; a baseDir that is not a directory is a configuration error.
func (c *Collector) Collect(baseDir string) ([]*url.URL, error) {
	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("collector: not a valid directory: %s", baseDir)
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("collector: read directory %s: %w", baseDir, err)
	}

	var addrs []*url.URL
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		full, err := filepath.Abs(filepath.Join(baseDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("collector: resolve %s: %w", entry.Name(), err)
		}
		addr := &url.URL{Scheme: "file", Path: filepath.ToSlash(full)}
		if !IsEligible(addr) {
			c.logger.Debug().Str("file", entry.Name()).Msg("collector: skipping unsupported document type")
			continue
		}
		addrs = append(addrs, addr)
	}

	return addrs, nil
}
