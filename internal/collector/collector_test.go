package collector_test

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/collector"
)

func TestCollectFiltersToSupportedTypes(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "loan-agreement.pdf"), "pdf-bytes")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "notes")
	mustWrite(t, filepath.Join(dir, "UPPER.PDF"), "pdf-bytes")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	mustWrite(t, filepath.Join(dir, "nested", "deep.pdf"), "pdf-bytes")

	c := collector.New(zerolog.New(io.Discard))
	addrs, err := c.Collect(dir)
	if err != nil {
		t.Fatalf("unexpected collect error: %v", err)
	}

	if len(addrs) != 2 {
		t.Fatalf("expected 2 eligible documents, got %d", len(addrs))
	}
	for _, addr := range addrs {
		if addr.Scheme != "file" {
			t.Fatalf("expected file scheme, got %q", addr.Scheme)
		}
		if !strings.HasSuffix(strings.ToLower(addr.Path), ".pdf") {
			t.Fatalf("unexpected eligible address %q", addr.Path)
		}
		if strings.Contains(addr.Path, "nested") {
			t.Fatalf("collection must not recurse into subdirectories: %q", addr.Path)
		}
	}
}

func TestCollectInvalidDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "loan-agreement.pdf")
	mustWrite(t, file, "pdf-bytes")

	c := collector.New(zerolog.New(io.Discard))

	if _, err := c.Collect(file); err == nil {
		t.Fatalf("expected error for non-directory base")
	}
	if _, err := c.Collect(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing base")
	}
}

func TestIsEligible(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/drop/statement.pdf", true},
		{"/drop/Statement.PDF", true},
		{"/drop/photo.jpg", false},
		{"/drop/archive.pdf.bak", false},
	}

	for _, tc := range cases {
		addr := &url.URL{Scheme: "file", Path: tc.path}
		if got := collector.IsEligible(addr); got != tc.want {
			t.Fatalf("IsEligible(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
	if collector.IsEligible(nil) {
		t.Fatalf("nil address must not be eligible")
	}
}

func TestCollectEmptyDirectory(t *testing.T) {
	c := collector.New(zerolog.New(io.Discard))

	addrs, err := c.Collect(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected collect error: %v", err)
	}
	if len(addrs) != 0 {
		t.Fatalf("expected no documents in empty directory")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
