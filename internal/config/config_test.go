package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KAFKA_BROKERS", "localhost:9092, localhost:9093")
	t.Setenv("KAFKA_LOAN_SUBMIT_TOPIC", "loan-submissions")
	t.Setenv("KAFKA_LLM_REQUEST_TOPIC", "llm-requests")
	t.Setenv("KAFKA_LLM_REPLY_TOPIC", "llm-replies")
	t.Setenv("KAFKA_DOCUMENT_VERIFIED_TOPIC", "docs-verified")
	t.Setenv("KAFKA_DOCUMENT_FAILED_TOPIC", "docs-failed")
	t.Setenv("KAFKA_FAILURE_EVENTS_TOPIC", "failure-events")
	t.Setenv("LLM_REQUEST_DESTINATION_BASE", "loan-project/llm-service/request/general-good/app1")
	t.Setenv("LLM_REPLY_DESTINATION_BASE", "loan-project/llm-service/response/app1")
	t.Setenv("SUBMIT_CONSUMER_GROUP", "docverify-submit")
	t.Setenv("REPLY_CONSUMER_GROUP", "docverify-reply")
	t.Setenv("UPLOADS_BASE_DIR", "/var/uploads")
	t.Setenv("VALIDATE_PROMPT", "Validate the loan documents.")
}

func TestLoadPopulatesConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EXCERPT_MAX_CHARS", "5000")
	t.Setenv("WORKER_CONCURRENCY", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.App.Env != "production" || cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "localhost:9093" {
		t.Fatalf("brokers must be split and trimmed, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Topics.LoanSubmit != "loan-submissions" || cfg.Topics.FailureEvents != "failure-events" {
		t.Fatalf("unexpected topic config %+v", cfg.Topics)
	}
	if cfg.Destinations.RequestBase != "loan-project/llm-service/request/general-good/app1" {
		t.Fatalf("unexpected request base %q", cfg.Destinations.RequestBase)
	}
	if cfg.ConsumerGroups.Submit != "docverify-submit" || cfg.ConsumerGroups.Reply != "docverify-reply" {
		t.Fatalf("unexpected consumer groups %+v", cfg.ConsumerGroups)
	}
	if cfg.Documents.BaseDir != "/var/uploads" {
		t.Fatalf("unexpected uploads dir %q", cfg.Documents.BaseDir)
	}
	if cfg.Validation.ExcerptMaxChars != 5000 {
		t.Fatalf("unexpected excerpt limit %d", cfg.Validation.ExcerptMaxChars)
	}
	if cfg.Worker.Concurrency != 4 {
		t.Fatalf("unexpected concurrency %d", cfg.Worker.Concurrency)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.App.Env != "development" || cfg.App.LogLevel != "info" {
		t.Fatalf("unexpected app defaults %+v", cfg.App)
	}
	if !cfg.Kafka.CommitOnSuccessOnly {
		t.Fatalf("commit-on-success must default to true")
	}
	if cfg.Destinations.VerifiedBase != "loans/originationservices/documents/verified" {
		t.Fatalf("unexpected verified base %q", cfg.Destinations.VerifiedBase)
	}
	if cfg.Destinations.FailedBase != "loans/originationservices/documents/failed" {
		t.Fatalf("unexpected failed base %q", cfg.Destinations.FailedBase)
	}
	if cfg.Documents.FetchTimeoutSeconds != 30 {
		t.Fatalf("unexpected fetch timeout %d", cfg.Documents.FetchTimeoutSeconds)
	}
	if cfg.Validation.ExcerptMaxChars != 8000 {
		t.Fatalf("unexpected excerpt limit %d", cfg.Validation.ExcerptMaxChars)
	}
	if cfg.Validation.SourceSystem != "loan-origination-docverify" {
		t.Fatalf("unexpected source system %q", cfg.Validation.SourceSystem)
	}
	if cfg.Worker.Concurrency != 10 {
		t.Fatalf("unexpected concurrency %d", cfg.Worker.Concurrency)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VALIDATE_PROMPT", "")
	t.Setenv("LLM_REPLY_DESTINATION_BASE", "  ")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error for missing required values")
	}
	for _, key := range []string{"VALIDATE_PROMPT", "LLM_REPLY_DESTINATION_BASE"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error must name the missing key %s: %v", key, err)
		}
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WORKER_CONCURRENCY", "many")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-integer concurrency")
	}
}
