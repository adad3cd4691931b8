package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default logical destination bases for routed verification events.
const (
	defaultVerifiedDestinationBase = "loans/originationservices/documents/verified"
	defaultFailedDestinationBase   = "loans/originationservices/documents/failed"
)

// Config captures all runtime configuration for the document verification
// worker. It is constructed once at startup and passed into components as an
// immutable value.
type Config struct {
	App            AppConfig
	Kafka          KafkaConfig
	Topics         TopicConfig
	Destinations   DestinationConfig
	ConsumerGroups ConsumerGroupConfig
	Documents      DocumentConfig
	Validation     ValidationConfig
	Worker         WorkerConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// KafkaConfig defines broker information.
type KafkaConfig struct {
	Brokers             []string
	CommitOnSuccessOnly bool
}

// TopicConfig enumerates the concrete Kafka topics the worker consumes from
// and publishes to.
type TopicConfig struct {
	LoanSubmit    string
	Request       string
	Reply         string
	Verified      string
	Failed        string
	FailureEvents string
}

// DestinationConfig holds the logical destination bases used for reply
// correlation and routed-event addressing. The loan id is appended to each
// base at publish time.
type DestinationConfig struct {
	RequestBase  string
	ReplyBase    string
	VerifiedBase string
	FailedBase   string
}

// ConsumerGroupConfig provides the consumer group per inbound channel.
type ConsumerGroupConfig struct {
	Submit string
	Reply  string
}

// DocumentConfig controls document collection and retrieval.
type DocumentConfig struct {
	BaseDir             string
	FetchTimeoutSeconds int
}

// ValidationConfig holds the decision-service instruction settings.
type ValidationConfig struct {
	Prompt          string
	ExcerptMaxChars int
	SourceSystem    string
}

// WorkerConfig controls handler concurrency.
type WorkerConfig struct {
	Concurrency int
}

// Load reads environment variables, applies defaults, validates required
// values and returns a populated Config instance.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.Kafka.Brokers = ldr.getStringSlice("KAFKA_BROKERS", true)
	cfg.Kafka.CommitOnSuccessOnly = ldr.getBool("COMMIT_ON_SUCCESS_ONLY", true, false)

	cfg.Topics.LoanSubmit = ldr.getString("KAFKA_LOAN_SUBMIT_TOPIC", "", true)
	cfg.Topics.Request = ldr.getString("KAFKA_LLM_REQUEST_TOPIC", "", true)
	cfg.Topics.Reply = ldr.getString("KAFKA_LLM_REPLY_TOPIC", "", true)
	cfg.Topics.Verified = ldr.getString("KAFKA_DOCUMENT_VERIFIED_TOPIC", "", true)
	cfg.Topics.Failed = ldr.getString("KAFKA_DOCUMENT_FAILED_TOPIC", "", true)
	cfg.Topics.FailureEvents = ldr.getString("KAFKA_FAILURE_EVENTS_TOPIC", "", true)

	cfg.Destinations.RequestBase = ldr.getString("LLM_REQUEST_DESTINATION_BASE", "", true)
	cfg.Destinations.ReplyBase = ldr.getString("LLM_REPLY_DESTINATION_BASE", "", true)
	cfg.Destinations.VerifiedBase = ldr.getString("DOCUMENT_VERIFIED_DESTINATION_BASE", defaultVerifiedDestinationBase, false)
	cfg.Destinations.FailedBase = ldr.getString("DOCUMENT_FAILED_DESTINATION_BASE", defaultFailedDestinationBase, false)

	cfg.ConsumerGroups.Submit = ldr.getString("SUBMIT_CONSUMER_GROUP", "", true)
	cfg.ConsumerGroups.Reply = ldr.getString("REPLY_CONSUMER_GROUP", "", true)

	cfg.Documents.BaseDir = ldr.getString("UPLOADS_BASE_DIR", "", true)
	cfg.Documents.FetchTimeoutSeconds = ldr.getInt("DOCUMENT_FETCH_TIMEOUT_SECONDS", 30, false)

	cfg.Validation.Prompt = ldr.getString("VALIDATE_PROMPT", "", true)
	cfg.Validation.ExcerptMaxChars = ldr.getInt("EXCERPT_MAX_CHARS", 8000, false)
	cfg.Validation.SourceSystem = ldr.getString("SOURCE_SYSTEM", "loan-origination-docverify", false)

	cfg.Worker.Concurrency = ldr.getInt("WORKER_CONCURRENCY", 10, false)

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		return val
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			l.addError(fmt.Sprintf("%s must be a valid integer", key))
			return def
		}
		return i
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getBool(key string, def bool, required bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			l.addError(fmt.Sprintf("%s must be a valid boolean", key))
			return def
		}
		return parsed
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getStringSlice(key string, required bool) []string {
	raw := l.getString(key, "", required)
	if raw == "" {
		if required {
			return nil
		}
		return []string{}
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if required && len(out) == 0 {
		l.addError(fmt.Sprintf("%s must contain at least one entry", key))
	}
	return out
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
