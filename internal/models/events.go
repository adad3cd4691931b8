package models

import "time"

// EventType identifies the kind of downstream verification event.
type EventType string

// EventTypeDocumentVerificationFailed is the only event type the pipeline
// emits today.
const EventTypeDocumentVerificationFailed EventType = "DOCUMENT_VERIFICATION_FAILED"

// DocumentStatus is the terminal status recorded on a failed document.
type DocumentStatus string

// DocumentStatusFailed is the only status the failure schema defines.
const DocumentStatusFailed DocumentStatus = "failed"

// FailureCode classifies why a document failed verification. The codes are a
// closed set; serialization of any other value is a schema violation.
type FailureCode string

const (
	FailureCodeDocumentExpired     FailureCode = "DOCUMENT_EXPIRED"
	FailureCodeDocumentTampered    FailureCode = "DOCUMENT_TAMPERED"
	FailureCodeLowQualityImage     FailureCode = "LOW_QUALITY_IMAGE"
	FailureCodeMismatchInformation FailureCode = "MISMATCH_INFORMATION"
	FailureCodeUnsupportedFormat   FailureCode = "UNSUPPORTED_FORMAT"
	FailureCodeMissingPages        FailureCode = "MISSING_PAGES"
	FailureCodeProviderError       FailureCode = "PROVIDER_ERROR"
	FailureCodeTimeout             FailureCode = "TIMEOUT"
	FailureCodeOther               FailureCode = "OTHER"
)

// FailedDocument is the nested detail record of a DocumentFailureEvent.
// FailureCode, Attempts and the provider fields are populated by a downstream
// enrichment step; the orchestration core only fills loan identity, status and
// failure timing. Serialization is sparse: unset fields are omitted.
type FailedDocument struct {
	Retryable     *bool          `json:"retryable,omitempty"`
	FailedAt      *time.Time     `json:"failedAt,omitempty"`
	FailureCode   FailureCode    `json:"failureCode,omitempty"`
	DocumentType  string         `json:"documentType,omitempty"`
	Provider      string         `json:"provider,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
	CustomerID    string         `json:"customerId,omitempty"`
	DocumentID    string         `json:"documentId,omitempty"`
	LoanID        string         `json:"loanId,omitempty"`
	Status        DocumentStatus `json:"status,omitempty"`
	Attempts      *int           `json:"attempts,omitempty"`
}

// DocumentFailureEvent is the wire event emitted when a loan's document
// package fails verification. It is constructed fully populated and never
// mutated afterwards; its only owner is the single publish call that sends it.
type DocumentFailureEvent struct {
	EventID       string          `json:"eventId"`
	SourceSystem  string          `json:"sourceSystem,omitempty"`
	Document      *FailedDocument `json:"document,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	EventType     EventType       `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
}
