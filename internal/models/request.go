package models

// Task identifier attached to every outbound validation request.
const TaskValidatePackage = "validate_package"

// Chat message roles understood by the decision service.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// DocumentEntryTypeBase64 is the only document encoding currently emitted.
const DocumentEntryTypeBase64 = "base64"

// DocumentEntry is one encoded document inside a validation request. Entries
// keep their collection order so the decision service sees documents in the
// same sequence the excerpt buffer references them.
type DocumentEntry struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName"`
}

// ChatMessage is a single role/content turn in the instruction payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidationRequest is the multi-document payload published to the decision
// service. BatchID is generated fresh per request and carries no correlation
// semantics; the loan id embedded in the topic path does the correlating.
type ValidationRequest struct {
	Task      string          `json:"task"`
	LoanID    string          `json:"loanId"`
	BatchID   string          `json:"batchId"`
	Documents []DocumentEntry `json:"documents"`
	Messages  []ChatMessage   `json:"messages"`
}

// LoanApplication carries the identifiers the pipeline needs from a
// submission.
type LoanApplication struct {
	LoanID     string `json:"loanId"`
	CustomerID string `json:"customerId,omitempty"`
}

// LoanSubmitEvent is the inbound event that triggers document verification
// for a loan.
type LoanSubmitEvent struct {
	LoanApplication LoanApplication `json:"loanApplication"`
}
