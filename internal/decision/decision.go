// Package decision extracts a binary verdict from the free-form text the
// decision service returns. Parsing is pure and deterministic: the same input
// always yields the same outcome, and ambiguity is a valid result, never an
// error.
package decision

// Outcome is the resolved verdict for a reply.
type Outcome string

const (
	// Pass means the reply contained an affirmative verdict and no failure
	// marker anywhere.
	Pass Outcome = "PASS"
	// Fail means a failure marker was observed somewhere in the reply. Fail
	// dominates Pass whenever both appear.
	Fail Outcome = "FAIL"
	// Unknown means no recognizable verdict was found. Routing treats it the
	// same as Fail.
	Unknown Outcome = "UNKNOWN"
)
