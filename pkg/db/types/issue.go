package dbtypes

import "github.com/autolenis/autolenis-backend/pkg/enums"

// Issue is a single validation finding attached to an offer. Error severity
// marks the offer invalid; warnings ride along for transparency.
type Issue struct {
	Code     enums.IssueCode     `json:"code"`
	Message  string              `json:"message"`
	Field    string              `json:"field,omitempty"`
	Severity enums.IssueSeverity `json:"severity"`
}

// Issues is stored as a jsonb column on offers.
type Issues []Issue

// HasErrors reports whether any finding carries error severity.
func (is Issues) HasErrors() bool {
	for _, issue := range is {
		if issue.Severity == enums.SeverityError {
			return true
		}
	}
	return false
}

// Codes returns the issue codes in order, mostly for tests and log fields.
func (is Issues) Codes() []enums.IssueCode {
	codes := make([]enums.IssueCode, 0, len(is))
	for _, issue := range is {
		codes = append(codes, issue.Code)
	}
	return codes
}
