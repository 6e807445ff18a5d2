package errors

import (
	"fmt"
	"strings"
)

// ValidationIssue describes one invalid input field.
type ValidationIssue struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

// ValidationError is the structured error surfaced as an HTTP 400 for
// malformed input, e.g. a session id that is not a valid identifier. It is
// kept distinct from soft sentinel results: bad input is a hard error.
type ValidationError struct {
	Type   string            `json:"type"`
	Issues []ValidationIssue `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, fmt.Sprintf("%s: %s (%s)", issue.Code, issue.Message, strings.Join(issue.Path, ".")))
	}
	return "validation: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a single-issue validation error.
func NewValidationError(code, message string, path ...string) *ValidationError {
	return &ValidationError{
		Type: "validation",
		Issues: []ValidationIssue{
			{Code: code, Message: message, Path: path},
		},
	}
}

// NewInvalidSessionID reports a session id that is not structurally valid.
func NewInvalidSessionID() *ValidationError {
	return NewValidationError("invalid format", "Session id is not a valid session id", "id")
}
