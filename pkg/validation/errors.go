package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a single user-facing validation failure of a node.
type ValidationError struct {
	Node    string // Node ID, empty for flow-level errors
	Message string // Localized, human-readable message
}

func (e *ValidationError) Error() string {
	if e.Node == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Node, e.Message)
}

// InternalError reports a structural problem of the document, such as a
// node of a type this version does not know. It is not the user's mistake
// and is shown apart from validation errors.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string { return e.Message }
func (e *InternalError) Unwrap() error { return e.Err }

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
