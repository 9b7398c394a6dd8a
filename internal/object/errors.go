package object

import "fmt"

// ValidationError is raised by ModifyAttribute when a proposed value fails
// schema validation or references a non-existent object. It is the Go
// equivalent of the original's InvalidArgument exception — the HTTP layer
// converts it to an error entry in the create-object response.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument at %q: %s", e.Path, e.Reason)
}

func newValidationError(path, reason string) *ValidationError {
	return &ValidationError{Path: path, Reason: reason}
}
