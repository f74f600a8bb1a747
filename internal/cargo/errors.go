package cargo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a test run produced no results.
type ErrorKind string

// Error kinds.
const (
	KindCargoMissing ErrorKind = "cargo-missing"
	KindManifest     ErrorKind = "manifest"
	KindBuild        ErrorKind = "build"
	KindNoTests      ErrorKind = "no-tests"
	KindCanceled     ErrorKind = "canceled"
	KindExec         ErrorKind = "exec"
)

// RunError is returned by Runner.Run when no results could be collected.
// Failing tests are not a RunError.
type RunError struct {
	Kind    ErrorKind
	Message string
	Output  string // Trailing cargo output, for the detail view
	Err     error
}

func (e *RunError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a RunError in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind
	}
	return ""
}
