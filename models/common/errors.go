package common

import (
	"errors"
	"fmt"
	"runtime"
)

type DetailedError interface {
	Detail() string
}

// ErrSettlement means an operation was broadcast and settled, but the
// ledger reports it failed. Resources were still consumed.
var ErrSettlement = errors.New("operation settled with failure status")

// StepError is a fatal failure in one step of a registration or
// resolution. It records which step failed and, for steps after
// submission, what the ledger says the attempt consumed.
type StepError struct {
	Err     error
	File    string
	IsFatal bool
	Line    int
	Message string

	// Step is the pipeline stage that failed. See constants.Stage*.
	Step string

	// ResourcesConsumed and BlockRef are known only for operations
	// that settled. Settled tells whether they are meaningful.
	ResourcesConsumed uint64
	BlockRef          uint64
	Settled           bool
}

// NewStepError returns a fatal StepError for step. Param err is the
// underlying error, typically one of the sentinel errors from the
// digest, ledger or keys packages, so callers can use errors.Is.
func NewStepError(step, message string, err error) *StepError {
	_, file, line, _ := runtime.Caller(1)
	return &StepError{
		Err:     err,
		File:    file,
		IsFatal: true,
		Line:    line,
		Message: message,
		Step:    step,
	}
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Step, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

// Detail returns a message with the source location, the underlying
// error and any resource consumption the ledger reported.
func (e *StepError) Detail() string {
	prefix := ""
	if e.IsFatal {
		prefix = "FATAL: "
	}
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf(" (Underlying error: %s)", e.Err.Error())
	}
	consumption := ""
	if e.Settled {
		consumption = fmt.Sprintf(" (Resources consumed: %d in block %d)", e.ResourcesConsumed, e.BlockRef)
	}
	return fmt.Sprintf("%s[%s] %s [%s:%d]%s%s",
		prefix, e.Step, e.Message, e.File, e.Line, underlyingError, consumption)
}

// StepOf returns the step recorded in err, if err is or wraps a
// StepError.
func StepOf(err error) (string, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}
	return "", false
}
