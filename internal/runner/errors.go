package runner

import "fmt"

// AutomationError is the failure kind that aborts a run: a failed step, an
// unsupported action, a driver timeout, or an unexpected job error. The
// original cause, when present, is available through Unwrap.
type AutomationError struct {
	msg   string
	cause error
}

func newAutomationError(format string, args ...any) *AutomationError {
	return &AutomationError{msg: fmt.Sprintf(format, args...)}
}

func wrapAutomationError(cause error, format string, args ...any) *AutomationError {
	return &AutomationError{msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *AutomationError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *AutomationError) Unwrap() error { return e.cause }
