package cli

import "errors"

// ParamError marks a bad command parameter: an unreadable or invalid
// configuration file, or a conflicting flag combination. It exits with a
// distinct status so scripts can tell usage mistakes from automation
// failures.
type ParamError struct {
	Err error
}

func (e *ParamError) Error() string { return e.Err.Error() }

func (e *ParamError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to the process exit status: 2 for
// parameter errors, 1 for everything else.
func ExitCode(err error) int {
	var paramErr *ParamError
	if errors.As(err, &paramErr) {
		return 2
	}
	return 1
}
