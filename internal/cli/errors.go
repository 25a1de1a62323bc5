package cli

import (
	stderrors "errors"
	"fmt"
)

// ExitError carries a non-zero exit code out of a command without calling
// os.Exit inside it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError extracts the exit code from err.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
