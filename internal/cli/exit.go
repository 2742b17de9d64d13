package cli

import "fmt"

// ExitError asks main to exit with Code without printing anything further.
// The command has already reported the problem.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
