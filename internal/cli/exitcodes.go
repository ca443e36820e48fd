package cli

import (
	"errors"

	"github.com/rpggio/projector/internal/client"
	"github.com/rpggio/projector/internal/workspace"
)

// Exit codes returned by the projects command.
const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitUsage      = 2
	ExitNotFound   = 3
	ExitTimeout    = 4
	ExitValidation = 5
)

// ExitCode maps an error from a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, client.ErrNotFound), errors.Is(err, workspace.ErrProjectNotFound):
		return ExitNotFound
	case errors.Is(err, client.ErrTimeout):
		return ExitTimeout
	case errors.Is(err, client.ErrValidationFailed), errors.Is(err, workspace.ErrInvalidSelection):
		return ExitValidation
	case errors.Is(err, errUsage):
		return ExitUsage
	default:
		return ExitError
	}
}

// errorCode names err for JSON output.
func errorCode(err error) string {
	switch ExitCode(err) {
	case ExitNotFound:
		return "NOT_FOUND"
	case ExitTimeout:
		return "TIMEOUT"
	case ExitValidation:
		return "VALIDATION_FAILED"
	case ExitUsage:
		return "USAGE"
	default:
		return "ERROR"
	}
}
