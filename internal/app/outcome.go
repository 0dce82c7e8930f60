package app

import (
	"context"
	"errors"

	"github.com/pharos-backup/pharos/internal/hook"
)

// Outcome is the terminal classification of a run. It is the only value
// that ever turns into a process exit status, and that translation happens
// exactly once, in the command entry point.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTestModeExit
	OutcomeConnectivityFailure
	OutcomeUserInterrupted
	OutcomeHookPolicyViolation
	OutcomeGenericFailure
)

// ExitCode maps the outcome to its process exit status. Code 63 signals
// the invoking tool that retrying cannot help.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess, OutcomeTestModeExit:
		return 0
	case OutcomeHookPolicyViolation:
		return 63
	default:
		return 1
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTestModeExit:
		return "connectivity test succeeded"
	case OutcomeConnectivityFailure:
		return "connectivity failure"
	case OutcomeUserInterrupted:
		return "interrupted by the user"
	case OutcomeHookPolicyViolation:
		return "unrecoverable hook failure"
	default:
		return "failure"
	}
}

// ClassifyError maps a failure to its outcome class. Cancellation means an
// operator interrupt; an unrecoverable hook error keeps its dedicated
// class; everything else is a generic failure.
func ClassifyError(err error) Outcome {
	if errors.Is(err, context.Canceled) {
		return OutcomeUserInterrupted
	}
	var unrecoverable *hook.UnrecoverableError
	if errors.As(err, &unrecoverable) {
		return OutcomeHookPolicyViolation
	}
	return OutcomeGenericFailure
}
