package lifecycle

import (
	"errors"
	"fmt"

	dErrors "terralegit/pkg/domain-errors"
)

// TransitionError describes a rejected transition: where the entity was,
// where it was asked to go, and the guard that did not hold.
type TransitionError struct {
	Machine Machine
	From    string
	To      string
	Guard   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s transition %s -> %s rejected: %s", e.Machine, e.From, e.To, e.Guard)
}

// UnmetGuard returns the guard for transport adapters.
func (e *TransitionError) UnmetGuard() string {
	return e.Guard
}

// Reject builds an InvalidTransition error.
func Reject(machine Machine, from, to, guard string) error {
	te := &TransitionError{Machine: machine, From: from, To: to, Guard: guard}
	return dErrors.Wrap(te, dErrors.CodeInvalidTransition, te.Error())
}

// AsTransitionError extracts the TransitionError from err, if any.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
