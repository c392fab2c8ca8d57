package contract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContractFinal signals a write attempted after finalization.
	ErrContractFinal = errors.New("contract: contract is final")
	// ErrRoleForbidden signals a role writing outside its own records.
	ErrRoleForbidden = errors.New("contract: role may not modify this record")
	// ErrPreconditionNotMet signals Finalize called before the contract is ready.
	ErrPreconditionNotMet = errors.New("contract: finalize preconditions not met")
)

// PreconditionError reports every precondition that blocked Finalize. It
// matches ErrPreconditionNotMet under errors.Is.
type PreconditionError struct {
	Unmet []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("contract: cannot finalize: %s", strings.Join(e.Unmet, "; "))
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionNotMet
}
