package returns

import (
	"errors"
	"fmt"

	"github.com/erp/returns/internal/domain/shared"
)

// Error codes surfaced by the return lifecycle
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeConflictingState  = "CONFLICTING_STATE"
	CodeDispatchFailed    = "DISPATCH_FAILED"
	CodeDispatchTimeout   = "DISPATCH_TIMEOUT"
	CodeNotFound          = "NOT_FOUND"
)

// Sentinels for errors.Is; DomainError.Is compares codes only.
var (
	ErrValidation        = shared.NewDomainError(CodeValidation, "validation failed")
	ErrIllegalTransition = shared.NewDomainError(CodeIllegalTransition, "illegal transition")
	ErrConflictingState  = shared.NewDomainError(CodeConflictingState, "return was modified concurrently")
	ErrDispatchFailed    = shared.NewDomainError(CodeDispatchFailed, "resolution dispatch failed")
	ErrDispatchTimeout   = shared.NewDomainError(CodeDispatchTimeout, "resolution dispatch timed out")
	ErrReturnNotFound    = shared.NewDomainError(CodeNotFound, "return not found")
)

// NewValidationError reports a guard failure on a single input field
func NewValidationError(field, message string) *shared.DomainError {
	return shared.NewFieldError(CodeValidation, field, message)
}

// NewIllegalTransitionError reports an operation that the current status does not allow
func NewIllegalTransitionError(action string, from ReturnStatus) *shared.DomainError {
	return shared.NewFieldError(CodeIllegalTransition, "status",
		fmt.Sprintf("Cannot %s a return in %s status", action, from))
}

// NewConflictingStateError reports a lost race on the same record
func NewConflictingStateError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeConflictingState, message)
}

// NewDispatchError wraps a collaborator failure
func NewDispatchError(resolution ResolutionType, cause error) *shared.DomainError {
	return shared.WrapDomainError(CodeDispatchFailed,
		fmt.Sprintf("Failed to execute %s", resolution), cause)
}

// NewDispatchTimeoutError wraps a collaborator call that exceeded its deadline
func NewDispatchTimeoutError(resolution ResolutionType, cause error) *shared.DomainError {
	return shared.WrapDomainError(CodeDispatchTimeout,
		fmt.Sprintf("Timed out executing %s", resolution), cause)
}

// NewNotFoundError reports a missing return record
func NewNotFoundError(what string) *shared.DomainError {
	return shared.NewDomainError(CodeNotFound, fmt.Sprintf("Return %s not found", what))
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsIllegalTransition(err error) bool {
	return errors.Is(err, ErrIllegalTransition)
}

func IsConflictingState(err error) bool {
	return errors.Is(err, ErrConflictingState)
}

// IsDispatchFailure reports both rejected and timed-out dispatches
func IsDispatchFailure(err error) bool {
	return errors.Is(err, ErrDispatchFailed) || errors.Is(err, ErrDispatchTimeout)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrReturnNotFound) || errors.Is(err, shared.ErrNotFound)
}
