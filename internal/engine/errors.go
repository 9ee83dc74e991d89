package engine

import (
	"errors"
	"fmt"
)

// CommandError reports a command that could not run against the requested
// record. Store failures are not CommandErrors; they wrap store.ErrUnavailable.
type CommandError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// AgentID identifies the affected agent, when known.
	AgentID string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes command errors.
type ErrorCode string

const (
	// ErrCodeAgentNotFound indicates the agent record does not exist.
	ErrCodeAgentNotFound ErrorCode = "AGENT_NOT_FOUND"

	// ErrCodeItemNotFound indicates the checklist item does not exist.
	ErrCodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"

	// ErrCodeAlreadyInitialized indicates the agent already has a checklist.
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"

	// ErrCodeConflict indicates the item changed between read and write.
	ErrCodeConflict ErrorCode = "ITEM_CONFLICT"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.AgentID != "" {
		return fmt.Sprintf("%s: %s (agent=%s)", e.Code, e.Message, e.AgentID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err is an agent or item not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeAgentNotFound || ce.Code == ErrCodeItemNotFound
	}
	return false
}

// IsAlreadyInitialized returns true if err reports an existing checklist.
func IsAlreadyInitialized(err error) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeAlreadyInitialized
	}
	return false
}

// IsConflict returns true if err reports a toggle that lost a race on the
// same item.
func IsConflict(err error) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeConflict
	}
	return false
}

func agentNotFound(agentID string, err error) *CommandError {
	return &CommandError{
		Code:    ErrCodeAgentNotFound,
		Message: "agent not found",
		AgentID: agentID,
		Err:     err,
	}
}

func itemNotFound(agentID, ref string, err error) *CommandError {
	return &CommandError{
		Code:    ErrCodeItemNotFound,
		Message: fmt.Sprintf("checklist item %q not found", ref),
		AgentID: agentID,
		Err:     err,
	}
}
