package transfer

import (
	"errors"
	"fmt"
)

const (
	usernameNotConfiguredMessageConstant  = "username or access token not configured"
	localCloneMissingMessageConstant      = "local mirror clone not found"
	mirrorSourceMissingMessageConstant    = "no source project mirrors into this project"
	preconditionErrorTemplateConstant     = "%s precondition not met for %s: %v"
	taskFailureTemplateConstant           = "%s failed for %s: %v"
	taskPanicTemplateConstant             = "task panicked: %v"
	gatewayNotConfiguredMessageConstant   = "git gateway not configured"
	workspaceNotConfiguredMessageConstant = "workspace not configured"
)

var (
	// ErrUsernameNotConfigured indicates an instance without the identity needed to authenticate git.
	ErrUsernameNotConfigured = errors.New(usernameNotConfiguredMessageConstant)
	// ErrLocalCloneMissing indicates an operation that requires a mirror clone which is absent.
	ErrLocalCloneMissing = errors.New(localCloneMissingMessageConstant)
	// ErrMirrorSourceMissing indicates a destination project with no source counterpart to push from.
	ErrMirrorSourceMissing = errors.New(mirrorSourceMissingMessageConstant)
	// ErrGatewayNotConfigured indicates Operations constructed without a git gateway.
	ErrGatewayNotConfigured = errors.New(gatewayNotConfiguredMessageConstant)
	// ErrWorkspaceNotConfigured indicates Operations constructed without a workspace.
	ErrWorkspaceNotConfigured = errors.New(workspaceNotConfiguredMessageConstant)
)

// PreconditionError reports a task that was skipped because its inputs were not ready.
type PreconditionError struct {
	Operation string
	Project   string
	Cause     error
}

// Error describes the unmet precondition.
func (preconditionError PreconditionError) Error() string {
	return fmt.Sprintf(preconditionErrorTemplateConstant, preconditionError.Operation, preconditionError.Project, preconditionError.Cause)
}

// Unwrap exposes the precondition sentinel.
func (preconditionError PreconditionError) Unwrap() error {
	return preconditionError.Cause
}

// TaskFailure reports a task that ran and failed.
type TaskFailure struct {
	Operation string
	Project   string
	Cause     error
}

// Error describes the failure.
func (failure TaskFailure) Error() string {
	return fmt.Sprintf(taskFailureTemplateConstant, failure.Operation, failure.Project, failure.Cause)
}

// Unwrap exposes the underlying failure.
func (failure TaskFailure) Unwrap() error {
	return failure.Cause
}

// PanicError carries the value recovered from a panicking task.
type PanicError struct {
	Value any
}

// Error describes the recovered panic.
func (panicError PanicError) Error() string {
	return fmt.Sprintf(taskPanicTemplateConstant, panicError.Value)
}
