/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownActor is returned when an operation references an Address the registry never created.
	ErrUnknownActor = errors.New("actor is unknown")

	// ErrInvalidParent is returned when a parent Address is set but does not exist.
	ErrInvalidParent = errors.New("parent actor is invalid")

	// ErrInvalidChild is returned when a child cannot be linked to a parent.
	ErrInvalidChild = errors.New("child actor is invalid")

	// ErrUnhandledMessage is returned when a receiver gets a variant outside of its declared set.
	ErrUnhandledMessage = errors.New("unhandled message")

	// ErrTransport is returned when a message cannot be delivered to a remote endpoint.
	ErrTransport = errors.New("transport failure")

	// ErrMailboxFull is returned when a bounded mailbox is at capacity.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrMailboxDisposed is returned when enqueuing into a mailbox that has been released.
	ErrMailboxDisposed = errors.New("mailbox is disposed")

	// ErrTypeNotRegistered is returned when attempting to instantiate an unregistered actor kind.
	ErrTypeNotRegistered = errors.New("actor type is not registered")

	// ErrInstanceNotAnActor is returned when the instantiated type does not implement the Actor interface.
	ErrInstanceNotAnActor = errors.New("failed to create instance. Reason: instance does not implement the Actor interface")

	// ErrInvalidMessage indicates that a message is structurally invalid.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrRemotingDisabled is returned when a remote target is addressed without a transport.
	ErrRemotingDisabled = errors.New("remoting is not enabled")

	// ErrActorSystemNotStarted indicates that an actor system has not been started before use.
	ErrActorSystemNotStarted = errors.New("actor system is not running")

	// ErrActorSystemAlreadyStarted is returned when Start is called twice.
	ErrActorSystemAlreadyStarted = errors.New("actor system has already started")

	// ErrActorSystemStopped is returned when Start is called on an actor system that has been stopped.
	ErrActorSystemStopped = errors.New("actor system is stopped")

	// ErrNameRequired is returned when an actor system name is not provided.
	ErrNameRequired = errors.New("actor system name is required")

	// ErrInitFailure is returned when the actor's PreStart hook fails.
	ErrInitFailure = errors.New("preStart failed")

	// ErrActorStopped is returned when a message is sent to an actor that has stopped.
	ErrActorStopped = errors.New("actor is stopped")

	// ErrAccessDenied is returned when the security gate rejects an inbound connection.
	ErrAccessDenied = errors.New("access denied")

	// ErrFrameTooLarge is returned when a wire frame exceeds the configured size.
	ErrFrameTooLarge = errors.New("frame exceeds the maximum size")

	// ErrProviderNotStarted is returned when a convention provider is used before Start.
	ErrProviderNotStarted = errors.New("convention provider is not started")
)

// NewErrInitFailure wraps a base error with ErrInitFailure to indicate a startup failure.
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrInvalidMessage wraps a base error with ErrInvalidMessage for additional context.
func NewErrInvalidMessage(err error) error {
	return errors.Join(ErrInvalidMessage, err)
}

// NewErrInvalidChild formats an ErrInvalidChild with a reason
func NewErrInvalidChild(child, reason string) error {
	return fmt.Errorf("child=(%s) %s: %w", child, reason, ErrInvalidChild)
}

// UnknownActorError is returned when an Address is not in the registry
type UnknownActorError struct {
	Address string
}

// enforce compilation error
var _ error = (*UnknownActorError)(nil)

// NewUnknownActorError creates an instance of UnknownActorError
func NewUnknownActorError(addr fmt.Stringer) *UnknownActorError {
	return &UnknownActorError{Address: addr.String()}
}

// Error implements the standard error interface
func (e *UnknownActorError) Error() string {
	return fmt.Sprintf("actor=(%s) %v", e.Address, ErrUnknownActor)
}

func (e *UnknownActorError) Unwrap() error {
	return ErrUnknownActor
}

// InvalidParentError is returned when a dangling parent is given at creation
type InvalidParentError struct {
	Parent string
}

// enforce compilation error
var _ error = (*InvalidParentError)(nil)

// NewInvalidParentError creates an instance of InvalidParentError
func NewInvalidParentError(parent fmt.Stringer) *InvalidParentError {
	return &InvalidParentError{Parent: parent.String()}
}

// Error implements the standard error interface
func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("parent=(%s) %v", e.Parent, ErrInvalidParent)
}

func (e *InvalidParentError) Unwrap() error {
	return ErrInvalidParent
}

// UnhandledMessageError carries the variant a receiver could not handle
// and the Address of that receiver
type UnhandledMessageError struct {
	Variant string
	Address string
}

// enforce compilation error
var _ error = (*UnhandledMessageError)(nil)

// NewUnhandledMessageError creates an instance of UnhandledMessageError
func NewUnhandledMessageError(variant string, addr fmt.Stringer) *UnhandledMessageError {
	return &UnhandledMessageError{Variant: variant, Address: addr.String()}
}

// Error implements the standard error interface
func (e *UnhandledMessageError) Error() string {
	return fmt.Sprintf("variant=(%s) at (%s): %v", e.Variant, e.Address, ErrUnhandledMessage)
}

func (e *UnhandledMessageError) Unwrap() error {
	return ErrUnhandledMessage
}

// TransportError wraps a delivery failure to a remote endpoint
type TransportError struct {
	Target string
	err    error
}

// enforce compilation error
var _ error = (*TransportError)(nil)

// NewTransportError creates an instance of TransportError
func NewTransportError(target string, err error) *TransportError {
	return &TransportError{Target: target, err: err}
}

// Error implements the standard error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%v to (%s): %v", ErrTransport, e.Target, e.err)
}

// Unwrap exposes both the sentinel and the underlying cause
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.err}
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
