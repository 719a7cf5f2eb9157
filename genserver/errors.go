// MIT License
//
// Copyright (c) 2026 distributed-process-platform Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package genserver

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAlive indicates the target process is no longer running.
	ErrNotAlive = errors.New("process is not alive")

	// ErrUnhandled is returned when a process receives a message no handler matches
	// and the unhandled policy is Terminate.
	ErrUnhandled = errors.New("unhandled message")

	// ErrCallTimeout indicates a call's reply did not arrive within the given deadline.
	ErrCallTimeout = errors.New("call timed out")

	// ErrTypeMismatch indicates a call reply arrived whose dynamic type does not
	// match what the caller expected.
	ErrTypeMismatch = errors.New("call reply type mismatch")

	// ErrAlreadyStopped is returned when an operation is attempted on a process
	// that has already run its shutdown handler and exited.
	ErrAlreadyStopped = errors.New("process already stopped")

	// ErrControlChannelIncompatibleWithPriorities is returned when a process
	// definition attaches both a control channel and dispatch priorities.
	ErrControlChannelIncompatibleWithPriorities = errors.New("control channel cannot be combined with a prioritised process")

	// ErrInitStop is returned by Spawn when Init returns InitIgnore. An
	// InitStop result is reported instead as an error wrapping its own reason.
	ErrInitStop = errors.New("init requested stop")

	// ErrNoReplyPending names the case of a reply with no matching pending
	// reply token. No function in this package currently returns it:
	// ReplyLater returns no error.
	ErrNoReplyPending = errors.New("no pending reply for token")

	// ErrShutdownHandlerPanicked indicates the shutdown handler itself
	// panicked while running, a fatal bug in the handler body.
	ErrShutdownHandlerPanicked = errors.New("shutdown handler panicked")
)

// NewErrUnhandled wraps ErrUnhandled with the dynamic type name of the
// message that went unhandled.
func NewErrUnhandled(messageType string) error {
	return fmt.Errorf("message=(%s) %w", messageType, ErrUnhandled)
}

// NewErrCallTimeout wraps ErrCallTimeout with the reply token that timed out.
func NewErrCallTimeout(token ReplyToken) error {
	return fmt.Errorf("token=(%s) %w", token, ErrCallTimeout)
}

// NewErrTypeMismatch wraps ErrTypeMismatch with the expected and actual type names.
func NewErrTypeMismatch(expected, actual string) error {
	return fmt.Errorf("expected=(%s) actual=(%s) %w", expected, actual, ErrTypeMismatch)
}

// PanicError wraps a recovered panic value as an error, preserving it across
// the exit protocol so a supervisor can inspect the original cause.
type PanicError struct {
	Value any
}

var _ error = PanicError{}

// NewPanicError returns a PanicError wrapping the given recovered value.
func NewPanicError(value any) PanicError {
	return PanicError{Value: value}
}

// Error implements the error interface.
func (p PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}
