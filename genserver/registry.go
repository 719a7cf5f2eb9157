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

import "time"

type unhandledKind int

const (
	unhandledTerminate unhandledKind = iota
	unhandledDrop
	unhandledDeadLetter
)

// UnhandledPolicy is consulted when no registered handler matches an
// incoming envelope. Build one with TerminatePolicy, DropPolicy, or
// DeadLetterPolicy; the zero value is TerminatePolicy.
type UnhandledPolicy struct {
	kind       unhandledKind
	deadLetter *Pid
}

// TerminatePolicy stops the process on a miss with an Other reason whose
// payload is an error wrapping ErrUnhandled and naming the message type.
func TerminatePolicy() UnhandledPolicy { return UnhandledPolicy{kind: unhandledTerminate} }

// DropPolicy silently discards an unmatched envelope and continues.
func DropPolicy() UnhandledPolicy { return UnhandledPolicy{kind: unhandledDrop} }

// DeadLetterPolicy forwards an unmatched envelope's payload to addr as an
// info message (handled by addr's InfoHandlers) and continues.
func DeadLetterPolicy(addr *Pid) UnhandledPolicy {
	return UnhandledPolicy{kind: unhandledDeadLetter, deadLetter: addr}
}

// ProcessDefinition parameterizes a managed process over its user state S.
// Build one with NewProcessDefinition and the With* options, or populate
// the fields directly — all are exported because handler registration is
// inherently call-site-typed.
type ProcessDefinition[S any] struct {
	Init            func(args any) InitResult[S]
	APIHandlers     []APIHandler[S]
	InfoHandlers    []InfoHandler[S]
	ExitHandlers    []ExitHandler[S]
	TimeoutHandler  func(state S, elapsed time.Duration) Action[S]
	ShutdownHandler func(state S, reason ExitReason)
	UnhandledPolicy UnhandledPolicy
	Control         *controlBinding[S]
}

// NewProcessDefinition returns a ProcessDefinition with TerminatePolicy as
// its unhandled policy and no handlers registered, mirroring the teacher's
// zero-value-plus-options construction style.
func NewProcessDefinition[S any](init func(args any) InitResult[S]) *ProcessDefinition[S] {
	return &ProcessDefinition[S]{Init: init, UnhandledPolicy: TerminatePolicy()}
}

// dispatchOutcome distinguishes why dispatch returned no action, so the
// process loop can decide between re-raising an exit and applying the
// unhandled policy.
type dispatchOutcome int

const (
	dispatchHandled dispatchOutcome = iota
	dispatchUnhandled
	dispatchExitUnmatched
)

// dispatch routes env to the first matching handler in insertion order.
// Because each envelope already carries its protocol kind
// (call/cast/info/exit) set at construction time, a dynamically-typed
// catch-all handler can never accidentally shadow a handler registered
// for a different kind.
func (d *ProcessDefinition[S]) dispatch(state S, env *envelope, reply func(any)) (Action[S], dispatchOutcome) {
	switch env.kind {
	case envCall, envCast:
		for _, h := range d.APIHandlers {
			if action, ok := h.tryAPI(state, env, reply); ok {
				return action, dispatchHandled
			}
		}
		return Action[S]{}, dispatchUnhandled
	case envExit:
		for _, h := range d.ExitHandlers {
			if action, ok := h.tryExit(state, env.sender, env.exitPayload); ok {
				return action, dispatchHandled
			}
		}
		return Action[S]{}, dispatchExitUnmatched
	default: // envInfo
		for _, h := range d.InfoHandlers {
			if action, ok := h.tryInfo(state, env); ok {
				return action, dispatchHandled
			}
		}
		return Action[S]{}, dispatchUnhandled
	}
}
