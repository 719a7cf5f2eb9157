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

type actionKind int

const (
	actionContinue actionKind = iota
	actionTimeoutAfter
	actionHibernate
	actionStop
)

// Action is the tagged sum returned by cast/info/exit/timeout handlers.
// Build one with Continue, TimeoutAfter, Hibernate, Stop, or StopNormal —
// never construct the zero value directly.
type Action[S any] struct {
	kind     actionKind
	state    S
	duration time.Duration
	reason   ExitReason
}

// Continue loops with the new state and no deadline.
func Continue[S any](state S) Action[S] {
	return Action[S]{kind: actionContinue, state: state}
}

// TimeoutAfter loops with a receive deadline; if it elapses with no message,
// the process definition's TimeoutHandler fires.
func TimeoutAfter[S any](state S, d time.Duration) Action[S] {
	return Action[S]{kind: actionTimeoutAfter, state: state, duration: d}
}

// Hibernate asks the loop to release pooled buffers and arm a deadline of
// d. The loop does not sleep: a message arriving before d elapses is
// dispatched at once. Unlike TimeoutAfter, an elapsed hibernate deadline
// never invokes TimeoutHandler — it simply resumes an unbounded wait.
func Hibernate[S any](state S, d time.Duration) Action[S] {
	return Action[S]{kind: actionHibernate, state: state, duration: d}
}

// Stop runs the ShutdownHandler with reason and then terminates the process.
func Stop[S any](state S, reason ExitReason) Action[S] {
	return Action[S]{kind: actionStop, state: state, reason: reason}
}

// StopNormal is a synonym for Stop(state, Normal()).
func StopNormal[S any](state S) Action[S] {
	return Stop(state, Normal())
}

// State returns the state carried by this action, regardless of kind.
func (a Action[S]) State() S { return a.state }

func (a Action[S]) isContinue() bool     { return a.kind == actionContinue }
func (a Action[S]) isTimeoutAfter() bool { return a.kind == actionTimeoutAfter }
func (a Action[S]) isHibernate() bool    { return a.kind == actionHibernate }
func (a Action[S]) isStop() bool         { return a.kind == actionStop }

type replyKind int

const (
	replyKindReply replyKind = iota
	replyKindNoReply
	replyKindStop
)

// CallResult is the tagged sum returned by call handler bodies. The reply
// value is erased to `any` at the registry boundary; HandleCall's generic
// factory keeps call sites typed.
type CallResult[S any] struct {
	kind   replyKind
	value  any
	state  S
	reason ExitReason
}

// Reply sends value to the caller and continues with state.
func Reply[S any](value any, state S) CallResult[S] {
	return CallResult[S]{kind: replyKindReply, value: value, state: state}
}

// NoReply defers the reply: the handler is responsible for calling
// ReplyLater with the same token later.
func NoReply[S any](state S) CallResult[S] {
	return CallResult[S]{kind: replyKindNoReply, state: state}
}

// StopReply sends value to the caller, then stops the process with reason.
func StopReply[S any](value any, state S, reason ExitReason) CallResult[S] {
	return CallResult[S]{kind: replyKindStop, value: value, state: state, reason: reason}
}

// State returns the state carried by this result, regardless of kind.
func (r CallResult[S]) State() S { return r.state }
