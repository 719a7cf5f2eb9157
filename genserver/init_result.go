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

// initResultKind distinguishes the three ways a process's Init callback
// may resolve: start normally, stop before becoming reachable, or be
// silently ignored.
type initResultKind int

const (
	initKindOK initResultKind = iota
	initKindStop
	initKindIgnore
)

// InitResult is returned by a ProcessDefinition's Init callback. Build one
// with InitOK, InitStop, or InitIgnore.
type InitResult[S any] struct {
	kind      initResultKind
	state     S
	timeout   time.Duration
	hibernate bool
	reason    ExitReason
}

// InitOK starts the process normally with the given initial state.
func InitOK[S any](state S) InitResult[S] {
	return InitResult[S]{kind: initKindOK, state: state}
}

// InitOKTimeout starts the process with an initial state and arms the
// timeout clock for d before the first message is received, per the same
// semantics TimeoutAfter applies after a regular Action.
func InitOKTimeout[S any](state S, d time.Duration) InitResult[S] {
	return InitResult[S]{kind: initKindOK, state: state, timeout: d}
}

// InitOKHibernate starts the process with an initial state and arms the
// hibernate clock for d before the first message is received.
func InitOKHibernate[S any](state S, d time.Duration) InitResult[S] {
	return InitResult[S]{kind: initKindOK, state: state, timeout: d, hibernate: true}
}

// InitStop aborts startup: the process never becomes reachable and exits
// immediately with reason, without running ShutdownHandler.
func InitStop[S any](reason ExitReason) InitResult[S] {
	return InitResult[S]{kind: initKindStop, reason: reason}
}

// InitIgnore aborts startup silently: Spawn returns ErrInitStop and the
// process is never registered or made reachable. Distinguished from
// InitStop so a supervisor need not count an ignored start as a failure.
func InitIgnore[S any]() InitResult[S] {
	return InitResult[S]{kind: initKindIgnore}
}
