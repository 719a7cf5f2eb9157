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
	"context"
	"fmt"
	"time"
)

// controlBinding erases a process's control channel element type M behind
// a closure so ProcessDefinition[S] need not itself be generic over M.
// recv is a non-blocking poll: it returns ok=false immediately when
// nothing is pending, letting the loop check it ahead of the mailbox on
// every iteration without blocking.
type controlBinding[S any] struct {
	recv  func() (any, bool)
	apply func(state S, msg any) Action[S]
}

// WithControlChannel arms a process's control channel: ch is drained with
// priority over the ordinary mailbox on every loop iteration — the loop
// polls the control channel first, and only proceeds to the mailbox if
// it's empty. handler receives each value read from ch.
//
// ch is supplied by the caller, who retains the send side, rather than
// the framework introducing a new named channel type.
func WithControlChannel[S any, M any](ch <-chan M, handler func(state S, msg M) Action[S]) *controlBinding[S] {
	return &controlBinding[S]{
		recv: func() (any, bool) {
			select {
			case v, ok := <-ch:
				if !ok {
					return nil, false
				}
				return v, true
			default:
				return nil, false
			}
		},
		apply: func(state S, msg any) Action[S] {
			return handler(state, msg.(M))
		},
	}
}

// ChanReceivePort is the ephemeral reply sink used by CallChan: a one-shot
// Pid-like receiver that exists only to carry a single reply value back to
// a caller that is itself not a managed process (e.g. a plain goroutine
// issuing a blocking call from outside the framework).
type ChanReceivePort[T any] struct {
	pid *Pid
	ch  chan T
}

// NewChanReceivePort allocates a receive port with buffer capacity 1 and
// registers a throwaway Pid so the callee can address it as a reply_to in
// the call envelope exactly like any other process.
func NewChanReceivePort[T any]() *ChanReceivePort[T] {
	port := &ChanReceivePort[T]{ch: make(chan T, 1)}
	port.pid = newPid(newSinkMailbox(port))
	return port
}

// Pid returns the ephemeral identity this port listens on.
func (p *ChanReceivePort[T]) Pid() *Pid { return p.pid }

// Recv blocks until the single expected reply arrives or ctx is done.
func (p *ChanReceivePort[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v := <-p.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Close unregisters the port's ephemeral Pid. Safe to call after Recv
// returns, or instead of Recv if the caller abandons the call.
func (p *ChanReceivePort[T]) Close() {
	unregisterPid(p.pid)
}

// sinkMailbox adapts a ChanReceivePort into the BlockingMailbox shape a
// Pid requires, so call/cast delivery code needs no special case for
// ephemeral sinks. Only Enqueue is meaningful: a sink never runs a loop
// that Dequeues from itself.
type sinkMailbox[T any] struct {
	port *ChanReceivePort[T]
}

func newSinkMailbox[T any](port *ChanReceivePort[T]) *sinkMailbox[T] {
	return &sinkMailbox[T]{port: port}
}

func (m *sinkMailbox[T]) Enqueue(msg *envelope) error {
	value, ok := msg.payload.(T)
	if !ok {
		return NewErrTypeMismatch(staticTypeName[T](), dynamicTypeName(msg.payload))
	}
	select {
	case m.port.ch <- value:
	default:
	}
	return nil
}

func (m *sinkMailbox[T]) Dequeue() *envelope                       { return nil }
func (m *sinkMailbox[T]) IsEmpty() bool                            { return true }
func (m *sinkMailbox[T]) Len() int64                               { return 0 }
func (m *sinkMailbox[T]) Dispose()                                 {}
func (m *sinkMailbox[T]) Wait(_ time.Duration) (*envelope, bool) { return nil, false }

// staticTypeName names a generic type parameter at its zero value, for
// error messages that compare an expected compile-time type against a
// mismatched dynamic one.
func staticTypeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// dynamicTypeName names the runtime type behind an erased `any` value.
func dynamicTypeName(v any) string {
	return fmt.Sprintf("%T", v)
}
