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
	"sync"
	"sync/atomic"
	"time"
)

// mpscNode is a node in the lock-free MPSC queue specialized for *envelope.
type mpscNode struct {
	next atomic.Pointer[mpscNode]
	data *envelope
}

var mpscNodePool = sync.Pool{New: func() any { return new(mpscNode) }}

// DefaultMailbox is an unbounded, lock-free MPSC mailbox, grounded on the
// teacher's actor.DefaultMailbox. It is not itself blocking; a small
// buffered "doorbell" channel is layered on top so it can also satisfy
// BlockingMailbox for the non-prioritised receive loop.
//
// Concurrency model: many goroutines may Enqueue concurrently; only one
// goroutine may call Dequeue or Wait.
type DefaultMailbox struct {
	head    atomic.Pointer[mpscNode]
	_pad1   [64]byte
	tail    atomic.Pointer[mpscNode]
	_pad2   [64]byte
	doorbell chan struct{}
	disposed atomic.Bool
}

var _ BlockingMailbox = (*DefaultMailbox)(nil)

// NewDefaultMailbox creates an empty DefaultMailbox.
func NewDefaultMailbox() *DefaultMailbox {
	dummy := mpscNodePool.Get().(*mpscNode)
	dummy.next.Store(nil)
	dummy.data = nil
	m := &DefaultMailbox{doorbell: make(chan struct{}, 1)}
	m.head.Store(dummy)
	m.tail.Store(dummy)
	return m
}

// Enqueue places value at the tail. Never blocks; returns ErrAlreadyStopped
// once the mailbox has been disposed, nil otherwise.
func (m *DefaultMailbox) Enqueue(value *envelope) error {
	if m.disposed.Load() {
		return ErrAlreadyStopped
	}
	n := mpscNodePool.Get().(*mpscNode)
	n.data = value
	prev := m.tail.Swap(n)
	prev.next.Store(n)
	select {
	case m.doorbell <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue removes and returns the head envelope, or nil if empty.
func (m *DefaultMailbox) Dequeue() *envelope {
	head := m.head.Load()
	next := head.next.Load()
	if next == nil {
		return nil
	}
	m.head.Store(next)
	value := next.data
	head.next.Store(nil)
	mpscNodePool.Put(head)
	return value
}

// Wait blocks up to timeout for a message to become available, then
// dequeues it. A zero timeout polls once without blocking.
func (m *DefaultMailbox) Wait(timeout time.Duration) (*envelope, bool) {
	if msg := m.Dequeue(); msg != nil {
		return msg, true
	}
	if timeout == 0 {
		return nil, false
	}
	timer := time.NewTimer(effectiveWait(timeout))
	defer timer.Stop()
	for {
		select {
		case _, open := <-m.doorbell:
			if msg := m.Dequeue(); msg != nil {
				return msg, true
			}
			if !open {
				return nil, false
			}
			// a stale ring left by an already-dequeued message: keep waiting
		case <-timer.C:
			return nil, false
		}
	}
}

// Len performs an O(n) snapshot traversal; intended for diagnostics.
func (m *DefaultMailbox) Len() int64 {
	h := m.head.Load()
	n := h.next.Load()
	var count int64
	for n != nil {
		count++
		n = n.next.Load()
	}
	return count
}

// IsEmpty is an O(1) check safe under concurrent producers.
func (m *DefaultMailbox) IsEmpty() bool {
	head := m.head.Load()
	return head.next.Load() == nil
}

// Dispose unblocks any waiter in Wait. Safe to call once.
func (m *DefaultMailbox) Dispose() {
	if m.disposed.CompareAndSwap(false, true) {
		close(m.doorbell)
	}
}
