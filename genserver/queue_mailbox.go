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
	"time"

	gods "github.com/Workiva/go-datastructures/queue"
)

// QueueMailbox is an unbounded, natively blocking MPSC mailbox backed by
// github.com/Workiva/go-datastructures/queue.Queue, grounded on the same
// library the teacher uses for BoundedMailbox (actor/bounded_mailbox.go).
// Unlike DefaultMailbox's doorbell channel, Queue.Poll gives Wait a direct,
// allocation-light blocking primitive. Spawn still defaults to
// DefaultMailbox; select QueueMailbox with WithMailbox.
type QueueMailbox struct {
	underlying *gods.Queue
}

var _ BlockingMailbox = (*QueueMailbox)(nil)

// NewQueueMailbox creates an empty, unbounded QueueMailbox.
func NewQueueMailbox() *QueueMailbox {
	return &QueueMailbox{underlying: gods.New(16)}
}

// Enqueue places msg at the tail. Never blocks; returns an error only once
// the mailbox has been disposed.
func (q *QueueMailbox) Enqueue(msg *envelope) error {
	return q.underlying.Put(msg)
}

// Dequeue removes and returns the head envelope without blocking, or nil if
// the mailbox is currently empty.
func (q *QueueMailbox) Dequeue() *envelope {
	if q.underlying.Empty() {
		return nil
	}
	items, err := q.underlying.Poll(1, time.Microsecond)
	if err != nil || len(items) == 0 {
		return nil
	}
	return items[0].(*envelope)
}

// Wait blocks up to timeout for a message. A zero timeout polls once
// without blocking; a negative timeout blocks indefinitely.
func (q *QueueMailbox) Wait(timeout time.Duration) (*envelope, bool) {
	if timeout == 0 {
		msg := q.Dequeue()
		return msg, msg != nil
	}
	items, err := q.underlying.Poll(1, effectiveWait(timeout))
	if err != nil || len(items) == 0 {
		return nil, false
	}
	return items[0].(*envelope), true
}

// IsEmpty reports whether the mailbox currently has no messages.
func (q *QueueMailbox) IsEmpty() bool { return q.underlying.Empty() }

// Len returns the current number of queued messages.
func (q *QueueMailbox) Len() int64 { return q.underlying.Len() }

// Dispose releases the underlying queue and unblocks any waiter in Wait.
func (q *QueueMailbox) Dispose() { q.underlying.Dispose() }
