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

// BoundedMailbox is a bounded, blocking MPSC mailbox backed by a ring
// buffer, grounded directly on the teacher's actor.BoundedMailbox.
//
// Use this mailbox when strict, blocking backpressure with a bounded
// capacity is required — e.g. a process whose producers must slow down
// rather than grow the mailbox without limit.
type BoundedMailbox struct {
	underlying *gods.RingBuffer
}

var _ BlockingMailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a bounded, blocking mailbox of the given
// capacity, which must be positive.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	return &BoundedMailbox{underlying: gods.NewRingBuffer(uint64(capacity))}
}

// Enqueue inserts msg, blocking while the mailbox is full.
func (m *BoundedMailbox) Enqueue(msg *envelope) error {
	return m.underlying.Put(msg)
}

// Dequeue removes and returns the next envelope without blocking, or nil if
// the mailbox is currently empty.
func (m *BoundedMailbox) Dequeue() *envelope {
	if m.underlying.Len() == 0 {
		return nil
	}
	item, err := m.underlying.Poll(time.Microsecond)
	if err != nil || item == nil {
		return nil
	}
	return item.(*envelope)
}

// Wait blocks up to timeout for a message to arrive. A zero timeout polls
// once without blocking; a negative timeout blocks indefinitely.
func (m *BoundedMailbox) Wait(timeout time.Duration) (*envelope, bool) {
	if timeout == 0 {
		msg := m.Dequeue()
		return msg, msg != nil
	}
	item, err := m.underlying.Poll(effectiveWait(timeout))
	if err != nil || item == nil {
		return nil, false
	}
	return item.(*envelope), true
}

// IsEmpty reports whether the mailbox currently has no messages.
func (m *BoundedMailbox) IsEmpty() bool { return m.underlying.Len() == 0 }

// Len returns the current number of queued messages.
func (m *BoundedMailbox) Len() int64 { return int64(m.underlying.Len()) }

// Dispose releases the ring buffer and unblocks any waiter.
func (m *BoundedMailbox) Dispose() { m.underlying.Dispose() }
