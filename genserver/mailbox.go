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

// Mailbox defines the contract for a process's message queue, grounded on
// the teacher's actor.Mailbox contract (non-blocking, MPSC, FIFO unless a
// specialized implementation documents otherwise).
//
// Concurrency and ordering
//   - Implementations MUST be thread-safe for multiple concurrent producers
//     calling Enqueue.
//   - The process loop consumes from a single goroutine; implementations
//     SHOULD optimize Dequeue for a single consumer.
//   - Default expectation is FIFO ordering. Priority ordering is applied
//     by a prioritised process loop after dequeue, not by a Mailbox.
//
// Non-blocking behavior
//   - Enqueue SHOULD be non-blocking. BoundedMailbox is the exception: its
//     Enqueue blocks while the mailbox is full.
//   - Dequeue SHOULD be non-blocking and return nil when empty.
type Mailbox interface {
	// Enqueue pushes an envelope into the mailbox.
	Enqueue(msg *envelope) error
	// Dequeue fetches one envelope, or nil if the mailbox is empty.
	Dequeue() *envelope
	// IsEmpty reports whether the mailbox currently has no messages.
	IsEmpty() bool
	// Len returns a best-effort snapshot of the number of queued messages.
	Len() int64
	// Dispose releases resources and unblocks any internal waiters.
	Dispose()
}

// BlockingMailbox extends Mailbox with a blocking receive primitive: Wait
// blocks until a message is available or the timeout elapses, returning
// (nil, false) on timeout or after Dispose. A zero timeout means "poll
// once, do not block"; a negative timeout means "block indefinitely", the
// no-deadline case of a process that never called TimeoutAfter/Hibernate.
type BlockingMailbox interface {
	Mailbox
	Wait(timeout time.Duration) (*envelope, bool)
}

// forever stands in for "block indefinitely" wherever an implementation's
// underlying blocking primitive wants a concrete duration rather than a
// sentinel. A century comfortably outlives any process.
const forever = 100 * 365 * 24 * time.Hour

// effectiveWait normalizes a Wait timeout: negative becomes forever, zero
// and positive pass through unchanged.
func effectiveWait(timeout time.Duration) time.Duration {
	if timeout < 0 {
		return forever
	}
	return timeout
}
