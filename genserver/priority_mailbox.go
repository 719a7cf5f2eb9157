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

// DispatchPriority is an ordered priority predicate: it inspects a message
// and, if it recognizes it, returns the priority level to assign plus
// matched=true. The first matching predicate in the ordered list wins; a
// message matching none gets priority 0.
type DispatchPriority func(message any) (priority int, matched bool)

type recvTimeoutPolicyKind int

const (
	policyCounter recvTimeoutPolicyKind = iota
	policyTimer
)

// RecvTimeoutPolicy bounds how long a single drain step may run before the
// prioritised loop yields to dispatch. Build one with CounterPolicy or
// TimerPolicy.
type RecvTimeoutPolicy struct {
	kind  recvTimeoutPolicyKind
	count int
	dur   time.Duration
}

// CounterPolicy bounds a drain step to at most n polled messages.
func CounterPolicy(n int) RecvTimeoutPolicy {
	return RecvTimeoutPolicy{kind: policyCounter, count: n}
}

// TimerPolicy bounds a drain step to at most d of wall-clock time.
func TimerPolicy(d time.Duration) RecvTimeoutPolicy {
	return RecvTimeoutPolicy{kind: policyTimer, dur: d}
}

// priorityBucketQueue is the internal queue a prioritised process drains
// into. It is accessed exclusively by the single consumer goroutine that
// runs the process loop — never by producers, who only ever reach the
// process's real Mailbox — so it is implemented as plain FIFO slices per
// bucket rather than one of the pack's concurrent queue types; there are
// no concurrent producers for this structure to protect against.
//
// Invariants enforced by construction:
//   - strict priority: popHighest never returns a lower-priority message
//     while a higher-priority one is queued.
//   - FIFO within a bucket: push appends, popHighest shifts off the front.
type priorityBucketQueue struct {
	buckets map[int][]*envelope
	levels  []int // active priority levels, kept sorted descending
	size    int
}

func newPriorityBucketQueue() *priorityBucketQueue {
	return &priorityBucketQueue{buckets: make(map[int][]*envelope)}
}

func (q *priorityBucketQueue) push(priority int, env *envelope) {
	if _, ok := q.buckets[priority]; !ok {
		q.insertLevel(priority)
	}
	q.buckets[priority] = append(q.buckets[priority], env)
	q.size++
}

func (q *priorityBucketQueue) insertLevel(priority int) {
	i := 0
	for i < len(q.levels) && q.levels[i] > priority {
		i++
	}
	q.levels = append(q.levels, 0)
	copy(q.levels[i+1:], q.levels[i:])
	q.levels[i] = priority
}

// popHighest dequeues the head of the highest non-empty priority bucket.
func (q *priorityBucketQueue) popHighest() (*envelope, bool) {
	for len(q.levels) > 0 {
		top := q.levels[0]
		bucket := q.buckets[top]
		if len(bucket) == 0 {
			delete(q.buckets, top)
			q.levels = q.levels[1:]
			continue
		}
		env := bucket[0]
		q.buckets[top] = bucket[1:]
		q.size--
		if len(q.buckets[top]) == 0 {
			delete(q.buckets, top)
			q.levels = q.levels[1:]
		}
		return env, true
	}
	return nil, false
}

func (q *priorityBucketQueue) isEmpty() bool { return q.size == 0 }

func (q *priorityBucketQueue) len() int { return q.size }

// classify applies the ordered priority predicates to message, returning
// the first match's priority or 0 if none matched.
func classify(priorities []DispatchPriority, message any) int {
	for _, p := range priorities {
		if level, ok := p(message); ok {
			return level
		}
	}
	return 0
}
