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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityBucketQueueStrictPriorityFIFO(t *testing.T) {
	q := newPriorityBucketQueue()

	low1 := newCastEnvelope(context.Background(), nil, "low-1")
	low2 := newCastEnvelope(context.Background(), nil, "low-2")
	high1 := newCastEnvelope(context.Background(), nil, "high-1")
	high2 := newCastEnvelope(context.Background(), nil, "high-2")

	q.push(0, low1)
	q.push(0, low2)
	q.push(5, high1)
	q.push(5, high2)

	assert.Equal(t, 4, q.len())

	first, ok := q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "high-1", first.Message())

	second, ok := q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "high-2", second.Message())

	third, ok := q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "low-1", third.Message())

	fourth, ok := q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "low-2", fourth.Message())

	_, ok = q.popHighest()
	assert.False(t, ok)
	assert.True(t, q.isEmpty())
}

func TestPriorityBucketQueueInterleavedLevels(t *testing.T) {
	q := newPriorityBucketQueue()
	q.push(1, newCastEnvelope(context.Background(), nil, "a"))
	q.push(3, newCastEnvelope(context.Background(), nil, "b"))
	q.push(2, newCastEnvelope(context.Background(), nil, "c"))

	env, ok := q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "b", env.Message())

	env, ok = q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "c", env.Message())

	env, ok = q.popHighest()
	assert.True(t, ok)
	assert.Equal(t, "a", env.Message())
}

func TestClassifyDefaultsToZero(t *testing.T) {
	priorities := []DispatchPriority{
		func(m any) (int, bool) {
			if m == "urgent" {
				return 9, true
			}
			return 0, false
		},
	}
	assert.Equal(t, 9, classify(priorities, "urgent"))
	assert.Equal(t, 0, classify(priorities, "whatever"))
}
