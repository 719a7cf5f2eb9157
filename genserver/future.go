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

import "context"

// Future is a deferred call result: AsyncCall returns immediately, and
// the caller decides when (or whether) to block on Await. Useful for
// fanning a call out to several targets before waiting on any of them.
type Future[T any] struct {
	resultCh chan any
	token    ReplyToken
	replyTo  *Pid
}

// AsyncCall enqueues a call to target and returns a Future instead of
// blocking, the non-blocking counterpart to Call.
func AsyncCall[T any](from *Pid, target *Pid, request any) (*Future[T], error) {
	if target == nil || !target.IsAlive() {
		return nil, ErrNotAlive
	}
	if from == nil {
		return nil, ErrNotAlive
	}
	token := from.tokens.next()
	resultCh := make(chan any, 1)
	from.pending.Store(token, resultCh)

	env := newCallEnvelope(context.Background(), from, request, token, from)
	if err := target.mailbox.Enqueue(env); err != nil {
		from.pending.Delete(token)
		return nil, err
	}
	return &Future[T]{resultCh: resultCh, token: token, replyTo: from}, nil
}

// Await blocks for the future's reply until ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-f.resultCh:
		if failure, ok := v.(pendingFailure); ok {
			return zero, failure.err
		}
		typed, ok := v.(T)
		if !ok {
			return zero, NewErrTypeMismatch(staticTypeName[T](), dynamicTypeName(v))
		}
		return typed, nil
	case <-ctx.Done():
		f.replyTo.pending.Delete(f.token)
		return zero, NewErrCallTimeout(f.token)
	}
}
