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
	"time"
)

// Cast sends a fire-and-forget message to target and returns as soon as it
// is enqueued. from is recorded as the envelope's sender; pass nil for an
// anonymous cast.
func Cast(ctx context.Context, from *Pid, target *Pid, message any) error {
	if target == nil || !target.IsAlive() {
		return ErrNotAlive
	}
	return target.mailbox.Enqueue(newCastEnvelope(ctx, from, message))
}

// Call sends a request to target and blocks until a reply arrives, ctx is
// done, or target dies first. from must be a live Pid: the reply is
// delivered to from's own pending-call table, correlated by a freshly
// minted ReplyToken.
func Call(ctx context.Context, from *Pid, target *Pid, request any) (any, error) {
	return callVia(ctx, from, from, target, request)
}

// CallTimeout is Call bounded by a duration instead of an arbitrary context.
func CallTimeout(from *Pid, target *Pid, request any, timeout time.Duration) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Call(ctx, from, target, request)
}

// CallForever is Call against context.Background(): it blocks until a
// reply arrives or target dies, with no caller-imposed deadline. Named to
// make the absence of a timeout an explicit choice at the call site,
// rather than an accidental context.Background() left lying around.
func CallForever(from *Pid, target *Pid, request any) (any, error) {
	return Call(context.Background(), from, target, request)
}

// CallChan performs a call whose reply is delivered to an ephemeral
// ChanReceivePort instead of back into from's own pending-call table —
// the shape a plain goroutine outside the framework needs to issue a
// blocking call without itself being a managed process.
func CallChan[T any](ctx context.Context, from *Pid, target *Pid, request any) (T, error) {
	port := NewChanReceivePort[T]()
	defer port.Close()

	if target == nil || !target.IsAlive() {
		var zero T
		return zero, ErrNotAlive
	}
	token := port.pid.tokens.next()
	env := newCallEnvelope(ctx, from, request, token, port.pid)
	if err := target.mailbox.Enqueue(env); err != nil {
		var zero T
		return zero, err
	}
	return port.Recv(ctx)
}

// callVia is shared by Call and any future caller-identity variant: caller
// is attributed as the sender, replyTo is where the reply lands.
func callVia(ctx context.Context, caller *Pid, replyTo *Pid, target *Pid, request any) (any, error) {
	if target == nil || !target.IsAlive() {
		return nil, ErrNotAlive
	}
	if replyTo == nil {
		return nil, ErrNotAlive
	}

	token := replyTo.tokens.next()
	resultCh := make(chan any, 1)
	replyTo.pending.Store(token, resultCh)

	env := newCallEnvelope(ctx, caller, request, token, replyTo)
	if err := target.mailbox.Enqueue(env); err != nil {
		replyTo.pending.Delete(token)
		return nil, err
	}

	select {
	case v := <-resultCh:
		if failure, ok := v.(pendingFailure); ok {
			return nil, failure.err
		}
		return v, nil
	case <-ctx.Done():
		replyTo.pending.Delete(token)
		return nil, NewErrCallTimeout(token)
	case <-target.died:
		replyTo.pending.Delete(token)
		return nil, ErrNotAlive
	}
}

// CallAs is Call for a typed reply: it performs the call and then asserts
// the reply's dynamic type against Resp, surfacing a mismatch as
// ErrTypeMismatch rather than a runtime panic.
func CallAs[Resp any](ctx context.Context, from *Pid, target *Pid, request any) (Resp, error) {
	v, err := Call(ctx, from, target, request)
	if err != nil {
		var zero Resp
		return zero, err
	}
	typed, ok := v.(Resp)
	if !ok {
		var zero Resp
		return zero, NewErrTypeMismatch(staticTypeName[Resp](), dynamicTypeName(v))
	}
	return typed, nil
}
