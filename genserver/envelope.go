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

	"go.uber.org/atomic"
)

// ReplyToken uniquely correlates a call with its reply: minted from the
// caller's Pid plus a per-caller monotonic counter, so collisions across
// callers are impossible.
type ReplyToken struct {
	caller string
	seq    uint64
}

// String renders the token for logging and map-key debugging.
func (t ReplyToken) String() string {
	return fmt.Sprintf("%s#%d", t.caller, t.seq)
}

// IsZero reports whether this is the unset token, used to distinguish
// cast/info envelopes (which carry no token) from calls.
func (t ReplyToken) IsZero() bool { return t.caller == "" && t.seq == 0 }

// replyTokenSource mints fresh reply tokens for a single caller identity.
// Embedded in Pid so every process can act as a call client.
type replyTokenSource struct {
	id      string
	counter atomic.Uint64
}

func (s *replyTokenSource) next() ReplyToken {
	return ReplyToken{caller: s.id, seq: s.counter.Inc()}
}

type envelopeKind int

const (
	envCast envelopeKind = iota
	envCall
	envInfo
	envExit
	envControl
)

// envelope is the opaque message wrapper carried through mailboxes. The
// payload type is erased to `any`; handlers recover it by type assertion
// at match time.
type envelope struct {
	ctx         context.Context
	kind        envelopeKind
	payload     any
	sender      *Pid
	replyToken  ReplyToken
	replyTo     *Pid
	exitPayload any // set only for envExit; may decode to ExitReason or a user type
}

// newCastEnvelope wraps a fire-and-forget payload, tagged on the wire to
// distinguish it from a call by the envCast discriminator above.
func newCastEnvelope(ctx context.Context, sender *Pid, payload any) *envelope {
	return &envelope{ctx: ctx, kind: envCast, payload: payload, sender: sender}
}

// newCallEnvelope wraps a request/response payload together with the
// reply address and token the receiver uses to deliver its response.
func newCallEnvelope(ctx context.Context, sender *Pid, payload any, token ReplyToken, replyTo *Pid) *envelope {
	return &envelope{ctx: ctx, kind: envCall, payload: payload, sender: sender, replyToken: token, replyTo: replyTo}
}

func newInfoEnvelope(ctx context.Context, sender *Pid, payload any) *envelope {
	return &envelope{ctx: ctx, kind: envInfo, payload: payload, sender: sender}
}

// newExitEnvelope wraps an exit signal's sender and reason. reason may
// decode to an ExitReason or to a user-defined payload routed through the
// process's exit handlers.
func newExitEnvelope(ctx context.Context, from *Pid, reason any) *envelope {
	return &envelope{ctx: ctx, kind: envExit, sender: from, exitPayload: reason}
}

// Message returns the erased payload carried by this envelope.
func (e *envelope) Message() any { return e.payload }

// Sender returns the Pid that originated this envelope, or nil.
func (e *envelope) Sender() *Pid { return e.sender }

// Context returns the context the sender attached to this delivery, or
// context.Background() if none was set. Handler bodies are not passed it.
func (e *envelope) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}
