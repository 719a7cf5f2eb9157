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

// CallContext is handed to a call handler body in place of the raw
// (caller, reply token) pair. It carries enough to let the handler defer
// its reply via ReplyLater instead of returning one immediately.
type CallContext struct {
	// Caller is the process that issued the call, for guard predicates and
	// logging. It is NOT necessarily where the reply is delivered — see
	// CallChan, whose reply lands on an ephemeral receive port instead.
	Caller *Pid
	// Token correlates this call with its eventual reply.
	Token ReplyToken

	replyTo *Pid
}

// ReplyLater completes a call whose handler previously returned NoReply.
// It is safe to call from any goroutine, including one spawned by the
// handler body itself.
func (c CallContext) ReplyLater(value any) {
	deliverReply(c.replyTo, c.Token, value)
}

// APIHandler unifies call and cast dispatchers so a ProcessDefinition can
// interleave them in a single ordered slice, matched in insertion order.
// Construct instances with HandleCall or HandleCast; this erases the
// payload type Req behind the interface so heterogeneous handlers can
// share one registry slice.
type APIHandler[S any] interface {
	tryAPI(state S, env *envelope, reply func(any)) (Action[S], bool)
}

type callHandler[S, Req any] struct {
	guard func(S, Req, CallContext) bool
	body  func(S, Req, CallContext) CallResult[S]
}

func (h *callHandler[S, Req]) tryAPI(state S, env *envelope, reply func(any)) (Action[S], bool) {
	if env.kind != envCall {
		return Action[S]{}, false
	}
	typed, ok := env.payload.(Req)
	if !ok {
		return Action[S]{}, false
	}
	cc := CallContext{Caller: env.sender, Token: env.replyToken, replyTo: env.replyTo}
	if h.guard != nil && !h.guard(state, typed, cc) {
		return Action[S]{}, false
	}
	result := h.body(state, typed, cc)
	return applyCallResult(result, reply), true
}

func applyCallResult[S any](result CallResult[S], reply func(any)) Action[S] {
	switch result.kind {
	case replyKindReply:
		reply(result.value)
		return Continue(result.state)
	case replyKindStop:
		reply(result.value)
		return Stop(result.state, result.reason)
	default: // replyKindNoReply
		return Continue(result.state)
	}
}

// HandleCall registers a request/response dispatcher for payloads of type
// Req. body returns a CallResult built with Reply, NoReply, or StopReply.
// guard may be nil.
func HandleCall[S, Req any](
	body func(state S, request Req, call CallContext) CallResult[S],
	guard func(state S, request Req, call CallContext) bool,
) APIHandler[S] {
	return &callHandler[S, Req]{guard: guard, body: body}
}

type castHandler[S, Req any] struct {
	guard func(S, Req) bool
	body  func(S, Req) Action[S]
}

func (h *castHandler[S, Req]) tryAPI(state S, env *envelope, _ func(any)) (Action[S], bool) {
	if env.kind != envCast {
		return Action[S]{}, false
	}
	typed, ok := env.payload.(Req)
	if !ok {
		return Action[S]{}, false
	}
	if h.guard != nil && !h.guard(state, typed) {
		return Action[S]{}, false
	}
	return h.body(state, typed), true
}

// HandleCast registers a fire-and-forget dispatcher for payloads of type
// Req. guard may be nil.
func HandleCast[S, Req any](
	body func(state S, message Req) Action[S],
	guard func(state S, message Req) bool,
) APIHandler[S] {
	return &castHandler[S, Req]{guard: guard, body: body}
}

// InfoHandler dispatches deferred, non-protocol messages delivered to a
// process's mailbox from outside the call/cast protocol (e.g. Terminated
// notifications, DeadLetter forwards, late replies). Messages sent with
// Cast never reach InfoHandlers; they are matched against APIHandlers.
type InfoHandler[S any] interface {
	tryInfo(state S, env *envelope) (Action[S], bool)
}

type infoHandler[S, Req any] struct {
	guard func(S, Req) bool
	body  func(S, Req) Action[S]
}

func (h *infoHandler[S, Req]) tryInfo(state S, env *envelope) (Action[S], bool) {
	typed, ok := env.payload.(Req)
	if !ok {
		return Action[S]{}, false
	}
	if h.guard != nil && !h.guard(state, typed) {
		return Action[S]{}, false
	}
	return h.body(state, typed), true
}

// HandleInfo registers a dispatcher for non-protocol messages of type Req.
func HandleInfo[S, Req any](
	body func(state S, message Req) Action[S],
	guard func(state S, message Req) bool,
) InfoHandler[S] {
	return &infoHandler[S, Req]{guard: guard, body: body}
}

// ExitHandler dispatches structured exit signals whose payload matches a
// registered type.
type ExitHandler[S any] interface {
	tryExit(state S, sender *Pid, payload any) (Action[S], bool)
}

type exitHandler[S, Req any] struct {
	body func(S, *Pid, Req) Action[S]
}

func (h *exitHandler[S, Req]) tryExit(state S, sender *Pid, payload any) (Action[S], bool) {
	typed, ok := payload.(Req)
	if !ok {
		return Action[S]{}, false
	}
	return h.body(state, sender, typed), true
}

// HandleExit registers a recovery dispatcher for exit signals carrying a
// payload of type Req.
func HandleExit[S, Req any](body func(state S, sender *Pid, payload Req) Action[S]) ExitHandler[S] {
	return &exitHandler[S, Req]{body: body}
}
