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
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// registry maps Pid identities to their handle so any process can resolve
// a reply address or a watch/link target by id.
var (
	registryMu sync.RWMutex
	registry   = map[string]*Pid{}
)

func registerPid(p *Pid) {
	registryMu.Lock()
	registry[p.id] = p
	registryMu.Unlock()
}

func unregisterPid(p *Pid) {
	registryMu.Lock()
	delete(registry, p.id)
	registryMu.Unlock()
}

func lookupPid(id string) (*Pid, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[id]
	return p, ok
}

// Pid is the opaque process identity and addressable mailbox handle every
// managed process is reached through. It is safe for concurrent use by any
// number of goroutines.
type Pid struct {
	id      string
	mailbox BlockingMailbox

	alive atomic.Bool
	died  chan struct{}

	reasonMu sync.RWMutex
	reason   *ExitReason

	watchers mapset.Set[*Pid] // monitors: notified with Terminated{Pid,Reason} on exit
	linked   mapset.Set[*Pid] // links: notified with an ExitSignal on non-normal exit
	sinks    []chan Terminated // non-process watchers (e.g. a Supervisor's own goroutine)

	tokens  replyTokenSource
	pending sync.Map // ReplyToken -> chan any, populated by Call/AsyncCall

	// control, if non-nil, is the loop-owned receive side of this process's
	// control channel. Delivery bypasses the mailbox.
	control any
}

// newPid allocates a Pid with a fresh uuid identity and registers it.
func newPid(mailbox BlockingMailbox) *Pid {
	p := &Pid{
		id:       uuid.NewString(),
		mailbox:  mailbox,
		died:     make(chan struct{}),
		watchers: mapset.NewThreadUnsafeSet[*Pid](),
		linked:   mapset.NewThreadUnsafeSet[*Pid](),
	}
	p.tokens = replyTokenSource{id: p.id}
	p.alive.Store(true)
	registerPid(p)
	return p
}

// NewClientPid returns a Pid usable purely as a call client identity: it
// can Call/Cast other processes and receive replies, but it owns no
// mailbox-driven loop of its own.
func NewClientPid() *Pid {
	return newPid(nil)
}

// ID returns this Pid's opaque, process-unique identity string.
func (p *Pid) ID() string { return p.id }

// IsAlive reports whether the process has not yet exited.
func (p *Pid) IsAlive() bool { return p.alive.Load() }

// ExitReason returns the reason the process exited, and true, once it has.
func (p *Pid) ExitReason() (ExitReason, bool) {
	p.reasonMu.RLock()
	defer p.reasonMu.RUnlock()
	if p.reason == nil {
		return ExitReason{}, false
	}
	return *p.reason, true
}

// Watch registers the current Pid as a monitor of target. The watcher
// receives a Terminated message through its info handlers when target
// exits, for any reason.
func (p *Pid) Watch(target *Pid) {
	if target == nil || target == p {
		return
	}
	target.reasonMu.Lock()
	alreadyDead := target.reason != nil
	if !alreadyDead {
		target.watchers.Add(p)
	}
	target.reasonMu.Unlock()
	if alreadyDead {
		reason, _ := target.ExitReason()
		deliverInfo(p, target, Terminated{Pid: target, Reason: reason})
	}
}

// Unwatch removes a previously registered monitor.
func (p *Pid) Unwatch(target *Pid) {
	if target == nil {
		return
	}
	target.reasonMu.Lock()
	target.watchers.Remove(p)
	target.reasonMu.Unlock()
}

// Link establishes a bidirectional link. When either side exits with a
// non-Normal reason, the peer receives an exit signal; if no ExitHandler
// recovers it, the peer also exits fatally. Prefer Watch when clean
// shutdown via ShutdownHandler matters more than fate-sharing.
func (p *Pid) Link(peer *Pid) {
	if peer == nil || peer == p {
		return
	}
	p.reasonMu.Lock()
	p.linked.Add(peer)
	p.reasonMu.Unlock()
	peer.reasonMu.Lock()
	peer.linked.Add(p)
	peer.reasonMu.Unlock()
}

// Unlink removes a previously established link in both directions.
func (p *Pid) Unlink(peer *Pid) {
	if peer == nil {
		return
	}
	p.reasonMu.Lock()
	p.linked.Remove(peer)
	p.reasonMu.Unlock()
	peer.reasonMu.Lock()
	peer.linked.Remove(p)
	peer.reasonMu.Unlock()
}

// Terminated is the info-kind notification a monitor receives when a
// watched Pid exits.
type Terminated struct {
	Pid    *Pid
	Reason ExitReason
}

// Exit delivers a structured exit signal to target, tagged as coming from
// from (which may be nil for an externally-originated signal). reason may
// decode as ExitReason or carry a user-defined payload routed through the
// target's exit handlers.
func Exit(ctx context.Context, from *Pid, target *Pid, reason any) error {
	if target == nil || !target.IsAlive() {
		return ErrNotAlive
	}
	if target.mailbox == nil {
		return ErrNotAlive
	}
	return target.mailbox.Enqueue(newExitEnvelope(ctx, from, reason))
}

// markDead finalizes a Pid's terminal state and fans the exit out to
// watchers (Terminated) and linked peers (an exit signal). Called exactly
// once, from the process loop's shutdown path or from panic recovery on
// an unstructured failure.
func (p *Pid) markDead(reason ExitReason) {
	p.reasonMu.Lock()
	if p.reason != nil {
		p.reasonMu.Unlock()
		return
	}
	p.reason = &reason
	watchers := p.watchers.Clone()
	linked := p.linked.Clone()
	sinks := p.sinks
	p.reasonMu.Unlock()

	p.alive.Store(false)
	close(p.died)
	unregisterPid(p)
	p.cancelPending()

	watchers.Each(func(w *Pid) bool {
		deliverInfo(w, p, Terminated{Pid: p, Reason: reason})
		return false
	})
	for _, sink := range sinks {
		select {
		case sink <- Terminated{Pid: p, Reason: reason}:
		default:
		}
	}
	if !reason.IsNormal() {
		linked.Each(func(peer *Pid) bool {
			_ = Exit(context.Background(), p, peer, reason)
			return false
		})
	}
}

// cancelPending fails every call this Pid has in flight as a caller (its
// own pending-reply table) with ErrNotAlive, so a goroutine blocked in
// Call/CallTimeout or Future.Await under this Pid's identity is released
// when this Pid dies. Callers waiting on this Pid as a server are released
// by its died channel instead.
func (p *Pid) cancelPending() {
	p.pending.Range(func(key, value any) bool {
		ch := value.(chan any)
		select {
		case ch <- pendingFailure{err: ErrNotAlive}:
		default:
		}
		p.pending.Delete(key)
		return true
	})
}

type pendingFailure struct{ err error }

// deliverInfo enqueues payload as an info-kind envelope on target's
// mailbox. Used for Terminated notifications and DeadLetter forwarding.
func deliverInfo(target *Pid, from *Pid, payload any) {
	if target == nil || target.mailbox == nil || !target.IsAlive() {
		return
	}
	_ = target.mailbox.Enqueue(newInfoEnvelope(context.Background(), from, payload))
}

// deliverReply resolves the pending call future registered under token on
// the replyTo Pid. When replyTo is an ephemeral ChanReceivePort (the
// CallChan variant), there is no pending-table entry to resolve; the
// reply is instead handed straight to its sink mailbox.
func deliverReply(replyTo *Pid, token ReplyToken, value any) {
	if replyTo == nil {
		return
	}
	if v, ok := replyTo.pending.LoadAndDelete(token); ok {
		ch := v.(chan any)
		select {
		case ch <- value:
		default:
		}
		return
	}
	if replyTo.mailbox != nil {
		_ = replyTo.mailbox.Enqueue(newInfoEnvelope(context.Background(), nil, value))
	}
}
