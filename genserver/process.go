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
	"fmt"
	"time"

	"github.com/wewela/distributed-process-platform/log"
)

// spawnConfig collects the options a SpawnOption mutates before a process
// is started.
type spawnConfig[S any] struct {
	mailbox     BlockingMailbox
	priorities  []DispatchPriority
	recvTimeout RecvTimeoutPolicy
	usePriority bool
	logger      log.Logger
}

// SpawnOption configures a process at Spawn time.
type SpawnOption[S any] func(*spawnConfig[S])

// WithMailbox overrides the default unbounded lock-free mailbox.
func WithMailbox[S any](mb BlockingMailbox) SpawnOption[S] {
	return func(c *spawnConfig[S]) { c.mailbox = mb }
}

// WithLogger attaches the logger the loop uses for lifecycle and panic
// diagnostics. Defaults to log.DiscardLogger.
func WithLogger[S any](l log.Logger) SpawnOption[S] {
	return func(c *spawnConfig[S]) { c.logger = l }
}

// WithDispatchPriorities makes the spawned process a prioritised process:
// messages are classified by priorities in order and drained according to
// policy before the highest-priority one is handed to dispatch. Incompatible
// with a ProcessDefinition carrying a control channel.
func WithDispatchPriorities[S any](policy RecvTimeoutPolicy, priorities ...DispatchPriority) SpawnOption[S] {
	return func(c *spawnConfig[S]) {
		c.usePriority = true
		c.recvTimeout = policy
		c.priorities = priorities
	}
}

// Spawn starts a new managed process from def and returns its Pid. args is
// passed through to def.Init unchanged.
func Spawn[S any](def *ProcessDefinition[S], args any, opts ...SpawnOption[S]) (*Pid, error) {
	cfg := &spawnConfig[S]{mailbox: NewDefaultMailbox(), logger: log.DiscardLogger}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.usePriority && def.Control != nil {
		return nil, ErrControlChannelIncompatibleWithPriorities
	}

	init := def.Init(args)
	switch init.kind {
	case initKindIgnore:
		return nil, ErrInitStop
	case initKindStop:
		return nil, fmt.Errorf("init stop: %w", init.reason)
	}

	pid := newPid(cfg.mailbox)
	loop := &processLoop[S]{
		def:         def,
		pid:         pid,
		state:       init.state,
		priorities:  cfg.priorities,
		recvTimeout: cfg.recvTimeout,
		usePriority: cfg.usePriority,
		logger:      cfg.logger,
		bucket:      newPriorityBucketQueue(),
	}
	if init.timeout > 0 {
		loop.armTimeout(init.timeout, init.hibernate)
	}
	go loop.run()
	return pid, nil
}

// processLoop owns the single consumer goroutine that drives a process
// through receive-dispatch-apply, handling the plain, prioritised, and
// control-channel variants from one shared step function.
type processLoop[S any] struct {
	def   *ProcessDefinition[S]
	pid   *Pid
	state S

	priorities  []DispatchPriority
	recvTimeout RecvTimeoutPolicy
	usePriority bool
	bucket      *priorityBucketQueue

	hasDeadline     bool
	deadline        time.Time
	timeoutDuration time.Duration
	hibernating     bool

	logger log.Logger
}

func (l *processLoop[S]) run() {
	var finalReason ExitReason
	defer func() {
		if r := recover(); r != nil {
			finalReason = Other(NewPanicError(r))
			l.logger.Errorf("process %s panicked: %v", l.pid.id, r)
		}
		l.runShutdown(finalReason)
		l.pid.markDead(finalReason)
	}()

	for {
		action, outcome, stop, reason := l.step()
		if stop {
			finalReason = reason
			return
		}
		_ = action
		_ = outcome
	}
}

// runShutdown invokes the process definition's ShutdownHandler, if any,
// guarding against a panicking handler.
func (l *processLoop[S]) runShutdown(reason ExitReason) {
	if l.def.ShutdownHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("shutdown handler for process %s panicked: %v (%v)", l.pid.id, r, ErrShutdownHandlerPanicked)
		}
	}()
	l.def.ShutdownHandler(l.state, reason)
}

// step runs exactly one receive-dispatch-apply cycle and reports whether
// the process should stop.
func (l *processLoop[S]) step() (Action[S], dispatchOutcome, bool, ExitReason) {
	if l.def.Control != nil {
		if msg, ok := l.def.Control.recv(); ok {
			action := l.def.Control.apply(l.state, msg)
			return l.apply(action)
		}
	}

	env, ok := l.next()
	if !ok {
		action := l.fireTimeout()
		return l.apply(action)
	}

	var replied bool
	reply := func(value any) {
		replied = true
		if env.kind == envCall {
			deliverReply(env.replyTo, env.replyToken, value)
		}
	}

	action, outcome := l.def.dispatch(l.state, env, reply)
	switch outcome {
	case dispatchHandled:
		_ = replied
		return l.apply(action)
	case dispatchExitUnmatched:
		if reason, ok := env.exitPayload.(ExitReason); ok {
			return l.apply(Stop(l.state, reason))
		}
		return l.apply(Stop(l.state, Other(fmt.Errorf("unmatched exit signal: %v", env.exitPayload))))
	default:
		return l.applyUnhandled(env)
	}
}

// next returns the next envelope to process, honoring the prioritised
// drain-then-pop cycle when the process is prioritised, or a plain
// blocking wait bounded by any armed timeout otherwise.
func (l *processLoop[S]) next() (*envelope, bool) {
	if l.usePriority {
		return l.nextPrioritised()
	}
	return l.pid.mailbox.Wait(l.waitDuration())
}

func (l *processLoop[S]) nextPrioritised() (*envelope, bool) {
	if env, ok := l.bucket.popHighest(); ok {
		return env, true
	}
	env, ok := l.pid.mailbox.Wait(l.waitDuration())
	if !ok {
		return nil, false
	}
	l.bucket.push(classify(l.priorities, env.Message()), env)
	l.drainAdditional()
	return l.bucket.popHighest()
}

// drainAdditional pulls further already-queued messages into the bucket
// before the loop pops, bounded by the configured CounterPolicy/TimerPolicy,
// so a burst of low-priority arrivals cannot starve a high-priority message
// sitting right behind them in the mailbox. The message nextPrioritised
// already took counts toward a CounterPolicy's n.
func (l *processLoop[S]) drainAdditional() {
	switch l.recvTimeout.kind {
	case policyCounter:
		for i := 1; i < l.recvTimeout.count; i++ {
			env := l.pid.mailbox.Dequeue()
			if env == nil {
				return
			}
			l.bucket.push(classify(l.priorities, env.Message()), env)
		}
	case policyTimer:
		deadline := time.Now().Add(l.recvTimeout.dur)
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return
			}
			env := l.pid.mailbox.Dequeue()
			if env == nil {
				return
			}
			l.bucket.push(classify(l.priorities, env.Message()), env)
		}
	}
}

func (l *processLoop[S]) waitDuration() time.Duration {
	if !l.hasDeadline {
		return -1 // negative means "block indefinitely", per the BlockingMailbox contract
	}
	if remaining := time.Until(l.deadline); remaining > 0 {
		return remaining
	}
	return 0 // deadline already elapsed: poll once, then fireTimeout fires immediately
}

// fireTimeout resolves an elapsed deadline. A hibernate deadline elapsing
// simply resumes an unbounded wait — it never invokes TimeoutHandler, which
// exists only for the distinct TimeoutAfter directive.
func (l *processLoop[S]) fireTimeout() Action[S] {
	l.hasDeadline = false
	if l.hibernating {
		l.hibernating = false
		return Continue(l.state)
	}
	elapsed := l.timeoutDuration
	if l.def.TimeoutHandler == nil {
		return Continue(l.state)
	}
	return l.def.TimeoutHandler(l.state, elapsed)
}

func (l *processLoop[S]) applyUnhandled(env *envelope) (Action[S], dispatchOutcome, bool, ExitReason) {
	switch l.def.UnhandledPolicy.kind {
	case unhandledDrop:
		return l.apply(Continue(l.state))
	case unhandledDeadLetter:
		deliverInfo(l.def.UnhandledPolicy.deadLetter, l.pid, env.Message())
		return l.apply(Continue(l.state))
	default: // unhandledTerminate
		return l.apply(Stop(l.state, Other(NewErrUnhandled(dynamicTypeName(env.Message())))))
	}
}

// apply commits an Action's state and timing directives, returning
// whether the loop should stop.
func (l *processLoop[S]) apply(action Action[S]) (Action[S], dispatchOutcome, bool, ExitReason) {
	l.state = action.state
	switch action.kind {
	case actionContinue:
		l.hasDeadline = false
		l.hibernating = false
	case actionTimeoutAfter:
		l.armTimeout(action.duration, false)
	case actionHibernate:
		l.armTimeout(action.duration, true)
		l.releasePooledBuffers()
	case actionStop:
		return action, dispatchHandled, true, action.reason
	}
	return action, dispatchHandled, false, ExitReason{}
}

func (l *processLoop[S]) armTimeout(d time.Duration, hibernate bool) {
	l.hasDeadline = true
	l.deadline = time.Now().Add(d)
	l.timeoutDuration = d
	l.hibernating = hibernate
}

// releasePooledBuffers drops the prioritised bucket's backing slices when
// hibernating by replacing it with a fresh empty queue. A bucket that
// still holds messages is kept, so no queued message is lost.
func (l *processLoop[S]) releasePooledBuffers() {
	if l.usePriority && l.bucket.isEmpty() {
		l.bucket = newPriorityBucketQueue()
	}
}
