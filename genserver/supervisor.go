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
	"time"

	"github.com/flowchartsman/retry"
	"github.com/wewela/distributed-process-platform/log"
	"go.uber.org/multierr"
)

// Directive is a supervisor's response to a child's non-normal exit,
// grounded on the teacher's actor/supervisor.go Directive type. An
// escalation function maps the exit's payload to one of the three.
type Directive int

const (
	// StopDirective lets the child stay dead; it is not respawned.
	StopDirective Directive = iota
	// ResumeDirective discards the failure and leaves the child dead but
	// uncounted against MaxRestarts, as if the exit never happened.
	ResumeDirective
	// RestartDirective respawns the child from its original spec.
	RestartDirective
)

// Strategy decides how a supervisor reacts to one child's exit.
type Strategy int

const (
	// OneForOneStrategy restarts only the child that exited.
	OneForOneStrategy Strategy = iota
	// OneForAllStrategy stops and restarts every supervised child when any
	// one of them exits non-normally.
	OneForAllStrategy
)

// ChildSpec describes how to (re)spawn one supervised process. Spawn must
// be idempotent: a supervisor may call it many times across restarts.
//
// Escalate, if set, overrides the supervisor's own Escalate for this
// child only.
type ChildSpec struct {
	Name     string
	Spawn    func() (*Pid, error)
	Escalate func(err error) Directive
}

// SupervisorOptions configures restart backoff and the escalation ceiling,
// grounded on the teacher's retry usage in actor_system.go and pid.go
// (github.com/flowchartsman/retry, already a direct dependency for that
// reason).
//
// Escalate decides the child's fate from the error carried by its exit
// reason; a nil Escalate defaults to always restarting, the prior
// unconditional behavior.
type SupervisorOptions struct {
	Strategy     Strategy
	MaxRestarts  int
	RestartDelay time.Duration
	Logger       log.Logger
	Escalate     func(err error) Directive
}

// Supervisor watches a fixed set of children and reacts according to
// Strategy and Escalate when one exits non-normally.
type Supervisor struct {
	opts     SupervisorOptions
	watcher  *Pid
	mu       sync.Mutex
	children map[string]*supervisedChild
	notify   chan Terminated
	stopped  chan struct{}
}

type supervisedChild struct {
	spec     ChildSpec
	pid      *Pid
	restarts int
}

// NewSupervisor starts supervising specs according to opts. Every child is
// spawned once up front; a MaxRestarts of 0 means unlimited restarts.
func NewSupervisor(opts SupervisorOptions, specs ...ChildSpec) (*Supervisor, error) {
	if opts.Logger == nil {
		opts.Logger = log.DiscardLogger
	}
	s := &Supervisor{
		opts:     opts,
		watcher:  NewClientPid(),
		children: make(map[string]*supervisedChild, len(specs)),
		notify:   make(chan Terminated, len(specs)+1),
		stopped:  make(chan struct{}),
	}
	var errs error
	for _, spec := range specs {
		pid, err := spec.Spawn()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		s.children[spec.Name] = &supervisedChild{spec: spec, pid: pid}
		s.watcher.watchInto(pid, s.notify)
	}
	if errs != nil {
		return nil, errs
	}
	go s.run()
	return s, nil
}

// watchInto is Watch, but fans Terminated notifications out to a channel
// instead of the watcher's own mailbox, letting the supervisor's private
// goroutine consume them directly without running a managed process loop
// of its own.
func (p *Pid) watchInto(target *Pid, out chan Terminated) {
	target.reasonMu.Lock()
	defer target.reasonMu.Unlock()
	target.watchers.Add(p)
	target.sinks = append(target.sinks, out)
}

func (s *Supervisor) run() {
	for {
		select {
		case t := <-s.notify:
			s.handleExit(t)
		case <-s.stopped:
			return
		}
	}
}

func (s *Supervisor) handleExit(t Terminated) {
	if t.Reason.IsNormal() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	for n, c := range s.children {
		if c.pid == t.Pid {
			name = n
			break
		}
	}
	if name == "" {
		return
	}

	directive := s.escalate(s.children[name], t.Reason)
	switch directive {
	case StopDirective:
		s.opts.Logger.Infof("child %s stopped, not restarting", name)
		return
	case ResumeDirective:
		s.opts.Logger.Infof("child %s resumed, exit discarded", name)
		return
	}

	switch s.opts.Strategy {
	case OneForAllStrategy:
		for n, c := range s.children {
			if c.pid.IsAlive() {
				_ = Exit(context.Background(), s.watcher, c.pid, Shutdown())
			}
			s.restartChild(n, c)
		}
	default: // OneForOneStrategy
		s.restartChild(name, s.children[name])
	}
}

// escalate resolves the Directive for a child's exit reason: the child's
// own Escalate if it set one, else the supervisor's, else RestartDirective.
func (s *Supervisor) escalate(c *supervisedChild, reason ExitReason) Directive {
	escalate := s.opts.Escalate
	if c.spec.Escalate != nil {
		escalate = c.spec.Escalate
	}
	if escalate == nil {
		return RestartDirective
	}
	err, _ := reason.Payload().(error)
	if err == nil {
		err = reason
	}
	return escalate(err)
}

func (s *Supervisor) restartChild(name string, c *supervisedChild) {
	if s.opts.MaxRestarts > 0 && c.restarts >= s.opts.MaxRestarts {
		s.opts.Logger.Errorf("child %s exceeded max restarts (%d), giving up", name, c.restarts)
		return
	}
	c.restarts++

	retrier := retry.NewRetrier(3, s.opts.RestartDelay, s.opts.RestartDelay)
	err := retrier.Run(func() error {
		pid, err := c.spec.Spawn()
		if err != nil {
			return err
		}
		c.pid = pid
		s.watcher.watchInto(pid, s.notify)
		return nil
	})
	if err != nil {
		s.opts.Logger.Errorf("failed to restart child %s: %v", name, err)
	}
}

// Child returns the current Pid for a supervised name, or nil if unknown.
func (s *Supervisor) Child(name string) *Pid {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.children[name]; ok {
		return c.pid
	}
	return nil
}

// Stop terminates every still-alive supervised child with Shutdown and
// stops the supervisor's own watch loop. A child already dead (e.g. left
// that way by a StopDirective or ResumeDirective) is not an error.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs error
	for _, c := range s.children {
		if !c.pid.IsAlive() {
			continue
		}
		if err := Exit(ctx, s.watcher, c.pid, Shutdown()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	close(s.stopped)
	return errs
}
