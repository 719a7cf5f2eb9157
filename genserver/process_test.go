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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("time.Sleep"),
	)
}

// echo request/response types for TestEchoCall.
type echoRequest struct{ text string }
type echoResponse struct{ text string }

func echoDefinition() *ProcessDefinition[int] {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.APIHandlers = append(def.APIHandlers, HandleCall(
		func(state int, req echoRequest, call CallContext) CallResult[int] {
			return Reply(echoResponse{text: req.text}, state+1)
		}, nil))
	return def
}

func TestEchoCall(t *testing.T) {
	pid, err := Spawn(echoDefinition(), nil)
	require.NoError(t, err)

	client := NewClientPid()
	resp, err := CallTimeout(client, pid, echoRequest{text: "hi"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, echoResponse{text: "hi"}, resp)

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

// counter cast/call types for TestCastIncrements.
type incrementMessage struct{ by int }
type getCountRequest struct{}

func counterDefinition() *ProcessDefinition[int] {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.APIHandlers = append(def.APIHandlers,
		HandleCast(func(state int, msg incrementMessage) Action[int] {
			return Continue(state + msg.by)
		}, nil),
		HandleCall(func(state int, _ getCountRequest, call CallContext) CallResult[int] {
			return Reply(state, state)
		}, nil),
	)
	return def
}

func TestCastIncrements(t *testing.T) {
	pid, err := Spawn(counterDefinition(), nil)
	require.NoError(t, err)
	client := NewClientPid()

	for i := 0; i < 5; i++ {
		require.NoError(t, Cast(context.Background(), client, pid, incrementMessage{by: 2}))
	}

	require.Eventually(t, func() bool {
		v, err := CallTimeout(client, pid, getCountRequest{}, time.Second)
		return err == nil && v.(int) == 10
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

func TestTimeoutFiresStopNormal(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOKTimeout(0, 30*time.Millisecond) })
	def.TimeoutHandler = func(state int, elapsed time.Duration) Action[int] {
		return StopNormal(state)
	}
	pid, err := Spawn(def, nil)
	require.NoError(t, err)
	waitDead(t, pid)
	reason, ok := pid.ExitReason()
	require.True(t, ok)
	assert.True(t, reason.IsNormal())
}

type priorityUrgent struct{}
type priorityNormal struct{}

func TestPriorityDrainDispatchesUrgentFirst(t *testing.T) {
	var order []string
	done := make(chan struct{})

	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.APIHandlers = append(def.APIHandlers,
		HandleCast(func(state int, _ priorityUrgent) Action[int] {
			order = append(order, "urgent")
			return Continue(state)
		}, nil),
		HandleCast(func(state int, _ priorityNormal) Action[int] {
			order = append(order, "normal")
			if len(order) == 3 {
				close(done)
			}
			return Continue(state)
		}, nil),
	)

	priorities := []DispatchPriority{
		func(m any) (int, bool) {
			if _, ok := m.(priorityUrgent); ok {
				return 10, true
			}
			return 0, false
		},
	}

	// Pre-fill the mailbox before the loop starts so the drain step sees
	// all three messages in one pass, deterministically: Spawn starts the
	// consumer goroutine only after this point.
	mailbox := NewDefaultMailbox()
	client := NewClientPid()
	require.NoError(t, mailbox.Enqueue(newCastEnvelope(context.Background(), client, priorityNormal{})))
	require.NoError(t, mailbox.Enqueue(newCastEnvelope(context.Background(), client, priorityNormal{})))
	require.NoError(t, mailbox.Enqueue(newCastEnvelope(context.Background(), client, priorityUrgent{})))

	pid, err := Spawn(def, nil, WithMailbox[int](mailbox), WithDispatchPriorities[int](CounterPolicy(8), priorities...))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatch order")
	}
	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)

	assert.Equal(t, "urgent", order[0])
}

func TestUnhandledTerminates(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	pid, err := Spawn(def, nil)
	require.NoError(t, err)

	client := NewClientPid()
	require.NoError(t, Cast(context.Background(), client, pid, "not handled by anything"))
	waitDead(t, pid)

	reason, ok := pid.ExitReason()
	require.True(t, ok)
	assert.False(t, reason.IsNormal())
}

type recoverableFailure struct{ detail string }

func TestExitHandlerRecovers(t *testing.T) {
	recovered := make(chan string, 1)
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.ExitHandlers = append(def.ExitHandlers, HandleExit(
		func(state int, sender *Pid, payload recoverableFailure) Action[int] {
			recovered <- payload.detail
			return Continue(state)
		}))
	pid, err := Spawn(def, nil)
	require.NoError(t, err)

	client := NewClientPid()
	require.NoError(t, Exit(context.Background(), client, pid, recoverableFailure{detail: "transient"}))

	select {
	case detail := <-recovered:
		assert.Equal(t, "transient", detail)
	case <-time.After(time.Second):
		t.Fatal("exit handler never ran")
	}
	assert.True(t, pid.IsAlive())

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

// TestConcurrentCastsAreSerialized drives many concurrent casters against
// one counter process and checks the final count reflects every cast, the
// property a single-consumer-goroutine loop is supposed to guarantee even
// under concurrent producers.
func TestConcurrentCastsAreSerialized(t *testing.T) {
	pid, err := Spawn(counterDefinition(), nil)
	require.NoError(t, err)

	const callers = 20
	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < callers; i++ {
		group.Go(func() error {
			client := NewClientPid()
			return Cast(ctx, client, pid, incrementMessage{by: 1})
		})
	}
	require.NoError(t, group.Wait())

	client := NewClientPid()
	require.Eventually(t, func() bool {
		v, err := CallTimeout(client, pid, getCountRequest{}, time.Second)
		return err == nil && v.(int) == callers
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

// TestHibernateDoesNotFireTimeoutHandler confirms a hibernate deadline
// elapsing resumes an unbounded wait rather than invoking TimeoutHandler.
// TimeoutHandler here stops the process, so if it fired the process would
// be dead by the time the call below is sent.
func TestHibernateDoesNotFireTimeoutHandler(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOKHibernate(0, 20*time.Millisecond) })
	def.TimeoutHandler = func(state int, elapsed time.Duration) Action[int] {
		return StopNormal(state)
	}
	def.APIHandlers = append(def.APIHandlers,
		HandleCall(func(state int, _ getCountRequest, call CallContext) CallResult[int] {
			return Reply(state, state)
		}, nil),
	)
	pid, err := Spawn(def, nil)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.True(t, pid.IsAlive())

	client := NewClientPid()
	v, err := CallTimeout(client, pid, getCountRequest{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

func waitDead(t *testing.T, pid *Pid) {
	t.Helper()
	select {
	case <-pid.died:
	case <-time.After(2 * time.Second):
		t.Fatal("process never exited")
	}
}
