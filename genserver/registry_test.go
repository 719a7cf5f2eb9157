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
)

func TestDispatchHandledCast(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.APIHandlers = append(def.APIHandlers, HandleCast(
		func(state int, msg incrementMessage) Action[int] { return Continue(state + msg.by) }, nil))

	env := newCastEnvelope(context.Background(), nil, incrementMessage{by: 3})
	action, outcome := def.dispatch(0, env, func(any) {})
	assert.Equal(t, dispatchHandled, outcome)
	assert.Equal(t, 3, action.State())
}

func TestDispatchUnhandledInfo(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	env := newInfoEnvelope(context.Background(), nil, "unrouted")
	_, outcome := def.dispatch(0, env, func(any) {})
	assert.Equal(t, dispatchUnhandled, outcome)
}

func TestDispatchExitUnmatched(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	env := newExitEnvelope(context.Background(), nil, "some unrecognized failure")
	_, outcome := def.dispatch(0, env, func(any) {})
	assert.Equal(t, dispatchExitUnmatched, outcome)
}

func TestDeadLetterPolicyForwardsUnmatched(t *testing.T) {
	received := make(chan any, 1)
	sinkDef := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	sinkDef.InfoHandlers = append(sinkDef.InfoHandlers, HandleInfo(
		func(state int, msg string) Action[int] {
			received <- msg
			return Continue(state)
		}, nil))
	deadLetter, err := Spawn(sinkDef, nil)
	require.NoError(t, err)

	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.UnhandledPolicy = DeadLetterPolicy(deadLetter)
	pid, err := Spawn(def, nil)
	require.NoError(t, err)

	client := NewClientPid()
	require.NoError(t, Cast(context.Background(), client, pid, "forward me"))

	select {
	case msg := <-received:
		assert.Equal(t, "forward me", msg)
	case <-time.After(time.Second):
		t.Fatal("dead letter was never forwarded")
	}
	assert.True(t, pid.IsAlive())

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	require.NoError(t, Exit(context.Background(), client, deadLetter, Normal()))
}

func TestDropPolicyDiscardsUnmatched(t *testing.T) {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.UnhandledPolicy = DropPolicy()
	pid, err := Spawn(def, nil)
	require.NoError(t, err)

	client := NewClientPid()
	require.NoError(t, Cast(context.Background(), client, pid, "ignored"))

	require.Never(t, func() bool { return !pid.IsAlive() }, 200*time.Millisecond, 20*time.Millisecond)
	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}
