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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowRequest struct{}
type slowResponse struct{}

func slowDefinition(delay time.Duration) *ProcessDefinition[int] {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.APIHandlers = append(def.APIHandlers, HandleCall(
		func(state int, _ slowRequest, call CallContext) CallResult[int] {
			time.Sleep(delay)
			return Reply(slowResponse{}, state)
		}, nil))
	return def
}

func TestCallTimeoutExpires(t *testing.T) {
	pid, err := Spawn(slowDefinition(200*time.Millisecond), nil)
	require.NoError(t, err)
	client := NewClientPid()

	_, err = CallTimeout(client, pid, slowRequest{}, 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCallTimeout))

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

func TestCallAsTypeMismatch(t *testing.T) {
	pid, err := Spawn(echoDefinition(), nil)
	require.NoError(t, err)
	client := NewClientPid()

	_, err = CallAs[int](context.Background(), client, pid, echoRequest{text: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

func TestCallChanDeliversToEphemeralPort(t *testing.T) {
	pid, err := Spawn(echoDefinition(), nil)
	require.NoError(t, err)
	client := NewClientPid()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := CallChan[echoResponse](ctx, client, pid, echoRequest{text: "chan"})
	require.NoError(t, err)
	assert.Equal(t, echoResponse{text: "chan"}, resp)

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}

func TestCallToDeadProcessFails(t *testing.T) {
	pid, err := Spawn(echoDefinition(), nil)
	require.NoError(t, err)
	client := NewClientPid()

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)

	_, err = CallTimeout(client, pid, echoRequest{text: "late"}, 100*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAlive))
}

func TestAsyncCallFuture(t *testing.T) {
	pid, err := Spawn(echoDefinition(), nil)
	require.NoError(t, err)
	client := NewClientPid()

	future, err := AsyncCall[echoResponse](client, pid, echoRequest{text: "async"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := future.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, echoResponse{text: "async"}, resp)

	require.NoError(t, Exit(context.Background(), client, pid, Normal()))
	waitDead(t, pid)
}
