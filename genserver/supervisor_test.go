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

type crashCommand struct{}

func crashableDefinition() *ProcessDefinition[int] {
	def := NewProcessDefinition(func(any) InitResult[int] { return InitOK(0) })
	def.APIHandlers = append(def.APIHandlers, HandleCast(
		func(state int, _ crashCommand) Action[int] {
			return Stop(state, Other("simulated crash"))
		}, nil))
	return def
}

func TestSupervisorRestartsOneForOne(t *testing.T) {
	spawnCount := 0
	spec := ChildSpec{
		Name: "worker",
		Spawn: func() (*Pid, error) {
			spawnCount++
			return Spawn(crashableDefinition(), nil)
		},
	}

	sup, err := NewSupervisor(SupervisorOptions{
		Strategy:     OneForOneStrategy,
		MaxRestarts:  3,
		RestartDelay: 5 * time.Millisecond,
	}, spec)
	require.NoError(t, err)
	require.Equal(t, 1, spawnCount)

	client := NewClientPid()
	require.NoError(t, Cast(context.Background(), client, sup.Child("worker"), crashCommand{}))

	require.Eventually(t, func() bool {
		return spawnCount >= 2
	}, time.Second, 10*time.Millisecond)

	assert.NotNil(t, sup.Child("worker"))
	require.NoError(t, sup.Stop(context.Background()))
}

func TestSupervisorStopDirectiveLeavesChildDead(t *testing.T) {
	spawnCount := 0
	spec := ChildSpec{
		Name: "worker",
		Spawn: func() (*Pid, error) {
			spawnCount++
			return Spawn(crashableDefinition(), nil)
		},
		Escalate: func(err error) Directive { return StopDirective },
	}

	sup, err := NewSupervisor(SupervisorOptions{
		Strategy:     OneForOneStrategy,
		RestartDelay: 5 * time.Millisecond,
	}, spec)
	require.NoError(t, err)
	require.Equal(t, 1, spawnCount)

	client := NewClientPid()
	require.NoError(t, Cast(context.Background(), client, sup.Child("worker"), crashCommand{}))

	require.Eventually(t, func() bool {
		pid := sup.Child("worker")
		return pid != nil && !pid.IsAlive()
	}, time.Second, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, spawnCount, "StopDirective must not trigger a respawn")

	require.NoError(t, sup.Stop(context.Background()))
}

func TestSupervisorResumeDirectiveDiscardsExit(t *testing.T) {
	spawnCount := 0
	spec := ChildSpec{
		Name: "worker",
		Spawn: func() (*Pid, error) {
			spawnCount++
			return Spawn(crashableDefinition(), nil)
		},
		Escalate: func(err error) Directive { return ResumeDirective },
	}

	sup, err := NewSupervisor(SupervisorOptions{
		Strategy:     OneForOneStrategy,
		RestartDelay: 5 * time.Millisecond,
	}, spec)
	require.NoError(t, err)
	require.Equal(t, 1, spawnCount)

	deadPid := sup.Child("worker")
	client := NewClientPid()
	require.NoError(t, Cast(context.Background(), client, deadPid, crashCommand{}))
	waitDead(t, deadPid)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, spawnCount, "ResumeDirective must not trigger a respawn")
	assert.Equal(t, deadPid, sup.Child("worker"), "ResumeDirective leaves the dead pid on record")

	require.NoError(t, sup.Stop(context.Background()))
}

func TestSupervisorGivesUpAfterMaxRestarts(t *testing.T) {
	spawnCount := 0
	spec := ChildSpec{
		Name: "flaky",
		Spawn: func() (*Pid, error) {
			spawnCount++
			return Spawn(crashableDefinition(), nil)
		},
	}

	sup, err := NewSupervisor(SupervisorOptions{
		Strategy:     OneForOneStrategy,
		MaxRestarts:  2,
		RestartDelay: 2 * time.Millisecond,
	}, spec)
	require.NoError(t, err)

	client := NewClientPid()
	for i := 0; i < 5; i++ {
		if pid := sup.Child("flaky"); pid != nil && pid.IsAlive() {
			_ = Cast(context.Background(), client, pid, crashCommand{})
		}
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return spawnCount >= 3 // initial spawn + 2 allowed restarts
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, sup.Stop(context.Background()))
}
