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

import "fmt"

// ExitReasonKind discriminates the closed sum ExitReason occupies:
// Normal | Shutdown | Other(payload).
type ExitReasonKind int

const (
	// ExitNormal marks a clean, expected termination.
	ExitNormal ExitReasonKind = iota
	// ExitShutdown marks a termination requested by a supervisor or caller.
	ExitShutdown
	// ExitOther carries an arbitrary user payload describing the failure.
	ExitOther
)

// String implements fmt.Stringer for diagnostic logging.
func (k ExitReasonKind) String() string {
	switch k {
	case ExitNormal:
		return "normal"
	case ExitShutdown:
		return "shutdown"
	case ExitOther:
		return "other"
	default:
		return "unknown"
	}
}

// ExitReason is the closed sum carried by structured exit signals.
// Construct one with Normal, Shutdown, or Other.
type ExitReason struct {
	kind    ExitReasonKind
	payload any
}

// Normal returns the reason used for a clean, expected stop.
func Normal() ExitReason { return ExitReason{kind: ExitNormal} }

// Shutdown returns the reason used for a supervisor-requested stop.
func Shutdown() ExitReason { return ExitReason{kind: ExitShutdown} }

// Other wraps an arbitrary payload describing a non-normal termination.
func Other(payload any) ExitReason { return ExitReason{kind: ExitOther, payload: payload} }

// Kind reports which branch of the sum this reason occupies.
func (r ExitReason) Kind() ExitReasonKind { return r.kind }

// Payload returns the Other branch's payload, or nil for Normal/Shutdown.
func (r ExitReason) Payload() any { return r.payload }

// IsNormal reports whether this reason is the Normal branch.
func (r ExitReason) IsNormal() bool { return r.kind == ExitNormal }

// Error implements the error interface so an ExitReason can be re-raised
// to linked peers and monitors as a Go error value.
func (r ExitReason) Error() string {
	switch r.kind {
	case ExitNormal:
		return "normal"
	case ExitShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("other: %v", r.payload)
	}
}
