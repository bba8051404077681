// File: internal/navigator/signal.go
package navigator

import "sync/atomic"

// LeaveSignal is the one deliberate concurrency boundary in the agent: an
// externally owned task (typically the conversational assistant) requests
// leaving the call by setting it, and the in-call monitor polls it once per
// iteration. Set-once, never cleared.
type LeaveSignal struct {
	requested atomic.Bool
}

func NewLeaveSignal() *LeaveSignal { return &LeaveSignal{} }

// Request asks the agent to leave the call at the next poll.
func (s *LeaveSignal) Request() { s.requested.Store(true) }

// Requested reports whether leaving was asked for.
func (s *LeaveSignal) Requested() bool { return s.requested.Load() }
