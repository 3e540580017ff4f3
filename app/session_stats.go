package app

import (
	"time"
)

// SessionStats tracks the current edit-session duration and the accumulated
// editing time across sessions. It is decoupled from the editor; callers
// poll OnTick with the editing state and read Values(). The zero value is
// ready to use.
type SessionStats struct {
	active              bool
	editStart           time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
}

// NewSessionStats returns a pointer to a ready-to-use SessionStats.
func NewSessionStats() *SessionStats { return &SessionStats{} }

// OnTick updates the stats using the current editing state and timestamp.
// Call periodically, or on session state transitions.
func (m *SessionStats) OnTick(editing bool, now time.Time) {
	if m == nil {
		return
	}
	if editing {
		if !m.active { // transition off -> on
			m.active = true
			m.editStart = now
			m.lastSessionDuration = 0
		}
		m.lastSessionDuration = now.Sub(m.editStart)
	} else if m.active { // transition on -> off
		m.lastSessionDuration = now.Sub(m.editStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// Values returns the current session duration and the total accumulated
// editing time. The total includes the ongoing session when active.
func (m *SessionStats) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}
