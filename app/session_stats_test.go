package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionStats_TracksActiveSession(t *testing.T) {
	s := NewSessionStats()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	session, total := s.Values()
	require.Zero(t, session)
	require.Zero(t, total)

	s.OnTick(true, base)
	s.OnTick(true, base.Add(3*time.Second))
	session, total = s.Values()
	require.Equal(t, 3*time.Second, session)
	require.Equal(t, 3*time.Second, total)
}

func TestSessionStats_AccumulatesAcrossSessions(t *testing.T) {
	s := NewSessionStats()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	s.OnTick(true, base)
	s.OnTick(false, base.Add(2*time.Second))
	session, total := s.Values()
	require.Equal(t, 2*time.Second, session)
	require.Equal(t, 2*time.Second, total)

	// Second session: the session value resets, the total carries over.
	s.OnTick(true, base.Add(10*time.Second))
	s.OnTick(true, base.Add(11*time.Second))
	session, total = s.Values()
	require.Equal(t, time.Second, session)
	require.Equal(t, 3*time.Second, total)

	s.OnTick(false, base.Add(14*time.Second))
	session, total = s.Values()
	require.Equal(t, 4*time.Second, session)
	require.Equal(t, 6*time.Second, total)
}

func TestSessionStats_IdleTicksAreNoOps(t *testing.T) {
	s := NewSessionStats()
	base := time.Now()
	s.OnTick(false, base)
	s.OnTick(false, base.Add(time.Minute))
	session, total := s.Values()
	require.Zero(t, session)
	require.Zero(t, total)
}

func TestSessionStats_NilReceiver(t *testing.T) {
	var s *SessionStats
	s.OnTick(true, time.Now())
	session, total := s.Values()
	require.Zero(t, session)
	require.Zero(t, total)
}
