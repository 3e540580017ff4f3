package editor

import (
	"github.com/studiocut/cutout-studio-go/mask"
)

// history is a bounded LIFO stack of mask snapshots. When capacity is
// exceeded the oldest entry is evicted, so only the most recent capacity
// states remain recoverable.
type history struct {
	entries  []*mask.Alpha
	capacity int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = 1
	}
	return &history{capacity: capacity}
}

// push stores a deep copy of m as the newest snapshot, evicting the oldest
// entry when full.
func (h *history) push(m *mask.Alpha) {
	if len(h.entries) >= h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, m.Clone())
}

// pop removes and returns the newest snapshot, or nil when empty.
func (h *history) pop() *mask.Alpha {
	if len(h.entries) == 0 {
		return nil
	}
	m := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return m
}

func (h *history) len() int { return len(h.entries) }
