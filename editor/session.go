package editor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/studiocut/cutout-studio-go/composite"
	"github.com/studiocut/cutout-studio-go/config"
	"github.com/studiocut/cutout-studio-go/layer"
	"github.com/studiocut/cutout-studio-go/mask"
)

// State enumerates finite states of an edit session.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateCommitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Mode selects what a brush or lasso writes into the mask.
type Mode int

const (
	ModeAdd Mode = iota
	ModeErase
)

func (m Mode) String() string {
	if m == ModeErase {
		return "erase"
	}
	return "add"
}

// Point is a coordinate in the mask's own pixel space. The caller owns the
// display-to-image mapping, including independent X/Y scale when display and
// image aspect ratios differ.
type Point struct {
	X, Y float64
}

// StateListener is called on each successful state transition.
type StateListener func(prev, next State)

var (
	// ErrLayerLocked means another session is already open on the layer.
	ErrLayerLocked = errors.New("layer locked by another session")
	// ErrNotEditing means an edit operation arrived outside the Editing state.
	ErrNotEditing = errors.New("session is not editing")
)

// Session is a transient interactive mask-editing context over one layer:
// Idle -> Editing -> Committed | Cancelled. It owns its working mask
// exclusively until commit and keeps a bounded history of snapshots for
// undo. Not safe for concurrent use; drive it from a single goroutine.
type Session struct {
	state      State
	target     *layer.Layer
	src        image.Image
	mask       *mask.Alpha
	origin     *mask.Alpha
	hist       *history
	compositor *composite.Compositor
	preview    *image.NRGBA
	// previewShared marks the current preview as handed out via Preview();
	// shared buffers are never recycled back into the cutout pool.
	previewShared bool
	logger        *slog.Logger
	listeners     []StateListener
}

// NewSession prepares a session over the given layer. The working mask is a
// deep copy of m (the layer's committed mask, or a refiner result for a
// fresh subject); the caller's copy is never touched. Call Begin to start
// editing.
func NewSession(target *layer.Layer, src image.Image, m *mask.Alpha, comp *composite.Compositor, cfg *config.Config, logger *slog.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Session{
		state:      StateIdle,
		target:     target,
		src:        src,
		mask:       m.Clone(),
		origin:     m.Clone(),
		hist:       newHistory(cfg.UndoDepth),
		compositor: comp,
		logger:     logger,
	}
}

// AddListener registers a callback invoked after every state transition.
func (s *Session) AddListener(l StateListener) {
	s.listeners = append(s.listeners, l)
}

// State returns the current session state.
func (s *Session) State() State { return s.state }

// Mask returns the session's working mask. The session retains ownership;
// callers must treat it as read-only.
func (s *Session) Mask() *mask.Alpha { return s.mask }

// Preview returns the latest successfully composited cutout, or nil before
// the first recomposition succeeds. The returned raster stays valid and
// unchanged across later edits; each recomposition swaps in a fresh buffer
// rather than mutating one a caller may still display.
func (s *Session) Preview() *image.NRGBA {
	if s.preview != nil {
		s.previewShared = true
	}
	return s.preview
}

// Begin transitions Idle -> Editing, locks the target layer against a second
// concurrent session and pushes the starting mask onto the undo stack.
func (s *Session) Begin() error {
	if s.state != StateIdle {
		return fmt.Errorf("%w: state %s", ErrNotEditing, s.state)
	}
	if s.target != nil && s.target.Locked {
		return ErrLayerLocked
	}
	if s.target != nil {
		s.target.Locked = true
	}
	s.hist.push(s.mask)
	s.transition(StateEditing)
	// Best effort: a failed initial preview is reported by the first edit.
	if out, err := s.compositor.Cutout(s.mask, s.src); err == nil {
		s.preview = out
	}
	return nil
}

// PaintStroke rasterizes an antialiased filled circle at center into the
// mask, writing full opacity (ModeAdd) or full transparency (ModeErase),
// then synchronously recomposites the preview. A failed recomposition keeps
// the previous valid preview and is returned as a non-fatal error; the mask
// edit itself is never lost.
func (s *Session) PaintStroke(center Point, brushRadius float64, mode Mode) error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: state %s", ErrNotEditing, s.state)
	}
	s.hist.push(s.mask)
	paintCircle(s.mask, center, brushRadius, modeValue(mode))
	return s.recomposite()
}

// LassoFill fills the closed polygon with full transparency (ModeErase) or
// full opacity (ModeAdd). Fewer than 3 points is a no-op, not an error.
func (s *Session) LassoFill(points []Point, mode Mode) error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: state %s", ErrNotEditing, s.state)
	}
	if len(points) < 3 {
		return nil
	}
	s.hist.push(s.mask)
	fillPolygon(s.mask, points, modeValue(mode))
	return s.recomposite()
}

// Undo restores the most recent history snapshot and recomposites. With an
// empty history it is a no-op; it reports whether a snapshot was restored.
// Only the most recent capacity states are recoverable.
func (s *Session) Undo() (bool, error) {
	if s.state != StateEditing {
		return false, fmt.Errorf("%w: state %s", ErrNotEditing, s.state)
	}
	snap := s.hist.pop()
	if snap == nil {
		return false, nil
	}
	s.mask = snap
	return true, s.recomposite()
}

// Commit writes the final mask and cutout into the target layer and ends the
// session. If the final recomposition fails the session stays open so the
// caller can retry or cancel.
func (s *Session) Commit() error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: state %s", ErrNotEditing, s.state)
	}
	out, err := s.compositor.ApplyExternalMask(s.mask, s.src)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("commit recomposition failed", "error", err)
		}
		return err
	}
	s.preview = out
	// The layer owns this buffer now; it must never return to the pool.
	s.previewShared = true
	if s.target != nil {
		s.target.SetCutout(s.mask.Clone(), out)
		s.target.Locked = false
	}
	s.transition(StateCommitted)
	return nil
}

// Cancel discards all edits since session start and ends the session. The
// target layer is left exactly as it was.
func (s *Session) Cancel() error {
	if s.state != StateEditing {
		return fmt.Errorf("%w: state %s", ErrNotEditing, s.state)
	}
	s.mask = s.origin.Clone()
	if s.target != nil {
		s.target.Locked = false
	}
	s.transition(StateCancelled)
	return nil
}

func (s *Session) recomposite() error {
	out, err := s.compositor.ApplyExternalMask(s.mask, s.src)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("preview recomposition failed, keeping previous preview", "error", err)
		}
		return err
	}
	if s.preview != nil && !s.previewShared {
		composite.RecycleCutout(s.preview)
	}
	s.preview = out
	s.previewShared = false
	return nil
}

func (s *Session) transition(next State) {
	prev := s.state
	if prev == next {
		return
	}
	s.state = next
	if s.logger != nil {
		s.logger.Debug("edit session transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range s.listeners {
		l(prev, next)
	}
}

func modeValue(m Mode) uint8 {
	if m == ModeErase {
		return 0
	}
	return 255
}
