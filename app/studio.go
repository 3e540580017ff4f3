package app

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/studiocut/cutout-studio-go/composite"
	"github.com/studiocut/cutout-studio-go/config"
	"github.com/studiocut/cutout-studio-go/debug"
	"github.com/studiocut/cutout-studio-go/editor"
	"github.com/studiocut/cutout-studio-go/layer"
	"github.com/studiocut/cutout-studio-go/mask"
	"github.com/studiocut/cutout-studio-go/palette"
	"github.com/studiocut/cutout-studio-go/render"
)

// ErrUnknownLayer means the requested layer id is not in the composition.
var ErrUnknownLayer = errors.New("unknown layer")

// Studio assembles the pipeline services around one composition: refining
// raw masks into cutout subject layers, opening edit sessions, and rendering
// previews and exports. Side effects on construction are limited to starting
// the debug loggers when configured.
type Studio struct {
	Config      *config.Config
	Logger      *slog.Logger
	Refiner     *mask.Refiner
	Compositor  *composite.Compositor
	Renderer    *render.Renderer
	Composition *layer.Composition
	Stats       *SessionStats

	sources map[string]image.Image
}

// NewStudio constructs all pipeline components for a canvas of the given size.
func NewStudio(cfg *config.Config, logger *slog.Logger, canvasW, canvasH int) *Studio {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	_ = cfg.Validate()
	s := &Studio{
		Config:      cfg,
		Logger:      logger,
		Refiner:     mask.NewRefiner(cfg, logger),
		Compositor:  composite.NewCompositor(cfg, logger),
		Renderer:    render.NewRenderer(cfg, logger),
		Composition: layer.NewComposition(canvasW, canvasH),
		Stats:       NewSessionStats(),
		sources:     make(map[string]image.Image),
	}
	if cfg.Debug && logger != nil {
		debug.StartMemLogger(2*time.Second, logger)
		debug.StartGoroutineLogger(time.Second, logger)
	}
	return s
}

// ImportSubject refines the raw probability mask against src, composites the
// cutout, and appends a subject layer with an auto-fit scale. The heavy
// stages honor ctx so callers can run the import as a cancellable background
// task; on cancellation the composition is left untouched.
func (s *Studio) ImportSubject(ctx context.Context, src image.Image, raw mask.Raw) (*layer.Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	refined, err := s.Refiner.Refine(raw, w, h)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cutout, err := s.Compositor.Cutout(refined, src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := layer.New(layer.KindSubject, cutout)
	l.Mask = refined
	cw, ch := s.Composition.CanvasSize()
	l.Transform.Scale = layer.FitScale(w, h, cw, ch, s.Config)
	s.Composition.Append(l)
	s.sources[l.ID] = src

	if s.Logger != nil {
		s.Logger.Info("subject imported",
			"layer", l.ID, "w", w, "h", h, "scale", l.Transform.Scale)
	}
	return l, nil
}

// BeginEdit opens an interactive mask-editing session over the given subject
// layer. Only one session may be open per layer at a time.
func (s *Studio) BeginEdit(layerID string) (*editor.Session, error) {
	l := s.Composition.Layer(layerID)
	if l == nil {
		return nil, ErrUnknownLayer
	}
	src, ok := s.sources[layerID]
	if !ok {
		src = l.Image
	}
	m := l.Mask
	if m == nil {
		// No committed mask yet: start fully opaque.
		m = mask.Uniform(src.Bounds().Dx(), src.Bounds().Dy(), 255)
	}
	sess := editor.NewSession(l, src, m, s.Compositor, s.Config, s.Logger)
	// Session transitions drive the editing-time stats, so Stats stays live
	// without the caller ticking it.
	sess.AddListener(func(prev, next editor.State) {
		switch next {
		case editor.StateEditing:
			s.Stats.OnTick(true, time.Now())
		case editor.StateCommitted, editor.StateCancelled:
			s.Stats.OnTick(false, time.Now())
		}
	})
	if err := sess.Begin(); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetBackground installs the composition background.
func (s *Studio) SetBackground(img image.Image) {
	s.Composition.SetBackground(img)
}

// SuggestBackgrounds extracts k candidate background colors from img.
func (s *Studio) SuggestBackgrounds(img image.Image, k int) ([]colorful.Color, error) {
	return palette.Suggest(img, k, palette.MethodDominant)
}

// Preview renders the composition at canvas resolution.
func (s *Studio) Preview() (*image.NRGBA, error) {
	return s.Renderer.Render(s.Composition)
}

// Export renders the composition for export. The render itself is
// deterministic; ctx lets callers abandon a slow export without leaving any
// partial state behind.
func (s *Studio) Export(ctx context.Context) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.Renderer.Render(s.Composition)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
