package editor

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/studiocut/cutout-studio-go/composite"
	"github.com/studiocut/cutout-studio-go/mask"
)

// PreviewResult carries one completed recomposition and its generation.
type PreviewResult struct {
	Image      *image.NRGBA
	Generation uint64
	Err        error
}

// WorkerStats summarises worker behaviour for instrumentation.
type WorkerStats struct {
	Submitted uint64
	Completed uint64
	Dropped   uint64
}

// PreviewWorker recomposites cutouts off the interactive loop. Every request
// is keyed with a monotonically increasing generation; completions whose
// generation is behind the latest submission are dropped, so a stale
// recomposition can never overwrite a newer mask state. Cancellation leaves
// the last published result intact.
type PreviewWorker struct {
	compositor *composite.Compositor
	logger     *slog.Logger

	requests   chan previewRequest
	generation atomic.Uint64
	latest     atomic.Pointer[PreviewResult]
	running    atomic.Bool

	submitted atomic.Uint64
	completed atomic.Uint64
	dropped   atomic.Uint64
}

type previewRequest struct {
	gen  uint64
	mask *mask.Alpha
	src  image.Image
}

// NewPreviewWorker returns an idle worker; call Start to launch its loop.
func NewPreviewWorker(comp *composite.Compositor, logger *slog.Logger) *PreviewWorker {
	return &PreviewWorker{
		compositor: comp,
		logger:     logger,
		requests:   make(chan previewRequest, 1),
	}
}

// Start launches the worker loop. It returns immediately; the loop exits
// when ctx is cancelled.
func (w *PreviewWorker) Start(ctx context.Context) {
	if w.running.Swap(true) {
		return
	}
	go w.loop(ctx)
}

// Running reports whether the worker loop is active.
func (w *PreviewWorker) Running() bool { return w.running.Load() }

// Submit queues a recomposition of m over src and returns its generation.
// The mask is snapshotted at call time, so the caller may keep mutating its
// copy. A queued-but-unstarted older request is replaced rather than run.
func (w *PreviewWorker) Submit(m *mask.Alpha, src image.Image) uint64 {
	gen := w.generation.Add(1)
	w.submitted.Add(1)
	req := previewRequest{gen: gen, mask: m.Clone(), src: src}
	select {
	case w.requests <- req:
	default:
		// Drop the stale queued request, then try once more.
		select {
		case <-w.requests:
			w.dropped.Add(1)
		default:
		}
		select {
		case w.requests <- req:
		default:
			w.dropped.Add(1)
		}
	}
	return gen
}

// Latest returns the freshest published result. The zero value is returned
// before any recomposition completes.
func (w *PreviewWorker) Latest() PreviewResult {
	r := w.latest.Load()
	if r == nil {
		return PreviewResult{}
	}
	return *r
}

func (w *PreviewWorker) loop(ctx context.Context) {
	defer w.running.Store(false)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			if req.gen < w.generation.Load() {
				w.dropped.Add(1)
				continue
			}
			out, err := w.compositor.ApplyExternalMask(req.mask, req.src)
			if req.gen < w.generation.Load() {
				// A newer mask state exists; this result is stale.
				if out != nil {
					composite.RecycleCutout(out)
				}
				w.dropped.Add(1)
				continue
			}
			if err != nil {
				// Keep the last valid image; surface the failure alongside it.
				prev := w.Latest()
				w.latest.Store(&PreviewResult{Image: prev.Image, Generation: req.gen, Err: err})
				if w.logger != nil {
					w.logger.Warn("preview recomposition failed", "generation", req.gen, "error", err)
				}
				continue
			}
			w.latest.Store(&PreviewResult{Image: out, Generation: req.gen})
			w.completed.Add(1)
		}
	}
}

// Stats returns cumulative worker counters.
func (w *PreviewWorker) Stats() WorkerStats {
	return WorkerStats{
		Submitted: w.submitted.Load(),
		Completed: w.completed.Load(),
		Dropped:   w.dropped.Load(),
	}
}
