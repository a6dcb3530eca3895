package standalone

import (
	"sync"
	"sync/atomic"

	emucore "github.com/SeanRamey/86Box/api"
	"github.com/SeanRamey/86Box/video"
)

// KeyQueue holds synthetic key releases written by the Ebiten thread and
// delivered to the core on the producer goroutine.
type KeyQueue struct {
	mu      sync.Mutex
	pending []uint16
}

// KeyUp queues a break code. Implements emucore.KeySink.
func (q *KeyQueue) KeyUp(scancode uint16) {
	q.mu.Lock()
	q.pending = append(q.pending, scancode)
	q.mu.Unlock()
}

// Drain appends the queued scancodes to dst and empties the queue.
func (q *KeyQueue) Drain(dst []uint16) []uint16 {
	q.mu.Lock()
	dst = append(dst, q.pending...)
	q.pending = q.pending[:0]
	q.mu.Unlock()
	return dst
}

// coreRunner wraps the core so requests made on the Ebiten thread reach it
// on the producer goroutine, between steps.
type coreRunner struct {
	core   emucore.Producer
	keys   *KeyQueue
	redraw atomic.Bool
	buf    []uint16
}

func newCoreRunner(keys *KeyQueue) *coreRunner {
	return &coreRunner{keys: keys}
}

// StepOnce delivers queued events, then steps the core.
func (r *coreRunner) StepOnce() {
	r.buf = r.keys.Drain(r.buf[:0])
	if len(r.buf) > 0 {
		if ks, ok := r.core.(emucore.KeySink); ok {
			for _, sc := range r.buf {
				ks.KeyUp(sc)
			}
		}
	}

	if r.redraw.Swap(false) {
		if rd, ok := r.core.(emucore.Redrawer); ok {
			rd.ForceRedraw()
		}
	}

	r.core.StepOnce()
}

// ForceRedraw is called with the frame lock held, so it only flags the
// request for the next step.
func (r *coreRunner) ForceRedraw() {
	r.redraw.Store(true)
}

// SaveState forwards to the core when it persists state.
func (r *coreRunner) SaveState() error {
	if p, ok := r.core.(emucore.Persister); ok {
		return p.SaveState()
	}
	return nil
}

// Close releases the core.
func (r *coreRunner) Close() {
	if c, ok := r.core.(emucore.Closer); ok {
		c.Close()
	}
}

// coreHost is the emucore.Host handed to the core.
type coreHost struct {
	sub   *video.Subsystem
	fs    *video.FullscreenController
	sched *video.Scheduler

	guestW atomic.Int32
	guestH atomic.Int32
}

func (h *coreHost) Publish(pixels []byte, stride, width, height int) {
	h.sub.Blit(video.Frame{Pixels: pixels, Stride: stride, Width: width, Height: height})
}

func (h *coreHost) SetScreenSize(width, height int) {
	h.guestW.Store(int32(width))
	h.guestH.Store(int32(height))
	if h.fs != nil {
		h.fs.SetUnscaledSize(width, height)
	}
	if h.sched != nil {
		h.sched.RequestResize(width, height)
	}
}

func (h *coreHost) MarkDirty() {
	if h.sched != nil {
		h.sched.MarkDirty()
	}
}

// GuestSize returns the last size reported by the core, or zeros.
func (h *coreHost) GuestSize() (int, int) {
	return int(h.guestW.Load()), int(h.guestH.Load())
}
