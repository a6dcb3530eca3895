package video

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	emucore "github.com/SeanRamey/86Box/api"
)

// Scheduler defaults.
const (
	DefaultStep          = 10 * time.Millisecond
	DefaultDebtCap       = 5 * DefaultStep
	DefaultAutosaveEvery = 200
	DefaultIdleWait      = time.Millisecond
	DefaultGrace         = 100 * time.Millisecond
)

// Clock reports monotonic host time since an arbitrary start.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a Clock backed by the runtime's monotonic clock.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

// FullscreenReporter reports whether the window is currently fullscreen.
type FullscreenReporter interface {
	IsFullscreen() bool
}

// SchedulerConfig holds pacing parameters. Zero fields take defaults.
type SchedulerConfig struct {
	Step          time.Duration // emulated time advanced per StepOnce
	DebtCap       time.Duration // accumulated debt beyond this is discarded
	AutosaveEvery int           // steps between dirty-state checks
	IdleWait      time.Duration // wait when there is nothing to run
	Grace         time.Duration // shutdown wait before joining the producer
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.DebtCap <= 0 {
		c.DebtCap = 5 * c.Step
	}
	if c.AutosaveEvery <= 0 {
		c.AutosaveEvery = DefaultAutosaveEvery
	}
	if c.IdleWait <= 0 {
		c.IdleWait = DefaultIdleWait
	}
	if c.Grace <= 0 {
		c.Grace = DefaultGrace
	}
	return c
}

// Scheduler paces the producer with a time-debt accumulator. Elapsed host
// time is added to the debt; each fixed step consumes one Step of it. Debt
// above DebtCap is dropped instead of being caught up.
//
// Debt, the step counter, and the frame counter belong to the goroutine
// running the loop. Quit, MarkDirty, SetPaused, and RequestResize are safe
// from any goroutine.
type Scheduler struct {
	cfg        SchedulerConfig
	sub        *Subsystem
	producer   emucore.Producer
	persister  emucore.Persister
	fullscreen FullscreenReporter
	clock      Clock

	debt   time.Duration
	frames int
	steps  atomic.Uint64

	dirty  atomic.Bool
	paused atomic.Bool

	quit     atomic.Bool
	quitCh   chan struct{}
	quitOnce sync.Once
	started  atomic.Bool
	done     chan struct{}

	resizeMu      sync.Mutex
	resizePending bool
	resizeW       int
	resizeH       int
}

// NewScheduler creates a scheduler. persister and fullscreen may be nil.
func NewScheduler(cfg SchedulerConfig, sub *Subsystem, producer emucore.Producer, persister emucore.Persister, fullscreen FullscreenReporter) *Scheduler {
	return &Scheduler{
		cfg:        cfg.withDefaults(),
		sub:        sub,
		producer:   producer,
		persister:  persister,
		fullscreen: fullscreen,
		clock:      NewClock(),
		quitCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// SetClock replaces the host time source. Must be called before Start.
func (s *Scheduler) SetClock(c Clock) {
	s.clock = c
}

// Config returns the effective configuration.
func (s *Scheduler) Config() SchedulerConfig {
	return s.cfg
}

// Debt returns the accumulated time debt. Loop goroutine only.
func (s *Scheduler) Debt() time.Duration {
	return s.debt
}

// Steps returns the number of completed steps.
func (s *Scheduler) Steps() uint64 {
	return s.steps.Load()
}

// MarkDirty flags durable state for saving at the next autosave point.
func (s *Scheduler) MarkDirty() {
	s.dirty.Store(true)
}

// Dirty reports whether durable state is waiting to be saved.
func (s *Scheduler) Dirty() bool {
	return s.dirty.Load()
}

// SetPaused pauses or resumes stepping. Debt still accrues up to the cap.
func (s *Scheduler) SetPaused(p bool) {
	s.paused.Store(p)
}

// Paused reports whether stepping is held, either explicitly or by the
// active backend.
func (s *Scheduler) Paused() bool {
	if s.paused.Load() {
		return true
	}
	return s.sub != nil && s.sub.Paused()
}

// RequestResize queues a guest screen resize. It is forwarded to the active
// backend by the loop once the window is not fullscreen; while fullscreen
// the request stays pending.
func (s *Scheduler) RequestResize(width, height int) {
	s.resizeMu.Lock()
	s.resizePending = true
	s.resizeW = width
	s.resizeH = height
	s.resizeMu.Unlock()
}

// ResizePending reports whether a resize is waiting to be forwarded.
func (s *Scheduler) ResizePending() bool {
	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()
	return s.resizePending
}

// Tick runs one loop iteration with elapsed host time since the previous
// one. It returns true if a step was executed.
func (s *Scheduler) Tick(elapsed time.Duration) bool {
	s.debt += elapsed
	if s.debt > s.cfg.DebtCap {
		s.debt = s.cfg.DebtCap
	}

	stepped := false
	if s.debt > 0 && !s.Paused() {
		s.debt -= s.cfg.Step
		s.producer.StepOnce()
		s.steps.Add(1)
		s.autosave()
		stepped = true
	}

	s.drainResize()

	return stepped
}

func (s *Scheduler) autosave() {
	s.frames++
	if s.frames < s.cfg.AutosaveEvery {
		return
	}
	s.frames = 0

	if !s.dirty.CompareAndSwap(true, false) || s.persister == nil {
		return
	}
	if err := s.persister.SaveState(); err != nil {
		log.Printf("Warning: state save failed: %v", err)
	}
}

func (s *Scheduler) drainResize() {
	if s.fullscreen != nil && s.fullscreen.IsFullscreen() {
		return
	}

	s.resizeMu.Lock()
	if !s.resizePending {
		s.resizeMu.Unlock()
		return
	}
	w, h := s.resizeW, s.resizeH
	s.resizePending = false
	s.resizeMu.Unlock()

	if s.sub != nil {
		s.sub.RequestResize(w, h)
	}
}

// Run executes the loop on the calling goroutine until Quit is called.
func (s *Scheduler) Run() {
	defer close(s.done)

	last := s.clock.Now()
	for !s.quit.Load() {
		now := s.clock.Now()
		elapsed := now - last
		last = now

		if !s.Tick(elapsed) {
			s.idle()
		}
	}
}

// idle waits a short interval instead of spinning, returning early on quit.
func (s *Scheduler) idle() {
	t := time.NewTimer(s.cfg.IdleWait)
	select {
	case <-t.C:
	case <-s.quitCh:
		t.Stop()
	}
}

// Start runs the loop on a new goroutine. Subsequent calls are no-ops.
func (s *Scheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.Run()
}

// Quit asks the loop to stop. The loop observes it between steps.
func (s *Scheduler) Quit() {
	s.quit.Store(true)
	s.quitOnce.Do(func() { close(s.quitCh) })
}

// QuitRequested reports whether Quit has been called.
func (s *Scheduler) QuitRequested() bool {
	return s.quit.Load()
}

// Done is closed when the loop has returned.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Shutdown stops the loop and waits for the producer goroutine to return.
// A producer that does not observe quit within the grace period is logged;
// Shutdown still joins it before returning, so backend resources can be
// released safely afterwards.
func (s *Scheduler) Shutdown() {
	s.Quit()
	if !s.started.Load() {
		return
	}

	t := time.NewTimer(s.cfg.Grace)
	defer t.Stop()
	select {
	case <-s.done:
		return
	case <-t.C:
		log.Printf("Warning: producer did not stop within %v", s.cfg.Grace)
	}
	<-s.done
}
