package video

import (
	"errors"
	"sync"
)

// testBackend records calls. Optional capabilities are added by wrapping
// types so each test picks exactly the capability set it needs.
type testBackend struct {
	mu       sync.Mutex
	initErr  error
	inits    int
	closes   int
	blits    int
	resizes  [][2]int
	enables  []bool
	fsCalls  []bool
	paused   bool
	open     bool
	lastSize [2]int
}

func (b *testBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits++
	if b.initErr != nil {
		return b.initErr
	}
	b.open = true
	return nil
}

func (b *testBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	b.open = false
}

func (b *testBackend) Blit(f Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blits++
	b.lastSize = [2]int{f.Width, f.Height}
}

func (b *testBackend) counts() (inits, closes, blits int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inits, b.closes, b.blits
}

func (b *testBackend) resizeCalls() [][2]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][2]int, len(b.resizes))
	copy(out, b.resizes)
	return out
}

// fullBackend supports every optional capability.
type fullBackend struct {
	testBackend
}

func (b *fullBackend) Resize(w, h int) {
	b.mu.Lock()
	b.resizes = append(b.resizes, [2]int{w, h})
	b.mu.Unlock()
}

func (b *fullBackend) Enable(on bool) {
	b.mu.Lock()
	b.enables = append(b.enables, on)
	b.mu.Unlock()
}

func (b *fullBackend) SetFullscreen(on bool) {
	b.mu.Lock()
	b.fsCalls = append(b.fsCalls, on)
	b.mu.Unlock()
}

func (b *fullBackend) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// remoteBackend supports resize and pause only.
type remoteBackend struct {
	testBackend
}

func (b *remoteBackend) Resize(w, h int) {
	b.mu.Lock()
	b.resizes = append(b.resizes, [2]int{w, h})
	b.mu.Unlock()
}

func (b *remoteBackend) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

var errInitFailed = errors.New("no device")

type testRig struct {
	software *testBackend
	hardware *fullBackend
	opengl   *fullBackend
	remote   *remoteBackend
	registry *Registry
	window   *testWindow
	redraw   *testRedrawer
	sub      *Subsystem
}

func newTestRig() *testRig {
	rig := &testRig{
		software: &testBackend{},
		hardware: &fullBackend{},
		opengl:   &fullBackend{},
		remote:   &remoteBackend{},
		window:   newTestWindow(),
		redraw:   &testRedrawer{},
	}
	reg, err := NewRegistry(
		Descriptor{Name: "SDL_Software", ConfigName: "sdl_software", Local: true, Backend: rig.software},
		Descriptor{Name: "SDL_Hardware", ConfigName: "sdl_hardware", Local: true, Backend: rig.hardware},
		Descriptor{Name: "SDL_OpenGL", ConfigName: "sdl_opengl", Local: true, Backend: rig.opengl},
		Descriptor{Name: "VNC", ConfigName: "vnc", Local: false, Backend: rig.remote},
	)
	if err != nil {
		panic(err)
	}
	rig.registry = reg
	rig.sub = NewSubsystem(reg, rig.window, rig.redraw)
	return rig
}

type testRedrawer struct {
	mu    sync.Mutex
	count int
}

func (r *testRedrawer) ForceRedraw() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

func (r *testRedrawer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type testWindow struct {
	mu          sync.Mutex
	visible     []bool
	window      Rect
	client      [2]int
	render      Rect
	status      Rect
	statusH     int
	cursor      []bool
	clips       []*Rect
	dpi         int
	resizeOrder []string
}

func newTestWindow() *testWindow {
	return &testWindow{
		window:  Rect{X: 100, Y: 80, W: 656, H: 535},
		client:  [2]int{640, 497},
		render:  Rect{W: 640, H: 480},
		statusH: 17,
		dpi:     96,
	}
}

func (w *testWindow) ShowWindow(v bool) {
	w.mu.Lock()
	w.visible = append(w.visible, v)
	w.mu.Unlock()
}

func (w *testWindow) WindowRect() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.window
}

// MoveWindow keeps a fixed 16x38 frame around the client area.
func (w *testWindow) MoveWindow(r Rect) {
	w.mu.Lock()
	w.window = r
	w.client = [2]int{r.W - 16, r.H - 38}
	w.resizeOrder = append(w.resizeOrder, "window")
	w.mu.Unlock()
}

func (w *testWindow) ClientSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client[0], w.client[1]
}

func (w *testWindow) ResizeClientArea(width, height int) {
	w.mu.Lock()
	w.client = [2]int{width, height}
	w.window.W = width + 16
	w.window.H = height + 38
	w.resizeOrder = append(w.resizeOrder, "window")
	w.mu.Unlock()
}

func (w *testWindow) MoveRenderSurface(r Rect) {
	w.mu.Lock()
	w.render = r
	w.resizeOrder = append(w.resizeOrder, "render")
	w.mu.Unlock()
}

func (w *testWindow) RenderSurfaceRect() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := w.render
	r.X += w.window.X + 8
	r.Y += w.window.Y + 30
	return r
}

func (w *testWindow) MoveStatusBar(r Rect) {
	w.mu.Lock()
	w.status = r
	w.resizeOrder = append(w.resizeOrder, "status")
	w.mu.Unlock()
}

func (w *testWindow) StatusBarHeight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusH
}

func (w *testWindow) SetCursorVisible(v bool) {
	w.mu.Lock()
	w.cursor = append(w.cursor, v)
	w.mu.Unlock()
}

func (w *testWindow) ClipCursor(r *Rect) {
	w.mu.Lock()
	if r != nil {
		c := *r
		r = &c
	}
	w.clips = append(w.clips, r)
	w.mu.Unlock()
}

func (w *testWindow) DPI() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dpi
}

type testConfirmer struct {
	answer bool
	calls  int
}

func (c *testConfirmer) ConfirmOnce(string) bool {
	c.calls++
	return c.answer
}

type testKeys struct {
	mu  sync.Mutex
	ups []uint16
}

func (k *testKeys) KeyUp(code uint16) {
	k.mu.Lock()
	k.ups = append(k.ups, code)
	k.mu.Unlock()
}

type testProducer struct {
	steps  int
	onStep func()
}

func (p *testProducer) StepOnce() {
	p.steps++
	if p.onStep != nil {
		p.onStep()
	}
}

type testPersister struct {
	saves int
	err   error
}

func (p *testPersister) SaveState() error {
	p.saves++
	return p.err
}

type testFullscreen struct {
	on bool
}

func (f *testFullscreen) IsFullscreen() bool { return f.on }

func testFrame(w, h int) Frame {
	return Frame{Pixels: make([]byte, w*h*4), Stride: w * 4, Width: w, Height: h}
}
