package standalone

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	emucore "github.com/SeanRamey/86Box/api"
	"github.com/SeanRamey/86Box/remote"
	"github.com/SeanRamey/86Box/standalone/storage"
	"github.com/SeanRamey/86Box/video"
)

// Renderer ids, in registry order.
const (
	rendererSoftware = video.FallbackID
	rendererHardware = video.DefaultID
	rendererOpenGL   = 2
	rendererVNC      = 3
)

// legacyRendererNames are accepted in config and resolve to the default.
var legacyRendererNames = []string{"default", "system", "ddraw", "sdl"}

// App is the main application struct that implements ebiten.Game
type App struct {
	// Core factory and system info (set by Run)
	factory    emucore.CoreFactory
	systemInfo emucore.SystemInfo

	// Data
	config           *storage.Config
	configLoadFailed bool // True if config.json failed to load (don't overwrite on exit)

	// Video
	fb         *SharedFramebuffer
	window     *ebitenWindow
	sub        *video.Subsystem
	fullscreen *video.FullscreenController
	sched      *video.Scheduler
	remote     *remote.Server

	// Core
	keys   *KeyQueue
	runner *coreRunner
	host   *coreHost

	// UI managers
	inputManager      *InputManager
	notification      *Notification
	screenshotManager *ScreenshotManager
	statusBar         StatusBar

	started       bool
	shutdownOnce  sync.Once
	mouseCaptured bool

	// Step rate shown in the status bar
	rateSteps uint64
	rateTime  time.Time
	stepRate  float64

	// Window tracking for persistence
	windowX, windowY   int
	lastWindowedWidth  int // Last non-fullscreen width (physical pixels)
	lastWindowedHeight int // Last non-fullscreen height (physical pixels)
	currentDPIScale    float64
}

// Run is the public entry point for the standalone frontend. It initializes
// storage, configures the window, creates the app, and starts the Ebiten
// game loop. It returns after the window is closed and the core has stopped.
func Run(factory emucore.CoreFactory) error {
	info := factory.SystemInfo()

	// Initialize storage with core-specific data directory
	storage.Init(info.DataDirName)

	// Configure window
	ebiten.SetWindowTitle(info.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(storage.MinWindowWidth, storage.MinWindowHeight, -1, -1)
	ebiten.SetWindowClosingHandled(true)

	app, err := newApp(factory, info)
	if err != nil {
		return err
	}

	// Restore window size from saved config (before RunGame to avoid resize flash)
	width, height, x, y := app.GetWindowConfig()
	ebiten.SetWindowSize(width, height)
	if x != nil && y != nil {
		ebiten.SetWindowPosition(*x, *y)
	}

	err = ebiten.RunGame(app)
	app.shutdown()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// newApp creates the application with the given core factory and system info.
func newApp(factory emucore.CoreFactory, info emucore.SystemInfo) (*App, error) {
	app := &App{
		factory:    factory,
		systemInfo: info,
	}

	// Ensure directory structure exists
	if err := storage.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	if err := storage.CreateConfigIfMissing(); err != nil {
		log.Printf("Warning: failed to create config: %v", err)
	}

	config, err := storage.LoadConfig()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		config = storage.DefaultConfig()
		app.configLoadFailed = true
	}

	valid := validRendererNames()
	for _, problem := range storage.ValidateConfig(config, valid) {
		log.Printf("Warning: invalid config value %s, using default", problem)
	}
	app.config = storage.CorrectConfig(config, valid)

	app.notification = NewNotification()
	app.screenshotManager = NewScreenshotManager(app.notification)
	app.inputManager = NewInputManager()

	app.fb = NewSharedFramebuffer(info.FramebufferSize())
	app.window = newEbitenWindow(app.config.Video.ShowStatusBar)
	app.remote = remote.NewServer(app.config.Video.RemoteAddr, app.config.Video.RemotePauseIdle)

	registry, err := video.NewRegistry(rendererDescriptors(app.fb, app.remote, app.config.Shaders.Effects)...)
	if err != nil {
		return nil, err
	}

	app.keys = &KeyQueue{}
	app.runner = newCoreRunner(app.keys)
	app.sub = video.NewSubsystem(registry, app.window, app.runner)

	app.fullscreen = video.NewFullscreenController(app.sub, app.window, newDialogConfirmer(info.Name), app.keys, video.FullscreenOptions{
		FirstTimeConfirmed: app.config.Video.FullscreenConfirmed,
		RememberGeometry:   app.config.Video.RememberWindow,
		DPIScale:           app.config.Video.DPIScale,
		UnscaledWidth:      info.ScreenWidth,
		UnscaledHeight:     info.ScreenHeight,
		OnConfirmed: func() {
			app.config.Video.FullscreenConfirmed = true
			app.saveConfig()
		},
	})

	app.host = &coreHost{sub: app.sub, fs: app.fullscreen}
	producer, err := factory.CreateProducer(app.host)
	if err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}
	app.runner.core = producer

	app.sched = video.NewScheduler(video.SchedulerConfig{}, app.sub, app.runner, app.runner, app.fullscreen)
	app.host.sched = app.sched
	app.fullscreen.SetResizeRequester(app.sched)

	return app, nil
}

// rendererDescriptors returns the registry table. Order defines the ids.
func rendererDescriptors(fb *SharedFramebuffer, rs *remote.Server, effects []string) []video.Descriptor {
	return []video.Descriptor{
		rendererSoftware: {Name: "SDL_Software", ConfigName: "sdl_software", Local: true, Backend: NewSoftwareRenderer(fb)},
		rendererHardware: {Name: "SDL_Hardware", ConfigName: "sdl_hardware", Local: true, Backend: NewHardwareRenderer(fb)},
		rendererOpenGL:   {Name: "SDL_OpenGL", ConfigName: "sdl_opengl", Local: true, Backend: NewShaderRenderer(fb, effects)},
		rendererVNC:      {Name: "VNC", ConfigName: "vnc", Local: false, Backend: rs},
	}
}

// validRendererNames lists every renderer name accepted in config.
func validRendererNames() []string {
	names := append([]string{}, legacyRendererNames...)
	for _, d := range rendererDescriptors(nil, nil, nil) {
		names = append(names, d.ConfigName, d.Name)
	}
	return names
}

// GetWindowConfig returns the saved window dimensions and position from
// config. This should be called before RunGame to set the initial size.
func (a *App) GetWindowConfig() (width, height int, x, y *int) {
	return a.config.Window.Width, a.config.Window.Height, a.config.Window.X, a.config.Window.Y
}

// start opens the configured renderer and starts the core. Runs on the
// first Update so every backend call happens on the Ebiten goroutine.
func (a *App) start() {
	a.started = true

	a.switchRenderer(a.sub.Registry().ResolveByName(a.config.Video.Renderer))

	if a.config.Window.Fullscreen && a.sub.Active().Local {
		a.fullscreen.Enter()
	}

	a.rateTime = time.Now()
	a.sched.Start()
}

// switchRenderer activates renderer id, falling back to the software
// renderer when it fails to initialise.
func (a *App) switchRenderer(id int) {
	registry := a.sub.Registry()
	target := registry.Descriptor(id)
	if !target.Local && a.fullscreen.IsFullscreen() {
		a.fullscreen.Exit()
	}
	if !target.Local && a.mouseCaptured {
		a.setMouseCapture(false)
	}

	if err := a.sub.SwitchTo(id); err != nil {
		log.Printf("Renderer switch failed: %v", err)
		fallback := registry.Descriptor(video.FallbackID)
		if id != video.FallbackID {
			if err := a.sub.SwitchTo(video.FallbackID); err != nil {
				log.Printf("Fallback renderer failed: %v", err)
			}
		}
		a.notification.ShowDefault(fmt.Sprintf("%s unavailable, using %s", target.Name, fallback.Name))
	} else {
		a.notification.ShowDefault("Renderer: " + target.Name)
	}

	a.config.Video.Renderer = registry.NameOf(a.sub.ActiveID())

	// The new renderer has not seen the guest size yet.
	if w, h := a.host.GuestSize(); w > 0 && h > 0 {
		a.sched.RequestResize(w, h)
	}
}

// cycleRenderer switches to the next renderer in registry order.
func (a *App) cycleRenderer() {
	next := (a.sub.ActiveID() + 1) % a.sub.Registry().Len()
	a.switchRenderer(next)
	a.saveConfig()
}

// toggleFullscreen toggles between fullscreen and windowed mode
func (a *App) toggleFullscreen() {
	if !a.sub.Active().Local {
		a.notification.ShowDefault("Fullscreen needs a local renderer")
		return
	}
	if !a.fullscreen.Toggle() {
		return
	}
	a.config.Window.Fullscreen = a.fullscreen.IsFullscreen()
	a.saveConfig()
}

func (a *App) toggleStatusBar() {
	on := !a.window.StatusBarVisible()
	a.window.SetStatusBarVisible(on)
	a.config.Video.ShowStatusBar = on
	a.saveConfig()
}

func (a *App) setMouseCapture(on bool) {
	a.mouseCaptured = on
	a.inputManager.SetCaptured(on)
	a.fullscreen.SetMouseCapture(on)
}

func (a *App) takeScreenshot() {
	if err := a.screenshotManager.Capture(a.sub); err != nil {
		log.Printf("Screenshot failed: %v", err)
		a.notification.ShowDefault("Screenshot unavailable")
	}
}

// Update implements ebiten.Game
func (a *App) Update() error {
	if !a.started {
		a.start()
	}

	if ebiten.IsWindowBeingClosed() {
		a.shutdown()
		return ebiten.Termination
	}

	// Position must be queried here; Layout() handles width/height.
	if !a.fullscreen.IsFullscreen() {
		a.windowX, a.windowY = ebiten.WindowPosition()
	}

	keys := a.inputManager.Update(a.window.RenderArea())
	if keys.Fullscreen {
		a.toggleFullscreen()
	}
	if keys.CycleRenderer {
		a.cycleRenderer()
	}
	if keys.Screenshot {
		a.takeScreenshot()
	}
	if keys.StatusBar {
		a.toggleStatusBar()
	}
	if keys.CaptureMouse && a.sub.Active().Local {
		a.setMouseCapture(true)
	}
	if keys.ReleaseMouse {
		a.setMouseCapture(false)
	}

	a.updateStepRate()
	return nil
}

func (a *App) updateStepRate() {
	now := time.Now()
	elapsed := now.Sub(a.rateTime)
	if elapsed < time.Second {
		return
	}
	steps := a.sched.Steps()
	a.stepRate = float64(steps-a.rateSteps) / elapsed.Seconds()
	a.rateSteps = steps
	a.rateTime = now
}

// Draw implements ebiten.Game
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	area := a.window.RenderArea()
	if a.sub.Ready() && !area.Empty() {
		if s, ok := a.sub.Active().Backend.(surface); ok && a.window.SurfaceVisible() {
			s.Draw(screen.SubImage(area).(*ebiten.Image))
		} else {
			a.drawRemoteNotice(screen, area)
		}
	}

	a.notification.Draw(screen, area)

	if !a.fullscreen.IsFullscreen() {
		a.statusBar.Draw(screen, a.window.StatusArea(), a.statusInfo())
	}
}

func (a *App) drawRemoteNotice(screen *ebiten.Image, area image.Rectangle) {
	addr := a.config.Video.RemoteAddr
	if la := a.remote.Addr(); la != nil {
		addr = la.String()
	}
	msg := fmt.Sprintf("Display is served on %s", addr)

	w, h := text.Measure(msg, uiFace, 0)
	opts := &text.DrawOptions{}
	opts.GeoM.Translate(float64(area.Min.X)+(float64(area.Dx())-w)/2, float64(area.Min.Y)+(float64(area.Dy())-h)/2)
	opts.ColorScale.ScaleWithColor(overlayText)
	text.Draw(screen, msg, uiFace, opts)
}

func (a *App) statusInfo() StatusInfo {
	active := a.sub.Active()
	gw, gh := a.host.GuestSize()
	info := StatusInfo{
		Renderer: active.Name,
		Ready:    a.sub.Ready(),
		Paused:   a.sched.Paused(),
		TPS:      a.stepRate,
		Guest:    image.Pt(gw, gh),
		Viewers:  -1,
	}
	if a.sub.ActiveID() == rendererVNC {
		info.Viewers = a.remote.Viewers()
	}
	return info
}

// Layout implements ebiten.Game
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Query the device scale factor for HiDPI rendering
	s := deviceScale()
	if s != a.currentDPIScale {
		a.currentDPIScale = s
		log.Printf("Device scale factor: %.2f (%d dpi)", s, int(s*video.BaseDPI))
	}

	// Return physical pixel dimensions so the game renders at full resolution
	w := int(float64(outsideWidth) * s)
	h := int(float64(outsideHeight) * s)

	fs := a.fullscreen.IsFullscreen()
	a.window.Layout(w, h, s, fs)

	// Track windowed dimensions separately so fullscreen doesn't overwrite them.
	if !fs && !ebiten.IsFullscreen() {
		a.lastWindowedWidth = w
		a.lastWindowedHeight = h
	}
	return w, h
}

// shutdown stops the core, closes the renderer, and saves config. Safe to
// call more than once.
func (a *App) shutdown() {
	a.shutdownOnce.Do(func() {
		a.sched.Shutdown()
		a.sub.Close()
		a.runner.Close()
		a.saveWindowState()
	})
}

// saveWindowState saves current window position and size to config
func (a *App) saveWindowState() {
	// Don't save if we never got valid windowed dimensions.
	if a.lastWindowedWidth > 0 && a.lastWindowedHeight > 0 {
		s := a.currentDPIScale
		if s <= 0 {
			s = 1
		}
		a.config.Window.Width = int(float64(a.lastWindowedWidth) / s)
		a.config.Window.Height = int(float64(a.lastWindowedHeight) / s)
		x, y := a.windowX, a.windowY
		a.config.Window.X = &x
		a.config.Window.Y = &y
	}
	a.config.Window.Fullscreen = a.fullscreen.IsFullscreen()
	a.saveConfig()
}

func (a *App) saveConfig() {
	// Don't overwrite config if it failed to load (user may want to fix it manually)
	if a.configLoadFailed {
		return
	}
	if err := storage.SaveConfig(a.config); err != nil {
		log.Printf("Failed to save config: %v", err)
	}
}
