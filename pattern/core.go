// Package pattern is a synthetic emulation core that draws moving colour
// bars. It exercises the video path without a real machine behind it.
package pattern

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	emucore "github.com/SeanRamey/86Box/api"
	"github.com/SeanRamey/86Box/standalone/storage"
)

const (
	screenWidth  = 640
	screenHeight = 480

	// The bars advance once every stepsPerFrame steps; frames in between are
	// unchanged and not published unless a redraw is forced.
	stepsPerFrame = 2

	// Durable state is touched every dirtyInterval frames.
	dirtyInterval = 300
)

// Factory creates pattern cores.
type Factory struct {
	// Modes lists guest resolutions cycled through every ModeFrames frames.
	// Empty means a fixed 640x480 screen.
	Modes      [][2]int
	ModeFrames int
}

// SystemInfo implements emucore.CoreFactory.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	maxW, maxH := screenWidth, screenHeight
	for _, m := range f.Modes {
		maxW = max(maxW, m[0])
		maxH = max(maxH, m[1])
	}
	return emucore.SystemInfo{
		Name:            "86Box",
		CoreName:        "pattern",
		CoreVersion:     "1.0",
		DataDirName:     "86box",
		ScreenWidth:     screenWidth,
		ScreenHeight:    screenHeight,
		MaxScreenWidth:  maxW,
		MaxScreenHeight: maxH,
	}
}

// CreateProducer implements emucore.CoreFactory.
func (f *Factory) CreateProducer(host emucore.Host) (emucore.Producer, error) {
	if host == nil {
		return nil, errors.New("pattern core needs a host")
	}
	modes := f.Modes
	if len(modes) == 0 {
		modes = [][2]int{{screenWidth, screenHeight}}
	}
	c := &Core{
		host:       host,
		modes:      modes,
		modeFrames: f.ModeFrames,
		mode:       -1,
	}
	c.loadState()
	return c, nil
}

// Core is a pattern generator. All methods except those documented otherwise
// run on the producer goroutine.
type Core struct {
	host       emucore.Host
	modes      [][2]int
	modeFrames int

	mode      int
	startMode int
	width     int
	height    int
	pixels    []byte

	steps   uint64
	frame   uint64
	redraw  bool
	lastKey uint16
}

// StepOnce implements emucore.Producer.
func (c *Core) StepOnce() {
	c.steps++
	if c.mode < 0 {
		c.setMode(c.startMode)
	}

	changed := c.steps%stepsPerFrame == 0
	if changed {
		c.frame++
		if c.frame%dirtyInterval == 0 {
			c.host.MarkDirty()
		}
		if c.modeFrames > 0 && len(c.modes) > 1 && c.frame%uint64(c.modeFrames) == 0 {
			c.setMode((c.mode + 1) % len(c.modes))
		}
	}
	if !changed && !c.redraw {
		return
	}
	c.redraw = false

	c.render()
	c.host.Publish(c.pixels, c.width*4, c.width, c.height)
}

func (c *Core) setMode(mode int) {
	c.mode = mode
	c.width, c.height = c.modes[mode][0], c.modes[mode][1]
	if n := c.width * c.height * 4; cap(c.pixels) < n {
		c.pixels = make([]byte, n)
	} else {
		c.pixels = c.pixels[:n]
	}
	c.host.SetScreenSize(c.width, c.height)
	c.redraw = true
}

var bars = [8][3]byte{
	{255, 255, 255},
	{255, 255, 0},
	{0, 255, 255},
	{0, 255, 0},
	{255, 0, 255},
	{255, 0, 0},
	{0, 0, 255},
	{0, 0, 0},
}

func (c *Core) render() {
	shift := int(c.frame % uint64(c.width))
	barW := max(c.width/len(bars), 1)
	for y := 0; y < c.height; y++ {
		row := c.pixels[y*c.width*4 : (y+1)*c.width*4]
		for x := 0; x < c.width; x++ {
			bar := bars[((x+shift)/barW)%len(bars)]
			i := x * 4
			row[i] = bar[0]
			row[i+1] = bar[1]
			row[i+2] = bar[2]
			row[i+3] = 0xFF
		}
	}
}

// ForceRedraw implements emucore.Redrawer.
func (c *Core) ForceRedraw() {
	c.redraw = true
}

// KeyUp implements emucore.KeySink.
func (c *Core) KeyUp(scancode uint16) {
	c.lastKey = scancode
}

// Frame returns the number of frames generated so far.
func (c *Core) Frame() uint64 {
	return c.frame
}

// nvrState is the durable state written on autosave.
type nvrState struct {
	Frame   uint64 `json:"frame"`
	Mode    int    `json:"mode"`
	LastKey uint16 `json:"lastKey"`
}

func statePath() (string, error) {
	dir, err := storage.GetNVRDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pattern.json"), nil
}

// loadState restores the state written by SaveState. A missing or unreadable
// file leaves the power-on defaults.
func (c *Core) loadState() {
	path, err := statePath()
	if err != nil {
		log.Printf("Warning: pattern state unavailable: %v", err)
		return
	}

	var st nvrState
	if err := storage.ReadJSON(path, &st); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: ignoring pattern state: %v", err)
		}
		return
	}

	c.frame = st.Frame
	c.lastKey = st.LastKey
	if st.Mode >= 0 && st.Mode < len(c.modes) {
		c.startMode = st.Mode
	}
	log.Printf("Loaded pattern state at frame %d", c.frame)
}

// SaveState implements emucore.Persister.
func (c *Core) SaveState() error {
	path, err := statePath()
	if err != nil {
		return err
	}
	if err := storage.AtomicWriteJSON(path, nvrState{Frame: c.frame, Mode: c.mode, LastKey: c.lastKey}); err != nil {
		return fmt.Errorf("failed to save pattern state: %w", err)
	}
	log.Printf("Saved pattern state at frame %d", c.frame)
	return nil
}
