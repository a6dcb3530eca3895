package standalone

import (
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// Overlay layout, in physical pixels at scale 1.
const (
	overlayPadding = 6
	overlayMargin  = 12
)

var (
	overlayBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 153} // 60% opacity
	overlayText       = color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
)

// uiFace is the fixed-size face used for window chrome.
var uiFace = text.NewGoXFace(basicfont.Face7x13)

// Notification displays temporary messages over the render surface
type Notification struct {
	mu        sync.Mutex
	message   string
	startTime time.Time
	duration  time.Duration
	now       func() time.Time

	// Reused between frames
	bg *ebiten.Image
}

// NewNotification creates a new notification system
func NewNotification() *Notification {
	return &Notification{now: time.Now}
}

// Show displays a notification message
func (n *Notification) Show(message string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = message
	n.startTime = n.now()
	n.duration = duration
}

// ShowDefault displays a notification with default 3 second duration
func (n *Notification) ShowDefault(message string) {
	n.Show(message, 3*time.Second)
}

// Message returns the visible message, or "" when none is showing.
func (n *Notification) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message == "" || n.now().Sub(n.startTime) >= n.duration {
		return ""
	}
	return n.message
}

// IsVisible returns whether the notification is currently visible
func (n *Notification) IsVisible() bool {
	return n.Message() != ""
}

// Clear removes the current notification
func (n *Notification) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = ""
}

// Draw renders the notification in the bottom-right corner of area.
func (n *Notification) Draw(screen *ebiten.Image, area image.Rectangle) {
	message := n.Message()
	if message == "" {
		return
	}

	textWidth, textHeight := text.Measure(message, uiFace, 0)
	bgWidth := int(textWidth) + overlayPadding*2
	bgHeight := int(textHeight) + overlayPadding*2

	bgX := area.Max.X - bgWidth - overlayMargin
	bgY := area.Max.Y - bgHeight - overlayMargin
	if bgX < area.Min.X {
		bgX = area.Min.X
	}
	if bgY < area.Min.Y {
		bgY = area.Min.Y
	}

	if n.bg == nil || n.bg.Bounds().Dx() < bgWidth || n.bg.Bounds().Dy() < bgHeight {
		n.bg = ebiten.NewImage(bgWidth, bgHeight)
	}
	n.bg.Clear()
	n.bg.Fill(overlayBackground)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(bgX), float64(bgY))
	screen.DrawImage(n.bg.SubImage(image.Rect(0, 0, bgWidth, bgHeight)).(*ebiten.Image), opts)

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(float64(bgX+overlayPadding), float64(bgY+overlayPadding))
	textOpts.ColorScale.ScaleWithColor(overlayText)
	text.Draw(screen, message, uiFace, textOpts)
}
