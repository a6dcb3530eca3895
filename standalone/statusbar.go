package standalone

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

var (
	statusBackground = color.RGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xFF}
	statusText       = color.RGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0xFF}
	statusWarning    = color.RGBA{R: 0xE0, G: 0xA0, B: 0x30, A: 0xFF}
)

// StatusInfo is what the status bar shows.
type StatusInfo struct {
	Renderer string
	Ready    bool
	Paused   bool
	TPS      float64
	Guest    image.Point // unscaled guest display size
	Viewers  int         // remote viewers, -1 when not remote
}

// String formats the status line.
func (s StatusInfo) String() string {
	parts := []string{s.Renderer}
	if !s.Ready {
		parts = append(parts, "not ready")
	}
	if s.Guest.X > 0 && s.Guest.Y > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", s.Guest.X, s.Guest.Y))
	}
	if s.Viewers >= 0 {
		if s.Viewers == 1 {
			parts = append(parts, "1 viewer")
		} else {
			parts = append(parts, fmt.Sprintf("%d viewers", s.Viewers))
		}
	}
	if s.Paused {
		parts = append(parts, "paused")
	}
	parts = append(parts, fmt.Sprintf("%.0f steps/s", s.TPS))
	return strings.Join(parts, " | ")
}

// StatusBar draws the status line below the render surface.
type StatusBar struct {
	bg *ebiten.Image
}

// Draw renders info into area. Nothing is drawn for an empty area.
func (b *StatusBar) Draw(screen *ebiten.Image, area image.Rectangle, info StatusInfo) {
	if area.Empty() {
		return
	}

	b.bg = ensureImage(b.bg, area.Dx(), area.Dy())
	b.bg.Fill(statusBackground)
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(area.Min.X), float64(area.Min.Y))
	screen.DrawImage(b.bg, opts)

	line := info.String()
	_, h := text.Measure(line, uiFace, 0)
	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(float64(area.Min.X+overlayPadding), float64(area.Min.Y)+(float64(area.Dy())-h)/2)
	if info.Paused || !info.Ready {
		textOpts.ColorScale.ScaleWithColor(statusWarning)
	} else {
		textOpts.ColorScale.ScaleWithColor(statusText)
	}
	text.Draw(screen, line, uiFace, textOpts)
}
