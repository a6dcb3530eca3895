package standalone

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/SeanRamey/86Box/standalone/shader"
	"github.com/SeanRamey/86Box/video"
)

// surface is implemented by renderers that present inside the application
// window. Draw runs on the Ebiten goroutine; dst is the render area.
type surface interface {
	Draw(dst *ebiten.Image)
}

// localRenderer is the part shared by the renderers that present inside the
// application window. Blit runs on the producer goroutine and only touches
// the shared framebuffer; everything else runs on the Ebiten goroutine.
type localRenderer struct {
	fb            *SharedFramebuffer
	open          atomic.Bool
	enabled       atomic.Bool
	guestW        atomic.Int32
	guestH        atomic.Int32
	setFullscreen func(bool)
}

func (r *localRenderer) bind(fb *SharedFramebuffer) {
	r.fb = fb
	r.setFullscreen = ebiten.SetFullscreen
}

func (r *localRenderer) Init() error {
	r.fb.Reset()
	r.enabled.Store(true)
	r.open.Store(true)
	return nil
}

func (r *localRenderer) Close() {
	r.open.Store(false)
}

func (r *localRenderer) Blit(f video.Frame) {
	if !r.open.Load() || !r.enabled.Load() {
		return
	}
	r.fb.Update(f)
}

// Resize records the guest screen size.
func (r *localRenderer) Resize(width, height int) {
	r.guestW.Store(int32(width))
	r.guestH.Store(int32(height))
}

// GuestSize returns the last size passed to Resize.
func (r *localRenderer) GuestSize() (int, int) {
	return int(r.guestW.Load()), int(r.guestH.Load())
}

// SetFullscreen switches the application window.
func (r *localRenderer) SetFullscreen(on bool) {
	r.setFullscreen(on)
}

// fitRect returns the largest rectangle with the aspect ratio of srcW x srcH
// that fits in dstW x dstH, centred.
func fitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}

	w, h := dstW, srcH*dstW/srcW
	if h > dstH {
		w, h = srcW*dstH/srcH, dstH
	}
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// ensureImage returns img if it already has the given size, otherwise a new
// image of that size.
func ensureImage(img *ebiten.Image, width, height int) *ebiten.Image {
	if img != nil {
		b := img.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(width, height)
}

// SoftwareRenderer scales frames on the CPU and uploads the result. It is
// the fallback renderer and has no failure path.
type SoftwareRenderer struct {
	localRenderer

	lastGen  uint64
	lastArea image.Point
	lastRect image.Rectangle
	scaled   *image.RGBA
	img      *ebiten.Image
}

// NewSoftwareRenderer creates the software renderer.
func NewSoftwareRenderer(fb *SharedFramebuffer) *SoftwareRenderer {
	r := &SoftwareRenderer{}
	r.bind(fb)
	return r
}

func (r *SoftwareRenderer) Close() {
	r.localRenderer.Close()
	if r.img != nil {
		r.img.Deallocate()
		r.img = nil
	}
	r.scaled = nil
	r.lastGen = 0
	r.lastArea = image.Point{}
	r.lastRect = image.Rectangle{}
}

// Draw implements surface.
func (r *SoftwareRenderer) Draw(dst *ebiten.Image) {
	if !r.open.Load() {
		return
	}

	bounds := dst.Bounds()
	if gen := r.fb.Generation(); gen != r.lastGen || bounds.Size() != r.lastArea {
		pixels, w, h, g := r.fb.Read()
		r.lastGen = g
		r.lastArea = bounds.Size()
		r.lastRect = fitRect(w, h, bounds.Dx(), bounds.Dy())
		if r.lastRect.Empty() {
			return
		}
		r.scale(pixels, w, h, r.lastRect)
	}

	if r.img == nil || r.lastRect.Empty() {
		return
	}
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(bounds.Min.X+r.lastRect.Min.X), float64(bounds.Min.Y+r.lastRect.Min.Y))
	dst.DrawImage(r.img, opts)
}

func (r *SoftwareRenderer) scale(pixels []byte, w, h int, rect image.Rectangle) {
	src := &image.RGBA{Pix: pixels, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	dw, dh := rect.Dx(), rect.Dy()
	if r.scaled == nil || r.scaled.Rect.Dx() != dw || r.scaled.Rect.Dy() != dh {
		r.scaled = image.NewRGBA(image.Rect(0, 0, dw, dh))
	}
	xdraw.NearestNeighbor.Scale(r.scaled, r.scaled.Rect, src, src.Rect, draw.Src, nil)

	r.img = ensureImage(r.img, dw, dh)
	r.img.WritePixels(r.scaled.Pix)
}

// HardwareRenderer uploads frames at native size and scales them on the GPU.
type HardwareRenderer struct {
	localRenderer

	lastGen   uint64
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewHardwareRenderer creates the hardware-accelerated renderer.
func NewHardwareRenderer(fb *SharedFramebuffer) *HardwareRenderer {
	r := &HardwareRenderer{}
	r.bind(fb)
	return r
}

func (r *HardwareRenderer) Close() {
	r.localRenderer.Close()
	if r.offscreen != nil {
		r.offscreen.Deallocate()
		r.offscreen = nil
	}
}

// Enable suspends or resumes frame uploads. The last frame stays on screen.
func (r *HardwareRenderer) Enable(on bool) {
	r.enabled.Store(on)
	if on {
		r.lastGen = 0
	}
}

// Draw implements surface.
func (r *HardwareRenderer) Draw(dst *ebiten.Image) {
	if !r.open.Load() {
		return
	}
	img := uploadFrame(r.fb, &r.offscreen, &r.lastGen)
	if img == nil {
		return
	}
	drawScaled(dst, img, &r.drawOpts, ebiten.FilterNearest)
}

// uploadFrame copies the shared framebuffer into *img when it changed and
// returns the image, or nil when there is no frame yet.
func uploadFrame(fb *SharedFramebuffer, img **ebiten.Image, lastGen *uint64) *ebiten.Image {
	gen := fb.Generation()
	if gen == *lastGen && *img != nil {
		return *img
	}

	pixels, w, h, g := fb.Read()
	if w == 0 || h == 0 {
		return nil
	}
	*img = ensureImage(*img, w, h)
	(*img).WritePixels(pixels)
	*lastGen = g
	return *img
}

// drawScaled draws src into dst with aspect-ratio-preserving scaling.
func drawScaled(dst, src *ebiten.Image, opts *ebiten.DrawImageOptions, filter ebiten.Filter) {
	bounds := dst.Bounds()
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	rect := fitRect(sw, sh, bounds.Dx(), bounds.Dy())
	if rect.Empty() {
		return
	}

	*opts = ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(rect.Dx())/float64(sw), float64(rect.Dy())/float64(sh))
	opts.GeoM.Translate(float64(bounds.Min.X+rect.Min.X), float64(bounds.Min.Y+rect.Min.Y))
	opts.Filter = filter
	dst.DrawImage(src, opts)
}

// ShaderRenderer runs the configured effect chain at native resolution
// before scaling to the window.
type ShaderRenderer struct {
	localRenderer

	manager  *shader.Manager
	effects  []string
	lastGen  uint64
	frame    *ebiten.Image
	output   *ebiten.Image
	drawOpts ebiten.DrawImageOptions
}

// NewShaderRenderer creates the GPU shader renderer for the given effect IDs.
func NewShaderRenderer(fb *SharedFramebuffer, effects []string) *ShaderRenderer {
	r := &ShaderRenderer{
		manager: shader.NewManager(),
		effects: effects,
	}
	r.bind(fb)
	return r
}

// Init compiles the effect chain. A shader that fails to compile fails the
// renderer so the caller can fall back.
func (r *ShaderRenderer) Init() error {
	for _, id := range r.effects {
		if !shader.IsKnown(id) {
			return fmt.Errorf("unknown shader effect: %s", id)
		}
	}
	if err := r.manager.Preload(r.effects); err != nil {
		return err
	}
	log.Printf("Shader chain: %v", shader.SortByWeight(r.effects))
	return r.localRenderer.Init()
}

func (r *ShaderRenderer) Close() {
	r.localRenderer.Close()
	r.manager.Release()
	for _, img := range []**ebiten.Image{&r.frame, &r.output} {
		if *img != nil {
			(*img).Deallocate()
			*img = nil
		}
	}
	r.lastGen = 0
}

// Enable suspends or resumes the renderer. Disabling drops the chaining
// buffers; they are recreated on the next draw.
func (r *ShaderRenderer) Enable(on bool) {
	r.enabled.Store(on)
	if !on {
		r.manager.ResetBuffers()
		return
	}
	r.lastGen = 0
}

// Draw implements surface.
func (r *ShaderRenderer) Draw(dst *ebiten.Image) {
	if !r.open.Load() {
		return
	}
	img := uploadFrame(r.fb, &r.frame, &r.lastGen)
	if img == nil {
		return
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	r.output = ensureImage(r.output, w, h)
	r.output.Clear()
	r.manager.ApplyShaders(r.output, img, r.effects, h)
	r.manager.IncrementFrame()

	drawScaled(dst, r.output, &r.drawOpts, ebiten.FilterLinear)
}
