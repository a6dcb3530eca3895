package shader

import (
	_ "embed"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed shaders/crt.kage
var crtShaderSrc []byte

//go:embed shaders/lcd.kage
var lcdShaderSrc []byte

//go:embed shaders/scanlines.kage
var scanlinesShaderSrc []byte

//go:embed shaders/amber.kage
var amberShaderSrc []byte

//go:embed shaders/monochrome.kage
var monochromeShaderSrc []byte

//go:embed shaders/gamma.kage
var gammaShaderSrc []byte

// shaderSources maps shader IDs to their Kage source code
var shaderSources = map[string][]byte{
	"crt":        crtShaderSrc,
	"lcd":        lcdShaderSrc,
	"scanlines":  scanlinesShaderSrc,
	"amber":      amberShaderSrc,
	"monochrome": monochromeShaderSrc,
	"gamma":      gammaShaderSrc,
}

// Manager handles shader compilation, caching, and application.
// All methods must be called from the Ebiten goroutine.
type Manager struct {
	shaders map[string]*ebiten.Shader

	// Intermediate buffers for shader chaining (ping-pong)
	bufferA *ebiten.Image
	bufferB *ebiten.Image

	// Frame counter for animated shaders
	frame int

	// Cached shader pipeline (rebuilt only when the ID list changes)
	cachedShaderIDs     []string
	cachedSortedShaders []*ebiten.Shader
}

// NewManager creates a new shader manager
func NewManager() *Manager {
	return &Manager{
		shaders: make(map[string]*ebiten.Shader),
	}
}

// ResetBuffers releases the chaining buffers. They are recreated on the next
// ApplyShaders call.
func (m *Manager) ResetBuffers() {
	if m.bufferA != nil {
		m.bufferA.Deallocate()
		m.bufferA = nil
	}
	if m.bufferB != nil {
		m.bufferB.Deallocate()
		m.bufferB = nil
	}
}

// IncrementFrame advances the frame counter for animated shaders
func (m *Manager) IncrementFrame() {
	m.frame++
}

// Frame returns the current frame count
func (m *Manager) Frame() int {
	return m.frame
}

// LoadShader compiles and caches a shader by ID
func (m *Manager) LoadShader(id string) error {
	if _, ok := m.shaders[id]; ok {
		return nil
	}

	src, ok := shaderSources[id]
	if !ok {
		return fmt.Errorf("unknown shader: %s", id)
	}

	shader, err := ebiten.NewShader(src)
	if err != nil {
		return fmt.Errorf("failed to compile shader %s: %w", id, err)
	}

	m.shaders[id] = shader
	return nil
}

// Preload compiles every shader in ids and returns the first failure.
func (m *Manager) Preload(ids []string) error {
	for _, id := range ids {
		if err := m.LoadShader(id); err != nil {
			return err
		}
	}
	return nil
}

// Release disposes compiled shaders and buffers.
func (m *Manager) Release() {
	m.ResetBuffers()
	for id, s := range m.shaders {
		s.Deallocate()
		delete(m.shaders, id)
	}
	m.cachedShaderIDs = nil
	m.cachedSortedShaders = nil
}

func (m *Manager) ensureBuffers(width, height int) {
	m.bufferA = ensureImage(m.bufferA, width, height)
	m.bufferB = ensureImage(m.bufferB, width, height)
}

func ensureImage(img *ebiten.Image, width, height int) *ebiten.Image {
	if img != nil {
		bw, bh := img.Bounds().Dx(), img.Bounds().Dy()
		if bw == width && bh == height {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(width, height)
}

func (m *Manager) shaderListMatches(shaderIDs []string) bool {
	if len(shaderIDs) != len(m.cachedShaderIDs) {
		return false
	}
	for i, id := range shaderIDs {
		if m.cachedShaderIDs[i] != id {
			return false
		}
	}
	return true
}

func (m *Manager) rebuildShaderCache(shaderIDs []string) {
	m.cachedShaderIDs = make([]string, len(shaderIDs))
	copy(m.cachedShaderIDs, shaderIDs)

	sorted := SortByWeight(shaderIDs)
	m.cachedSortedShaders = make([]*ebiten.Shader, 0, len(sorted))
	for _, id := range sorted {
		if err := m.LoadShader(id); err != nil {
			log.Printf("Warning: shader %s not available: %v", id, err)
			continue
		}
		m.cachedSortedShaders = append(m.cachedSortedShaders, m.shaders[id])
	}
}

// ApplyShaders draws src to dst with the shader chain applied, positioned at
// the dst origin. sourceHeight is the guest's native vertical resolution,
// used by the scanline shader to align with guest rows.
// Returns false if src was drawn directly.
func (m *Manager) ApplyShaders(dst, src *ebiten.Image, shaderIDs []string, sourceHeight int) bool {
	if src == nil {
		return false
	}

	if !m.shaderListMatches(shaderIDs) {
		m.rebuildShaderCache(shaderIDs)
	}

	validShaders := m.cachedSortedShaders
	if len(validShaders) == 0 {
		dst.DrawImage(src, nil)
		return false
	}

	srcW, srcH := src.Bounds().Dx(), src.Bounds().Dy()
	uniforms := map[string]interface{}{
		"SourceHeight": float32(sourceHeight),
	}

	if len(validShaders) > 1 {
		m.ensureBuffers(srcW, srcH)
	}

	currentInput := src
	buffers := [2]*ebiten.Image{m.bufferA, m.bufferB}
	for i, shader := range validShaders {
		op := &ebiten.DrawRectShaderOptions{}
		op.Images[0] = currentInput
		op.Uniforms = uniforms

		if i == len(validShaders)-1 {
			dst.DrawRectShader(srcW, srcH, shader, op)
			break
		}
		out := buffers[i%2]
		out.Clear()
		out.DrawRectShader(srcW, srcH, shader, op)
		currentInput = out
	}

	return true
}
