package standalone

import (
	"sync"

	"github.com/SeanRamey/86Box/video"
)

// SharedFramebuffer holds the latest frame written by the producer goroutine
// and read by Ebiten's Draw. Uses separate write and read buffers so the
// producer can publish while Draw uses the read copy.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte // Packed RGBA, written under lock
	readPixels  []byte // Snapshot copied on Read for safe external use
	width       int
	height      int
	generation  uint64 // Bumped on every Update
}

// NewSharedFramebuffer creates a framebuffer with size bytes pre-allocated,
// normally SystemInfo.FramebufferSize. Larger frames grow the buffers.
func NewSharedFramebuffer(size int) *SharedFramebuffer {
	return &SharedFramebuffer{
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
	}
}

// Update copies a published frame, dropping any row padding.
func (sf *SharedFramebuffer) Update(f video.Frame) {
	if !f.Valid() {
		return
	}

	rowBytes := f.Width * 4
	n := rowBytes * f.Height

	sf.mu.Lock()
	if n > len(sf.writePixels) {
		sf.writePixels = make([]byte, n)
	}
	if f.Stride == rowBytes {
		copy(sf.writePixels[:n], f.Pixels[:n])
	} else {
		for y := 0; y < f.Height; y++ {
			copy(sf.writePixels[y*rowBytes:(y+1)*rowBytes], f.Pixels[y*f.Stride:])
		}
	}
	sf.width = f.Width
	sf.height = f.Height
	sf.generation++
	sf.mu.Unlock()
}

// Read returns a snapshot of the current frame. The returned slice is only
// valid until the next Read.
func (sf *SharedFramebuffer) Read() (pixels []byte, width, height int, generation uint64) {
	sf.mu.Lock()
	width, height, generation = sf.width, sf.height, sf.generation
	n := width * height * 4
	if n > len(sf.readPixels) {
		sf.readPixels = make([]byte, n)
	}
	copy(sf.readPixels[:n], sf.writePixels[:n])
	pixels = sf.readPixels[:n]
	sf.mu.Unlock()
	return
}

// Generation returns the update counter without copying pixels.
func (sf *SharedFramebuffer) Generation() uint64 {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.generation
}

// Reset forgets the current frame so a newly opened renderer starts blank.
func (sf *SharedFramebuffer) Reset() {
	sf.mu.Lock()
	sf.width = 0
	sf.height = 0
	sf.generation++
	sf.mu.Unlock()
}
