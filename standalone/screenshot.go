package standalone

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/SeanRamey/86Box/standalone/storage"
	"github.com/SeanRamey/86Box/video"
)

// ScreenshotManager captures the next published frame and saves it as PNG.
type ScreenshotManager struct {
	notification *Notification
	now          func() time.Time

	clipboardOnce sync.Once
	clipboardOK   bool
}

// NewScreenshotManager creates a new screenshot manager
func NewScreenshotManager(notification *Notification) *ScreenshotManager {
	return &ScreenshotManager{
		notification: notification,
		now:          time.Now,
	}
}

// Capture asks the subsystem for a copy of the next frame. Encoding and disk
// I/O happen on a separate goroutine. Returns video.ErrNotReady when no
// renderer is active.
func (m *ScreenshotManager) Capture(sub *video.Subsystem) error {
	return sub.RequestCapture(func(f video.Frame) {
		go m.finish(f)
	})
}

func (m *ScreenshotManager) finish(f video.Frame) {
	dir, err := storage.GetScreenshotDir()
	if err != nil {
		log.Printf("Screenshot failed: %v", err)
		return
	}

	path, data, err := m.Save(f, dir)
	if err != nil {
		log.Printf("Screenshot failed: %v", err)
		if m.notification != nil {
			m.notification.ShowDefault("Screenshot failed")
		}
		return
	}
	log.Printf("Screenshot saved: %s", path)

	m.copyToClipboard(data)
	if m.notification != nil {
		m.notification.ShowDefault("Screenshot saved")
	}
}

// Save encodes f as PNG into dir and returns the file path and PNG bytes.
func (m *ScreenshotManager) Save(f video.Frame, dir string) (string, []byte, error) {
	if !f.Valid() {
		return "", nil, fmt.Errorf("invalid frame %dx%d", f.Width, f.Height)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frameImage(f)); err != nil {
		return "", nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}

	filename := fmt.Sprintf("%d.png", m.now().UnixMilli())
	fullPath := filepath.Join(dir, filename)
	if err := storage.AtomicWriteFile(fullPath, buf.Bytes()); err != nil {
		return "", nil, fmt.Errorf("failed to write screenshot: %w", err)
	}
	return fullPath, buf.Bytes(), nil
}

// frameImage copies f into an opaque RGBA image.
func frameImage(f video.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	rowBytes := f.Width * 4
	for y := 0; y < f.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		copy(row, f.Pixels[y*f.Stride:y*f.Stride+rowBytes])
		for x := 3; x < rowBytes; x += 4 {
			row[x] = 0xFF
		}
	}
	return img
}

func (m *ScreenshotManager) copyToClipboard(data []byte) {
	m.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			log.Printf("Warning: clipboard not available: %v", err)
			return
		}
		m.clipboardOK = true
	})
	if m.clipboardOK {
		clipboard.Write(clipboard.FmtImage, data)
	}
}
