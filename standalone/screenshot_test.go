package standalone

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SeanRamey/86Box/video"
)

func TestScreenshotManager_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	m := NewScreenshotManager(nil)
	m.now = func() time.Time { return time.UnixMilli(1700000000123) }

	// 2x1 frame, padded stride, zero alpha.
	f := video.Frame{
		Pixels: []byte{255, 0, 0, 0, 0, 255, 0, 0, 9, 9, 9, 9},
		Stride: 12,
		Width:  2,
		Height: 1,
	}

	path, data, err := m.Save(f, dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "1700000000123.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(onDisk, data) {
		t.Error("returned bytes differ from file")
	}

	img, err := png.Decode(bytes.NewReader(onDisk))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Fatalf("size = %v, want 2x1", b)
	}
	r, g, _, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || g != 0 || a>>8 != 255 {
		t.Errorf("pixel 0 = r%d g%d a%d, want opaque red", r>>8, g>>8, a>>8)
	}
	_, g, _, _ = img.At(1, 0).RGBA()
	if g>>8 != 255 {
		t.Errorf("pixel 1 green = %d, want 255", g>>8)
	}
}

func TestScreenshotManager_SaveInvalidFrame(t *testing.T) {
	m := NewScreenshotManager(nil)
	if _, _, err := m.Save(video.Frame{}, t.TempDir()); err == nil {
		t.Error("expected error for an empty frame")
	}
}

func TestScreenshotManager_CaptureNotReady(t *testing.T) {
	reg, err := video.NewRegistry(
		video.Descriptor{Name: "Software", Local: true, Backend: newRecordingBackend(nil)},
		video.Descriptor{Name: "Hardware", Local: true, Backend: newRecordingBackend(nil)},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	sub := video.NewSubsystem(reg, nil, nil)

	m := NewScreenshotManager(NewNotification())
	if err := m.Capture(sub); !errors.Is(err, video.ErrNotReady) {
		t.Errorf("Capture = %v, want ErrNotReady", err)
	}
}
