package standalone

import (
	"testing"

	"github.com/SeanRamey/86Box/video"
)

func TestSharedFramebuffer_UpdateAndRead(t *testing.T) {
	sf := NewSharedFramebuffer(640 * 480 * 4)

	width, height := 320, 200
	stride := width * 4
	pixels := make([]byte, stride*height)
	for i := range pixels {
		pixels[i] = byte(i % 256)
	}

	sf.Update(video.Frame{Pixels: pixels, Stride: stride, Width: width, Height: height})

	readPixels, w, h, gen := sf.Read()
	if w != width || h != height {
		t.Fatalf("size = %dx%d, want %dx%d", w, h, width, height)
	}
	if gen != 1 {
		t.Errorf("generation = %d, want 1", gen)
	}
	if len(readPixels) != stride*height {
		t.Fatalf("len = %d, want %d", len(readPixels), stride*height)
	}
	for i := range pixels {
		if readPixels[i] != pixels[i] {
			t.Fatalf("pixel mismatch at %d: expected %d, got %d", i, pixels[i], readPixels[i])
		}
	}
}

func TestSharedFramebuffer_DropsRowPadding(t *testing.T) {
	sf := NewSharedFramebuffer(2 * 2 * 4)

	// 2x2 frame with 4 bytes of padding per row.
	stride := 12
	pixels := make([]byte, stride*2)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	sf.Update(video.Frame{Pixels: pixels, Stride: stride, Width: 2, Height: 2})

	got, _, _, _ := sf.Read()
	want := []byte{0, 1, 2, 3, 4, 5, 6, 7, 12, 13, 14, 15, 16, 17, 18, 19}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSharedFramebuffer_GrowsAndRejectsInvalid(t *testing.T) {
	sf := NewSharedFramebuffer(1 * 1 * 4)

	big := make([]byte, 8*8*4)
	big[len(big)-1] = 0xEE
	sf.Update(video.Frame{Pixels: big, Stride: 32, Width: 8, Height: 8})

	got, w, h, _ := sf.Read()
	if w != 8 || h != 8 || got[len(got)-1] != 0xEE {
		t.Errorf("after grow: %dx%d last byte 0x%X", w, h, got[len(got)-1])
	}

	gen := sf.Generation()
	sf.Update(video.Frame{Pixels: big[:4], Stride: 32, Width: 8, Height: 8})
	if sf.Generation() != gen {
		t.Error("invalid frame should be ignored")
	}
}

func TestSharedFramebuffer_Reset(t *testing.T) {
	sf := NewSharedFramebuffer(2 * 2 * 4)
	sf.Update(video.Frame{Pixels: make([]byte, 16), Stride: 8, Width: 2, Height: 2})
	gen := sf.Generation()

	sf.Reset()
	pixels, w, h, newGen := sf.Read()
	if w != 0 || h != 0 || len(pixels) != 0 {
		t.Errorf("after Reset: %dx%d len %d", w, h, len(pixels))
	}
	if newGen <= gen {
		t.Errorf("generation %d not advanced past %d", newGen, gen)
	}
}
