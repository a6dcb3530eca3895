package remote

import (
	"bytes"
	"testing"
	"time"

	"github.com/SeanRamey/86Box/video"
)

func startServer(t *testing.T, pauseIdle bool) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", pauseIdle)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, s *Server) *Client {
	t.Helper()
	c, err := Dial(s.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	c.SetDeadline(time.Now().Add(2 * time.Second))
	return c
}

func TestServer_PausedWithoutViewers(t *testing.T) {
	s := startServer(t, true)
	if !s.Paused() {
		t.Fatal("expected paused with no viewers")
	}

	c := dial(t, s)
	waitFor(t, "viewer", func() bool { return s.Viewers() == 1 })
	if s.Paused() {
		t.Error("expected running with a viewer connected")
	}

	c.Close()
	waitFor(t, "disconnect", func() bool { return s.Viewers() == 0 })
	if !s.Paused() {
		t.Error("expected paused after the viewer left")
	}
}

func TestServer_NeverPausesWhenDisabled(t *testing.T) {
	s := startServer(t, false)
	if s.Paused() {
		t.Error("pauseIdle=false should never pause")
	}
}

func TestServer_ResizeAndFrame(t *testing.T) {
	s := startServer(t, true)
	s.Resize(4, 2)

	c := dial(t, s)

	msg, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Type != MsgResize || msg.Width != 4 || msg.Height != 2 {
		t.Fatalf("first message = %v %dx%d, want resize 4x2", msg.Type, msg.Width, msg.Height)
	}

	waitFor(t, "viewer", func() bool { return s.Viewers() == 1 })

	// Padded stride: 4 pixels wide, 24 bytes per row.
	stride := 24
	src := make([]byte, stride*2)
	for i := range src {
		src[i] = byte(i)
	}
	s.Blit(video.Frame{Pixels: src, Stride: stride, Width: 4, Height: 2})

	msg, err = c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Type != MsgFrame {
		t.Fatalf("type = %v, want frame", msg.Type)
	}

	want := append(append([]byte{}, src[0:16]...), src[24:40]...)
	if !bytes.Equal(msg.Pixels, want) {
		t.Errorf("pixels = %v, want %v", msg.Pixels, want)
	}
}

func TestServer_CloseDisconnectsViewers(t *testing.T) {
	s := NewServer("127.0.0.1:0", true)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	c := dial(t, s)
	if _, err := c.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	if _, err := c.Next(); err == nil {
		t.Error("expected read error after server close")
	}
	if s.Addr() != nil {
		t.Error("Addr should be nil after Close")
	}

	// Close is idempotent and Init reopens.
	s.Close()
	if err := s.Init(); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	s.Close()
}

func TestServer_BlitWithoutViewers(t *testing.T) {
	s := NewServer("127.0.0.1:0", true)
	// Not initialised and nobody connected: dropped silently.
	s.Blit(video.Frame{Pixels: make([]byte, 16), Stride: 16, Width: 4, Height: 1})
	s.Close()
}

func TestServer_InitListenError(t *testing.T) {
	a := startServer(t, true)

	b := NewServer(a.Addr().String(), true)
	if err := b.Init(); err == nil {
		b.Close()
		t.Fatal("expected listen error on a busy address")
	}
}

func TestServer_ImplementsCapabilities(t *testing.T) {
	var b video.Backend = NewServer("", true)
	if _, ok := b.(video.Resizer); !ok {
		t.Error("missing Resizer")
	}
	if _, ok := b.(video.Pauser); !ok {
		t.Error("missing Pauser")
	}
	if _, ok := b.(video.Enabler); ok {
		t.Error("unexpected Enabler")
	}
}
