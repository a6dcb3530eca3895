package remote

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

// pipeClient returns a client reading msg from an in-memory connection.
func pipeClient(t *testing.T, msg []byte) *Client {
	t.Helper()
	server, conn := net.Pipe()
	t.Cleanup(func() { server.Close() })

	go server.Write(msg)

	c, err := NewClient(conn)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	c.SetDeadline(time.Now().Add(2 * time.Second))
	return c
}

func TestClient_DecodesFrame(t *testing.T) {
	pixels := []byte{1, 2, 3, 255, 4, 5, 6, 255}
	c := pipeClient(t, encodeMessage(MsgFrame, 2, 1, compress(t, pixels)))

	msg, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Type != MsgFrame || msg.Width != 2 || msg.Height != 1 {
		t.Errorf("msg = %v %dx%d", msg.Type, msg.Width, msg.Height)
	}
	if !bytes.Equal(msg.Pixels, pixels) {
		t.Errorf("pixels = %v, want %v", msg.Pixels, pixels)
	}
}

func TestClient_RejectsBadFrames(t *testing.T) {
	tests := []struct {
		name string
		msg  func(t *testing.T) []byte
	}{
		{
			name: "declared size over limit",
			msg: func(t *testing.T) []byte {
				return encodeMessage(MsgFrame, 65536, 65536, []byte{0})
			},
		},
		{
			name: "payload inflates past declared size",
			msg: func(t *testing.T) []byte {
				return encodeMessage(MsgFrame, 1, 1, compress(t, make([]byte, 16<<20)))
			},
		},
		{
			name: "payload shorter than declared size",
			msg: func(t *testing.T) []byte {
				return encodeMessage(MsgFrame, 4, 4, compress(t, make([]byte, 8)))
			},
		},
		{
			name: "empty frame",
			msg: func(t *testing.T) []byte {
				return encodeMessage(MsgFrame, 0, 0, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := pipeClient(t, tt.msg(t))
			msg, err := c.Next()
			if err == nil {
				t.Fatalf("Next succeeded with %d pixel bytes, want error", len(msg.Pixels))
			}
			if cap(msg.Pixels) > maxFrameBytes {
				t.Errorf("allocated %d bytes", cap(msg.Pixels))
			}
		})
	}
}

func TestClient_ResizeHasNoPayload(t *testing.T) {
	c := pipeClient(t, encodeMessage(MsgResize, 800, 600, nil))
	msg, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Type != MsgResize || msg.Width != 800 || msg.Height != 600 || msg.Pixels != nil {
		t.Errorf("msg = %+v", msg)
	}
}
