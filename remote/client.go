package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Message is one decoded server message. Pixels is set for MsgFrame only and
// holds Width*Height*4 bytes of packed RGBA.
type Message struct {
	Type   MessageType
	Width  int
	Height int
	Pixels []byte
}

// Client is a minimal viewer connection, used by tools and tests.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	dec  *zstd.Decoder
	buf  []byte
	once sync.Once
}

// Dial connects to a remote framebuffer server.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	c, err := NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient reads messages from an established connection. The decoder never
// produces more than maxFrameBytes for one frame.
func NewClient(conn net.Conn) (*Client, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxFrameBytes),
		zstd.WithDecodeAllCapLimit(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create frame decoder: %w", err)
	}
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		dec:  dec,
	}, nil
}

// Next blocks until the next message arrives.
func (c *Client) Next() (Message, error) {
	h, err := readHeader(c.r)
	if err != nil {
		return Message{}, err
	}

	msg := Message{Type: h.Type, Width: int(h.Width), Height: int(h.Height)}

	var want int
	if h.Type == MsgFrame {
		size := uint64(h.Width) * uint64(h.Height) * 4
		if size == 0 || size > maxFrameBytes {
			return Message{}, fmt.Errorf("remote: frame of %dx%d exceeds limit", h.Width, h.Height)
		}
		want = int(size)
	}
	if h.Length == 0 {
		if h.Type == MsgFrame {
			return Message{}, errors.New("remote: frame without payload")
		}
		return msg, nil
	}

	if cap(c.buf) < int(h.Length) {
		c.buf = make([]byte, h.Length)
	}
	c.buf = c.buf[:h.Length]
	if _, err := io.ReadFull(c.r, c.buf); err != nil {
		return Message{}, err
	}

	if h.Type != MsgFrame {
		return msg, nil
	}

	// The cap bounds the output; a payload that inflates past it fails.
	pixels, err := c.dec.DecodeAll(c.buf, make([]byte, 0, want))
	if err != nil {
		return Message{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	if want := msg.Width * msg.Height * 4; len(pixels) != want {
		return Message{}, fmt.Errorf("frame is %d bytes, want %d", len(pixels), want)
	}
	msg.Pixels = pixels
	return msg, nil
}

// SetDeadline sets the read deadline for Next.
func (c *Client) SetDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close closes the connection. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.dec.Close()
		err = c.conn.Close()
	})
	return err
}
