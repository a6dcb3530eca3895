package remote

import (
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"

	"github.com/SeanRamey/86Box/video"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:5900"

const (
	queueDepth   = 4
	writeTimeout = 5 * time.Second
)

// Server is a video.Backend that streams frames to TCP viewers.
//
// Init, Close, Blit, and Resize are called by the video subsystem under the
// frame lock. Paused is called from the producer goroutine without it.
type Server struct {
	addr      string
	pauseIdle bool

	mu       sync.Mutex
	listener net.Listener
	clients  map[*viewer]struct{}
	closing  bool
	width    int
	height   int

	viewers atomic.Int32
	wg      sync.WaitGroup

	enc    *zstd.Encoder
	packed []byte
}

type viewer struct {
	conn      net.Conn
	out       chan []byte
	once      sync.Once
	connected time.Time
	sent      atomic.Uint64
	frames    atomic.Uint64
}

// NewServer creates a server that listens on addr once initialised. With
// pauseIdle set, the server reports paused while no viewer is connected so
// the emulation does not run unobserved.
func NewServer(addr string, pauseIdle bool) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr:      addr,
		pauseIdle: pauseIdle,
	}
}

// Init opens the listener and starts accepting viewers.
func (s *Server) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	if s.enc == nil {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("failed to create frame encoder: %w", err)
		}
		s.enc = enc
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.clients = make(map[*viewer]struct{})
	s.closing = false

	log.Printf("Remote framebuffer listening on %s", ln.Addr())

	s.wg.Add(1)
	go s.acceptLoop(ln)

	return nil
}

// Addr returns the bound listen address, or nil when closed.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Viewers returns the number of connected viewers.
func (s *Server) Viewers() int {
	return int(s.viewers.Load())
}

// Close disconnects all viewers and stops listening. Safe to call when not
// open.
func (s *Server) Close() {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.listener.Close()
	s.listener = nil
	clients := make([]*viewer, 0, len(s.clients))
	for v := range s.clients {
		clients = append(clients, v)
	}
	s.mu.Unlock()

	for _, v := range clients {
		s.drop(v)
	}
	s.wg.Wait()
}

// Blit compresses the frame once and queues it for every viewer. A viewer
// whose queue is full misses the frame.
func (s *Server) Blit(f video.Frame) {
	if s.viewers.Load() == 0 {
		return
	}

	s.packed = packRows(s.packed, f.Pixels, f.Stride, f.Width, f.Height)
	payload := s.enc.EncodeAll(s.packed, nil)
	msg := encodeMessage(MsgFrame, f.Width, f.Height, payload)

	s.broadcast(msg)
}

// Resize announces the new guest screen size to viewers.
func (s *Server) Resize(width, height int) {
	s.mu.Lock()
	s.width = width
	s.height = height
	s.mu.Unlock()

	s.broadcast(encodeMessage(MsgResize, width, height, nil))
}

// Paused reports whether emulation should hold because nobody is watching.
func (s *Server) Paused() bool {
	return s.pauseIdle && s.viewers.Load() == 0
}

func (s *Server) broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for v := range s.clients {
		select {
		case v.out <- msg:
		default:
		}
	}
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return
			}
			log.Printf("Remote accept error: %v", err)
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}
		s.register(conn)
	}
}

func (s *Server) register(conn net.Conn) {
	v := &viewer{
		conn:      conn,
		out:       make(chan []byte, queueDepth),
		connected: time.Now(),
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[v] = struct{}{}
	v.out <- encodeMessage(MsgResize, s.width, s.height, nil)
	s.mu.Unlock()

	s.viewers.Add(1)
	log.Printf("Remote viewer connected: %s", conn.RemoteAddr())

	s.wg.Add(2)
	go s.writeLoop(v)
	go s.readLoop(v)
}

func (s *Server) writeLoop(v *viewer) {
	defer s.wg.Done()
	for msg := range v.out {
		v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		n, err := v.conn.Write(msg)
		v.sent.Add(uint64(n))
		if err != nil {
			s.drop(v)
			// Drain so broadcast never blocks on a dead viewer.
			for range v.out {
			}
			return
		}
		if MessageType(msg[4]) == MsgFrame {
			v.frames.Add(1)
		}
	}
}

// readLoop discards viewer input; it exists to notice disconnects promptly.
func (s *Server) readLoop(v *viewer) {
	defer s.wg.Done()
	io.Copy(io.Discard, v.conn)
	s.drop(v)
}

func (s *Server) drop(v *viewer) {
	v.once.Do(func() {
		s.mu.Lock()
		delete(s.clients, v)
		close(v.out)
		s.mu.Unlock()

		v.conn.Close()
		s.viewers.Add(-1)
		log.Printf("Remote viewer disconnected: %s (%s frames, %s sent, connected %s)",
			v.conn.RemoteAddr(),
			humanize.Comma(int64(v.frames.Load())),
			humanize.Bytes(v.sent.Load()),
			humanize.RelTime(v.connected, time.Now(), "", ""))
	})
}
