// Package remote implements a network framebuffer renderer. Frames are
// published to every connected viewer as zstd-compressed RGBA; the host
// window is hidden while it is active.
package remote

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MessageType identifies a wire message.
type MessageType uint8

const (
	// MsgResize announces a new guest screen size. No payload.
	MsgResize MessageType = 1
	// MsgFrame carries one frame: width*height*4 bytes of RGBA, rows packed
	// without padding, zstd-compressed.
	MsgFrame MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MsgResize:
		return "resize"
	case MsgFrame:
		return "frame"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

var magic = [4]byte{'8', '6', 'F', 'B'}

const headerSize = 20

// maxPayload bounds the compressed bytes of one message.
const maxPayload = 64 << 20

// maxFrameBytes bounds a decoded frame, width*height*4, so neither a corrupt
// header nor a highly compressible payload can make a viewer allocate
// without limit.
const maxFrameBytes = 64 << 20

// ErrBadMagic is returned when a stream does not start with a valid header.
var ErrBadMagic = errors.New("remote: bad message magic")

// Header precedes every message on the wire. All fields are big-endian.
//
//	[0:4]   magic "86FB"
//	[4]     message type
//	[5:8]   reserved, zero
//	[8:12]  width
//	[12:16] height
//	[16:20] payload length
type Header struct {
	Type   MessageType
	Width  uint32
	Height uint32
	Length uint32
}

func (h Header) marshal(dst []byte) {
	copy(dst[0:4], magic[:])
	dst[4] = byte(h.Type)
	dst[5], dst[6], dst[7] = 0, 0, 0
	binary.BigEndian.PutUint32(dst[8:12], h.Width)
	binary.BigEndian.PutUint32(dst[12:16], h.Height)
	binary.BigEndian.PutUint32(dst[16:20], h.Length)
}

func readHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	if [4]byte(buf[0:4]) != magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Type:   MessageType(buf[4]),
		Width:  binary.BigEndian.Uint32(buf[8:12]),
		Height: binary.BigEndian.Uint32(buf[12:16]),
		Length: binary.BigEndian.Uint32(buf[16:20]),
	}
	if h.Length > maxPayload {
		return Header{}, fmt.Errorf("remote: payload of %d bytes exceeds limit", h.Length)
	}
	return h, nil
}

// encodeMessage builds a complete wire message.
func encodeMessage(t MessageType, width, height int, payload []byte) []byte {
	msg := make([]byte, headerSize+len(payload))
	Header{
		Type:   t,
		Width:  uint32(width),
		Height: uint32(height),
		Length: uint32(len(payload)),
	}.marshal(msg)
	copy(msg[headerSize:], payload)
	return msg
}

// packRows copies height rows of width*4 bytes from a strided buffer into
// dst, growing it as needed.
func packRows(dst, src []byte, stride, width, height int) []byte {
	rowBytes := width * 4
	n := rowBytes * height
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	if stride == rowBytes {
		copy(dst, src[:n])
		return dst
	}
	for y := 0; y < height; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*stride:y*stride+rowBytes])
	}
	return dst
}
