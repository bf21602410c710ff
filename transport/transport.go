// Package transport implements the length-prefixed framing the OEF wire
// protocol runs over: each frame is a 4-byte little-endian length header
// followed by that many bytes of protobuf-encoded body.
//
// Grounded on cluster/agent.go's write() pump (net.Buffers header+payload
// writes) and proxy.py's _send/_receive (struct.pack("I", len) header,
// loop-until-full body read).
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

// DefaultMaxFrameSize bounds a single frame's body, guarding against a
// corrupt or hostile length header driving an unbounded allocation.
const DefaultMaxFrameSize = 16 * 1024 * 1024

var (
	// ErrEndOfStream is returned when the peer closes the connection, either
	// cleanly between frames or in the middle of one.
	ErrEndOfStream = errors.New("transport: end of stream")
	// ErrFrameTooLarge is returned when a frame's length exceeds the
	// Transport's maximum frame size.
	ErrFrameTooLarge = errors.New("transport: frame exceeds maximum size")
)

// Transport frames a net.Conn with 4-byte little-endian length-prefixed
// messages.
type Transport struct {
	conn         net.Conn
	maxFrameSize int
}

// New wraps conn for framed send/receive. maxFrameSize <= 0 uses
// DefaultMaxFrameSize.
func New(conn net.Conn, maxFrameSize int) *Transport {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &Transport{conn: conn, maxFrameSize: maxFrameSize}
}

// Conn returns the underlying connection.
func (t *Transport) Conn() net.Conn { return t.conn }

// Send writes one length-prefixed frame.
func (t *Transport) Send(body []byte) error {
	if len(body) > t.maxFrameSize {
		return ErrFrameTooLarge
	}
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))
	buffers := net.Buffers{header[:], body}
	_, err := buffers.WriteTo(t.conn)
	return err
}

// Receive reads one length-prefixed frame. A header or body read that ends
// before it is full — a clean close at a frame boundary (io.EOF) or a peer
// vanishing mid-frame (io.ErrUnexpectedEOF) — both return ErrEndOfStream.
func (t *Transport) Receive() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(t.conn, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrEndOfStream
		}
		return nil, fmt.Errorf("transport: read header: %w", err)
	}
	size := binary.LittleEndian.Uint32(header[:])
	if int(size) > t.maxFrameSize {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(t.conn, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrEndOfStream
		}
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	return body, nil
}

// Close closes the underlying connection.
func (t *Transport) Close() error {
	return t.conn.Close()
}
