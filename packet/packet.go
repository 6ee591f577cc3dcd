package packet

import (
	"encoding"
)

// Body is the capability interface an application message type implements to be
// carried as a packet body.
//
// Implementations must be self-contained values: Clone is used when one send
// fans out to multiple recipients, and UnmarshalBinary is invoked on a fresh
// value produced by a Registry factory.
type Body interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	// Kind returns the packet kind identifier for this message type.
	Kind() uint8

	// Clone creates a deep copy of the body, allowing modifications to the clone
	// without affecting the original.
	Clone() Body
}

// Packet is a decoded frame: a header and the opaque body bytes it described.
//
// Packets are produced by the framing state machine on receipt. The body slice
// is owned by the receiver and remains valid after the producing tick.
type Packet struct {
	Header Header
	Body   []byte
}

// Kind returns the packet kind identifier from the header.
func (p Packet) Kind() uint8 {
	return p.Header.Kind
}

// Marshal serializes a body into a complete wire frame, header included.
//
// It returns ErrBodyTooLarge if the marshaled body exceeds MaxBodySize, or the
// body's own marshaling error.
func Marshal(body Body) ([]byte, error) {
	payload, err := body.MarshalBinary()
	if err != nil {
		return nil, err
	}

	if len(payload) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}

	frame := make([]byte, HeaderSize+len(payload))
	Header{Length: uint16(len(payload)), Kind: body.Kind()}.Put(frame)
	copy(frame[HeaderSize:], payload)

	return frame, nil
}
