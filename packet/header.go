package packet

import "encoding/binary"

const (
	// HeaderSize is the fixed wire size of a packet header:
	// 2 bytes for the body length, 1 byte for the packet kind.
	HeaderSize = 3

	// MaxBodySize is the largest body length representable in the header.
	MaxBodySize = 65535
)

// Header is the fixed 3-byte structure prefixed to every packet body.
type Header struct {
	// Length is the exact byte length of the body that follows the header.
	Length uint16
	// Kind identifies the application message type carried in the body.
	Kind uint8
}

// Encode serializes the header into its 3-byte wire representation.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	h.Put(buf)

	return buf
}

// Put writes the header into the first HeaderSize bytes of buf.
// buf must be at least HeaderSize bytes long.
func (h Header) Put(buf []byte) {
	binary.BigEndian.PutUint16(buf[:2], h.Length)
	buf[2] = h.Kind
}

// DecodeHeader parses a header from the first HeaderSize bytes of data.
// It returns ErrMalformedHeader when fewer than HeaderSize bytes are supplied.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrMalformedHeader
	}

	return Header{
		Length: binary.BigEndian.Uint16(data[:2]),
		Kind:   data[2],
	}, nil
}
