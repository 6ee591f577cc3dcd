package packet

import "errors"

var (
	// ErrMalformedHeader indicates that fewer than HeaderSize bytes were supplied
	// to the header decoder. This is a protocol violation when it originates from
	// the wire.
	ErrMalformedHeader = errors.New("malformed packet header, need 3 bytes")

	// ErrBodyTooLarge indicates that a marshaled body exceeds MaxBodySize and
	// cannot be represented in the 16-bit length field. This is a caller error,
	// rejected at send time.
	ErrBodyTooLarge = errors.New("packet body exceeds maximum size of 65535 bytes")

	// ErrKindRegistered indicates that a body factory was already registered for
	// the packet kind.
	ErrKindRegistered = errors.New("packet kind already registered")

	// ErrKindUnknown indicates that no body factory is registered for the packet
	// kind.
	ErrKindUnknown = errors.New("packet kind not registered")
)
