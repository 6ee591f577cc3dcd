// Package packet defines the wire format for go-netframe messages and the
// capability interface application message types implement.
//
// Wire format per packet:
//
//	[body length: uint16 big-endian][kind: uint8][body: length bytes]
//
// A packet is 3 + length bytes in total with no padding and no checksum;
// integrity is delegated to TCP. A zero-length body is valid and carries only
// the kind identifier.
//
// The Body interface is the contract a caller implements per message type:
// report a kind identifier, marshal to bytes, unmarshal from bytes, and clone
// itself for fan-out sends. The transport engine only ever stores opaque byte
// payloads tagged with kinds; recovering the concrete type is the caller's
// job, typically through a Registry keyed by kind.
package packet
