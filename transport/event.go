package transport

import (
	"fmt"
	"net"
)

// EventType categorizes the events produced by a tick.
type EventType uint8

const (
	// EventConnected indicates a connection became established. Token and Addr
	// are set.
	EventConnected EventType = iota + 1
	// EventDisconnected indicates a connection reached its terminal state and
	// was removed. Token is set. Emitted exactly once per connection.
	EventDisconnected
	// EventConnectionRejected indicates an accept was refused over capacity or
	// accept-rate policy. Addr is set; no token was ever allocated. The rejected
	// socket is closed before the event is queued.
	EventConnectionRejected
	// EventReceivedPacket indicates a complete packet was assembled from the
	// connection's byte stream. Token and Bytes (full frame length) are set.
	EventReceivedPacket
	// EventSentPacket indicates outbound bytes were written on a connection this
	// tick. Token and Bytes (bytes written this tick) are set.
	EventSentPacket
)

// String returns string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectionRejected:
		return "connection-rejected"
	case EventReceivedPacket:
		return "received-packet"
	case EventSentPacket:
		return "sent-packet"
	default:
		return "unknown"
	}
}

// Event is a transient notification produced by Tick, valid only for the tick
// that produced it.
//
// Within one tick, events are ordered: accepts and rejects first, then
// per-connection events in ascending token order with reads before writes
// before disconnects.
type Event struct {
	// Type is the event category.
	Type EventType
	// Token identifies the connection. InvalidToken for ConnectionRejected.
	Token Token
	// Addr is the remote address for Connected and ConnectionRejected events.
	Addr net.Addr
	// Bytes is the byte count for ReceivedPacket and SentPacket events.
	Bytes int
}

// String returns a compact human-readable representation for logging.
func (e Event) String() string {
	switch e.Type {
	case EventConnected, EventConnectionRejected:
		return fmt.Sprintf("%s token=%d addr=%v", e.Type, e.Token, e.Addr)
	case EventReceivedPacket, EventSentPacket:
		return fmt.Sprintf("%s token=%d bytes=%d", e.Type, e.Token, e.Bytes)
	default:
		return fmt.Sprintf("%s token=%d", e.Type, e.Token)
	}
}
