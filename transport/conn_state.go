package transport

// ConnState represents the lifecycle stage of a transport connection.
type ConnState uint32

// Connection lifecycle states.
const (
	// ConnectingState indicates a client-initiated connect awaiting completion.
	// Server-side accepted sockets never pass through this state.
	ConnectingState ConnState = iota
	// EstablishedState indicates the connection is live and exchanging packets.
	EstablishedState
	// ClosingState marks a connection scheduled for teardown whose pending
	// writes should still flush if possible.
	ClosingState
	// ClosedState is terminal. It triggers table removal and exactly one
	// Disconnected event.
	ClosedState
)

// IsConnecting returns if the state is connecting.
func (cs ConnState) IsConnecting() bool { return cs == ConnectingState }

// IsEstablished returns if the state is established.
func (cs ConnState) IsEstablished() bool { return cs == EstablishedState }

// IsClosing returns if the state is closing.
func (cs ConnState) IsClosing() bool { return cs == ClosingState }

// IsClosed returns if the state is closed.
func (cs ConnState) IsClosed() bool { return cs == ClosedState }

// String returns string representation of the state.
func (cs ConnState) String() string {
	switch cs {
	case ConnectingState:
		return "connecting"
	case EstablishedState:
		return "established"
	case ClosingState:
		return "closing"
	case ClosedState:
		return "closed"
	default:
		return "unknown"
	}
}
