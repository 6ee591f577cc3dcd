package transport

import "errors"

var (
	// ErrConfigNil indicates that a nil Config was provided.
	ErrConfigNil = errors.New("config is nil")

	// ErrTableFull indicates that inserting a connection would exceed the
	// configured capacity. The new socket is closed and a ConnectionRejected
	// event is emitted; the server keeps running.
	ErrTableFull = errors.New("connection table full")

	// ErrConnectionNotFound indicates that no live connection is registered for
	// the given token.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrBufferLimitExceeded indicates that a peer exceeded the configured
	// pending-bytes ceiling, either by flooding the read buffer or by declaring
	// a frame that can never fit it. The connection is force-closed.
	ErrBufferLimitExceeded = errors.New("pending read bytes exceed configured limit")

	// ErrWriteQueueFull indicates that queuing an outbound frame would exceed
	// the configured write-queue byte ceiling. The stalled connection is
	// force-closed.
	ErrWriteQueueFull = errors.New("write queue bytes exceed configured limit")

	// ErrClientClosed indicates that the client connection has reached its
	// terminal state and can no longer send.
	ErrClientClosed = errors.New("client connection closed")
)
