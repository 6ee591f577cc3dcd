package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/arloliu/go-netframe/internal/pool"
	"github.com/arloliu/go-netframe/internal/queue"
	"github.com/arloliu/go-netframe/logger"
	"github.com/arloliu/go-netframe/packet"
)

// outFrame is one serialized packet pending transmission. The data slice may be
// shared between connections on fan-out sends; the write cursor is per-target.
type outFrame struct {
	data   []byte
	offset int
}

// Connection owns one socket, its read-accumulation buffer, its outbound frame
// queue, and its lifecycle state. The engine owns Connections exclusively;
// callers only ever see tokens.
type Connection struct {
	token      Token
	conn       net.Conn
	remoteAddr net.Addr
	state      ConnState
	logger     logger.Logger

	readBuf          netBuffer
	writeQueue       *queue.Queue[*outFrame]
	queuedWriteBytes int

	// flushTicks counts ticks spent in ClosingState waiting for the write
	// queue to drain, bounded by Config.CloseFlushTicks.
	flushTicks int

	maxPendingBytes    int
	maxWriteQueueBytes int
}

func newConnection(tok Token, sock net.Conn, state ConnState, cfg *Config) *Connection {
	if tcp, ok := sock.(*net.TCPConn); ok {
		// Latency over throughput for a real-time transport.
		_ = tcp.SetNoDelay(true)
	}

	return &Connection{
		token:              tok,
		conn:               sock,
		remoteAddr:         sock.RemoteAddr(),
		state:              state,
		logger:             cfg.logger.With("token", uint32(tok)),
		writeQueue:         queue.New[*outFrame](8),
		maxPendingBytes:    cfg.maxPendingBytes,
		maxWriteQueueBytes: cfg.maxWriteQueueBytes,
	}
}

// Token returns the stable identifier of the connection.
func (c *Connection) Token() Token { return c.token }

// RemoteAddr returns the remote address of the connection.
func (c *Connection) RemoteAddr() net.Addr { return c.remoteAddr }

// State returns the current lifecycle state of the connection.
func (c *Connection) State() ConnState { return c.state }

// readAvailable drains currently-ready bytes from the socket into the read
// buffer, stopping at the tick deadline.
//
// It returns the number of bytes read and whether the peer closed the
// connection. A non-nil error reports a pending-bytes ceiling violation; plain
// socket failures are mapped to peerClosed instead, since both end the same
// way for one connection.
func (c *Connection) readAvailable(deadline time.Time) (n int, peerClosed bool, err error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, true, nil
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	scratch := *buf
	for {
		nr, rerr := c.conn.Read(scratch)
		if nr > 0 {
			if c.readBuf.len()+nr > c.maxPendingBytes {
				return n, false, fmt.Errorf("%w: %d buffered, limit %d",
					ErrBufferLimitExceeded, c.readBuf.len()+nr, c.maxPendingBytes)
			}
			c.readBuf.write(scratch[:nr])
			n += nr
		}

		if rerr != nil {
			if errors.Is(rerr, os.ErrDeadlineExceeded) {
				// Not ready anymore; whatever arrived this tick is buffered.
				return n, false, nil
			}
			if !errors.Is(rerr, io.EOF) && !errors.Is(rerr, net.ErrClosed) {
				c.logger.Debug("socket read failed", "error", rerr)
			}

			return n, true, nil
		}

		if nr < len(scratch) {
			// A short read means the socket buffer is drained; a full scratch
			// buffer suggests more data is pending, so go around again.
			return n, false, nil
		}
	}
}

// collectPackets runs the framing state machine over the read buffer, emitting
// every complete packet in wire order. The implicit states are driven by the
// buffered length: fewer than HeaderSize bytes awaits a header, fewer than the
// declared frame length awaits the body, otherwise a packet is consumed and
// the loop continues on the remainder.
//
// It returns ErrBufferLimitExceeded when a decoded header declares a frame
// that can never fit the pending-bytes ceiling; waiting for it to complete
// would grow the buffer without bound.
func (c *Connection) collectPackets(emit func(packet.Packet)) error {
	for {
		buffered := c.readBuf.bytes()
		if len(buffered) < packet.HeaderSize {
			return nil
		}

		header, err := packet.DecodeHeader(buffered)
		if err != nil {
			// Unreachable given the length gate above; treat as a protocol
			// violation if it ever fires.
			return err
		}

		frameLen := packet.HeaderSize + int(header.Length)
		if frameLen > c.maxPendingBytes {
			return fmt.Errorf("%w: declared frame of %d bytes, limit %d",
				ErrBufferLimitExceeded, frameLen, c.maxPendingBytes)
		}

		if len(buffered) < frameLen {
			return nil
		}

		body := make([]byte, header.Length)
		copy(body, buffered[packet.HeaderSize:frameLen])
		c.readBuf.consume(frameLen)

		emit(packet.Packet{Header: header, Body: body})
	}
}

// enqueueFrame appends a serialized frame to the write queue.
// It returns ErrWriteQueueFull when the queued-bytes ceiling would be exceeded.
func (c *Connection) enqueueFrame(frame []byte) error {
	if c.queuedWriteBytes+len(frame) > c.maxWriteQueueBytes {
		return fmt.Errorf("%w: %d queued, limit %d",
			ErrWriteQueueFull, c.queuedWriteBytes+len(frame), c.maxWriteQueueBytes)
	}

	c.writeQueue.Enqueue(&outFrame{data: frame})
	c.queuedWriteBytes += len(frame)

	return nil
}

// flush writes as many queued bytes as the socket accepts before the tick
// deadline. Partial writes persist their cursor across ticks; bytes are never
// dropped or duplicated.
//
// It returns the bytes written this tick and whether the socket failed.
func (c *Connection) flush(deadline time.Time) (written int, peerClosed bool) {
	if c.writeQueue.IsEmpty() {
		return 0, false
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return 0, true
	}

	for {
		frame, ok := c.writeQueue.Peek()
		if !ok {
			return written, false
		}

		n, err := c.conn.Write(frame.data[frame.offset:])
		frame.offset += n
		written += n
		c.queuedWriteBytes -= n

		if frame.offset == len(frame.data) {
			c.writeQueue.Dequeue()
		}

		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// Socket stopped accepting bytes this tick; cursor persists.
				return written, false
			}
			c.logger.Debug("socket write failed", "error", err)

			return written, true
		}
	}
}

// hasPendingWrites reports whether any outbound bytes are still queued.
func (c *Connection) hasPendingWrites() bool {
	return !c.writeQueue.IsEmpty()
}

// close closes the underlying socket and marks the state terminal. Idempotent.
func (c *Connection) close() {
	if c.state == ClosedState {
		return
	}
	c.state = ClosedState
	c.readBuf.reset()
	_ = c.conn.Close()
}
