package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/go-netframe/internal/queue"
	"github.com/arloliu/go-netframe/logger"
	"github.com/arloliu/go-netframe/packet"
)

// clientToken identifies the client's single connection in events.
const clientToken Token = 1

type dialResult struct {
	conn net.Conn
	err  error
}

// Client owns a single connection to a remote server, driven by the same
// per-tick machinery as the server.
type Client struct {
	id     uuid.UUID
	cfg    *Config
	logger logger.Logger

	// state tracks the client lifecycle. It starts Connecting; the dial result
	// is polled from Tick and surfaces as the first Connected event, or as a
	// terminal Closed state on failure.
	state  ConnState
	conn   *Connection
	dialCh chan dialResult
	done   chan struct{}
	err    error

	// pending buffers frames queued before the connection is established.
	pending      [][]byte
	pendingBytes int

	incoming *queue.Queue[packet.Packet]
	events   []Event
	metrics  Metrics
}

// Connect starts establishing a connection to the configured remote server.
//
// The dial runs on a one-shot goroutine bounded by the configured connect
// timeout and the given context; Connect itself returns immediately with the
// client in Connecting state. Completion surfaces as the first Connected event
// from a later Tick, failure as a Disconnected event plus a terminal error
// available from Err.
func Connect(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	id := uuid.New()
	c := &Client{
		id:       id,
		cfg:      cfg,
		logger:   cfg.logger.With("client_id", id.String()),
		state:    ConnectingState,
		dialCh:   make(chan dialResult),
		done:     make(chan struct{}),
		incoming: queue.New[packet.Packet](16),
	}

	// The dial handoff is a rendezvous: if the client is closed before the
	// result is polled, the goroutine closes the socket instead of handing it
	// over, so no descriptor outlives the client.
	done := c.done
	go func() {
		dialer := net.Dialer{Timeout: cfg.connectTimeout}
		sock, err := dialer.DialContext(ctx, "tcp", cfg.Addr())

		select {
		case c.dialCh <- dialResult{conn: sock, err: err}:
		case <-done:
			if sock != nil {
				_ = sock.Close()
			}
		}
	}()

	c.logger.Info("connecting", "addr", cfg.Addr())

	return c, nil
}

// ID returns the unique instance identifier bound into the client's logs.
func (c *Client) ID() uuid.UUID { return c.id }

// State returns the current lifecycle state of the client connection.
func (c *Client) State() ConnState {
	if c.conn != nil {
		return c.conn.state
	}

	return c.state
}

// IsDisconnected returns true once the client has reached its terminal state.
func (c *Client) IsDisconnected() bool { return c.State().IsClosed() }

// Err returns the terminal connection error, if any. A nil error with a
// Closed state means the peer or the caller closed the connection normally.
func (c *Client) Err() error { return c.err }

// Metrics returns the client's atomic counters. Safe to read concurrently.
func (c *Client) Metrics() *Metrics { return &c.metrics }

// Tick runs one bounded unit of network work and returns the resulting
// events, mirroring Server.Tick for a single connection. Once the client is
// disconnected Tick returns no events.
//
// The returned slice is reused on the next Tick call; it is valid only until
// then.
func (c *Client) Tick() []Event {
	c.events = c.events[:0]
	deadline := time.Now().Add(c.cfg.pollInterval)

	if c.state.IsConnecting() {
		c.pollDial()
	}

	if c.conn != nil {
		c.serviceConn(deadline)
	}

	return c.events
}

// DrainIncomingPackets removes and returns all packets assembled since the
// previous drain, in wire order.
func (c *Client) DrainIncomingPackets() []packet.Packet {
	return c.incoming.Drain()
}

// Send serializes the body and queues the frame for the server. Frames queued
// while the connection is still being established are flushed after it comes
// up, in order.
//
// It returns ErrClientClosed once the client is disconnected, ErrWriteQueueFull
// when the outbound ceiling would be exceeded before the dial completes, or a
// marshaling error. Delivery is attempted while established; there is no
// stronger guarantee.
func (c *Client) Send(body packet.Body) error {
	frame, err := packet.Marshal(body)
	if err != nil {
		return err
	}

	switch {
	case c.conn != nil && !c.conn.state.IsClosed():
		if err := c.conn.enqueueFrame(frame); err != nil {
			return err
		}
	case c.state.IsConnecting():
		if c.pendingBytes+len(frame) > c.cfg.maxWriteQueueBytes {
			return fmt.Errorf("%w: %d queued before connect, limit %d",
				ErrWriteQueueFull, c.pendingBytes+len(frame), c.cfg.maxWriteQueueBytes)
		}
		c.pending = append(c.pending, frame)
		c.pendingBytes += len(frame)
	default:
		return ErrClientClosed
	}

	c.metrics.incSentPacketCount()

	return nil
}

// Close tears the connection down immediately without flushing. It is safe to
// call in any state; after Close the client is terminal and emits no further
// events.
func (c *Client) Close() error {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	c.state = ClosedState
	c.pending = nil
	c.logger.Info("client closed")

	return nil
}

// pollDial checks the dial result without blocking.
func (c *Client) pollDial() {
	select {
	case res := <-c.dialCh:
		if res.err != nil {
			c.err = fmt.Errorf("connect %s: %w", c.cfg.Addr(), res.err)
			c.state = ClosedState
			c.logger.Error("connect failed", "error", res.err)
			c.events = append(c.events, Event{Type: EventDisconnected, Token: clientToken})

			return
		}

		c.conn = newConnection(clientToken, res.conn, EstablishedState, c.cfg)
		c.conn.logger = c.logger
		c.state = EstablishedState
		c.metrics.incAcceptCount()
		c.logger.Info("connected", "addr", c.conn.RemoteAddr().String())
		c.events = append(c.events, Event{Type: EventConnected, Token: clientToken, Addr: c.conn.RemoteAddr()})

		// Frames queued while connecting flush on this same tick, in order.
		for _, frame := range c.pending {
			if err := c.conn.enqueueFrame(frame); err != nil {
				c.logger.Error("write queue overflow, closing connection", "error", err)
				c.conn.close()
				break
			}
		}
		c.pending = nil
		c.pendingBytes = 0
	default:
	}
}

// serviceConn mirrors the server's per-connection tick for the single client
// connection: read path, write path, then lifecycle finalization.
func (c *Client) serviceConn(deadline time.Time) {
	conn := c.conn

	switch {
	case conn.state.IsEstablished():
		c.serviceRead(deadline)
	case conn.state.IsClosing():
		conn.flushTicks++
	}

	if conn.state.IsEstablished() || conn.state.IsClosing() {
		c.serviceWrite(deadline)
	}

	if conn.state.IsClosing() && (!conn.hasPendingWrites() || conn.flushTicks > c.cfg.closeFlushTicks) {
		conn.close()
	}

	if conn.state.IsClosed() {
		c.finalize()
	}
}

func (c *Client) serviceRead(deadline time.Time) {
	conn := c.conn

	n, peerClosed, err := conn.readAvailable(deadline)
	if err != nil {
		c.logger.Error("closing connection", "error", err)
		conn.close()

		return
	}

	if n > 0 {
		ferr := conn.collectPackets(func(p packet.Packet) {
			frameLen := packet.HeaderSize + len(p.Body)
			c.incoming.Enqueue(p)
			c.events = append(c.events, Event{Type: EventReceivedPacket, Token: clientToken, Bytes: frameLen})
			c.metrics.incRecvPacketCount()
			c.metrics.addRecvByteCount(frameLen)
		})
		if ferr != nil {
			c.logger.Error("protocol violation, closing connection", "error", ferr)
			conn.close()

			return
		}
	}

	if peerClosed {
		conn.close()
	}
}

func (c *Client) serviceWrite(deadline time.Time) {
	conn := c.conn

	written, peerClosed := conn.flush(deadline)
	if written > 0 {
		c.events = append(c.events, Event{Type: EventSentPacket, Token: clientToken, Bytes: written})
		c.metrics.addSentByteCount(written)
	}

	if peerClosed {
		conn.close()
	}
}

// finalize emits the single Disconnected event and releases the connection.
func (c *Client) finalize() {
	c.state = ClosedState
	c.conn = nil
	c.metrics.incDisconnectCount()
	c.logger.Info("disconnected from server")
	c.events = append(c.events, Event{Type: EventDisconnected, Token: clientToken})
}
