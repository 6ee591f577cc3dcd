package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/go-netframe/internal/queue"
	"github.com/arloliu/go-netframe/logger"
	"github.com/arloliu/go-netframe/packet"
)

// Incoming is one received packet tagged with the token of the connection that
// produced it.
type Incoming struct {
	Token  Token
	Packet packet.Packet
}

// Server hosts a listening socket and a table of client connections, all
// driven from a single-threaded tick loop.
type Server struct {
	id       uuid.UUID
	cfg      *Config
	logger   logger.Logger
	listener *net.TCPListener
	table    *ConnectionTable
	incoming *queue.Queue[Incoming]
	events   []Event
	metrics  Metrics
}

// Host binds a listening socket and begins hosting a server with the given
// configuration. It fails when the address cannot be bound (address in use,
// permission denied, invalid address).
//
// The returned server performs no I/O until the first Tick call.
func Host(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.Addr(), err)
	}

	id := uuid.New()
	srv := &Server{
		id:       id,
		cfg:      cfg,
		logger:   cfg.logger.With("server_id", id.String()),
		listener: ln.(*net.TCPListener),
		table:    NewConnectionTable(cfg.capacity),
		incoming: queue.New[Incoming](64),
	}

	srv.logger.Info("server hosting", "addr", ln.Addr().String(), "capacity", cfg.capacity)

	return srv, nil
}

// ID returns the unique instance identifier bound into the server's logs.
func (s *Server) ID() uuid.UUID { return s.id }

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// NumConnections returns the current number of live connections.
func (s *Server) NumConnections() int { return s.table.Len() }

// Capacity returns the maximum number of simultaneous connections.
func (s *Server) Capacity() int { return s.table.Capacity() }

// Metrics returns the server's atomic counters. Safe to read concurrently.
func (s *Server) Metrics() *Metrics { return &s.metrics }

// Tick runs one bounded unit of network work and returns the resulting events.
//
// One tick accepts all pending connections (rejecting over capacity), drives
// every connection's read path through the framing state machine, flushes
// queued outbound bytes, and finalizes lifecycle transitions. It never blocks
// longer than the configured poll interval plus the work itself, and it never
// fails: per-connection errors become lifecycle transitions and events.
//
// The returned slice is reused on the next Tick call; it is valid only until
// then.
func (s *Server) Tick() []Event {
	s.events = s.events[:0]
	deadline := time.Now().Add(s.cfg.pollInterval)

	s.acceptPending(deadline)

	for _, tok := range s.table.Tokens() {
		conn, ok := s.table.Get(tok)
		if !ok {
			continue
		}
		s.serviceConn(conn, deadline)
	}

	return s.events
}

// DrainIncomingPackets removes and returns all packets assembled since the
// previous drain, in per-connection wire order. A second drain within the same
// tick returns nil.
func (s *Server) DrainIncomingPackets() []Incoming {
	return s.incoming.Drain()
}

// Send serializes the body once and queues the resulting frame on every
// established connection the recipient addresses. A Single recipient that does
// not resolve to a live established connection is a no-op, not an error.
//
// It returns packet.ErrBodyTooLarge for oversized bodies or the body's own
// marshaling error; queueing itself cannot fail the caller. A connection whose
// write queue overflows is force-closed and surfaces as a Disconnected event
// on a later tick.
func (s *Server) Send(recipient Recipient, body packet.Body) error {
	frame, err := packet.Marshal(body)
	if err != nil {
		return err
	}

	s.sendFrame(recipient, frame)

	return nil
}

// SendBytes queues a pre-encoded payload with the given kind, bypassing body
// marshaling. Semantics otherwise match Send.
func (s *Server) SendBytes(recipient Recipient, kind uint8, payload []byte) error {
	if len(payload) > packet.MaxBodySize {
		return packet.ErrBodyTooLarge
	}

	frame := make([]byte, packet.HeaderSize+len(payload))
	packet.Header{Length: uint16(len(payload)), Kind: kind}.Put(frame)
	copy(frame[packet.HeaderSize:], payload)

	s.sendFrame(recipient, frame)

	return nil
}

// Kick forces a connection into teardown: pending writes are flushed on a
// best-effort basis for up to CloseFlushTicks ticks, or the connection closes
// immediately when the queue is already empty. The Disconnected event follows
// on the next tick.
//
// It returns ErrConnectionNotFound for unknown tokens. Kicking a connection
// already being torn down is a no-op.
func (s *Server) Kick(tok Token) error {
	conn, ok := s.table.Get(tok)
	if !ok {
		return fmt.Errorf("%w: token %d", ErrConnectionNotFound, tok)
	}

	if conn.state.IsClosing() || conn.state.IsClosed() {
		return nil
	}

	if conn.hasPendingWrites() {
		conn.state = ClosingState
	} else {
		conn.close()
	}

	return nil
}

// Close shuts the listener and tears down every live connection without
// emitting further events.
func (s *Server) Close() error {
	err := s.listener.Close()
	for _, tok := range s.table.Tokens() {
		s.table.Remove(tok)
	}
	s.logger.Info("server closed")

	return err
}

// acceptPending drains the listener backlog, inserting accepted sockets into
// the connection table and rejecting attempts over capacity or accept rate.
func (s *Server) acceptPending(deadline time.Time) {
	if err := s.listener.SetDeadline(deadline); err != nil {
		return
	}

	for {
		sock, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("accept failed", "error", err)
			}

			return
		}

		addr := sock.RemoteAddr()

		if s.cfg.acceptLimiter != nil && !s.cfg.acceptLimiter.Allow() {
			s.reject(sock, addr, "accept rate exceeded")
			continue
		}

		conn, err := s.table.Insert(sock, s.cfg)
		if err != nil {
			s.reject(sock, addr, "server is full")
			continue
		}

		s.metrics.incAcceptCount()
		conn.logger.Info("client connected", "addr", addr.String())
		s.events = append(s.events, Event{Type: EventConnected, Token: conn.token, Addr: addr})
	}
}

// reject closes the socket before queuing the event so the descriptor cannot
// leak, then records the rejection.
func (s *Server) reject(sock net.Conn, addr net.Addr, reason string) {
	_ = sock.Close()
	s.metrics.incRejectCount()
	s.logger.Warn("connection rejected", "addr", addr.String(), "reason", reason)
	s.events = append(s.events, Event{Type: EventConnectionRejected, Addr: addr})
}

// serviceConn drives one connection for one tick: read path, write path, then
// lifecycle finalization, preserving read-before-write-before-disconnect event
// order.
func (s *Server) serviceConn(c *Connection, deadline time.Time) {
	switch {
	case c.state.IsEstablished():
		s.serviceRead(c, deadline)
	case c.state.IsClosing():
		c.flushTicks++
	}

	if c.state.IsEstablished() || c.state.IsClosing() {
		s.serviceWrite(c, deadline)
	}

	if c.state.IsClosing() && (!c.hasPendingWrites() || c.flushTicks > s.cfg.closeFlushTicks) {
		c.close()
	}

	if c.state.IsClosed() {
		s.finalize(c)
	}
}

// serviceRead drains ready bytes and runs the framing state machine, emitting
// a ReceivedPacket event per completed packet.
func (s *Server) serviceRead(c *Connection, deadline time.Time) {
	n, peerClosed, err := c.readAvailable(deadline)
	if err != nil {
		c.logger.Error("closing connection", "error", err)
		c.close()

		return
	}

	if n > 0 {
		ferr := c.collectPackets(func(p packet.Packet) {
			frameLen := packet.HeaderSize + len(p.Body)
			s.incoming.Enqueue(Incoming{Token: c.token, Packet: p})
			s.events = append(s.events, Event{Type: EventReceivedPacket, Token: c.token, Bytes: frameLen})
			s.metrics.incRecvPacketCount()
			s.metrics.addRecvByteCount(frameLen)
		})
		if ferr != nil {
			c.logger.Error("protocol violation, closing connection", "error", ferr)
			c.close()

			return
		}
	}

	if peerClosed {
		c.close()
	}
}

// serviceWrite flushes queued outbound bytes, emitting one SentPacket event
// when any bytes were written this tick.
func (s *Server) serviceWrite(c *Connection, deadline time.Time) {
	written, peerClosed := c.flush(deadline)
	if written > 0 {
		s.events = append(s.events, Event{Type: EventSentPacket, Token: c.token, Bytes: written})
		s.metrics.addSentByteCount(written)
	}

	if peerClosed {
		c.close()
	}
}

// finalize emits the Disconnected event and removes the connection, freeing
// its token for reuse.
func (s *Server) finalize(c *Connection) {
	s.events = append(s.events, Event{Type: EventDisconnected, Token: c.token})
	s.metrics.incDisconnectCount()
	c.logger.Info("client disconnected")
	s.table.Remove(c.token)
}

// sendFrame queues one serialized frame on every established connection the
// recipient addresses. The frame bytes are shared between targets; each target
// keeps its own write cursor.
func (s *Server) sendFrame(recipient Recipient, frame []byte) {
	for _, tok := range s.table.Tokens() {
		if !recipient.matches(tok) {
			continue
		}

		conn, ok := s.table.Get(tok)
		if !ok || !conn.state.IsEstablished() {
			continue
		}

		if err := conn.enqueueFrame(frame); err != nil {
			conn.logger.Error("write queue overflow, closing connection", "error", err)
			conn.close()
			continue
		}

		s.metrics.incSentPacketCount()
	}
}
