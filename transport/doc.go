// Package transport implements a tick-driven, connection-oriented TCP transport
// that converts raw byte streams into discrete, kind-tagged packets.
//
// The engine is built for real-time applications that run a fixed-rate update
// loop. All network work happens inside Tick(): the server accepts pending
// connections, every readable connection is drained and run through the framing
// state machine, queued outbound bytes are flushed, and lifecycle transitions
// are finalized. Tick returns the events produced by that single bounded unit
// of work and never blocks waiting for network activity.
//
// Readiness model:
// Go's runtime owns the file-descriptor poller, so readiness is expressed with
// socket deadlines instead of a user-space poll set. Each tick computes one
// absolute deadline (now + PollInterval) that is applied to the listener accept
// and to every connection read and write. A deadline error means "not ready";
// anything else is real I/O or a real failure.
//
// Concurrency model:
// The core is single-threaded and lock-free. The caller's goroutine owns the
// engine exclusively between ticks; there is no concurrent external mutation of
// connection state. The one exception is the client's dial, which runs on a
// one-shot goroutine (Go's analog of a non-blocking connect) and is polled
// without blocking from Tick.
//
// Callers never hold sockets. Connections are addressed by Token, a stable
// identifier allocated from a reusable pool, preventing use-after-close and
// double-close by construction.
//
// Typical server loop:
//
//	cfg, err := transport.NewConfig("0.0.0.0", 7000, transport.WithCapacity(32))
//	srv, err := transport.Host(cfg)
//	for running {
//	    for _, ev := range srv.Tick() {
//	        // handle transport.Event
//	    }
//	    for _, in := range srv.DrainIncomingPackets() {
//	        body, err := registry.Decode(in.Packet)
//	        // dispatch by kind
//	    }
//	    // game/simulation update, then sleep until next tick
//	}
package transport
