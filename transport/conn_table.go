package transport

import (
	"net"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
)

// ConnectionTable owns the set of live connections, keyed by token. It
// allocates and recycles tokens and enforces the configured capacity.
//
// Mutations happen only on the tick goroutine. The live map is an xsync.MapOf
// so read-only observers (stats collectors, admin endpoints) may inspect it
// concurrently without racing the tick loop.
type ConnectionTable struct {
	capacity int
	conns    *xsync.MapOf[Token, *Connection]

	// tokens holds the live tokens in ascending order, giving the tick loop a
	// deterministic iteration order.
	tokens []Token
	pool   tokenPool
}

// NewConnectionTable creates a table with the given connection capacity.
func NewConnectionTable(capacity int) *ConnectionTable {
	return &ConnectionTable{
		capacity: capacity,
		conns:    xsync.NewMapOf[Token, *Connection](),
	}
}

// Insert allocates a token and registers a new established connection for the
// socket. It returns ErrTableFull when the table is at capacity; no table
// entry is created and no token is consumed in that case.
func (t *ConnectionTable) Insert(sock net.Conn, cfg *Config) (*Connection, error) {
	if len(t.tokens) >= t.capacity {
		return nil, ErrTableFull
	}

	tok := t.pool.alloc()
	conn := newConnection(tok, sock, EstablishedState, cfg)

	t.conns.Store(tok, conn)
	idx, _ := slices.BinarySearch(t.tokens, tok)
	t.tokens = slices.Insert(t.tokens, idx, tok)

	return conn, nil
}

// Remove closes the connection's socket, drops the table entry, and returns
// the token to the free pool. Removing an unknown or already-removed token is
// a no-op.
func (t *ConnectionTable) Remove(tok Token) {
	conn, ok := t.conns.LoadAndDelete(tok)
	if !ok {
		return
	}

	conn.close()

	idx, found := slices.BinarySearch(t.tokens, tok)
	if found {
		t.tokens = slices.Delete(t.tokens, idx, idx+1)
	}

	t.pool.release(tok)
}

// Get returns the live connection for the token, if any.
func (t *ConnectionTable) Get(tok Token) (*Connection, bool) {
	return t.conns.Load(tok)
}

// Tokens returns the live tokens in ascending order. The returned slice is a
// copy and safe to hold across table mutations.
func (t *ConnectionTable) Tokens() []Token {
	return slices.Clone(t.tokens)
}

// Len returns the number of live connections.
func (t *ConnectionTable) Len() int {
	return len(t.tokens)
}

// Capacity returns the maximum number of simultaneous connections.
func (t *ConnectionTable) Capacity() int {
	return t.capacity
}
