package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()

	cfg, err := NewConfig("127.0.0.1", 0, opts...)
	require.NoError(t, err)

	return cfg
}

func pipeConn(t *testing.T) net.Conn {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	return local
}

func TestConnectionTable_Insert(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	table := NewConnectionTable(2)
	require.Equal(2, table.Capacity())

	c1, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	require.Equal(Token(1), c1.Token())
	require.True(c1.State().IsEstablished())

	c2, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	require.Equal(Token(2), c2.Token())
	require.Equal(2, table.Len())

	// Capacity reached: rejected before any entry is created.
	c3, err := table.Insert(pipeConn(t), cfg)
	require.ErrorIs(err, ErrTableFull)
	require.Nil(c3)
	require.Equal(2, table.Len())
}

func TestConnectionTable_RemoveIdempotent(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	table := NewConnectionTable(4)

	conn, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	tok := conn.Token()

	table.Remove(tok)
	require.Equal(0, table.Len())
	_, ok := table.Get(tok)
	require.False(ok)

	// Removing again is a no-op.
	table.Remove(tok)
	require.Equal(0, table.Len())
}

func TestConnectionTable_TokenRecycle(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	table := NewConnectionTable(4)

	c1, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	c2, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	require.NotEqual(c1.Token(), c2.Token())

	table.Remove(c1.Token())

	// The freed token is reused for the next insert; no two live connections
	// ever share a token.
	c3, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	require.Equal(c1.Token(), c3.Token())
	require.NotEqual(c2.Token(), c3.Token())
}

func TestConnectionTable_TokensAscending(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	table := NewConnectionTable(8)

	for i := 0; i < 5; i++ {
		_, err := table.Insert(pipeConn(t), cfg)
		require.NoError(err)
	}

	table.Remove(Token(2))
	table.Remove(Token(4))
	require.Equal([]Token{1, 3, 5}, table.Tokens())

	// Reinsert: recycled tokens slot back into ascending order.
	_, err := table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	_, err = table.Insert(pipeConn(t), cfg)
	require.NoError(err)
	require.Equal([]Token{1, 2, 3, 4, 5}, table.Tokens())
}
