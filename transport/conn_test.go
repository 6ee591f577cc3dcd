package transport

import (
	"bytes"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-netframe/packet"
)

func newTestConn(t *testing.T) *Connection {
	t.Helper()

	return newConnection(Token(1), pipeConn(t), EstablishedState, testConfig(t))
}

// buildFrame assembles a wire frame for the given kind and body.
func buildFrame(kind uint8, body []byte) []byte {
	frame := make([]byte, packet.HeaderSize+len(body))
	packet.Header{Length: uint16(len(body)), Kind: kind}.Put(frame)
	copy(frame[packet.HeaderSize:], body)

	return frame
}

// feedChunked appends the stream to the connection in chunks of the given
// sizes, running the framing state machine after every chunk, and returns all
// packets produced.
func feedChunked(t *testing.T, conn *Connection, stream []byte, chunkSizes []int) []packet.Packet {
	t.Helper()

	var got []packet.Packet
	offset := 0
	for _, size := range chunkSizes {
		end := min(offset+size, len(stream))
		conn.readBuf.write(stream[offset:end])
		offset = end

		err := conn.collectPackets(func(p packet.Packet) {
			got = append(got, p)
		})
		require.NoError(t, err)
	}
	require.Equal(t, len(stream), offset, "chunk sizes must cover the stream")

	return got
}

func TestConnection_FramingArbitraryChunking(t *testing.T) {
	frames := [][]byte{
		buildFrame(1, []byte("ping")),
		buildFrame(2, nil), // zero-length body is a valid packet
		buildFrame(3, []byte("a longer payload, still one packet")),
	}

	var stream []byte
	for _, f := range frames {
		stream = append(stream, f...)
	}

	tests := []struct {
		name   string
		chunks []int
	}{
		{"single read", []int{len(stream)}},
		{"byte at a time", oneByteChunks(len(stream))},
		{"uneven splits", []int{2, 4, 1, 9, 5, len(stream)}},
		{"header split from body", []int{1, 2, len(stream)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			conn := newTestConn(t)
			got := feedChunked(t, conn, stream, tt.chunks)

			require.Len(got, len(frames))
			require.Equal(uint8(1), got[0].Header.Kind)
			require.Equal([]byte("ping"), got[0].Body)
			require.Equal(uint8(2), got[1].Header.Kind)
			require.Empty(got[1].Body)
			require.Equal(uint8(3), got[2].Header.Kind)
			require.Equal([]byte("a longer payload, still one packet"), got[2].Body)

			// Nothing is left buffered once every frame is consumed.
			require.Equal(0, conn.readBuf.len())
		})
	}
}

func oneByteChunks(n int) []int {
	chunks := make([]int, n)
	for i := range chunks {
		chunks[i] = 1
	}

	return chunks
}

func TestConnection_FramingKeepsPartialFrame(t *testing.T) {
	require := require.New(t)

	conn := newTestConn(t)
	frame := buildFrame(7, []byte("hello"))

	// Header only: state machine stays in awaiting-body, nothing emitted.
	conn.readBuf.write(frame[:packet.HeaderSize])
	err := conn.collectPackets(func(packet.Packet) {
		t.Fatal("no packet should complete from a bare header")
	})
	require.NoError(err)
	require.Equal(packet.HeaderSize, conn.readBuf.len())

	// Remainder arrives: exactly one packet completes.
	conn.readBuf.write(frame[packet.HeaderSize:])
	var got []packet.Packet
	err = conn.collectPackets(func(p packet.Packet) { got = append(got, p) })
	require.NoError(err)
	require.Len(got, 1)
	require.Equal([]byte("hello"), got[0].Body)
}

func TestConnection_DeclaredFrameExceedsLimit(t *testing.T) {
	require := require.New(t)

	conn := newTestConn(t)
	conn.maxPendingBytes = 1024

	// A header declaring a 60000-byte body can never complete under the 1024
	// byte ceiling; the connection must fail instead of buffering forever.
	header := packet.Header{Length: 60000, Kind: 1}
	conn.readBuf.write(header.Encode())

	err := conn.collectPackets(func(packet.Packet) {
		t.Fatal("no packet should complete")
	})
	require.ErrorIs(err, ErrBufferLimitExceeded)
}

func TestConnection_ReadAvailable(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	conn := newConnection(Token(1), local, EstablishedState, cfg)

	go func() {
		_, _ = remote.Write([]byte("abc"))
	}()

	deadline := time.Now().Add(100 * time.Millisecond)
	n, peerClosed, err := conn.readAvailable(deadline)
	require.NoError(err)
	require.False(peerClosed)
	require.Equal(3, n)
	require.Equal([]byte("abc"), conn.readBuf.bytes())

	// Nothing more to read: the deadline expires without an error.
	n, peerClosed, err = conn.readAvailable(time.Now().Add(10 * time.Millisecond))
	require.NoError(err)
	require.False(peerClosed)
	require.Equal(0, n)

	// Peer going away surfaces as a closed connection, not an error.
	_ = remote.Close()
	_, peerClosed, err = conn.readAvailable(time.Now().Add(10 * time.Millisecond))
	require.NoError(err)
	require.True(peerClosed)
}

func TestConnection_ReadAvailable_BufferLimit(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	conn := newConnection(Token(1), local, EstablishedState, cfg)
	conn.maxPendingBytes = 8

	go func() {
		_, _ = remote.Write(make([]byte, 16))
	}()

	_, _, err := conn.readAvailable(time.Now().Add(100 * time.Millisecond))
	require.ErrorIs(err, ErrBufferLimitExceeded)
}

// budgetConn is a fake net.Conn that accepts a limited number of bytes per
// refill, simulating a socket whose send buffer fills mid-write.
type budgetConn struct {
	budget int
	wrote  bytes.Buffer
}

func (c *budgetConn) Read(p []byte) (int, error) { return 0, os.ErrDeadlineExceeded }

func (c *budgetConn) Write(p []byte) (int, error) {
	if c.budget <= 0 {
		return 0, os.ErrDeadlineExceeded
	}

	n := min(len(p), c.budget)
	c.budget -= n
	c.wrote.Write(p[:n])

	if n < len(p) {
		return n, os.ErrDeadlineExceeded
	}

	return n, nil
}

func (c *budgetConn) Close() error                       { return nil }
func (c *budgetConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (c *budgetConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (c *budgetConn) SetDeadline(t time.Time) error      { return nil }
func (c *budgetConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *budgetConn) SetWriteDeadline(t time.Time) error { return nil }

func TestConnection_FlushPartialWrites(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	sock := &budgetConn{}
	conn := newConnection(Token(1), sock, EstablishedState, cfg)

	frame := buildFrame(5, []byte("partial write durability"))
	require.NoError(conn.enqueueFrame(frame))

	// The socket accepts a few bytes per tick; the cursor must persist and
	// the per-tick byte counts must sum to the full frame length.
	total := 0
	for tick := 0; tick < 20 && conn.hasPendingWrites(); tick++ {
		sock.budget = 5
		written, peerClosed := conn.flush(time.Now().Add(time.Millisecond))
		require.False(peerClosed)
		total += written
	}

	require.False(conn.hasPendingWrites())
	require.Equal(len(frame), total)
	require.Equal(frame, sock.wrote.Bytes())
	require.Equal(0, conn.queuedWriteBytes)
}

func TestConnection_FlushFIFOAcrossFrames(t *testing.T) {
	require := require.New(t)

	cfg := testConfig(t)
	sock := &budgetConn{}
	conn := newConnection(Token(1), sock, EstablishedState, cfg)

	first := buildFrame(1, []byte("first"))
	second := buildFrame(2, []byte("second"))
	require.NoError(conn.enqueueFrame(first))
	require.NoError(conn.enqueueFrame(second))

	for tick := 0; tick < 20 && conn.hasPendingWrites(); tick++ {
		sock.budget = 3
		conn.flush(time.Now().Add(time.Millisecond))
	}

	var want []byte
	want = append(want, first...)
	want = append(want, second...)
	require.Equal(want, sock.wrote.Bytes())
}

func TestConnection_EnqueueFrameLimit(t *testing.T) {
	require := require.New(t)

	conn := newTestConn(t)
	conn.maxWriteQueueBytes = 16

	require.NoError(conn.enqueueFrame(make([]byte, 10)))
	require.ErrorIs(conn.enqueueFrame(make([]byte, 10)), ErrWriteQueueFull)

	// The first frame remains queued; the rejected one was never added.
	require.Equal(10, conn.queuedWriteBytes)
}

func TestConnection_CloseIdempotent(t *testing.T) {
	require := require.New(t)

	conn := newTestConn(t)
	conn.close()
	require.True(conn.State().IsClosed())

	// Closing again is a no-op.
	conn.close()
	require.True(conn.State().IsClosed())
}
