package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetBuffer(t *testing.T) {
	require := require.New(t)

	var buf netBuffer
	require.Equal(0, buf.len())

	buf.write([]byte("hello"))
	buf.write([]byte(" world"))
	require.Equal(11, buf.len())
	require.Equal([]byte("hello world"), buf.bytes())

	buf.consume(6)
	require.Equal([]byte("world"), buf.bytes())

	buf.consume(5)
	require.Equal(0, buf.len())

	// The backing array survives a full consume.
	buf.write([]byte("again"))
	require.Equal([]byte("again"), buf.bytes())

	buf.reset()
	require.Equal(0, buf.len())
}
