package packet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		name   string
		length uint16
		kind   uint8
	}{
		{"zero body", 0, 0},
		{"small body", 4, 1},
		{"mid body", 1024, 42},
		{"max body", MaxBodySize, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := Header{Length: tt.length, Kind: tt.kind}
			encoded := header.Encode()
			require.Len(encoded, HeaderSize)

			decoded, err := DecodeHeader(encoded)
			require.NoError(err)
			require.Equal(header, decoded)
		})
	}
}

func TestHeader_WireLayout(t *testing.T) {
	require := require.New(t)

	// Length is big-endian, kind follows.
	header := Header{Length: 0x0102, Kind: 0xAB}
	require.Equal([]byte{0x01, 0x02, 0xAB}, header.Encode())
}

func TestDecodeHeader_Malformed(t *testing.T) {
	require := require.New(t)

	for _, data := range [][]byte{nil, {}, {0x00}, {0x00, 0x01}} {
		_, err := DecodeHeader(data)
		require.ErrorIs(err, ErrMalformedHeader)
	}
}

func TestHeader_DecodeIgnoresTrailingBytes(t *testing.T) {
	require := require.New(t)

	// The decoder only looks at the first 3 bytes; the framing state machine
	// hands it a buffer that may already contain body bytes.
	data := []byte{0x00, 0x02, 0x07, 0xDE, 0xAD, 0xBE, 0xEF}
	header, err := DecodeHeader(data)
	require.NoError(err)
	require.Equal(Header{Length: 2, Kind: 7}, header)
}
