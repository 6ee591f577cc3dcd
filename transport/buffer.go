package transport

// netBuffer accumulates bytes read from a socket until the framing state
// machine can consume complete packets from its front.
//
// The buffer only ever holds bytes not yet assembled into a complete packet:
// at most one partial frame plus not-yet-parsed header bytes. Its growth is
// bounded by the connection's pending-bytes ceiling, enforced by the caller.
type netBuffer struct {
	data []byte
}

// write appends p to the end of the buffer.
func (b *netBuffer) write(p []byte) {
	b.data = append(b.data, p...)
}

// bytes returns the buffered bytes. The slice is only valid until the next
// write or consume call.
func (b *netBuffer) bytes() []byte {
	return b.data
}

// len returns the number of buffered bytes.
func (b *netBuffer) len() int {
	return len(b.data)
}

// consume removes n bytes from the front of the buffer, shifting the
// remainder into place so the backing array is reused.
func (b *netBuffer) consume(n int) {
	remain := copy(b.data, b.data[n:])
	b.data = b.data[:remain]
}

// reset discards all buffered bytes, keeping the backing array.
func (b *netBuffer) reset() {
	b.data = b.data[:0]
}
