// Package pool provides pooled scratch buffers for socket reads, avoiding a
// per-tick allocation for every readable connection.
package pool

import "sync"

// ReadChunkSize is the size of a pooled read scratch buffer. One full TCP
// segment batch fits comfortably; a read that fills the whole chunk signals
// that more data is likely pending.
const ReadChunkSize = 16 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, ReadChunkSize)
		return &buf
	},
}

// GetBuffer returns a ReadChunkSize scratch buffer from the pool.
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer returns a scratch buffer to the pool.
// The caller must not retain the buffer after this call.
func PutBuffer(buf *[]byte) {
	bufferPool.Put(buf)
}
