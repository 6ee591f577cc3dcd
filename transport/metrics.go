package transport

import (
	"sync/atomic"
)

// Metrics contains atomic counters for a transport endpoint.
// Counters can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// AcceptCount indicates the number of accepted connections.
	AcceptCount atomic.Uint64
	// RejectCount indicates the number of rejected connection attempts.
	RejectCount atomic.Uint64
	// DisconnectCount indicates the number of finalized disconnects.
	DisconnectCount atomic.Uint64

	// RecvPacketCount indicates the number of complete packets assembled.
	RecvPacketCount atomic.Uint64
	// RecvByteCount indicates the number of payload bytes received, headers included.
	RecvByteCount atomic.Uint64

	// SentPacketCount indicates the number of packets queued for sending.
	SentPacketCount atomic.Uint64
	// SentByteCount indicates the number of bytes written to sockets.
	SentByteCount atomic.Uint64
}

func (m *Metrics) incAcceptCount() {
	m.AcceptCount.Add(1)
}

func (m *Metrics) incRejectCount() {
	m.RejectCount.Add(1)
}

func (m *Metrics) incDisconnectCount() {
	m.DisconnectCount.Add(1)
}

func (m *Metrics) incRecvPacketCount() {
	m.RecvPacketCount.Add(1)
}

func (m *Metrics) addRecvByteCount(n int) {
	m.RecvByteCount.Add(uint64(n))
}

func (m *Metrics) incSentPacketCount() {
	m.SentPacketCount.Add(1)
}

func (m *Metrics) addSentByteCount(n int) {
	m.SentByteCount.Add(uint64(n))
}
