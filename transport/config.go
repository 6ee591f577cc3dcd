package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/arloliu/go-netframe/logger"
	"github.com/arloliu/go-netframe/packet"
)

// Config holds the configuration parameters shared by Server and Client.
type Config struct {
	// host is the bind address for a server, or the remote address for a client.
	host string

	// port is the TCP port number.
	port int

	// capacity is the maximum number of simultaneous connections a server will
	// hold. The capacity-plus-one-th concurrent connection attempt is rejected
	// before a table entry is created.
	// Defaults to 64.
	capacity int

	// pollInterval bounds the time one tick spends waiting on socket readiness.
	// Each tick applies a single absolute deadline of now + pollInterval to the
	// listener and every connection.
	// Defaults to 1 millisecond.
	pollInterval time.Duration

	// maxPendingBytes caps a connection's read buffer. A peer that declares a
	// frame larger than the cap, or trickles bytes past it, is force-closed
	// with ErrBufferLimitExceeded.
	// Defaults to one maximum frame (65538 bytes).
	maxPendingBytes int

	// maxWriteQueueBytes caps a connection's outbound queue. A stalled peer
	// whose queue would grow past the cap is force-closed.
	// Defaults to 1 MiB.
	maxWriteQueueBytes int

	// closeFlushTicks bounds how many ticks a closing connection may spend
	// flushing its write queue before teardown completes regardless.
	// Defaults to 8.
	closeFlushTicks int

	// connectTimeout bounds the client's dial.
	// Defaults to 3 seconds.
	connectTimeout time.Duration

	// acceptLimiter optionally rate-limits accepts; over-rate connection
	// attempts are rejected like over-capacity ones. Nil disables limiting.
	acceptLimiter *rate.Limiter

	// logger provides a logger instance for transport events and errors.
	logger logger.Logger
}

// NewConfig creates a transport configuration for the given address with
// default values, then applies the provided options.
//
// For a server the address is the bind address; for a client it is the remote
// server address. See the WithXXX functions for the available options.
func NewConfig(host string, port int, opts ...Option) (*Config, error) {
	cfg := &Config{
		capacity:           64,
		pollInterval:       time.Millisecond,
		maxPendingBytes:    packet.HeaderSize + packet.MaxBodySize,
		maxWriteQueueBytes: 1 << 20,
		closeFlushTicks:    8,
		connectTimeout:     3 * time.Second,
		logger:             logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return nil, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Addr returns the configured address in host:port form.
func (cfg *Config) Addr() string {
	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

// Option represents a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// withHost sets the address for the transport.
// An empty host is valid for servers and binds all interfaces.
func withHost(host string) Option {
	return newOptFunc("withHost", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if host == "" {
			cfg.host = host
			return nil
		}

		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		if _, err := net.LookupHost(host); err == nil {
			cfg.host = host
			return nil
		}

		return fmt.Errorf("invalid host %q", host)
	})
}

// withPort sets the TCP port number.
// An error is returned if the port is out of the valid range (0-65535).
func withPort(port int) Option {
	return newOptFunc("withPort", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if port < 0 || port > 65535 {
			return errors.New("port is out of range [0, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithCapacity sets the maximum number of simultaneous connections a server
// will hold. It must be within the range of 1 to 65536.
//
// The default value is 64. Clients ignore this option.
func WithCapacity(capacity int) Option {
	return newOptFunc("WithCapacity", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if capacity < 1 || capacity > 65536 {
			return errors.New("capacity out of range [1, 65536]")
		}
		cfg.capacity = capacity

		return nil
	})
}

// WithPollInterval sets the readiness deadline applied per tick. Shorter
// intervals lower per-tick latency bounds; longer intervals allow more I/O to
// complete inside one tick. It must be within 100 microseconds to 1 second.
//
// The default value is 1 millisecond.
func WithPollInterval(interval time.Duration) Option {
	return newOptFunc("WithPollInterval", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if interval < 100*time.Microsecond || interval > time.Second {
			return errors.New("poll interval out of range [100µs, 1s]")
		}
		cfg.pollInterval = interval

		return nil
	})
}

// WithMaxPendingBytes sets the per-connection read buffer ceiling. A peer that
// declares a frame larger than the ceiling, or accumulates unassembled bytes
// past it, is force-closed with ErrBufferLimitExceeded. It must be at least
// HeaderSize and at most 1 MiB.
//
// The default value is one maximum frame (65538 bytes).
func WithMaxPendingBytes(n int) Option {
	return newOptFunc("WithMaxPendingBytes", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if n < packet.HeaderSize || n > 1<<20 {
			return errors.New("max pending bytes out of range [3, 1MiB]")
		}
		cfg.maxPendingBytes = n

		return nil
	})
}

// WithMaxWriteQueueBytes sets the per-connection outbound queue ceiling. A
// connection whose queue would grow past the ceiling (fast producer, stalled
// peer) is force-closed. It must be within 1 KiB to 64 MiB.
//
// The default value is 1 MiB.
func WithMaxWriteQueueBytes(n int) Option {
	return newOptFunc("WithMaxWriteQueueBytes", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if n < 1<<10 || n > 64<<20 {
			return errors.New("max write queue bytes out of range [1KiB, 64MiB]")
		}
		cfg.maxWriteQueueBytes = n

		return nil
	})
}

// WithCloseFlushTicks bounds how many ticks a closing connection keeps trying
// to flush pending writes before it is torn down regardless. Zero bounds the
// drain to the single flush pass of the tick that observes the closing state.
// It must be at most 1000.
//
// The default value is 8.
func WithCloseFlushTicks(n int) Option {
	return newOptFunc("WithCloseFlushTicks", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if n < 0 || n > 1000 {
			return errors.New("close flush ticks out of range [0, 1000]")
		}
		cfg.closeFlushTicks = n

		return nil
	})
}

// WithConnectTimeout sets the client dial timeout. It must be within 100
// milliseconds to 30 seconds.
//
// The default value is 3 seconds. Servers ignore this option.
func WithConnectTimeout(timeout time.Duration) Option {
	return newOptFunc("WithConnectTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if timeout < 100*time.Millisecond || timeout > 30*time.Second {
			return errors.New("connect timeout out of range [0.1, 30]")
		}
		cfg.connectTimeout = timeout

		return nil
	})
}

// WithAcceptLimit enables accept rate limiting with the given sustained rate
// (accepts per second) and burst. Connection attempts above the rate are
// rejected with a ConnectionRejected event, exactly like over-capacity
// attempts.
//
// Accept limiting is disabled by default. Clients ignore this option.
func WithAcceptLimit(limit rate.Limit, burst int) Option {
	return newOptFunc("WithAcceptLimit", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if limit <= 0 || burst < 1 {
			return errors.New("accept limit requires a positive rate and burst")
		}
		cfg.acceptLimiter = rate.NewLimiter(limit, burst)

		return nil
	})
}

// WithLogger sets the logger for the transport.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.logger = l

		return nil
	})
}
