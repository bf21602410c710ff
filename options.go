package oef

import (
	"time"

	"github.com/oef-ai/oef-agent-go/internal/log"
)

// options collects an Agent's construction-time configuration.
type options struct {
	port             int
	dialTimeout      time.Duration
	handshakeTimeout time.Duration
	maxFrameSize     int
	logger           log.Logger
}

func defaultOptions() options {
	return options{
		port:             10000,
		dialTimeout:      10 * time.Second,
		handshakeTimeout: 10 * time.Second,
	}
}

// Option configures a new Agent.
type Option func(*options)

// WithPort overrides the core's port (the default is 10000).
func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithDialTimeout bounds the initial TCP dial.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithHandshakeTimeout bounds the login handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) { o.handshakeTimeout = d }
}

// WithFrameMaxSize caps the size of any single inbound or outbound frame.
func WithFrameMaxSize(n int) Option {
	return func(o *options) { o.maxFrameSize = n }
}

// WithLogger installs a custom Logger, replacing the package default.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
		log.SetLogger(l)
	}
}
