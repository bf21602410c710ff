// Package conn implements the OEF connection engine (C2) and its handler
// chain (C4): one Connection per TCP stream to a core, advancing through
// the login handshake to a steady state that forwards decoded frames to an
// agent loop.
//
// Grounded on cluster/agent.go's agent type: atomic state, a buffered send
// channel drained by a dedicated pump goroutine, and a receive loop that
// feeds a decoder — generalized here to the OEF framing and handshake. The
// close-notification hook list is adapted from session/lifetime.go's
// Lifetime.OnClosed, turned into a per-Connection owned list instead of a
// process-wide singleton.
package conn

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oef-ai/oef-agent-go/concurrency"
	"github.com/oef-ai/oef-agent-go/internal/log"
	"github.com/oef-ai/oef-agent-go/transport"
)

// ErrNotReady is returned by Send when the connection has not completed
// its handshake.
var ErrNotReady = errors.New("conn: connection not ready")

// ErrAlreadyConnecting is returned by Connect when Connect has already been
// called on this Connection, whatever URL either call names.
var ErrAlreadyConnecting = errors.New("conn: already connecting or connected")

// SuccessCallback is invoked once a connection's handshake reaches READY.
type SuccessCallback func(c *Connection, url, connName string)

// FailureCallback is invoked when a connection fails to dial or complete
// its handshake, or is later closed from a steady-state error.
type FailureCallback func(c *Connection, url string, err error, connName string)

// Connection owns one TCP stream, its outbound queue, and its current
// handler. It registers itself with a Core for lifecycle management.
type Connection struct {
	core      *concurrency.Core
	transport *transport.Transport

	url  string
	name string

	state   int32
	handler atomic.Value // handler

	outq      chan []byte
	outqOnce  sync.Once
	closeOnce sync.Once

	dialTimeout      time.Duration
	maxFrameSize     int
	handshakeTimeout time.Duration

	onFrame func(frame []byte)

	mu        sync.Mutex
	connected bool
	onClose   []func()
}

// Options configures a new Connection.
type Options struct {
	Core *concurrency.Core
	// Name identifies this Connection in logs and in the handler chain's
	// connName argument. Defaults to a fresh random id if empty.
	Name             string
	DialTimeout      time.Duration
	HandshakeTimeout time.Duration
	MaxFrameSize     int
	OutqSize         int
	// OnFrame receives every post-handshake frame the handshake's
	// messageHandler did not itself consume (i.e. everything but ping).
	OnFrame func(frame []byte)
}

// New builds an idle Connection. Connect must be called to dial.
func New(opts Options) *Connection {
	if opts.OutqSize <= 0 {
		opts.OutqSize = 64
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	if opts.Name == "" {
		opts.Name = uuid.New().String()
	}
	c := &Connection{
		core:             opts.Core,
		name:             opts.Name,
		outq:             make(chan []byte, opts.OutqSize),
		dialTimeout:      opts.DialTimeout,
		handshakeTimeout: opts.HandshakeTimeout,
		maxFrameSize:     opts.MaxFrameSize,
		onFrame:          opts.OnFrame,
	}
	c.setState(StateIdle)
	c.handler.Store(handlerBox{h: &connectionHandler{}})
	return c
}

// handlerBox lets handler (an interface) live inside an atomic.Value,
// which requires a concrete, consistently-typed value.
type handlerBox struct{ h handler }

func (c *Connection) currentHandler() handler {
	return c.handler.Load().(handlerBox).h
}

func (c *Connection) setHandler(h handler) {
	c.handler.Store(handlerBox{h: h})
}

func (c *Connection) state() State     { return State(atomic.LoadInt32(&c.state)) }
func (c *Connection) setState(s State) { atomic.StoreInt32(&c.state, int32(s)) }

// IsClosed reports whether the connection has fully torn down.
func (c *Connection) IsClosed() bool { return c.state() == StateClosed }

// OnClose registers a hook to be called once, after Close has torn down the
// transport and the outbound queue. Hooks run in registration order on
// whatever goroutine calls Close.
func (c *Connection) OnClose(h func()) {
	c.mu.Lock()
	c.onClose = append(c.onClose, h)
	c.mu.Unlock()
}

// Connect dials url ("host:port"), then runs the login handshake. Dialing
// and the handshake itself run on the owning Core's scheduler thread;
// Connect returns immediately. Calling Connect again while already
// connecting or connected to the same Connection is an idempotent no-op
// returning ErrAlreadyConnecting.
func (c *Connection) Connect(url, publicKey string, success SuccessCallback, failure FailureCallback) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrAlreadyConnecting
	}
	c.connected = true
	c.mu.Unlock()

	c.url = url
	c.setHandler(&connectionHandler{failureCb: failure})

	dial := func() {
		host, port, err := splitHostPort(url)
		if err != nil {
			c.currentHandler().handleFailure(err, c)
			return
		}
		rawConn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%s", host, port), c.dialTimeout)
		if err != nil {
			c.currentHandler().handleFailure(err, c)
			return
		}
		// The handshake must finish within handshakeTimeout; the deadline is
		// lifted once the core confirms the login.
		_ = rawConn.SetDeadline(time.Now().Add(c.handshakeTimeout))
		c.transport = transport.New(rawConn, c.maxFrameSize)

		ready := func(conn *Connection, url, connName string) {
			_ = rawConn.SetDeadline(time.Time{})
			if success != nil {
				success(conn, url, connName)
			}
		}
		lh := &loginHandler{publicKey: publicKey, successCb: ready, failureCb: failure}
		c.setHandler(lh)
		if c.core != nil {
			c.core.RegisterConnection(c)
		}
		if err := lh.start(c); err != nil {
			lh.handleFailure(err, c)
			return
		}

		go c.sendPump()
		go c.receivePump()
	}

	if c.core != nil {
		c.core.CallSoon(dial)
	} else {
		dial()
	}
	return nil
}

func splitHostPort(url string) (host, port string, err error) {
	i := strings.IndexByte(url, ':')
	if i < 0 {
		return "", "", fmt.Errorf("conn: malformed url %q: missing port", url)
	}
	return url[:i], url[i+1:], nil
}

// Send schedules payload for transmission on outq. It does not block on
// network I/O.
func (c *Connection) Send(payload []byte) error {
	if c.state() != StateReady {
		return ErrNotReady
	}
	select {
	case c.outq <- payload:
		return nil
	default:
		return fmt.Errorf("conn: outbound queue full")
	}
}

// SetMessageHandler installs a fresh steady-state frame callback, replacing
// whatever messageHandler is currently installed. Before the handshake
// reaches READY the callback is only stored, and the messageHandler
// installed at READY uses it.
func (c *Connection) SetMessageHandler(onFrame func(frame []byte)) {
	c.onFrame = onFrame
	if c.state() == StateReady {
		c.setHandler(&messageHandler{onFrame: onFrame})
	}
}

// sendPump drains outq and writes each payload via the transport, until it
// sees the shutdown sentinel or the transport is gone.
func (c *Connection) sendPump() {
	for payload := range c.outq {
		if payload == nil || c.transport == nil {
			return
		}
		if err := c.transport.Send(payload); err != nil {
			log.Errorf("connection %s: send failed: %v", c.name, err)
			c.Close()
			return
		}
	}
}

// receivePump awaits frames and routes them to the current handler, until
// EndOfStream.
func (c *Connection) receivePump() {
	for {
		frame, err := c.transport.Receive()
		if err != nil {
			if err == transport.ErrEndOfStream {
				return
			}
			c.currentHandler().handleFailure(err, c)
			return
		}
		if _, err := c.currentHandler().incoming(frame, c.name, c); err != nil {
			return
		}
	}
}

// Close deregisters from the core, stops the send pump, and releases the
// transport. Idempotent.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.setState(StateClosing)
		if c.core != nil {
			c.core.DeregisterConnection(c)
		}
		c.outqOnce.Do(func() { close(c.outq) })
		if c.transport != nil {
			err = c.transport.Close()
		}
		c.setState(StateClosed)

		c.mu.Lock()
		hooks := c.onClose
		c.mu.Unlock()
		for _, h := range hooks {
			h()
		}
	})
	return err
}
