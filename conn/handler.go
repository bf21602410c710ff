package conn

import (
	"errors"

	"github.com/oef-ai/oef-agent-go/internal/log"
	"github.com/oef-ai/oef-agent-go/wire"
)

// ErrPrematureMessage is returned when a frame arrives on a connection
// before its handshake has reached READY.
var ErrPrematureMessage = errors.New("conn: premature message before login completed")

// ErrHandshakeFailed reports a login handshake the core rejected, or a
// malformed handshake frame.
var ErrHandshakeFailed = errors.New("conn: login handshake failed")

// handler is the session-state contract every handler in the chain
// implements, per spec §4.4.
type handler interface {
	// incoming processes one inbound frame. The returned bool reports
	// whether the handler fully handled the frame (true) or whether the
	// caller (the agent loop) still needs to dispatch it (false).
	incoming(frame []byte, connName string, c *Connection) (bool, error)
	// handleFailure surfaces a terminal error to the user and closes c.
	handleFailure(err error, c *Connection)
}

// connectionHandler is installed before a handshake starts. It accepts no
// messages.
type connectionHandler struct {
	failureCb FailureCallback
}

func (h *connectionHandler) incoming(frame []byte, connName string, c *Connection) (bool, error) {
	h.handleFailure(ErrPrematureMessage, c)
	return true, ErrPrematureMessage
}

func (h *connectionHandler) handleFailure(err error, c *Connection) {
	if h.failureCb != nil {
		h.failureCb(c, c.url, err, c.name)
	}
	c.Close()
}

// loginHandler drives the ID/Phrase/Answer/Connected handshake (spec §4.2
// steps 4-7).
type loginHandler struct {
	publicKey string
	successCb SuccessCallback
	failureCb FailureCallback
}

func (h *loginHandler) start(c *Connection) error {
	c.setState(StateConnecting)
	if err := c.transport.Send(wire.EncodeAgentID(h.publicKey)); err != nil {
		return err
	}
	c.setState(StateLoginWaitPhrase)
	return nil
}

func (h *loginHandler) incoming(frame []byte, connName string, c *Connection) (bool, error) {
	switch c.state() {
	case StateLoginWaitPhrase:
		phrase, err := wire.DecodeServerPhrase(frame)
		if err != nil {
			h.handleFailure(ErrHandshakeFailed, c)
			return true, err
		}
		if phrase.Failure() {
			h.handleFailure(ErrHandshakeFailed, c)
			return true, ErrHandshakeFailed
		}
		answer := wire.ReversePhrase(phrase.Phrase)
		if err := c.transport.Send(wire.EncodeAgentAnswer(answer, true)); err != nil {
			h.handleFailure(err, c)
			return true, err
		}
		c.setState(StateLoginWaitStatus)
		return true, nil

	case StateLoginWaitStatus:
		status, err := wire.DecodeServerConnected(frame)
		if err != nil {
			h.handleFailure(ErrHandshakeFailed, c)
			return true, err
		}
		if !status {
			h.handleFailure(ErrHandshakeFailed, c)
			return true, ErrHandshakeFailed
		}
		c.setState(StateReady)
		mh := &messageHandler{onFrame: c.onFrame}
		c.setHandler(mh)
		if h.successCb != nil {
			h.successCb(c, c.url, c.name)
		}
		return true, nil

	default:
		h.handleFailure(ErrPrematureMessage, c)
		return true, ErrPrematureMessage
	}
}

func (h *loginHandler) handleFailure(err error, c *Connection) {
	c.setState(StateClosing)
	if h.failureCb != nil {
		h.failureCb(c, c.url, err, c.name)
	}
	c.Close()
}

// messageHandler is the terminal, steady-state handler: it intercepts
// ping/pong itself and forwards everything else to the agent loop via
// onFrame.
type messageHandler struct {
	onFrame func(frame []byte)
}

func (h *messageHandler) incoming(frame []byte, connName string, c *Connection) (bool, error) {
	msg, err := wire.DecodeServerMessage(frame)
	if err == nil && msg.Kind == wire.KindPing {
		if err := c.transport.Send(wire.EncodePing(msg.MsgID)); err != nil {
			log.Warnf("pong reply failed: %v", err)
		}
		return true, nil
	}
	if h.onFrame != nil {
		h.onFrame(frame)
	}
	return false, nil
}

func (h *messageHandler) handleFailure(err error, c *Connection) {
	log.Errorf("connection %s failed: %v", c.name, err)
	c.Close()
}
