// Package oef is the agent-side client for the OEF (Open Economic
// Framework) search-and-negotiation protocol: it dials a core, performs
// the identity handshake, and exposes directory, search, and FIPA
// negotiation operations plus a callback suite for inbound events.
//
// Grounded on nano.go's Listen/Shutdown entrypoint shape, generalized from
// a process-wide singleton server into an owned, per-instance Agent per
// spec's concurrency redesign note.
package oef

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oef-ai/oef-agent-go/agent"
	"github.com/oef-ai/oef-agent-go/concurrency"
	"github.com/oef-ai/oef-agent-go/conn"
	"github.com/oef-ai/oef-agent-go/identity"
	"github.com/oef-ai/oef-agent-go/internal/log"
	"github.com/oef-ai/oef-agent-go/ouri"
	"github.com/oef-ai/oef-agent-go/query"
	"github.com/oef-ai/oef-agent-go/wire"
)

// Agent is an OEF agent-side client: one TCP connection to one core, its
// owned scheduler, and the dispatch loop that drives the callback suite.
type Agent struct {
	opts      options
	publicKey string
	coreAddr  string

	core *concurrency.Core
	conn *conn.Connection
	loop *agent.Agent

	msgID      uint32
	dialogueID uint32

	connected chan error
}

// New validates publicKey and builds an idle Agent targeting coreAddr
// ("host", without port — use WithPort to override the default 10000).
func New(publicKey, coreAddr string, opts ...Option) (*Agent, error) {
	if err := identity.Validate(publicKey); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := &Agent{
		opts:      o,
		publicKey: publicKey,
		coreAddr:  coreAddr,
		core:      concurrency.NewCore(),
		loop:      agent.New(agent.Callbacks{}),
		connected: make(chan error, 1),
	}
	return a, nil
}

func (a *Agent) nextMsgID() uint32 {
	return atomic.AddUint32(&a.msgID, 1)
}

func (a *Agent) nextDialogueID() uint32 {
	return atomic.AddUint32(&a.dialogueID, 1)
}

// Connect starts the scheduler, dials the core, and blocks until the login
// handshake completes or fails.
func (a *Agent) Connect() error {
	if err := a.core.RunThreaded(); err != nil {
		return err
	}
	a.conn = conn.New(conn.Options{
		Core:             a.core,
		Name:             a.publicKey,
		DialTimeout:      a.opts.dialTimeout,
		HandshakeTimeout: a.opts.handshakeTimeout,
		MaxFrameSize:     a.opts.maxFrameSize,
		OnFrame:          a.loop.HandleFrame,
	})

	url := fmt.Sprintf("%s:%d", a.coreAddr, a.opts.port)
	err := a.conn.Connect(url, a.publicKey,
		func(c *conn.Connection, url, name string) {
			log.Infof("connected to core %s", url)
			a.connected <- nil
		},
		func(c *conn.Connection, url string, err error, name string) {
			log.Errorf("connect to core %s failed: %v", url, err)
			a.connected <- err
		},
	)
	if err != nil {
		return err
	}
	return <-a.connected
}

// Disconnect closes the connection and stops the scheduler. Idempotent.
func (a *Agent) Disconnect() {
	a.core.Stop()
}

// Run blocks until the agent is disconnected. It is a convenience for
// programs whose main goroutine has nothing else to do once connected.
func (a *Agent) Run() {
	for {
		if a.conn == nil || a.conn.IsClosed() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (a *Agent) send(payload []byte) error {
	return a.conn.Send(payload)
}

// RegisterAgent registers this agent's own Description with the core.
func (a *Agent) RegisterAgent(desc *query.Description) error {
	payload, err := wire.EncodeRegisterDescription(a.nextMsgID(), desc)
	if err != nil {
		return err
	}
	return a.send(payload)
}

// UnregisterAgent withdraws this agent's own Description.
func (a *Agent) UnregisterAgent() error {
	return a.send(wire.EncodeUnregisterDescription(a.nextMsgID()))
}

// RegisterService registers a service Description under the given
// self-URI.
func (a *Agent) RegisterService(selfURI string, desc *query.Description) error {
	payload, err := wire.EncodeRegisterService(a.nextMsgID(), selfURI, desc)
	if err != nil {
		return err
	}
	return a.send(payload)
}

// UnregisterService withdraws a previously registered service Description.
func (a *Agent) UnregisterService(selfURI string, desc *query.Description) error {
	payload, err := wire.EncodeUnregisterService(a.nextMsgID(), selfURI, desc)
	if err != nil {
		return err
	}
	return a.send(payload)
}

// SearchAgents issues a search over registered agent Descriptions and
// returns the msg_id the reply will be keyed under.
func (a *Agent) SearchAgents(q *query.Query) (uint32, error) {
	msgID := a.nextMsgID()
	return msgID, a.send(wire.EncodeSearchAgents(msgID, q))
}

// SearchServices issues a search over registered service Descriptions.
func (a *Agent) SearchServices(q *query.Query) (uint32, error) {
	msgID := a.nextMsgID()
	return msgID, a.send(wire.EncodeSearchServices(msgID, q))
}

// SearchServicesWide issues a search the core additionally forwards to
// peer cores, aggregating their responses.
func (a *Agent) SearchServicesWide(q *query.Query) (uint32, error) {
	msgID := a.nextMsgID()
	return msgID, a.send(wire.EncodeSearchServicesWide(msgID, q))
}

// SendMessage sends opaque content to destination within dialogueID.
func (a *Agent) SendMessage(dialogueID uint32, destination string, content []byte) error {
	return a.send(wire.EncodeMessage(a.nextMsgID(), dialogueID, destination, content))
}

// SendCFP sends a call-for-proposals. q and content are mutually
// exclusive; both nil sends an unconstrained CFP.
func (a *Agent) SendCFP(dialogueID uint32, destination string, q *query.Query, content []byte) error {
	return a.send(wire.EncodeCFP(a.nextMsgID(), dialogueID, destination, q, content))
}

// SendPropose sends a set of Description proposals.
func (a *Agent) SendPropose(dialogueID uint32, destination string, proposals []*query.Description) error {
	payload, err := wire.EncodePropose(a.nextMsgID(), dialogueID, destination, proposals)
	if err != nil {
		return err
	}
	return a.send(payload)
}

// SendAccept accepts the pending proposal in dialogueID.
func (a *Agent) SendAccept(dialogueID uint32, destination string) error {
	return a.send(wire.EncodeAccept(a.nextMsgID(), dialogueID, destination))
}

// SendDecline declines the pending proposal in dialogueID.
func (a *Agent) SendDecline(dialogueID uint32, destination string) error {
	return a.send(wire.EncodeDecline(a.nextMsgID(), dialogueID, destination))
}

// NewDialogueID allocates a fresh dialogue id for a new negotiation.
func (a *Agent) NewDialogueID() uint32 { return a.nextDialogueID() }

// Context returns the dialogue Context recorded for a prior inbound frame,
// or an empty sentinel if none is on file.
func (a *Agent) Context(answerID, dialogueID uint32, origin string) ouri.Context {
	return a.loop.Context(answerID, dialogueID, origin)
}

// OnMessage registers the plain-content message callback.
func (a *Agent) OnMessage(f func(answerID, dialogueID uint32, origin string, content []byte)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnMessage = f })
}

// OnCFP registers the call-for-proposals callback.
func (a *Agent) OnCFP(f func(answerID, dialogueID uint32, origin string, q *query.Branch, content []byte)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnCFP = f })
}

// OnPropose registers the proposal callback.
func (a *Agent) OnPropose(f func(answerID, dialogueID uint32, origin string, proposals []*query.Description, content []byte)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnPropose = f })
}

// OnAccept registers the accept callback.
func (a *Agent) OnAccept(f func(answerID, dialogueID uint32, origin string)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnAccept = f })
}

// OnDecline registers the decline callback.
func (a *Agent) OnDecline(f func(answerID, dialogueID uint32, origin string)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnDecline = f })
}

// OnOEFError registers the core-error callback.
func (a *Agent) OnOEFError(f func(answerID uint32, operation wire.OEFErrorOperation)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnOEFError = f })
}

// OnDialogueError registers the dialogue-routing-error callback.
func (a *Agent) OnDialogueError(f func(answerID, dialogueID uint32, origin string)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnDialogueError = f })
}

// OnSearchResult registers the agents/services search-result callback.
func (a *Agent) OnSearchResult(f func(answerID uint32, agents []string)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnSearchResult = f })
}

// OnSearchResultWide registers the cross-core search-result callback.
func (a *Agent) OnSearchResultWide(f func(answerID uint32, items []agent.SearchResultItem)) {
	a.mutateCallbacks(func(c *agent.Callbacks) { c.OnSearchResultWide = f })
}

func (a *Agent) mutateCallbacks(mutate func(*agent.Callbacks)) {
	c := a.loop.Callbacks()
	mutate(&c)
	a.loop.SetCallbacks(c)
}
