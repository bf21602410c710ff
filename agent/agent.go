// Package agent implements the agent loop (C7): dispatching decoded
// Server.AgentMessage frames from a connection's steady-state handler to
// the user's callback suite, and the per-dialogue Context table (C8).
//
// Grounded on core.py's OEFProxy.loop dispatch (agents/agents_wide/
// oef_error/dialogue_error/content -> message|cfp|propose|accept|decline)
// and session/lifetime.go's pattern of a mutex-guarded lookup table keyed
// by a composite id, generalized to the loop's guaranteed-release Context
// scope.
package agent

import (
	"sync"

	"github.com/oef-ai/oef-agent-go/internal/log"
	"github.com/oef-ai/oef-agent-go/ouri"
	"github.com/oef-ai/oef-agent-go/query"
	"github.com/oef-ai/oef-agent-go/wire"
)

// SearchResultItem is one flattened entry of a search_result_wide reply:
// the agent id together with which core answered and how far away it is.
type SearchResultItem struct {
	AgentID    string
	CoreKey    string
	CoreAddr   string
	CorePort   int
	DistanceKm float64
}

// Callbacks is the user-facing dispatch surface the agent loop drives.
// Every field is optional; a nil callback silently drops that event.
type Callbacks struct {
	OnMessage          func(answerID, dialogueID uint32, origin string, content []byte)
	OnCFP              func(answerID, dialogueID uint32, origin string, q *query.Branch, content []byte)
	OnPropose          func(answerID, dialogueID uint32, origin string, proposals []*query.Description, content []byte)
	OnAccept           func(answerID, dialogueID uint32, origin string)
	OnDecline          func(answerID, dialogueID uint32, origin string)
	OnOEFError         func(answerID uint32, operation wire.OEFErrorOperation)
	OnDialogueError    func(answerID, dialogueID uint32, origin string)
	OnSearchResult     func(answerID uint32, agents []string)
	OnSearchResultWide func(answerID uint32, items []SearchResultItem)
}

type contextKey struct {
	answerID   uint32
	dialogueID uint32
	origin     string
}

// Agent dispatches one connection's decoded frames to a Callbacks set and
// tracks the per-dialogue Context each "content" frame establishes.
type Agent struct {
	callbacks Callbacks

	mu       sync.Mutex
	contexts map[contextKey]ouri.Context
}

// New builds an Agent loop dispatcher for the given callback set.
func New(callbacks Callbacks) *Agent {
	return &Agent{
		callbacks: callbacks,
		contexts:  make(map[contextKey]ouri.Context),
	}
}

// SetCallbacks replaces the dispatcher's callback set.
func (a *Agent) SetCallbacks(c Callbacks) {
	a.mu.Lock()
	a.callbacks = c
	a.mu.Unlock()
}

// Callbacks returns the dispatcher's current callback set.
func (a *Agent) Callbacks() Callbacks {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.callbacks
}

// Context returns the Context recorded for (answerID, dialogueID, origin),
// or a fresh empty Context if none is on file — mirroring getContext's
// default-empty-on-miss behavior (testable property 10).
func (a *Agent) Context(answerID, dialogueID uint32, origin string) ouri.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := contextKey{answerID, dialogueID, origin}
	if c, ok := a.contexts[key]; ok {
		return c
	}
	return ouri.NewContext()
}

func (a *Agent) putContext(key contextKey, c ouri.Context) {
	a.mu.Lock()
	a.contexts[key] = c
	a.mu.Unlock()
}

func (a *Agent) dropContext(key contextKey) {
	a.mu.Lock()
	delete(a.contexts, key)
	a.mu.Unlock()
}

// HandleFrame decodes one inbound frame and dispatches it. It is the
// onFrame callback a Connection's steady-state handler invokes for every
// frame it did not itself consume (i.e. everything but ping, which the
// connection engine answers with pong on its own).
func (a *Agent) HandleFrame(frame []byte) {
	msg, err := wire.DecodeServerMessage(frame)
	if err != nil {
		log.Errorf("agent: malformed frame: %v", err)
		return
	}

	a.mu.Lock()
	cb := a.callbacks
	a.mu.Unlock()

	switch msg.Kind {
	case wire.KindAgents:
		if cb.OnSearchResult != nil {
			cb.OnSearchResult(msg.MsgID, msg.Agents)
		}
	case wire.KindAgentsWide:
		if cb.OnSearchResultWide != nil {
			cb.OnSearchResultWide(msg.MsgID, flattenWide(msg.AgentsWide))
		}
	case wire.KindOEFError:
		if cb.OnOEFError != nil {
			cb.OnOEFError(msg.OEFError.MsgID, msg.OEFError.Operation)
		}
	case wire.KindDialogueError:
		if cb.OnDialogueError != nil {
			cb.OnDialogueError(msg.DialogueError.MsgID, msg.DialogueError.DialogueID, msg.DialogueError.Origin)
		}
	case wire.KindContent:
		a.dispatchContent(msg.MsgID, msg.Content, cb)
	}
}

// flattenWide preserves the wide entries' input order, so a caller
// receives the (core_key, ip, port, distance) tuples in the order the
// core sent them in.
func flattenWide(entries []wire.WideEntry) []SearchResultItem {
	var items []SearchResultItem
	for _, e := range entries {
		for _, agentID := range e.Agents {
			items = append(items, SearchResultItem{
				AgentID:    agentID,
				CoreKey:    e.CoreKey,
				CoreAddr:   e.CoreAddr,
				CorePort:   e.CorePort,
				DistanceKm: e.DistanceKm,
			})
		}
	}
	return items
}

// dispatchContent handles one "content" frame: it records a Context for the
// duration of the callback, guaranteeing the entry is released afterward
// regardless of how the callback exits.
func (a *Agent) dispatchContent(answerID uint32, c wire.Content, cb Callbacks) {
	key := contextKey{answerID, c.DialogueID, c.Origin}
	ctx := ouri.NewContext()
	ctx.Update(c.TargetURI, c.SourceURI)
	a.putContext(key, ctx)
	defer a.dropContext(key)

	switch c.Kind {
	case wire.ContentMessageBytes:
		if cb.OnMessage != nil {
			cb.OnMessage(answerID, c.DialogueID, c.Origin, c.Message)
		}
	case wire.ContentCFP:
		if cb.OnCFP != nil {
			cb.OnCFP(answerID, c.DialogueID, c.Origin, c.CFP.Query, c.CFP.Content)
		}
	case wire.ContentPropose:
		if cb.OnPropose != nil {
			cb.OnPropose(answerID, c.DialogueID, c.Origin, c.Proposals, nil)
		}
	case wire.ContentAccept:
		if cb.OnAccept != nil {
			cb.OnAccept(answerID, c.DialogueID, c.Origin)
		}
	case wire.ContentDecline:
		if cb.OnDecline != nil {
			cb.OnDecline(answerID, c.DialogueID, c.Origin)
		}
	}
}
