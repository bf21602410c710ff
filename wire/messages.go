// Envelope builders for the agent-to-core direction, grounded on
// messages.py's BaseMessage subclasses (RegisterDescription, RegisterService,
// UnregisterDescription, UnregisterService, SearchAgents, SearchServices,
// SearchServicesWide, Message/CFP/Propose/Accept/Decline's to_pb methods) and
// proxy.py's _send wrapping.
package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oef-ai/oef-agent-go/query"
)

// Outbound envelope field numbers.
const (
	envFieldMsgID          = 1
	envFieldAgentURI       = 2
	envFieldRegisterDesc   = 10
	envFieldRegisterSvc    = 11
	envFieldUnregisterDesc = 12
	envFieldUnregisterSvc  = 13
	envFieldSearchAgents   = 14
	envFieldSearchServices = 15
	envFieldSearchWide     = 16
	envFieldSendMessage    = 17
	envFieldPing           = 18
)

// SendMessage submessage field numbers.
const (
	smFieldDialogueID  = 1
	smFieldDestination = 2
	smFieldCFP         = 3
	smFieldPropose     = 4
	smFieldAccept      = 5
	smFieldDecline     = 6
	smFieldContent     = 7
)

// CFP submessage field numbers.
const (
	cfpFieldQuery   = 1
	cfpFieldContent = 2
)

// Propose submessage field numbers.
const (
	proposeFieldProposals = 1
	proposeFieldContent   = 2
)

func envelopeWithMsgID(msgID uint32, field protowire.Number, payload []byte) []byte {
	var b []byte
	b = appendVarint(b, envFieldMsgID, uint64(msgID))
	b = appendMessage(b, field, payload)
	return b
}

// EncodeRegisterDescription builds a RegisterDescription envelope: register
// this agent's own Description with the core (no agent_uri is carried).
func EncodeRegisterDescription(msgID uint32, desc *query.Description) ([]byte, error) {
	payload, err := EncodeDescription(desc)
	if err != nil {
		return nil, err
	}
	return envelopeWithMsgID(msgID, envFieldRegisterDesc, payload), nil
}

// EncodeUnregisterDescription builds an UnregisterDescription envelope.
func EncodeUnregisterDescription(msgID uint32) []byte {
	return envelopeWithMsgID(msgID, envFieldUnregisterDesc, nil)
}

// EncodeRegisterService builds a RegisterService envelope: register a
// service Description under the given agent URI.
func EncodeRegisterService(msgID uint32, agentURI string, desc *query.Description) ([]byte, error) {
	payload, err := EncodeDescription(desc)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendVarint(b, envFieldMsgID, uint64(msgID))
	b = appendString(b, envFieldAgentURI, agentURI)
	b = appendMessage(b, envFieldRegisterSvc, payload)
	return b, nil
}

// EncodeUnregisterService builds an UnregisterService envelope.
func EncodeUnregisterService(msgID uint32, agentURI string, desc *query.Description) ([]byte, error) {
	payload, err := EncodeDescription(desc)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendVarint(b, envFieldMsgID, uint64(msgID))
	b = appendString(b, envFieldAgentURI, agentURI)
	b = appendMessage(b, envFieldUnregisterSvc, payload)
	return b, nil
}

// EncodeSearchAgents builds a SearchAgents envelope carrying the query's
// wire-tree form.
func EncodeSearchAgents(msgID uint32, q *query.Query) []byte {
	return envelopeWithMsgID(msgID, envFieldSearchAgents, mustEncodeBranch(q.ToWire()))
}

// EncodeSearchServices builds a SearchServices envelope.
func EncodeSearchServices(msgID uint32, q *query.Query) []byte {
	return envelopeWithMsgID(msgID, envFieldSearchServices, mustEncodeBranch(q.ToWire()))
}

// EncodeSearchServicesWide builds a SearchServicesWide envelope: like
// SearchServices, but the core additionally forwards the query to peer
// cores and aggregates their responses (spec §4.6 search_result_wide).
func EncodeSearchServicesWide(msgID uint32, q *query.Query) []byte {
	return envelopeWithMsgID(msgID, envFieldSearchWide, mustEncodeBranch(q.ToWire()))
}

func mustEncodeBranch(b *query.Branch) []byte {
	enc, err := EncodeBranch(b)
	if err != nil {
		// EncodeBranch only fails on malformed QueryFieldValue shapes, which
		// cannot occur for a tree produced by Query.ToWire.
		panic(err)
	}
	return enc
}

// EncodePing builds a heartbeat Ping envelope.
func EncodePing(msgID uint32) []byte {
	var b []byte
	b = appendVarint(b, envFieldMsgID, uint64(msgID))
	b = appendBool(b, envFieldPing, true)
	return b
}

// EncodeMessage builds a SendMessage envelope carrying opaque content bytes
// (the AgentMessage.Message case).
func EncodeMessage(msgID, dialogueID uint32, destination string, content []byte) []byte {
	var sm []byte
	sm = appendVarint(sm, smFieldDialogueID, uint64(dialogueID))
	sm = appendString(sm, smFieldDestination, destination)
	sm = appendBytesField(sm, smFieldContent, content)
	return envelopeWithMsgID(msgID, envFieldSendMessage, sm)
}

// EncodeCFP builds a SendMessage envelope carrying a CFP. Exactly one of q
// or content should be set, mirroring CFP.to_pb's query=None/Query/bytes
// three-way dispatch; when both are nil the CFP carries neither field (the
// "no constraint" proposal-open case).
func EncodeCFP(msgID, dialogueID uint32, destination string, q *query.Query, content []byte) []byte {
	var cfp []byte
	if q != nil {
		cfp = appendMessage(cfp, cfpFieldQuery, mustEncodeBranch(q.ToWire()))
	} else if content != nil {
		cfp = appendBytesField(cfp, cfpFieldContent, content)
	}
	var sm []byte
	sm = appendVarint(sm, smFieldDialogueID, uint64(dialogueID))
	sm = appendString(sm, smFieldDestination, destination)
	sm = appendMessage(sm, smFieldCFP, cfp)
	return envelopeWithMsgID(msgID, envFieldSendMessage, sm)
}

// EncodePropose builds a SendMessage envelope carrying a Propose. Proposals
// are embedded directly as Description submessages (not the
// serialize-then-reparse round trip messages.py's Propose.to_pb performs).
func EncodePropose(msgID, dialogueID uint32, destination string, proposals []*query.Description) ([]byte, error) {
	var propose []byte
	for _, d := range proposals {
		enc, err := EncodeDescription(d)
		if err != nil {
			return nil, err
		}
		propose = appendMessage(propose, proposeFieldProposals, enc)
	}
	var sm []byte
	sm = appendVarint(sm, smFieldDialogueID, uint64(dialogueID))
	sm = appendString(sm, smFieldDestination, destination)
	sm = appendMessage(sm, smFieldPropose, propose)
	return envelopeWithMsgID(msgID, envFieldSendMessage, sm), nil
}

// EncodeAccept builds a SendMessage envelope carrying an Accept.
func EncodeAccept(msgID, dialogueID uint32, destination string) []byte {
	var sm []byte
	sm = appendVarint(sm, smFieldDialogueID, uint64(dialogueID))
	sm = appendString(sm, smFieldDestination, destination)
	sm = appendMessage(sm, smFieldAccept, nil)
	return envelopeWithMsgID(msgID, envFieldSendMessage, sm)
}

// EncodeDecline builds a SendMessage envelope carrying a Decline.
func EncodeDecline(msgID, dialogueID uint32, destination string) []byte {
	var sm []byte
	sm = appendVarint(sm, smFieldDialogueID, uint64(dialogueID))
	sm = appendString(sm, smFieldDestination, destination)
	sm = appendMessage(sm, smFieldDecline, nil)
	return envelopeWithMsgID(msgID, envFieldSendMessage, sm)
}
