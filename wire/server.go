// Inbound (core-to-agent) message decoding, grounded on core.py's
// OEFProxy.loop dispatch over agents/agents_wide/oef_error/dialogue_error/
// content, and messages.py's corresponding to_pb shapes in reverse.
package wire

import (
	"fmt"

	"github.com/oef-ai/oef-agent-go/query"
)

// Inbound envelope field numbers.
const (
	srvFieldMsgID         = 1
	srvFieldAgents        = 20
	srvFieldAgentsWide    = 21
	srvFieldOEFError      = 22
	srvFieldDialogueError = 23
	srvFieldContent       = 24
	srvFieldPing          = 25
)

const (
	searchResultFieldAgent = 1

	wideEntryCore     = 1
	wideEntryAgents   = 2
	wideEntryCoreAddr = 3
	wideEntryCorePort = 4
	wideEntryDistance = 5

	errFieldOperation = 1
	errFieldMsgID     = 2

	dialErrFieldMsgID      = 1
	dialErrFieldDialogueID = 2
	dialErrFieldOrigin     = 3

	contentFieldDialogueID = 1
	contentFieldOrigin     = 2
	contentFieldMessage    = 3
	contentFieldCFP        = 4
	contentFieldPropose    = 5
	contentFieldAccept     = 6
	contentFieldDecline    = 7
	contentFieldTargetURI  = 8
	contentFieldSourceURI  = 9
)

// ServerMessageKind tags which case of the Server.AgentMessage oneof was
// received.
type ServerMessageKind int

const (
	KindAgents ServerMessageKind = iota
	KindAgentsWide
	KindOEFError
	KindDialogueError
	KindContent
	KindPing
)

// OEFError reports a core-side failure of a previously sent operation.
type OEFError struct {
	Operation OEFErrorOperation
	MsgID     uint32
}

// DialogueError reports a core-side failure routing a dialogue message.
type DialogueError struct {
	MsgID      uint32
	DialogueID uint32
	Origin     string
}

// ContentKind tags which dialogue-frame shape a Content message carries.
type ContentKind int

const (
	ContentMessageBytes ContentKind = iota
	ContentCFP
	ContentPropose
	ContentAccept
	ContentDecline
)

// CFPContent is a received call-for-proposals: either a query or opaque
// content, mirroring CFP.to_pb's three-way dispatch.
type CFPContent struct {
	Query   *query.Branch
	Content []byte
}

// Content is one inbound dialogue frame.
type Content struct {
	DialogueID uint32
	Origin     string
	TargetURI  string
	SourceURI  string
	Kind       ContentKind
	Message    []byte
	CFP        CFPContent
	Proposals  []*query.Description
}

// WideEntry is one core's contribution to a search_result_wide reply: the
// agent ids it answered with, plus that core's own address/port/distance
// (spec §3's {core_key, core_addr, core_port, distance} + agent ids).
type WideEntry struct {
	CoreKey    string
	CoreAddr   string
	CorePort   int
	DistanceKm float64
	Agents     []string
}

// ServerMessage is the decoded form of any frame the core may send an
// agent, tagged by Kind.
type ServerMessage struct {
	Kind          ServerMessageKind
	MsgID         uint32
	Agents        []string
	AgentsWide    []WideEntry
	OEFError      OEFError
	DialogueError DialogueError
	Content       Content
}

// DecodeServerMessage parses one inbound frame's body. A frame that carries
// none of the known cases is an error.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	m := &ServerMessage{}
	known := false
	for _, f := range fields {
		if f.Num >= srvFieldAgents && f.Num <= srvFieldPing {
			known = true
		}
		switch f.Num {
		case srvFieldMsgID:
			var v uint64
			v, err = fieldVarint(f)
			m.MsgID = uint32(v)
		case srvFieldAgents:
			m.Kind = KindAgents
			var raw []byte
			var ids []field
			raw, err = fieldBytes(f)
			if err == nil {
				ids, err = parseFields(raw)
			}
			for _, idf := range ids {
				if err != nil {
					break
				}
				if idf.Num == searchResultFieldAgent {
					var s string
					s, err = fieldString(idf)
					m.Agents = append(m.Agents, s)
				}
			}
		case srvFieldAgentsWide:
			m.Kind = KindAgentsWide
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				var entry WideEntry
				entry, err = decodeWideEntry(raw)
				m.AgentsWide = append(m.AgentsWide, entry)
			}
		case srvFieldOEFError:
			m.Kind = KindOEFError
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				m.OEFError, err = decodeOEFError(raw)
			}
		case srvFieldDialogueError:
			m.Kind = KindDialogueError
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				m.DialogueError, err = decodeDialogueError(raw)
			}
		case srvFieldContent:
			m.Kind = KindContent
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				m.Content, err = decodeContent(raw)
			}
		case srvFieldPing:
			m.Kind = KindPing
		}
		if err != nil {
			return nil, err
		}
	}
	if !known {
		return nil, fmt.Errorf("wire: server message carries no known case")
	}
	return m, nil
}

func decodeWideEntry(data []byte) (WideEntry, error) {
	fields, err := parseFields(data)
	if err != nil {
		return WideEntry{}, err
	}
	var e WideEntry
	for _, f := range fields {
		switch f.Num {
		case wideEntryCore:
			e.CoreKey, err = fieldString(f)
		case wideEntryAgents:
			var s string
			s, err = fieldString(f)
			e.Agents = append(e.Agents, s)
		case wideEntryCoreAddr:
			e.CoreAddr, err = fieldString(f)
		case wideEntryCorePort:
			var v uint64
			v, err = fieldVarint(f)
			e.CorePort = int(v)
		case wideEntryDistance:
			e.DistanceKm, err = fieldDouble(f)
		}
		if err != nil {
			return WideEntry{}, err
		}
	}
	return e, nil
}

func decodeOEFError(data []byte) (OEFError, error) {
	fields, err := parseFields(data)
	if err != nil {
		return OEFError{}, err
	}
	var e OEFError
	for _, f := range fields {
		switch f.Num {
		case errFieldOperation:
			var v uint64
			v, err = fieldVarint(f)
			e.Operation = OEFErrorOperation(v)
		case errFieldMsgID:
			var v uint64
			v, err = fieldVarint(f)
			e.MsgID = uint32(v)
		}
		if err != nil {
			return OEFError{}, err
		}
	}
	return e, nil
}

func decodeDialogueError(data []byte) (DialogueError, error) {
	fields, err := parseFields(data)
	if err != nil {
		return DialogueError{}, err
	}
	var e DialogueError
	for _, f := range fields {
		switch f.Num {
		case dialErrFieldMsgID:
			var v uint64
			v, err = fieldVarint(f)
			e.MsgID = uint32(v)
		case dialErrFieldDialogueID:
			var v uint64
			v, err = fieldVarint(f)
			e.DialogueID = uint32(v)
		case dialErrFieldOrigin:
			e.Origin, err = fieldString(f)
		}
		if err != nil {
			return DialogueError{}, err
		}
	}
	return e, nil
}

func decodeContent(data []byte) (Content, error) {
	fields, err := parseFields(data)
	if err != nil {
		return Content{}, err
	}
	var c Content
	for _, f := range fields {
		switch f.Num {
		case contentFieldDialogueID:
			var v uint64
			v, err = fieldVarint(f)
			c.DialogueID = uint32(v)
		case contentFieldOrigin:
			c.Origin, err = fieldString(f)
		case contentFieldMessage:
			c.Kind = ContentMessageBytes
			c.Message, err = fieldBytes(f)
		case contentFieldCFP:
			c.Kind = ContentCFP
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				c.CFP, err = decodeCFP(raw)
			}
		case contentFieldPropose:
			c.Kind = ContentPropose
			var raw []byte
			raw, err = fieldBytes(f)
			if err == nil {
				c.Proposals, err = decodePropose(raw)
			}
		case contentFieldAccept:
			c.Kind = ContentAccept
		case contentFieldDecline:
			c.Kind = ContentDecline
		case contentFieldTargetURI:
			c.TargetURI, err = fieldString(f)
		case contentFieldSourceURI:
			c.SourceURI, err = fieldString(f)
		}
		if err != nil {
			return Content{}, err
		}
	}
	return c, nil
}

func decodeCFP(data []byte) (CFPContent, error) {
	fields, err := parseFields(data)
	if err != nil {
		return CFPContent{}, err
	}
	var c CFPContent
	for _, f := range fields {
		switch f.Num {
		case cfpFieldQuery:
			raw, err2 := fieldBytes(f)
			if err2 != nil {
				return CFPContent{}, err2
			}
			c.Query, err = DecodeBranch(raw)
		case cfpFieldContent:
			c.Content, err = fieldBytes(f)
		}
		if err != nil {
			return CFPContent{}, err
		}
	}
	return c, nil
}

func decodePropose(data []byte) ([]*query.Description, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var proposals []*query.Description
	for _, f := range fields {
		if f.Num != proposeFieldProposals {
			continue
		}
		raw, err2 := fieldBytes(f)
		if err2 != nil {
			return nil, err2
		}
		d, err2 := DecodeDescription(raw)
		if err2 != nil {
			return nil, fmt.Errorf("wire: decode proposal: %w", err2)
		}
		proposals = append(proposals, d)
	}
	return proposals, nil
}
