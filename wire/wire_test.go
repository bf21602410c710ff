package wire

import (
	"testing"

	"github.com/oef-ai/oef-agent-go/query"
)

func TestLoginHandshakeRoundTrip(t *testing.T) {
	id := EncodeAgentID("mypubkey")
	fields, err := parseFields(id)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	key, err := fieldString(fields[0])
	if err != nil || key != "mypubkey" {
		t.Fatalf("got %q, %v, want %q", key, err, "mypubkey")
	}

	phraseFrame := func(c, p string) []byte {
		var b []byte
		b = appendString(b, phraseFieldCase, c)
		b = appendString(b, phraseFieldPhrase, p)
		return b
	}

	p, err := DecodeServerPhrase(phraseFrame("success", "hello world"))
	if err != nil {
		t.Fatalf("DecodeServerPhrase: %v", err)
	}
	if p.Failure() {
		t.Fatal("expected non-failure case")
	}
	if got, want := ReversePhrase(p.Phrase), "dlrow olleh"; got != want {
		t.Fatalf("ReversePhrase(%q) = %q, want %q", p.Phrase, got, want)
	}

	answer := EncodeAgentAnswer(ReversePhrase(p.Phrase), true)
	af, err := parseFields(answer)
	if err != nil {
		t.Fatalf("parseFields(answer): %v", err)
	}
	gotAnswer, err := fieldString(af[0])
	if err != nil || gotAnswer != "dlrow olleh" {
		t.Fatalf("got %q, %v", gotAnswer, err)
	}
	gotHeartbeat, err := fieldBool(af[1])
	if err != nil || !gotHeartbeat {
		t.Fatalf("got %v, %v", gotHeartbeat, err)
	}

	fail, err := DecodeServerPhrase(phraseFrame("failure", ""))
	if err != nil {
		t.Fatalf("DecodeServerPhrase(failure): %v", err)
	}
	if !fail.Failure() {
		t.Fatal("expected failure case")
	}

	connected := func(status bool) []byte {
		var b []byte
		b = appendBool(b, connectedFieldStatus, status)
		return b
	}
	ok, err := DecodeServerConnected(connected(true))
	if err != nil || !ok {
		t.Fatalf("DecodeServerConnected(true) = %v, %v", ok, err)
	}
	ok, err = DecodeServerConnected(connected(false))
	if err != nil || ok {
		t.Fatalf("DecodeServerConnected(false) = %v, %v", ok, err)
	}
}

func TestReversePhraseEmpty(t *testing.T) {
	if got := ReversePhrase(""); got != "" {
		t.Fatalf("ReversePhrase(\"\") = %q", got)
	}
}

func TestEncodeRegisterAndSearchEnvelopes(t *testing.T) {
	desc, err := query.NewDescription(map[string]interface{}{"service_name": "echo"}, nil, "echo_service")
	if err != nil {
		t.Fatalf("NewDescription: %v", err)
	}

	payload, err := EncodeRegisterDescription(42, desc)
	if err != nil {
		t.Fatalf("EncodeRegisterDescription: %v", err)
	}
	fields, err := parseFields(payload)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("got %d top-level fields, want 2", len(fields))
	}
	msgID, err := fieldVarint(fields[0])
	if err != nil || msgID != 42 {
		t.Fatalf("got msg_id %d, %v, want 42", msgID, err)
	}

	unreg := EncodeUnregisterDescription(7)
	fields, err = parseFields(unreg)
	if err != nil {
		t.Fatalf("parseFields(unreg): %v", err)
	}
	if fields[1].Num != envFieldUnregisterDesc {
		t.Fatalf("got field %d, want %d", fields[1].Num, envFieldUnregisterDesc)
	}

	q, err := query.NewQuery([]query.Expr{
		query.Constraint{Attribute: "service_name", Relation: query.Eq{Value: "echo"}},
	}, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	search := EncodeSearchAgents(9, q)
	fields, err = parseFields(search)
	if err != nil {
		t.Fatalf("parseFields(search): %v", err)
	}
	if fields[1].Num != envFieldSearchAgents {
		t.Fatalf("got field %d, want %d", fields[1].Num, envFieldSearchAgents)
	}
}

func TestEncodeMessageAndCFPRoundTrip(t *testing.T) {
	payload := EncodeMessage(1, 2, "bob", []byte("hi"))
	env, err := parseFields(payload)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if env[1].Num != envFieldSendMessage {
		t.Fatalf("got field %d, want %d", env[1].Num, envFieldSendMessage)
	}
	smBytes, err := fieldBytes(env[1])
	if err != nil {
		t.Fatalf("fieldBytes: %v", err)
	}
	sm, err := parseFields(smBytes)
	if err != nil {
		t.Fatalf("parseFields(sm): %v", err)
	}
	dialogueID, err := fieldVarint(sm[0])
	if err != nil || dialogueID != 2 {
		t.Fatalf("got dialogue_id %d, %v", dialogueID, err)
	}
	dest, err := fieldString(sm[1])
	if err != nil || dest != "bob" {
		t.Fatalf("got destination %q, %v", dest, err)
	}
	content, err := fieldBytes(sm[2])
	if err != nil || string(content) != "hi" {
		t.Fatalf("got content %q, %v", content, err)
	}

	q, err := query.NewQuery([]query.Expr{
		query.Constraint{Attribute: "service_name", Relation: query.Eq{Value: "echo"}},
	}, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	cfp := EncodeCFP(5, 6, "alice", q, nil)
	if _, err := parseFields(cfp); err != nil {
		t.Fatalf("parseFields(cfp): %v", err)
	}

	cfpContent := EncodeCFP(5, 6, "alice", nil, []byte("raw"))
	if _, err := parseFields(cfpContent); err != nil {
		t.Fatalf("parseFields(cfpContent): %v", err)
	}
}

func TestDecodeServerMessagePing(t *testing.T) {
	var b []byte
	b = appendVarint(b, srvFieldMsgID, 3)
	b = appendBool(b, srvFieldPing, true)
	msg, err := DecodeServerMessage(b)
	if err != nil {
		t.Fatalf("DecodeServerMessage: %v", err)
	}
	if msg.Kind != KindPing {
		t.Fatalf("got kind %v, want KindPing", msg.Kind)
	}
	if msg.MsgID != 3 {
		t.Fatalf("got msg_id %d, want 3", msg.MsgID)
	}
}

func TestDecodeServerMessageAgents(t *testing.T) {
	var agents []byte
	agents = appendString(agents, 1, "agent-a")
	agents = appendString(agents, 1, "agent-b")

	var b []byte
	b = appendVarint(b, srvFieldMsgID, 11)
	b = appendMessage(b, srvFieldAgents, agents)

	msg, err := DecodeServerMessage(b)
	if err != nil {
		t.Fatalf("DecodeServerMessage: %v", err)
	}
	if msg.Kind != KindAgents {
		t.Fatalf("got kind %v, want KindAgents", msg.Kind)
	}
	if len(msg.Agents) != 2 || msg.Agents[0] != "agent-a" || msg.Agents[1] != "agent-b" {
		t.Fatalf("got agents %v", msg.Agents)
	}
}

func TestDecodeServerMessageAgentsWidePreservesOrderAndFields(t *testing.T) {
	wideEntry := func(core, addr string, port int, dist float64, agents ...string) []byte {
		var e []byte
		e = appendString(e, wideEntryCore, core)
		for _, a := range agents {
			e = appendString(e, wideEntryAgents, a)
		}
		e = appendString(e, wideEntryCoreAddr, addr)
		e = appendVarint(e, wideEntryCorePort, uint64(port))
		e = appendDouble(e, wideEntryDistance, dist)
		return e
	}

	var b []byte
	b = appendVarint(b, srvFieldMsgID, 5)
	b = appendMessage(b, srvFieldAgentsWide, wideEntry("core-a", "10.0.0.1", 10000, 1.5, "agent-1"))
	b = appendMessage(b, srvFieldAgentsWide, wideEntry("core-b", "10.0.0.2", 10001, 2.5, "agent-2"))
	b = appendMessage(b, srvFieldAgentsWide, wideEntry("core-c", "10.0.0.3", 10002, 3.5, "agent-3"))

	msg, err := DecodeServerMessage(b)
	if err != nil {
		t.Fatalf("DecodeServerMessage: %v", err)
	}
	if msg.Kind != KindAgentsWide {
		t.Fatalf("got kind %v, want KindAgentsWide", msg.Kind)
	}
	if len(msg.AgentsWide) != 3 {
		t.Fatalf("got %d entries, want 3", len(msg.AgentsWide))
	}
	want := []WideEntry{
		{CoreKey: "core-a", CoreAddr: "10.0.0.1", CorePort: 10000, DistanceKm: 1.5, Agents: []string{"agent-1"}},
		{CoreKey: "core-b", CoreAddr: "10.0.0.2", CorePort: 10001, DistanceKm: 2.5, Agents: []string{"agent-2"}},
		{CoreKey: "core-c", CoreAddr: "10.0.0.3", CorePort: 10002, DistanceKm: 3.5, Agents: []string{"agent-3"}},
	}
	for i, w := range want {
		got := msg.AgentsWide[i]
		if got.CoreKey != w.CoreKey || got.CoreAddr != w.CoreAddr || got.CorePort != w.CorePort ||
			got.DistanceKm != w.DistanceKm || len(got.Agents) != 1 || got.Agents[0] != w.Agents[0] {
			t.Fatalf("entry %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestDecodeServerMessageOEFError(t *testing.T) {
	var errPayload []byte
	errPayload = appendVarint(errPayload, errFieldOperation, uint64(ErrOpSearchAgents))
	errPayload = appendVarint(errPayload, errFieldMsgID, 4)

	var b []byte
	b = appendVarint(b, srvFieldMsgID, 4)
	b = appendMessage(b, srvFieldOEFError, errPayload)

	msg, err := DecodeServerMessage(b)
	if err != nil {
		t.Fatalf("DecodeServerMessage: %v", err)
	}
	if msg.Kind != KindOEFError {
		t.Fatalf("got kind %v, want KindOEFError", msg.Kind)
	}
	if msg.OEFError.Operation != ErrOpSearchAgents {
		t.Fatalf("got operation %v, want ErrOpSearchAgents", msg.OEFError.Operation)
	}
}

func TestDecodeServerMessageContent(t *testing.T) {
	var content []byte
	content = appendVarint(content, contentFieldDialogueID, 9)
	content = appendString(content, contentFieldOrigin, "bob")
	content = appendBytesField(content, contentFieldMessage, []byte("payload"))

	var b []byte
	b = appendVarint(b, srvFieldMsgID, 1)
	b = appendMessage(b, srvFieldContent, content)

	msg, err := DecodeServerMessage(b)
	if err != nil {
		t.Fatalf("DecodeServerMessage: %v", err)
	}
	if msg.Kind != KindContent {
		t.Fatalf("got kind %v, want KindContent", msg.Kind)
	}
	if msg.Content.DialogueID != 9 || msg.Content.Origin != "bob" {
		t.Fatalf("got content %+v", msg.Content)
	}
	if msg.Content.Kind != ContentMessageBytes || string(msg.Content.Message) != "payload" {
		t.Fatalf("got content %+v", msg.Content)
	}
}
