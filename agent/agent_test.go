package agent

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/oef-ai/oef-agent-go/wire"
)

// wrapAsServerContent builds a raw Server.AgentMessage frame carrying a
// "content" case with a plain-bytes message, matching wire/server.go's
// field numbering (srvFieldMsgID=1, srvFieldContent=24; within content:
// dialogueID=1, origin=2, message=3, targetURI=8, sourceURI=9).
func wrapAsServerContent(t *testing.T, msgID, dialogueID uint32, origin string, message []byte, targetURI, sourceURI string) []byte {
	t.Helper()
	var content []byte
	content = protowire.AppendTag(content, 1, protowire.VarintType)
	content = protowire.AppendVarint(content, uint64(dialogueID))
	content = protowire.AppendTag(content, 2, protowire.BytesType)
	content = protowire.AppendBytes(content, []byte(origin))
	content = protowire.AppendTag(content, 3, protowire.BytesType)
	content = protowire.AppendBytes(content, message)
	content = protowire.AppendTag(content, 8, protowire.BytesType)
	content = protowire.AppendBytes(content, []byte(targetURI))
	content = protowire.AppendTag(content, 9, protowire.BytesType)
	content = protowire.AppendBytes(content, []byte(sourceURI))

	var env []byte
	env = protowire.AppendTag(env, 1, protowire.VarintType)
	env = protowire.AppendVarint(env, uint64(msgID))
	env = protowire.AppendTag(env, 24, protowire.BytesType)
	env = protowire.AppendBytes(env, content)
	return env
}

func TestContextReturnsEmptyOnMiss(t *testing.T) {
	a := New(Callbacks{})
	ctx := a.Context(1, 2, "origin")
	if !ctx.TargetURI.Empty || !ctx.SourceURI.Empty {
		t.Fatalf("expected empty context sentinel, got %+v", ctx)
	}
}

func TestHandleFrameMessageReleasesContext(t *testing.T) {
	var gotContent []byte
	seenDuringCallback := false

	a := New(Callbacks{})
	a.SetCallbacks(Callbacks{
		OnMessage: func(answerID, dialogueID uint32, origin string, content []byte) {
			gotContent = content
			ctx := a.Context(answerID, dialogueID, origin)
			seenDuringCallback = ctx.TargetURI.AgentKey == "bob" && ctx.SourceURI.AgentKey == "alice"
		},
	})

	const targetURI = "tcp://core1/corekey1/ns/bob/bobalias"
	const sourceURI = "tcp://core1/corekey1/ns/alice/alicealias"
	inbound := wrapAsServerContent(t, 7, 3, "bob", []byte("hi"), targetURI, sourceURI)

	a.HandleFrame(inbound)
	if string(gotContent) != "hi" {
		t.Fatalf("got content %q, want %q", gotContent, "hi")
	}
	if !seenDuringCallback {
		t.Fatal("expected callback to observe a live context")
	}

	if c := a.Context(7, 3, "bob"); !c.TargetURI.Empty {
		t.Fatalf("expected context released after dispatch, got %+v", c)
	}
}

func TestFlattenWidePreservesOrderAndFields(t *testing.T) {
	entries := []wire.WideEntry{
		{CoreKey: "core-a", CoreAddr: "10.0.0.1", CorePort: 10000, DistanceKm: 1.5, Agents: []string{"agent-1"}},
		{CoreKey: "core-b", CoreAddr: "10.0.0.2", CorePort: 10001, DistanceKm: 2.5, Agents: []string{"agent-2", "agent-3"}},
	}
	items := flattenWide(entries)
	want := []SearchResultItem{
		{AgentID: "agent-1", CoreKey: "core-a", CoreAddr: "10.0.0.1", CorePort: 10000, DistanceKm: 1.5},
		{AgentID: "agent-2", CoreKey: "core-b", CoreAddr: "10.0.0.2", CorePort: 10001, DistanceKm: 2.5},
		{AgentID: "agent-3", CoreKey: "core-b", CoreAddr: "10.0.0.2", CorePort: 10001, DistanceKm: 2.5},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i] != w {
			t.Fatalf("item %d = %+v, want %+v", i, items[i], w)
		}
	}
}
