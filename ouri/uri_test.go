package ouri

import (
	"reflect"
	"testing"
)

func TestParseEmptyOnShortURI(t *testing.T) {
	u := Parse("tcp://core/key/alias")
	if !u.Empty {
		t.Fatalf("expected empty URI for short input, got %+v", u)
	}
	if u.String() != "" {
		t.Fatalf("empty URI String() = %q, want \"\"", u.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	s := "tcp://127.0.0.1:10000/corekey/ns1/ns2/agentkey/agentalias"
	u := Parse(s)
	if u.Empty {
		t.Fatalf("expected non-empty URI, got empty")
	}
	if u.CoreKey != "corekey" || u.AgentKey != "agentkey" || u.AgentAlias != "agentalias" {
		t.Fatalf("unexpected parse: %+v", u)
	}
	if len(u.Namespaces) != 2 || u.Namespaces[0] != "ns1" || u.Namespaces[1] != "ns2" {
		t.Fatalf("unexpected namespaces: %+v", u.Namespaces)
	}
	if got := u.String(); got != s {
		t.Fatalf("String() = %q, want %q", got, s)
	}
}

func TestParseAgent(t *testing.T) {
	u := ParseAgent("abc")
	if u.AgentKey != "abc" || u.AgentAlias != "" {
		t.Fatalf("unexpected bare agent parse: %+v", u)
	}
	u = ParseAgent("abc/def")
	if u.AgentKey != "abc" || u.AgentAlias != "def" {
		t.Fatalf("unexpected agent/alias parse: %+v", u)
	}
	u = ParseAgent("abc/def/ghi")
	if !u.Empty {
		t.Fatalf("expected empty URI for malformed agent fragment, got %+v", u)
	}
}

func TestBuilder(t *testing.T) {
	u := NewBuilder().
		CoreAddress("1.2.3.4", 3333).
		CoreKey("core").
		AgentKey("agent").
		AgentAlias("alias").
		Build()
	if u.Empty {
		t.Fatalf("built URI should not be empty")
	}
	if u.CoreURI != "1.2.3.4:3333" {
		t.Fatalf("CoreURI = %q", u.CoreURI)
	}
}

func TestContextSwap(t *testing.T) {
	var c Context
	c.Update("tcp://core/key/target/alias", "tcp://core/key/source/alias2")
	target, source := c.TargetURI, c.SourceURI
	c.Swap()
	if !reflect.DeepEqual(c.TargetURI, source) || !reflect.DeepEqual(c.SourceURI, target) {
		t.Fatalf("swap did not exchange source/target")
	}
}

func TestNewContextIsEmpty(t *testing.T) {
	c := NewContext()
	if !c.TargetURI.Empty || !c.SourceURI.Empty {
		t.Fatalf("fresh context should carry empty URIs")
	}
}
