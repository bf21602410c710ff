// Package ouri implements OEF agent URIs and the per-message Context that
// carries a source/target URI pair through the agent dialogue protocol.
//
// Grounded on utils/src/python/uri.py.
package ouri

import (
	"fmt"
	"strings"
)

// URI is an OEF location: protocol://coreURI/coreKey/<ns>*/agentKey/agentAlias.
//
// A URI with fewer than 7 slash-separated tokens on Parse is unparseable and
// is left Empty; Empty.String() == "".
type URI struct {
	Protocol   string
	CoreURI    string
	CoreKey    string
	Namespaces []string
	AgentKey   string
	AgentAlias string
	Empty      bool
}

// New returns the empty-URI sentinel.
func New() URI {
	return URI{Protocol: "tcp", Empty: true}
}

// String renders the URI, or "" if it is empty.
func (u URI) String() string {
	if u.Empty {
		return ""
	}
	parts := append([]string{u.Protocol + ":/", u.CoreURI, u.CoreKey}, u.Namespaces...)
	parts = append(parts, u.AgentKey, u.AgentAlias)
	return strings.Join(parts, "/")
}

// Parse decodes a full OEF URI string. Fewer than 7 slash-separated tokens
// produces an unparsed, Empty URI rather than an error.
func Parse(s string) URI {
	parts := strings.Split(s, "/")
	if len(parts) < 7 {
		return New()
	}
	u := URI{
		Protocol:   strings.ReplaceAll(parts[0], ":", ""),
		CoreURI:    parts[2],
		CoreKey:    parts[3],
		Namespaces: append([]string(nil), parts[4:len(parts)-2]...),
		AgentKey:   parts[len(parts)-2],
		AgentAlias: parts[len(parts)-1],
		Empty:      false,
	}
	return u
}

// ParseAgent decodes an agent fragment: either "<key>" or "<key>/<alias>".
// Any other shape resets the result to Empty.
func ParseAgent(agent string) URI {
	u := URI{Empty: false}
	if !strings.Contains(agent, "/") {
		u.AgentKey = agent
		return u
	}
	parts := strings.Split(agent, "/")
	if len(parts) != 2 {
		return URI{Empty: true}
	}
	u.AgentKey, u.AgentAlias = parts[0], parts[1]
	return u
}

// Builder constructs a URI field by field. Every method returns the builder
// itself so calls can be chained, mirroring uri.py's Builder.
type Builder struct {
	uri URI
}

// NewBuilder starts a new URI builder.
func NewBuilder() *Builder {
	return &Builder{uri: URI{Protocol: "tcp"}}
}

func (b *Builder) Protocol(p string) *Builder { b.uri.Protocol = p; return b }

func (b *Builder) CoreAddress(addr string, port int) *Builder {
	b.uri.CoreURI = fmt.Sprintf("%s:%d", addr, port)
	return b
}

func (b *Builder) CoreKey(k string) *Builder { b.uri.CoreKey = k; return b }

func (b *Builder) AgentKey(k string) *Builder { b.uri.AgentKey = k; return b }

func (b *Builder) AgentAlias(a string) *Builder { b.uri.AgentAlias = a; return b }

func (b *Builder) AddNamespace(ns string) *Builder {
	b.uri.Namespaces = append(b.uri.Namespaces, ns)
	return b
}

// Build finalizes the URI.
func (b *Builder) Build() URI {
	b.uri.Empty = false
	return b.uri
}

// Context bundles the source/target URIs of one dialogue frame, plus the
// derived serviceId and agentAlias convenience fields.
type Context struct {
	TargetURI  URI
	SourceURI  URI
	ServiceID  string
	AgentAlias string
}

// NewContext returns a fresh, empty Context — the sentinel value returned by
// Agent lookups outside the guaranteed-release window of a dialogue frame.
func NewContext() Context {
	return Context{TargetURI: New(), SourceURI: New()}
}

// Update parses target and source as full URIs and derives ServiceID/AgentAlias
// from the target.
func (c *Context) Update(target, source string) {
	c.TargetURI = Parse(target)
	c.SourceURI = Parse(source)
	c.ServiceID = c.TargetURI.AgentAlias
	c.AgentAlias = c.TargetURI.AgentAlias
}

// ForAgent parses target and source as agent fragments ("<key>/<alias>" or
// "<key>"). If sameAlias is set, the source's alias is forced to match the
// target's.
func (c *Context) ForAgent(target, source string, sameAlias bool) {
	c.TargetURI = ParseAgent(target)
	c.SourceURI = ParseAgent(source)
	if sameAlias {
		c.SourceURI.AgentAlias = c.TargetURI.AgentAlias
	}
	c.ServiceID = c.TargetURI.AgentAlias
}

// Swap exchanges the source and target URIs — used when relaying a message
// back along the dialogue it arrived on.
func (c *Context) Swap() {
	c.TargetURI, c.SourceURI = c.SourceURI, c.TargetURI
}
