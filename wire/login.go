package wire

// Login handshake messages, grounded on proxy.py's connect() sequence:
// Agent.Server.ID{public_key} -> Server.Phrase{case,phrase} ->
// (if case != "failure") Agent.Server.Answer{answer,will_heartbeat} ->
// Server.Connected{status}.

const (
	idFieldPublicKey = 1

	phraseFieldCase   = 1
	phraseFieldPhrase = 2

	answerFieldAnswer        = 1
	answerFieldWillHeartbeat = 2

	connectedFieldStatus = 1
)

// EncodeAgentID encodes the first handshake frame, carrying the agent's
// public key.
func EncodeAgentID(publicKey string) []byte {
	var b []byte
	b = appendString(b, idFieldPublicKey, publicKey)
	return b
}

// ServerPhrase is the core's challenge frame.
type ServerPhrase struct {
	Case   string
	Phrase string
}

// Failure reports whether the core rejected the connection outright, in
// which case no phrase answer should be sent.
func (p ServerPhrase) Failure() bool { return p.Case == "failure" }

// DecodeServerPhrase parses the core's challenge frame.
func DecodeServerPhrase(data []byte) (ServerPhrase, error) {
	fields, err := parseFields(data)
	if err != nil {
		return ServerPhrase{}, err
	}
	var p ServerPhrase
	for _, f := range fields {
		switch f.Num {
		case phraseFieldCase:
			p.Case, err = fieldString(f)
		case phraseFieldPhrase:
			p.Phrase, err = fieldString(f)
		}
		if err != nil {
			return ServerPhrase{}, err
		}
	}
	return p, nil
}

// EncodeAgentAnswer encodes the reversed-phrase answer frame. willHeartbeat
// advertises that this agent will send periodic ping heartbeats.
func EncodeAgentAnswer(answer string, willHeartbeat bool) []byte {
	var b []byte
	b = appendString(b, answerFieldAnswer, answer)
	b = appendBool(b, answerFieldWillHeartbeat, willHeartbeat)
	return b
}

// DecodeServerConnected parses the core's final handshake frame.
func DecodeServerConnected(data []byte) (bool, error) {
	fields, err := parseFields(data)
	if err != nil {
		return false, err
	}
	var status bool
	for _, f := range fields {
		if f.Num == connectedFieldStatus {
			status, err = fieldBool(f)
			if err != nil {
				return false, err
			}
		}
	}
	return status, nil
}

// ReversePhrase implements the login challenge's required answer: the
// phrase treated as opaque bytes and reversed byte by byte, not rune by
// rune — the phrase is not guaranteed to be valid UTF-8.
func ReversePhrase(phrase string) string {
	b := []byte(phrase)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
