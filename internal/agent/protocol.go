package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

// Action is the kind of decision requested from a remote party.
type Action string

const (
	ActionCall  Action = "call"
	ActionBreak Action = "break"
)

var (
	ErrProtocolViolation = errors.New("agent: protocol violation")
	ErrTransportClosed   = errors.New("agent: transport closed")
)

// ServerMessage asks the remote party for a decision.
type ServerMessage struct {
	Action Action            `json:"action"`
	View   domain.PlayerView `json:"view"`
}

// ClientMessage carries exactly one of a call or a card ("break").
type ClientMessage struct {
	Call  *domain.Call `json:"call,omitempty"`
	Break *domain.Card `json:"break,omitempty"`
}

// Kind reports which decision the message carries.
func (m ClientMessage) Kind() (Action, error) {
	switch {
	case m.Call != nil && m.Break == nil:
		return ActionCall, nil
	case m.Break != nil && m.Call == nil:
		return ActionBreak, nil
	}
	return "", fmt.Errorf("%w: message must carry exactly one of call or break", ErrProtocolViolation)
}

// DecodeClientMessage parses and validates a client frame.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var m ClientMessage
	if err := dec.Decode(&m); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	if _, err := m.Kind(); err != nil {
		return ClientMessage{}, err
	}
	return m, nil
}

// CallMessage and BreakMessage build client replies.
func CallMessage(c domain.Call) ClientMessage { return ClientMessage{Call: &c} }

func BreakMessage(c domain.Card) ClientMessage { return ClientMessage{Break: &c} }
