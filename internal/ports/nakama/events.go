package nakama

import (
	"context"

	"github.com/prasantadh/callbreak-np/internal/app"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// eventMessage is the public OpEvent payload.
type eventMessage struct {
	Kind    app.EventKind        `json:"kind"`
	Round   int                  `json:"round"`
	UserID  string               `json:"user_id,omitempty"`
	Call    *domain.Call         `json:"call,omitempty"`
	Card    *domain.Card         `json:"card,omitempty"`
	Trick   *int                 `json:"trick,omitempty"`
	Players []string             `json:"players,omitempty"`
	Summary *domain.RoundSummary `json:"summary,omitempty"`
}

type gameOverMessage struct {
	Players []string              `json:"players"`
	Summary []domain.RoundSummary `json:"summary"`
	Error   string                `json:"error,omitempty"`
}

func toEventMessage(ev app.Event) eventMessage {
	msg := eventMessage{Kind: ev.Kind, Round: ev.Round}
	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		msg.UserID = p.UserID
	case app.GameStartedPayload:
		msg.Players = p.Players
	case app.CallMadePayload:
		msg.UserID, msg.Call = p.UserID, &p.Call
	case app.CardPlayedPayload:
		msg.UserID, msg.Card = p.UserID, &p.Card
	case app.TrickWonPayload:
		msg.UserID, msg.Card, msg.Trick = p.UserID, &p.Card, &p.Trick
	case app.RoundOverPayload:
		msg.Summary = &p.Summary
	}
	return msg
}

// eventObserver queues host events for broadcast. The game-over event is
// left out; finishGame sends the full result instead.
func eventObserver(ctx context.Context, outbox chan<- outbound) app.Observer {
	return func(ev app.Event) {
		if ev.Kind == app.EventGameOver || ev.Kind == app.EventPlayerJoined {
			return
		}
		select {
		case outbox <- outbound{opCode: OpEvent, data: toEventMessage(ev)}:
		case <-ctx.Done():
		}
	}
}
