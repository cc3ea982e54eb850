package app

import "github.com/prasantadh/callbreak-np/internal/domain"

// EventKind identifies what a Host just did, for observers.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventGameStarted  EventKind = "game_started"
	EventRoundDealt   EventKind = "round_dealt"
	EventCallMade     EventKind = "call_made"
	EventCardPlayed   EventKind = "card_played"
	EventTrickWon     EventKind = "trick_won"
	EventRoundOver    EventKind = "round_over"
	EventGameOver     EventKind = "game_over"
)

// Event is emitted after the Game accepted a change.
type Event struct {
	Kind    EventKind
	Round   int
	Payload any
}

// Observer receives events on the Host goroutine. It must not block for long.
type Observer func(Event)

type PlayerJoinedPayload struct {
	UserID string
	Joined int
}

type GameStartedPayload struct {
	Players []string
}

type CallMadePayload struct {
	UserID   string
	Call     domain.Call
	Fallback bool
}

type CardPlayedPayload struct {
	UserID   string
	Card     domain.Card
	Fallback bool
}

type TrickWonPayload struct {
	UserID string
	Trick  int
	Card   domain.Card
}

type RoundOverPayload struct {
	Summary domain.RoundSummary
}

type GameOverPayload struct {
	Summary []domain.RoundSummary
}
