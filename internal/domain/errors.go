package domain

import "errors"

// Caller-protocol errors. All are recoverable and returned to the caller;
// none of the exported mutators panic on caller input.
var (
	ErrInvalidCard       = errors.New("invalid card")
	ErrCallValueTooSmall = errors.New("call value too small")
	ErrCallValueTooLarge = errors.New("call value too large")

	ErrRequiresSpades          = errors.New("hand requires at least one spade")
	ErrRequiresFaceCard        = errors.New("hand requires at least one card of rank jack or higher")
	ErrNot13Cards              = errors.New("hand must have exactly 13 cards")
	ErrHasDuplicateCards       = errors.New("hand has duplicate cards")
	ErrHandDoesNotHaveThisCard = errors.New("hand does not have this card")

	ErrInvalidPlay         = errors.New("invalid play")
	ErrNotAcceptingPlay    = errors.New("not accepting play")
	ErrNotAcceptingCalls   = errors.New("not accepting calls")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrPlayerAlreadyCalled = errors.New("player already called")
	ErrRoundIsOver         = errors.New("round is over")

	ErrPlayerAlreadyInGame    = errors.New("player already in game")
	ErrNotAcceptingNewPlayers = errors.New("not accepting new players")
	ErrPlayerNotInGame        = errors.New("player not in game")
)
