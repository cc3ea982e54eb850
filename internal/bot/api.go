package bot

import (
	"errors"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

// ErrNoLegalMove is returned when a view offers nothing to play.
var ErrNoLegalMove = errors.New("bot: no legal move in view")

// Brain is the interface that all bot strategies must implement. A Brain sees
// only the PlayerView it is handed.
type Brain interface {
	CalculateCall(view domain.PlayerView) (domain.Call, error)
	CalculateMove(view domain.PlayerView) (domain.Card, error)
}
