// Package agent decouples the game host from how a seat's decision is made.
package agent

import (
	"context"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

// Agent decides on behalf of one seat. Implementations never fail: a decision
// that cannot be obtained is replaced by a bot decision.
type Agent interface {
	Call(ctx context.Context, view domain.PlayerView) domain.Call
	Play(ctx context.Context, view domain.PlayerView) domain.Card
}
