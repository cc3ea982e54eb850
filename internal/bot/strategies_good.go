package bot

import (
	"github.com/prasantadh/callbreak-np/internal/bot/internal"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// GoodBot calls from a static hand estimate, wins as cheaply as it can and
// otherwise sheds its lowest card.
type GoodBot struct {
	Tuning internal.BotTuning
}

func (b *GoodBot) CalculateCall(view domain.PlayerView) (domain.Call, error) {
	r := view.Current()
	if r == nil || r.Hand.Len() == 0 {
		return domain.Call(domain.MinCall), nil
	}
	return internal.CallFor(internal.EstimateTricks(r.Hand, b.Tuning.Call), b.Tuning), nil
}

func (b *GoodBot) CalculateMove(view domain.PlayerView) (domain.Card, error) {
	legal := view.LegalMoves()
	if len(legal) == 0 {
		return domain.Card{}, ErrNoLegalMove
	}
	trick := view.ActiveTrick()

	// Lead: the highest card of the longest side suit wins early tricks
	// before opponents run out of it.
	if _, lead := trick.Starter(); lead.IsZero() {
		return highest(sideOrAll(legal)), nil
	}

	if win := winners(trick, legal); len(win) > 0 {
		return lowest(win), nil
	}
	return lowest(legal), nil
}

// sideOrAll drops trumps from cards unless nothing else is left.
func sideOrAll(cards []domain.Card) []domain.Card {
	var side []domain.Card
	for _, c := range cards {
		if c.Suit != domain.Trump {
			side = append(side, c)
		}
	}
	if len(side) == 0 {
		return cards
	}
	return side
}
