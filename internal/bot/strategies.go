package bot

import (
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// SimpleBot calls one and plays the first legal card. It never fails on a
// well-formed view and backs up every other strategy.
type SimpleBot struct{}

func (b *SimpleBot) CalculateCall(view domain.PlayerView) (domain.Call, error) {
	return domain.Call(domain.MinCall), nil
}

func (b *SimpleBot) CalculateMove(view domain.PlayerView) (domain.Card, error) {
	legal := view.LegalMoves()
	if len(legal) == 0 {
		return domain.Card{}, ErrNoLegalMove
	}
	return legal[0], nil
}

// lowest returns the cheapest card to give up: any non-trump before a trump,
// then by rank.
func lowest(cards []domain.Card) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if cheaper(c, best) {
			best = c
		}
	}
	return best
}

func highest(cards []domain.Card) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if cheaper(best, c) {
			best = c
		}
	}
	return best
}

func cheaper(a, b domain.Card) bool {
	if (a.Suit == domain.Trump) != (b.Suit == domain.Trump) {
		return b.Suit == domain.Trump
	}
	return a.Rank < b.Rank
}

// winners returns the cards in legal that would currently take trick.
func winners(trick *domain.Trick, legal []domain.Card) []domain.Card {
	_, lead := trick.Starter()
	if lead.IsZero() {
		return nil
	}
	_, top, _ := trick.Winner()
	var out []domain.Card
	for _, c := range legal {
		if beats(c, top) {
			out = append(out, c)
		}
	}
	return out
}

// beats reports whether c outranks the current winning card top.
func beats(c, top domain.Card) bool {
	switch {
	case c.Suit == top.Suit:
		return c.Rank > top.Rank
	case c.Suit == domain.Trump:
		return true
	default:
		return false
	}
}

// lastToAct reports whether the viewer completes trick.
func lastToAct(trick *domain.Trick) bool {
	n := 0
	for _, c := range trick.Cards() {
		if !c.IsZero() {
			n++
		}
	}
	return n == domain.NumSeats-1
}
