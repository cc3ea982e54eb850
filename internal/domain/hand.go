package domain

import (
	"encoding/json"
	"iter"
	"slices"
	"strings"
)

// HandSize is the number of cards dealt to each seat.
const HandSize = 13

// Hand is the set of cards a seat holds during one round. Cards are kept in
// display order and only ever leave the hand.
type Hand struct {
	cards []Card
}

// NewHand validates a freshly dealt set of cards.
func NewHand(cards []Card) (Hand, error) {
	var hasFace, hasSpade bool
	for _, c := range cards {
		hasFace = hasFace || c.Rank.IsFace()
		hasSpade = hasSpade || c.Suit == Trump
	}
	switch {
	case !hasFace:
		return Hand{}, ErrRequiresFaceCard
	case !hasSpade:
		return Hand{}, ErrRequiresSpades
	case len(cards) != HandSize:
		return Hand{}, ErrNot13Cards
	}

	seen := make(map[Card]struct{}, len(cards))
	for _, c := range cards {
		if !c.Valid() {
			return Hand{}, ErrInvalidCard
		}
		if _, dup := seen[c]; dup {
			return Hand{}, ErrHasDuplicateCards
		}
		seen[c] = struct{}{}
	}
	return HeldHand(cards), nil
}

// HeldHand wraps cards without deal validation. It is used to rebuild a
// partially played hand, e.g. from a PlayerView.
func HeldHand(cards []Card) Hand {
	h := Hand{cards: slices.Clone(cards)}
	slices.SortFunc(h.cards, Card.Compare)
	return h
}

// Play removes card from the hand.
func (h *Hand) Play(card Card) error {
	i := slices.Index(h.cards, card)
	if i < 0 {
		return ErrHandDoesNotHaveThisCard
	}
	h.cards = slices.Delete(h.cards, i, i+1)
	return nil
}

// Filter yields the cards matching pred, in hand order.
func (h Hand) Filter(pred func(Card) bool) iter.Seq[Card] {
	return func(yield func(Card) bool) {
		for _, c := range h.cards {
			if pred(c) && !yield(c) {
				return
			}
		}
	}
}

// Cards returns a copy of the held cards.
func (h Hand) Cards() []Card {
	return slices.Clone(h.cards)
}

func (h Hand) Len() int {
	return len(h.cards)
}

func (h Hand) Contains(card Card) bool {
	return slices.Contains(h.cards, card)
}

func (h Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (h Hand) MarshalJSON() ([]byte, error) {
	if h.cards == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.cards)
}

func (h *Hand) UnmarshalJSON(b []byte) error {
	var cards []Card
	if err := json.Unmarshal(b, &cards); err != nil {
		return err
	}
	*h = HeldHand(cards)
	return nil
}
