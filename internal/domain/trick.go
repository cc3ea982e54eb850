package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Trick is one exchange of four cards, filled in turn order from the starter.
type Trick struct {
	starter Turn
	cards   BySeat[Card]
}

// NewTrick returns an empty trick led by starter.
func NewTrick(starter Turn) Trick {
	return Trick{starter: starter}
}

// Starter returns the leading seat and its card, which is zero until played.
func (t *Trick) Starter() (Turn, Card) {
	return t.starter, t.cards.At(t.starter)
}

// CardOf returns the card played by seat, or the zero Card.
func (t *Trick) CardOf(seat Turn) Card {
	return t.cards.At(seat)
}

// Cards returns the four slots indexed by seat.
func (t *Trick) Cards() [NumSeats]Card {
	return t.cards
}

func (t *Trick) IsOver() bool {
	for _, c := range t.cards {
		if c.IsZero() {
			return false
		}
	}
	return true
}

// TurnToAct returns the first seat from the starter whose slot is empty.
func (t *Trick) TurnToAct() (Turn, error) {
	if t.IsOver() {
		return Turn{}, ErrNotAcceptingPlay
	}
	turn := t.starter
	for !t.cards.At(turn).IsZero() {
		turn = turn.Next()
	}
	return turn, nil
}

// Play places card in the slot of the seat to act. Legality against the
// seat's hand is the caller's concern.
func (t *Trick) Play(card Card) error {
	if !card.Valid() {
		return ErrInvalidPlay
	}
	turn, err := t.TurnToAct()
	if err != nil {
		return err
	}
	t.cards.Set(turn, card)
	return nil
}

// Winner reports the seat and card currently taking the trick. ok is false
// until the starter has played.
func (t *Trick) Winner() (seat Turn, card Card, ok bool) {
	_, lead := t.Starter()
	if lead.IsZero() {
		return Turn{}, Card{}, false
	}
	suit := lead.Suit
	for _, c := range t.cards {
		if c.Suit == Trump {
			suit = Trump
			break
		}
	}
	for _, s := range Turns {
		c := t.cards.At(s)
		if c.Suit == suit && (!ok || c.Rank > card.Rank) {
			seat, card, ok = s, c, true
		}
	}
	if !ok {
		panic("trick: lead card present but no winner")
	}
	return seat, card, true
}

// LegalMoves returns the cards of hand that may be played next, in hand order.
// The result is empty only when the trick is over or the hand is empty.
func (t *Trick) LegalMoves(hand Hand) []Card {
	if t.IsOver() {
		return nil
	}
	_, lead := t.Starter()
	if lead.IsZero() {
		return hand.Cards()
	}
	_, win, _ := t.Winner()
	s, w := lead.Suit, win.Suit

	var buckets []func(Card) bool
	switch {
	case s == w:
		buckets = []func(Card) bool{
			func(c Card) bool { return c.Suit == s && c.Rank > win.Rank },
			func(c Card) bool { return c.Suit == s },
			func(c Card) bool { return c.Suit == Trump },
			func(Card) bool { return true },
		}
	case w == Trump:
		buckets = []func(Card) bool{
			func(c Card) bool { return c.Suit == s },
			func(c Card) bool { return c.Suit == Trump && c.Rank > win.Rank },
			func(Card) bool { return true },
		}
	default:
		panic(fmt.Sprintf("trick: impossible lead %s with winning suit %s", s, w))
	}

	for _, pred := range buckets {
		if moves := slices.Collect(hand.Filter(pred)); len(moves) > 0 {
			return moves
		}
	}
	return nil
}

type trickJSON struct {
	Starter Turn     `json:"starter_turn"`
	Cards   [4]*Card `json:"cards"`
}

func (t Trick) MarshalJSON() ([]byte, error) {
	out := trickJSON{Starter: t.starter}
	for i, c := range t.cards {
		if !c.IsZero() {
			out.Cards[i] = &c
		}
	}
	return json.Marshal(out)
}

func (t *Trick) UnmarshalJSON(b []byte) error {
	var in trickJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	tr := NewTrick(in.Starter)
	for i, c := range in.Cards {
		if c != nil {
			tr.cards[i] = *c
		}
	}
	*t = tr
	return nil
}
