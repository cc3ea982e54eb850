package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rank is the face value of a card. Two is the lowest, Ace the highest.
// The zero Rank is not a valid rank.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank in ascending order.
var Ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankNames = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8",
	Nine: "9", Ten: "10", Jack: "j", Queen: "q", King: "k", Ace: "a",
}

// Valid reports whether r is one of the 13 ranks.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rank(%d)", uint8(r))
}

// IsFace reports whether the rank is Jack or higher.
func (r Rank) IsFace() bool {
	return r >= Jack
}

// ParseRank parses the wire form of a rank ("2".."10", "j", "q", "k", "a").
func ParseRank(s string) (Rank, error) {
	s = strings.ToLower(s)
	for r, name := range rankNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown rank %q", ErrInvalidCard, s)
}

func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidCard, uint8(r))
	}
	return json.Marshal(r.String())
}

func (r *Rank) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseRank(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Suit of a card. Spades is always trump.
// The zero Suit is not a valid suit.
type Suit uint8

const (
	Clubs Suit = iota + 1
	Diamonds
	Hearts
	Spades
)

// Trump is the suit that outranks every other suit within a trick.
const Trump = Spades

// Suits lists the four suits in display order.
var Suits = [...]Suit{Clubs, Diamonds, Hearts, Spades}

var suitNames = map[Suit]string{
	Clubs:    "clubs",
	Diamonds: "diamonds",
	Hearts:   "hearts",
	Spades:   "spades",
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Clubs && s <= Spades
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Suit(%d)", uint8(s))
}

// ParseSuit parses the wire form of a suit. A single initial ("s", "h", ...) is also accepted.
func ParseSuit(s string) (Suit, error) {
	s = strings.ToLower(s)
	for suit, name := range suitNames {
		if name == s || (len(s) == 1 && name[:1] == s) {
			return suit, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown suit %q", ErrInvalidCard, s)
}

func (s Suit) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: suit %d", ErrInvalidCard, uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *Suit) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := ParseSuit(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Card is an immutable (Rank, Suit) pair. The zero Card means "no card".
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard returns the card of the given rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsZero reports whether c is the empty card.
func (c Card) IsZero() bool {
	return c == Card{}
}

// Valid reports whether c is one of the 52 cards.
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit.Valid()
}

// String returns the short form, e.g. "10s" or "qh".
func (c Card) String() string {
	if c.IsZero() {
		return "--"
	}
	return c.Rank.String() + c.Suit.String()[:1]
}

// ParseCard parses the short form produced by String.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	rank, err := ParseRank(s[:len(s)-1])
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(s[len(s)-1:])
	if err != nil {
		return Card{}, err
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// Compare orders cards for display: by suit, then by descending rank within a suit.
// It is not the gameplay ranking.
func (c Card) Compare(other Card) int {
	switch {
	case c.Suit != other.Suit:
		return int(c.Suit) - int(other.Suit)
	default:
		return int(other.Rank) - int(c.Rank)
	}
}

func (c *Card) UnmarshalJSON(b []byte) error {
	var raw struct {
		Rank Rank `json:"rank"`
		Suit Suit `json:"suit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !raw.Rank.Valid() || !raw.Suit.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCard, b)
	}
	*c = Card{Rank: raw.Rank, Suit: raw.Suit}
	return nil
}
