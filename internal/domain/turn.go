package domain

import (
	"encoding/json"
	"fmt"
)

// NumSeats is the number of players at a Call-Break table.
const NumSeats = 4

// Turn identifies one of the four seats. Arithmetic on turns wraps modulo 4.
type Turn struct {
	seat uint8
}

// NewTurn returns the turn for seat i mod 4.
func NewTurn(i int) Turn {
	i %= NumSeats
	if i < 0 {
		i += NumSeats
	}
	return Turn{seat: uint8(i)}
}

// Turns lists the four seats in order.
var Turns = [NumSeats]Turn{{0}, {1}, {2}, {3}}

// Next returns the seat after t, wrapping from the last seat to the first.
func (t Turn) Next() Turn {
	return Turn{seat: (t.seat + 1) % NumSeats}
}

// Index returns the seat number in [0, 4).
func (t Turn) Index() int {
	return int(t.seat)
}

func (t Turn) String() string {
	return fmt.Sprintf("seat %d", t.seat)
}

func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.seat)
}

func (t *Turn) UnmarshalJSON(b []byte) error {
	var i int
	if err := json.Unmarshal(b, &i); err != nil {
		return err
	}
	if i < 0 || i >= NumSeats {
		return fmt.Errorf("seat %d out of range", i)
	}
	*t = Turn{seat: uint8(i)}
	return nil
}

// BySeat is a fixed container with one slot per seat, indexed by Turn.
type BySeat[T any] [NumSeats]T

// At returns the value held for seat t.
func (s *BySeat[T]) At(t Turn) T {
	return s[t.seat]
}

// Set stores v for seat t.
func (s *BySeat[T]) Set(t Turn, v T) {
	s[t.seat] = v
}
