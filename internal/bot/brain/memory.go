package brain

import (
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// CardStatus represents what the bot knows about a specific card.
type CardStatus int

const (
	StatusUnknown CardStatus = iota // held by some opponent
	StatusMine                      // in the bot's hand
	StatusPlayed                    // already on the table this round
)

// GameMemory is the bot's private picture of the current round, rebuilt from
// each PlayerView it is handed.
type GameMemory struct {
	// DeckStatus tracks all 52 cards. Index = (Suit-1)*13 + (Rank-2).
	DeckStatus [domain.DeckSize]CardStatus
	// Opponents tracks every seat, including the bot's own.
	Opponents domain.BySeat[OpponentProfile]
	Seat      domain.Turn
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	m := &GameMemory{}
	m.Reset()
	return m
}

// Reset clears the memory for a new round.
func (m *GameMemory) Reset() {
	for i := range m.DeckStatus {
		m.DeckStatus[i] = StatusUnknown
	}
	for _, seat := range domain.Turns {
		m.Opponents.Set(seat, NewOpponentProfile(seat))
	}
}

// Observe rebuilds memory from the latest round in view.
func (m *GameMemory) Observe(view domain.PlayerView) {
	m.Reset()
	m.Seat = view.Seat
	r := view.Current()
	if r == nil {
		return
	}
	m.MarkMine(r.Hand.Cards())
	for _, seat := range domain.Turns {
		p := m.Opponents.At(seat)
		p.Call = r.Calls.At(seat).Int()
		m.Opponents.Set(seat, p)
	}
	for i := range r.Tricks {
		m.recordTrick(&r.Tricks[i])
	}
}

func (m *GameMemory) recordTrick(t *domain.Trick) {
	starter, lead := t.Starter()
	if lead.IsZero() {
		return
	}
	seat, trumped := starter, false
	for range domain.NumSeats {
		c := t.CardOf(seat)
		if c.IsZero() {
			break
		}
		m.MarkPlayed(c)
		if c.Suit != lead.Suit {
			p := m.Opponents.At(seat)
			p.RecordVoid(lead.Suit)
			// Without trump on the table a void seat must cut if it can.
			if c.Suit != domain.Trump && !trumped {
				p.RecordVoid(domain.Trump)
			}
			m.Opponents.Set(seat, p)
		}
		trumped = trumped || c.Suit == domain.Trump
		seat = seat.Next()
	}
	if t.IsOver() {
		winner, _, _ := t.Winner()
		p := m.Opponents.At(winner)
		p.Won++
		m.Opponents.Set(winner, p)
	}
}

// MarkMine records the cards currently in the bot's hand.
func (m *GameMemory) MarkMine(cards []domain.Card) {
	for _, c := range cards {
		m.DeckStatus[cardToIndex(c)] = StatusMine
	}
}

// MarkPlayed records cards that have been played on the table.
func (m *GameMemory) MarkPlayed(cards ...domain.Card) {
	for _, c := range cards {
		m.DeckStatus[cardToIndex(c)] = StatusPlayed
	}
}

// IsBoss returns true if no higher card of the same suit is still held by an opponent.
func (m *GameMemory) IsBoss(c domain.Card) bool {
	return m.HigherOutstanding(c) == 0
}

// HigherOutstanding counts unseen cards of c's suit that outrank it.
func (m *GameMemory) HigherOutstanding(c domain.Card) int {
	n := 0
	for r := c.Rank + 1; r <= domain.Ace; r++ {
		if m.DeckStatus[cardToIndex(domain.NewCard(r, c.Suit))] == StatusUnknown {
			n++
		}
	}
	return n
}

// Outstanding counts unseen cards of suit s.
func (m *GameMemory) Outstanding(s domain.Suit) int {
	n := 0
	for _, r := range domain.Ranks {
		if m.DeckStatus[cardToIndex(domain.NewCard(r, s))] == StatusUnknown {
			n++
		}
	}
	return n
}

// IsPlayed returns true if the card is already out of the round.
func (m *GameMemory) IsPlayed(c domain.Card) bool {
	return m.DeckStatus[cardToIndex(c)] == StatusPlayed
}

// Needed returns how many more tricks the bot must win to make its call.
func (m *GameMemory) Needed() int {
	return m.Opponents.At(m.Seat).Needed()
}

func cardToIndex(c domain.Card) int {
	return (int(c.Suit)-1)*len(domain.Ranks) + int(c.Rank) - int(domain.Two)
}
