package brain

import (
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// Estimator provides trick-taking estimates based on memory.
type Estimator struct {
	Memory *GameMemory
}

// NewEstimator creates a new reasoning engine.
func NewEstimator(m *GameMemory) *Estimator {
	return &Estimator{Memory: m}
}

// BossCards returns the cards in hand that cannot be beaten within their suit.
func (e *Estimator) BossCards(hand []domain.Card) []domain.Card {
	var boss []domain.Card
	for _, c := range hand {
		if e.Memory.IsBoss(c) {
			boss = append(boss, c)
		}
	}
	return boss
}

// CutRisk reports whether an opponent yet to act in trick may trump a lead of suit s.
func (e *Estimator) CutRisk(trick *domain.Trick, s domain.Suit) bool {
	if s == domain.Trump {
		return false
	}
	turn, err := trick.TurnToAct()
	if err != nil {
		return false
	}
	for seat := turn.Next(); seat != turn; seat = seat.Next() {
		if !trick.CardOf(seat).IsZero() {
			continue
		}
		p := e.Memory.Opponents.At(seat)
		if p.IsVoid(s) && !p.IsVoid(domain.Trump) {
			return true
		}
	}
	return false
}

// LeadWinProbability is a rough chance that leading c takes the trick.
func (e *Estimator) LeadWinProbability(c domain.Card) float64 {
	if c.Suit != domain.Trump {
		for _, seat := range domain.Turns {
			if seat == e.Memory.Seat {
				continue
			}
			p := e.Memory.Opponents.At(seat)
			if p.IsVoid(c.Suit) && !p.IsVoid(domain.Trump) {
				return 0
			}
		}
	}
	higher := e.Memory.HigherOutstanding(c)
	if higher == 0 {
		return 1
	}
	return 1 / float64(higher+1)
}
