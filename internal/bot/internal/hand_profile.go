package internal

import "github.com/prasantadh/callbreak-np/internal/domain"

// SuitProfile summarizes the cards held in one suit, highest first.
type SuitProfile struct {
	Suit  domain.Suit
	Ranks []domain.Rank
}

func (s SuitProfile) Length() int {
	return len(s.Ranks)
}

// Holds reports whether rank r is held in this suit.
func (s SuitProfile) Holds(r domain.Rank) bool {
	for _, held := range s.Ranks {
		if held == r {
			return true
		}
	}
	return false
}

// HandProfile summarizes a hand's shape for call estimation.
type HandProfile struct {
	TotalCards int
	Faces      int
	suits      [len(domain.Suits) + 1]SuitProfile
}

// ProfileHand groups the hand by suit. Hand order is display order, so ranks
// within a suit come out highest first.
func ProfileHand(hand domain.Hand) HandProfile {
	p := HandProfile{TotalCards: hand.Len()}
	for _, s := range domain.Suits {
		p.suits[s].Suit = s
	}
	for _, c := range hand.Cards() {
		p.suits[c.Suit].Ranks = append(p.suits[c.Suit].Ranks, c.Rank)
		if c.Rank.IsFace() {
			p.Faces++
		}
	}
	return p
}

// Suit returns the profile of suit s.
func (p HandProfile) Suit(s domain.Suit) SuitProfile {
	return p.suits[s]
}

// Spades is the number of trumps held.
func (p HandProfile) Spades() int {
	return p.suits[domain.Trump].Length()
}

// ShortSuits counts side suits held at length zero and one.
func (p HandProfile) ShortSuits() (voids, singletons int) {
	for _, s := range domain.Suits {
		if s == domain.Trump {
			continue
		}
		switch p.suits[s].Length() {
		case 0:
			voids++
		case 1:
			singletons++
		}
	}
	return voids, singletons
}
