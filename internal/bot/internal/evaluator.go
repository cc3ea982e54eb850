package internal

import (
	"math"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

// CallWeights values the trick-taking potential of a fresh hand.
type CallWeights struct {
	SideAce     float64
	SideKing    float64
	SideQueen   float64
	SpadeAce    float64
	SpadeKing   float64
	SpadeQueen  float64
	LongSpade   float64 // each spade beyond the third
	Void        float64 // each void side suit, given spare spades
	Singleton   float64 // each singleton side suit, given spare spades
	LongSideCap int     // side honors in suits longer than this are likely trumped
}

// BotTuning groups the knobs a strategy reads.
type BotTuning struct {
	Call CallWeights
	// CallBias is added to the estimate before rounding.
	CallBias float64
}

// EstimateTricks returns the expected number of tricks hand can take.
func EstimateTricks(hand domain.Hand, w CallWeights) float64 {
	p := ProfileHand(hand)
	est := 0.0

	for _, s := range domain.Suits {
		sp := p.Suit(s)
		if s == domain.Trump {
			continue
		}
		if sp.Length() > w.LongSideCap {
			// Only the ace survives long enough in a long side suit.
			if sp.Holds(domain.Ace) {
				est += w.SideAce
			}
			continue
		}
		if sp.Holds(domain.Ace) {
			est += w.SideAce
		}
		if sp.Holds(domain.King) && sp.Length() >= 2 {
			est += w.SideKing
		}
		if sp.Holds(domain.Queen) && sp.Length() >= 3 {
			est += w.SideQueen
		}
	}

	spades := p.Suit(domain.Trump)
	if spades.Holds(domain.Ace) {
		est += w.SpadeAce
	}
	if spades.Holds(domain.King) {
		est += w.SpadeKing
	}
	if spades.Holds(domain.Queen) {
		est += w.SpadeQueen
	}
	if extra := spades.Length() - 3; extra > 0 {
		est += float64(extra) * w.LongSpade
	}

	spare := spades.Length()
	voids, singletons := p.ShortSuits()
	for i := 0; i < voids && spare > 0; i++ {
		est += w.Void
		spare--
	}
	for i := 0; i < singletons && spare > 0; i++ {
		est += w.Singleton
		spare--
	}
	return est
}

// CallFor rounds an estimate into a legal call.
func CallFor(estimate float64, tuning BotTuning) domain.Call {
	v := int(math.Round(estimate + tuning.CallBias))
	v = max(domain.MinCall, min(domain.MaxCall, v))
	return domain.Call(v)
}
