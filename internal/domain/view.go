package domain

// PlayerView is the part of a game one seat may observe.
type PlayerView struct {
	Players []string    `json:"players"`
	Seat    Turn        `json:"seat"`
	Rounds  []RoundView `json:"rounds"`
}

// RoundView shows every call and trick of a round, but only the viewer's hand.
type RoundView struct {
	Calls  BySeat[Call] `json:"calls"`
	Hand   Hand         `json:"hand"`
	Tricks []Trick      `json:"tricks"`
}

// Current returns the latest round, or nil before the first deal.
func (v PlayerView) Current() *RoundView {
	if len(v.Rounds) == 0 {
		return nil
	}
	return &v.Rounds[len(v.Rounds)-1]
}

// ActiveTrick returns the trick awaiting cards in the latest round, or nil.
func (v PlayerView) ActiveTrick() *Trick {
	r := v.Current()
	if r == nil || len(r.Tricks) == 0 {
		return nil
	}
	t := &r.Tricks[len(r.Tricks)-1]
	if t.IsOver() {
		return nil
	}
	return t
}

// LegalMoves computes the viewer's playable cards from the view alone. It is
// empty when no trick is awaiting cards.
func (v PlayerView) LegalMoves() []Card {
	t := v.ActiveTrick()
	if t == nil {
		return nil
	}
	return t.LegalMoves(v.Current().Hand)
}

// Calling reports whether the latest round is still collecting bids.
func (v PlayerView) Calling() bool {
	r := v.Current()
	if r == nil {
		return true
	}
	for _, c := range r.Calls {
		if !c.IsSet() {
			return true
		}
	}
	return false
}
