package internal

import "github.com/prasantadh/callbreak-np/internal/domain"

// RoundPhase describes the current strategic stage of a round.
type RoundPhase int

const (
	// PhaseOpening covers the first few tricks, while every suit is still live.
	PhaseOpening RoundPhase = iota
	// PhaseMid is everything between opening and end.
	PhaseMid
	// PhaseEnd is reached once few enough tricks remain that counting is exact.
	PhaseEnd
)

const (
	openingTricks = 3
	endTricks     = 9
)

// DetectPhase infers the phase from the number of completed tricks in the
// latest round of view.
func DetectPhase(view domain.PlayerView) RoundPhase {
	r := view.Current()
	if r == nil {
		return PhaseOpening
	}
	done := 0
	for i := range r.Tricks {
		if r.Tricks[i].IsOver() {
			done++
		}
	}
	switch {
	case done < openingTricks:
		return PhaseOpening
	case done >= endTricks:
		return PhaseEnd
	default:
		return PhaseMid
	}
}
