package bot

import (
	"github.com/prasantadh/callbreak-np/internal/bot/brain"
	"github.com/prasantadh/callbreak-np/internal/bot/internal"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// SmartBot counts cards from the view and picks its play through a rule
// pipeline. It keeps memory between requests, so one instance serves one seat.
type SmartBot struct {
	Memory *brain.GameMemory
	Rules  []SelectionRule
	Tuning internal.BotTuning
}

func NewSmartBot() *SmartBot {
	return &SmartBot{
		Memory: brain.NewMemory(),
		Rules:  DefaultRules(),
		Tuning: smartBotTuning,
	}
}

func (b *SmartBot) CalculateCall(view domain.PlayerView) (domain.Call, error) {
	r := view.Current()
	if r == nil || r.Hand.Len() == 0 {
		return domain.Call(domain.MinCall), nil
	}
	est := internal.EstimateTricks(r.Hand, b.Tuning.Call)
	// A late seat has seen earlier calls; heavy bidding elsewhere means
	// fewer tricks to go around.
	others := 0
	for _, seat := range domain.Turns {
		if seat != view.Seat {
			others += r.Calls.At(seat).Int()
		}
	}
	if room := float64(domain.TricksPerRound - others); est > room {
		est = room
	}
	return internal.CallFor(est, b.Tuning), nil
}

func (b *SmartBot) CalculateMove(view domain.PlayerView) (domain.Card, error) {
	legal := view.LegalMoves()
	if len(legal) == 0 {
		return domain.Card{}, ErrNoLegalMove
	}
	b.Memory.Observe(view)

	r := view.Current()
	done := 0
	for i := range r.Tricks {
		if r.Tricks[i].IsOver() {
			done++
		}
	}
	ctx := &SelectionContext{
		View:      view,
		Trick:     view.ActiveTrick(),
		Legal:     legal,
		Memory:    b.Memory,
		Estimator: brain.NewEstimator(b.Memory),
		Phase:     internal.DetectPhase(view),
		Remaining: domain.TricksPerRound - done,
	}
	for _, rule := range b.Rules {
		rule.Apply(ctx)
		if ctx.Decided() {
			break
		}
	}
	if !ctx.Decided() {
		return lowest(legal), nil
	}
	return ctx.Selected, nil
}
