package bot

import (
	"github.com/prasantadh/callbreak-np/internal/bot/brain"
	"github.com/prasantadh/callbreak-np/internal/bot/internal"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// SelectionContext holds the state for the card selection pipeline.
type SelectionContext struct {
	View      domain.PlayerView
	Trick     *domain.Trick
	Legal     []domain.Card
	Memory    *brain.GameMemory
	Estimator *brain.Estimator
	Phase     internal.RoundPhase
	// Remaining counts tricks not yet completed, including the active one.
	Remaining int
	Selected  domain.Card
}

// Decided reports whether a rule has picked a card.
func (c *SelectionContext) Decided() bool {
	return !c.Selected.IsZero()
}

func (c *SelectionContext) leading() bool {
	_, lead := c.Trick.Starter()
	return lead.IsZero()
}

// SelectionRule represents a logic unit that may pick the card to play.
// Rules run in order and the first one to select wins.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

// DefaultRules is the pipeline SmartBot runs.
func DefaultRules() []SelectionRule {
	return []SelectionRule{
		&ForcedRule{},
		&LeadBossRule{},
		&LeadLowRule{},
		&CoverRule{},
		&DuckRule{},
		&ShedRule{},
	}
}

// ForcedRule plays the only legal card.
type ForcedRule struct{}

func (r *ForcedRule) Name() string { return "Forced" }

func (r *ForcedRule) Apply(ctx *SelectionContext) {
	if len(ctx.Legal) == 1 {
		ctx.Selected = ctx.Legal[0]
	}
}

// LeadBossRule leads a card no opponent can beat while tricks are still needed.
type LeadBossRule struct{}

func (r *LeadBossRule) Name() string { return "LeadBoss" }

func (r *LeadBossRule) Apply(ctx *SelectionContext) {
	if !ctx.leading() || ctx.Memory.Needed() <= 0 {
		return
	}
	var sure []domain.Card
	for _, c := range ctx.Estimator.BossCards(ctx.Legal) {
		if ctx.Estimator.LeadWinProbability(c) == 1 {
			sure = append(sure, c)
		}
	}
	if len(sure) > 0 {
		// Cash side suits first; a boss trump keeps.
		ctx.Selected = lowest(sideOrAll(sure))
	}
}

// LeadLowRule leads the lowest side card, keeping trumps for cutting.
type LeadLowRule struct{}

func (r *LeadLowRule) Name() string { return "LeadLow" }

func (r *LeadLowRule) Apply(ctx *SelectionContext) {
	if ctx.leading() {
		ctx.Selected = lowest(sideOrAll(ctx.Legal))
	}
}

// CoverRule tries to take the trick while the call is not yet made.
type CoverRule struct{}

func (r *CoverRule) Name() string { return "Cover" }

func (r *CoverRule) Apply(ctx *SelectionContext) {
	if ctx.Memory.Needed() <= 0 {
		return
	}
	win := winners(ctx.Trick, ctx.Legal)
	if len(win) == 0 {
		return
	}
	if lastToAct(ctx.Trick) {
		ctx.Selected = lowest(win)
		return
	}

	var safe, cuts []domain.Card
	_, lead := ctx.Trick.Starter()
	for _, c := range win {
		switch {
		case c.Suit == domain.Trump && lead.Suit != domain.Trump:
			cuts = append(cuts, c)
		case ctx.Memory.IsBoss(c) && !ctx.Estimator.CutRisk(ctx.Trick, c.Suit):
			safe = append(safe, c)
		}
	}
	switch {
	case len(safe) > 0:
		ctx.Selected = lowest(safe)
	case len(cuts) > 0:
		ctx.Selected = lowest(cuts)
	case ctx.Phase == internal.PhaseEnd || ctx.Memory.Needed() >= ctx.Remaining:
		ctx.Selected = lowest(win)
	}
}

// DuckRule sheds the highest losing card once the call is made.
type DuckRule struct{}

func (r *DuckRule) Name() string { return "Duck" }

func (r *DuckRule) Apply(ctx *SelectionContext) {
	if ctx.Memory.Needed() > 0 || ctx.leading() {
		return
	}
	win := winners(ctx.Trick, ctx.Legal)
	var losers []domain.Card
	for _, c := range ctx.Legal {
		if !containsCard(win, c) {
			losers = append(losers, c)
		}
	}
	if len(losers) > 0 {
		ctx.Selected = highest(losers)
	}
}

// ShedRule gives up the cheapest card.
type ShedRule struct{}

func (r *ShedRule) Name() string { return "Shed" }

func (r *ShedRule) Apply(ctx *SelectionContext) {
	ctx.Selected = lowest(ctx.Legal)
}

func containsCard(cards []domain.Card, c domain.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
