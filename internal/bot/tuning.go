package bot

import botinternal "github.com/prasantadh/callbreak-np/internal/bot/internal"

// DefaultTuning is a cautious estimate: calls that are missed cost the full
// call, so the bias rounds down.
var DefaultTuning = botinternal.BotTuning{
	Call: botinternal.CallWeights{
		SideAce:     1.0,
		SideKing:    0.7,
		SideQueen:   0.25,
		SpadeAce:    1.0,
		SpadeKing:   0.9,
		SpadeQueen:  0.6,
		LongSpade:   0.8,
		Void:        0.9,
		Singleton:   0.5,
		LongSideCap: 5,
	},
	CallBias: -0.3,
}

// smartBotTuning trusts its play more and bids closer to the estimate.
var smartBotTuning = botinternal.BotTuning{
	Call:     DefaultTuning.Call,
	CallBias: -0.1,
}
