package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameCallBreak is the authoritative match handler name registered with Nakama.
	MatchNameCallBreak = "callbreak_match"

	// GameLabel is the "game" value of every match label.
	GameLabel = "callbreak"

	// TickRate is how many times per second MatchLoop runs.
	TickRate = 5
)

// Label keys and phases.
const (
	MatchLabelKey_OpenSeats = "open"
	MatchLabelKey_Game      = "game"
	MatchLabelKey_Phase     = "phase"

	PhaseLobby   = "lobby"
	PhasePlaying = "playing"
	PhaseOver    = "over"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server: {"call": n} or {"break": card}
	OpDecision int64 = 1

	// Server -> Client events
	OpRequest  int64 = 101 // send privately; {"action", "view"}
	OpSeats    int64 = 102
	OpEvent    int64 = 103
	OpGameOver int64 = 104
	OpError    int64 = 105 // send privately
)
