package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/app"
	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/config"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

const (
	outboxSize = 256
	// gameOverGraceSeconds keeps a finished match alive so clients can read the result.
	gameOverGraceSeconds = 5
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
// The game itself runs in an app.Host on its own goroutine; MatchLoop only
// routes messages between it and the presences.
type MatchState struct {
	Seats            [4]string                   `json:"seats"`               // Array of user IDs, empty string means seat is empty
	Phase            string                      `json:"phase"`               // lobby, playing or over
	Tick             int64                       `json:"tick"`                // Current tick of the match
	BotAutoFillTicks int64                       `json:"bot_auto_fill_ticks"` // Ticks to wait before auto-filling with bots
	FirstHumanTick   int64                       `json:"first_human_tick"`    // Tick when the first human sat down
	TerminateAt      int64                       `json:"terminate_at"`        // Tick after which a finished match ends
	Presences        map[string]runtime.Presence `json:"-"`                   // Map UserId -> Presence for targeted messaging
	Humans           map[string]*matchTransport  `json:"-"`                   // Transport of every human seat
	Bots             map[string]bot.BotIdentity  `json:"-"`                   // Identity of every bot seat
	Host             *app.Host                   `json:"-"`
	Summary          []domain.RoundSummary       `json:"-"`

	config config.GameConfig
	outbox chan outbound
	done   chan error
	cancel context.CancelFunc
}

func newMatchState(cfg config.GameConfig) *MatchState {
	return &MatchState{
		Phase:            PhaseLobby,
		BotAutoFillTicks: int64(cfg.BotAutoFillDelaySeconds * TickRate),
		Presences:        make(map[string]runtime.Presence),
		Humans:           make(map[string]*matchTransport),
		Bots:             make(map[string]bot.BotIdentity),
		config:           cfg,
		outbox:           make(chan outbound, outboxSize),
		done:             make(chan error, 1),
	}
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func (ms *MatchState) isBotUserId(userId string) bool {
	if _, ok := ms.Bots[userId]; ok {
		return true
	}
	return bot.IsBot(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string, isBot func(string) bool) int {
	for i, userId := range seats {
		if userId != "" && !isBot(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string, isBot func(string) bool) bool {
	return findFirstHumanSeat(seats, isBot) == -1
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.GetGameConfig()
	state := newMatchState(cfg)
	label, err := encodeLabel(state.GetOpenSeatsCount(), state.Phase)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if matchState.Phase != PhaseLobby {
		return state, false, "Match already started"
	}
	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "Match full"
	}
	for _, seat := range matchState.Seats {
		if seat == presence.GetUserId() {
			return state, false, "Already seated"
		}
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = userID
				matchState.Humans[userID] = newMatchTransport(userID, matchState.outbox)
				assigned = true
				logger.Debug("MatchJoin: User %s took seat %d.", userID, i)
				break
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
			continue
		}
		if matchState.FirstHumanTick == 0 {
			matchState.FirstHumanTick = tick
		}
	}

	if matchState.GetOpenSeatsCount() == 0 {
		if err := mh.startGame(matchState, logger); err != nil {
			logger.Error("MatchJoin: Failed to start game: %v", err)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSeats(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match. In the
// lobby the seat is freed; during a game the seat stays and its bot fallback
// takes over.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		if matchState.Phase != PhaseLobby {
			if t, ok := matchState.Humans[userID]; ok {
				t.Close()
			}
			logger.Debug("MatchLeave: User %s left, a bot plays the seat.", userID)
			continue
		}
		for i, seatUserId := range matchState.Seats {
			if seatUserId == userID {
				matchState.Seats[i] = ""
				delete(matchState.Humans, userID)
				logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, i)
				break
			}
		}
	}

	if matchState.Phase == PhaseLobby && shouldTerminateNoHumans(matchState.Seats[:], matchState.isBotUserId) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}
	if matchState.Phase != PhaseLobby && len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match, every human left.")
		mh.stop(matchState)
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpDecision:
			mh.handleDecision(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Phase == PhaseLobby {
		mh.processAutoFill(matchState, dispatcher, logger)
	}

	mh.flushOutbox(matchState, dispatcher, logger)

	if matchState.Phase == PhasePlaying {
		select {
		case err := <-matchState.done:
			mh.finishGame(matchState, dispatcher, logger, err)
		default:
		}
	}

	if matchState.Phase == PhaseOver && tick >= matchState.TerminateAt {
		return nil
	}
	return matchState
}

// processAutoFill seats bots in every empty seat once a human has waited
// BotAutoFillTicks, then starts the game.
func (mh *matchHandler) processAutoFill(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.GetHumanPlayerCount() == 0 {
		state.FirstHumanTick = 0
		return
	}
	if state.Tick-state.FirstHumanTick < state.BotAutoFillTicks {
		return
	}

	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		identity := bot.GetBotIdentity(i)
		if state.taken(identity.UserID) {
			identity.UserID = fmt.Sprintf("%s-%d", identity.UserID, i)
		}
		state.Seats[i] = identity.UserID
		state.Bots[identity.UserID] = identity
		logger.Info("processAutoFill: Added bot %s (%s) to seat %d", identity.DisplayName, identity.UserID, i)
	}

	if err := mh.startGame(state, logger); err != nil {
		logger.Error("processAutoFill: Failed to start game: %v", err)
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSeats(state, dispatcher, logger)
}

func (ms *MatchState) taken(userID string) bool {
	for _, seat := range ms.Seats {
		if seat == userID {
			return true
		}
	}
	return false
}

// startGame builds the agents in seat order and runs the Host on its own goroutine.
func (mh *matchHandler) startGame(state *MatchState, logger runtime.Logger) error {
	cfg := state.config
	log := newLogrusLogger(logger)
	level, err := bot.ParseLevel(cfg.BotLevel)
	if err != nil {
		logger.Warn("startGame: %v, using %s", err, bot.BotLevelGood)
		level = bot.BotLevelGood
	}

	ctx, cancel := context.WithCancel(context.Background())
	host := app.NewHost(nil, app.HostOptions{
		ShuffleSeats: cfg.ShuffleSeats,
		Logger:       log,
		Observer:     eventObserver(ctx, state.outbox),
	})
	for _, userID := range state.Seats {
		var a agent.Agent
		if t, ok := state.Humans[userID]; ok {
			a = agent.NewHuman(userID, t, cfg.TurnTimeout(), log)
		} else {
			b, err := bot.NewBotAgent(state.Bots[userID], level, bot.AgentOptions{Script: cfg.BotScript, Logger: log})
			if err != nil {
				cancel()
				return err
			}
			a = b
		}
		if err := host.AddAgent(userID, a); err != nil {
			cancel()
			return err
		}
	}

	state.Host = host
	state.cancel = cancel
	state.Phase = PhasePlaying
	done := state.done
	go func() { done <- host.Run(ctx) }()
	logger.Info("startGame: Game started with %d humans.", state.GetHumanPlayerCount())
	return nil
}

func (mh *matchHandler) finishGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, runErr error) {
	// The observer has pushed every event before Run returned.
	mh.flushOutbox(state, dispatcher, logger)

	state.cancel()
	state.Phase = PhaseOver
	state.Summary = state.Host.Summary()
	state.TerminateAt = state.Tick + gameOverGraceSeconds*TickRate
	result := gameOverMessage{Players: state.Host.Players(), Summary: state.Summary}
	if runErr != nil {
		logger.Error("finishGame: Game aborted: %v", runErr)
		result.Error = runErr.Error()
	} else {
		logger.Info("finishGame: Game over.")
	}
	mh.send(state, dispatcher, logger, outbound{opCode: OpGameOver, data: result})
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleDecision(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	t, ok := state.Humans[senderID]
	if !ok || state.Phase != PhasePlaying {
		mh.sendError(state, dispatcher, logger, senderID, 409, "no game in progress for this user")
		return
	}
	reply, err := agent.DecodeClientMessage(msg.GetData())
	if err != nil {
		logger.Warn("handleDecision: Invalid message from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		// An empty reply makes the pending request fall back at once.
		reply = agent.ClientMessage{}
	}
	if !t.deliver(reply) {
		mh.sendError(state, dispatcher, logger, senderID, 409, "no decision pending")
	}
}

// flushOutbox dispatches queued messages, up to one buffer's worth per tick.
func (mh *matchHandler) flushOutbox(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for range outboxSize {
		select {
		case out := <-state.outbox:
			mh.send(state, dispatcher, logger, out)
		default:
			return
		}
	}
}

func (mh *matchHandler) send(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, out outbound) {
	var recipients []runtime.Presence
	if out.userID != "" {
		p, ok := state.Presences[out.userID]
		if !ok {
			return
		}
		recipients = []runtime.Presence{p}
	}
	data, err := json.Marshal(out.data)
	if err != nil {
		logger.Error("send: Failed to marshal opcode %d: %v", out.opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(out.opCode, data, recipients, nil, true); err != nil {
		logger.Warn("send: Failed to dispatch opcode %d: %v", out.opCode, err)
	}
}

type seatsMessage struct {
	Seats [4]string `json:"seats"`
	Names [4]string `json:"names"`
}

func (mh *matchHandler) broadcastSeats(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	msg := seatsMessage{Seats: state.Seats}
	for i, userID := range state.Seats {
		switch {
		case userID == "":
		case state.Presences[userID] != nil:
			msg.Names[i] = state.Presences[userID].GetUsername()
		case state.Bots[userID].DisplayName != "":
			msg.Names[i] = state.Bots[userID].DisplayName
		default:
			msg.Names[i] = userID
		}
	}
	mh.send(state, dispatcher, logger, outbound{opCode: OpSeats, data: msg})
}

type errorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends an error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	if _, ok := state.Presences[userID]; !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	mh.send(state, dispatcher, logger, outbound{opCode: OpError, userID: userID, data: errorMessage{Code: code, Message: message}})
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(state.GetOpenSeatsCount(), state.Phase)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// stop cancels a running host and unblocks every human seat.
func (mh *matchHandler) stop(state *MatchState) {
	if state.cancel != nil {
		state.cancel()
	}
	for _, t := range state.Humans {
		t.Close()
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		mh.stop(matchState)
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
