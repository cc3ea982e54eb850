package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent         []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) count(opCode int64) int {
	n := 0
	for _, m := range md.sent {
		if m.opCode == opCode {
			n++
		}
	}
	return n
}

type mockPresence struct {
	userID string
}

func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return false }
func (p mockPresence) GetUsername() string               { return p.userID + "-name" }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

func initState(t *testing.T, mh *matchHandler) *MatchState {
	t.Helper()
	state, tickRate, label := mh.MatchInit(context.Background(), noopLogger{}, nil, nil, nil)
	if tickRate != TickRate {
		t.Fatalf("tick rate = %d, want %d", tickRate, TickRate)
	}
	if label == "" {
		t.Fatal("expected an initial label")
	}
	ms, ok := state.(*MatchState)
	if !ok {
		t.Fatalf("state is %T", state)
	}
	return ms
}

func decodeLabel(t *testing.T, label string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(label), &out); err != nil {
		t.Fatalf("label %q: %v", label, err)
	}
	return out
}

func TestEncodeLabel(t *testing.T) {
	tests := []struct {
		name  string
		open  int
		phase string
	}{
		{name: "LobbyState", open: 3, phase: PhaseLobby},
		{name: "PlayingState", open: 0, phase: PhasePlaying},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			label, err := encodeLabel(test.open, test.phase)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			got := decodeLabel(t, label)
			if got["open"] != float64(test.open) || got["phase"] != test.phase || got["game"] != GameLabel {
				t.Errorf("Got %v", got)
			}
		})
	}
}

func TestQuickMatchQuery(t *testing.T) {
	want := "+label.open:>=1 +label.game:callbreak +label.phase:lobby"
	if got := quickMatchQuery(); got != want {
		t.Fatalf("quickMatchQuery() = %q, want %q", got, want)
	}
}

func TestFindFirstHumanSeat(t *testing.T) {
	isBot := func(id string) bool { return id == "bot-0" || id == "bot-1" }

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{name: "FirstHumanAfterBot", seats: []string{"bot-0", "user-1", "", ""}, want: 1},
		{name: "AllBots", seats: []string{"bot-0", "bot-1", "", ""}, want: -1},
		{name: "AllEmpty", seats: []string{"", "", "", ""}, want: -1},
		{name: "FirstHumanIsSeatZero", seats: []string{"user-1", "bot-0", "user-2", ""}, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats, isBot); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
			if got := shouldTerminateNoHumans(test.seats, isBot); got != (test.want == -1) {
				t.Fatalf("shouldTerminateNoHumans() = %t", got)
			}
		})
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	mh := newMatchHandler()
	state := initState(t, mh)
	dispatcher := &mockDispatcher{}

	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{mockPresence{userID: "user-1"}})
	if _, ok, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, mockPresence{userID: "user-1"}, nil); ok {
		t.Fatal("expected a seated user to be rejected")
	} else if reason == "" {
		t.Fatal("expected a reason")
	}
	if _, ok, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, mockPresence{userID: "user-2"}, nil); !ok {
		t.Fatal("expected a second user to be accepted")
	}
	if got := decodeLabel(t, dispatcher.lastLabel)["open"]; got != float64(3) {
		t.Fatalf("open = %v, want 3", got)
	}
	if dispatcher.count(OpSeats) != 1 {
		t.Fatalf("expected one seats broadcast, got %d", dispatcher.count(OpSeats))
	}
}

func TestMatchLeaveInLobbyTerminatesWithoutHumans(t *testing.T) {
	mh := newMatchHandler()
	state := initState(t, mh)
	dispatcher := &mockDispatcher{}
	p := mockPresence{userID: "user-1"}

	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{p})
	if got := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.Presence{p}); got != nil {
		t.Fatalf("expected termination, got %T", got)
	}
}

func TestDecisionOutsideGameIsRejected(t *testing.T) {
	mh := newMatchHandler()
	state := initState(t, mh)
	dispatcher := &mockDispatcher{}
	p := mockPresence{userID: "user-1"}
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{p})

	msg := mockMatchData{mockPresence: p, opCode: OpDecision, data: []byte(`{"call": 2}`)}
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{msg})

	if dispatcher.count(OpError) != 1 {
		t.Fatalf("expected one error, got %d", dispatcher.count(OpError))
	}
}

// autoFill joins user-1 and ticks until the bots fill the table.
func autoFill(t *testing.T, mh *matchHandler, state *MatchState, dispatcher *mockDispatcher) (tick int64) {
	t.Helper()
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{mockPresence{userID: "user-1"}})
	for tick = 2; tick <= state.BotAutoFillTicks+1; tick++ {
		if mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, nil) == nil {
			t.Fatal("match ended during auto-fill")
		}
	}
	if state.Phase != PhasePlaying {
		t.Fatalf("phase = %s after auto-fill, want %s", state.Phase, PhasePlaying)
	}
	if state.GetOpenSeatsCount() != 0 || state.GetHumanPlayerCount() != 1 {
		t.Fatalf("seats after auto-fill: %v", state.Seats)
	}
	for _, seat := range state.Seats {
		if seat != "user-1" && !state.isBotUserId(seat) {
			t.Fatalf("seat %s is neither the human nor a bot", seat)
		}
	}
	return tick
}

func TestMatchPlaysToGameOver(t *testing.T) {
	mh := newMatchHandler()
	state := initState(t, mh)
	dispatcher := &mockDispatcher{}
	tick := autoFill(t, mh, state, dispatcher)

	answered := 0
	deadline := time.Now().Add(20 * time.Second)
	for ; ; tick++ {
		if time.Now().After(deadline) {
			t.Fatal("game did not finish")
		}
		var replies []runtime.MatchData
		for _, m := range dispatcher.sent[answered:] {
			answered++
			if m.opCode != OpRequest {
				continue
			}
			var req agent.ServerMessage
			if err := json.Unmarshal(m.data, &req); err != nil {
				t.Fatalf("request: %v", err)
			}
			var reply agent.ClientMessage
			if req.Action == agent.ActionCall {
				reply = agent.CallMessage(domain.MinCall)
			} else {
				reply = agent.BreakMessage(req.View.LegalMoves()[0])
			}
			data, _ := json.Marshal(reply)
			replies = append(replies, mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpDecision, data: data})
		}
		if mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, replies) == nil {
			break
		}
		if len(replies) == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	if state.Phase != PhaseOver {
		t.Fatalf("phase = %s, want %s", state.Phase, PhaseOver)
	}
	if len(state.Summary) != domain.RoundsPerGame {
		t.Fatalf("rounds = %d, want %d", len(state.Summary), domain.RoundsPerGame)
	}
	if dispatcher.count(OpGameOver) != 1 {
		t.Fatalf("expected one game over broadcast, got %d", dispatcher.count(OpGameOver))
	}
	if dispatcher.count(OpError) != 0 {
		t.Fatalf("unexpected errors sent")
	}
	// 5 calls and 65 breaks were asked of the human.
	if got := dispatcher.count(OpRequest); got != 70 {
		t.Fatalf("requests = %d, want 70", got)
	}
	if phase := decodeLabel(t, dispatcher.lastLabel)["phase"]; phase != PhaseOver {
		t.Fatalf("label phase = %v", phase)
	}
}

func TestMatchLeaveDuringGameStopsHost(t *testing.T) {
	mh := newMatchHandler()
	state := initState(t, mh)
	dispatcher := &mockDispatcher{}
	tick := autoFill(t, mh, state, dispatcher)

	if got := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, []runtime.Presence{mockPresence{userID: "user-1"}}); got != nil {
		t.Fatalf("expected termination, got %T", got)
	}
	select {
	case err := <-state.done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("host returned %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("host did not stop")
	}
}

type captureLogger struct {
	noopLogger
	entries *[]string
	fields  map[string]interface{}
}

func (c captureLogger) Warn(format string, v ...interface{}) {
	*c.entries = append(*c.entries, "warn")
}

func (c captureLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func TestRuntimeHookForwardsEntries(t *testing.T) {
	var entries []string
	capture := captureLogger{entries: &entries, fields: map[string]interface{}{}}
	log := newLogrusLogger(capture)

	log.WithField("room", "r1").WithError(errors.New("boom")).Warn("fallback")

	if len(entries) != 1 || entries[0] != "warn" {
		t.Fatalf("entries = %v", entries)
	}
	if capture.fields["room"] != "r1" || capture.fields["error"] != "boom" {
		t.Fatalf("fields = %v", capture.fields)
	}
}

var _ runtime.Match = (*matchHandler)(nil)
