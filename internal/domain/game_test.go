package domain

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newFullGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame(rand.New(rand.NewSource(1)), false)
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		if err := g.AddPlayer(id); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// step drives one action of whoever is to act: a call while bidding, else the
// first legal card.
func step(t *testing.T, g *Game) {
	t.Helper()
	id, err := g.TurnToAct()
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Deal(); err != nil {
		t.Fatal(err)
	}
	view, err := g.ViewFor(id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Calling() {
		if err := g.Call(id, Call(1)); err != nil {
			t.Fatalf("call %s: %v", id, err)
		}
		return
	}
	moves, err := g.LegalMoves(id)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Play(id, moves[0]); err != nil {
		t.Fatalf("play %s: %v", id, err)
	}
}

func TestGameJoin(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(1)), false)
	if err := g.AddPlayer("a"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddPlayer("a"); !errors.Is(err, ErrPlayerAlreadyInGame) {
		t.Errorf("duplicate join: %v", err)
	}
	if _, err := g.TurnToAct(); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("turn in lobby: %v", err)
	}
	if err := g.Call("a", Call(1)); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("call in lobby: %v", err)
	}
	for _, id := range []string{"b", "c", "d"} {
		if err := g.AddPlayer(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddPlayer("e"); !errors.Is(err, ErrNotAcceptingNewPlayers) {
		t.Errorf("fifth join: %v", err)
	}
	if err := g.AddPlayer("a"); !errors.Is(err, ErrNotAcceptingNewPlayers) {
		t.Errorf("duplicate join on full game: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, g.Players()); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}
	if err := g.Call("zed", Call(1)); !errors.Is(err, ErrPlayerNotInGame) {
		t.Errorf("unknown player: %v", err)
	}
}

func TestGameShuffleKeepsRoster(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(3)), true)
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		if err := g.AddPlayer(id); err != nil {
			t.Fatal(err)
		}
	}
	got := g.Players()
	for _, id := range ids {
		if _, err := g.SeatOf(id); err != nil {
			t.Errorf("%s lost its seat: %v", id, err)
		}
	}
	if len(got) != NumSeats {
		t.Errorf("roster size %d", len(got))
	}
}

func TestGameFirstCallAndPlay(t *testing.T) {
	g := newFullGame(t)

	id, err := g.TurnToAct()
	if err != nil {
		t.Fatal(err)
	}
	if id != "p0" {
		t.Fatalf("round 0 should start at seat 0, got %s", id)
	}
	for _, p := range g.Players() {
		if err := g.Call(p, Call(2)); err != nil {
			t.Fatal(err)
		}
	}
	moves, err := g.LegalMoves("p0")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Play("p0", moves[0]); err != nil {
		t.Fatal(err)
	}
	next, err := g.TurnToAct()
	if err != nil {
		t.Fatal(err)
	}
	if next != "p1" {
		t.Errorf("after the lead, turn is %s, want p1", next)
	}

	view, err := g.ViewFor("p0")
	if err != nil {
		t.Fatal(err)
	}
	if n := view.Current().Hand.Len(); n != HandSize-1 {
		t.Errorf("viewer hand has %d cards", n)
	}
	b, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	var back PlayerView
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(view.LegalMoves(), back.LegalMoves()); diff != "" {
		t.Errorf("legal moves differ after round trip (-want +got):\n%s", diff)
	}
}

func TestGamePlaysFiveRounds(t *testing.T) {
	g := newFullGame(t)
	perRound := NumSeats + NumSeats*TricksPerRound

	for round := 0; round < RoundsPerGame; round++ {
		starter, err := g.TurnToAct()
		if err != nil {
			t.Fatal(err)
		}
		if want := g.Players()[round%NumSeats]; starter != want {
			t.Errorf("round %d starts at %s, want %s", round, starter, want)
		}
		for i := 0; i < perRound; i++ {
			step(t, g)
		}
		if g.CurrentRound() != round {
			t.Fatalf("current round %d, want %d", g.CurrentRound(), round)
		}
	}

	if !g.IsOver() {
		t.Fatalf("game not over, state %s", g.State())
	}
	if err := g.Call("p0", Call(1)); !errors.Is(err, ErrNotAcceptingCalls) {
		t.Errorf("call after game over: %v", err)
	}
	if err := g.Play("p0", NewCard(Ace, Spades)); !errors.Is(err, ErrNotAcceptingPlay) {
		t.Errorf("play after game over: %v", err)
	}
	if _, err := g.TurnToAct(); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("turn to act after game over: %v", err)
	}
	if err := g.Deal(); !errors.Is(err, ErrNotAcceptingCalls) {
		t.Errorf("deal after game over: %v", err)
	}
	if g.CurrentRound() != RoundsPerGame-1 {
		t.Errorf("a round was created after game over")
	}

	summary := g.Summary()
	if len(summary) != RoundsPerGame {
		t.Fatalf("summary has %d rounds", len(summary))
	}
	for i, s := range summary {
		total := 0
		for _, n := range s.TricksWon {
			total += n
		}
		if !s.Over || total != TricksPerRound || s.Calls != [NumSeats]int{1, 1, 1, 1} {
			t.Errorf("round %d summary %+v", i, s)
		}
	}
}

func TestGamePlayDoesNotAdvanceRound(t *testing.T) {
	g := newFullGame(t)
	for i := 0; i < NumSeats+NumSeats*TricksPerRound; i++ {
		step(t, g)
	}
	if g.CurrentRound() != 0 {
		t.Fatalf("round advanced on play: %d", g.CurrentRound())
	}
	if err := g.Play("p1", NewCard(Ace, Spades)); !errors.Is(err, ErrNotAcceptingPlay) {
		t.Errorf("play between rounds: %v", err)
	}
	if err := g.Call("p1", Call(1)); err != nil {
		t.Fatalf("round 1 opens on seat 1's call: %v", err)
	}
	if g.CurrentRound() != 1 {
		t.Errorf("current round %d, want 1", g.CurrentRound())
	}
}
