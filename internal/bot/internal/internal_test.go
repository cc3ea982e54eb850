package internal

import (
	"testing"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

var testWeights = CallWeights{
	SideAce: 1, SideKing: 0.7, SideQueen: 0.3,
	SpadeAce: 1, SpadeKing: 0.9, SpadeQueen: 0.6,
	LongSpade: 0.8, Void: 1, Singleton: 0.5,
	LongSideCap: 5,
}

func hand(t *testing.T, short ...string) domain.Hand {
	t.Helper()
	cards := make([]domain.Card, len(short))
	for i, s := range short {
		c, err := domain.ParseCard(s)
		if err != nil {
			t.Fatal(err)
		}
		cards[i] = c
	}
	return domain.HeldHand(cards)
}

func TestProfileHand_GroupsBySuit(t *testing.T) {
	p := ProfileHand(hand(t, "as", "2s", "kh", "qh", "3h", "jd", "4c"))

	if p.Spades() != 2 {
		t.Fatalf("Spades = %d, want 2", p.Spades())
	}
	hearts := p.Suit(domain.Hearts)
	if hearts.Length() != 3 || hearts.Ranks[0] != domain.King {
		t.Fatalf("hearts = %+v", hearts)
	}
	if p.Faces != 4 {
		t.Fatalf("Faces = %d, want 4", p.Faces)
	}
	voids, singletons := p.ShortSuits()
	if voids != 0 || singletons != 2 {
		t.Fatalf("ShortSuits = %d, %d", voids, singletons)
	}
}

func TestEstimateTricks_StrongHand(t *testing.T) {
	strong := hand(t,
		"as", "ks", "qs", "js", "10s",
		"ah", "kh",
		"ad", "kd", "2d",
		"ac", "2c", "3c",
	)
	weak := hand(t,
		"2s",
		"3h", "4h", "5h", "6h",
		"3d", "4d", "5d", "6d",
		"jc", "3c", "4c", "5c",
	)
	if s, w := EstimateTricks(strong, testWeights), EstimateTricks(weak, testWeights); s <= w {
		t.Fatalf("strong %.2f should exceed weak %.2f", s, w)
	}
	if got := CallFor(EstimateTricks(weak, testWeights), BotTuning{}); got != domain.Call(domain.MinCall) {
		t.Fatalf("weak hand call = %d, want minimum", got)
	}
}

func TestEstimateTricks_VoidNeedsSpareSpade(t *testing.T) {
	oneSpade := hand(t, "2s", "2h", "3h", "4h", "5h", "6h", "7h", "8h", "9h", "10h", "jh", "qh", "kh")
	twoSpades := hand(t, "2s", "3s", "2h", "3h", "4h", "5h", "6h", "7h", "8h", "9h", "10h", "jh", "qh")

	if got := EstimateTricks(oneSpade, testWeights); got != testWeights.Void {
		t.Fatalf("one spade, two voids = %.2f, want %.2f", got, testWeights.Void)
	}
	if got := EstimateTricks(twoSpades, testWeights); got != 2*testWeights.Void {
		t.Fatalf("two spades, two voids = %.2f, want %.2f", got, 2*testWeights.Void)
	}
}

func TestCallFor_Clamps(t *testing.T) {
	if got := CallFor(40, BotTuning{}); got != domain.Call(domain.MaxCall) {
		t.Fatalf("CallFor(40) = %d", got)
	}
	if got := CallFor(-2, BotTuning{}); got != domain.Call(domain.MinCall) {
		t.Fatalf("CallFor(-2) = %d", got)
	}
	if got := CallFor(2.4, BotTuning{CallBias: 0.2}); got != 3 {
		t.Fatalf("CallFor(2.4) with bias = %d", got)
	}
}

func TestDetectPhase(t *testing.T) {
	view := domain.PlayerView{}
	if got := DetectPhase(view); got != PhaseOpening {
		t.Fatalf("empty view phase = %v", got)
	}

	full := domain.NewTrick(domain.NewTurn(0))
	for _, s := range []string{"2c", "3c", "4c", "5c"} {
		c, _ := domain.ParseCard(s)
		if err := full.Play(c); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		done int
		want RoundPhase
	}{
		{0, PhaseOpening},
		{2, PhaseOpening},
		{5, PhaseMid},
		{9, PhaseEnd},
		{13, PhaseEnd},
	}
	for _, tt := range tests {
		tricks := make([]domain.Trick, tt.done)
		for i := range tricks {
			tricks[i] = full
		}
		view := domain.PlayerView{Rounds: []domain.RoundView{{Tricks: tricks}}}
		if got := DetectPhase(view); got != tt.want {
			t.Errorf("DetectPhase(%d done) = %v, want %v", tt.done, got, tt.want)
		}
	}
}
