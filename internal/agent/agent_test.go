package agent

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

var (
	_ Agent = (*Human)(nil)
	_ Agent = (*bot.Agent)(nil)
)

// views returns a calling view for seat 0 and a playing view for seat 1,
// after seat 0 has led, from a seeded game.
func views(t *testing.T) (calling, playing domain.PlayerView) {
	t.Helper()
	g := domain.NewGame(rand.New(rand.NewSource(5)), false)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.AddPlayer(id))
	}
	require.NoError(t, g.Deal())
	calling, err := g.ViewFor("a")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.Call(id, 2))
	}
	lead, err := g.LegalMoves("a")
	require.NoError(t, err)
	require.NoError(t, g.Play("a", lead[0]))
	playing, err = g.ViewFor("b")
	require.NoError(t, err)
	require.NotEmpty(t, playing.LegalMoves())
	return calling, playing
}

type failingTransport struct {
	sendErr, recvErr error
	reply            ClientMessage
	sent             []ServerMessage
}

func (f *failingTransport) Send(_ context.Context, m ServerMessage) error {
	f.sent = append(f.sent, m)
	return f.sendErr
}

func (f *failingTransport) Receive(context.Context) (ClientMessage, error) {
	return f.reply, f.recvErr
}

func TestHumanRelaysDecisions(t *testing.T) {
	calling, playing := views(t)
	tr := NewChanTransport()
	defer tr.Close()
	logger, hook := logtest.NewNullLogger()
	h := NewHuman("b", tr, time.Second, logger)

	want := playing.LegalMoves()[len(playing.LegalMoves())-1]
	go func() {
		req := <-tr.Requests
		assert.Equal(t, ActionCall, req.Action)
		tr.Replies <- CallMessage(4)
		req = <-tr.Requests
		assert.Equal(t, ActionBreak, req.Action)
		tr.Replies <- BreakMessage(want)
	}()

	assert.Equal(t, domain.Call(4), h.Call(context.Background(), calling))
	assert.Equal(t, want, h.Play(context.Background(), playing))
	assert.Empty(t, hook.Entries)
}

func TestHumanFallsBack(t *testing.T) {
	calling, playing := views(t)
	illegal := domain.Card{}
	for _, c := range playing.Current().Hand.Cards() {
		if !contains(playing.LegalMoves(), c) {
			illegal = c
			break
		}
	}

	tests := []struct {
		name      string
		transport *failingTransport
	}{
		{"send fails", &failingTransport{sendErr: errors.New("broken pipe")}},
		{"receive fails", &failingTransport{recvErr: ErrTransportClosed}},
		{"wrong kind", &failingTransport{reply: CallMessage(3)}},
		{"empty reply", &failingTransport{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			h := NewHuman("a", tt.transport, 0, logger)
			assert.Equal(t, playing.LegalMoves()[0], h.Play(context.Background(), playing))
			require.Len(t, hook.Entries, 1)
			assert.Equal(t, "a", hook.LastEntry().Data["player"])
		})
	}

	t.Run("illegal card", func(t *testing.T) {
		if illegal.IsZero() {
			t.Skip("every held card is legal in this deal")
		}
		h := NewHuman("a", &failingTransport{reply: BreakMessage(illegal)}, 0, nil)
		assert.Equal(t, playing.LegalMoves()[0], h.Play(context.Background(), playing))
	})

	t.Run("call out of range", func(t *testing.T) {
		h := NewHuman("a", &failingTransport{reply: CallMessage(0)}, 0, nil)
		assert.Equal(t, domain.Call(domain.MinCall), h.Call(context.Background(), calling))
	})
}

func TestHumanTimeout(t *testing.T) {
	calling, _ := views(t)
	tr := NewChanTransport()
	defer tr.Close()
	h := NewHuman("a", tr, 20*time.Millisecond, nil)

	start := time.Now()
	assert.Equal(t, domain.Call(domain.MinCall), h.Call(context.Background(), calling))
	assert.Less(t, time.Since(start), time.Second)
	<-tr.Requests
}

func TestHumanIgnoresReplyAfterTimeout(t *testing.T) {
	calling, _ := views(t)
	tr := NewChanTransport()
	defer tr.Close()
	h := NewHuman("a", tr, 20*time.Millisecond, nil)

	assert.Equal(t, domain.Call(domain.MinCall), h.Call(context.Background(), calling))
	<-tr.Requests
	// The answer to the first request shows up after the bot stood in.
	tr.Replies <- CallMessage(7)

	// Nobody answers the second request.
	assert.Equal(t, domain.Call(domain.MinCall), h.Call(context.Background(), calling))
	req := <-tr.Requests
	assert.Equal(t, ActionCall, req.Action)
	assert.Empty(t, tr.Replies)
}

func TestChanTransportReplacesUnreadRequest(t *testing.T) {
	tr := NewChanTransport()
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Send(ctx, ServerMessage{Action: ActionCall}))
	require.NoError(t, tr.Send(ctx, ServerMessage{Action: ActionBreak}))
	req := <-tr.Requests
	assert.Equal(t, ActionBreak, req.Action)
	assert.Empty(t, tr.Requests)
}

func TestReplySlot(t *testing.T) {
	s := NewReplySlot()
	assert.False(t, s.Offer(CallMessage(2)), "offer with no request outstanding")

	s.Expect()
	assert.True(t, s.Offer(CallMessage(3)))
	assert.False(t, s.Offer(CallMessage(4)), "second offer for one request")
	got := <-s.Replies()
	assert.Equal(t, domain.Call(3), *got.Call)
	s.Settle()
	assert.False(t, s.Offer(CallMessage(5)), "offer after the request settled")

	// A reply kept for an abandoned request is gone by the next one.
	s.Expect()
	require.True(t, s.Offer(CallMessage(6)))
	s.Settle()
	s.Expect()
	assert.Empty(t, s.Replies())
	s.Settle()
}

func TestHumanClosesTransport(t *testing.T) {
	tr := NewChanTransport()
	h := NewHuman("a", tr, 0, nil)
	require.NoError(t, h.Close())
	_, err := tr.Receive(context.Background())
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func contains(cards []domain.Card, c domain.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
