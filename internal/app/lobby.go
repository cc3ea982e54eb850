package app

import (
	"context"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// LobbyOptions configures NewLobby.
type LobbyOptions struct {
	MaxRooms     int
	ShuffleSeats bool
	BotLevel     bot.BotLevel
	// BotScript, when set, drives every bot seat with a Lua strategy.
	BotScript string
	Logger    logrus.FieldLogger
	// Observer sees every event of every room, tagged with the room id.
	Observer func(room string, ev Event)
}

// RoomInfo is the public listing of a room.
type RoomInfo struct {
	ID      string    `json:"id"`
	Players []string  `json:"players"`
	Started bool      `json:"started"`
	Created time.Time `json:"created"`
}

type room struct {
	id      string
	host    *Host
	players []string
	started bool
	created time.Time
	done    chan struct{}
}

// Lobby owns the open rooms. A room starts its Host on a goroutine as soon as
// four agents have joined and disappears when the game ends.
type Lobby struct {
	mu     sync.Mutex
	rooms  map[string]*room
	rng    *rand.Rand
	opts   LobbyOptions
	logger logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	bots   int
}

// NewLobby constructs a Lobby with provided rng or a time-seeded default.
// Each room gets its own rng drawn from it.
func NewLobby(rng *rand.Rand, opts LobbyOptions) *Lobby {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Lobby{
		rooms:  make(map[string]*room),
		rng:    rng,
		opts:   opts,
		logger: opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// CreateRoom opens an empty room and returns its id.
func (l *Lobby) CreateRoom() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opts.MaxRooms > 0 && len(l.rooms) >= l.opts.MaxRooms {
		return "", ErrTooManyRooms
	}
	id := uuid.NewString()
	r := &room{
		id:      id,
		created: time.Now(),
		done:    make(chan struct{}),
	}
	logger := l.logger.WithField("room", id)
	r.host = NewHost(rand.New(rand.NewSource(l.rng.Int63())), HostOptions{
		ShuffleSeats: l.opts.ShuffleSeats,
		Logger:       logger,
		Observer:     l.observerFor(id),
	})
	l.rooms[id] = r
	logger.Info("room created")
	return id, nil
}

func (l *Lobby) observerFor(id string) Observer {
	if l.opts.Observer == nil {
		return nil
	}
	return func(ev Event) { l.opts.Observer(id, ev) }
}

// Join seats a for player name in room id. The fourth join starts the game.
func (l *Lobby) Join(id, name string, a agent.Agent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	return l.join(r, name, a)
}

// join expects l.mu to be held.
func (l *Lobby) join(r *room, name string, a agent.Agent) error {
	if r.started || len(r.players) == domain.NumSeats {
		return ErrRoomFull
	}
	if err := r.host.AddAgent(name, a); err != nil {
		return err
	}
	r.players = append(r.players, name)
	if r.host.IsReady() {
		l.start(r)
	}
	return nil
}

// FillWithBots seats bots in every free seat of room id, which starts it.
func (l *Lobby) FillWithBots(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	if r.started {
		return ErrRoomFull
	}
	for len(r.players) < domain.NumSeats {
		identity := l.nextBotIdentity(r)
		a, err := bot.NewBotAgent(identity, l.opts.BotLevel, bot.AgentOptions{
			Script: l.opts.BotScript,
			Logger: l.logger.WithField("room", id),
		})
		if err != nil {
			return err
		}
		if err := l.join(r, identity.UserID, a); err != nil {
			return err
		}
	}
	return nil
}

// nextBotIdentity skips identities whose user id is already seated in r.
func (l *Lobby) nextBotIdentity(r *room) bot.BotIdentity {
	for {
		identity := bot.GetBotIdentity(l.bots)
		l.bots++
		if !slices.Contains(r.players, identity.UserID) {
			return identity
		}
		if l.bots > 1<<16 {
			return bot.BotIdentity{UserID: uuid.NewString(), DisplayName: identity.DisplayName}
		}
	}
}

func (l *Lobby) start(r *room) {
	r.started = true
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(r.done)
		log := l.logger.WithField("room", r.id)
		if err := r.host.Run(l.ctx); err != nil {
			log.WithError(err).Error("game aborted")
		}
		l.mu.Lock()
		delete(l.rooms, r.id)
		l.mu.Unlock()
		log.Info("room closed")
	}()
}

func (r *room) info() RoomInfo {
	return RoomInfo{
		ID:      r.id,
		Players: append([]string(nil), r.players...),
		Started: r.started,
		Created: r.created,
	}
}

// Room describes room id.
func (l *Lobby) Room(id string) (RoomInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[id]
	if !ok {
		return RoomInfo{}, ErrRoomNotFound
	}
	return r.info(), nil
}

// Rooms lists the open rooms, oldest first.
func (l *Lobby) Rooms() []RoomInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RoomInfo, 0, len(l.rooms))
	for _, r := range l.rooms {
		out = append(out, r.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Done returns a channel closed when the game in room id ends.
func (l *Lobby) Done(id string) (<-chan struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r.done, nil
}

// Close cancels running games and waits for their hosts to return.
func (l *Lobby) Close() {
	l.cancel()
	l.wg.Wait()
}
