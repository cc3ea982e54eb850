package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// BotIdentity is the public face of a bot seat.
type BotIdentity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"`
}

var (
	botIdentities []BotIdentity
	botIDMap      map[string]BotIdentity
	loadOnce      sync.Once
	loadErr       error
	identityMu    sync.RWMutex
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var ids []BotIdentity
		if err := json.Unmarshal(data, &ids); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		SetIdentities(ids)
	})
	return loadErr
}

// SetIdentities replaces the bot pool.
func SetIdentities(ids []BotIdentity) {
	identityMu.Lock()
	defer identityMu.Unlock()
	botIdentities = append([]BotIdentity(nil), ids...)
	botIDMap = make(map[string]BotIdentity, len(ids))
	for _, id := range botIdentities {
		botIDMap[id.UserID] = id
	}
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
// Without a pool it makes one up.
func GetBotIdentity(index int) BotIdentity {
	identityMu.RLock()
	defer identityMu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	identityMu.RLock()
	defer identityMu.RUnlock()
	_, ok := botIDMap[userID]
	return ok
}

// NewBotAgent builds an agent for identity, using its own level when set and
// defaultLevel otherwise.
func NewBotAgent(identity BotIdentity, defaultLevel BotLevel, opts AgentOptions) (*Agent, error) {
	level := defaultLevel
	if identity.Level != "" {
		l, err := ParseLevel(identity.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	var brain Brain
	if opts.Script != "" {
		sb, err := LoadScriptBot(opts.Script)
		if err != nil {
			return nil, err
		}
		brain = sb
	} else {
		b, err := NewBrain(level)
		if err != nil {
			return nil, err
		}
		brain = b
	}
	return NewAgent(identity.UserID, identity.DisplayName, brain, opts.Logger), nil
}
