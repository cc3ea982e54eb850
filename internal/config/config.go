package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EnvPrefix is prepended to the upper-cased JSON key of every overridable setting.
const EnvPrefix = "CALLBREAK_"

// MinSeatTokenSecretLen is the shortest seat_token_secret accepted.
const MinSeatTokenSecretLen = 16

var ErrWeakSeatTokenSecret = errors.New("seat_token_secret is shorter than 16 bytes")

type GameConfig struct {
	// ShuffleSeats permutes the roster once the fourth player joins.
	ShuffleSeats bool `json:"shuffle_seats"`
	// TurnTimeoutSeconds bounds how long a human seat may think. 0 waits forever.
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
	BotLevel           string `json:"bot_level"`
	// BotScript is an optional Lua strategy used for every bot seat.
	BotScript string `json:"bot_script"`
	// BotIdentities is an optional JSON file of bot names and levels.
	BotIdentities       string `json:"bot_identities"`
	// SeatTokenSecret signs seat tokens. Left empty, a random secret is made
	// at startup and tokens do not survive a restart.
	SeatTokenSecret     string `json:"seat_token_secret"`
	SeatTokenTTLSeconds int    `json:"seat_token_ttl_seconds"`
	MaxRooms            int    `json:"max_rooms"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before filling a Nakama match with bots.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

// Default returns the settings used when no file is loaded.
func Default() GameConfig {
	return GameConfig{
		ShuffleSeats:            true,
		TurnTimeoutSeconds:      30,
		BotLevel:                "good",
		SeatTokenTTLSeconds:     600,
		MaxRooms:                100,
		BotAutoFillDelaySeconds: 5,
	}
}

func (c GameConfig) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

func (c GameConfig) SeatTokenTTL() time.Duration {
	return time.Duration(c.SeatTokenTTLSeconds) * time.Second
}

func (c GameConfig) BotAutoFillDelay() time.Duration {
	return time.Duration(c.BotAutoFillDelaySeconds) * time.Second
}

// CheckSeatTokenSecret rejects a configured secret too short to sign with.
// An empty secret passes; see RandomSecret.
func (c GameConfig) CheckSeatTokenSecret() error {
	if c.SeatTokenSecret != "" && len(c.SeatTokenSecret) < MinSeatTokenSecretLen {
		return ErrWeakSeatTokenSecret
	}
	return nil
}

// RandomSecret returns 32 random bytes, hex encoded.
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate seat token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once.
// An empty path keeps the defaults; environment overrides apply either way.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := Load(path, os.LookupEnv)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// Load reads path over the defaults and applies overrides found through lookup.
func Load(path string, lookup func(string) (string, bool)) (GameConfig, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("failed to read game config: %w", err)
		}
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("failed to unmarshal game config: %w", err)
		}
	}
	if err := applyEnv(&c, lookup); err != nil {
		return c, err
	}
	return c, nil
}

func applyEnv(c *GameConfig, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	strs := map[string]*string{
		"bot_level":         &c.BotLevel,
		"bot_script":        &c.BotScript,
		"bot_identities":    &c.BotIdentities,
		"seat_token_secret": &c.SeatTokenSecret,
	}
	ints := map[string]*int{
		"turn_timeout_seconds":        &c.TurnTimeoutSeconds,
		"seat_token_ttl_seconds":      &c.SeatTokenTTLSeconds,
		"max_rooms":                   &c.MaxRooms,
		"bot_auto_fill_delay_seconds": &c.BotAutoFillDelaySeconds,
	}
	for key, dst := range strs {
		if v, ok := lookup(envName(key)); ok {
			*dst = v
		}
	}
	for key, dst := range ints {
		if v, ok := lookup(envName(key)); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", envName(key), err)
			}
			*dst = n
		}
	}
	if v, ok := lookup(envName("shuffle_seats")); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envName("shuffle_seats"), err)
		}
		c.ShuffleSeats = b
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}
