package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/config"
	"github.com/prasantadh/callbreak-np/internal/ports/nakama"
)

// InitModule loads the game config named by the runtime env, checks it, loads
// the bot roster and registers the match.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := config.LoadGameConfig(env[nakama.ConfigEnvKey]); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()
	if err := checkConfig(cfg); err != nil {
		logger.Error("InitModule: Invalid game config: %v", err)
		return err
	}
	if cfg.BotIdentities != "" {
		if err := bot.LoadIdentities(cfg.BotIdentities); err != nil {
			logger.Warn("InitModule: Could not load bot identities: %v", err)
		}
	}

	if err := nakama.Register(initializer); err != nil {
		return err
	}
	logger.Info("CallBreak Go module loaded (bot level %s, auto fill after %s).", cfg.BotLevel, cfg.BotAutoFillDelay())
	return nil
}

// checkConfig rejects settings a match would only trip over once running.
func checkConfig(cfg config.GameConfig) error {
	if _, err := bot.ParseLevel(cfg.BotLevel); err != nil {
		return err
	}
	if cfg.BotAutoFillDelaySeconds < 0 {
		return fmt.Errorf("bot_auto_fill_delay_seconds must not be negative, got %d", cfg.BotAutoFillDelaySeconds)
	}
	return nil
}

// main is unused: the module is loaded by Nakama as a plugin (-buildmode=plugin).
func main() {}
