package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ConfigEnvKey is the runtime env entry naming the game config file.
const ConfigEnvKey = "callbreak_config"

// Register wires RPCs and the match handler into the Nakama runtime. The game
// config must be loaded first; matches read it when they are created.
func Register(initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	return initializer.RegisterMatch(MatchNameCallBreak, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	})
}
