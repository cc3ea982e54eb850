package bot

import (
	"fmt"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelSimple BotLevel = iota
	BotLevelGood
	BotLevelSmart
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelSimple:
		return "simple"
	case BotLevelGood:
		return "good"
	case BotLevelSmart:
		return "smart"
	}
	return fmt.Sprintf("BotLevel(%d)", int(l))
}

// ParseLevel maps a config string to a BotLevel.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "easy":
		return BotLevelSimple, nil
	case "good", "medium", "":
		return BotLevelGood, nil
	case "smart", "hard":
		return BotLevelSmart, nil
	}
	return 0, fmt.Errorf("unknown bot level: %q", s)
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelSimple:
		return &SimpleBot{}, nil
	case BotLevelGood:
		return &GoodBot{Tuning: DefaultTuning}, nil
	case BotLevelSmart:
		return NewSmartBot(), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
