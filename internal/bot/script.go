package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

// DefaultScriptTimeout bounds a single script decision.
const DefaultScriptTimeout = 200 * time.Millisecond

var ErrScriptResult = errors.New("bot: script returned an unusable value")

// ScriptBot delegates decisions to a Lua script defining two globals:
//
//	function call(view)        -- returns a number in 1..13
//	function play(view, legal) -- returns an index into legal or a card such as "10s"
//
// view mirrors the JSON PlayerView, plus view.hand and view.trick holding the
// current hand and the active trick as short card strings.
type ScriptBot struct {
	mu      sync.Mutex
	L       *lua.LState
	Timeout time.Duration
}

// NewScriptBot compiles source and checks that it defines both entry points.
func NewScriptBot(source string) (*ScriptBot, error) {
	L := lua.NewState()
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("load bot script: %w", err)
	}
	return newScriptBot(L)
}

// LoadScriptBot reads and compiles the script at path.
func LoadScriptBot(path string) (*ScriptBot, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("load bot script %s: %w", path, err)
	}
	return newScriptBot(L)
}

func newScriptBot(L *lua.LState) (*ScriptBot, error) {
	for _, name := range []string{"call", "play"} {
		if L.GetGlobal(name).Type() != lua.LTFunction {
			L.Close()
			return nil, fmt.Errorf("bot script does not define function %q", name)
		}
	}
	return &ScriptBot{L: L, Timeout: DefaultScriptTimeout}, nil
}

func (b *ScriptBot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.L.Close()
	return nil
}

func (b *ScriptBot) CalculateCall(view domain.PlayerView) (domain.Call, error) {
	ret, err := b.invoke("call", view)
	if err != nil {
		return 0, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%w: call returned %s", ErrScriptResult, ret.Type())
	}
	return domain.NewCall(int(n))
}

func (b *ScriptBot) CalculateMove(view domain.PlayerView) (domain.Card, error) {
	legal := view.LegalMoves()
	if len(legal) == 0 {
		return domain.Card{}, ErrNoLegalMove
	}
	ret, err := b.invoke("play", view, legal...)
	if err != nil {
		return domain.Card{}, err
	}
	switch v := ret.(type) {
	case lua.LNumber:
		i := int(v)
		if i < 1 || i > len(legal) {
			return domain.Card{}, fmt.Errorf("%w: index %d of %d", ErrScriptResult, i, len(legal))
		}
		return legal[i-1], nil
	case lua.LString:
		return domain.ParseCard(string(v))
	default:
		return domain.Card{}, fmt.Errorf("%w: play returned %s", ErrScriptResult, ret.Type())
	}
}

func (b *ScriptBot) invoke(fn string, view domain.PlayerView, legal ...domain.Card) (lua.LValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	arg, err := viewTable(b.L, view)
	if err != nil {
		return nil, err
	}
	args := []lua.LValue{arg}
	if fn == "play" {
		args = append(args, cardList(b.L, legal))
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	b.L.SetContext(ctx)
	defer b.L.RemoveContext()

	if err := b.L.CallByParam(lua.P{Fn: b.L.GetGlobal(fn), NRet: 1, Protect: true}, args...); err != nil {
		return nil, fmt.Errorf("bot script %s: %w", fn, err)
	}
	ret := b.L.Get(-1)
	b.L.Pop(1)
	return ret, nil
}

// viewTable converts view through its JSON form so scripts see the wire shape.
func viewTable(L *lua.LState, view domain.PlayerView) (*lua.LTable, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	tbl := toLua(L, generic).(*lua.LTable)
	if r := view.Current(); r != nil {
		tbl.RawSetString("hand", cardList(L, r.Hand.Cards()))
	}
	if t := view.ActiveTrick(); t != nil {
		var played []domain.Card
		seat, _ := t.Starter()
		for range domain.NumSeats {
			if c := t.CardOf(seat); !c.IsZero() {
				played = append(played, c)
			}
			seat = seat.Next()
		}
		tbl.RawSetString("trick", cardList(L, played))
	}
	return tbl, nil
}

func cardList(L *lua.LState, cards []domain.Card) *lua.LTable {
	tbl := L.NewTable()
	for _, c := range cards {
		tbl.Append(lua.LString(c.String()))
	}
	return tbl
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case map[string]any:
		tbl := L.NewTable()
		for k, e := range v {
			tbl.RawSetString(k, toLua(L, e))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, e := range v {
			tbl.RawSetInt(i+1, toLua(L, e))
		}
		return tbl
	case string:
		return lua.LString(v)
	case float64:
		return lua.LNumber(v)
	case bool:
		return lua.LBool(v)
	default:
		return lua.LNil
	}
}
