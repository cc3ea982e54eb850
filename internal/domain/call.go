package domain

import (
	"encoding/json"
	"fmt"
)

const (
	MinCall = 1
	MaxCall = 13
)

// Call is the number of tricks a seat commits to win in a round.
// The zero Call means no call has been made.
type Call uint8

// NewCall validates v and returns it as a Call.
func NewCall(v int) (Call, error) {
	switch {
	case v < MinCall:
		return 0, fmt.Errorf("%w: %d", ErrCallValueTooSmall, v)
	case v > MaxCall:
		return 0, fmt.Errorf("%w: %d", ErrCallValueTooLarge, v)
	}
	return Call(v), nil
}

// IsSet reports whether c holds a call.
func (c Call) IsSet() bool {
	return c != 0
}

// Int returns the call as an int.
func (c Call) Int() int {
	return int(c)
}

func (c Call) MarshalJSON() ([]byte, error) {
	if !c.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(uint8(c))
}

func (c *Call) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = 0
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	call, err := NewCall(v)
	if err != nil {
		return err
	}
	*c = call
	return nil
}
