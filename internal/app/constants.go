package app

import (
	"errors"
	"time"
)

// SeatTokenIssuer is the iss claim of every seat token.
const SeatTokenIssuer = "callbreak"

// DefaultSeatTokenTTL applies when a TokenIssuer is built with a zero ttl.
const DefaultSeatTokenTTL = 10 * time.Minute

var (
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrGameOver         = errors.New("game already played")
	ErrEngineFault      = errors.New("engine fault")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrTooManyRooms     = errors.New("too many rooms")
	ErrInvalidSeatToken = errors.New("invalid seat token")
)
