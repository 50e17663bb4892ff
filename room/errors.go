package room

import "errors"

// Validation errors surfaced to the requesting client as a failure result.
// They never mutate shared state.
var (
	ErrDuplicateRoom    = errors.New("room name already exists")
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrWrongPassword    = errors.New("wrong password")
	ErrRoomNotWaiting   = errors.New("game already started in this room")
	ErrRoomFull         = errors.New("room is full")
	ErrNotInRoom        = errors.New("not currently in a room")
	ErrNotLeader        = errors.New("no permission to start the game")
	ErrNotEnoughPlayers = errors.New("not enough players")
)
