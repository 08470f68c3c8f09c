package service

import "errors"

// Error taxonomy surfaced across the API boundary. Messages are
// human-readable because callers show them directly.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotFound  = errors.New("player not found in room")
	ErrRoomExpired     = errors.New("room has expired")
	ErrRoomFull        = errors.New("room is full (max 6 players)")
	ErrGameStarted     = errors.New("game has already started")
	ErrNotHost         = errors.New("only the host can perform this action")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidPlayerID = errors.New("player id may only contain letters, digits, '-' and '_'")
)
