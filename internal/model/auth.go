package model

import "github.com/golang-jwt/jwt/v5"

// RoomClaims are JWT claims for room-scoped capability tokens. CreateRoom
// issues one with Host set; JoinRoom issues plain player tokens.
type RoomClaims struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Host     bool   `json:"host,omitempty"`
	jwt.RegisteredClaims
}
