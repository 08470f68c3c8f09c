package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
)

// AuthService issues and validates room-scoped capability tokens. The
// host token is the only authority for start/advance/end; player tokens
// authorize leave and answer submission for their own id.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// GenerateRoomToken creates a token scoped to one room and one player.
// Expiry matches the room TTL.
func (s *AuthService) GenerateRoomToken(roomID, playerID string, host bool) (string, error) {
	claims := &model.RoomClaims{
		RoomID:   roomID,
		PlayerID: playerID,
		Host:     host,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(model.RoomTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateRoomToken validates a token and returns its claims.
func (s *AuthService) ValidateRoomToken(tokenString string) (*model.RoomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.RoomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.RoomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
