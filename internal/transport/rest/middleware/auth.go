package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
)

type contextKey string

const (
	PlayerIDKey contextKey = "playerId"
	RoomIDKey   contextKey = "roomId"
	HostKey     contextKey = "host"
)

// AuthMiddleware validates room-scoped capability tokens.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireToken validates a player or host token and checks it was issued
// for the room in the request path.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return m.require(next, false)
}

// RequireHost additionally demands the host capability.
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return m.require(next, true)
}

func (m *AuthMiddleware) require(next http.Handler, host bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateRoomToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		if roomID := mux.Vars(r)["roomId"]; roomID != "" && claims.RoomID != roomID {
			http.Error(w, `{"error":"token not valid for this room"}`, http.StatusForbidden)
			return
		}
		if host && !claims.Host {
			http.Error(w, `{"error":"host token required"}`, http.StatusForbidden)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, PlayerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, RoomIDKey, claims.RoomID)
		ctx = context.WithValue(ctx, HostKey, claims.Host)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayerID extracts the caller's player id from context.
func GetPlayerID(ctx context.Context) string {
	if v := ctx.Value(PlayerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetRoomID extracts the token's room id from context.
func GetRoomID(ctx context.Context) string {
	if v := ctx.Value(RoomIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
