package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/transport/rest/handler"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/transport/rest/middleware"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService *service.AuthService
	RoomService *service.RoomService
	GameService *service.GameService
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.RoomService)
	gameHandler := handler.NewGameHandler(c.GameService)
	wsHandler := ws.NewHandler(c.AuthService, c.RoomService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: anyone can create, inspect, or join a room.
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/empty", roomHandler.CreateEmpty).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{roomId}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{roomId}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{roomId}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket snapshot stream (token in query param).
	v1.HandleFunc("/ws/rooms/{roomId}", wsHandler.RoomWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (any room token).
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequireToken)
	playerRoutes.HandleFunc("/rooms/{roomId}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{roomId}/answers", gameHandler.SubmitAnswer).Methods("POST", "OPTIONS")

	// Host routes (host token required).
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)
	hostRoutes.HandleFunc("/rooms/{roomId}/config", roomHandler.UpdateConfig).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{roomId}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{roomId}/next", gameHandler.Next).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{roomId}/end", gameHandler.End).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
