package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/transport/rest/middleware"
)

// RoomHandler handles room lifecycle endpoints.
type RoomHandler struct {
	roomSvc *service.RoomService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	HostName  string           `json:"hostName"`
	Subject   string           `json:"subject"`
	Chapter   string           `json:"chapter"`
	Questions []model.Question `json:"questions"`
	UserID    string           `json:"userId,omitempty"`
	PhotoURL  string           `json:"photoURL,omitempty"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HostName == "" {
		writeError(w, http.StatusBadRequest, "hostName is required")
		return
	}

	res, err := h.roomSvc.CreateRoom(r.Context(), req.HostName, req.Subject, req.Chapter, req.Questions, req.UserID, req.PhotoURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// CreateEmptyRequest is the request body for creating a lobby-first room.
type CreateEmptyRequest struct {
	HostName string `json:"hostName"`
	UserID   string `json:"userId"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// CreateEmpty handles POST /v1/rooms/empty
func (h *RoomHandler) CreateEmpty(w http.ResponseWriter, r *http.Request) {
	var req CreateEmptyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HostName == "" {
		writeError(w, http.StatusBadRequest, "hostName is required")
		return
	}

	res, err := h.roomSvc.CreateEmptyRoom(r.Context(), req.HostName, req.UserID, req.PhotoURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// Get handles GET /v1/rooms/{roomId}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	room, err := h.roomSvc.GetRoom(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// UpdateConfigRequest is the request body for updating room config.
type UpdateConfigRequest struct {
	Subject   string           `json:"subject"`
	Chapter   string           `json:"chapter"`
	Questions []model.Question `json:"questions"`
}

// UpdateConfig handles PUT /v1/rooms/{roomId}/config
func (h *RoomHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.roomSvc.UpdateRoomConfig(r.Context(), roomID, req.Subject, req.Chapter, req.Questions); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// JoinRequest is the request body for joining a room.
type JoinRequest struct {
	PlayerName string `json:"playerName"`
	UserID     string `json:"userId,omitempty"`
	PhotoURL   string `json:"photoURL,omitempty"`
}

// Join handles POST /v1/rooms/{roomId}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "playerName is required")
		return
	}

	res, err := h.roomSvc.JoinRoom(r.Context(), roomID, req.PlayerName, req.UserID, req.PhotoURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Leave handles POST /v1/rooms/{roomId}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.roomSvc.LeaveRoom(r.Context(), roomID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// Leaderboard handles GET /v1/rooms/{roomId}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	top := 20
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.roomSvc.Leaderboard(r.Context(), roomID, top)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
