// Package ws streams Room snapshots to clients over WebSocket. This is
// the read path: one message per mutation, each carrying the full room
// state, so clients render from the snapshot alone.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/notify"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// MsgRoomSnapshot is the only message type on this stream.
const MsgRoomSnapshot = "room_snapshot"

// Message is the WebSocket envelope format.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades subscribers onto a room's snapshot stream.
type Handler struct {
	authSvc *service.AuthService
	roomSvc *service.RoomService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(authSvc *service.AuthService, roomSvc *service.RoomService) *Handler {
	return &Handler{authSvc: authSvc, roomSvc: roomSvc}
}

// RoomWS handles GET /v1/ws/rooms/{roomId}?token=...
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateRoomToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.RoomID != roomID {
		http.Error(w, "token not valid for this room", http.StatusForbidden)
		return
	}

	sub, err := h.roomSvc.ListenToRoom(r.Context(), roomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		logrus.Warnf("websocket upgrade error: %v", err)
		return
	}

	logrus.Infof("player %s subscribed to room %s", claims.PlayerID, roomID)

	go h.writePump(wsConn, sub)
	go h.readPump(wsConn, sub)
}

func (h *Handler) readPump(wsConn *websocket.Conn, sub *notify.Subscription) {
	defer func() {
		sub.Close()
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Warnf("websocket error: %v", err)
			}
			break
		}
		// The stream is one-way; client messages are ignored.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, sub *notify.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		wsConn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Room deleted or subscription cancelled.
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := writeSnapshot(wsConn, snapshot); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(wsConn *websocket.Conn, room *model.Room) error {
	payload, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return wsConn.WriteJSON(&Message{
		Type:    MsgRoomSnapshot,
		Payload: payload,
	})
}
