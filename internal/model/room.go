package model

import "time"

type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting"
	RoomInProgress RoomStatus = "in-progress"
	RoomFinished   RoomStatus = "finished"
)

const (
	// MaxPlayers is enforced only while the room is waiting.
	MaxPlayers = 6

	// ScorePerCorrect is the fixed award applied via atomic increment.
	ScorePerCorrect = 10

	// QuestionDuration is the soft per-question timer. Clients count down
	// from questionStartTime; the server never rejects answers by timestamp.
	QuestionDuration = 30 * time.Second

	// RoomTTL is the absolute lifetime of a room from creation.
	RoomTTL = 24 * time.Hour
)

// Room is the root aggregate for one quiz session. It is the only shared
// mutable state; every mutation touches a disjoint or increment-safe
// sub-path of this document.
type Room struct {
	RoomID    string             `json:"roomId" bson:"_id"`
	HostID    string             `json:"hostId" bson:"hostId"`
	Status    RoomStatus         `json:"status" bson:"status"`
	Subject   string             `json:"subject" bson:"subject"`
	Chapter   string             `json:"chapter" bson:"chapter"`
	Questions []Question         `json:"questions" bson:"questions"`
	Players   map[string]*Player `json:"players" bson:"players"`

	// CurrentQuestionIndex is -1 in waiting, advances by exactly 1 per
	// transition, and freezes at its last value once finished.
	CurrentQuestionIndex int `json:"currentQuestionIndex" bson:"currentQuestionIndex"`

	// QuestionStartTime is epoch millis, re-stamped on every advance.
	QuestionStartTime int64 `json:"questionStartTime" bson:"questionStartTime"`

	// ExpiresAt is epoch millis. Enforced lazily at join time and by the
	// background reaper.
	ExpiresAt int64     `json:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the room's TTL has passed at the given instant.
func (r *Room) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt
}

// FindPlayer resolves a joining identity to an existing roster entry.
// A supplied userId matches only by userId; the name fallback applies only
// to guests, so two guests sharing a name collide. That is the documented
// reconnection heuristic, kept as-is.
func (r *Room) FindPlayer(userID, name string) *Player {
	for _, p := range r.Players {
		if userID != "" {
			if p.UserID == userID {
				return p
			}
			continue
		}
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Clone returns a deep copy so snapshots handed to subscribers never alias
// store-owned state.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Questions = append([]Question(nil), r.Questions...)
	cp.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		cp.Players[id] = p.Clone()
	}
	return &cp
}
