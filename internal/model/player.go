package model

import "strconv"

type PlayerStatus string

const (
	PlayerJoined    PlayerStatus = "joined"
	PlayerReady     PlayerStatus = "ready"
	PlayerSubmitted PlayerStatus = "submitted"
)

// Player is a roster entry owned exclusively by its Room.
type Player struct {
	ID       string       `json:"id" bson:"id"`
	UserID   string       `json:"userId,omitempty" bson:"userId,omitempty"`
	Name     string       `json:"name" bson:"name"`
	PhotoURL string       `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Score    int          `json:"score" bson:"score"`
	Status   PlayerStatus `json:"status" bson:"status"`

	// Answers maps a question index (as a string key, see AnswerKey) to the
	// selected option index. At most one entry per question.
	Answers map[string]int `json:"answers" bson:"answers"`
}

// AnswerKey is the map key for a question index. Keys are strings because
// both the wire format and the document store require string map keys.
func AnswerKey(questionIndex int) string {
	return strconv.Itoa(questionIndex)
}

// Answered reports whether the player has already answered the question.
func (p *Player) Answered(questionIndex int) bool {
	_, ok := p.Answers[AnswerKey(questionIndex)]
	return ok
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Answers = make(map[string]int, len(p.Answers))
	for k, v := range p.Answers {
		cp.Answers[k] = v
	}
	return &cp
}
