package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
)

type memoryStore struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

// NewMemoryStore creates an in-process RoomStore behind a mutex. It is the
// single-process deployment backend and the test double for the Mongo
// store; Apply interprets the same dotted paths the Mongo operators do.
func NewMemoryStore() RoomStore {
	return &memoryStore{
		rooms: make(map[string]*model.Room),
	}
}

func (s *memoryStore) Insert(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.RoomID]; ok {
		return fmt.Errorf("room %s already exists", room.RoomID)
	}
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *memoryStore) Get(ctx context.Context, roomID string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return room.Clone(), nil
}

func (s *memoryStore) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return ErrNotFound
	}
	delete(s.rooms, roomID)
	return nil
}

func (s *memoryStore) Apply(ctx context.Context, roomID string, muts ...Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	// Mutate a clone and swap it in, so a failing mutation mid-list
	// leaves the stored room untouched.
	next := room.Clone()
	for _, m := range muts {
		if err := applyOne(next, m); err != nil {
			return err
		}
	}
	s.rooms[roomID] = next
	return nil
}

func (s *memoryStore) ExpiredIDs(ctx context.Context, nowMillis int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, room := range s.rooms {
		if room.ExpiresAt < nowMillis {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func applyOne(room *model.Room, m Mutation) error {
	parts := strings.Split(m.Path, ".")

	if parts[0] == "players" {
		return applyPlayer(room, parts[1:], m)
	}
	if len(parts) != 1 || m.Op != OpSet {
		return fmt.Errorf("unsupported mutation %v on path %q", m.Op, m.Path)
	}

	switch parts[0] {
	case "status":
		room.Status = m.Value.(model.RoomStatus)
	case "subject":
		room.Subject = m.Value.(string)
	case "chapter":
		room.Chapter = m.Value.(string)
	case "questions":
		room.Questions = append([]model.Question(nil), m.Value.([]model.Question)...)
	case "currentQuestionIndex":
		room.CurrentQuestionIndex = m.Value.(int)
	case "questionStartTime":
		room.QuestionStartTime = m.Value.(int64)
	case "expiresAt":
		room.ExpiresAt = m.Value.(int64)
	default:
		return fmt.Errorf("unsupported path %q", m.Path)
	}
	return nil
}

func applyPlayer(room *model.Room, parts []string, m Mutation) error {
	if len(parts) == 0 {
		return fmt.Errorf("unsupported path %q", m.Path)
	}
	playerID := parts[0]

	// players.<id>
	if len(parts) == 1 {
		switch m.Op {
		case OpSet:
			room.Players[playerID] = m.Value.(*model.Player).Clone()
		case OpUnset:
			delete(room.Players, playerID)
		default:
			return fmt.Errorf("unsupported mutation on path %q", m.Path)
		}
		return nil
	}

	player, ok := room.Players[playerID]
	if !ok {
		return fmt.Errorf("player %s not in room %s", playerID, room.RoomID)
	}

	// players.<id>.score
	if len(parts) == 2 && parts[1] == "score" {
		switch m.Op {
		case OpInc:
			player.Score += m.Value.(int)
		case OpSet:
			player.Score = m.Value.(int)
		default:
			return fmt.Errorf("unsupported mutation on path %q", m.Path)
		}
		return nil
	}

	// players.<id>.answers.<questionIndex>
	if len(parts) == 3 && parts[1] == "answers" && m.Op == OpSet {
		if player.Answers == nil {
			player.Answers = make(map[string]int)
		}
		player.Answers[parts[2]] = m.Value.(int)
		return nil
	}

	return fmt.Errorf("unsupported path %q", m.Path)
}
