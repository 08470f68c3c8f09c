package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/cache"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/notify"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/store"
)

// RoomService owns the room lifecycle: creation, join codes, roster
// membership, capacity, and expiration.
type RoomService struct {
	store       store.RoomStore
	notifier    *notify.Notifier
	leaderboard cache.Leaderboard
	authSvc     *AuthService
}

// NewRoomService creates a new room service. leaderboard may be nil for
// deployments without Redis.
func NewRoomService(
	roomStore store.RoomStore,
	notifier *notify.Notifier,
	leaderboard cache.Leaderboard,
	authSvc *AuthService,
) *RoomService {
	return &RoomService{
		store:       roomStore,
		notifier:    notifier,
		leaderboard: leaderboard,
		authSvc:     authSvc,
	}
}

// CreateRoomResult is returned from CreateRoom and CreateEmptyRoom.
type CreateRoomResult struct {
	RoomID    string `json:"roomId"`
	HostID    string `json:"hostId"`
	HostToken string `json:"token"`
}

// JoinRoomResult is returned from JoinRoom.
type JoinRoomResult struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

// CreateRoom creates a room with its question set configured upfront and
// seeds the roster with the host.
func (s *RoomService) CreateRoom(ctx context.Context, hostName, subject, chapter string, questions []model.Question, userID, photoURL string) (*CreateRoomResult, error) {
	if err := validatePlayerID(userID); err != nil {
		return nil, err
	}

	roomID, err := s.generateRoomID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate room id: %w", err)
	}

	hostID := userID
	if hostID == "" {
		hostID = guestID()
	}

	now := time.Now()
	room := &model.Room{
		RoomID:    roomID,
		HostID:    hostID,
		Status:    model.RoomWaiting,
		Subject:   subject,
		Chapter:   chapter,
		Questions: questions,
		Players: map[string]*model.Player{
			hostID: {
				ID:       hostID,
				UserID:   userID,
				Name:     hostName,
				PhotoURL: photoURL,
				Score:    0,
				Status:   model.PlayerJoined,
				Answers:  map[string]int{},
			},
		},
		CurrentQuestionIndex: -1,
		ExpiresAt:            now.Add(model.RoomTTL).UnixMilli(),
		CreatedAt:            now,
	}

	if err := s.store.Insert(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.AddPlayer(ctx, roomID, hostID); err != nil {
			return nil, fmt.Errorf("failed to init leaderboard: %w", err)
		}
	}

	token, err := s.authSvc.GenerateRoomToken(roomID, hostID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &CreateRoomResult{RoomID: roomID, HostID: hostID, HostToken: token}, nil
}

// CreateEmptyRoom creates a lobby-first room; subject, chapter and
// questions are attached later via UpdateRoomConfig.
func (s *RoomService) CreateEmptyRoom(ctx context.Context, hostName, userID, photoURL string) (*CreateRoomResult, error) {
	return s.CreateRoom(ctx, hostName, "", "", nil, userID, photoURL)
}

// UpdateRoomConfig overwrites subject, chapter and questions. Rejected
// once the game has left waiting so an in-flight question set can never
// change under the players.
func (s *RoomService) UpdateRoomConfig(ctx context.Context, roomID, subject, chapter string, questions []model.Question) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status != model.RoomWaiting {
		return ErrGameStarted
	}

	err = s.store.Apply(ctx, roomID,
		store.Set("subject", subject),
		store.Set("chapter", chapter),
		store.Set("questions", questions),
	)
	if err != nil {
		return s.mapStoreErr(err)
	}

	s.publish(ctx, roomID)
	return nil
}

// GetRoom returns the current snapshot of a room.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	return s.getRoom(ctx, roomID)
}

// JoinRoom adds a player to the roster, or recovers an existing player's
// id. The expiration check here is the lazy half of room TTL enforcement:
// an expired room is deleted the first time anyone tries to join it.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, playerName, userID, photoURL string) (*JoinRoomResult, error) {
	if err := validatePlayerID(userID); err != nil {
		return nil, err
	}

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.Expired(time.Now()) {
		s.destroyRoom(ctx, roomID)
		return nil, ErrRoomExpired
	}

	existing := room.FindPlayer(userID, playerName)

	if room.Status != model.RoomWaiting {
		// Reconnect-after-refresh: an existing player recovers its id,
		// anyone new is rejected.
		if existing == nil {
			return nil, ErrGameStarted
		}
		return s.joinResult(roomID, existing.ID)
	}

	if existing != nil {
		return s.joinResult(roomID, existing.ID)
	}

	if len(room.Players) >= model.MaxPlayers {
		return nil, ErrRoomFull
	}

	playerID := userID
	if playerID == "" {
		playerID = guestID()
	}
	player := &model.Player{
		ID:       playerID,
		UserID:   userID,
		Name:     playerName,
		PhotoURL: photoURL,
		Score:    0,
		Status:   model.PlayerJoined,
		Answers:  map[string]int{},
	}

	if err := s.store.Apply(ctx, roomID, store.Set("players."+playerID, player)); err != nil {
		return nil, s.mapStoreErr(err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.AddPlayer(ctx, roomID, playerID); err != nil {
			return nil, fmt.Errorf("failed to init leaderboard: %w", err)
		}
	}

	s.publish(ctx, roomID)
	return s.joinResult(roomID, playerID)
}

// LeaveRoom removes a player from the roster. Leaving a room that
// vanished concurrently is a no-op success.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	err := s.store.Apply(ctx, roomID, store.Unset("players."+playerID))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.RemovePlayer(ctx, roomID, playerID); err != nil {
			return err
		}
	}

	s.publish(ctx, roomID)
	return nil
}

// ListenToRoom subscribes to the room's snapshot stream. The current
// snapshot is delivered first, then one per mutation. Close the
// subscription to stop.
func (s *RoomService) ListenToRoom(ctx context.Context, roomID string) (*notify.Subscription, error) {
	sub := s.notifier.Subscribe(roomID)
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		sub.Close()
		return nil, err
	}
	sub.C <- room
	return sub, nil
}

// Leaderboard returns the top entries for a room, enriched with roster
// display names.
func (s *RoomService) Leaderboard(ctx context.Context, roomID string, limit int) ([]cache.Entry, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if s.leaderboard == nil {
		return nil, nil
	}
	entries, err := s.leaderboard.Top(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if p, ok := room.Players[entries[i].PlayerID]; ok {
			entries[i].Name = p.Name
		}
	}
	return entries, nil
}

// RunReaper sweeps expired rooms periodically until ctx is cancelled. It
// complements the lazy join-time check so abandoned rooms do not
// accumulate.
func (s *RoomService) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Reap(ctx); err != nil {
				logrus.Warnf("room reaper sweep failed: %v", err)
			} else if n > 0 {
				logrus.Infof("room reaper deleted %d expired room(s)", n)
			}
		}
	}
}

// Reap deletes every room whose TTL has passed and reports how many.
func (s *RoomService) Reap(ctx context.Context) (int, error) {
	ids, err := s.store.ExpiredIDs(ctx, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.destroyRoom(ctx, id)
	}
	return len(ids), nil
}

func (s *RoomService) destroyRoom(ctx context.Context, roomID string) {
	// Best effort: a concurrent delete already achieved the same outcome.
	if err := s.store.Delete(ctx, roomID); err != nil && !errors.Is(err, store.ErrNotFound) {
		logrus.Warnf("failed to delete room %s: %v", roomID, err)
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.DeleteRoom(ctx, roomID); err != nil {
			logrus.Warnf("failed to drop leaderboard for room %s: %v", roomID, err)
		}
	}
	s.notifier.CloseRoom(roomID)
}

func (s *RoomService) joinResult(roomID, playerID string) (*JoinRoomResult, error) {
	token, err := s.authSvc.GenerateRoomToken(roomID, playerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &JoinRoomResult{PlayerID: playerID, Token: token}, nil
}

func (s *RoomService) getRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.store.Get(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoomNotFound
	}
	return err
}

// publish pushes the freshly-read snapshot to all subscribers. Best
// effort: a room deleted between mutation and read simply stops emitting.
func (s *RoomService) publish(ctx context.Context, roomID string) {
	room, err := s.store.Get(ctx, roomID)
	if err != nil {
		return
	}
	s.notifier.Publish(roomID, room)
}

// generateRoomID draws a 6-digit numeric join code and retries until it is
// unused. The random space is small, so the existence check matters.
func (s *RoomService) generateRoomID(ctx context.Context) (string, error) {
	const digits = "0123456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = digits[int(b[i])%len(digits)]
		}
		codeStr := string(code)

		_, err := s.store.Get(ctx, codeStr)
		if errors.Is(err, store.ErrNotFound) {
			return codeStr, nil
		}
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to generate unique room id")
}

func guestID() string {
	return "p_" + uuid.New().String()[:8]
}

// playerIDPattern limits caller-supplied ids to characters that are safe
// inside the store's dotted mutation paths ("players.<id>.score").
var playerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validatePlayerID accepts empty (a guest id gets generated) or a
// path-safe id. Anything else would corrupt the player's document path.
func validatePlayerID(userID string) error {
	if userID == "" {
		return nil
	}
	if !playerIDPattern.MatchString(userID) {
		return ErrInvalidPlayerID
	}
	return nil
}
