package service

import (
	"context"
	"errors"
	"time"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/cache"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/notify"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/store"
)

// GameService drives the shared game state machine:
//
//	waiting --StartGame--> in-progress --EndGame--> finished
//
// with SubmitAnswer and NextQuestion as self-loops on in-progress.
// Host-only transitions verify the caller against room.hostId.
type GameService struct {
	store       store.RoomStore
	notifier    *notify.Notifier
	leaderboard cache.Leaderboard
}

// NewGameService creates a new game service. leaderboard may be nil.
func NewGameService(roomStore store.RoomStore, notifier *notify.Notifier, leaderboard cache.Leaderboard) *GameService {
	return &GameService{
		store:       roomStore,
		notifier:    notifier,
		leaderboard: leaderboard,
	}
}

// StartGame transitions waiting -> in-progress, sets the question index to
// 0 and stamps the question start time for client-side countdowns.
func (s *GameService) StartGame(ctx context.Context, roomID, callerID string) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.HostID != callerID {
		return ErrNotHost
	}
	if room.Status != model.RoomWaiting {
		return ErrGameStarted
	}

	err = s.store.Apply(ctx, roomID,
		store.Set("status", model.RoomInProgress),
		store.Set("currentQuestionIndex", 0),
		store.Set("questionStartTime", time.Now().UnixMilli()),
	)
	if err != nil {
		return s.mapStoreErr(err)
	}

	s.publish(ctx, roomID)
	return nil
}

// SubmitAnswer records the player's choice and, when correct, awards the
// fixed number of points through the store's atomic increment so
// concurrent submissions from different players never lose updates.
//
// A question a player has already answered is a no-op: the original answer
// stands and no points are re-awarded.
func (s *GameService) SubmitAnswer(ctx context.Context, roomID, playerID string, questionIndex, answerIndex int, isCorrect bool) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	player, ok := room.Players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if player.Answered(questionIndex) {
		return nil
	}

	muts := []store.Mutation{
		store.Set("players."+playerID+".answers."+model.AnswerKey(questionIndex), answerIndex),
	}
	if isCorrect {
		muts = append(muts, store.Inc("players."+playerID+".score", model.ScorePerCorrect))
	}

	if err := s.store.Apply(ctx, roomID, muts...); err != nil {
		return s.mapStoreErr(err)
	}

	if isCorrect && s.leaderboard != nil {
		if err := s.leaderboard.IncrScore(ctx, roomID, playerID, model.ScorePerCorrect); err != nil {
			return err
		}
	}

	s.publish(ctx, roomID)
	return nil
}

// NextQuestion advances to currentIndex+1 and re-stamps the question start
// time. The caller supplies the index it believes is current; the
// coordinator does not cross-check it against the stored value, so causal
// ordering of advance calls is the caller's responsibility. Advancing past
// the last question finishes the game and freezes the index.
func (s *GameService) NextQuestion(ctx context.Context, roomID, callerID string, currentIndex int) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.HostID != callerID {
		return ErrNotHost
	}
	if room.Status != model.RoomInProgress {
		return ErrGameStarted
	}

	next := currentIndex + 1
	if next >= len(room.Questions) {
		return s.finish(ctx, roomID)
	}

	err = s.store.Apply(ctx, roomID,
		store.Set("currentQuestionIndex", next),
		store.Set("questionStartTime", time.Now().UnixMilli()),
	)
	if err != nil {
		return s.mapStoreErr(err)
	}

	s.publish(ctx, roomID)
	return nil
}

// EndGame sets the room to finished. Host-triggered and unconditional:
// there is no requirement that every player answered the final question.
func (s *GameService) EndGame(ctx context.Context, roomID, callerID string) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.HostID != callerID {
		return ErrNotHost
	}
	return s.finish(ctx, roomID)
}

func (s *GameService) finish(ctx context.Context, roomID string) error {
	if err := s.store.Apply(ctx, roomID, store.Set("status", model.RoomFinished)); err != nil {
		return s.mapStoreErr(err)
	}
	s.publish(ctx, roomID)
	return nil
}

func (s *GameService) getRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.store.Get(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *GameService) mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoomNotFound
	}
	return err
}

func (s *GameService) publish(ctx context.Context, roomID string) {
	room, err := s.store.Get(ctx, roomID)
	if err != nil {
		return
	}
	s.notifier.Publish(roomID, room)
}
