package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
)

// Leaderboard maintains the live per-room score ranking. It mirrors the
// authoritative scores held on the Room document; ZINCRBY keeps the mirror
// lost-update safe under concurrent correct answers.
type Leaderboard interface {
	AddPlayer(ctx context.Context, roomID, playerID string) error
	IncrScore(ctx context.Context, roomID, playerID string, delta int) error
	RemovePlayer(ctx context.Context, roomID, playerID string) error
	Top(ctx context.Context, roomID string, limit int) ([]Entry, error)
	DeleteRoom(ctx context.Context, roomID string) error
}

// Entry is a single leaderboard row.
type Entry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type redisLeaderboard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboard creates a Redis ZSET-backed leaderboard.
func NewLeaderboard(client *redis.Client) Leaderboard {
	return &redisLeaderboard{
		client: client,
		ttl:    model.RoomTTL,
	}
}

func (c *redisLeaderboard) key(roomID string) string {
	return fmt.Sprintf("room:%s:lb", roomID)
}

func (c *redisLeaderboard) AddPlayer(ctx context.Context, roomID, playerID string) error {
	key := c.key(roomID)
	if err := c.client.ZAddNX(ctx, key, redis.Z{Score: 0, Member: playerID}).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *redisLeaderboard) IncrScore(ctx context.Context, roomID, playerID string, delta int) error {
	return c.client.ZIncrBy(ctx, c.key(roomID), float64(delta), playerID).Err()
}

func (c *redisLeaderboard) RemovePlayer(ctx context.Context, roomID, playerID string) error {
	return c.client.ZRem(ctx, c.key(roomID), playerID).Err()
}

func (c *redisLeaderboard) Top(ctx context.Context, roomID string, limit int) ([]Entry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(roomID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(results))
	for i, z := range results {
		entries[i] = Entry{
			PlayerID: z.Member.(string),
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *redisLeaderboard) DeleteRoom(ctx context.Context, roomID string) error {
	return c.client.Del(ctx, c.key(roomID)).Err()
}
