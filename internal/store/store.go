package store

import (
	"context"
	"errors"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
)

// ErrNotFound is returned when the addressed room does not exist.
var ErrNotFound = errors.New("room not found")

// Op is a field-level mutation kind.
type Op int

const (
	OpSet Op = iota
	OpUnset
	OpInc
)

// Mutation is one field-level write against a room document, addressed by
// a dotted path (e.g. "players.p_ab12cd34.score").
type Mutation struct {
	Op    Op
	Path  string
	Value interface{}
}

// Set writes a value at path.
func Set(path string, value interface{}) Mutation {
	return Mutation{Op: OpSet, Path: path, Value: value}
}

// Unset removes the field at path.
func Unset(path string) Mutation {
	return Mutation{Op: OpUnset, Path: path}
}

// Inc atomically adds delta to the numeric field at path. The increment is
// read-modify-write safe against concurrent increments on the same field.
func Inc(path string, delta int) Mutation {
	return Mutation{Op: OpInc, Path: path, Value: delta}
}

// RoomStore is durable keyed storage for Room records. Apply is the single
// serialization point of the system: all mutations in one call land
// atomically on the addressed room, and mutations from concurrent callers
// touching different paths never conflict. No ordering across calls is
// guaranteed.
type RoomStore interface {
	Insert(ctx context.Context, room *model.Room) error
	Get(ctx context.Context, roomID string) (*model.Room, error)
	Delete(ctx context.Context, roomID string) error
	Apply(ctx context.Context, roomID string, muts ...Mutation) error

	// ExpiredIDs lists rooms whose expiresAt lies before the given epoch
	// millis, for the background reaper.
	ExpiredIDs(ctx context.Context, nowMillis int64) ([]string, error)
}
