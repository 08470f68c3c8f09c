package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
)

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a RoomStore backed by the "rooms" collection.
// Mongo's $set/$unset/$inc update operators provide exactly the field-level
// atomicity RoomStore requires.
func NewMongoStore(db *mongo.Database) RoomStore {
	return &mongoStore{
		collection: db.Collection("rooms"),
	}
}

func (s *mongoStore) Insert(ctx context.Context, room *model.Room) error {
	_, err := s.collection.InsertOne(ctx, room)
	return err
}

func (s *mongoStore) Get(ctx context.Context, roomID string) (*model.Room, error) {
	var room model.Room
	err := s.collection.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *mongoStore) Delete(ctx context.Context, roomID string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Apply(ctx context.Context, roomID string, muts ...Mutation) error {
	if len(muts) == 0 {
		return nil
	}

	sets := bson.M{}
	unsets := bson.M{}
	incs := bson.M{}
	for _, m := range muts {
		switch m.Op {
		case OpSet:
			sets[m.Path] = m.Value
		case OpUnset:
			unsets[m.Path] = ""
		case OpInc:
			incs[m.Path] = m.Value
		default:
			return fmt.Errorf("unknown mutation op %d", m.Op)
		}
	}

	update := bson.M{}
	if len(sets) > 0 {
		update["$set"] = sets
	}
	if len(unsets) > 0 {
		update["$unset"] = unsets
	}
	if len(incs) > 0 {
		update["$inc"] = incs
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) ExpiredIDs(ctx context.Context, nowMillis int64) ([]string, error) {
	cur, err := s.collection.Find(ctx, bson.M{"expiresAt": bson.M{"$lt": nowMillis}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}
