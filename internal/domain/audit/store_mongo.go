package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "audit_events"

var MongoIndexes = map[string][]mongo.IndexModel{
	Collection: {
		{
			Keys:    bson.D{{Key: "entityType", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_entityType_createdAt"),
		},
	},
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func (s *MongoStore) Insert(ctx context.Context, evt *Event) error {
	_, err := s.coll.InsertOne(ctx, evt)
	return err
}

func (s *MongoStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	query := bson.M{}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.EntityType != "" {
		query["entityType"] = filter.EntityType
	}
	if filter.EntityID != "" {
		query["entityId"] = filter.EntityID
	}
	if filter.ActorUser != "" {
		query["actorId"] = filter.ActorUser
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(filter.Limit))

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Event{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
