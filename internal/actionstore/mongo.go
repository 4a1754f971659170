package actionstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/uuid"
)

// mongoStore keeps one document per action with its changes embedded.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a Store backed by a MongoDB collection.
func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

// EnsureIndexes creates the indexes used by List on coll.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "object_class", Value: 1}, {Key: "object_id", Value: 1}}},
		{Keys: bson.D{{Key: "operate_time", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating action indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) Append(ctx context.Context, action *models.Action) error {
	if action.ID == "" {
		action.ID = uuid.New()
	}
	if _, err := s.coll.InsertOne(ctx, action); err != nil {
		return fmt.Errorf("inserting action: %w", err)
	}
	return nil
}

func (s *mongoStore) List(ctx context.Context, filter Filter, page pagination.PageRequest) ([]models.Action, int64, error) {
	page.Defaults()
	query := mongoFilter(filter)

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("counting actions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "operate_time", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.PageSize))
	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing actions: %w", err)
	}
	defer cur.Close(ctx)

	var actions []models.Action
	if err := cur.All(ctx, &actions); err != nil {
		return nil, 0, fmt.Errorf("decoding actions: %w", err)
	}
	return actions, total, nil
}

func (s *mongoStore) Get(ctx context.Context, id string) (*models.Action, error) {
	var action models.Action
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&action); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading action %s: %w", id, err)
	}
	return &action, nil
}

// mongoFilter translates f into a query document.
func mongoFilter(f Filter) bson.M {
	query := bson.M{}
	if f.ObjectClass != "" {
		query["object_class"] = f.ObjectClass
	}
	if f.ObjectID != nil {
		query["object_id"] = *f.ObjectID
	}
	if f.ActionType != "" {
		query["action_type"] = string(f.ActionType)
	}
	if f.Operator != "" {
		query["operator"] = f.Operator
	}
	return query
}
