package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollectionName = "activities"

// mongoActivityRepository implements repository.ActivityRepository
type mongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new Activity repository.
func NewMongoActivityRepository(db *mongo.Database) repository.ActivityRepository {
	return &mongoActivityRepository{
		collection: db.Collection(activityCollectionName),
	}
}

// InsertMany appends a batch of activities to the athlete's history.
func (r *mongoActivityRepository) InsertMany(ctx context.Context, activities []domain.Activity) ([]primitive.ObjectID, error) {
	if len(activities) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(activities))
	for i := range activities {
		activities[i].ID = primitive.NewObjectID()
		activities[i].CreatedAt = now
		docs[i] = activities[i]
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(result.InsertedIDs))
	for _, raw := range result.InsertedIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			return nil, errors.New("failed to convert inserted activity ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetByAthlete retrieves the athlete's full activity history in date order.
func (r *mongoActivityRepository) GetByAthlete(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Activity, error) {
	return r.find(ctx, bson.M{"athleteId": athleteID})
}

// GetByAthleteSince retrieves activities on or after the given date.
func (r *mongoActivityRepository) GetByAthleteSince(ctx context.Context, athleteID primitive.ObjectID, since time.Time) ([]domain.Activity, error) {
	return r.find(ctx, bson.M{
		"athleteId": athleteID,
		"date":      bson.M{"$gte": since},
	})
}

func (r *mongoActivityRepository) find(ctx context.Context, filter bson.M) ([]domain.Activity, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []domain.Activity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// EnsureActivityIndexes creates necessary indexes. Call during startup.
func EnsureActivityIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
