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

const suggestionCollectionName = "suggestions"

// mongoSuggestionRepository implements repository.SuggestionRepository
type mongoSuggestionRepository struct {
	collection *mongo.Collection
}

// NewMongoSuggestionRepository creates a new Suggestion repository.
func NewMongoSuggestionRepository(db *mongo.Database) repository.SuggestionRepository {
	return &mongoSuggestionRepository{
		collection: db.Collection(suggestionCollectionName),
	}
}

// Create inserts a new suggestion.
func (r *mongoSuggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) (primitive.ObjectID, error) {
	if suggestion.AthleteID == primitive.NilObjectID || suggestion.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("suggestion requires athleteId and workoutId")
	}
	if suggestion.ID == primitive.NilObjectID {
		suggestion.ID = primitive.NewObjectID()
	}

	result, err := r.collection.InsertOne(ctx, suggestion)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted suggestion ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single suggestion.
func (r *mongoSuggestionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Suggestion, error) {
	var s domain.Suggestion
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByAthlete retrieves the athlete's suggestions, optionally filtered by
// status. Declined and expired entries remain queryable for audit.
func (r *mongoSuggestionRepository) GetByAthlete(ctx context.Context, athleteID primitive.ObjectID, status *domain.SuggestionStatus) ([]domain.Suggestion, error) {
	filter := bson.M{"athleteId": athleteID}
	if status != nil {
		filter["status"] = *status
	}
	return r.find(ctx, filter)
}

// GetUnexpiredByAthlete returns every suggestion still inside its expiry
// window, any status. The adaptation engine builds its no-duplication index
// from this set.
func (r *mongoSuggestionRepository) GetUnexpiredByAthlete(ctx context.Context, athleteID primitive.ObjectID, now time.Time) ([]domain.Suggestion, error) {
	filter := bson.M{
		"athleteId": athleteID,
		"expiresAt": bson.M{"$gt": now},
	}
	return r.find(ctx, filter)
}

func (r *mongoSuggestionRepository) find(ctx context.Context, filter bson.M) ([]domain.Suggestion, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var suggestions []domain.Suggestion
	if err = cursor.All(ctx, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// UpdateStatus transitions a suggestion out of pending. Terminal states are
// never overwritten: the filter requires the current status to be pending.
func (r *mongoSuggestionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SuggestionStatus, resolvedAt time.Time) error {
	filter := bson.M{"_id": id, "status": domain.SuggestionPending}
	update := bson.M{"$set": bson.M{"status": status, "resolvedAt": resolvedAt}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExpirePending time-boxes the pending state: everything past its expiry
// flips to expired in one sweep at the start of a refresh.
func (r *mongoSuggestionRepository) ExpirePending(ctx context.Context, athleteID primitive.ObjectID, now time.Time) (int64, error) {
	filter := bson.M{
		"athleteId": athleteID,
		"status":    domain.SuggestionPending,
		"expiresAt": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": domain.SuggestionExpired, "resolvedAt": now}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureSuggestionIndexes creates necessary indexes. Call during startup.
func EnsureSuggestionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// Dedupe lookups by (trigger, workout) pair.
			Keys:    bson.D{{Key: "trigger", Value: 1}, {Key: "workoutId", Value: 1}, {Key: "expiresAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
