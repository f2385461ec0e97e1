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

const dailyMetricsCollectionName = "daily_metrics"

// mongoDailyMetricsRepository implements repository.DailyMetricsRepository
type mongoDailyMetricsRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyMetricsRepository creates a new DailyMetrics repository.
func NewMongoDailyMetricsRepository(db *mongo.Database) repository.DailyMetricsRepository {
	return &mongoDailyMetricsRepository{
		collection: db.Collection(dailyMetricsCollectionName),
	}
}

// ReplaceForAthlete swaps the athlete's whole metrics series. The refresh
// cycle recomputes from the full activity history every time, so the old
// series carries no information the new one lacks.
func (r *mongoDailyMetricsRepository) ReplaceForAthlete(ctx context.Context, athleteID primitive.ObjectID, series []domain.DailyMetrics) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"athleteId": athleteID}); err != nil {
		return err
	}
	if len(series) == 0 {
		return nil
	}
	docs := make([]interface{}, len(series))
	for i := range series {
		series[i].ID = primitive.NewObjectID()
		series[i].AthleteID = athleteID
		docs[i] = series[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetRange retrieves metrics between from and to inclusive, in date order.
func (r *mongoDailyMetricsRepository) GetRange(ctx context.Context, athleteID primitive.ObjectID, from, to time.Time) ([]domain.DailyMetrics, error) {
	filter := bson.M{
		"athleteId": athleteID,
		"date":      bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var series []domain.DailyMetrics
	if err = cursor.All(ctx, &series); err != nil {
		return nil, err
	}
	return series, nil
}

// GetLatest retrieves the most recent metrics record for the athlete.
func (r *mongoDailyMetricsRepository) GetLatest(ctx context.Context, athleteID primitive.ObjectID) (*domain.DailyMetrics, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var m domain.DailyMetrics
	err := r.collection.FindOne(ctx, bson.M{"athleteId": athleteID}, findOptions).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// EnsureDailyMetricsIndexes creates necessary indexes. Call during startup.
func EnsureDailyMetricsIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
