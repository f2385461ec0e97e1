package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"
	"github.com/du-phan/resilio-app-sub001/internal/engine/load"
	"github.com/du-phan/resilio-app-sub001/internal/repository"
	"github.com/du-phan/resilio-app-sub001/internal/storage"
	"github.com/du-phan/resilio-app-sub001/internal/telemetry"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEmptyBatch          = errors.New("activity batch is empty")
	ErrNegativeDuration    = errors.New("activity duration must be non-negative")
	ErrNonMonotonicDates   = errors.New("activity dates within a batch must be non-decreasing")
	ErrMissingDate         = errors.New("activity date is required")
	ErrExportURLGeneration = errors.New("failed to generate export upload URL")
)

// ActivityInput is one raw activity as delivered by the sync collaborator:
// already normalized to (date, sport, duration, RPE), loads not yet computed.
type ActivityInput struct {
	Date            time.Time    `json:"date"`
	Sport           domain.Sport `json:"sport"`
	DurationMin     float64      `json:"durationMin"`
	RPE             float64      `json:"rpe"`
	Notes           string       `json:"notes"`
	ExportObjectKey string       `json:"exportObjectKey"`
}

// IngestResult reports what a batch ingest stored, plus any soft warnings
// (unknown sports and the like) that did not block the ingest.
type IngestResult struct {
	Activities []domain.Activity `json:"activities"`
	Warnings   []string          `json:"warnings"`
}

// ExportUploadResponse carries a presigned PUT URL for archiving a raw
// activity export file, plus the object key to reference it by on ingest.
type ExportUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ActivityService ingests activity batches and archives raw export files.
type ActivityService interface {
	IngestBatch(ctx context.Context, athleteID primitive.ObjectID, inputs []ActivityInput) (*IngestResult, error)
	RequestExportUploadURL(ctx context.Context, athleteID primitive.ObjectID, contentType string) (*ExportUploadResponse, error)
	GetHistory(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Activity, error)
}

// activityService implements the ActivityService interface.
type activityService struct {
	activityRepo repository.ActivityRepository
	fileStorage  storage.FileStorage
}

// NewActivityService creates a new instance of activityService.
func NewActivityService(activityRepo repository.ActivityRepository, fileStorage storage.FileStorage) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		fileStorage:  fileStorage,
	}
}

// IngestBatch validates and stores a batch of activities, computing the two
// load channels for each. Truly invalid static inputs (negative duration,
// dates out of order) reject the whole batch; an unrecognized sport only
// produces a warning and conservative default loads.
func (s *activityService) IngestBatch(ctx context.Context, athleteID primitive.ObjectID, inputs []ActivityInput) (*IngestResult, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}

	// 1. Validate the batch as a whole before storing anything.
	var prev time.Time
	for i, in := range inputs {
		if in.Date.IsZero() {
			return nil, fmt.Errorf("%w (entry %d)", ErrMissingDate, i)
		}
		if in.DurationMin < 0 {
			return nil, fmt.Errorf("%w (entry %d)", ErrNegativeDuration, i)
		}
		day := domain.Midnight(in.Date)
		if i > 0 && day.Before(prev) {
			return nil, fmt.Errorf("%w (entry %d)", ErrNonMonotonicDates, i)
		}
		prev = day
	}

	// 2. Normalize loads per activity.
	result := &IngestResult{}
	activities := make([]domain.Activity, len(inputs))
	for i, in := range inputs {
		loads, warnings := load.Normalize(in.Sport, in.DurationMin, in.RPE)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("entry %d: %s", i, w))
		}
		activities[i] = domain.Activity{
			AthleteID:       athleteID,
			Date:            domain.Midnight(in.Date),
			Sport:           in.Sport,
			DurationMin:     in.DurationMin,
			RPE:             in.RPE,
			Notes:           in.Notes,
			SystemicLoadAU:  loads.SystemicAU,
			LowerBodyLoadAU: loads.LowerBodyAU,
			ExportObjectKey: in.ExportObjectKey,
		}
	}

	// 3. Store the batch.
	if _, err := s.activityRepo.InsertMany(ctx, activities); err != nil {
		return nil, err
	}
	telemetry.ActivitiesIngested.Add(float64(len(activities)))

	result.Activities = activities
	return result, nil
}

// RequestExportUploadURL generates a presigned URL for archiving a raw
// export file (FIT/GPX/TCX) before its ingest.
func (s *activityService) RequestExportUploadURL(ctx context.Context, athleteID primitive.ObjectID, contentType string) (*ExportUploadResponse, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	if contentType == "" {
		return nil, errors.New("content type is required")
	}

	uniqueID := uuid.NewString()
	fileExtension := "bin"
	if parts := strings.Split(contentType, "/"); len(parts) == 2 && parts[1] != "" {
		fileExtension = parts[1]
	}
	objectKey := path.Join("exports", athleteID.Hex(), fmt.Sprintf("%s.%s", uniqueID, fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrExportURLGeneration
	}

	return &ExportUploadResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// GetHistory retrieves the athlete's full activity history in date order.
func (s *activityService) GetHistory(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Activity, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	return s.activityRepo.GetByAthlete(ctx, athleteID)
}
