package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/du-phan/resilio-app-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeFileStorage struct {
	uploads []string
	err     error
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, objectKey)
	return "https://storage.test/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, _ string) error { return nil }

func day(offset int) time.Time {
	return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestIngestBatchComputesLoads(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, &fakeFileStorage{})
	athleteID := primitive.NewObjectID()

	result, err := svc.IngestBatch(context.Background(), athleteID, []ActivityInput{
		{Date: day(0).Add(7 * time.Hour), Sport: domain.SportRunning, DurationMin: 60, RPE: 5},
		{Date: day(1), Sport: domain.SportCycling, DurationMin: 60, RPE: 5},
	})
	require.NoError(t, err)
	require.Len(t, result.Activities, 2)
	assert.Empty(t, result.Warnings)

	run := result.Activities[0]
	assert.Equal(t, day(0), run.Date, "timestamps collapse to UTC midnight")
	assert.Equal(t, 60.0, run.SystemicLoadAU)
	assert.Equal(t, 60.0, run.LowerBodyLoadAU)

	ride := result.Activities[1]
	assert.Equal(t, 51.0, ride.SystemicLoadAU)
	assert.Equal(t, 21.0, ride.LowerBodyLoadAU)

	stored, err := repo.GetByAthlete(context.Background(), athleteID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, 60.0, stored[0].SystemicLoadAU, "loads are persisted, not just returned")
}

func TestIngestBatchUnknownSportWarns(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, &fakeFileStorage{})

	result, err := svc.IngestBatch(context.Background(), primitive.NewObjectID(), []ActivityInput{
		{Date: day(0), Sport: domain.Sport("parkour"), DurationMin: 60, RPE: 5},
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "parkour")
	// Conservative defaults, not zero: an unlogged sport still loads the athlete.
	assert.Equal(t, 42.0, result.Activities[0].SystemicLoadAU)
	assert.Equal(t, 30.0, result.Activities[0].LowerBodyLoadAU)
}

func TestIngestBatchValidation(t *testing.T) {
	testCases := []struct {
		name    string
		inputs  []ActivityInput
		wantErr error
	}{
		{
			name:    "empty batch",
			inputs:  nil,
			wantErr: ErrEmptyBatch,
		},
		{
			name: "missing date",
			inputs: []ActivityInput{
				{Sport: domain.SportRunning, DurationMin: 30, RPE: 4},
			},
			wantErr: ErrMissingDate,
		},
		{
			name: "negative duration",
			inputs: []ActivityInput{
				{Date: day(0), Sport: domain.SportRunning, DurationMin: -5, RPE: 4},
			},
			wantErr: ErrNegativeDuration,
		},
		{
			name: "dates out of order",
			inputs: []ActivityInput{
				{Date: day(2), Sport: domain.SportRunning, DurationMin: 30, RPE: 4},
				{Date: day(0), Sport: domain.SportRunning, DurationMin: 30, RPE: 4},
			},
			wantErr: ErrNonMonotonicDates,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeActivityRepo{}
			svc := NewActivityService(repo, &fakeFileStorage{})

			_, err := svc.IngestBatch(context.Background(), primitive.NewObjectID(), tc.inputs)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, repo.activities, "a rejected batch must store nothing")
		})
	}
}

func TestIngestBatchSameDayAllowed(t *testing.T) {
	svc := NewActivityService(&fakeActivityRepo{}, &fakeFileStorage{})

	// Morning run plus evening strength on the same calendar day.
	result, err := svc.IngestBatch(context.Background(), primitive.NewObjectID(), []ActivityInput{
		{Date: day(0).Add(7 * time.Hour), Sport: domain.SportRunning, DurationMin: 40, RPE: 4},
		{Date: day(0).Add(18 * time.Hour), Sport: domain.SportStrength, DurationMin: 45, RPE: 7},
	})
	require.NoError(t, err)
	assert.Len(t, result.Activities, 2)
}

func TestRequestExportUploadURL(t *testing.T) {
	fs := &fakeFileStorage{}
	svc := NewActivityService(&fakeActivityRepo{}, fs)
	athleteID := primitive.NewObjectID()

	resp, err := svc.RequestExportUploadURL(context.Background(), athleteID, "application/gpx")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ObjectKey, fmt.Sprintf("exports/%s/", athleteID.Hex())))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".gpx"))
	assert.Equal(t, "https://storage.test/"+resp.ObjectKey, resp.UploadURL)
	require.Len(t, fs.uploads, 1)
}

func TestRequestExportUploadURLFailure(t *testing.T) {
	fs := &fakeFileStorage{err: fmt.Errorf("presign refused")}
	svc := NewActivityService(&fakeActivityRepo{}, fs)

	_, err := svc.RequestExportUploadURL(context.Background(), primitive.NewObjectID(), "application/fit")
	assert.ErrorIs(t, err, ErrExportURLGeneration)
}

func TestGetHistoryOrdered(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, &fakeFileStorage{})
	athleteID := primitive.NewObjectID()

	_, err := svc.IngestBatch(context.Background(), athleteID, []ActivityInput{
		{Date: day(0), Sport: domain.SportRunning, DurationMin: 30, RPE: 4},
		{Date: day(3), Sport: domain.SportRunning, DurationMin: 50, RPE: 5},
	})
	require.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), athleteID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Date.Before(history[1].Date))
}
