package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/queue"
	"cognition-berries/services/janitor/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	orphanID = "65f1a2b3c4d5e6f708192c01"
	linkedID = "65f1a2b3c4d5e6f708192c02"
)

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) CountReferences(ctx context.Context, imageID string) (int64, error) {
	args := m.Called(ctx, imageID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImageRepository) Delete(ctx context.Context, imageID string) (bool, error) {
	args := m.Called(ctx, imageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockImageRepository) FindOrphans(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ persistent.ImageRepository = (*MockImageRepository)(nil)

func newTestGC(repo *MockImageRepository) *gcUseCase {
	uc := NewGCUseCase(repo, time.Hour, 100, logger.NewNop()).(*gcUseCase)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }
	return uc
}

func TestHandleTask_DeletesUnreferencedImage(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)
	repo.On("CountReferences", mock.Anything, orphanID).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, orphanID).Return(true, nil)

	err := uc.HandleTask(context.Background(), queue.ImageGCTask{ImageID: orphanID, Reason: "replaced"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleTask_KeepsReferencedImage(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)
	repo.On("CountReferences", mock.Anything, linkedID).Return(int64(1), nil)

	err := uc.HandleTask(context.Background(), queue.ImageGCTask{ImageID: linkedID})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestHandleTask_AlreadyDeletedIsAcked(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)
	repo.On("CountReferences", mock.Anything, orphanID).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, orphanID).Return(false, nil)

	assert.NoError(t, uc.HandleTask(context.Background(), queue.ImageGCTask{ImageID: orphanID}))
}

func TestHandleTask_LegacyPathIsMalformed(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)

	err := uc.HandleTask(context.Background(), queue.ImageGCTask{ImageID: "/images/old.png"})

	assert.ErrorIs(t, err, queue.ErrMalformedTask)
	repo.AssertNotCalled(t, "CountReferences", mock.Anything, mock.Anything)
}

func TestHandleTask_StorageErrorRequeues(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)
	repo.On("CountReferences", mock.Anything, orphanID).Return(int64(0), errors.New("server selection timeout"))

	err := uc.HandleTask(context.Background(), queue.ImageGCTask{ImageID: orphanID})

	require.Error(t, err)
	assert.NotErrorIs(t, err, queue.ErrMalformedTask)
}

func TestSweep_CountsOutcomes(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)
	failingID := "65f1a2b3c4d5e6f708192c03"
	cutoff := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	repo.On("FindOrphans", mock.Anything, cutoff, 100).Return([]string{orphanID, linkedID, failingID}, nil)
	repo.On("CountReferences", mock.Anything, orphanID).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, orphanID).Return(true, nil)
	// linked between listing and collection
	repo.On("CountReferences", mock.Anything, linkedID).Return(int64(1), nil)
	repo.On("CountReferences", mock.Anything, failingID).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, failingID).Return(false, errors.New("write conflict"))

	result, err := uc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	repo.AssertExpectations(t)
}

func TestSweep_ListFailure(t *testing.T) {
	repo := new(MockImageRepository)
	uc := newTestGC(repo)
	repo.On("FindOrphans", mock.Anything, mock.Anything, 100).Return(nil, errors.New("aggregate failed"))

	result, err := uc.Sweep(context.Background())

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestNewGCUseCase_DefaultBatch(t *testing.T) {
	uc := NewGCUseCase(new(MockImageRepository), time.Hour, 0, logger.NewNop()).(*gcUseCase)
	assert.Equal(t, 500, uc.batchSize)
}
