package usecase

import (
	"context"
	"fmt"
	"time"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/models"
	"cognition-berries/pkg/queue"
	"cognition-berries/services/janitor/internal/repo/persistent"
)

// SweepResult summarizes one pass over orphaned images.
type SweepResult struct {
	Candidates int           `json:"candidates"`
	Deleted    int           `json:"deleted"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

type GCUseCase interface {
	// HandleTask deletes the image named by a GC task unless a course still uses it.
	HandleTask(ctx context.Context, task queue.ImageGCTask) error
	Sweep(ctx context.Context) (*SweepResult, error)
}

type gcUseCase struct {
	imageRepo   persistent.ImageRepository
	gracePeriod time.Duration
	batchSize   int
	now         func() time.Time
	logger      *logger.Logger
}

func NewGCUseCase(imageRepo persistent.ImageRepository, gracePeriod time.Duration, batchSize int, logger *logger.Logger) GCUseCase {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &gcUseCase{
		imageRepo:   imageRepo,
		gracePeriod: gracePeriod,
		batchSize:   batchSize,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *gcUseCase) HandleTask(ctx context.Context, task queue.ImageGCTask) error {
	if _, ok := models.ParseImageRef(task.ImageID); !ok {
		return fmt.Errorf("%w: image id %q is not an ObjectID", queue.ErrMalformedTask, task.ImageID)
	}

	deleted, err := uc.deleteIfUnreferenced(ctx, task.ImageID)
	if err != nil {
		return err
	}
	if deleted {
		uc.logger.Info("Collected image %s (reason=%s, course=%s)", task.ImageID, task.Reason, task.CourseID)
	}
	return nil
}

func (uc *gcUseCase) Sweep(ctx context.Context) (*SweepResult, error) {
	start := uc.now()
	cutoff := start.Add(-uc.gracePeriod)

	candidates, err := uc.imageRepo.FindOrphans(ctx, cutoff, uc.batchSize)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Candidates: len(candidates)}
	for _, id := range candidates {
		if ctx.Err() != nil {
			break
		}
		deleted, err := uc.deleteIfUnreferenced(ctx, id)
		switch {
		case err != nil:
			uc.logger.Warn("Sweep failed to collect image %s: %v", id, err)
			result.Failed++
		case deleted:
			result.Deleted++
		default:
			result.Skipped++
		}
	}
	result.Duration = uc.now().Sub(start)

	uc.logger.Info("Image GC sweep removed %d orphaned images (%d candidates, %d skipped, %d failed) in %s",
		result.Deleted, result.Candidates, result.Skipped, result.Failed, result.Duration)
	return result, ctx.Err()
}

// deleteIfUnreferenced re-checks references right before deleting; a course
// may have linked the image after it was queued or listed.
func (uc *gcUseCase) deleteIfUnreferenced(ctx context.Context, imageID string) (bool, error) {
	refs, err := uc.imageRepo.CountReferences(ctx, imageID)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		uc.logger.Debug("Image %s still referenced by %d course(s), keeping it", imageID, refs)
		return false, nil
	}

	deleted, err := uc.imageRepo.Delete(ctx, imageID)
	if err != nil {
		return false, err
	}
	if !deleted {
		uc.logger.Debug("Image %s already gone", imageID)
	}
	return deleted, nil
}
