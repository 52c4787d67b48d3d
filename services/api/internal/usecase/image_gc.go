package usecase

import (
	"context"
	"fmt"
	"time"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/models"
	"cognition-berries/pkg/queue"
	"cognition-berries/services/api/internal/repo/persistent"
)

const (
	GCReasonReplaced      = "replaced"
	GCReasonCleared       = "cleared"
	GCReasonCourseDeleted = "course_deleted"
	GCReasonAbandoned     = "abandoned"
)

// ImageCollector disposes of image documents no course points at anymore.
type ImageCollector interface {
	Collect(ctx context.Context, imageRef, courseID, reason string)
}

// NewImageCollector hands displaced images to the janitor when a publisher is
// available and deletes them in-process otherwise.
func NewImageCollector(publisher ImageGCPublisher, courseRepo persistent.CourseRepository, imageRepo persistent.ImageRepository, log *logger.Logger) ImageCollector {
	inline := &inlineCollector{courseRepo: courseRepo, imageRepo: imageRepo, logger: log}
	if publisher == nil {
		return inline
	}
	return &queueCollector{publisher: publisher, fallback: inline, logger: log}
}

type inlineCollector struct {
	courseRepo persistent.CourseRepository
	imageRepo  persistent.ImageRepository
	logger     *logger.Logger
}

func (c *inlineCollector) Collect(ctx context.Context, imageRef, courseID, reason string) {
	if _, ok := models.ParseImageRef(imageRef); !ok {
		return
	}
	if err := c.collect(ctx, imageRef); err != nil {
		c.logger.Warn("Failed to collect image %s of course %s (%s): %v", imageRef, courseID, reason, err)
	}
}

func (c *inlineCollector) collect(ctx context.Context, imageID string) error {
	refs, err := c.courseRepo.CountImageReferences(ctx, imageID)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return nil
	}
	deleted, err := c.imageRepo.Delete(ctx, imageID)
	if err != nil {
		return err
	}
	if deleted {
		c.logger.Info("Deleted unreferenced image %s", imageID)
	}
	return nil
}

type queueCollector struct {
	publisher ImageGCPublisher
	fallback  *inlineCollector
	logger    *logger.Logger
}

func (c *queueCollector) Collect(ctx context.Context, imageRef, courseID, reason string) {
	if _, ok := models.ParseImageRef(imageRef); !ok {
		return
	}
	task := queue.ImageGCTask{
		ImageID:     imageRef,
		CourseID:    courseID,
		Reason:      reason,
		DisplacedAt: time.Now().UTC(),
	}
	if err := c.publisher.PublishImageGCTask(ctx, task); err != nil {
		c.logger.Warn("Publishing gc task for image %s failed, deleting inline: %v", imageRef, err)
		c.fallback.Collect(ctx, imageRef, courseID, reason)
	}
}
