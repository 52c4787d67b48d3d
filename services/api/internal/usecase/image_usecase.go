package usecase

import (
	"context"
	"errors"
	"fmt"

	"cognition-berries/pkg/dataurl"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/models"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type ImageUseCase interface {
	UploadCourseImage(ctx context.Context, upload entity.ImageUpload) (*entity.ImageUploadResult, error)
	GetImage(ctx context.Context, id string) (*entity.Image, error)
	DeleteCourseImage(ctx context.Context, courseRef string) error
}

type imageUseCase struct {
	courseRepo persistent.CourseRepository
	imageRepo  persistent.ImageRepository
	collector  ImageCollector
	cache      Cache
	logger     *logger.Logger
}

func NewImageUseCase(
	courseRepo persistent.CourseRepository,
	imageRepo persistent.ImageRepository,
	collector ImageCollector,
	cache Cache,
	logger *logger.Logger,
) ImageUseCase {
	return &imageUseCase{
		courseRepo: courseRepo,
		imageRepo:  imageRepo,
		collector:  collector,
		cache:      cache,
		logger:     logger,
	}
}

func (uc *imageUseCase) UploadCourseImage(ctx context.Context, upload entity.ImageUpload) (*entity.ImageUploadResult, error) {
	course, err := uc.courseRepo.FindByRef(ctx, upload.CourseRef)
	if err != nil {
		return nil, err
	}

	parsed, err := dataurl.Parse(upload.DataURL)
	if err != nil {
		return nil, toImageError(err)
	}

	filename := upload.Filename
	if filename == "" {
		filename = fmt.Sprintf("course-%s.%s", course.ID, dataurl.Extension(parsed.Subtype))
	}

	image, err := uc.imageRepo.Create(ctx, &entity.Image{
		Filename:   filename,
		MimeType:   parsed.MimeType,
		Size:       int64(len(parsed.Bytes)),
		Data:       parsed.String(),
		Type:       models.ImageKindCourse,
		CourseID:   course.ID,
		UploadedBy: upload.UploadedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous, err := uc.courseRepo.SwapImage(ctx, course.ID, image.ID)
	if err != nil {
		if _, delErr := uc.imageRepo.Delete(ctx, image.ID); delErr != nil {
			uc.logger.Error("Failed to remove image %s after failed link: %v", image.ID, delErr)
		}
		if errors.Is(err, entity.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to link image to course %s: %w", course.ID, err)
	}

	if previous.Image != image.ID {
		uc.collector.Collect(ctx, previous.Image, course.ID, GCReasonReplaced)
	}
	invalidateCourses(ctx, uc.cache, uc.logger)

	updated, err := uc.courseRepo.GetByRef(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload course %s: %w", course.ID, err)
	}

	uc.logger.Info("Image %s linked to course %s", image.ID, course.ID)
	return &entity.ImageUploadResult{
		ImageID:  image.ID,
		ImageURL: models.ImageURLPrefix + image.ID,
		Course:   updated,
	}, nil
}

func toImageError(err error) error {
	switch {
	case errors.Is(err, dataurl.ErrInvalidFormat):
		return entity.ErrInvalidImageFormat
	case errors.Is(err, dataurl.ErrTooLarge):
		return entity.ErrImageTooLarge
	case errors.Is(err, dataurl.ErrInvalidBase64):
		return entity.ErrInvalidImageData
	default:
		return err
	}
}

func (uc *imageUseCase) GetImage(ctx context.Context, id string) (*entity.Image, error) {
	image, err := uc.imageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	image.Data = dataurl.Normalize(image.Data, image.MimeType)
	return image, nil
}

func (uc *imageUseCase) DeleteCourseImage(ctx context.Context, courseRef string) error {
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	if err != nil {
		return err
	}
	if course.Image == "" {
		return entity.ErrNoImage
	}

	previous, err := uc.courseRepo.ClearImage(ctx, course.ID)
	if err != nil {
		return err
	}

	if _, ok := models.ParseImageRef(previous.Image); ok {
		if _, err := uc.imageRepo.Delete(ctx, previous.Image); err != nil {
			// The reference is already gone; the janitor sweep picks this up.
			uc.logger.Warn("Failed to delete image %s of course %s: %v", previous.Image, course.ID, err)
		}
	}
	invalidateCourses(ctx, uc.cache, uc.logger)
	uc.logger.Info("Image removed from course %s", course.ID)
	return nil
}
