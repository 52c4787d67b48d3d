package usecase

import (
	"context"
	"errors"
	"fmt"

	"cognition-berries/pkg/cache"
	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type CourseUseCase interface {
	ListCourses(ctx context.Context) ([]*entity.Course, error)
	GetCourse(ctx context.Context, ref string) (*entity.Course, error)
	CreateCourse(ctx context.Context, in entity.CourseInput) (*entity.Course, error)
	UpdateCourse(ctx context.Context, ref string, in entity.CourseInput) (*entity.Course, error)
	DeleteCourse(ctx context.Context, ref string) error
}

type courseUseCase struct {
	courseRepo persistent.CourseRepository
	collector  ImageCollector
	cache      Cache
	logger     *logger.Logger
}

func NewCourseUseCase(
	courseRepo persistent.CourseRepository,
	collector ImageCollector,
	cache Cache,
	logger *logger.Logger,
) CourseUseCase {
	return &courseUseCase{
		courseRepo: courseRepo,
		collector:  collector,
		cache:      cache,
		logger:     logger,
	}
}

func (uc *courseUseCase) ListCourses(ctx context.Context) ([]*entity.Course, error) {
	key := ""
	if uc.cache != nil {
		var err error
		if key, err = coursesListKey(ctx, uc.cache); err != nil {
			uc.logger.Warn("Failed to read course cache version: %v", err)
		}
	}

	if key != "" {
		var cached []*entity.Course
		err := uc.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			uc.logger.Warn("Failed to read course cache: %v", err)
		}
	}

	courses, err := uc.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	if key != "" {
		if err := uc.cache.SetJSON(ctx, key, courses, coursesCacheTTL); err != nil {
			uc.logger.Warn("Failed to cache course list: %v", err)
		}
	}
	return courses, nil
}

// coursesListKey names the cached list for the current version. Every course
// write bumps the version, so a list read before the write is stored under a
// key no later reader asks for.
func coursesListKey(ctx context.Context, c Cache) (string, error) {
	var version int64
	if err := c.GetJSON(ctx, coursesVersionKey, &version); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", coursesCacheKey, version), nil
}

func (uc *courseUseCase) GetCourse(ctx context.Context, ref string) (*entity.Course, error) {
	return uc.courseRepo.GetByRef(ctx, ref)
}

func (uc *courseUseCase) CreateCourse(ctx context.Context, in entity.CourseInput) (*entity.Course, error) {
	course, err := uc.courseRepo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	invalidateCourses(ctx, uc.cache, uc.logger)
	uc.logger.Info("Course %s created", course.ID)
	return course, nil
}

func (uc *courseUseCase) UpdateCourse(ctx context.Context, ref string, in entity.CourseInput) (*entity.Course, error) {
	existing, err := uc.courseRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	course, err := uc.courseRepo.Update(ctx, existing.ID, in)
	if err != nil {
		return nil, err
	}
	invalidateCourses(ctx, uc.cache, uc.logger)
	return course, nil
}

func (uc *courseUseCase) DeleteCourse(ctx context.Context, ref string) error {
	existing, err := uc.courseRepo.FindByRef(ctx, ref)
	if err != nil {
		return err
	}

	deleted, err := uc.courseRepo.Delete(ctx, existing.ID)
	if err != nil {
		return err
	}
	uc.collector.Collect(ctx, deleted.Image, deleted.ID, GCReasonCourseDeleted)
	invalidateCourses(ctx, uc.cache, uc.logger)
	uc.logger.Info("Course %s deleted", deleted.ID)
	return nil
}

func invalidateCourses(ctx context.Context, c Cache, log *logger.Logger) {
	if c == nil {
		return
	}
	if _, err := c.Incr(ctx, coursesVersionKey); err != nil {
		log.Warn("Failed to invalidate course cache: %v", err)
	}
}
