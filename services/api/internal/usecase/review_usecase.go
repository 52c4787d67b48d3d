package usecase

import (
	"context"

	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type ReviewUseCase interface {
	ListReviews(ctx context.Context, courseRef string) ([]*entity.Review, error)
	SubmitReview(ctx context.Context, actor entity.Actor, courseRef string, rating int, comment string) (*entity.Review, error)
	DeleteReview(ctx context.Context, actor entity.Actor, id string) error
}

type reviewUseCase struct {
	reviewRepo persistent.ReviewRepository
	courseRepo persistent.CourseRepository
	logger     *logger.Logger
}

func NewReviewUseCase(reviewRepo persistent.ReviewRepository, courseRepo persistent.CourseRepository, logger *logger.Logger) ReviewUseCase {
	return &reviewUseCase{
		reviewRepo: reviewRepo,
		courseRepo: courseRepo,
		logger:     logger,
	}
}

func (uc *reviewUseCase) ListReviews(ctx context.Context, courseRef string) ([]*entity.Review, error) {
	if courseRef == "" {
		return uc.reviewRepo.ListByCourse(ctx, "")
	}
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	return uc.reviewRepo.ListByCourse(ctx, course.ID)
}

func (uc *reviewUseCase) SubmitReview(ctx context.Context, actor entity.Actor, courseRef string, rating int, comment string) (*entity.Review, error) {
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	if err != nil {
		return nil, err
	}

	return uc.reviewRepo.Upsert(ctx, &entity.Review{
		CourseID: course.ID,
		UserID:   actor.UID,
		UserName: actor.DisplayName(),
		Rating:   rating,
		Comment:  comment,
	})
}

func (uc *reviewUseCase) DeleteReview(ctx context.Context, actor entity.Actor, id string) error {
	review, err := uc.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID != actor.UID && !actor.IsAdmin() {
		return entity.ErrForbidden
	}
	if err := uc.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("Review %s deleted by %s", id, actor.UID)
	return nil
}
