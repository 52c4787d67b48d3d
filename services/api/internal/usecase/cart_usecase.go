package usecase

import (
	"context"
	"errors"
	"fmt"

	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type CartUseCase interface {
	GetCart(ctx context.Context, userID string) (*entity.Cart, error)
	AddToCart(ctx context.Context, userID, courseRef string) (*entity.Cart, error)
	RemoveFromCart(ctx context.Context, userID, courseRef string) (*entity.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartUseCase struct {
	cartRepo     persistent.CartRepository
	courseRepo   persistent.CourseRepository
	purchaseRepo persistent.PurchaseRepository
	logger       *logger.Logger
}

func NewCartUseCase(
	cartRepo persistent.CartRepository,
	courseRepo persistent.CourseRepository,
	purchaseRepo persistent.PurchaseRepository,
	logger *logger.Logger,
) CartUseCase {
	return &cartUseCase{
		cartRepo:     cartRepo,
		courseRepo:   courseRepo,
		purchaseRepo: purchaseRepo,
		logger:       logger,
	}
}

func (uc *cartUseCase) GetCart(ctx context.Context, userID string) (*entity.Cart, error) {
	return uc.cartRepo.Get(ctx, userID)
}

func (uc *cartUseCase) AddToCart(ctx context.Context, userID, courseRef string) (*entity.Cart, error) {
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	if err != nil {
		return nil, err
	}

	owned, err := uc.purchaseRepo.Exists(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, entity.ErrAlreadyPurchased
	}

	return uc.cartRepo.AddItem(ctx, userID, entity.CartItem{
		CourseID: course.ID,
		Title:    course.Title,
		Price:    course.Price,
	})
}

func (uc *cartUseCase) RemoveFromCart(ctx context.Context, userID, courseRef string) (*entity.Cart, error) {
	courseID := courseRef
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	switch {
	case err == nil:
		courseID = course.ID
	case errors.Is(err, entity.ErrCourseNotFound):
		// A deleted course can still sit in a cart under its old id.
	default:
		return nil, fmt.Errorf("failed to resolve course %s: %w", courseRef, err)
	}
	return uc.cartRepo.RemoveItems(ctx, userID, courseID)
}

func (uc *cartUseCase) ClearCart(ctx context.Context, userID string) error {
	return uc.cartRepo.Clear(ctx, userID)
}
