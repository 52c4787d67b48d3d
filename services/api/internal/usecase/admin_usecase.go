package usecase

import (
	"context"

	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"

	"golang.org/x/sync/errgroup"
)

type AdminUseCase interface {
	Stats(ctx context.Context) (*entity.AdminStats, error)
}

type adminUseCase struct {
	userRepo     persistent.UserRepository
	courseRepo   persistent.CourseRepository
	forumRepo    persistent.ForumRepository
	paymentRepo  persistent.PaymentRepository
	purchaseRepo persistent.PurchaseRepository
}

func NewAdminUseCase(
	userRepo persistent.UserRepository,
	courseRepo persistent.CourseRepository,
	forumRepo persistent.ForumRepository,
	paymentRepo persistent.PaymentRepository,
	purchaseRepo persistent.PurchaseRepository,
) AdminUseCase {
	return &adminUseCase{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		forumRepo:    forumRepo,
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
	}
}

func (uc *adminUseCase) Stats(ctx context.Context) (*entity.AdminStats, error) {
	stats := &entity.AdminStats{}
	var revenueKobo int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Users, err = uc.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Courses, err = uc.courseRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ForumPosts, err = uc.forumRepo.CountPosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.SuccessfulPayments, revenueKobo, err = uc.paymentRepo.SuccessfulTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Purchases, err = uc.purchaseRepo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Revenue = float64(revenueKobo) / 100
	return stats, nil
}
