package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/paystack"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"

	"github.com/google/uuid"
)

const paymentReferencePrefix = "cb_"

type PaymentUseCase interface {
	Initialize(ctx context.Context, actor entity.Actor) (*entity.CheckoutSession, error)
	Verify(ctx context.Context, actor entity.Actor, reference string) (*entity.Payment, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	MyCourses(ctx context.Context, userID string) ([]*entity.Course, error)
}

type paymentUseCase struct {
	paymentRepo  persistent.PaymentRepository
	purchaseRepo persistent.PurchaseRepository
	cartRepo     persistent.CartRepository
	courseRepo   persistent.CourseRepository
	gateway      PaymentGateway
	callbackURL  string
	logger       *logger.Logger
}

func NewPaymentUseCase(
	paymentRepo persistent.PaymentRepository,
	purchaseRepo persistent.PurchaseRepository,
	cartRepo persistent.CartRepository,
	courseRepo persistent.CourseRepository,
	gateway PaymentGateway,
	callbackURL string,
	logger *logger.Logger,
) PaymentUseCase {
	return &paymentUseCase{
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
		cartRepo:     cartRepo,
		courseRepo:   courseRepo,
		gateway:      gateway,
		callbackURL:  callbackURL,
		logger:       logger,
	}
}

func (uc *paymentUseCase) Initialize(ctx context.Context, actor entity.Actor) (*entity.CheckoutSession, error) {
	cart, err := uc.cartRepo.Get(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, entity.ErrEmptyCart
	}

	var amount int64
	courseIDs := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		amount += paystack.ToKobo(item.Price)
		courseIDs = append(courseIDs, item.CourseID)
	}
	reference := paymentReferencePrefix + uuid.New().String()

	payment := &entity.Payment{
		Reference: reference,
		UserID:    actor.UID,
		Email:     actor.Email,
		CourseIDs: courseIDs,
		Amount:    amount,
		Status:    entity.PaymentPending,
	}

	// Paystack refuses zero amounts; a cart of free courses is granted directly.
	if amount == 0 {
		created, err := uc.paymentRepo.Create(ctx, payment)
		if err != nil {
			return nil, err
		}
		if err := uc.fulfil(ctx, created); err != nil {
			return nil, err
		}
		return &entity.CheckoutSession{Reference: reference}, nil
	}

	session, err := uc.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       actor.Email,
		Amount:      amount,
		Reference:   reference,
		CallbackURL: uc.callbackURL,
		Metadata: map[string]interface{}{
			"userId":    actor.UID,
			"courseIds": courseIDs,
		},
	})
	if err != nil {
		uc.logger.Error("Failed to initialize payment %s: %v", reference, err)
		return nil, entity.ErrPaymentGateway
	}

	payment.AuthorizationURL = session.AuthorizationURL
	payment.AccessCode = session.AccessCode
	if _, err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	uc.logger.Info("Payment %s initialized for %s (%d kobo)", reference, actor.UID, amount)
	return &entity.CheckoutSession{
		AuthorizationURL: session.AuthorizationURL,
		Reference:        reference,
		AccessCode:       session.AccessCode,
		Amount:           amount,
	}, nil
}

func (uc *paymentUseCase) Verify(ctx context.Context, actor entity.Actor, reference string) (*entity.Payment, error) {
	payment, err := uc.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.UserID != actor.UID && !actor.IsAdmin() {
		return nil, entity.ErrPaymentNotFound
	}

	switch payment.Status {
	case entity.PaymentSuccess:
		return payment, nil
	case entity.PaymentFailed:
		return nil, entity.ErrPaymentFailed
	}

	tx, err := uc.gateway.Verify(ctx, reference)
	if err != nil {
		uc.logger.Error("Failed to verify payment %s: %v", reference, err)
		return nil, entity.ErrPaymentGateway
	}
	return uc.settle(ctx, payment, tx)
}

func (uc *paymentUseCase) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !uc.gateway.VerifySignature(body, signature) {
		return entity.ErrInvalidSignature
	}

	var event paystack.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode webhook: %w", err)
	}
	if event.Event != paystack.EventChargeSuccess {
		uc.logger.Debug("Ignoring paystack event %s", event.Event)
		return nil
	}

	payment, err := uc.paymentRepo.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, entity.ErrPaymentNotFound) {
			uc.logger.Warn("Webhook for unknown payment %s", event.Data.Reference)
			return nil
		}
		return err
	}
	if payment.Status != entity.PaymentPending {
		return nil
	}

	_, err = uc.settle(ctx, payment, &event.Data)
	if errors.Is(err, entity.ErrPaymentFailed) {
		return nil
	}
	return err
}

// settle applies a gateway transaction to a pending payment.
func (uc *paymentUseCase) settle(ctx context.Context, payment *entity.Payment, tx *paystack.Transaction) (*entity.Payment, error) {
	if tx.Status == paystack.StatusSuccess && tx.Amount == payment.Amount {
		if err := uc.fulfil(ctx, payment); err != nil {
			return nil, err
		}
		settled, err := uc.paymentRepo.GetByReference(ctx, payment.Reference)
		if err != nil {
			return nil, err
		}
		return settled, nil
	}

	if tx.Status == paystack.StatusSuccess || isTerminalFailure(tx.Status) {
		if tx.Status == paystack.StatusSuccess {
			uc.logger.Warn("Payment %s amount mismatch: expected %d, got %d", payment.Reference, payment.Amount, tx.Amount)
		}
		if _, _, err := uc.paymentRepo.Settle(ctx, payment.Reference, entity.PaymentFailed); err != nil {
			return nil, err
		}
	}
	return nil, entity.ErrPaymentFailed
}

func isTerminalFailure(status string) bool {
	return status == "failed" || status == "reversed"
}

// fulfil grants every course of the payment before marking it successful, so
// a retry after a partial failure re-grants idempotently.
func (uc *paymentUseCase) fulfil(ctx context.Context, payment *entity.Payment) error {
	courses, err := uc.courseRepo.FindByIDs(ctx, payment.CourseIDs)
	if err != nil {
		return err
	}
	prices := make(map[string]float64, len(courses))
	for _, c := range courses {
		prices[c.ID] = c.Price
	}

	for _, courseID := range payment.CourseIDs {
		err := uc.purchaseRepo.Grant(ctx, &entity.Purchase{
			UserID:     payment.UserID,
			CourseID:   courseID,
			PaymentRef: payment.Reference,
			Amount:     prices[courseID],
		})
		if err != nil {
			return err
		}
	}

	if _, err := uc.cartRepo.RemoveItems(ctx, payment.UserID, payment.CourseIDs...); err != nil {
		uc.logger.Warn("Failed to empty cart of %s after payment %s: %v", payment.UserID, payment.Reference, err)
	}

	_, changed, err := uc.paymentRepo.Settle(ctx, payment.Reference, entity.PaymentSuccess)
	if err != nil {
		return err
	}
	if changed {
		uc.logger.Info("Payment %s fulfilled: %d courses granted to %s", payment.Reference, len(payment.CourseIDs), payment.UserID)
	}
	return nil
}

func (uc *paymentUseCase) MyCourses(ctx context.Context, userID string) ([]*entity.Course, error) {
	purchases, err := uc.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.CourseID)
	}
	return uc.courseRepo.FindByIDs(ctx, ids)
}
