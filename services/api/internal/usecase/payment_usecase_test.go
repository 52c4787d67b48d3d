package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/paystack"
	"cognition-berries/services/api/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	payments  *MockPaymentRepository
	purchases *MockPurchaseRepository
	carts     *MockCartRepository
	courses   *MockCourseRepository
	gateway   *MockPaymentGateway
	uc        PaymentUseCase
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments:  new(MockPaymentRepository),
		purchases: new(MockPurchaseRepository),
		carts:     new(MockCartRepository),
		courses:   new(MockCourseRepository),
		gateway:   new(MockPaymentGateway),
	}
	f.uc = NewPaymentUseCase(f.payments, f.purchases, f.carts, f.courses, f.gateway, "https://app.test/callback", logger.NewNop())
	return f
}

func (f *paymentFixture) expectFulfilment(ctx context.Context, payment *entity.Payment) {
	f.courses.On("FindByIDs", ctx, payment.CourseIDs).Return([]*entity.Course{
		{ID: "course-a", Price: 1500},
		{ID: "course-b", Price: 2500.5},
	}, nil)
	f.purchases.On("Grant", ctx, mock.MatchedBy(func(p *entity.Purchase) bool {
		return p.UserID == payment.UserID && p.PaymentRef == payment.Reference
	})).Return(nil)
	f.carts.On("RemoveItems", ctx, payment.UserID, payment.CourseIDs).Return(&entity.Cart{UserID: payment.UserID}, nil)
	f.payments.On("Settle", ctx, payment.Reference, entity.PaymentSuccess).Return(payment, true, nil)
}

func TestInitialize_EmptyCart(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	f.carts.On("Get", ctx, student.UID).Return(&entity.Cart{UserID: student.UID}, nil)

	_, err := f.uc.Initialize(ctx, student)
	assert.ErrorIs(t, err, entity.ErrEmptyCart)
}

func TestInitialize_ChargesCartInKobo(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	f.carts.On("Get", ctx, student.UID).Return(&entity.Cart{
		UserID: student.UID,
		Items: []entity.CartItem{
			{CourseID: "course-a", Price: 1500},
			{CourseID: "course-b", Price: 2500.5},
		},
	}, nil)
	f.gateway.On("Initialize", ctx, mock.MatchedBy(func(req paystack.InitializeRequest) bool {
		return req.Amount == 400050 &&
			req.Email == student.Email &&
			strings.HasPrefix(req.Reference, "cb_") &&
			req.CallbackURL == "https://app.test/callback"
	})).Return(&paystack.InitializeData{AuthorizationURL: "https://checkout.paystack.com/abc", AccessCode: "abc"}, nil)
	f.payments.On("Create", ctx, mock.MatchedBy(func(p *entity.Payment) bool {
		return p.Status == entity.PaymentPending &&
			p.Amount == 400050 &&
			assert.ObjectsAreEqual([]string{"course-a", "course-b"}, p.CourseIDs)
	})).Return(&entity.Payment{}, nil)

	session, err := f.uc.Initialize(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", session.AuthorizationURL)
	assert.Equal(t, "abc", session.AccessCode)
	assert.Equal(t, int64(400050), session.Amount)
	assert.True(t, strings.HasPrefix(session.Reference, "cb_"))
}

func TestInitialize_GatewayFailure(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	f.carts.On("Get", ctx, student.UID).Return(&entity.Cart{Items: []entity.CartItem{{CourseID: "course-a", Price: 10}}}, nil)
	f.gateway.On("Initialize", ctx, mock.Anything).Return(nil, paystack.ErrUpstream)

	_, err := f.uc.Initialize(ctx, student)
	assert.ErrorIs(t, err, entity.ErrPaymentGateway)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerify_SuccessGrantsCourses(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	payment := &entity.Payment{
		Reference: "cb_1",
		UserID:    student.UID,
		CourseIDs: []string{"course-a", "course-b"},
		Amount:    400050,
		Status:    entity.PaymentPending,
	}
	settled := *payment
	settled.Status = entity.PaymentSuccess

	f.payments.On("GetByReference", ctx, "cb_1").Return(payment, nil).Once()
	f.gateway.On("Verify", ctx, "cb_1").Return(&paystack.Transaction{Status: "success", Amount: 400050, Reference: "cb_1"}, nil)
	f.expectFulfilment(ctx, payment)
	f.payments.On("GetByReference", ctx, "cb_1").Return(&settled, nil).Once()

	result, err := f.uc.Verify(ctx, student, "cb_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, result.Status)
	f.purchases.AssertNumberOfCalls(t, "Grant", 2)
	f.carts.AssertExpectations(t)
}

func TestVerify_AmountMismatchFails(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	payment := &entity.Payment{Reference: "cb_2", UserID: student.UID, Amount: 5000, Status: entity.PaymentPending}
	f.payments.On("GetByReference", ctx, "cb_2").Return(payment, nil)
	f.gateway.On("Verify", ctx, "cb_2").Return(&paystack.Transaction{Status: "success", Amount: 100}, nil)
	f.payments.On("Settle", ctx, "cb_2", entity.PaymentFailed).Return(payment, true, nil)

	_, err := f.uc.Verify(ctx, student, "cb_2")
	assert.ErrorIs(t, err, entity.ErrPaymentFailed)
	f.purchases.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything)
}

func TestVerify_PendingTransactionStaysPending(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	payment := &entity.Payment{Reference: "cb_3", UserID: student.UID, Amount: 5000, Status: entity.PaymentPending}
	f.payments.On("GetByReference", ctx, "cb_3").Return(payment, nil)
	f.gateway.On("Verify", ctx, "cb_3").Return(&paystack.Transaction{Status: "ongoing", Amount: 5000}, nil)

	_, err := f.uc.Verify(ctx, student, "cb_3")
	assert.ErrorIs(t, err, entity.ErrPaymentFailed)
	f.payments.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_AlreadySettled(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	f.payments.On("GetByReference", ctx, "cb_4").Return(&entity.Payment{Reference: "cb_4", UserID: student.UID, Status: entity.PaymentSuccess}, nil)

	result, err := f.uc.Verify(ctx, student, "cb_4")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, result.Status)
	f.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestVerify_OtherUsersPaymentIsHidden(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	f.payments.On("GetByReference", ctx, "cb_5").Return(&entity.Payment{Reference: "cb_5", UserID: "someone-else"}, nil)

	_, err := f.uc.Verify(ctx, student, "cb_5")
	assert.ErrorIs(t, err, entity.ErrPaymentNotFound)
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	body, err := json.Marshal(paystack.Event{
		Event: paystack.EventChargeSuccess,
		Data:  paystack.Transaction{Reference: "cb_6", Status: "success", Amount: 400050},
	})
	require.NoError(t, err)

	t.Run("bad signature", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("VerifySignature", body, "bad").Return(false)

		assert.ErrorIs(t, f.uc.HandleWebhook(ctx, body, "bad"), entity.ErrInvalidSignature)
	})

	t.Run("charge success fulfils", func(t *testing.T) {
		f := newPaymentFixture()
		payment := &entity.Payment{
			Reference: "cb_6",
			UserID:    student.UID,
			CourseIDs: []string{"course-a", "course-b"},
			Amount:    400050,
			Status:    entity.PaymentPending,
		}
		f.gateway.On("VerifySignature", body, "sig").Return(true)
		f.payments.On("GetByReference", ctx, "cb_6").Return(payment, nil)
		f.expectFulfilment(ctx, payment)

		require.NoError(t, f.uc.HandleWebhook(ctx, body, "sig"))
		f.payments.AssertExpectations(t)
	})

	t.Run("unknown reference is acknowledged", func(t *testing.T) {
		f := newPaymentFixture()
		f.gateway.On("VerifySignature", body, "sig").Return(true)
		f.payments.On("GetByReference", ctx, "cb_6").Return(nil, entity.ErrPaymentNotFound)

		assert.NoError(t, f.uc.HandleWebhook(ctx, body, "sig"))
	})

	t.Run("other events are ignored", func(t *testing.T) {
		f := newPaymentFixture()
		other := []byte(`{"event":"transfer.success","data":{}}`)
		f.gateway.On("VerifySignature", other, "sig").Return(true)

		assert.NoError(t, f.uc.HandleWebhook(ctx, other, "sig"))
		f.payments.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
	})
}

func TestMyCourses(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	f.purchases.On("ListByUser", ctx, student.UID).Return([]*entity.Purchase{{CourseID: "course-a"}}, nil)
	f.courses.On("FindByIDs", ctx, []string{"course-a"}).Return([]*entity.Course{{ID: "course-a"}}, nil)

	courses, err := f.uc.MyCourses(ctx, student.UID)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	f.purchases.On("ListByUser", ctx, "broken").Return(nil, errors.New("boom"))
	_, err = f.uc.MyCourses(ctx, "broken")
	assert.Error(t, err)
}
