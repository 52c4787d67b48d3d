package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	users, courses, forum := new(MockUserRepository), new(MockCourseRepository), new(MockForumRepository)
	payments, purchases := new(MockPaymentRepository), new(MockPurchaseRepository)
	uc := NewAdminUseCase(users, courses, forum, payments, purchases)

	users.On("Count", mock.Anything).Return(int64(12), nil)
	courses.On("Count", mock.Anything).Return(int64(4), nil)
	forum.On("CountPosts", mock.Anything).Return(int64(9), nil)
	payments.On("SuccessfulTotals", mock.Anything).Return(int64(3), int64(750050), nil)
	purchases.On("Count", mock.Anything).Return(int64(5), nil)

	stats, err := uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Users)
	assert.Equal(t, int64(4), stats.Courses)
	assert.Equal(t, int64(9), stats.ForumPosts)
	assert.Equal(t, int64(3), stats.SuccessfulPayments)
	assert.Equal(t, int64(5), stats.Purchases)
	assert.Equal(t, 7500.5, stats.Revenue)
}

func TestStats_PropagatesErrors(t *testing.T) {
	users, courses, forum := new(MockUserRepository), new(MockCourseRepository), new(MockForumRepository)
	payments, purchases := new(MockPaymentRepository), new(MockPurchaseRepository)
	uc := NewAdminUseCase(users, courses, forum, payments, purchases)

	users.On("Count", mock.Anything).Return(int64(0), errors.New("mongo down"))
	courses.On("Count", mock.Anything).Return(int64(4), nil)
	forum.On("CountPosts", mock.Anything).Return(int64(9), nil)
	payments.On("SuccessfulTotals", mock.Anything).Return(int64(0), int64(0), nil)
	purchases.On("Count", mock.Anything).Return(int64(5), nil)

	_, err := uc.Stats(context.Background())
	assert.ErrorContains(t, err, "mongo down")
}
