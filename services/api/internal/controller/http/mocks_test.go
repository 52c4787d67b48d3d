package http

import (
	"context"
	"io"

	"cognition-berries/pkg/identity"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withActor stands in for the auth middleware.
func withActor(uid, role string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uid)
		c.Set("user_role", role)
		c.Set("user_email", uid+"@example.com")
		c.Set("user_name", "Ada")
		next(c)
	}
}

type MockCourseUseCase struct {
	mock.Mock
}

func (m *MockCourseUseCase) ListCourses(ctx context.Context) ([]*entity.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Course), args.Error(1)
}

func (m *MockCourseUseCase) GetCourse(ctx context.Context, ref string) (*entity.Course, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseUseCase) CreateCourse(ctx context.Context, in entity.CourseInput) (*entity.Course, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseUseCase) UpdateCourse(ctx context.Context, ref string, in entity.CourseInput) (*entity.Course, error) {
	args := m.Called(ctx, ref, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseUseCase) DeleteCourse(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

var _ usecase.CourseUseCase = (*MockCourseUseCase)(nil)

type MockImageUseCase struct {
	mock.Mock
}

func (m *MockImageUseCase) UploadCourseImage(ctx context.Context, upload entity.ImageUpload) (*entity.ImageUploadResult, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ImageUploadResult), args.Error(1)
}

func (m *MockImageUseCase) GetImage(ctx context.Context, id string) (*entity.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Image), args.Error(1)
}

func (m *MockImageUseCase) DeleteCourseImage(ctx context.Context, courseRef string) error {
	return m.Called(ctx, courseRef).Error(0)
}

var _ usecase.ImageUseCase = (*MockImageUseCase)(nil)

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) user(args mock.Arguments) (*entity.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserUseCase) Register(ctx context.Context, uid, email, name string) (*entity.User, error) {
	return m.user(m.Called(ctx, uid, email, name))
}

func (m *MockUserUseCase) ResolveRole(ctx context.Context, id *identity.Identity) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockUserUseCase) GetMe(ctx context.Context, uid string) (*entity.User, error) {
	return m.user(m.Called(ctx, uid))
}

func (m *MockUserUseCase) UpdateMe(ctx context.Context, uid, name string) (*entity.User, error) {
	return m.user(m.Called(ctx, uid, name))
}

func (m *MockUserUseCase) UploadAvatar(ctx context.Context, uid string, r io.Reader) (*entity.User, error) {
	return m.user(m.Called(ctx, uid, r))
}

func (m *MockUserUseCase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserUseCase) GetUser(ctx context.Context, email string) (*entity.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserUseCase) UpdateUser(ctx context.Context, email string, name, role *string) (*entity.User, error) {
	return m.user(m.Called(ctx, email, name, role))
}

func (m *MockUserUseCase) DeleteUser(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

var _ usecase.UserUseCase = (*MockUserUseCase)(nil)

type MockForumUseCase struct {
	mock.Mock
}

func (m *MockForumUseCase) ListPosts(ctx context.Context, filter entity.ForumFilter) ([]*entity.ForumPost, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ForumPost), args.Error(1)
}

func (m *MockForumUseCase) GetPost(ctx context.Context, id string) (*entity.ForumPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ForumPost), args.Error(1)
}

func (m *MockForumUseCase) CreatePost(ctx context.Context, actor entity.Actor, post *entity.ForumPost) (*entity.ForumPost, error) {
	args := m.Called(ctx, actor, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ForumPost), args.Error(1)
}

func (m *MockForumUseCase) DeletePost(ctx context.Context, actor entity.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockForumUseCase) ListReplies(ctx context.Context, postID string) ([]*entity.ForumReply, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ForumReply), args.Error(1)
}

func (m *MockForumUseCase) CreateReply(ctx context.Context, actor entity.Actor, reply *entity.ForumReply) (*entity.ForumReply, error) {
	args := m.Called(ctx, actor, reply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ForumReply), args.Error(1)
}

func (m *MockForumUseCase) GetThread(ctx context.Context, postID string) ([]*entity.ThreadNode, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ThreadNode), args.Error(1)
}

var _ usecase.ForumUseCase = (*MockForumUseCase)(nil)

type MockCartUseCase struct {
	mock.Mock
}

func (m *MockCartUseCase) cart(args mock.Arguments) (*entity.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartUseCase) GetCart(ctx context.Context, userID string) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartUseCase) AddToCart(ctx context.Context, userID, courseRef string) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, userID, courseRef))
}

func (m *MockCartUseCase) RemoveFromCart(ctx context.Context, userID, courseRef string) (*entity.Cart, error) {
	return m.cart(m.Called(ctx, userID, courseRef))
}

func (m *MockCartUseCase) ClearCart(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

var _ usecase.CartUseCase = (*MockCartUseCase)(nil)

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Initialize(ctx context.Context, actor entity.Actor) (*entity.CheckoutSession, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CheckoutSession), args.Error(1)
}

func (m *MockPaymentUseCase) Verify(ctx context.Context, actor entity.Actor, reference string) (*entity.Payment, error) {
	args := m.Called(ctx, actor, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

func (m *MockPaymentUseCase) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	return m.Called(ctx, body, signature).Error(0)
}

func (m *MockPaymentUseCase) MyCourses(ctx context.Context, userID string) ([]*entity.Course, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Course), args.Error(1)
}

var _ usecase.PaymentUseCase = (*MockPaymentUseCase)(nil)

type MockReviewUseCase struct {
	mock.Mock
}

func (m *MockReviewUseCase) ListReviews(ctx context.Context, courseRef string) ([]*entity.Review, error) {
	args := m.Called(ctx, courseRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Review), args.Error(1)
}

func (m *MockReviewUseCase) SubmitReview(ctx context.Context, actor entity.Actor, courseRef string, rating int, comment string) (*entity.Review, error) {
	args := m.Called(ctx, actor, courseRef, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewUseCase) DeleteReview(ctx context.Context, actor entity.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

var _ usecase.ReviewUseCase = (*MockReviewUseCase)(nil)

type MockLearningUseCase struct {
	mock.Mock
}

func (m *MockLearningUseCase) GetProgress(ctx context.Context, actor entity.Actor, courseRef string) (*entity.Progress, error) {
	args := m.Called(ctx, actor, courseRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progress), args.Error(1)
}

func (m *MockLearningUseCase) CompleteLesson(ctx context.Context, actor entity.Actor, courseRef, lessonID string) (*entity.Progress, error) {
	args := m.Called(ctx, actor, courseRef, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progress), args.Error(1)
}

func (m *MockLearningUseCase) ListQuizzes(ctx context.Context, actor entity.Actor, courseRef string) ([]entity.PublicQuiz, error) {
	args := m.Called(ctx, actor, courseRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PublicQuiz), args.Error(1)
}

func (m *MockLearningUseCase) SubmitQuiz(ctx context.Context, actor entity.Actor, courseRef, quizID string, answers []int) (*entity.QuizSubmission, error) {
	args := m.Called(ctx, actor, courseRef, quizID, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizSubmission), args.Error(1)
}

func (m *MockLearningUseCase) CreateQuiz(ctx context.Context, courseRef string, quiz *entity.Quiz) (*entity.Quiz, error) {
	args := m.Called(ctx, courseRef, quiz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

var _ usecase.LearningUseCase = (*MockLearningUseCase)(nil)

type MockAdminUseCase struct {
	mock.Mock
}

func (m *MockAdminUseCase) Stats(ctx context.Context) (*entity.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdminStats), args.Error(1)
}

var _ usecase.AdminUseCase = (*MockAdminUseCase)(nil)
