package usecase

import (
	"context"
	"math"

	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type LearningUseCase interface {
	GetProgress(ctx context.Context, actor entity.Actor, courseRef string) (*entity.Progress, error)
	CompleteLesson(ctx context.Context, actor entity.Actor, courseRef, lessonID string) (*entity.Progress, error)
	ListQuizzes(ctx context.Context, actor entity.Actor, courseRef string) ([]entity.PublicQuiz, error)
	SubmitQuiz(ctx context.Context, actor entity.Actor, courseRef, quizID string, answers []int) (*entity.QuizSubmission, error)
	CreateQuiz(ctx context.Context, courseRef string, quiz *entity.Quiz) (*entity.Quiz, error)
}

type learningUseCase struct {
	courseRepo   persistent.CourseRepository
	purchaseRepo persistent.PurchaseRepository
	progressRepo persistent.ProgressRepository
	quizRepo     persistent.QuizRepository
	logger       *logger.Logger
}

func NewLearningUseCase(
	courseRepo persistent.CourseRepository,
	purchaseRepo persistent.PurchaseRepository,
	progressRepo persistent.ProgressRepository,
	quizRepo persistent.QuizRepository,
	logger *logger.Logger,
) LearningUseCase {
	return &learningUseCase{
		courseRepo:   courseRepo,
		purchaseRepo: purchaseRepo,
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		logger:       logger,
	}
}

// accessibleCourse resolves the course and checks the actor may study it:
// admins and free courses always pass, everyone else needs a purchase.
func (uc *learningUseCase) accessibleCourse(ctx context.Context, actor entity.Actor, courseRef string) (*entity.Course, error) {
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || course.IsFree() {
		return course, nil
	}

	owned, err := uc.purchaseRepo.Exists(ctx, actor.UID, course.ID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, entity.ErrNotPurchased
	}
	return course, nil
}

func (uc *learningUseCase) GetProgress(ctx context.Context, actor entity.Actor, courseRef string) (*entity.Progress, error) {
	course, err := uc.accessibleCourse(ctx, actor, courseRef)
	if err != nil {
		return nil, err
	}
	return uc.progressRepo.Get(ctx, actor.UID, course.ID)
}

func (uc *learningUseCase) CompleteLesson(ctx context.Context, actor entity.Actor, courseRef, lessonID string) (*entity.Progress, error) {
	course, err := uc.accessibleCourse(ctx, actor, courseRef)
	if err != nil {
		return nil, err
	}
	if !course.HasLesson(lessonID) {
		return nil, entity.ErrLessonNotFound
	}

	total := len(course.Lessons)
	return uc.progressRepo.CompleteLesson(ctx, actor.UID, course.ID, lessonID, func(completed int) float64 {
		return CompletionPercent(completed, total)
	})
}

// CompletionPercent is completed/total as a percentage rounded to two
// decimals, 0 for a course without lessons and never above 100.
func CompletionPercent(completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return math.Round(float64(completed)*10000/float64(total)) / 100
}

func (uc *learningUseCase) ListQuizzes(ctx context.Context, actor entity.Actor, courseRef string) ([]entity.PublicQuiz, error) {
	course, err := uc.accessibleCourse(ctx, actor, courseRef)
	if err != nil {
		return nil, err
	}

	quizzes, err := uc.quizRepo.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	public := make([]entity.PublicQuiz, 0, len(quizzes))
	for _, q := range quizzes {
		public = append(public, q.Public())
	}
	return public, nil
}

func (uc *learningUseCase) SubmitQuiz(ctx context.Context, actor entity.Actor, courseRef, quizID string, answers []int) (*entity.QuizSubmission, error) {
	course, err := uc.accessibleCourse(ctx, actor, courseRef)
	if err != nil {
		return nil, err
	}

	quiz, err := uc.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CourseID != course.ID {
		return nil, entity.ErrQuizNotFound
	}

	submission, err := ScoreQuiz(quiz, answers)
	if err != nil {
		return nil, err
	}

	result, err := uc.progressRepo.RecordQuizAttempt(ctx, actor.UID, course.ID, quiz.ID, submission.Score, submission.Total, submission.Passed)
	if err != nil {
		return nil, err
	}
	submission.Attempts = result.Attempts
	return submission, nil
}

// ScoreQuiz counts answers equal to the keyed option. A submission passes when
// score*100/total reaches the pass mark.
func ScoreQuiz(quiz *entity.Quiz, answers []int) (*entity.QuizSubmission, error) {
	if len(answers) != len(quiz.Questions) {
		return nil, entity.ErrInvalidAnswers
	}

	passMark := quiz.PassMark
	if passMark <= 0 {
		passMark = entity.DefaultPassMark
	}

	score := 0
	for i, question := range quiz.Questions {
		if answers[i] == question.AnswerIndex {
			score++
		}
	}
	total := len(quiz.Questions)

	submission := &entity.QuizSubmission{
		QuizID:   quiz.ID,
		Score:    score,
		Total:    total,
		PassMark: passMark,
	}
	if total > 0 {
		submission.Percent = math.Round(float64(score)*10000/float64(total)) / 100
		submission.Passed = score*100 >= passMark*total
	}
	return submission, nil
}

func (uc *learningUseCase) CreateQuiz(ctx context.Context, courseRef string, quiz *entity.Quiz) (*entity.Quiz, error) {
	course, err := uc.courseRepo.FindByRef(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	for _, question := range quiz.Questions {
		if question.AnswerIndex < 0 || question.AnswerIndex >= len(question.Options) {
			return nil, entity.ErrInvalidAnswers
		}
	}

	quiz.CourseID = course.ID
	if quiz.PassMark <= 0 {
		quiz.PassMark = entity.DefaultPassMark
	}
	created, err := uc.quizRepo.Create(ctx, quiz)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Quiz %s created for course %s", created.ID, course.ID)
	return created, nil
}
