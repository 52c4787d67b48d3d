package http

import (
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type LearningHandler struct {
	learningUseCase usecase.LearningUseCase
	logger          *logger.Logger
}

func NewLearningHandler(learningUseCase usecase.LearningUseCase, logger *logger.Logger) *LearningHandler {
	return &LearningHandler{
		learningUseCase: learningUseCase,
		logger:          logger,
	}
}

type QuestionRequest struct {
	Prompt      string   `json:"prompt" binding:"required"`
	Options     []string `json:"options" binding:"required,min=2,dive,required"`
	AnswerIndex int      `json:"answerIndex" binding:"gte=0"`
}

type CreateQuizRequest struct {
	Title     string            `json:"title" binding:"required,max=200"`
	PassMark  int               `json:"passMark" binding:"omitempty,min=1,max=100"`
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

type SubmitQuizRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// GetProgress godoc
// @Summary      The caller's progress in a course
// @Tags         learning
// @Produce      json
// @Security     BearerAuth
// @Param        courseId  path  string  true  "Course ID"
// @Success      200  {object}  entity.Progress
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /progress/{courseId} [get]
func (h *LearningHandler) GetProgress(c *gin.Context) {
	progress, err := h.learningUseCase.GetProgress(c.Request.Context(), actorFrom(c), c.Param("courseId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// CompleteLesson godoc
// @Summary      Mark a lesson complete
// @Tags         learning
// @Produce      json
// @Security     BearerAuth
// @Param        courseId  path  string  true  "Course ID"
// @Param        lessonId  path  string  true  "Lesson ID"
// @Success      200  {object}  entity.Progress
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /progress/{courseId}/lessons/{lessonId} [post]
func (h *LearningHandler) CompleteLesson(c *gin.Context) {
	progress, err := h.learningUseCase.CompleteLesson(c.Request.Context(), actorFrom(c), c.Param("courseId"), c.Param("lessonId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to update progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListQuizzes godoc
// @Summary      Quizzes of a course, without answers
// @Tags         learning
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Course ID"
// @Success      200  {array}   entity.PublicQuiz
// @Failure      403  {object}  map[string]string
// @Router       /courses/{id}/quizzes [get]
func (h *LearningHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.learningUseCase.ListQuizzes(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch quizzes")
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// SubmitQuiz godoc
// @Summary      Submit quiz answers
// @Tags         learning
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string  true  "Course ID"
// @Param        quizId  path  string  true  "Quiz ID"
// @Param        request body SubmitQuizRequest true "Answers"
// @Success      200  {object}  entity.QuizSubmission
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id}/quizzes/{quizId}/submit [post]
func (h *LearningHandler) SubmitQuiz(c *gin.Context) {
	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	result, err := h.learningUseCase.SubmitQuiz(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("quizId"), req.Answers)
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit quiz")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateQuiz godoc
// @Summary      Create a quiz (admin)
// @Tags         learning
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Course ID"
// @Param        request body CreateQuizRequest true "Quiz"
// @Success      201  {object}  entity.Quiz
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id}/quizzes [post]
func (h *LearningHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	quiz := &entity.Quiz{
		Title:     req.Title,
		PassMark:  req.PassMark,
		Questions: make([]entity.Question, len(req.Questions)),
	}
	for i, q := range req.Questions {
		quiz.Questions[i] = entity.Question{Prompt: q.Prompt, Options: q.Options, AnswerIndex: q.AnswerIndex}
	}

	created, err := h.learningUseCase.CreateQuiz(c.Request.Context(), c.Param("id"), quiz)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create quiz")
		return
	}
	c.JSON(http.StatusCreated, created)
}
