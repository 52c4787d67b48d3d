package http

import (
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewUseCase usecase.ReviewUseCase
	logger        *logger.Logger
}

func NewReviewHandler(reviewUseCase usecase.ReviewUseCase, logger *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
		logger:        logger,
	}
}

type SubmitReviewRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"max=2000"`
}

// ListReviews godoc
// @Summary      List reviews, newest first
// @Tags         reviews
// @Produce      json
// @Param        courseId  query  string  false  "Course ID"
// @Success      200  {array}   entity.Review
// @Failure      404  {object}  map[string]string
// @Router       /reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewUseCase.ListReviews(c.Request.Context(), c.Query("courseId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// SubmitReview godoc
// @Summary      Create or replace the caller's review of a course
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubmitReviewRequest true "Review"
// @Success      200  {object}  entity.Review
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reviews [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	review, err := h.reviewUseCase.SubmitReview(c.Request.Context(), actorFrom(c), req.CourseID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, h.logger, err, "Failed to save review")
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview godoc
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.reviewUseCase.DeleteReview(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
