package http

import (
	"errors"
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/services/api/internal/entity"

	"github.com/gin-gonic/gin"
)

type errorStatus struct {
	err    error
	status int
}

// Ordered; the first sentinel found in the chain decides the response.
var errorStatuses = []errorStatus{
	{entity.ErrInvalidImageID, http.StatusBadRequest},
	{entity.ErrInvalidImageFormat, http.StatusBadRequest},
	{entity.ErrImageTooLarge, http.StatusBadRequest},
	{entity.ErrInvalidImageData, http.StatusBadRequest},
	{entity.ErrNoImage, http.StatusBadRequest},
	{entity.ErrInvalidEmailDomain, http.StatusBadRequest},
	{entity.ErrInvalidRole, http.StatusBadRequest},
	{entity.ErrInvalidParent, http.StatusBadRequest},
	{entity.ErrInvalidAnswers, http.StatusBadRequest},
	{entity.ErrInvalidAvatar, http.StatusBadRequest},
	{entity.ErrEmptyCart, http.StatusBadRequest},
	{entity.ErrInvalidID, http.StatusBadRequest},

	{entity.ErrInvalidSignature, http.StatusUnauthorized},
	{entity.ErrPaymentFailed, http.StatusPaymentRequired},
	{entity.ErrForbidden, http.StatusForbidden},
	{entity.ErrNotPurchased, http.StatusForbidden},

	{entity.ErrCourseNotFound, http.StatusNotFound},
	{entity.ErrImageNotFound, http.StatusNotFound},
	{entity.ErrUserNotFound, http.StatusNotFound},
	{entity.ErrPostNotFound, http.StatusNotFound},
	{entity.ErrReplyNotFound, http.StatusNotFound},
	{entity.ErrReviewNotFound, http.StatusNotFound},
	{entity.ErrQuizNotFound, http.StatusNotFound},
	{entity.ErrLessonNotFound, http.StatusNotFound},
	{entity.ErrPaymentNotFound, http.StatusNotFound},
	{entity.ErrNotFound, http.StatusNotFound},

	{entity.ErrUserExists, http.StatusConflict},
	{entity.ErrCourseExists, http.StatusConflict},
	{entity.ErrAlreadyInCart, http.StatusConflict},
	{entity.ErrAlreadyPurchased, http.StatusConflict},
	{entity.ErrAlreadyExists, http.StatusConflict},

	{entity.ErrPaymentGateway, http.StatusBadGateway},
}

// respondError writes the status and message of a known domain error. Anything
// else is logged and answered with fallback as a 500.
func respondError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	for _, known := range errorStatuses {
		if errors.Is(err, known.err) {
			c.JSON(known.status, gin.H{"error": known.err.Error()})
			return
		}
	}
	log.Error("%s: %v", fallback, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func actorFrom(c *gin.Context) entity.Actor {
	return entity.Actor{
		UID:   c.GetString(middleware.ContextUserID),
		Email: c.GetString(middleware.ContextUserEmail),
		Name:  c.GetString(middleware.ContextUserName),
		Role:  entity.UserRole(c.GetString(middleware.ContextUserRole)),
	}
}
