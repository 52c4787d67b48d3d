package entity

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrCourseNotFound     = errors.New("Course not found")
	ErrImageNotFound      = errors.New("Image not found")
	ErrUserNotFound       = errors.New("User not found")
	ErrPostNotFound       = errors.New("Post not found")
	ErrReplyNotFound      = errors.New("Reply not found")
	ErrReviewNotFound     = errors.New("Review not found")
	ErrQuizNotFound       = errors.New("Quiz not found")
	ErrLessonNotFound     = errors.New("Lesson not found")
	ErrPaymentNotFound    = errors.New("Payment not found")
	ErrInvalidID          = errors.New("Invalid ID")
	ErrInvalidImageID     = errors.New("Invalid image ID")
	ErrInvalidImageFormat = errors.New("Invalid image format. Expected data:image/<type>;base64,<data>")
	ErrImageTooLarge      = errors.New("Image too large. Maximum size is 5MB")
	ErrInvalidImageData   = errors.New("Invalid image data: payload is not valid base64")
	ErrNoImage            = errors.New("Course has no image")
	ErrInvalidEmailDomain = errors.New("Invalid email domain")
	ErrInvalidRole        = errors.New("Invalid role")
	ErrInvalidParent      = errors.New("Parent reply does not belong to this post")
	ErrInvalidAnswers     = errors.New("Answer count does not match question count")
	ErrInvalidAvatar      = errors.New("Avatar must be a PNG, JPEG or GIF image up to 2MB")
	ErrForbidden          = errors.New("Forbidden")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUserExists         = errors.New("User already exists")
	ErrCourseExists       = errors.New("Course with this course_id already exists")
	ErrAlreadyInCart      = errors.New("Course already in cart")
	ErrAlreadyPurchased   = errors.New("Course already purchased")
	ErrEmptyCart          = errors.New("Cart is empty")
	ErrNotPurchased       = errors.New("Course not purchased")
	ErrPaymentFailed      = errors.New("Payment was not successful")
	ErrPaymentGateway     = errors.New("Payment provider unavailable")
	ErrInvalidSignature   = errors.New("Invalid signature")
)
