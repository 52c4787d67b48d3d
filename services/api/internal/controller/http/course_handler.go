package http

import (
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courseUseCase usecase.CourseUseCase
	imageUseCase  usecase.ImageUseCase
	logger        *logger.Logger
}

func NewCourseHandler(courseUseCase usecase.CourseUseCase, imageUseCase usecase.ImageUseCase, logger *logger.Logger) *CourseHandler {
	return &CourseHandler{
		courseUseCase: courseUseCase,
		imageUseCase:  imageUseCase,
		logger:        logger,
	}
}

type LessonRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	Order    int    `json:"order" binding:"gte=0"`
}

type CreateCourseRequest struct {
	CourseID    string                 `json:"course_id" binding:"omitempty,max=100"`
	Title       string                 `json:"title" binding:"required,max=200"`
	Description string                 `json:"description"`
	Price       *float64               `json:"price" binding:"required,gte=0"`
	Metadata    map[string]interface{} `json:"metadata"`
	Lessons     []LessonRequest        `json:"lessons" binding:"omitempty,dive"`
}

type UpdateCourseRequest struct {
	CourseID    *string                `json:"course_id" binding:"omitempty,max=100"`
	Title       *string                `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string                `json:"description"`
	Price       *float64               `json:"price" binding:"omitempty,gte=0"`
	Metadata    map[string]interface{} `json:"metadata"`
	Lessons     []LessonRequest        `json:"lessons" binding:"omitempty,dive"`
}

type UploadImageRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename" binding:"max=255"`
}

type UploadImageResponse struct {
	Message  string         `json:"message"`
	ImageID  string         `json:"imageId"`
	ImageURL string         `json:"imageUrl"`
	Course   *entity.Course `json:"course"`
}

func toLessons(in []LessonRequest) []entity.Lesson {
	if in == nil {
		return nil
	}
	lessons := make([]entity.Lesson, 0, len(in))
	for _, l := range in {
		lessons = append(lessons, entity.Lesson{LessonID: l.LessonID, Title: l.Title, Content: l.Content, Order: l.Order})
	}
	return lessons
}

// ListCourses godoc
// @Summary      List courses
// @Description  All courses with their linked image embedded as imageData
// @Tags         courses
// @Produce      json
// @Success      200  {array}   entity.Course
// @Failure      500  {object}  map[string]string
// @Router       /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseUseCase.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch courses")
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse godoc
// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Param        id   path      string  true  "course_id or _id"
// @Success      200  {object}  entity.Course
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseUseCase.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch course")
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse godoc
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCourseRequest true "Course"
// @Success      201  {object}  entity.Course
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	in := entity.CourseInput{
		Title:       &req.Title,
		Description: &req.Description,
		Price:       req.Price,
		Metadata:    req.Metadata,
		Lessons:     toLessons(req.Lessons),
	}
	if req.CourseID != "" {
		in.CourseID = &req.CourseID
	}
	if in.Lessons == nil {
		in.Lessons = []entity.Lesson{}
	}

	course, err := h.courseUseCase.CreateCourse(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create course")
		return
	}
	c.JSON(http.StatusCreated, course)
}

// UpdateCourse godoc
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string               true  "course_id or _id"
// @Param        request body  UpdateCourseRequest  true  "Fields to change"
// @Success      200  {object}  entity.Course
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	course, err := h.courseUseCase.UpdateCourse(c.Request.Context(), c.Param("id"), entity.CourseInput{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Metadata:    req.Metadata,
		Lessons:     toLessons(req.Lessons),
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to update course")
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourse godoc
// @Summary      Delete a course
// @Tags         courses
// @Security     BearerAuth
// @Param        id   path      string  true  "course_id or _id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseUseCase.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete course")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// UploadCourseImage godoc
// @Summary      Upload a course image
// @Description  Stores a base64 data URL as an image document and links it to the course. The previous image is garbage collected.
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string              true  "course_id or _id"
// @Param        request body  UploadImageRequest  true  "data:image/<type>;base64,<data>"
// @Success      200  {object}  UploadImageResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /courses/{id}/image [post]
func (h *CourseHandler) UploadCourseImage(c *gin.Context) {
	var req UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	result, err := h.imageUseCase.UploadCourseImage(c.Request.Context(), entity.ImageUpload{
		CourseRef:  c.Param("id"),
		DataURL:    req.Image,
		Filename:   req.Filename,
		UploadedBy: c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to upload image")
		return
	}

	c.JSON(http.StatusOK, UploadImageResponse{
		Message:  "Image uploaded successfully",
		ImageID:  result.ImageID,
		ImageURL: result.ImageURL,
		Course:   result.Course,
	})
}

// DeleteCourseImage godoc
// @Summary      Remove a course image
// @Tags         images
// @Security     BearerAuth
// @Param        id   path      string  true  "course_id or _id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /courses/{id}/image [delete]
func (h *CourseHandler) DeleteCourseImage(c *gin.Context) {
	if err := h.imageUseCase.DeleteCourseImage(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to delete image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

// GetImage godoc
// @Summary      Fetch an image
// @Description  Returns the stored image with data as a complete data URL
// @Tags         images
// @Produce      json
// @Param        imageId  path      string  true  "Image ObjectID"
// @Success      200  {object}  entity.Image
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/images/{imageId} [get]
func (h *CourseHandler) GetImage(c *gin.Context) {
	image, err := h.imageUseCase.GetImage(c.Request.Context(), c.Param("imageId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch image")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, image)
}
