package http

import (
	"net/http"

	"cognition-berries/pkg/imaging"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *logger.Logger
}

func NewUserHandler(userUseCase usecase.UserUseCase, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

type RegisterRequest struct {
	UID   string `json:"uid" binding:"omitempty,max=128"`
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,max=100"`
}

type UpdateMeRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Role *string `json:"role" binding:"omitempty,oneof=student admin"`
}

// Register godoc
// @Summary      Register a user
// @Description  Creates a student record. The email domain must accept mail.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "User"
// @Success      201  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	user, err := h.userUseCase.Register(c.Request.Context(), req.UID, req.Email, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Me godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.User
// @Failure      404  {object}  map[string]string
// @Router       /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userUseCase.GetMe(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateMeRequest true "Profile"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Router       /me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	user, err := h.userUseCase.UpdateMe(c.Request.Context(), c.GetString(middleware.ContextUserID), req.Name)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar godoc
// @Summary      Upload profile picture
// @Description  PNG, JPEG or GIF up to 2MB, stored as a 256x256 JPEG
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Picture"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Router       /api/upload-profile [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required"})
		return
	}
	if file.Size > imaging.MaxAvatarBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": entity.ErrInvalidAvatar.Error()})
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, h.logger, err, "Failed to read avatar")
		return
	}
	defer src.Close()

	user, err := h.userUseCase.UploadAvatar(c.Request.Context(), c.GetString(middleware.ContextUserID), src)
	if err != nil {
		respondError(c, h.logger, err, "Failed to upload avatar")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.User
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userUseCase.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get a user by email
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  entity.User
// @Failure      404    {object}  map[string]string
// @Router       /users/{email} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userUseCase.GetUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary      Update a user's name or role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email    path  string             true  "Email"
// @Param        request  body  UpdateUserRequest  true  "Fields"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{email} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	user, err := h.userUseCase.UpdateUser(c.Request.Context(), c.Param("email"), req.Name, req.Role)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         admin
// @Security     BearerAuth
// @Param        email  path  string  true  "Email"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{email} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userUseCase.DeleteUser(c.Request.Context(), c.Param("email")); err != nil {
		respondError(c, h.logger, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
