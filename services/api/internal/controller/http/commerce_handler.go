package http

import (
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/middleware"
	"cognition-berries/pkg/paystack"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

// CommerceHandler serves the cart, checkout and purchased-course routes.
type CommerceHandler struct {
	cartUseCase    usecase.CartUseCase
	paymentUseCase usecase.PaymentUseCase
	logger         *logger.Logger
}

func NewCommerceHandler(cartUseCase usecase.CartUseCase, paymentUseCase usecase.PaymentUseCase, logger *logger.Logger) *CommerceHandler {
	return &CommerceHandler{
		cartUseCase:    cartUseCase,
		paymentUseCase: paymentUseCase,
		logger:         logger,
	}
}

type AddToCartRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

// GetCart godoc
// @Summary      Get the caller's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Cart
// @Router       /cart [get]
func (h *CommerceHandler) GetCart(c *gin.Context) {
	cart, err := h.cartUseCase.GetCart(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddToCart godoc
// @Summary      Add a course to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddToCartRequest true "Course"
// @Success      200  {object}  entity.Cart
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /cart [post]
func (h *CommerceHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	cart, err := h.cartUseCase.AddToCart(c.Request.Context(), c.GetString(middleware.ContextUserID), req.CourseID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add course to cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveFromCart godoc
// @Summary      Remove a course from the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        courseId  path  string  true  "Course ID"
// @Success      200  {object}  entity.Cart
// @Router       /cart/{courseId} [delete]
func (h *CommerceHandler) RemoveFromCart(c *gin.Context) {
	cart, err := h.cartUseCase.RemoveFromCart(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("courseId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove course from cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart godoc
// @Summary      Empty the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /cart [delete]
func (h *CommerceHandler) ClearCart(c *gin.Context) {
	if err := h.cartUseCase.ClearCart(c.Request.Context(), c.GetString(middleware.ContextUserID)); err != nil {
		respondError(c, h.logger, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// InitializePayment godoc
// @Summary      Start a Paystack checkout for the cart
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.CheckoutSession
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /payments/initialize [post]
func (h *CommerceHandler) InitializePayment(c *gin.Context) {
	session, err := h.paymentUseCase.Initialize(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to initialize payment")
		return
	}
	c.JSON(http.StatusOK, session)
}

// VerifyPayment godoc
// @Summary      Verify a payment and unlock its courses
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        reference  path  string  true  "Payment reference"
// @Success      200  {object}  entity.Payment
// @Failure      402  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /payments/verify/{reference} [get]
func (h *CommerceHandler) VerifyPayment(c *gin.Context) {
	payment, err := h.paymentUseCase.Verify(c.Request.Context(), actorFrom(c), c.Param("reference"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to verify payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Webhook godoc
// @Summary      Paystack webhook
// @Tags         payments
// @Accept       json
// @Param        x-paystack-signature  header  string  true  "HMAC-SHA512 of the body"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /payments/webhook [post]
func (h *CommerceHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.paymentUseCase.HandleWebhook(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader)); err != nil {
		respondError(c, h.logger, err, "Failed to process webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MyCourses godoc
// @Summary      Courses the caller has purchased
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Course
// @Router       /me/courses [get]
func (h *CommerceHandler) MyCourses(c *gin.Context) {
	courses, err := h.paymentUseCase.MyCourses(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch purchased courses")
		return
	}
	c.JSON(http.StatusOK, courses)
}
