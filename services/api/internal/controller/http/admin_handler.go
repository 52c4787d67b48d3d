package http

import (
	"net/http"

	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUseCase usecase.AdminUseCase
	logger       *logger.Logger
}

func NewAdminHandler(adminUseCase usecase.AdminUseCase, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{adminUseCase: adminUseCase, logger: logger}
}

// Stats godoc
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.AdminStats
// @Failure      403  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminUseCase.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
