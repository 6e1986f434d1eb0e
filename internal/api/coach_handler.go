package api

import (
	"net/http"

	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CoachHandler serves the coach-only roster views.
type CoachHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

func NewCoachHandler(userService service.UserService, logger *zap.Logger) *CoachHandler {
	return &CoachHandler{userService: userService, logger: logger}
}

// ListAthletes godoc
// @Summary List athletes
// @Description Returns every user with the User role.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Router /coach/users [get]
func (h *CoachHandler) ListAthletes(c *gin.Context) {
	users, err := h.userService.ListAthletes(c.Request.Context())
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}

// ListCoaches godoc
// @Summary List coaches
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Router /coach/coaches [get]
func (h *CoachHandler) ListCoaches(c *gin.Context) {
	users, err := h.userService.ListCoaches(c.Request.Context())
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}
