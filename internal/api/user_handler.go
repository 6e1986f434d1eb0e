package api

import (
	"net/http"

	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves user profiles.
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Me godoc
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := getUserFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ListUsers godoc
// @Summary List all users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}

// CreateUser godoc
// @Summary Create an athlete profile
// @Description Coaches add athletes; the account has no password until registered.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User details"
// @Success 201 {object} gin.H "id of the new user"
// @Failure 400 {object} gin.H "Invalid input or username already exists"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.userService.CreateUser(c.Request.Context(), service.CreateUserCommand{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
}

// GetUser godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateUser godoc
// @Summary Update a user's profile
// @Description Coaches may update anyone; other users only themselves.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "Profile fields"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	if !canActFor(c, id) {
		abortWithError(c, http.StatusForbidden, "Access denied: cannot modify another user")
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.userService.UpdateUser(c.Request.Context(), service.UpdateUserCommand{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// DeleteUser godoc
// @Summary Delete a user and their workouts
// @Tags Users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
