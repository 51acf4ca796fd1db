package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/utils"
)

// UserHandler handles user lookup endpoints
type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// GetMe returns the authenticated user's profile
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), nil, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser returns a user by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid id parameter"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListStudentsByClass returns the students enrolled in a class level
// @Summary List students in a class
// @Tags users
// @Produce json
// @Param class_level query string true "Class level"
// @Success 200 {object} SuccessResponse
// @Router /users/students [get]
func (h *UserHandler) ListStudentsByClass(c *gin.Context) {
	classLevel := c.Query("class_level")
	if !models.ValidClassLevel(classLevel) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid or missing class_level parameter",
		})
		return
	}

	students, err := h.userRepo.GetStudentsByClass(c.Request.Context(), nil, classLevel)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: students})
}
