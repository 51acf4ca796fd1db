package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/services"
	"github.com/schoolpulse/homework-service/internal/utils"
	"github.com/schoolpulse/homework-service/internal/validator"
)

// HomeworkHandler handles homework question endpoints
type HomeworkHandler struct {
	BaseHandler
	homeworkService services.HomeworkService
	validator       *validator.Validator
}

func NewHomeworkHandler(homeworkService services.HomeworkService, v *validator.Validator, logger utils.Logger) *HomeworkHandler {
	return &HomeworkHandler{
		BaseHandler:     NewBaseHandler(logger),
		homeworkService: homeworkService,
		validator:       v,
	}
}

// CreateHomework creates a new homework question
// @Summary Create homework question
// @Tags homework
// @Accept json
// @Produce json
// @Param request body validator.CreateHomeworkRequest true "Homework question"
// @Success 201 {object} services.HomeworkResponse
// @Router /homework [post]
func (h *HomeworkHandler) CreateHomework(c *gin.Context) {
	h.LogRequest(c, "Creating homework question")

	var req services.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.homeworkService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetHomework returns a single homework question
// @Summary Get homework question by ID
// @Tags homework
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} services.HomeworkResponse
// @Router /homework/{id} [get]
func (h *HomeworkHandler) GetHomework(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.homeworkService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListHomeworkByClass returns every question assigned to a class level
// @Summary List homework for a class
// @Tags homework
// @Produce json
// @Param class_level query string true "Class level"
// @Success 200 {object} SuccessResponse
// @Router /homework [get]
func (h *HomeworkHandler) ListHomeworkByClass(c *gin.Context) {
	classLevel := c.Query("class_level")
	if !models.ValidClassLevel(classLevel) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid or missing class_level parameter",
		})
		return
	}

	resp, err := h.homeworkService.ListForClass(c.Request.Context(), classLevel)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

// ListMyHomework returns the calling student's pending homework
// @Summary List pending homework for the current student
// @Tags homework
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /homework/me [get]
func (h *HomeworkHandler) ListMyHomework(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.homeworkService.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

// TodayUploads returns the questions the caller uploaded today
// @Summary List today's uploads for the current teacher
// @Tags homework
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /homework/today [get]
func (h *HomeworkHandler) TodayUploads(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.homeworkService.TodayUploads(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

// UploadSelection narrows today's uploads to one class and subject
// @Summary Review today's uploads for a class and subject
// @Tags homework
// @Accept json
// @Produce json
// @Param request body validator.UploadSelectionRequest true "Selection"
// @Success 200 {object} SuccessResponse
// @Router /homework/selection [post]
func (h *HomeworkHandler) UploadSelection(c *gin.Context) {
	h.LogRequest(c, "Reviewing upload selection")

	var req services.UploadSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.homeworkService.UploadSelection(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}
