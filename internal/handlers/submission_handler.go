package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolpulse/homework-service/internal/services"
	"github.com/schoolpulse/homework-service/internal/utils"
	"github.com/schoolpulse/homework-service/internal/validator"
)

// SubmissionHandler handles answer submission endpoints
type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewSubmissionHandler(submissionService services.SubmissionService, v *validator.Validator, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         v,
	}
}

// SubmitAnswer records a student's answer to a homework question
// @Summary Submit an answer
// @Tags submissions
// @Accept json
// @Produce json
// @Param request body validator.SubmitAnswerRequest true "Answer"
// @Success 201 {object} services.SubmitAnswerResponse
// @Router /submissions [post]
func (h *SubmissionHandler) SubmitAnswer(c *gin.Context) {
	h.LogRequest(c, "Submitting answer")

	var req services.SubmitAnswerRequest
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

	resp, err := h.submissionService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetLatestAttempt returns the student's most recent attempt for a question
// @Summary Get latest attempt for a question
// @Tags submissions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} services.AttemptResponse
// @Router /submissions/questions/{question_id}/latest [get]
func (h *SubmissionHandler) GetLatestAttempt(c *gin.Context) {
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.submissionService.GetLatestAttempt(c.Request.Context(), userID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPreviousAttempt returns the student's pending attempt for a question
// @Summary Get pending attempt for resubmission
// @Tags submissions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} services.AttemptResponse
// @Router /submissions/questions/{question_id}/previous [get]
func (h *SubmissionHandler) GetPreviousAttempt(c *gin.Context) {
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.submissionService.PreviousAttempt(c.Request.Context(), userID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListGradedAttempts returns the student's graded attempts, newest first
// @Summary List graded attempts for the current student
// @Tags submissions
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /submissions/graded [get]
func (h *SubmissionHandler) ListGradedAttempts(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.submissionService.ListGraded(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}
