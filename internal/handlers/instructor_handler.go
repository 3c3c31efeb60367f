package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InstructorHandler serves result review for course instructors
type InstructorHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewInstructorHandler(resultService services.ResultService, logger utils.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// ListQuizAttempts lists all attempts of a quiz
// @Summary List quiz attempts
// @Tags instructor
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Param status query string false "in_progress or completed"
// @Param user_id query string false "Student ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=services.AttemptListResponse}
// @Router /instructor/quizzes/{quiz_id}/attempts [get]
func (h *InstructorHandler) ListQuizAttempts(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}
	instructorID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var query services.ListAttemptsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, codeBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	resp, err := h.resultService.ListQuizAttempts(c.Request.Context(), quizID, instructorID, role, &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", resp)
}

// ExportQuizResults downloads all attempts of a quiz as an xlsx workbook
// @Summary Export quiz results
// @Tags instructor
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param quiz_id path uint true "Quiz ID"
// @Router /instructor/quizzes/{quiz_id}/attempts/export [get]
func (h *InstructorHandler) ExportQuizResults(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}
	instructorID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	data, err := h.resultService.ExportQuizResults(c.Request.Context(), quizID, instructorID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-%d-results.xlsx"`, quizID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetAttemptDetails returns one attempt with every answer and its correctness
// @Summary Attempt details
// @Tags instructor
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse{data=services.InstructorAttemptDetails}
// @Router /instructor/attempts/{id} [get]
func (h *InstructorHandler) GetAttemptDetails(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	instructorID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	details, err := h.resultService.GetInstructorAttemptDetails(c.Request.Context(), attemptID, instructorID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt retrieved", details)
}

// ReviewAnswer grades an answer by hand
// @Summary Review answer
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param answer_id path uint true "Answer ID"
// @Param review body services.ReviewAnswerRequest true "Review"
// @Success 200 {object} SuccessResponse{data=services.AnswerView}
// @Router /instructor/attempts/{id}/answers/{answer_id}/review [put]
func (h *InstructorHandler) ReviewAnswer(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	answerID, ok := h.parseIDParam(c, "answer_id")
	if !ok {
		return
	}
	instructorID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.ReviewAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.resultService.ReviewAnswer(c.Request.Context(), attemptID, answerID, instructorID, role, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer reviewed", view, "answer_id", answerID)
}
