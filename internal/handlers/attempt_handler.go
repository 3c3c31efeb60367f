package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AttemptHandler serves the student side of the attempt lifecycle
type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	resultService  services.ResultService
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	resultService services.ResultService,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		resultService:  resultService,
	}
}

// StartAttempt starts a new attempt of a quiz
// @Summary Start attempt
// @Tags attempts
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Success 201 {object} SuccessResponse{data=services.StartAttemptResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting attempt", "quiz_id", quizID)

	resp, err := h.attemptService.StartAttempt(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Attempt started", resp, "attempt_id", resp.AttemptID)
}

// ListMyAttempts lists the caller's attempts of a quiz
// @Summary List my attempts
// @Tags attempts
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse{data=[]services.AttemptSummary}
// @Router /quizzes/{quiz_id}/attempts [get]
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListMyAttempts(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", attempts)
}

// GetQuestionsForTaking returns the questions of the caller's active attempt
// @Summary Questions for taking
// @Tags attempts
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse{data=services.QuestionsForTakingResponse}
// @Router /quizzes/{quiz_id}/questions [get]
func (h *AttemptHandler) GetQuestionsForTaking(c *gin.Context) {
	quizID, ok := h.parseIDParam(c, "quiz_id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.GetQuestionsForTaking(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questions retrieved", resp)
}

// SubmitAttempt grades and completes an attempt
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param submission body services.SubmitAttemptRequest false "Final answers"
// @Success 200 {object} SuccessResponse{data=services.SubmitAttemptResponse}
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	// An empty body submits whatever was saved so far
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", attemptID, "answers", len(req.Answers))

	resp, err := h.attemptService.SubmitAttempt(c.Request.Context(), attemptID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt submitted", resp, "score", resp.Score)
}

// SaveAnswer stores a draft answer without completing the attempt
// @Summary Save answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param answer body services.AnswerInput true "Answer"
// @Success 200 {object} SuccessResponse{data=services.SaveAnswerResponse}
// @Router /attempts/{id}/answers [put]
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.AnswerInput
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.attemptService.SaveAnswer(c.Request.Context(), attemptID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer saved", resp)
}

// FlagQuestion marks or unmarks a question for later review
// @Summary Flag question
// @Tags attempts
// @Accept json
// @Param id path uint true "Attempt ID"
// @Param question_id path uint true "Question ID"
// @Param flag body services.FlagRequest true "Flag"
// @Success 200 {object} SuccessResponse
// @Router /attempts/{id}/questions/{question_id}/flag [put]
func (h *AttemptHandler) FlagQuestion(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := h.parseIDParam(c, "question_id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.FlagRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Flagged == nil {
		h.RespondWithError(c, http.StatusBadRequest, codeBadRequest, "Validation failed", nil, "flagged is required")
		return
	}

	if err := h.attemptService.FlagForReview(c.Request.Context(), attemptID, userID, questionID, *req.Flagged); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question flag updated", gin.H{"question_id": questionID, "flagged": *req.Flagged})
}

// PauseAttempt records a pause request. The attempt clock keeps running.
// @Summary Pause attempt
// @Tags attempts
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse
// @Router /attempts/{id}/pause [post]
func (h *AttemptHandler) PauseAttempt(c *gin.Context) {
	h.touch(c, "Attempt paused", h.attemptService.PauseAttempt)
}

// ResumeAttempt records a resume request
// @Summary Resume attempt
// @Tags attempts
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse
// @Router /attempts/{id}/resume [post]
func (h *AttemptHandler) ResumeAttempt(c *gin.Context) {
	h.touch(c, "Attempt resumed", h.attemptService.ResumeAttempt)
}

// GetTimeRemaining reports the time left on an attempt
// @Summary Time remaining
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse{data=services.TimeRemainingResponse}
// @Router /attempts/{id}/time-remaining [get]
func (h *AttemptHandler) GetTimeRemaining(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.GetTimeRemaining(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Time remaining retrieved", resp)
}

// GetResult returns the caller's result for an attempt
// @Summary Attempt result
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse{data=services.StudentResult}
// @Router /attempts/{id}/result [get]
func (h *AttemptHandler) GetResult(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.resultService.GetStudentResult(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Result retrieved", result)
}

func (h *AttemptHandler) touch(c *gin.Context, message string, action func(ctx context.Context, attemptID uint, userID string) error) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := action(c.Request.Context(), attemptID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, message, gin.H{"attempt_id": attemptID})
}
