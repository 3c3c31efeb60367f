package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	BaseHandler
	expirer services.AttemptExpirer
}

func NewAdminHandler(expirer services.AttemptExpirer, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		expirer:     expirer,
	}
}

// ExpireAttempts runs the expired attempt sweep once, outside its schedule
// @Summary Expire attempts
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /admin/attempts/expire [post]
func (h *AdminHandler) ExpireAttempts(c *gin.Context) {
	h.LogRequest(c, "Manual attempt sweep requested")

	closed, err := h.expirer.AutoSubmitExpired(c.Request.Context())
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, codeInternal, "Attempt sweep finished with errors", err,
			gin.H{"closed": closed})
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Expired attempts submitted", gin.H{"closed": closed})
}
