package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive numeric path parameter. It answers 400 and
// returns false when the value is missing or malformed.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, codeBadRequest, "Invalid "+param, err, "ID must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into req, answering 400 on malformed input
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, codeBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for bodies the client may leave out. Chunked
// requests carry no length, so an empty body shows up as io.EOF.
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, codeBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}
