package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"priorelicit/internal/errors"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeInvalidConfiguration, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInsufficientData, errors.CodeDegenerateSample, errors.CodeNoValidFit:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": {"kind", "message"}}. Internal failures are
// logged and reported without their cause.
func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Kind: code, Message: message}})
}

// bindJSON decodes the request body, answering 400 on malformed input
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, errors.InvalidInput("malformed request body: "+err.Error()))
		return false
	}
	return true
}
