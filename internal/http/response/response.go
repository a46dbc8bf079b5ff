// Package response writes the JSON bodies shared by every goals endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the body of every non-2xx response: {"error": {"message", "code"}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RespondError aborts the chain with an error envelope. A nil err is reported
// with a generic message.
func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: "unknown error", Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any)       { c.JSON(http.StatusOK, payload) }
func RespondAccepted(c *gin.Context, payload any) { c.JSON(http.StatusAccepted, payload) }
