// Package handlers implements the gin handlers of the screening API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError aborts c with the status mapped from err's code.  Server-side
// failures are masked.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ae *errors.AppError
	if !stderrors.As(err, &ae) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: "request body exceeds limit",
			})
			return
		}
		ae = errors.Internal("internal server error")
	}

	status := errors.HTTPStatusForCode(ae.Code)
	resp := ErrorResponse{Code: ae.Code.String(), Message: ae.Message, Detail: ae.Detail}
	if status >= http.StatusInternalServerError {
		resp.Message = errors.DefaultMessageForCode(ae.Code)
		resp.Detail = ""
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body into v.  An empty body leaves v as is.
func bindJSON(c *gin.Context, v interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		return errors.Wrap(err, errors.ErrCodeBadRequest, "malformed request body").WithDetail(err.Error())
	}
	return nil
}

//Personal.AI order the ending
