package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// sendError writes err as an ErrorResponse. Server-side failures are logged, client errors only at debug.
func sendError(c *gin.Context, log logger.Logger, operation string, err error) {
	status, body := errors.ToErrorResponse(err)
	if errors.ShouldLogError(err) {
		log.Error(c.Request.Context(), "Request failed", err, logger.String("operation", operation))
	} else {
		log.Debug(c.Request.Context(), "Request rejected",
			logger.String("operation", operation),
			logger.String("error_code", body.Error),
			logger.Err(err))
	}
	c.AbortWithStatusJSON(status, body)
}

func sendSuccess(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// bindJSON decodes the request body. Malformed JSON is reported as invalid_request.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.ErrInvalidRequest("malformed request body").WithCause(err)
	}
	return nil
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted. An absent or empty
// body, chunked or not, leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.ErrInvalidRequest("malformed request body").WithCause(err)
	}
	return nil
}
