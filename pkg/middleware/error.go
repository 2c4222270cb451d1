package middleware

import (
	"errors"

	"autotasking/pkg/errutil"
	"autotasking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error pushed with c.Error once the chain is done.
// Anything that is not a BaseError becomes a 500.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var be errutil.BaseError
		if !errors.As(last.Err, &be) {
			be = errutil.BaseError{Code: errutil.StatusInternal, Message: "internal server error", Err: last.Err}
		}

		status := be.Code.HTTPStatus()
		if status >= 500 {
			logger.WithTrace(c.Request.Context()).Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", status),
				zap.Error(be),
			)
		}

		c.JSON(status, be.JSON())
	}
}
