package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"elibrary/internal/apperror"
	"elibrary/internal/microservices/http-api/dto"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 envelope and logs the stack trace.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic_recovered",
					slog.String("error", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("request_id", c.GetString(ContextRequestID)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail(apperror.StorageMessage))
			}
		}()
		c.Next()
	}
}
