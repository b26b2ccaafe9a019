// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ai-article-generator/internal/interfaces/http/dto"
	apperrors "ai-article-generator/pkg/errors"
	"ai-article-generator/pkg/logger"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", rec),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				// 响应已开始写出（如 SSE）时只能中断连接
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.Abort()
				dto.ErrorWithDetail(c, http.StatusInternalServerError, "internal server error", &dto.ErrorDetail{
					ErrorCode: string(apperrors.CodeInternalError),
				})
			}
		}()

		c.Next()
	}
}
