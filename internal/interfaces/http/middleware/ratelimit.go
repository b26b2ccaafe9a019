package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/interfaces/http/dto"
	apperrors "ai-article-generator/pkg/errors"
	"ai-article-generator/pkg/logger"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// Requests 窗口内允许的请求数
	Requests int
	// Window 滑动窗口长度
	Window time.Duration
	// KeyPrefix 限流 Key 前缀
	KeyPrefix string
}

// RateLimit 按会话限流，须挂在 Session 中间件之后
func RateLimit(cfg RateLimitConfig, limiter repository.RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.Requests <= 0 {
		cfg.Requests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit"
	}

	return func(c *gin.Context) {
		sessionID := GetSessionID(c)
		if sessionID == "" {
			sessionID = "anonymous"
		}
		key := cfg.KeyPrefix + ":" + sessionID + ":" + c.FullPath()

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter(cfg.Window))
			c.Abort()
			dto.ErrorWithDetail(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试", &dto.ErrorDetail{
				ErrorCode: string(apperrors.CodeTooManyRequests),
			})
			return
		}

		c.Next()
	}
}

func retryAfter(window time.Duration) string {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
