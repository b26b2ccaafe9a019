package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ai-article-generator/pkg/logger"
)

const (
	// SessionIDHeader 非浏览器客户端可用该头携带会话 ID
	SessionIDHeader = "X-Session-ID"

	sessionIDKey      = "session_id"
	defaultCookieName = "article_session"
)

// SessionConfig 会话 Cookie 配置
type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Session 为每个访问者分配匿名会话 ID，优先读取请求头，其次读取 Cookie
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	maxAge := int(cfg.TTL.Seconds())

	return func(c *gin.Context) {
		id := c.GetHeader(SessionIDHeader)
		if !validSessionID(id) {
			id, _ = c.Cookie(cfg.CookieName)
		}
		if !validSessionID(id) {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, maxAge, "/", "", cfg.Secure, true)
		c.Header(SessionIDHeader, id)

		c.Set(sessionIDKey, id)
		ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID 读取当前会话 ID
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
