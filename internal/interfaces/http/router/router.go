// Package router 提供 HTTP 路由配置
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/interfaces/http/handler"
	"ai-article-generator/internal/interfaces/http/middleware"
	"ai-article-generator/internal/interfaces/http/view"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health  *handler.HealthHandler
	Session *handler.SessionHandler
	Article *handler.ArticleHandler
	Page    *handler.PageHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  repository.RateLimiter
}

// New 创建新的路由器，limiter 为空时不限流
func New(cfg *config.Config, handlers Handlers, limiter repository.RateLimiter) (*Router, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	tpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("load page templates: %w", err)
	}
	engine.SetHTMLTemplate(tpl)

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r, nil
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, "/health", "/ready", "/live", r.metricsPath()))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

func (r *Router) metricsPath() string {
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		return p
	}
	return "/metrics"
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	sessions := middleware.Session(middleware.SessionConfig{
		CookieName: r.cfg.Session.CookieName,
		Secure:     r.cfg.Session.CookieSecure,
		TTL:        r.cfg.Session.TTL,
	})
	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:   r.cfg.Security.RateLimit.Enabled,
		Requests:  r.cfg.Security.RateLimit.Requests,
		Window:    r.cfg.Security.RateLimit.Window,
		KeyPrefix: r.cfg.Session.KeyPrefix + ":ratelimit",
	}, r.limiter)

	// 页面
	page := r.engine.Group("/", sessions)
	{
		page.GET("/", h.Page.Index)
		page.POST("/settings/provider", h.Page.SelectProvider)
		page.POST("/settings/model", h.Page.SelectModel)
		page.POST("/settings/api", h.Page.SaveAPISettings)
		page.POST("/generate", rateLimit, h.Page.Generate)
		page.GET("/export", h.Page.Export)
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1", sessions)
	{
		v1.GET("/providers", h.Session.ListProviders)

		session := v1.Group("/session")
		{
			session.GET("", h.Session.GetSession)
			session.PUT("/provider", h.Session.SelectProvider)
			session.PUT("/model", h.Session.SelectModel)
			session.PUT("/api", h.Session.SaveAPISettings)
			session.POST("/probe", h.Session.Probe)
		}

		articles := v1.Group("/articles")
		{
			articles.POST("", rateLimit, h.Article.Generate)
			articles.POST("/stream", rateLimit, h.Article.Stream)
			articles.GET("/last", h.Article.LastArticle)
			articles.GET("/last/export", h.Article.Export)
		}
	}
}
