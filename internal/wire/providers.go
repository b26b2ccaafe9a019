// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"time"

	"ai-article-generator/internal/application/article"
	sessionapp "ai-article-generator/internal/application/session"
	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/provider"
	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/infrastructure/llm"
	"ai-article-generator/internal/infrastructure/persistence/memory"
	"ai-article-generator/internal/infrastructure/persistence/redis"
	"ai-article-generator/internal/interfaces/http/handler"
	"ai-article-generator/internal/interfaces/http/router"
	"ai-article-generator/internal/workflow/port"
	workflowprompt "ai-article-generator/internal/workflow/prompt"
	"ai-article-generator/pkg/logger"
)

const sweepInterval = time.Minute

// SessionBackend 会话存储与限流器，二者使用同一后端
type SessionBackend struct {
	Name    string
	Store   repository.SessionRepository
	Limiter repository.RateLimiter
}

// ProvideSessionBackend 按 session.store 选择 memory 或 redis
func ProvideSessionBackend(ctx context.Context, cfg *config.Config) (*SessionBackend, func(), error) {
	if cfg.Session.Store == "redis" {
		client, err := redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			return nil, nil, err
		}
		backend := &SessionBackend{
			Name:    "redis",
			Store:   redis.NewSessionStore(client, cfg.Session.KeyPrefix, cfg.Session.TTL),
			Limiter: redis.NewRateLimiter(client),
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn(context.Background(), "close redis client failed", "error", err.Error())
			}
		}
		return backend, cleanup, nil
	}

	store := memory.NewSessionStore(cfg.Session.TTL)
	sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go store.RunSweeper(sweepCtx, sweepInterval)

	limiter := memory.NewRateLimiter()
	go limiter.RunSweeper(sweepCtx, sweepInterval)

	backend := &SessionBackend{
		Name:    "memory",
		Store:   store,
		Limiter: limiter,
	}
	return backend, cancel, nil
}

// ProvideSessionStore 提供会话存储
func ProvideSessionStore(b *SessionBackend) repository.SessionRepository {
	return b.Store
}

// ProvideRateLimiter 提供限流器
func ProvideRateLimiter(b *SessionBackend) repository.RateLimiter {
	return b.Limiter
}

// ProvideRegistry 提供提供商表
func ProvideRegistry(cfg *config.Config) (*provider.Registry, error) {
	return provider.FromConfig(&cfg.LLM)
}

// ProvideLLMFactory 提供模型句柄工厂
func ProvideLLMFactory(cfg *config.Config) *llm.Factory {
	return llm.NewFactory(&cfg.LLM)
}

// ProvideSessionService 提供会话配置服务
func ProvideSessionService(
	cfg *config.Config,
	registry *provider.Registry,
	store repository.SessionRepository,
	lister port.ModelLister,
) *sessionapp.Service {
	return sessionapp.NewService(registry, store, lister, cfg.LLM.DefaultAPIKey, cfg.LLM.Timeout)
}

// ProvideArticleService 提供文章生成服务
func ProvideArticleService(
	cfg *config.Config,
	sessions *sessionapp.Service,
	factory port.ChatModelFactory,
	prompts *workflowprompt.Registry,
) *article.Service {
	return article.NewService(sessions, factory, prompts, cfg.Session.LockTTL)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, b *SessionBackend) *handler.HealthHandler {
	return handler.NewHealthHandler(b.Store, b.Name, cfg.App.Version)
}

// ProvideRouter 提供 HTTP 路由器
func ProvideRouter(cfg *config.Config, handlers router.Handlers, limiter repository.RateLimiter) (*router.Router, error) {
	return router.New(cfg, handlers, limiter)
}
