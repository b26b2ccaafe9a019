//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"ai-article-generator/internal/application/article"
	"ai-article-generator/internal/config"
	"ai-article-generator/internal/infrastructure/llm"
	"ai-article-generator/internal/interfaces/http/handler"
	"ai-article-generator/internal/interfaces/http/router"
	"ai-article-generator/internal/workflow/port"
	workflowprompt "ai-article-generator/internal/workflow/prompt"
)

// BackendSet 会话存储与限流
var BackendSet = wire.NewSet(
	ProvideSessionBackend,
	ProvideSessionStore,
	ProvideRateLimiter,
)

// LLMSet 模型句柄工厂与模型探测
var LLMSet = wire.NewSet(
	ProvideLLMFactory,
	llm.NewModelProbe,
	wire.Bind(new(port.ChatModelFactory), new(*llm.Factory)),
	wire.Bind(new(port.ModelLister), new(*llm.ModelProbe)),
)

// ServiceSet 应用服务
var ServiceSet = wire.NewSet(
	ProvideRegistry,
	workflowprompt.NewRegistry,
	ProvideSessionService,
	ProvideArticleService,
)

// RouterSet 处理器与路由
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewSessionHandler,
	handler.NewArticleHandler,
	handler.NewPageHandler,
	wire.Bind(new(handler.ArticleGenerator), new(*article.Service)),
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		BackendSet,
		LLMSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}
