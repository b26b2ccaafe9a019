package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"ai-article-generator/internal/domain/session"
)

// ChatModelFactory 按会话配置提供 ChatModel
type ChatModelFactory interface {
	ChatModel(ctx context.Context, cfg session.Config) (model.BaseChatModel, error)
}

// ModelLister 列出当前配置可用的模型，用于校验 API 配置
type ModelLister interface {
	ListModels(ctx context.Context, cfg session.Config) ([]string, error)
}
