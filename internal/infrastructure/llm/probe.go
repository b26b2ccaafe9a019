package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ai-article-generator/internal/domain/session"
)

// ModelProbe 通过 /models 接口校验 API 配置是否可用
type ModelProbe struct {
	factory *Factory
}

func NewModelProbe(factory *Factory) *ModelProbe {
	return &ModelProbe{factory: factory}
}

// ListModels 返回提供商可用的模型 ID
func (p *ModelProbe) ListModels(ctx context.Context, cfg session.Config) ([]string, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(p.factory.HTTPClient(cfg)),
		option.WithMaxRetries(0),
	)

	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
