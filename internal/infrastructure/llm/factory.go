package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"golang.org/x/sync/singleflight"

	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/session"
)

const defaultModelCacheSize = 64

// Factory 按会话配置创建 Eino ChatModel，并按配置指纹缓存
type Factory struct {
	referer   string
	title     string
	cacheSize int
	transport http.RoundTripper

	mu     sync.RWMutex
	models map[string]model.BaseChatModel
	group  singleflight.Group
}

// FactoryOption Factory 选项
type FactoryOption func(*Factory)

// WithTransport 替换底层 RoundTripper
func WithTransport(rt http.RoundTripper) FactoryOption {
	return func(f *Factory) {
		f.transport = rt
	}
}

// NewFactory 创建 LLM 工厂
func NewFactory(cfg *config.LLMConfig, opts ...FactoryOption) *Factory {
	size := cfg.ModelCacheSize
	if size <= 0 {
		size = defaultModelCacheSize
	}
	f := &Factory{
		referer:   cfg.Referer,
		title:     cfg.Title,
		cacheSize: size,
		transport: http.DefaultTransport,
		models:    make(map[string]model.BaseChatModel),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTTPClient 返回与会话配置对应的 http.Client
func (f *Factory) HTTPClient(cfg session.Config) *http.Client {
	return newHTTPClient(f.transport, f.referer, f.title, cfg.APIKey, cfg.TimeoutDuration())
}

// ChatModel 获取会话配置对应的 ChatModel，相同配置复用同一句柄
func (f *Factory) ChatModel(ctx context.Context, cfg session.Config) (model.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("base url and model are required")
	}

	key := fingerprint(cfg)
	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		f.mu.RLock()
		m, ok := f.models[key]
		f.mu.RUnlock()
		if ok {
			return m, nil
		}

		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			HTTPClient: f.HTTPClient(cfg),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create eino chat model for %s/%s: %w", cfg.Provider, cfg.Model, err)
		}

		f.mu.Lock()
		if len(f.models) >= f.cacheSize {
			for k := range f.models {
				delete(f.models, k)
				break
			}
		}
		f.models[key] = chatModel
		f.mu.Unlock()
		return chatModel, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(model.BaseChatModel), nil
}

// CachedModels 当前缓存的句柄数量
func (f *Factory) CachedModels() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.models)
}

func fingerprint(cfg session.Config) string {
	sum := sha256.Sum256([]byte(cfg.APIKey))
	return cfg.Provider + "|" + cfg.BaseURL + "|" + cfg.Model + "|" +
		strconv.FormatFloat(cfg.Timeout, 'f', -1, 64) + "|" + hex.EncodeToString(sum[:8])
}
