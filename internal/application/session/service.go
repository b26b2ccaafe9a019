// Package session 管理会话级的生成配置：提供商、模型、API Key 与超时
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-article-generator/internal/domain/provider"
	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/domain/session"
	"ai-article-generator/internal/workflow/port"
	apperrors "ai-article-generator/pkg/errors"
	"ai-article-generator/pkg/logger"
)

// Service 会话配置服务
type Service struct {
	registry       *provider.Registry
	store          repository.SessionRepository
	lister         port.ModelLister
	defaultAPIKey  string
	defaultTimeout time.Duration
}

// NewService 创建会话配置服务
func NewService(
	registry *provider.Registry,
	store repository.SessionRepository,
	lister port.ModelLister,
	defaultAPIKey string,
	defaultTimeout time.Duration,
) *Service {
	return &Service{
		registry:       registry,
		store:          store,
		lister:         lister,
		defaultAPIKey:  defaultAPIKey,
		defaultTimeout: defaultTimeout,
	}
}

// Registry 提供商表
func (s *Service) Registry() *provider.Registry {
	return s.registry
}

// Store 底层会话存储，生成锁也由它提供
func (s *Service) Store() repository.SessionRepository {
	return s.store
}

// NewID 生成新的会话 ID
func (s *Service) NewID() string {
	return uuid.NewString()
}

// Load 读取会话，不存在时以默认配置创建
func (s *Service) Load(ctx context.Context, id string) (*session.State, error) {
	if id == "" {
		id = s.NewID()
	}
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "读取会话失败")
	}
	if state != nil {
		return state, nil
	}

	state = session.NewState(id, session.NewConfig(s.registry, s.defaultAPIKey, s.defaultTimeout))
	if err := s.store.Save(ctx, state); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "保存会话失败")
	}
	logger.Debug(ctx, "session created", "session_id", id)
	return state, nil
}

// Save 保存会话
func (s *Service) Save(ctx context.Context, state *session.State) error {
	state.Touch()
	if err := s.store.Save(ctx, state); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "保存会话失败")
	}
	return nil
}

// SelectProvider 切换提供商
func (s *Service) SelectProvider(ctx context.Context, id, name string) (*session.State, error) {
	return s.update(ctx, id, func(cfg *session.Config) error {
		return cfg.SelectProvider(s.registry, strings.TrimSpace(name))
	})
}

// SelectModel 选择模型（ID 或展示名）
func (s *Service) SelectModel(ctx context.Context, id, model string) (*session.State, error) {
	return s.update(ctx, id, func(cfg *session.Config) error {
		return cfg.SelectModel(s.registry, strings.TrimSpace(model))
	})
}

// SaveAPISettings 保存 API Key 与超时
func (s *Service) SaveAPISettings(ctx context.Context, id, apiKey string, timeoutSeconds float64) (*session.State, error) {
	return s.update(ctx, id, func(cfg *session.Config) error {
		return cfg.SaveAPISettings(s.registry, apiKey, timeoutSeconds)
	})
}

// ProbeModels 用当前配置请求提供商的模型列表，验证 Key 与地址
func (s *Service) ProbeModels(ctx context.Context, id string) ([]string, error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !state.Config.HasAPIKey() {
		return nil, apperrors.ErrMissingAPIKey
	}
	if s.lister == nil {
		return nil, apperrors.ErrServiceUnavailable.WithDetail("model probe not configured")
	}
	models, err := s.lister.ListModels(ctx, state.Config)
	if err != nil {
		logger.Warn(ctx, "model probe failed",
			"provider", state.Config.Provider,
			"error", err.Error(),
		)
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "无法连接到提供商")
	}
	return models, nil
}

// UsingDefaultKey 是否仍在使用配置中的默认 Key
func (s *Service) UsingDefaultKey(cfg session.Config) bool {
	return s.defaultAPIKey != "" && cfg.APIKey == s.defaultAPIKey
}

func (s *Service) update(ctx context.Context, id string, mutate func(cfg *session.Config) error) (*session.State, error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg := state.Config
	if err := mutate(&cfg); err != nil {
		return nil, err
	}
	state.Config = cfg
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}
