// Package session 会话级的生成配置与状态
package session

import (
	"strings"
	"time"

	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/entity"
	"ai-article-generator/internal/domain/provider"
	apperrors "ai-article-generator/pkg/errors"
)

// 超时时间的取值范围（秒）
const (
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = config.MaxLLMCallTimeoutSeconds
)

// Config 一次生成所使用的 LLM 配置。BaseURL 始终等于所选提供商的地址。
type Config struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	APIKey   string  `json:"api_key"`
	BaseURL  string  `json:"base_url"`
	Timeout  float64 `json:"timeout"`
}

// TimeoutDuration 以 time.Duration 表示的超时时间
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// HasAPIKey 是否已设置 API Key
func (c Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// State 会话状态
type State struct {
	ID          string          `json:"id"`
	Config      Config          `json:"config"`
	LastTopic   string          `json:"last_topic,omitempty"`
	LastArticle *entity.Article `json:"last_article,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewConfig 使用默认提供商、默认模型创建配置
func NewConfig(reg *provider.Registry, defaultAPIKey string, timeout time.Duration) Config {
	p, m := reg.Default()
	seconds := timeout.Seconds()
	if seconds < MinTimeoutSeconds || seconds > MaxTimeoutSeconds {
		seconds = 30
	}
	return Config{
		Provider: p.Name,
		Model:    m.ID,
		APIKey:   defaultAPIKey,
		BaseURL:  p.BaseURL,
		Timeout:  seconds,
	}
}

// NewState 创建新的会话状态
func NewState(id string, cfg Config) *State {
	now := time.Now()
	return &State{ID: id, Config: cfg, CreatedAt: now, UpdatedAt: now}
}

// Touch 更新修改时间
func (s *State) Touch() {
	s.UpdatedAt = time.Now()
}

// SelectProvider 切换提供商，模型重置为该提供商的第一个模型，BaseURL 随之更新
func (c *Config) SelectProvider(reg *provider.Registry, name string) error {
	p, ok := reg.Get(name)
	if !ok {
		return apperrors.New(apperrors.CodeUnknownProvider, "未知的提供商").WithDetail(name)
	}
	c.Provider = p.Name
	c.Model = p.FirstModel().ID
	c.BaseURL = p.BaseURL
	return nil
}

// SelectModel 按模型 ID 或展示名选择当前提供商下的模型
func (c *Config) SelectModel(reg *provider.Registry, idOrLabel string) error {
	p, ok := reg.Get(c.Provider)
	if !ok {
		return apperrors.New(apperrors.CodeUnknownProvider, "未知的提供商").WithDetail(c.Provider)
	}
	m, ok := p.ModelByID(idOrLabel)
	if !ok {
		m, ok = p.ModelByLabel(idOrLabel)
	}
	if !ok {
		return apperrors.New(apperrors.CodeUnknownModel, "未知的模型").WithDetail(idOrLabel)
	}
	c.Model = m.ID
	return nil
}

// SaveAPISettings 校验并保存 API Key 与超时时间，校验失败时配置不变。
// apiKey 为空且已有 Key 时沿用当前 Key，只更新超时。
func (c *Config) SaveAPISettings(reg *provider.Registry, apiKey string, timeoutSeconds float64) error {
	p, ok := reg.Get(c.Provider)
	if !ok {
		return apperrors.New(apperrors.CodeUnknownProvider, "未知的提供商").WithDetail(c.Provider)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" && c.HasAPIKey() {
		apiKey = c.APIKey
	} else if err := p.ValidateAPIKey(apiKey); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidAPIKey, p.KeyHint())
	}
	if timeoutSeconds < MinTimeoutSeconds || timeoutSeconds > MaxTimeoutSeconds {
		return apperrors.New(apperrors.CodeInvalidParam, "超时时间需在 1 到 300 秒之间")
	}
	c.APIKey = apiKey
	c.Timeout = timeoutSeconds
	return nil
}

// ModelLabel 当前模型的展示名，找不到时返回模型 ID
func (c Config) ModelLabel(reg *provider.Registry) string {
	if p, ok := reg.Get(c.Provider); ok {
		if m, ok := p.ModelByID(c.Model); ok {
			return m.Label
		}
	}
	return c.Model
}

// MaskedAPIKey 用于展示的脱敏 Key
func (c Config) MaskedAPIKey() string {
	k := c.APIKey
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}
	return k[:6] + strings.Repeat("*", 6) + k[len(k)-4:]
}
