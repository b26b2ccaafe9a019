// Package provider 描述可选的 LLM API 提供商及其模型表
package provider

import (
	"fmt"
	"strings"

	"ai-article-generator/internal/config"
)

// minAPIKeyLength API Key 的最短长度（粗略格式检查）
const minAPIKeyLength = 20

// Model 提供商下的一个模型
type Model struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Provider 一个 OpenAI 兼容的 API 提供商
type Provider struct {
	Name      string  `json:"name"`
	BaseURL   string  `json:"base_url"`
	KeyPrefix string  `json:"key_prefix,omitempty"`
	Models    []Model `json:"models"`
}

// FirstModel 返回列表中的第一个模型
func (p Provider) FirstModel() Model {
	if len(p.Models) == 0 {
		return Model{}
	}
	return p.Models[0]
}

// ModelByID 按模型 ID 查找
func (p Provider) ModelByID(id string) (Model, bool) {
	for _, m := range p.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// ModelByLabel 按展示名查找
func (p Provider) ModelByLabel(label string) (Model, bool) {
	for _, m := range p.Models {
		if m.Label == label {
			return m, true
		}
	}
	return Model{}, false
}

// ValidateAPIKey 对 API Key 做格式检查，不发起网络请求
func (p Provider) ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("api key is empty")
	}
	if p.KeyPrefix != "" && !strings.HasPrefix(key, p.KeyPrefix) {
		return fmt.Errorf("api key must start with %s", p.KeyPrefix)
	}
	if len(key) < minAPIKeyLength {
		return fmt.Errorf("api key too short")
	}
	return nil
}

// KeyHint 返回界面上的 Key 格式提示
func (p Provider) KeyHint() string {
	if p.KeyPrefix == "" {
		return fmt.Sprintf("请输入有效的 %s API Key", p.Name)
	}
	return fmt.Sprintf("请输入有效的 %s API Key（以 %s 开头）", p.Name, p.KeyPrefix)
}

// Registry 静态的提供商表，保持配置中的声明顺序
type Registry struct {
	providers       []Provider
	index           map[string]int
	defaultProvider string
	defaultModel    string
}

// NewRegistry 创建提供商表
func NewRegistry(providers []Provider, defaultProvider, defaultModel string) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	r := &Registry{
		providers: make([]Provider, 0, len(providers)),
		index:     make(map[string]int, len(providers)),
	}
	for _, p := range providers {
		if _, dup := r.index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate provider %s", p.Name)
		}
		if len(p.Models) == 0 {
			return nil, fmt.Errorf("provider %s has no models", p.Name)
		}
		r.index[p.Name] = len(r.providers)
		r.providers = append(r.providers, p)
	}

	if defaultProvider == "" {
		defaultProvider = providers[0].Name
	}
	dp, ok := r.Get(defaultProvider)
	if !ok {
		return nil, fmt.Errorf("default provider %s not found", defaultProvider)
	}
	if defaultModel == "" {
		defaultModel = dp.FirstModel().ID
	}
	if _, ok := dp.ModelByID(defaultModel); !ok {
		return nil, fmt.Errorf("default model %s not offered by %s", defaultModel, defaultProvider)
	}
	r.defaultProvider = defaultProvider
	r.defaultModel = defaultModel
	return r, nil
}

// FromConfig 根据 LLM 配置构建提供商表
func FromConfig(cfg *config.LLMConfig) (*Registry, error) {
	providers := make([]Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		p := Provider{
			Name:      pc.Name,
			BaseURL:   pc.BaseURL,
			KeyPrefix: pc.KeyPrefix,
			Models:    make([]Model, 0, len(pc.Models)),
		}
		for _, mc := range pc.Models {
			label := mc.Label
			if label == "" {
				label = mc.ID
			}
			p.Models = append(p.Models, Model{Label: label, ID: mc.ID})
		}
		providers = append(providers, p)
	}
	return NewRegistry(providers, cfg.DefaultProvider, cfg.DefaultModel)
}

// Get 按名称获取提供商
func (r *Registry) Get(name string) (Provider, bool) {
	i, ok := r.index[name]
	if !ok {
		return Provider{}, false
	}
	return r.providers[i], true
}

// Names 按声明顺序返回提供商名称
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name)
	}
	return names
}

// All 返回提供商表的副本
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Default 返回默认提供商与默认模型
func (r *Registry) Default() (Provider, Model) {
	p, _ := r.Get(r.defaultProvider)
	m, _ := p.ModelByID(r.defaultModel)
	return p, m
}
