package dto

import (
	"ai-article-generator/internal/domain/provider"
	"ai-article-generator/internal/domain/session"
)

// ModelResponse 模型信息
type ModelResponse struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// ProviderResponse 提供商信息
type ProviderResponse struct {
	Name      string          `json:"name"`
	BaseURL   string          `json:"base_url"`
	KeyPrefix string          `json:"key_prefix,omitempty"`
	Models    []ModelResponse `json:"models"`
}

// ProvidersResponse 提供商列表
type ProvidersResponse struct {
	DefaultProvider string             `json:"default_provider"`
	DefaultModel    string             `json:"default_model"`
	Providers       []ProviderResponse `json:"providers"`
}

// ToProvidersResponse 转换提供商表
func ToProvidersResponse(reg *provider.Registry) *ProvidersResponse {
	p, m := reg.Default()
	resp := &ProvidersResponse{
		DefaultProvider: p.Name,
		DefaultModel:    m.ID,
	}
	for _, item := range reg.All() {
		models := make([]ModelResponse, 0, len(item.Models))
		for _, model := range item.Models {
			models = append(models, ModelResponse{Label: model.Label, ID: model.ID})
		}
		resp.Providers = append(resp.Providers, ProviderResponse{
			Name:      item.Name,
			BaseURL:   item.BaseURL,
			KeyPrefix: item.KeyPrefix,
			Models:    models,
		})
	}
	return resp
}

// SessionResponse 会话配置（API Key 已脱敏）
type SessionResponse struct {
	ID              string  `json:"id"`
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	ModelLabel      string  `json:"model_label"`
	BaseURL         string  `json:"base_url"`
	APIKey          string  `json:"api_key,omitempty"`
	HasAPIKey       bool    `json:"has_api_key"`
	UsingDefaultKey bool    `json:"using_default_key"`
	Timeout         float64 `json:"timeout"`
	LastTopic       string  `json:"last_topic,omitempty"`
	HasArticle      bool    `json:"has_article"`
}

// ToSessionResponse 转换会话状态
func ToSessionResponse(state *session.State, reg *provider.Registry, usingDefaultKey bool) *SessionResponse {
	return &SessionResponse{
		ID:              state.ID,
		Provider:        state.Config.Provider,
		Model:           state.Config.Model,
		ModelLabel:      state.Config.ModelLabel(reg),
		BaseURL:         state.Config.BaseURL,
		APIKey:          state.Config.MaskedAPIKey(),
		HasAPIKey:       state.Config.HasAPIKey(),
		UsingDefaultKey: usingDefaultKey,
		Timeout:         state.Config.Timeout,
		LastTopic:       state.LastTopic,
		HasArticle:      state.LastArticle != nil,
	}
}

// SelectProviderRequest 切换提供商请求
type SelectProviderRequest struct {
	Provider string `json:"provider" form:"provider" binding:"required"`
}

// SelectModelRequest 选择模型请求，model 可以是模型 ID 或展示名
type SelectModelRequest struct {
	Model string `json:"model" form:"model" binding:"required"`
}

// SaveAPIRequest 保存 API 设置请求，timeout 为空时保持原值
type SaveAPIRequest struct {
	APIKey  string   `json:"api_key" form:"api_key"`
	Timeout *float64 `json:"timeout" form:"timeout"`
}

// ProbeResponse 模型探测结果
type ProbeResponse struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}
