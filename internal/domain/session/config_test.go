package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-article-generator/internal/config"
	"ai-article-generator/internal/domain/provider"
	apperrors "ai-article-generator/pkg/errors"
)

func newRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	r, err := provider.FromConfig(&config.LLMConfig{
		DefaultProvider: "OpenRouter",
		DefaultModel:    "deepseek/deepseek-r1:free",
		Providers:       config.DefaultProviders(),
	})
	require.NoError(t, err)
	return r
}

func TestNewConfigUsesDefaults(t *testing.T) {
	reg := newRegistry(t)
	cfg := NewConfig(reg, "sk-or-v1-default-key-0000", 30*time.Second)

	assert.Equal(t, "OpenRouter", cfg.Provider)
	assert.Equal(t, "deepseek/deepseek-r1:free", cfg.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1/", cfg.BaseURL)
	assert.Equal(t, 30.0, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.True(t, cfg.HasAPIKey())
	assert.Equal(t, "DeepSeek R1", cfg.ModelLabel(reg))

	cfg = NewConfig(reg, "", time.Hour)
	assert.Equal(t, 30.0, cfg.Timeout)
	assert.False(t, cfg.HasAPIKey())
}

func TestSelectProviderResetsModelAndBaseURL(t *testing.T) {
	reg := newRegistry(t)
	cfg := NewConfig(reg, "", 30*time.Second)

	require.NoError(t, cfg.SelectProvider(reg, "DeepSeek"))
	assert.Equal(t, "DeepSeek", cfg.Provider)
	assert.Equal(t, "deepseek-chat", cfg.Model)
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.BaseURL)

	require.NoError(t, cfg.SelectProvider(reg, "OpenRouter"))
	assert.Equal(t, "deepseek/deepseek-chat:free", cfg.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1/", cfg.BaseURL)

	err := cfg.SelectProvider(reg, "Nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownProvider, apperrors.AsAppError(err).Code)
	assert.Equal(t, "OpenRouter", cfg.Provider)
}

func TestSelectModel(t *testing.T) {
	reg := newRegistry(t)
	cfg := NewConfig(reg, "", 30*time.Second)

	require.NoError(t, cfg.SelectModel(reg, "Mixtral"))
	assert.Equal(t, "mistralai/mixtral-8x7b:free", cfg.Model)

	require.NoError(t, cfg.SelectModel(reg, "google/gemma-3-27b-it:free"))
	assert.Equal(t, "Gemma 3 27B", cfg.ModelLabel(reg))

	err := cfg.SelectModel(reg, "gpt-4")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownModel, apperrors.AsAppError(err).Code)
}

func TestSaveAPISettings(t *testing.T) {
	reg := newRegistry(t)
	cfg := NewConfig(reg, "", 30*time.Second)

	err := cfg.SaveAPISettings(reg, "sk-wrong-prefix-0123456789", 60)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidAPIKey, appErr.Code)
	assert.Contains(t, appErr.Message, "sk-or-v1-")
	assert.Empty(t, cfg.APIKey)

	err = cfg.SaveAPISettings(reg, "sk-or-v1-0123456789abcdef", 301)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)

	require.NoError(t, cfg.SaveAPISettings(reg, "  sk-or-v1-0123456789abcdef ", 120))
	assert.Equal(t, "sk-or-v1-0123456789abcdef", cfg.APIKey)
	assert.Equal(t, 120.0, cfg.Timeout)
	assert.Equal(t, "sk-or-******cdef", cfg.MaskedAPIKey())
}

func TestSaveAPISettingsKeepsKeyWhenBlank(t *testing.T) {
	reg := newRegistry(t)
	cfg := NewConfig(reg, "", 30*time.Second)

	err := cfg.SaveAPISettings(reg, "  ", 60)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidAPIKey, apperrors.AsAppError(err).Code)
	assert.Equal(t, 30.0, cfg.Timeout)

	require.NoError(t, cfg.SaveAPISettings(reg, "sk-or-v1-0123456789abcdef", 60))
	require.NoError(t, cfg.SaveAPISettings(reg, "", 90))
	assert.Equal(t, "sk-or-v1-0123456789abcdef", cfg.APIKey)
	assert.Equal(t, 90.0, cfg.Timeout)
}
