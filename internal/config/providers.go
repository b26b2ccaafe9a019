package config

// DefaultProviders 内置的提供商与模型表，配置文件未声明 llm.providers 时使用。
// 模型顺序即界面展示顺序，切换提供商时选中第一个模型。
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:      "OpenRouter",
			BaseURL:   "https://openrouter.ai/api/v1/",
			KeyPrefix: "sk-or-v1-",
			Models: []ModelConfig{
				{Label: "DeepSeek Chat", ID: "deepseek/deepseek-chat:free"},
				{Label: "DeepSeek R1", ID: "deepseek/deepseek-r1:free"},
				{Label: "Claude 2", ID: "anthropic/claude-2:free"},
				{Label: "GPT-3.5", ID: "openai/gpt-3.5-turbo:free"},
				{Label: "Gemini Flash Lite", ID: "google/gemini-2.0-flash-lite-preview-02-05:free"},
				{Label: "Gemini Pro Exp", ID: "google/gemini-2.0-pro-exp-02-05:free"},
				{Label: "Gemini Flash Thinking", ID: "google/gemini-2.0-flash-thinking-exp:free"},
				{Label: "Gemini Flash Thinking 1219", ID: "google/gemini-2.0-flash-thinking-exp-1219:free"},
				{Label: "Gemini Flash", ID: "google/gemini-2.0-flash-exp:free"},
				{Label: "Gemma 3 27B", ID: "google/gemma-3-27b-it:free"},
				{Label: "Claude 3 Opus", ID: "anthropic/claude-3-opus:free"},
				{Label: "Claude 3 Sonnet", ID: "anthropic/claude-3-sonnet:free"},
				{Label: "Mistral Medium", ID: "mistral/mistral-medium:free"},
				{Label: "Mixtral", ID: "mistralai/mixtral-8x7b:free"},
			},
		},
		{
			Name:      "OpenAI",
			BaseURL:   "https://api.openai.com/v1",
			KeyPrefix: "sk-",
			Models: []ModelConfig{
				{Label: "GPT-3.5", ID: "gpt-3.5-turbo"},
				{Label: "GPT-4", ID: "gpt-4"},
			},
		},
		{
			Name:      "DeepSeek",
			BaseURL:   "https://api.deepseek.com/v1",
			KeyPrefix: "sk-",
			Models: []ModelConfig{
				{Label: "DeepSeek Chat", ID: "deepseek-chat"},
				{Label: "DeepSeek Code", ID: "deepseek-coder"},
			},
		},
		{
			Name:    "Google",
			BaseURL: "https://generativelanguage.googleapis.com/v1",
			Models: []ModelConfig{
				{Label: "Gemini Flash Lite 2.0", ID: "gemini-flash-lite-2.0"},
				{Label: "Gemini Pro 2.0", ID: "gemini-pro-2.0"},
				{Label: "Gemini 2.0 Flash Thinking 01-21", ID: "gemini-2.0-flash-thinking-01-21"},
				{Label: "Gemini 2.0 Flash Thinking", ID: "gemini-2.0-flash-thinking"},
				{Label: "Gemini Flash 2.0", ID: "gemini-flash-2.0"},
				{Label: "Gemma 3 27B", ID: "gemma-3-27b"},
			},
		},
	}
}
