// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

var envPlaceholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 加载配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func Load() (*Config, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	return LoadFrom(dir)
}

// LoadFrom 从指定目录加载 config.yaml 与 config.<APP_ENV>.yaml
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置（缺失时完全依赖默认值）
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), true); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = DefaultProviders()
	}
	cfg.applyRunDurationFloor()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyRunDurationFloor 把过短的写超时与生成锁 TTL 提升到 MaxRunDuration。
// 写超时为 0 表示不限制，保持不变。
func (c *Config) applyRunDurationFloor() {
	if w := c.Server.HTTP.WriteTimeout; w > 0 && w < MaxRunDuration {
		c.Server.HTTP.WriteTimeout = MaxRunDuration
	}
	if c.Session.LockTTL < MaxRunDuration {
		c.Session.LockTTL = MaxRunDuration
	}
}

// Validate 校验配置中互相引用的字段
func (c *Config) Validate() error {
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store: %q", c.Session.Store)
	}

	var defaultProvider *ProviderConfig
	for i := range c.LLM.Providers {
		p := &c.LLM.Providers[i]
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("llm.providers[%d]: name is required", i)
		}
		if strings.TrimSpace(p.BaseURL) == "" {
			return fmt.Errorf("llm provider %s: base_url is required", p.Name)
		}
		if len(p.Models) == 0 {
			return fmt.Errorf("llm provider %s: at least one model is required", p.Name)
		}
		if p.Name == c.LLM.DefaultProvider {
			defaultProvider = p
		}
	}
	if defaultProvider == nil {
		return fmt.Errorf("llm default provider %q not found in providers", c.LLM.DefaultProvider)
	}
	if c.LLM.DefaultModel != "" {
		for _, m := range defaultProvider.Models {
			if m.ID == c.LLM.DefaultModel {
				return nil
			}
		}
		return fmt.Errorf("llm default model %q not offered by provider %s", c.LLM.DefaultModel, defaultProvider.Name)
	}
	return nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnv(string(content))

	reader := strings.NewReader(expanded)
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，后续文件走 MergeConfig
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPlaceholder.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		return match
	})
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ai-article-generator")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8501)
	v.SetDefault("server.http.read_timeout", "30s")
	// 一次生成包含四次串行 LLM 调用
	v.SetDefault("server.http.write_timeout", "30m")
	v.SetDefault("server.http.idle_timeout", "120s")

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.lock_ttl", "30m")
	v.SetDefault("session.cookie_name", "article_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.key_prefix", "article")

	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")

	v.SetDefault("llm.default_provider", "OpenRouter")
	v.SetDefault("llm.default_model", "deepseek/deepseek-r1:free")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.referer", "https://openrouter.ai/")
	v.SetDefault("llm.title", "AI Article Generator")
	v.SetDefault("llm.model_cache_size", 64)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 10)
	v.SetDefault("security.rate_limit.window", "1m")
}
