// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// 单次模型调用的超时上限（秒），以及一次生成最多发起的模型调用次数：
// 四个阶段各一次，整合阶段不支持 json_schema 时再发一次
const (
	MaxLLMCallTimeoutSeconds = 300
	LLMCallsPerRun           = 5
)

// MaxRunDuration 一次生成在最坏情况下的耗时，HTTP 写超时与生成锁 TTL 不得短于它
const MaxRunDuration = LLMCallsPerRun * MaxLLMCallTimeoutSeconds * time.Second

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Session       SessionConfig       `yaml:"session" mapstructure:"session"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	// Store 会话存储后端：memory | redis
	Store        string        `yaml:"store" mapstructure:"store"`
	TTL          time.Duration `yaml:"ttl" mapstructure:"ttl"`
	LockTTL      time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
	CookieName   string        `yaml:"cookie_name" mapstructure:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure" mapstructure:"cookie_secure"`
	KeyPrefix    string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string `yaml:"default_provider" mapstructure:"default_provider"`
	DefaultModel    string `yaml:"default_model" mapstructure:"default_model"`
	// DefaultAPIKey 新会话的初始 API Key（可为空）
	DefaultAPIKey string        `yaml:"default_api_key" mapstructure:"default_api_key"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Referer / Title 作为 HTTP-Referer / X-Title 头发送
	Referer        string           `yaml:"referer" mapstructure:"referer"`
	Title          string           `yaml:"title" mapstructure:"title"`
	ModelCacheSize int              `yaml:"model_cache_size" mapstructure:"model_cache_size"`
	Providers      []ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	Name      string        `yaml:"name" mapstructure:"name"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	KeyPrefix string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	Models    []ModelConfig `yaml:"models" mapstructure:"models"`
}

// ModelConfig 模型配置，Label 用于界面展示
type ModelConfig struct {
	Label string `yaml:"label" mapstructure:"label"`
	ID    string `yaml:"id" mapstructure:"id"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 生成接口限流配置（按会话）
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Requests int           `yaml:"requests" mapstructure:"requests"`
	Window   time.Duration `yaml:"window" mapstructure:"window"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
