package config

import "errors"

// 配置验证相关错误
var (
	// ErrModelRequired 模型名称必填
	ErrModelRequired = errors.New("model name is required")
	// ErrInvalidProvider 不支持的提供商
	ErrInvalidProvider = errors.New("unsupported llm provider")
	// ErrInvalidTimeout 超时时间无效
	ErrInvalidTimeout = errors.New("invalid timeout value")
	// ErrInvalidMaxRetries 重试次数无效
	ErrInvalidMaxRetries = errors.New("invalid max retries value")
	// ErrNameRequired Worker 名称必填
	ErrNameRequired = errors.New("worker name is required")
	// ErrInvalidConcurrency 并发数无效
	ErrInvalidConcurrency = errors.New("max concurrency must be positive")
	// ErrInvalidStoreDriver 不支持的存储驱动
	ErrInvalidStoreDriver = errors.New("store driver must be memory or sqlite")
	// ErrDSNRequired sqlite 存储需要 DSN
	ErrDSNRequired = errors.New("store dsn is required for sqlite")
	// ErrInvalidMaxTokens Token 数无效
	ErrInvalidMaxTokens = errors.New("max tokens must not be negative")
	// ErrInvalidMaxTools 工具数量无效
	ErrInvalidMaxTools = errors.New("default max tools must be positive")
	// ErrInvalidSampleRate 采样率无效
	ErrInvalidSampleRate = errors.New("sample rate must be between 0 and 1")
	// ErrInvalidExporter 不支持的导出器
	ErrInvalidExporter = errors.New("unsupported exporter type")
	// ErrUnsupportedFormat 不支持的配置文件格式
	ErrUnsupportedFormat = errors.New("unsupported config format")
)
