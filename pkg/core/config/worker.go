package config

import "time"

// WorkerConfig 本地工作流引擎（worker）配置
type WorkerConfig struct {
	// Name Worker 名称
	// 默认: pickaxe-worker
	Name string `koanf:"name"`
	// MaxConcurrency 同时执行的任务上限
	// 默认: 100
	MaxConcurrency int `koanf:"max_concurrency"`
	// DefaultTimeout 未声明超时的任务使用的执行超时
	// 默认: 60s
	DefaultTimeout time.Duration `koanf:"default_timeout"`
	// RetryDelay 任务重试退避基数
	// 默认: 1s
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// Validate 验证 Worker 配置
func (c *WorkerConfig) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if c.MaxConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.DefaultTimeout < 0 || c.RetryDelay < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// WithDefaults 返回带默认值的配置
func (c WorkerConfig) WithDefaults() WorkerConfig {
	if c.Name == "" {
		c.Name = "pickaxe-worker"
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 100
	}
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = 60 * time.Second
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	return c
}
