package config

import "time"

// ToolboxConfig 工具箱与 pick-tool 任务配置
type ToolboxConfig struct {
	// PickTimeout pick-tool 任务执行超时
	// 默认: 5m
	PickTimeout time.Duration `koanf:"pick_timeout"`
	// DefaultMaxTools Pick 和 PickAndRunAll 未指定 maxTools 时的选择步数，PickAndRun 固定为 1
	// 默认: 1
	DefaultMaxTools int `koanf:"default_max_tools"`
	// MaxPromptTokens 选择提示词的 token 上限，0 表示不限制
	MaxPromptTokens int `koanf:"max_prompt_tokens"`
	// SystemPrompt 附加在选择请求前的系统提示词（可选）
	SystemPrompt string `koanf:"system_prompt"`
}

// Validate 验证工具箱配置
func (c *ToolboxConfig) Validate() error {
	if c.PickTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.DefaultMaxTools < 1 {
		return ErrInvalidMaxTools
	}
	if c.MaxPromptTokens < 0 {
		return ErrInvalidMaxTokens
	}
	return nil
}

// WithDefaults 返回带默认值的配置
func (c ToolboxConfig) WithDefaults() ToolboxConfig {
	if c.PickTimeout == 0 {
		c.PickTimeout = 5 * time.Minute
	}
	if c.DefaultMaxTools == 0 {
		c.DefaultMaxTools = 1
	}
	return c
}
