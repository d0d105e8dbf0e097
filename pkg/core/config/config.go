// Package config 提供配置加载和管理功能
//
// 加载顺序：默认值 < 配置文件（YAML/JSON） < 环境变量（PICKAXE_ 前缀）。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "PICKAXE_"

// Config 全局配置结构
type Config struct {
	// LLM 工具选择使用的默认模型
	LLM LLMConfig `koanf:"llm"`
	// Worker 本地工作流引擎配置
	Worker WorkerConfig `koanf:"worker"`
	// Store 运行记录存储配置
	Store StoreConfig `koanf:"store"`
	// Toolbox 工具箱与 pick-tool 任务配置
	Toolbox ToolboxConfig `koanf:"toolbox"`
	// Observability 可观测性配置
	Observability ObservabilityConfig `koanf:"observability"`
}

// Loader 配置加载器
type Loader struct {
	k *koanf.Koanf
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		k: koanf.New("."),
	}
}

// LoadFile 从文件加载配置
//
// 文件不存在时不报错，使用默认值。
func (l *Loader) LoadFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: unsupported config file %q", ErrUnsupportedFormat, path)
	}

	if err := l.k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv 从环境变量加载配置
func (l *Loader) LoadEnv(prefix string) error {
	return l.k.Load(env.Provider(prefix, ".", func(s string) string {
		return EnvKey(prefix, s)
	}), nil)
}

// EnvKey 把环境变量名映射为配置路径
//
// 第一个下划线分隔配置段，双下划线表示更深一层：
// PICKAXE_LLM_API_KEY -> llm.api_key，
// PICKAXE_OBSERVABILITY_TRACING__SAMPLE_RATE -> observability.tracing.sample_rate。
func EnvKey(prefix, name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, prefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + strings.ReplaceAll(rest, "__", ".")
}

// Unmarshal 解析配置到结构体
func (l *Loader) Unmarshal(cfg *Config) error {
	return l.k.Unmarshal("", cfg)
}

// Get 获取配置值
func (l *Loader) Get(key string) interface{} {
	return l.k.Get(key)
}

// GetString 获取字符串配置值
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt 获取整数配置值
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetDuration 获取时间间隔配置值
func (l *Loader) GetDuration(key string) time.Duration {
	return l.k.Duration(key)
}

// Load 加载完整配置（文件 + 环境变量）并校验
func Load(configPath string) (*Config, error) {
	loader := NewLoader()

	if configPath != "" {
		if err := loader.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	// 环境变量优先级更高
	if err := loader.LoadEnv(EnvPrefix); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	*cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回全部使用默认值的配置
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults 为每个配置段应用默认值
func (c Config) WithDefaults() Config {
	c.LLM = c.LLM.WithDefaults()
	c.Worker = c.Worker.WithDefaults()
	c.Store = c.Store.WithDefaults()
	c.Toolbox = c.Toolbox.WithDefaults()
	c.Observability = c.Observability.WithDefaults()
	return c
}

// Validate 验证所有配置段
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Toolbox.Validate(); err != nil {
		return fmt.Errorf("toolbox: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}
