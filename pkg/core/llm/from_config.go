package llm

import (
	"fmt"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
)

// FromConfig 从配置创建 LLM Provider
//
// 配置了 Fallback 时返回 FallbackProvider。
func FromConfig(cfg config.LLMConfig) (Provider, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	primary, err := createProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Fallback != nil {
		fallback, err := FromConfig(*cfg.Fallback)
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback provider: %w", err)
		}
		return NewFallbackProvider(primary, []Provider{fallback}), nil
	}

	return primary, nil
}

// createProviderFromConfig 根据配置创建特定提供商
func createProviderFromConfig(cfg config.LLMConfig) (Provider, error) {
	opts := []Option{
		WithModel(cfg.Model),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithRetryDelay(cfg.RetryDelay),
	}
	if cfg.APIKey != "" {
		opts = append(opts, WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(opts...)
	case config.ProviderDeepSeek:
		return NewDeepSeek(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
