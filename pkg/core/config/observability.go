package config

import "time"

// 导出器类型
const (
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
	ExporterStdout   = "stdout"
	ExporterNone     = "none"
)

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	// Enabled 是否启用
	Enabled bool `koanf:"enabled"`
	// ServiceName 服务名称
	ServiceName string `koanf:"service_name"`
	// Environment 环境（dev, staging, prod）
	Environment string `koanf:"environment"`
	// Exporter 导出器类型 (otlp-grpc, otlp-http, stdout, none)
	Exporter string `koanf:"exporter"`
	// Endpoint OTLP 端点
	Endpoint string `koanf:"endpoint"`
	// Insecure 是否使用不安全连接
	Insecure bool `koanf:"insecure"`
	// Tracing 是否导出追踪
	Tracing bool `koanf:"tracing"`
	// Metrics 是否导出指标
	Metrics bool `koanf:"metrics"`
	// SampleRate 采样率 [0, 1]
	SampleRate float64 `koanf:"sample_rate"`
	// MetricsInterval 指标导出间隔
	MetricsInterval time.Duration `koanf:"metrics_interval"`
	// LogLevel 日志级别 (debug, info, warn, error)
	LogLevel string `koanf:"log_level"`
	// LogFormat 日志格式 (text, json)
	LogFormat string `koanf:"log_format"`
}

// Validate 验证可观测性配置
func (c *ObservabilityConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	switch c.Exporter {
	case ExporterOTLPGRPC, ExporterOTLPHTTP, ExporterStdout, ExporterNone:
		return nil
	default:
		return ErrInvalidExporter
	}
}

// WithDefaults 返回带默认值的配置
func (c ObservabilityConfig) WithDefaults() ObservabilityConfig {
	if c.ServiceName == "" {
		c.ServiceName = "pickaxe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Exporter == "" {
		c.Exporter = ExporterOTLPGRPC
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 60 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	return c
}
