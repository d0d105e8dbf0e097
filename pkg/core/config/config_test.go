package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PICKAXE_LLM_API_KEY":               "llm.api_key",
		"PICKAXE_WORKER_MAX_CONCURRENCY":    "worker.max_concurrency",
		"PICKAXE_LLM_FALLBACK__MODEL":       "llm.fallback.model",
		"PICKAXE_TOOLBOX_MAX_PROMPT_TOKENS": "toolbox.max_prompt_tokens",
		"PICKAXE_DEBUG":                     "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, EnvKey(EnvPrefix, in), in)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "pickaxe-worker", cfg.Worker.Name)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Toolbox.PickTimeout)
	assert.Equal(t, 1, cfg.Toolbox.DefaultMaxTools)
	assert.Equal(t, "pickaxe", cfg.Observability.ServiceName)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pickaxe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: deepseek
  max_retries: 5
worker:
  max_concurrency: 8
store:
  driver: sqlite
  dsn: runs.db
toolbox:
  max_prompt_tokens: 2000
`), 0o600))

	t.Setenv("PICKAXE_LLM_API_KEY", "sk-test")
	t.Setenv("PICKAXE_WORKER_MAX_CONCURRENCY", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderDeepSeek, cfg.LLM.Provider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.Equal(t, 4, cfg.Worker.MaxConcurrency)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "runs.db", cfg.Store.DSN)
	assert.Equal(t, 2000, cfg.Toolbox.MaxPromptTokens)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pickaxe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"toolbox":{"default_max_tools":3,"pick_timeout":"90s"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Toolbox.DefaultMaxTools)
	assert.Equal(t, 90*time.Second, cfg.Toolbox.PickTimeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Worker, cfg.Worker)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pickaxe.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"bad provider", func(c *Config) { c.LLM.Provider = "qwen" }, ErrInvalidProvider},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }, ErrInvalidMaxRetries},
		{"zero concurrency", func(c *Config) { c.Worker.MaxConcurrency = 0 }, ErrInvalidConcurrency},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }, ErrInvalidStoreDriver},
		{"sqlite without dsn", func(c *Config) { c.Store = StoreConfig{Driver: StoreSQLite} }, ErrDSNRequired},
		{"bad max tools", func(c *Config) { c.Toolbox.DefaultMaxTools = 0 }, ErrInvalidMaxTools},
		{"bad sample rate", func(c *Config) { c.Observability.SampleRate = 2 }, ErrInvalidSampleRate},
		{"bad exporter", func(c *Config) { c.Observability.Exporter = "zipkin" }, ErrInvalidExporter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}
}

func TestLLMConfig_ClampsLimits(t *testing.T) {
	c := LLMConfig{MaxRetries: 50, Timeout: time.Hour}.WithDefaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 10, c.MaxRetries)
	assert.Equal(t, 5*time.Minute, c.Timeout)
}

func TestLoader_Getters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pickaxe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: openai
worker:
  max_concurrency: 12
toolbox:
  pick_timeout: 90s
`), 0o600))

	l := NewLoader()
	require.NoError(t, l.LoadFile(path))

	assert.Equal(t, "openai", l.GetString("llm.provider"))
	assert.Equal(t, 12, l.GetInt("worker.max_concurrency"))
	assert.Equal(t, 90*time.Second, l.GetDuration("toolbox.pick_timeout"))
	assert.Nil(t, l.Get("store.driver"))
}
