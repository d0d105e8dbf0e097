package config

// 存储驱动
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// StoreConfig 运行记录存储配置
type StoreConfig struct {
	// Driver 存储驱动 (memory, sqlite)
	// 默认: memory
	Driver string `koanf:"driver"`
	// DSN SQLite 数据源，如 "pickaxe.db" 或 ":memory:"
	DSN string `koanf:"dsn"`
}

// Validate 验证存储配置
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case StoreMemory:
		return nil
	case StoreSQLite:
		if c.DSN == "" {
			return ErrDSNRequired
		}
		return nil
	default:
		return ErrInvalidStoreDriver
	}
}

// WithDefaults 返回带默认值的配置
func (c StoreConfig) WithDefaults() StoreConfig {
	if c.Driver == "" {
		c.Driver = StoreMemory
	}
	if c.Driver == StoreSQLite && c.DSN == "" {
		c.DSN = "pickaxe.db"
	}
	return c
}
