package store

import (
	"fmt"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
)

// New 根据配置创建运行记录存储
func New(cfg config.StoreConfig) (Store, error) {
	cfg = cfg.WithDefaults()

	switch cfg.Driver {
	case config.StoreSQLite:
		return NewSQLiteStore(cfg.DSN)
	case config.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidStoreDriver, cfg.Driver)
	}
}
