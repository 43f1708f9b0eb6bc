package store

import "fmt"

// New creates a TaskStore based on the configuration.
func New(cfg Config) (TaskStore, error) {
	switch cfg.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		return NewRedisStore(cfg.Redis)
	case StoreTypeSQLite:
		return NewSQLiteStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported task store type: %s", cfg.Type)
	}
}
