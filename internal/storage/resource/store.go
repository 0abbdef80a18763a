package resource

import (
	"context"
	"fmt"

	"metadata-platform/pkg/config"
)

// NewStore 根据配置创建资源存储（memory | postgres）
func NewStore(ctx context.Context, cfg config.ResourceConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("resource store type=postgres 需要 dsn")
		}
		return NewPostgresStore(ctx, cfg.DSN, cfg.PoolSize)
	default:
		return nil, fmt.Errorf("不支持的资源存储类型: %s", cfg.Type)
	}
}
