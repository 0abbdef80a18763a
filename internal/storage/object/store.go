package object

import (
	"fmt"

	"metadata-platform/pkg/config"
)

// NewStore 根据配置创建对象存储
func NewStore(cfg config.ObjectConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "fs":
		return NewFSStore(cfg.BaseDir)
	default:
		return nil, fmt.Errorf("unsupported object store type: %s", cfg.Type)
	}
}
