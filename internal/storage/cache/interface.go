package cache

import (
	"context"
	"time"
)

// Store 缓存存储接口
type Store interface {
	// Set 设置缓存
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get 获取缓存；未命中返回包装了 errors.ErrNotFound 的错误
	Get(ctx context.Context, key string, dest interface{}) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix 删除指定前缀的全部缓存（资源删除时清掉各 scheme 的导出副本）
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Exists 检查缓存是否存在
	Exists(ctx context.Context, key string) (bool, error)
	// Clear 清除所有缓存
	Clear(ctx context.Context) error
	// Close 关闭缓存连接
	Close() error
}
