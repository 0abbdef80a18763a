// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"fmt"

	"metadata-platform/internal/storage/cache"
	"metadata-platform/internal/storage/object"
	"metadata-platform/internal/storage/resource"
	"metadata-platform/pkg/config"
	"metadata-platform/pkg/log"
	"metadata-platform/pkg/secrets"
)

// Bootstrap 统一初始化：日志与三类存储，供 api 与 cli 复用
type Bootstrap struct {
	Config        *config.Config
	Logger        *log.Logger
	ResourceStore resource.Store
	CacheStore    cache.Store
	ObjectStore   object.Store
}

// NewBootstrap 根据配置创建 Bootstrap（日志/资源库/缓存/对象存储）
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	logCfg := &log.Config{}
	if cfg != nil {
		logCfg.Level = cfg.Log.Level
		logCfg.Format = cfg.Log.Format
		logCfg.File = cfg.Log.File
	}
	logger, err := log.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	resourceCfg := config.ResourceConfig{}
	cacheCfg := config.CacheConfig{}
	objectCfg := config.ObjectConfig{}
	if cfg != nil {
		resourceCfg = cfg.Storage.Resource
		cacheCfg = cfg.Storage.Cache
		objectCfg = cfg.Storage.Object
	}

	// dsn_secret 指定时从 secret store 取真实 DSN，避免连接串落盘
	if resourceCfg.DSNSecret != "" {
		secretStore, err := newSecretStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("初始化 secret store 失败: %w", err)
		}
		dsn, err := secretStore.Get(ctx, resourceCfg.DSNSecret)
		if err != nil {
			return nil, fmt.Errorf("读取 DSN secret %s 失败: %w", resourceCfg.DSNSecret, err)
		}
		resourceCfg.DSN = dsn
	}

	resourceStore, err := resource.NewStore(ctx, resourceCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化资源存储失败: %w", err)
	}
	cacheStore, err := cache.NewCache(cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化缓存失败: %w", err)
	}
	objectStore, err := object.NewStore(objectCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化对象存储失败: %w", err)
	}

	return &Bootstrap{
		Config:        cfg,
		Logger:        logger,
		ResourceStore: resourceStore,
		CacheStore:    cacheStore,
		ObjectStore:   objectStore,
	}, nil
}

// Close 关闭全部存储连接
func (b *Bootstrap) Close() error {
	var firstErr error
	if b.ResourceStore != nil {
		if err := b.ResourceStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if b.CacheStore != nil {
		if err := b.CacheStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newSecretStore(cfg *config.Config) (secrets.Store, error) {
	if cfg == nil {
		return secrets.NewEnvStore(), nil
	}
	return secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Vault: secrets.VaultConfig{
			Address:    cfg.Secrets.Vault.Address,
			Token:      cfg.Secrets.Vault.Token,
			PathPrefix: cfg.Secrets.Vault.PathPrefix,
		},
	})
}
