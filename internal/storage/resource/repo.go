package resource

import (
	"context"

	"github.com/google/uuid"

	"metadata-platform/pkg/tracing"
	"metadata-platform/pkg/utils"
)

// Repository 封装 Store，提供业务方法，供 handler 层复用
type Repository struct {
	store Store
}

// NewRepository 从 Store 创建 Repository
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// CreateResource 创建资源；ID 为空时生成 uuid
func (r *Repository) CreateResource(ctx context.Context, res *Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	ctx, span := tracing.StartStoreSpan(ctx, "create", res.ID)
	defer span.End()
	return r.store.Create(ctx, res)
}

// GetResource 按 ID 获取完整聚合
func (r *Repository) GetResource(ctx context.Context, id string) (*Resource, error) {
	ctx, span := tracing.StartStoreSpan(ctx, "get", id)
	defer span.End()
	return r.store.Get(ctx, id)
}

// UpdateResource 更新资源聚合
func (r *Repository) UpdateResource(ctx context.Context, res *Resource) error {
	ctx, span := tracing.StartStoreSpan(ctx, "update", res.ID)
	defer span.End()
	return r.store.Update(ctx, res)
}

// DeleteResource 按 ID 删除资源
func (r *Repository) DeleteResource(ctx context.Context, id string) error {
	ctx, span := tracing.StartStoreSpan(ctx, "delete", id)
	defer span.End()
	return r.store.Delete(ctx, id)
}

// ListResources 列出资源（默认分页 100）
func (r *Repository) ListResources(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Resource, error) {
	if pagination == nil {
		pagination = &Pagination{}
	}
	pagination.Limit = utils.DefaultInt(pagination.Limit, 100)
	return r.store.List(ctx, filter, pagination)
}

// CountResources 统计资源数
func (r *Repository) CountResources(ctx context.Context, filter *Filter) (int64, error) {
	return r.store.Count(ctx, filter)
}
