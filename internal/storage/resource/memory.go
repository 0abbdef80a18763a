package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"metadata-platform/pkg/errors"
)

// MemoryStore 内存资源存储实现（测试与单机模式）
type MemoryStore struct {
	resources map[string]*Resource
	mu        sync.RWMutex
}

// NewMemoryStore 创建新的内存资源存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]*Resource),
	}
}

// Create 创建资源聚合
func (s *MemoryStore) Create(ctx context.Context, res *Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[res.ID]; exists {
		return errors.Wrapf(errors.ErrConflict, "resource %s", res.ID)
	}

	now := time.Now().Unix()
	res.CreatedAt = now
	res.UpdatedAt = now

	cp := cloneResource(res)
	s.resources[res.ID] = cp
	return nil
}

// Get 根据 ID 获取完整聚合
func (s *MemoryStore) Get(ctx context.Context, id string) (*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, exists := s.resources[id]
	if !exists {
		return nil, errors.Wrapf(errors.ErrNotFound, "resource %s", id)
	}
	return cloneResource(res), nil
}

// Update 更新资源聚合，子记录整体重写
func (s *MemoryStore) Update(ctx context.Context, res *Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.resources[res.ID]
	if !exists {
		return errors.Wrapf(errors.ErrNotFound, "resource %s", res.ID)
	}

	res.CreatedAt = old.CreatedAt
	res.UpdatedAt = time.Now().Unix()
	if res.UpdatedAt <= old.UpdatedAt {
		// 同秒内的连续更新仍须推进 UpdatedAt，导出缓存键依赖它
		res.UpdatedAt = old.UpdatedAt + 1
	}
	s.resources[res.ID] = cloneResource(res)
	return nil
}

// Delete 根据 ID 删除资源
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[id]; !exists {
		return errors.Wrapf(errors.ErrNotFound, "resource %s", id)
	}
	delete(s.resources, id)
	return nil
}

// List 列出资源，按 CreatedAt 降序
func (s *MemoryStore) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Resource
	for _, res := range s.resources {
		if matchFilter(res, filter) {
			results = append(results, cloneResource(res))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt != results[j].CreatedAt {
			return results[i].CreatedAt > results[j].CreatedAt
		}
		return results[i].ID < results[j].ID
	})

	if pagination != nil {
		start := pagination.Offset
		if start > len(results) {
			start = len(results)
		}
		end := len(results)
		if pagination.Limit > 0 && start+pagination.Limit < end {
			end = start + pagination.Limit
		}
		results = results[start:end]
	}
	return results, nil
}

// Count 统计资源数量
func (s *MemoryStore) Count(ctx context.Context, filter *Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, res := range s.resources {
		if matchFilter(res, filter) {
			n++
		}
	}
	return n, nil
}

// Close 关闭存储连接
func (s *MemoryStore) Close() error {
	return nil
}

// matchFilter 过滤：search 对标题/DOI/作者姓氏模糊匹配
func matchFilter(res *Resource, filter *Filter) bool {
	if filter == nil {
		return true
	}
	if filter.Year != 0 && res.PublicationYear != filter.Year {
		return false
	}
	if filter.ResourceType != "" && res.ResourceType != filter.ResourceType {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if strings.Contains(strings.ToLower(res.DOI), needle) {
			return true
		}
		for _, t := range res.Titles {
			if strings.Contains(strings.ToLower(t.Text), needle) {
				return true
			}
		}
		for _, a := range res.Authors {
			if strings.Contains(strings.ToLower(a.FamilyName), needle) {
				return true
			}
		}
		return false
	}
	return true
}

// cloneResource 深拷贝聚合，避免调用方修改内部状态
func cloneResource(res *Resource) *Resource {
	cp := *res
	cp.Titles = append([]Title(nil), res.Titles...)
	cp.Licenses = append([]License(nil), res.Licenses...)
	cp.Descriptions = append([]Description(nil), res.Descriptions...)
	cp.Authors = make([]Author, len(res.Authors))
	for i, a := range res.Authors {
		cp.Authors[i] = a
		cp.Authors[i].Affiliations = append([]Affiliation(nil), a.Affiliations...)
	}
	cp.Contributors = make([]Contributor, len(res.Contributors))
	for i, c := range res.Contributors {
		cp.Contributors[i] = c
		cp.Contributors[i].Roles = append([]string(nil), c.Roles...)
		cp.Contributors[i].Affiliations = append([]Affiliation(nil), c.Affiliations...)
	}
	cp.ContactPersons = append([]ContactPerson(nil), res.ContactPersons...)
	cp.Laboratories = append([]Laboratory(nil), res.Laboratories...)
	cp.Keywords = append([]Keyword(nil), res.Keywords...)
	cp.Coverages = make([]Coverage, len(res.Coverages))
	for i, cov := range res.Coverages {
		cp.Coverages[i] = cov
		cp.Coverages[i].LatMin = cloneFloat(cov.LatMin)
		cp.Coverages[i].LatMax = cloneFloat(cov.LatMax)
		cp.Coverages[i].LonMin = cloneFloat(cov.LonMin)
		cp.Coverages[i].LonMax = cloneFloat(cov.LonMax)
	}
	cp.RelatedWorks = append([]RelatedWork(nil), res.RelatedWorks...)
	cp.FundingReferences = append([]FundingReference(nil), res.FundingReferences...)
	return &cp
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

var _ Store = (*MemoryStore)(nil)

// String 调试输出
func (s *MemoryStore) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("MemoryStore(%d resources)", len(s.resources))
}
