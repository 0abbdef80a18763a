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

package object

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "metadata-platform/pkg/errors"
)

const metaSuffix = ".meta.json"

// FSStore 本地文件系统对象存储实现，元数据写入同名 sidecar 文件
type FSStore struct {
	baseDir string
}

// NewFSStore 创建文件系统对象存储，根目录不存在时创建
func NewFSStore(baseDir string) (*FSStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("object store base_dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object store dir %s: %w", baseDir, err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// resolve 将对象路径映射到根目录下的文件路径，拒绝越界路径
func (s *FSStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("invalid object path: %s", path)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// Put 上传对象
func (s *FSStore) Put(ctx context.Context, path string, data io.Reader, size int64, metadata map[string]string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create object file %s: %w", path, err)
	}
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close object file %s: %w", path, err)
	}

	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal object metadata: %w", err)
		}
		if err := os.WriteFile(full+metaSuffix, raw, 0o644); err != nil {
			return fmt.Errorf("failed to write object metadata %s: %w", path, err)
		}
	}
	return nil
}

// Get 下载对象
func (s *FSStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "object with path %s", path)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", path, err)
	}
	return f, nil
}

// Delete 删除对象及其元数据
func (s *FSStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "object with path %s", path)
		}
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	_ = os.Remove(full + metaSuffix)
	return nil
}

// List 列出对象
func (s *FSStore) List(ctx context.Context, prefix string) ([]*ObjectInfo, error) {
	var results []*ObjectInfo
	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		meta, _ := s.readMeta(p)
		results = append(results, &ObjectInfo{
			Path:      rel,
			Size:      info.Size(),
			Metadata:  meta,
			CreatedAt: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return results, nil
}

// Exists 检查对象是否存在
func (s *FSStore) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return true, nil
}

// GetMetadata 获取对象元数据
func (s *FSStore) GetMetadata(ctx context.Context, path string) (map[string]string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "object with path %s", path)
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	meta, err := s.readMeta(full)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *FSStore) readMeta(full string) (map[string]string, error) {
	raw, err := os.ReadFile(full + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read object metadata: %w", err)
	}
	var meta map[string]string
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal object metadata: %w", err)
	}
	return meta, nil
}

// Close 关闭存储连接
func (s *FSStore) Close() error {
	return nil
}
