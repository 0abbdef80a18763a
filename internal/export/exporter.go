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

// Package export 把规范化的数据集记录渲染为三种元数据标准的 XML。
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"

	"metadata-platform/internal/storage/cache"
	"metadata-platform/internal/storage/object"
	"metadata-platform/internal/storage/resource"
	"metadata-platform/pkg/config"
	pkgerrors "metadata-platform/pkg/errors"
	"metadata-platform/pkg/metrics"
	"metadata-platform/pkg/tracing"
	"metadata-platform/pkg/utils"
)

// Scheme 导出标准
type Scheme string

const (
	SchemeDataCite Scheme = "datacite"
	SchemeISO      Scheme = "iso19115"
	SchemeDIF      Scheme = "dif"
)

// Schemes 全部支持的标准，顺序即 zip 内文件顺序
var Schemes = []Scheme{SchemeDataCite, SchemeISO, SchemeDIF}

// ParseScheme 解析路径参数里的标准名，容忍常见别名
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "datacite", "datacite4":
		return SchemeDataCite, nil
	case "iso19115", "iso19139", "iso":
		return SchemeISO, nil
	case "dif", "dif10":
		return SchemeDIF, nil
	default:
		return "", pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "unknown export scheme %q", s)
	}
}

const defaultCacheTTL = 10 * time.Minute

// Result 单次导出的产物
type Result struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Exporter 导出前门：渲染、缓存、可选落盘
type Exporter struct {
	repo       *resource.Repository
	cache      cache.Store
	objects    object.Store
	cacheTTL   time.Duration
	keepCopies bool
}

// NewExporter 创建 Exporter；cache 与 objects 可为 nil，分别关闭缓存与落盘
func NewExporter(repo *resource.Repository, cacheStore cache.Store, objects object.Store, cfg config.ExportConfig) *Exporter {
	ttl := defaultCacheTTL
	if cfg.CacheTTL != "" {
		if parsed, err := time.ParseDuration(cfg.CacheTTL); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return &Exporter{
		repo:       repo,
		cache:      cacheStore,
		objects:    objects,
		cacheTTL:   ttl,
		keepCopies: cfg.KeepCopies,
	}
}

// Render 把一条记录渲染为指定标准的 XML 文本
func Render(r *resource.Resource, scheme Scheme) ([]byte, error) {
	var doc interface{}
	var err error
	switch scheme {
	case SchemeDataCite:
		doc, err = BuildDataCite(r)
	case SchemeISO:
		doc, err = BuildISO(r)
	case SchemeDIF:
		doc, err = BuildDIF(r)
	default:
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "unknown export scheme %q", scheme)
	}
	if err != nil {
		return nil, err
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s document: %w", scheme, err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Export 渲染一种标准；结果按 export:<id>:<scheme>:<updatedAt> 缓存，
// updatedAt 进键后旧版本自然失效，无需显式清缓存
func (e *Exporter) Export(ctx context.Context, id string, scheme Scheme) (*Result, error) {
	ctx, span := tracing.StartExportSpan(ctx, id, string(scheme))
	defer span.End()

	start := time.Now()
	res, err := e.repo.GetResource(ctx, id)
	if err != nil {
		metrics.ExportTotal.WithLabelValues(string(scheme), "error").Inc()
		return nil, err
	}

	filename := fmt.Sprintf("%s-%s.xml", utils.SanitizeFilename(id), scheme)
	key := fmt.Sprintf("export:%s:%s:%d", id, scheme, res.UpdatedAt)

	if e.cache != nil {
		var cached []byte
		if err := e.cache.Get(ctx, key, &cached); err == nil {
			metrics.CacheHitTotal.WithLabelValues("hit").Inc()
			metrics.ExportTotal.WithLabelValues(string(scheme), "success").Inc()
			return &Result{Filename: filename, ContentType: "application/xml", Data: cached}, nil
		}
		metrics.CacheHitTotal.WithLabelValues("miss").Inc()
	}

	data, err := Render(res, scheme)
	if err != nil {
		metrics.ExportTotal.WithLabelValues(string(scheme), "error").Inc()
		return nil, err
	}
	metrics.ExportDuration.WithLabelValues(string(scheme)).Observe(time.Since(start).Seconds())
	metrics.ExportTotal.WithLabelValues(string(scheme), "success").Inc()

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, data, e.cacheTTL); err != nil {
			hlog.CtxWarnf(ctx, "failed to cache export result: %v", err)
		}
	}
	if e.keepCopies && e.objects != nil {
		path := fmt.Sprintf("exports/%s/%s", utils.SanitizeFilename(id), filename)
		meta := map[string]string{"scheme": string(scheme), "resource_id": id}
		if err := e.objects.Put(ctx, path, bytes.NewReader(data), int64(len(data)), meta); err != nil {
			hlog.CtxWarnf(ctx, "failed to store export copy: %v", err)
		}
	}

	return &Result{Filename: filename, ContentType: "application/xml", Data: data}, nil
}

// Invalidate 清掉一条记录全部标准的缓存副本，删除记录时调用
func (e *Exporter) Invalidate(ctx context.Context, id string) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.DeleteByPrefix(ctx, fmt.Sprintf("export:%s:", id))
}

// ExportAll 并发渲染全部标准并打包为 zip
func (e *Exporter) ExportAll(ctx context.Context, id string) (*Result, error) {
	results := make(map[Scheme]*Result, len(Schemes))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, scheme := range Schemes {
		g.Go(func() error {
			r, err := e.Export(gctx, id, scheme)
			if err != nil {
				return err
			}
			mu.Lock()
			results[scheme] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, scheme := range Schemes {
		r := results[scheme]
		w, err := zw.Create(r.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %s: %w", r.Filename, err)
		}
		if _, err := w.Write(r.Data); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", r.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}

	return &Result{
		Filename:    fmt.Sprintf("%s-metadata.zip", utils.SanitizeFilename(id)),
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}
