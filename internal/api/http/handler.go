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

package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"metadata-platform/internal/export"
	"metadata-platform/internal/importer"
	"metadata-platform/internal/storage/resource"
	"metadata-platform/internal/validate"
	"metadata-platform/internal/vocab"
	pkgerrors "metadata-platform/pkg/errors"
	"metadata-platform/pkg/metrics"
)

// Handler 资源编辑器的 HTTP 处理器
type Handler struct {
	repo     *resource.Repository
	exporter *export.Exporter
	importer *importer.Importer
}

// NewHandler 创建 Handler
func NewHandler(repo *resource.Repository, exporter *export.Exporter, imp *importer.Importer) *Handler {
	return &Handler{repo: repo, exporter: exporter, importer: imp}
}

// Health 健康检查
// GET /api/health
func (h *Handler) Health(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// Metrics Prometheus 指标
// GET /api/metrics
func (h *Handler) Metrics(c context.Context, ctx *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		ctx.JSON(consts.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("failed to gather metrics: %v", err),
		})
		return
	}
	ctx.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// CreateResource 创建记录
// POST /api/v1/resources
func (h *Handler) CreateResource(c context.Context, ctx *app.RequestContext) {
	var res resource.Resource
	if err := ctx.BindJSON(&res); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	if err := validate.Resource(&res); err != nil {
		writeError(c, ctx, err)
		return
	}
	if err := h.repo.CreateResource(c, &res); err != nil {
		hlog.CtxErrorf(c, "failed to create resource: %v", err)
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, &res)
}

// ListResources 列出记录
// GET /api/v1/resources?search=&year=&type=&offset=&limit=
func (h *Handler) ListResources(c context.Context, ctx *app.RequestContext) {
	filter := &resource.Filter{
		Search:       ctx.Query("search"),
		ResourceType: ctx.Query("type"),
	}
	if year := ctx.Query("year"); year != "" {
		v, err := strconv.Atoi(year)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "year must be an integer"})
			return
		}
		filter.Year = v
	}
	pagination := &resource.Pagination{Offset: queryInt(ctx, "offset", 0), Limit: queryInt(ctx, "limit", 100)}

	items, err := h.repo.ListResources(c, filter, pagination)
	if err != nil {
		hlog.CtxErrorf(c, "failed to list resources: %v", err)
		writeError(c, ctx, err)
		return
	}
	total, err := h.repo.CountResources(c, filter)
	if err != nil {
		hlog.CtxErrorf(c, "failed to count resources: %v", err)
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"offset": pagination.Offset,
		"limit":  pagination.Limit,
	})
}

// GetResource 获取完整记录
// GET /api/v1/resources/:id
func (h *Handler) GetResource(c context.Context, ctx *app.RequestContext) {
	id := ctx.Param("id")
	res, err := h.repo.GetResource(c, id)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

// UpdateResource 整体更新记录
// PUT /api/v1/resources/:id
func (h *Handler) UpdateResource(c context.Context, ctx *app.RequestContext) {
	var res resource.Resource
	if err := ctx.BindJSON(&res); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	res.ID = ctx.Param("id")
	if err := validate.Resource(&res); err != nil {
		writeError(c, ctx, err)
		return
	}
	if err := h.repo.UpdateResource(c, &res); err != nil {
		hlog.CtxErrorf(c, "failed to update resource %s: %v", res.ID, err)
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, &res)
}

// DeleteResource 删除记录并清掉其导出缓存
// DELETE /api/v1/resources/:id
func (h *Handler) DeleteResource(c context.Context, ctx *app.RequestContext) {
	id := ctx.Param("id")
	if err := h.repo.DeleteResource(c, id); err != nil {
		writeError(c, ctx, err)
		return
	}
	if h.exporter != nil {
		if err := h.exporter.Invalidate(c, id); err != nil {
			hlog.CtxWarnf(c, "failed to invalidate export cache for %s: %v", id, err)
		}
	}
	ctx.SetStatusCode(consts.StatusNoContent)
}

// ExportResource 导出单个标准的 XML
// GET /api/v1/resources/:id/export/:scheme
func (h *Handler) ExportResource(c context.Context, ctx *app.RequestContext) {
	scheme, err := export.ParseScheme(ctx.Param("scheme"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	result, err := h.exporter.Export(c, ctx.Param("id"), scheme)
	if err != nil {
		hlog.CtxErrorf(c, "failed to export resource %s as %s: %v", ctx.Param("id"), scheme, err)
		writeError(c, ctx, err)
		return
	}
	writeAttachment(ctx, result)
}

// ExportResourceBundle 导出全部标准的 zip
// GET /api/v1/resources/:id/export
func (h *Handler) ExportResourceBundle(c context.Context, ctx *app.RequestContext) {
	result, err := h.exporter.ExportAll(c, ctx.Param("id"))
	if err != nil {
		hlog.CtxErrorf(c, "failed to export resource bundle %s: %v", ctx.Param("id"), err)
		writeError(c, ctx, err)
		return
	}
	writeAttachment(ctx, result)
}

// ImportResource 上传 XML 并返回解析出的记录（不落库，由编辑器确认后再保存）
// POST /api/v1/resources/import
func (h *Handler) ImportResource(c context.Context, ctx *app.RequestContext) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("failed to open upload: %v", err),
		})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("failed to read upload: %v", err),
		})
		return
	}

	res, err := h.importer.Import(c, fileHeader.Filename, data)
	if err != nil {
		hlog.CtxErrorf(c, "failed to import %s: %v", fileHeader.Filename, err)
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

// Vocab 受控词表
// GET /api/v1/vocab/:name
func (h *Handler) Vocab(c context.Context, ctx *app.RequestContext) {
	name := ctx.Param("name")
	terms, err := vocab.Lookup(name)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]interface{}{"name": name, "terms": terms})
}

// VocabNames 全部词表名称
// GET /api/v1/vocab
func (h *Handler) VocabNames(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]interface{}{"names": vocab.Names()})
}

func writeAttachment(ctx *app.RequestContext, result *export.Result) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	ctx.Data(consts.StatusOK, result.ContentType, result.Data)
}

// writeError 按错误类别映射状态码；校验错误附带字段明细
func writeError(c context.Context, ctx *app.RequestContext, err error) {
	var verrs pkgerrors.ValidationErrors
	if errors.As(err, &verrs) {
		ctx.JSON(consts.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verrs,
		})
		return
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		ctx.JSON(consts.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, pkgerrors.ErrInvalidArg):
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, pkgerrors.ErrConflict):
		ctx.JSON(consts.StatusConflict, map[string]string{"error": err.Error()})
	default:
		hlog.CtxErrorf(c, "internal error: %v", err)
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func queryInt(ctx *app.RequestContext, key string, def int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
