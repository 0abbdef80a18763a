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
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"metadata-platform/internal/api/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	handler    *Handler
	middleware *middleware.Middleware
	options    []config.Option
	noMetrics  bool
}

// NewRouter 创建路由器
func NewRouter(h *Handler, mw *middleware.Middleware, opts ...config.Option) *Router {
	return &Router{handler: h, middleware: mw, options: opts}
}

// WithoutMetrics 不注册 /api/metrics 暴露端点
func (r *Router) WithoutMetrics() *Router {
	r.noMetrics = true
	return r
}

// Build 创建 Hertz server 并注册全部路由
func (r *Router) Build(addr string) *server.Hertz {
	opts := append([]config.Option{server.WithHostPorts(addr)}, r.options...)
	s := server.Default(opts...)

	s.Use(
		r.middleware.Recovery(),
		r.middleware.CORS(),
		r.middleware.RequestLogging(),
		r.middleware.RateLimit(),
	)

	api := s.Group("/api")
	api.GET("/health", r.handler.Health)
	if !r.noMetrics {
		api.GET("/metrics", r.handler.Metrics)
	}

	v1 := api.Group("/v1")
	{
		v1.POST("/resources", r.handler.CreateResource)
		v1.GET("/resources", r.handler.ListResources)
		v1.POST("/resources/import", r.handler.ImportResource)
		v1.GET("/resources/:id", r.handler.GetResource)
		v1.PUT("/resources/:id", r.handler.UpdateResource)
		v1.DELETE("/resources/:id", r.handler.DeleteResource)
		v1.GET("/resources/:id/export", r.handler.ExportResourceBundle)
		v1.GET("/resources/:id/export/:scheme", r.handler.ExportResource)

		v1.GET("/vocab", r.handler.VocabNames)
		v1.GET("/vocab/:name", r.handler.Vocab)
	}

	return s
}
