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

package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"golang.org/x/time/rate"

	"metadata-platform/pkg/metrics"
)

// Middleware 中间件管理器
type Middleware struct {
	limiter     *rate.Limiter
	corsOff     bool
	corsOrigins []string
}

// NewMiddleware 创建中间件管理器，默认每秒 50 个请求、突发 100
func NewMiddleware() *Middleware {
	return &Middleware{
		limiter: rate.NewLimiter(rate.Limit(50), 100),
	}
}

// WithRateLimit 覆盖默认限流参数
func (m *Middleware) WithRateLimit(perSecond float64, burst int) *Middleware {
	m.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return m
}

// WithoutRateLimit 关闭限流
func (m *Middleware) WithoutRateLimit() *Middleware {
	m.limiter = nil
	return m
}

// WithCORSOrigins 限定允许的跨域来源；含 "*" 时等同于默认放行全部
func (m *Middleware) WithCORSOrigins(origins []string) *Middleware {
	m.corsOrigins = origins
	return m
}

// WithoutCORS 关闭跨域响应头
func (m *Middleware) WithoutCORS() *Middleware {
	m.corsOff = true
	return m
}

// CORS 跨域响应头；编辑器前端与 API 分开部署
func (m *Middleware) CORS() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if m.corsOff {
			ctx.Next(c)
			return
		}
		if origin, ok := m.allowOrigin(string(ctx.GetHeader("Origin"))); ok {
			ctx.Header("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				ctx.Header("Vary", "Origin")
			}
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
			ctx.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
			ctx.Header("Access-Control-Max-Age", "86400")
		}
		if string(ctx.Method()) == "OPTIONS" {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}

// allowOrigin 无白名单时放行全部，有白名单时回显命中的请求来源
func (m *Middleware) allowOrigin(requestOrigin string) (string, bool) {
	if len(m.corsOrigins) == 0 {
		return "*", true
	}
	for _, o := range m.corsOrigins {
		if o == "*" {
			return "*", true
		}
		if o == requestOrigin {
			return requestOrigin, true
		}
	}
	return "", false
}

// RequestLogging 记录请求并上报时延指标
func (m *Middleware) RequestLogging() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		elapsed := time.Since(start)

		method := string(ctx.Method())
		path := string(ctx.Path())
		status := ctx.Response.StatusCode()
		metrics.HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
		hlog.CtxInfof(c, "%s %s %d %s", method, path, status, elapsed)
	}
}

// Recovery 捕获 handler panic，返回 500 而不中断服务
func (m *Middleware) Recovery() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if r := recover(); r != nil {
				hlog.CtxErrorf(c, "panic recovered: %v", r)
				ctx.JSON(consts.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}
		}()
		ctx.Next(c)
	}
}

// RateLimit 令牌桶限流；limiter 为空时直通
func (m *Middleware) RateLimit() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if m.limiter == nil {
			ctx.Next(c)
			return
		}
		if !m.limiter.Allow() {
			ctx.AbortWithStatusJSON(consts.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
			return
		}
		ctx.Next(c)
	}
}
