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

package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"metadata-platform/internal/api/http"
	"metadata-platform/internal/api/http/middleware"
	"metadata-platform/internal/app"
	"metadata-platform/internal/export"
	"metadata-platform/internal/importer"
	"metadata-platform/internal/storage/resource"
	"metadata-platform/pkg/config"
	"metadata-platform/pkg/utils"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配 Repository、Exporter、Importer 与 HTTP Router）
type App struct {
	bootstrap    *app.Bootstrap
	repo         *resource.Repository
	exporter     *export.Exporter
	handler      *http.Handler
	middleware   *middleware.Middleware
	hertz        *server.Hertz
	otelProvider otelProviderShutdown
}

// NewApp 创建 API 应用（由 cmd/api 调用）
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	if bootstrap == nil {
		return nil, fmt.Errorf("bootstrap 不能为空")
	}

	repo := resource.NewRepository(bootstrap.ResourceStore)

	exportCfg := config.ExportConfig{}
	if bootstrap.Config != nil {
		exportCfg = bootstrap.Config.Export
	}
	exporter := export.NewExporter(repo, bootstrap.CacheStore, bootstrap.ObjectStore, exportCfg)
	imp := importer.NewImporter(bootstrap.ObjectStore)

	handler := http.NewHandler(repo, exporter, imp)
	mw := middleware.NewMiddleware()
	if bootstrap.Config != nil {
		ac := bootstrap.Config.API
		if !ac.Middleware.RateLimit {
			mw = mw.WithoutRateLimit()
		} else if ac.Middleware.RateLimitRPS > 0 && ac.Middleware.RateLimitBurst > 0 {
			mw = mw.WithRateLimit(float64(ac.Middleware.RateLimitRPS), ac.Middleware.RateLimitBurst)
		}
		if !ac.CORS.Enable {
			mw = mw.WithoutCORS()
		} else if len(ac.CORS.AllowOrigins) > 0 {
			mw = mw.WithCORSOrigins(ac.CORS.AllowOrigins)
		}
	}
	return &App{
		bootstrap:  bootstrap,
		repo:       repo,
		exporter:   exporter,
		handler:    handler,
		middleware: mw,
	}, nil
}

// Run 启动 HTTP 服务，addr 如 ":8080"
func (a *App) Run(addr string) error {
	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)

	// 使用 Hertz slog 扩展，与 bootstrap 日志配置对齐
	output := os.Stdout
	if a.bootstrap.Config != nil && a.bootstrap.Config.Log.File != "" {
		f, err := os.OpenFile(a.bootstrap.Config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		output = f
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.LevelInfo)
	if a.bootstrap.Config != nil {
		switch a.bootstrap.Config.Log.Level {
		case "debug":
			levelVar.Set(slog.LevelDebug)
		case "warn":
			levelVar.Set(slog.LevelWarn)
		case "error":
			levelVar.Set(slog.LevelError)
		}
	}
	hertzLogger := hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	)
	hlog.SetLogger(hertzLogger)

	a.hertz = a.buildServer(addr)
	return a.hertz.Run()
}

// buildServer 按配置装配 Hertz server：超时、链路追踪、指标端点开关
func (a *App) buildServer(addr string) *server.Hertz {
	var opts []hertzconfig.Option
	var tracerCfg *hertztracing.Config

	cfg := a.bootstrap.Config
	if cfg != nil && cfg.API.Timeout != "" {
		if d, err := time.ParseDuration(cfg.API.Timeout); err == nil {
			opts = append(opts, server.WithReadTimeout(d))
		} else {
			a.bootstrap.Logger.Warn("api.timeout 配置无效，忽略", "timeout", cfg.API.Timeout)
		}
	}

	// 可选：启用链路追踪（OpenTelemetry）
	if cfg != nil && cfg.Monitoring.Tracing.Enable {
		tc := cfg.Monitoring.Tracing
		serviceName := utils.CoalesceString(tc.ServiceName, "metadata-api")
		exportEndpoint := utils.CoalesceString(tc.ExportEndpoint, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
		if exportEndpoint != "" {
			provOpts := []provider.Option{
				provider.WithServiceName(serviceName),
				provider.WithExportEndpoint(exportEndpoint),
			}
			if tc.Insecure {
				provOpts = append(provOpts, provider.WithInsecure())
			}
			a.otelProvider = provider.NewOpenTelemetryProvider(provOpts...)
			tracerOpt, tcfg := hertztracing.NewServerTracer()
			opts = append(opts, tracerOpt)
			tracerCfg = tcfg
			a.bootstrap.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint)
		}
	}

	router := http.NewRouter(a.handler, a.middleware, opts...)
	if cfg != nil && !cfg.Monitoring.Prometheus.Enable {
		router = router.WithoutMetrics()
	}
	s := router.Build(addr)
	if tracerCfg != nil {
		s.Use(hertztracing.ServerMiddleware(tracerCfg))
	}
	return s
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	return a.bootstrap.Close()
}
