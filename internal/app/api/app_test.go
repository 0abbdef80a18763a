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
	"bytes"
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"

	"metadata-platform/internal/app"
	"metadata-platform/pkg/config"
)

// appServer 按给定配置走完整装配链（Bootstrap → App → server），
// 存储全部落在 memory 实现上
func appServer(t *testing.T, cfg *config.Config) *server.Hertz {
	t.Helper()
	bs, err := app.NewBootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewBootstrap: %v", err)
	}
	t.Cleanup(func() { _ = bs.Close() })
	a, err := NewApp(bs)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return a.buildServer(":0")
}

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.CORS.Enable = true
	cfg.Monitoring.Prometheus.Enable = true
	return cfg
}

func TestApp_RateLimitDisabledByConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.API.Middleware.RateLimit = false
	cfg.API.Middleware.RateLimitRPS = 50
	cfg.API.Middleware.RateLimitBurst = 100
	s := appServer(t, cfg)

	for i := 0; i < 300; i++ {
		w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
		if got := w.Result().StatusCode(); got != 200 {
			t.Fatalf("request %d: status = %d, want 200", i, got)
		}
	}
}

func TestApp_RateLimitConfigOverride(t *testing.T) {
	cfg := baseConfig()
	cfg.API.Middleware.RateLimit = true
	cfg.API.Middleware.RateLimitRPS = 1
	cfg.API.Middleware.RateLimitBurst = 1
	s := appServer(t, cfg)

	w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("first request: status = %d, want 200", got)
	}
	w = ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 429 {
		t.Fatalf("second request: status = %d, want 429", got)
	}
}

func TestApp_MetricsEndpointDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Monitoring.Prometheus.Enable = false
	s := appServer(t, cfg)

	w := ut.PerformRequest(s.Engine, "GET", "/api/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 404 {
		t.Fatalf("metrics status = %d, want 404", got)
	}
	w = ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("health status = %d, want 200", got)
	}
}

func TestApp_CORSOriginAllowlist(t *testing.T) {
	cfg := baseConfig()
	cfg.API.CORS.AllowOrigins = []string{"https://editor.example.org"}
	s := appServer(t, cfg)

	w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "https://editor.example.org"})
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "https://editor.example.org" {
		t.Errorf("allowed origin: header = %q, want echo", got)
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "https://evil.example.org"})
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin: header = %q, want empty", got)
	}
}

func TestApp_CORSDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.API.CORS.Enable = false
	s := appServer(t, cfg)

	w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "http://localhost:5173"})
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("cors disabled: header = %q, want empty", got)
	}
}
