// Copyright 2026 fanjia1024
// Tests for tracing span helpers

package tracing

import (
	"context"
	"testing"
)

func TestInitTracer(t *testing.T) {
	tp, err := InitTracer(OTelConfig{
		ServiceName:    "metadata-api-test",
		ExportEndpoint: "localhost:4318",
		Insecure:       true,
	})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // 不等待批量导出，endpoint 并不存在
		_ = tp.Shutdown(ctx)
	}()

	ctx, span := StartExportSpan(context.Background(), "r1", "datacite")
	if !span.SpanContext().IsValid() {
		t.Fatal("export span context should be valid")
	}
	span.End()

	_, storeSpan := StartStoreSpan(ctx, "create", "r1")
	if !storeSpan.SpanContext().IsValid() {
		t.Fatal("store span context should be valid")
	}
	storeSpan.End()

	_, importSpan := StartImportSpan(ctx, "record.xml")
	if !importSpan.SpanContext().IsValid() {
		t.Fatal("import span context should be valid")
	}
	importSpan.End()
}
