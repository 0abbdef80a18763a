package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"metadata-platform/internal/storage/cache"
	"metadata-platform/internal/storage/object"
	"metadata-platform/internal/storage/resource"
	"metadata-platform/pkg/config"
	pkgerrors "metadata-platform/pkg/errors"
)

func newTestExporter(t *testing.T, cfg config.ExportConfig) (*Exporter, *resource.Repository, object.Store) {
	t.Helper()
	store := resource.NewMemoryStore()
	repo := resource.NewRepository(store)
	objects := object.NewMemoryStore()
	e := NewExporter(repo, cache.NewMemoryStore(), objects, cfg)

	if err := repo.CreateResource(context.Background(), testResource()); err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	return e, repo, objects
}

func TestParseScheme(t *testing.T) {
	cases := []struct {
		in   string
		want Scheme
		ok   bool
	}{
		{"datacite", SchemeDataCite, true},
		{"iso19115", SchemeISO, true},
		{"iso19139", SchemeISO, true},
		{"iso", SchemeISO, true},
		{"dif", SchemeDIF, true},
		{"marc21", "", false},
	}
	for _, c := range cases {
		got, err := ParseScheme(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseScheme(%q) = %v, %v", c.in, got, err)
		}
		if !c.ok && !errors.Is(err, pkgerrors.ErrInvalidArg) {
			t.Errorf("ParseScheme(%q): err = %v, want ErrInvalidArg", c.in, err)
		}
	}
}

func TestExporter_Export(t *testing.T) {
	e, _, _ := newTestExporter(t, config.ExportConfig{})
	ctx := context.Background()

	res, err := e.Export(ctx, "a4b1c2d3", SchemeDataCite)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Filename != "a4b1c2d3-datacite.xml" {
		t.Errorf("filename: %s", res.Filename)
	}
	if res.ContentType != "application/xml" {
		t.Errorf("content type: %s", res.ContentType)
	}
	if !strings.Contains(string(res.Data), "<identifier identifierType=\"DOI\">") {
		t.Error("data is not DataCite XML")
	}
}

func TestExporter_Export_NotFound(t *testing.T) {
	e, _, _ := newTestExporter(t, config.ExportConfig{})
	_, err := e.Export(context.Background(), "missing", SchemeDataCite)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExporter_CacheServesSecondExport(t *testing.T) {
	e, _, _ := newTestExporter(t, config.ExportConfig{CacheTTL: "1h"})
	ctx := context.Background()

	first, err := e.Export(ctx, "a4b1c2d3", SchemeDIF)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	second, err := e.Export(ctx, "a4b1c2d3", SchemeDIF)
	if err != nil {
		t.Fatalf("Export (cached): %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("cached export differs from rendered export")
	}
}

func TestExporter_CacheInvalidatedByUpdate(t *testing.T) {
	e, repo, _ := newTestExporter(t, config.ExportConfig{CacheTTL: "1h"})
	ctx := context.Background()

	first, err := e.Export(ctx, "a4b1c2d3", SchemeDataCite)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	res, err := repo.GetResource(ctx, "a4b1c2d3")
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	res.Titles[0].Text = "Renamed catalogue"
	if err := repo.UpdateResource(ctx, res); err != nil {
		t.Fatalf("UpdateResource: %v", err)
	}

	// updatedAt 进缓存键，更新后导出必然重渲染
	second, err := e.Export(ctx, "a4b1c2d3", SchemeDataCite)
	if err != nil {
		t.Fatalf("Export after update: %v", err)
	}
	if bytes.Equal(first.Data, second.Data) {
		t.Error("export after update still serves stale content")
	}
	if !strings.Contains(string(second.Data), "Renamed catalogue") {
		t.Error("export after update missing new title")
	}
}

func TestExporter_KeepCopiesWritesObjectStore(t *testing.T) {
	e, _, objects := newTestExporter(t, config.ExportConfig{KeepCopies: true})
	ctx := context.Background()

	if _, err := e.Export(ctx, "a4b1c2d3", SchemeISO); err != nil {
		t.Fatalf("Export: %v", err)
	}
	rc, err := objects.Get(ctx, "exports/a4b1c2d3/a4b1c2d3-iso19115.xml")
	if err != nil {
		t.Fatalf("object store copy missing: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(b), "<gmd:MD_Metadata") {
		t.Error("object store copy is not ISO XML")
	}
}

func TestExporter_ExportAll(t *testing.T) {
	e, _, _ := newTestExporter(t, config.ExportConfig{})
	res, err := e.ExportAll(context.Background(), "a4b1c2d3")
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if res.ContentType != "application/zip" {
		t.Errorf("content type: %s", res.ContentType)
	}

	zr, err := zip.NewReader(bytes.NewReader(res.Data), int64(len(res.Data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"a4b1c2d3-datacite.xml", "a4b1c2d3-iso19115.xml", "a4b1c2d3-dif.xml"} {
		if !names[want] {
			t.Errorf("zip missing %s, got %v", want, names)
		}
	}
}

func TestExporter_ExportAll_MandatoryFailureAborts(t *testing.T) {
	store := resource.NewMemoryStore()
	repo := resource.NewRepository(store)
	e := NewExporter(repo, nil, nil, config.ExportConfig{})

	r := testResource()
	r.Titles = nil
	if err := store.Create(context.Background(), r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.ExportAll(context.Background(), r.ID); !errors.Is(err, pkgerrors.ErrInvalidArg) {
		t.Errorf("err = %v, want ErrInvalidArg", err)
	}
}
