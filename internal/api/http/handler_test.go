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
	"encoding/json"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"

	"metadata-platform/internal/api/http/middleware"
	"metadata-platform/internal/export"
	"metadata-platform/internal/importer"
	"metadata-platform/internal/storage/cache"
	"metadata-platform/internal/storage/object"
	"metadata-platform/internal/storage/resource"
	"metadata-platform/pkg/config"
)

func buildTestServer(t *testing.T) (*server.Hertz, *resource.Repository) {
	t.Helper()
	store := resource.NewMemoryStore()
	repo := resource.NewRepository(store)
	exporter := export.NewExporter(repo, cache.NewMemoryStore(), object.NewMemoryStore(), config.ExportConfig{})
	imp := importer.NewImporter(object.NewMemoryStore())

	h := NewHandler(repo, exporter, imp)
	r := NewRouter(h, middleware.NewMiddleware())
	return r.Build(":0"), repo
}

func resourceBody(t *testing.T) []byte {
	t.Helper()
	res := &resource.Resource{
		DOI:             "10.5880/GFZ.1.1.2020.001",
		Publisher:       "GFZ Data Services",
		PublicationYear: 2020,
		ResourceType:    "Dataset",
		Titles: []resource.Title{
			{Text: "Seismic catalogue of northern Chile", Type: "main"},
		},
		Authors: []resource.Author{
			{FamilyName: "Mustermann", GivenName: "Erika", ORCID: "0000-0002-1825-0097"},
		},
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func performJSON(s *server.Hertz, method, path string, body []byte) *ut.ResponseRecorder {
	return ut.PerformRequest(s.Engine, method, path,
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
}

func TestHandler_Health(t *testing.T) {
	s, _ := buildTestServer(t)
	w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("GET /api/health status = %d, want 200", got)
	}
}

func TestHandler_Metrics(t *testing.T) {
	s, _ := buildTestServer(t)
	w := ut.PerformRequest(s.Engine, "GET", "/api/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("GET /api/metrics status = %d, want 200", got)
	}
}

func TestHandler_CreateGetRoundTrip(t *testing.T) {
	s, _ := buildTestServer(t)

	w := performJSON(s, "POST", "/api/v1/resources", resourceBody(t))
	if got := w.Result().StatusCode(); got != 201 {
		t.Fatalf("POST /api/v1/resources status = %d, body %s", got, w.Result().Body())
	}
	var created resource.Resource
	if err := json.Unmarshal(w.Result().Body(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create response missing generated id")
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/v1/resources/"+created.ID, &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("GET resource status = %d", got)
	}
	var fetched resource.Resource
	if err := json.Unmarshal(w.Result().Body(), &fetched); err != nil {
		t.Fatalf("unmarshal get response: %v", err)
	}
	if fetched.DOI != "10.5880/GFZ.1.1.2020.001" {
		t.Errorf("fetched DOI: %s", fetched.DOI)
	}
}

func TestHandler_CreateValidationFailure(t *testing.T) {
	s, _ := buildTestServer(t)

	body := []byte(`{"publication_year": 12, "resource_type": "Dataset"}`)
	w := performJSON(s, "POST", "/api/v1/resources", body)
	if got := w.Result().StatusCode(); got != 400 {
		t.Fatalf("status = %d, want 400", got)
	}
	respBody := w.Result().Body()
	if !bytes.Contains(respBody, []byte(`"fields"`)) {
		t.Fatalf("response missing field details: %s", respBody)
	}
	if !bytes.Contains(respBody, []byte(`publication_year`)) {
		t.Fatalf("response missing violating field path: %s", respBody)
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	s, _ := buildTestServer(t)
	w := ut.PerformRequest(s.Engine, "GET", "/api/v1/resources/missing", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 404 {
		t.Fatalf("status = %d, want 404", got)
	}
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	s, repo := buildTestServer(t)

	w := performJSON(s, "POST", "/api/v1/resources", resourceBody(t))
	var created resource.Resource
	if err := json.Unmarshal(w.Result().Body(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	created.Titles[0].Text = "Renamed catalogue"
	body, _ := json.Marshal(&created)
	w = performJSON(s, "PUT", "/api/v1/resources/"+created.ID, body)
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("PUT status = %d, body %s", got, w.Result().Body())
	}

	updated, err := repo.GetResource(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if updated.MainTitle() != "Renamed catalogue" {
		t.Errorf("title after update: %s", updated.MainTitle())
	}

	w = ut.PerformRequest(s.Engine, "DELETE", "/api/v1/resources/"+created.ID, &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 204 {
		t.Fatalf("DELETE status = %d", got)
	}
	if _, err := repo.GetResource(context.Background(), created.ID); err == nil {
		t.Error("resource still present after delete")
	}
}

func TestHandler_List(t *testing.T) {
	s, _ := buildTestServer(t)

	for i := 0; i < 3; i++ {
		w := performJSON(s, "POST", "/api/v1/resources", resourceBody(t))
		if got := w.Result().StatusCode(); got != 201 {
			t.Fatalf("seed %d status = %d", i, got)
		}
	}

	w := ut.PerformRequest(s.Engine, "GET", "/api/v1/resources?limit=2", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("GET list status = %d", got)
	}
	var listResp struct {
		Items []resource.Resource `json:"items"`
		Total int64               `json:"total"`
	}
	if err := json.Unmarshal(w.Result().Body(), &listResp); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listResp.Items) != 2 || listResp.Total != 3 {
		t.Errorf("list: items=%d total=%d", len(listResp.Items), listResp.Total)
	}
}

func TestHandler_ExportScheme(t *testing.T) {
	s, _ := buildTestServer(t)

	w := performJSON(s, "POST", "/api/v1/resources", resourceBody(t))
	var created resource.Resource
	if err := json.Unmarshal(w.Result().Body(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/v1/resources/"+created.ID+"/export/datacite", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	result := w.Result()
	if got := result.StatusCode(); got != 200 {
		t.Fatalf("export status = %d, body %s", got, result.Body())
	}
	if ct := string(result.Header.ContentType()); ct != "application/xml" {
		t.Errorf("content type: %s", ct)
	}
	if disp := result.Header.Get("Content-Disposition"); disp == "" {
		t.Error("missing Content-Disposition")
	}
	if !bytes.Contains(result.Body(), []byte(`xmlns="http://datacite.org/schema/kernel-4"`)) {
		t.Error("body is not DataCite XML")
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/v1/resources/"+created.ID+"/export/marc21", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 400 {
		t.Fatalf("unknown scheme status = %d, want 400", got)
	}
}

func TestHandler_ExportBundle(t *testing.T) {
	s, _ := buildTestServer(t)

	w := performJSON(s, "POST", "/api/v1/resources", resourceBody(t))
	var created resource.Resource
	if err := json.Unmarshal(w.Result().Body(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/v1/resources/"+created.ID+"/export", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	result := w.Result()
	if got := result.StatusCode(); got != 200 {
		t.Fatalf("bundle status = %d", got)
	}
	if ct := string(result.Header.ContentType()); ct != "application/zip" {
		t.Errorf("content type: %s", ct)
	}
	// zip 魔数
	if body := result.Body(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("body is not a zip archive")
	}
}

func TestHandler_Import(t *testing.T) {
	s, _ := buildTestServer(t)

	xmlDoc := `<?xml version="1.0" encoding="UTF-8"?>
<resource xmlns="http://datacite.org/schema/kernel-4">
  <identifier identifierType="DOI">10.5880/GFZ.1.1.2020.001</identifier>
  <creators><creator><creatorName>Mustermann, Erika</creatorName></creator></creators>
  <titles><title>Seismic catalogue</title></titles>
  <publisher>GFZ Data Services</publisher>
  <publicationYear>2020</publicationYear>
  <resourceType resourceTypeGeneral="Dataset">Dataset</resourceType>
</resource>`

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "record.xml")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fmt.Fprint(fw, xmlDoc)
	mw.Close()

	w := ut.PerformRequest(s.Engine, "POST", "/api/v1/resources/import",
		&ut.Body{Body: bytes.NewReader(buf.Bytes()), Len: buf.Len()},
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("import status = %d, body %s", got, w.Result().Body())
	}
	var parsed resource.Resource
	if err := json.Unmarshal(w.Result().Body(), &parsed); err != nil {
		t.Fatalf("unmarshal import response: %v", err)
	}
	if parsed.DOI != "10.5880/GFZ.1.1.2020.001" || len(parsed.Authors) != 1 {
		t.Errorf("parsed record: %+v", parsed)
	}
}

func TestHandler_Vocab(t *testing.T) {
	s, _ := buildTestServer(t)

	w := ut.PerformRequest(s.Engine, "GET", "/api/v1/vocab/relation_types", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("vocab status = %d", got)
	}
	if !bytes.Contains(w.Result().Body(), []byte("IsCitedBy")) {
		t.Error("vocab response missing IsCitedBy")
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/v1/vocab/colors", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 404 {
		t.Fatalf("unknown vocab status = %d, want 404", got)
	}

	w = ut.PerformRequest(s.Engine, "GET", "/api/v1/vocab", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	if got := w.Result().StatusCode(); got != 200 {
		t.Fatalf("vocab names status = %d", got)
	}
}
