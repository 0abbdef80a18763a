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

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"metadata-platform/pkg/utils"
)

func apiBaseURL() string {
	return utils.CoalesceString(os.Getenv("MDE_API_URL"), "http://localhost:8080")
}

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL()).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
}

func listResources(search string, limit int) (map[string]interface{}, error) {
	var out map[string]interface{}
	req := newClient().R().SetResult(&out)
	if search != "" {
		req.SetQueryParam("search", search)
	}
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}
	resp, err := req.Get("/api/v1/resources")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/v1/resources: %s", resp.String())
	}
	return out, nil
}

func getResource(id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := newClient().R().
		SetResult(&out).
		Get("/api/v1/resources/" + id)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/v1/resources/%s: %s", id, resp.String())
	}
	return out, nil
}

func createResource(body []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := newClient().R().
		SetBody(body).
		SetResult(&out).
		Post("/api/v1/resources")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("POST /api/v1/resources: %s", resp.String())
	}
	return out, nil
}

func deleteResource(id string) error {
	resp, err := newClient().R().Delete("/api/v1/resources/" + id)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("DELETE /api/v1/resources/%s: %s", id, resp.String())
	}
	return nil
}

// exportResource 下载单一标准的 XML；scheme 为空时下载三标准 zip 包
func exportResource(id, scheme string) (data []byte, filename string, err error) {
	path := "/api/v1/resources/" + id + "/export"
	if scheme != "" {
		path += "/" + scheme
	}
	resp, err := newClient().R().Get(path)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("GET %s: %s", path, resp.String())
	}
	filename = attachmentFilename(resp.Header().Get("Content-Disposition"))
	return resp.Body(), filename, nil
}

func importResource(path string) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := newClient().R().
		SetFile("file", path).
		SetResult(&out).
		Post("/api/v1/resources/import")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("POST import: %s", resp.String())
	}
	return out, nil
}

func getVocab(name string) (interface{}, error) {
	path := "/api/v1/vocab"
	if name != "" {
		path += "/" + name
	}
	var out interface{}
	resp, err := newClient().R().
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", path, resp.String())
	}
	return out, nil
}

// attachmentFilename 从 Content-Disposition 提取文件名；缺失时返回空串
func attachmentFilename(disposition string) string {
	const marker = `filename="`
	start := strings.Index(disposition, marker)
	if start < 0 {
		return ""
	}
	rest := disposition[start+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func prettyJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
