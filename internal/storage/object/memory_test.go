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

package object

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	pkgerrors "metadata-platform/pkg/errors"
)

func TestMemoryStore_RetainUploadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc := []byte(`<?xml version="1.0"?><resource/>`)
	meta := map[string]string{"filename": "record.xml", "scheme": "datacite"}
	if err := s.Put(ctx, "imports/u1.xml", bytes.NewReader(doc), int64(len(doc)), meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, err := s.Get(ctx, "imports/u1.xml")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if !bytes.Equal(b, doc) {
		t.Errorf("Get: got %q", string(b))
	}

	got, err := s.GetMetadata(ctx, "imports/u1.xml")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got["filename"] != "record.xml" || got["scheme"] != "datacite" {
		t.Errorf("metadata: %v", got)
	}

	if err := s.Delete(ctx, "imports/u1.xml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "imports/u1.xml"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, path := range []string{
		"exports/r1/r1-datacite.xml",
		"exports/r1/r1-dif.xml",
		"imports/u2.xml",
	} {
		if err := s.Put(ctx, path, bytes.NewReader([]byte("x")), 1, nil); err != nil {
			t.Fatalf("Put %s: %v", path, err)
		}
	}

	infos, err := s.List(ctx, "exports/r1/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List exports/r1/: got %d entries", len(infos))
	}
	for _, info := range infos {
		if info.Size != 1 {
			t.Errorf("size of %s: %d", info.Path, info.Size)
		}
	}

	ok, err := s.Exists(ctx, "imports/u2.xml")
	if err != nil || !ok {
		t.Errorf("Exists imports/u2.xml: %v %v", ok, err)
	}
}
