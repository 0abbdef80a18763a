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

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	return s
}

func TestFSStore_Put_Get_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestFSStore(t)

	if err := s.Put(ctx, "exports/r1/datacite.xml", bytes.NewReader([]byte("<resource/>")), 11, map[string]string{"scheme": "datacite"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := s.Get(ctx, "exports/r1/datacite.xml")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "<resource/>" {
		t.Errorf("Get: got %q", string(b))
	}

	meta, err := s.GetMetadata(ctx, "exports/r1/datacite.xml")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta["scheme"] != "datacite" {
		t.Errorf("GetMetadata: got %v", meta)
	}

	if err := s.Delete(ctx, "exports/r1/datacite.xml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "exports/r1/datacite.xml"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
	}
}

func TestFSStore_List_ByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestFSStore(t)

	_ = s.Put(ctx, "imports/a.xml", bytes.NewReader([]byte("a")), 1, map[string]string{"filename": "a.xml"})
	_ = s.Put(ctx, "imports/b.xml", bytes.NewReader([]byte("b")), 1, nil)
	_ = s.Put(ctx, "exports/c.xml", bytes.NewReader([]byte("c")), 1, nil)

	infos, err := s.List(ctx, "imports/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List: got %d objects, want 2", len(infos))
	}
	for _, info := range infos {
		if info.Size != 1 {
			t.Errorf("List: object %s size = %d", info.Path, info.Size)
		}
	}
}

func TestFSStore_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s := newTestFSStore(t)

	// Clean 把 ../ 折叠回根目录内，写入不应落到根目录之外
	if err := s.Put(ctx, "../outside.xml", bytes.NewReader([]byte("x")), 1, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := s.Exists(ctx, "outside.xml")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("escaping path should be confined to base dir")
	}
}

func TestFSStore_Exists(t *testing.T) {
	ctx := context.Background()
	s := newTestFSStore(t)

	ok, err := s.Exists(ctx, "missing.xml")
	if err != nil || ok {
		t.Errorf("Exists missing: ok=%v err=%v", ok, err)
	}
	_ = s.Put(ctx, "present.xml", bytes.NewReader([]byte("x")), 1, nil)
	ok, err = s.Exists(ctx, "present.xml")
	if err != nil || !ok {
		t.Errorf("Exists present: ok=%v err=%v", ok, err)
	}
}
