// Copyright (C) 2026 Arbor Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arborlang/redex/config"
	"github.com/arborlang/redex/graph"
)

func TestDecodePartialOverridesOnlyNamedFields(t *testing.T) {
	cfg, err := config.Decode([]byte("threshold: 0.9\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := graph.DefaultConfig()
	want.Threshold = 0.9
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.yaml")
	doc := "threshold: 0.5\ncheckEvery: 64\nmaxBucket: 128\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Threshold != 0.5 || cfg.CheckEvery != 64 || cfg.MaxBucket != 128 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/heap.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
