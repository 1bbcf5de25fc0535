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

// Package config loads a graph.Config from YAML, the way cmd/sdb loads
// database/tenant settings: in-code defaults (graph.DefaultConfig),
// overridden field-by-field by whatever a YAML file supplies. Kept
// outside package graph itself so the core reducer's module graph does
// not carry a YAML dependency it never needs at reduction time; only
// the benchmark/test harnesses that want a tunable heap profile import
// this package.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/arborlang/redex/graph"
)

// Load reads the YAML file at path and decodes it onto a copy of
// graph.DefaultConfig(), so a file that names only one field (e.g. just
// `threshold: 0.9`) leaves the others at their defaults rather than
// zeroing them out.
func Load(path string) (graph.Config, error) {
	cfg := graph.DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML bytes directly, for callers that already have the
// document in memory (embedded defaults, a test fixture) rather than a
// file on disk.
func Decode(doc []byte) (graph.Config, error) {
	cfg := graph.DefaultConfig()
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing: %w", err)
	}
	return cfg, nil
}
