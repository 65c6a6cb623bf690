// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package model holds the language-agnostic call-graph and schema model:
// the entities every parser, extractor, resolver and checker in this
// repository reads and writes.
package model

import "fmt"

// Adapter identifies the source dialect a node was extracted from.
type Adapter string

const (
	AdapterFastAPI     Adapter = "fastapi"
	AdapterTypeScript  Adapter = "typescript"
	AdapterNestJS      Adapter = "nestjs"
	AdapterOpenAPI     Adapter = "openapi"
)

// NodeId is a stable, content-independent identity for any entity in the
// unified graph: (adapter, source path, symbol path). Two runs over the
// same bytes produce identical NodeIds, which is what lets the cache match
// across runs.
type NodeId struct {
	Adapter    Adapter `json:"adapter" yaml:"adapter"`
	SourcePath string  `json:"source_path" yaml:"source_path"`
	SymbolPath string  `json:"symbol_path" yaml:"symbol_path"`
}

// NewNodeId builds a NodeId from its three components.
func NewNodeId(adapter Adapter, sourcePath, symbolPath string) NodeId {
	return NodeId{Adapter: adapter, SourcePath: sourcePath, SymbolPath: symbolPath}
}

// String renders a NodeId as a single opaque token, stable across runs and
// safe to use as a map key or a cache key.
func (n NodeId) String() string {
	return fmt.Sprintf("%s:%s#%s", n.Adapter, n.SourcePath, n.SymbolPath)
}

// IsZero reports whether n is the zero-value NodeId (no adapter, no path).
func (n NodeId) IsZero() bool {
	return n.Adapter == "" && n.SourcePath == "" && n.SymbolPath == ""
}
