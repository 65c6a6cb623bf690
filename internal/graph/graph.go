// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package graph implements the arena-keyed unified call graph: nodes keyed
// by model.NodeId, edges as plain (src,dst) pairs, with no shared mutable
// pointers between them. This is the "Graph Assembler" stage of the
// pipeline: it merges the per-adapter subgraphs extractors produce into one
// structure and freezes it before the chain extractor and checker read it.
package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/contractlens/contractlens/pkg/model"
)

// Graph is the unified call graph. It is built up via the Add* methods
// during the assemble phase and then Frozen; after Freeze, every read
// method is safe for concurrent use and no further writes are accepted.
type Graph struct {
	mu       sync.RWMutex
	frozen   bool
	modules  map[string]model.Module
	symbols  map[model.NodeId]model.Symbol
	routes   map[model.NodeId]model.Route
	schemas  map[model.NodeId]model.Schema
	apiCalls map[model.NodeId]model.ApiCall
	edges    []model.Edge
	outEdges map[model.NodeId][]model.Edge
}

// New returns an empty, writable Graph.
func New() *Graph {
	return &Graph{
		modules:  make(map[string]model.Module),
		symbols:  make(map[model.NodeId]model.Symbol),
		routes:   make(map[model.NodeId]model.Route),
		schemas:  make(map[model.NodeId]model.Schema),
		apiCalls: make(map[model.NodeId]model.ApiCall),
		outEdges: make(map[model.NodeId][]model.Edge),
	}
}

// DuplicateIdError reports a NodeId collision, which spec.md §3 treats as a
// programmer error rather than a recoverable condition.
type DuplicateIdError struct {
	Id NodeId
}

// NodeId is re-exported so callers of this package need not import
// pkg/model solely to name the key type.
type NodeId = model.NodeId

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("graph: duplicate node id %s", e.Id)
}

func (g *Graph) checkWritable() {
	if g.frozen {
		panic("graph: write after Freeze")
	}
}

// AddModule registers a source file.
func (g *Graph) AddModule(m model.Module) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	g.modules[m.Path] = m
}

// AddSymbol registers a Symbol, returning DuplicateIdError if its id is
// already present.
func (g *Graph) AddSymbol(s model.Symbol) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	if _, ok := g.symbols[s.Id]; ok {
		return &DuplicateIdError{Id: s.Id}
	}
	g.symbols[s.Id] = s
	return nil
}

// AddRoute registers a Route.
func (g *Graph) AddRoute(r model.Route) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	if _, ok := g.routes[r.Id]; ok {
		return &DuplicateIdError{Id: r.Id}
	}
	g.routes[r.Id] = r
	return nil
}

// UpdateRoute replaces an already-registered Route in place, used by the
// OpenAPI linker to write a matched code route's enriched schema refs back
// onto the copy already in the graph. Unlike AddRoute, an unknown id is not
// an error: the linker runs after every adapter's routes are in, so a miss
// here would be a linker bug, not a legitimate new route.
func (g *Graph) UpdateRoute(r model.Route) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	g.routes[r.Id] = r
}

// AddSchema registers a Schema.
func (g *Graph) AddSchema(s model.Schema) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	if _, ok := g.schemas[s.Id]; ok {
		return &DuplicateIdError{Id: s.Id}
	}
	g.schemas[s.Id] = s
	return nil
}

// AddApiCall registers an ApiCall.
func (g *Graph) AddApiCall(a model.ApiCall) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	if _, ok := g.apiCalls[a.Id]; ok {
		return &DuplicateIdError{Id: a.Id}
	}
	g.apiCalls[a.Id] = a
	return nil
}

// AddEdge records a directed relation between two nodes. Edges are not
// deduplicated; the same (kind,src,dst) triple may legitimately recur when
// merging independently-extracted subgraphs, and callers that care can
// dedupe at read time.
func (g *Graph) AddEdge(e model.Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkWritable()
	g.edges = append(g.edges, e)
	g.outEdges[e.Src] = append(g.outEdges[e.Src], e)
}

// Freeze marks the graph immutable. Every subsequent Add* call panics.
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
}

// Symbol looks up a symbol by id.
func (g *Graph) Symbol(id model.NodeId) (model.Symbol, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.symbols[id]
	return s, ok
}

// Route looks up a route by id.
func (g *Graph) Route(id model.NodeId) (model.Route, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.routes[id]
	return r, ok
}

// Schema looks up a schema by id.
func (g *Graph) Schema(id model.NodeId) (model.Schema, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.schemas[id]
	return s, ok
}

// ApiCall looks up an ApiCall by id.
func (g *Graph) ApiCall(id model.NodeId) (model.ApiCall, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a, ok := g.apiCalls[id]
	return a, ok
}

// OutEdges returns every edge whose source is id, in insertion order.
func (g *Graph) OutEdges(id model.NodeId) []model.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]model.Edge(nil), g.outEdges[id]...)
}

// Routes returns every route in the graph, sorted by (method, path, source
// path) for deterministic iteration.
func (g *Graph) Routes() []model.Route {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Route, 0, len(g.routes))
	for _, r := range g.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Id.SourcePath < out[j].Id.SourcePath
	})
	return out
}

// Schemas returns every schema in the graph, sorted by id string.
func (g *Graph) Schemas() []model.Schema {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Schema, 0, len(g.schemas))
	for _, s := range g.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

// ApiCalls returns every ApiCall in the graph, sorted by id string.
func (g *Graph) ApiCalls() []model.ApiCall {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.ApiCall, 0, len(g.apiCalls))
	for _, a := range g.apiCalls {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

// Edges returns every edge in the graph, in insertion order. Used by the
// DOT writer, which needs the full edge set rather than one node's
// out-edges.
func (g *Graph) Edges() []model.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]model.Edge(nil), g.edges...)
}

// Modules returns every module in the graph, sorted by path.
func (g *Graph) Modules() []model.Module {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Module, 0, len(g.modules))
	for _, m := range g.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// SchemaByName finds the first schema with the given name and flavor,
// used by the OpenAPI linker to bridge a component to its Pydantic/TS
// counterpart by name equality after normalization.
func (g *Graph) SchemaByName(name string, flavor model.SchemaFlavor) (model.Schema, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, s := range g.schemas {
		if s.Flavor == flavor && s.Name == name {
			return s, true
		}
	}
	return model.Schema{}, false
}
