// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package chain implements the chain extractor: walking the unified graph
// from frontend entry points through ApiCall sites, matching routes, and
// following handler calls into persisted ORM schemas.
package chain

import (
	"sort"

	"github.com/contractlens/contractlens/internal/openapi"
	"github.com/contractlens/contractlens/pkg/model"
)

// graphView is the subset of *graph.Graph the extractor reads, kept as an
// interface so this package has no dependency on the graph package's
// concrete type.
type graphView interface {
	Modules() []model.Module
	OutEdges(id model.NodeId) []model.Edge
	Route(id model.NodeId) (model.Route, bool)
	Routes() []model.Route
	ApiCall(id model.NodeId) (model.ApiCall, bool)
	Schema(id model.NodeId) (model.Schema, bool)
}

// Extractor builds chains from the unified graph. Its preferredAdapter is
// used by the route tie-breaking rule: among multiple code routes matching
// the same (method, path), prefer the one from this adapter. Empty means no
// preference.
type Extractor struct {
	g                 graphView
	maxRecursionDepth int
	preferredAdapter  model.Adapter
}

// New returns a chain extractor over g.
func New(g graphView, maxRecursionDepth int, preferredAdapter model.Adapter) *Extractor {
	if maxRecursionDepth <= 0 {
		maxRecursionDepth = 64
	}
	return &Extractor{g: g, maxRecursionDepth: maxRecursionDepth, preferredAdapter: preferredAdapter}
}

// entryModules returns every frontend module that is not itself imported by
// another frontend module: a TypeScript module reachable only via someone
// else's EdgeImports edge would otherwise contribute the same chains twice,
// once from its own walk and once from its importer's.
func (e *Extractor) entryModules() []model.Module {
	tsModules := make([]model.Module, 0)
	importedBy := make(map[model.NodeId]bool)
	for _, m := range e.g.Modules() {
		if m.Adapter != model.AdapterTypeScript {
			continue
		}
		tsModules = append(tsModules, m)
		moduleId := model.NewNodeId(m.Adapter, m.Path, "")
		for _, edge := range e.g.OutEdges(moduleId) {
			if edge.Kind == model.EdgeImports {
				importedBy[edge.Dst] = true
			}
		}
	}

	var out []model.Module
	for _, m := range tsModules {
		moduleId := model.NewNodeId(m.Adapter, m.Path, "")
		if !importedBy[moduleId] {
			out = append(out, m)
		}
	}
	return out
}

// Extract walks the graph and returns every chain found, sorted by the
// first node's (the ApiCall's) source path and then its symbol path. The
// entry module's path, the call's source span and the matched route's
// method and path are not used as sort keys.
func (e *Extractor) Extract() []model.Chain {
	var chains []model.Chain

	for _, entry := range e.entryModules() {
		entryId := model.NewNodeId(entry.Adapter, entry.Path, "")
		visited := make(map[model.NodeId]bool)
		chains = append(chains, e.walkFromModule(entryId, entry.Path, visited, 0)...)
	}

	sort.Slice(chains, func(i, j int) bool {
		if len(chains[i].Nodes) == 0 || len(chains[j].Nodes) == 0 {
			return len(chains[i].Nodes) > len(chains[j].Nodes)
		}
		a, b := chains[i].Nodes[0], chains[j].Nodes[0]
		if a.SourcePath != b.SourcePath {
			return a.SourcePath < b.SourcePath
		}
		return a.SymbolPath < b.SymbolPath
	})
	return chains
}

// walkFromModule follows calls/imports edges from a module node to find
// ApiCall sites, then builds a chain for each one found.
func (e *Extractor) walkFromModule(moduleNode model.NodeId, entryPath string, visited map[model.NodeId]bool, depth int) []model.Chain {
	if depth > e.maxRecursionDepth {
		return nil
	}

	var chains []model.Chain
	for _, edge := range e.g.OutEdges(moduleNode) {
		if visited[edge.Dst] {
			continue
		}
		if call, ok := e.g.ApiCall(edge.Dst); ok {
			if c, ok := e.buildChainFromApiCall(entryPath, call, depth); ok {
				chains = append(chains, c)
			}
			continue
		}
		if edge.Kind == model.EdgeImports {
			visitedCopy := copyVisited(visited)
			visitedCopy[edge.Dst] = true
			chains = append(chains, e.walkFromModule(edge.Dst, entryPath, visitedCopy, depth+1)...)
		}
	}
	return chains
}

func copyVisited(v map[model.NodeId]bool) map[model.NodeId]bool {
	out := make(map[model.NodeId]bool, len(v)+1)
	for k := range v {
		out[k] = true
	}
	return out
}

// buildChainFromApiCall matches call to a Route, classifies the chain's
// type, and follows the handler's calls edges into any persisted ORM
// schema, building Stitches along the way. Contract-checking the stitches
// is the checker's job; this just establishes structure and schema refs.
func (e *Extractor) buildChainFromApiCall(entryPath string, call model.ApiCall, depth int) (model.Chain, bool) {
	route, ok := e.matchRoute(call)
	if !ok {
		return model.Chain{}, false
	}

	nodes := []model.NodeId{call.Id, route.Id}
	stitches := []model.Stitch{{
		Kind:           model.StitchHTTP,
		LeftSchemaRef:  call.RequestTypeRef,
		RightSchemaRef: route.RequestSchemaRef,
	}}
	if !call.ResponseTypeRef.IsZero() || !route.ResponseSchemaRef.IsZero() {
		stitches = append(stitches, model.Stitch{
			Kind:           model.StitchHTTP,
			LeftSchemaRef:  route.ResponseSchemaRef,
			RightSchemaRef: call.ResponseTypeRef,
		})
	}

	if route.HasHandler() {
		visited := map[model.NodeId]bool{call.Id: true, route.Id: true, route.HandlerSymbol: true}
		for _, m := range e.followHandlerCalls(route.HandlerSymbol, visited, depth+1) {
			nodes = append(nodes, m.ref)
			switch m.kind {
			case model.StitchPersist:
				stitches = append(stitches, model.Stitch{
					Kind:           model.StitchPersist,
					LeftSchemaRef:  route.ResponseSchemaRef,
					RightSchemaRef: m.ref,
				})
			case model.StitchTransform:
				stitches = append(stitches, model.Stitch{
					Kind:           model.StitchTransform,
					LeftSchemaRef:  route.RequestSchemaRef,
					RightSchemaRef: m.ref,
				})
			}
		}
	}

	return model.Chain{
		Nodes:    nodes,
		Type:     classify(entryPath, route),
		Stitches: stitches,
	}, true
}

// matchRoute finds the Route whose (method, normalized path) matches the
// ApiCall, applying the origin=code-over-virtual tie-break.
func (e *Extractor) matchRoute(call model.ApiCall) (model.Route, bool) {
	normCallPath := openapi.NormalizePath(call.URLPattern)
	var best model.Route
	found := false
	for _, r := range e.g.Routes() {
		if r.Method != "" && call.Method != "" && r.Method != call.Method {
			continue
		}
		if openapi.NormalizePath(r.Path) != normCallPath {
			continue
		}
		if !found {
			best, found = r, true
			continue
		}
		if best.Origin == model.RouteOriginOpenAPIVirtual && r.Origin == model.RouteOriginCode {
			best = r
			continue
		}
		if best.Origin == model.RouteOriginCode && r.Origin == model.RouteOriginCode && r.Adapter == e.preferredAdapter {
			best = r
		}
	}
	return best, found
}

// handlerMatch is one schema a handler's call graph reaches: either an ORM
// model it persists to, or a schema it explicitly converts through (a
// Pydantic model_validate/model_dump target).
type handlerMatch struct {
	kind model.StitchKind
	ref  model.NodeId
}

// followHandlerCalls walks calls edges from a handler symbol looking for
// persists-as edges into ORM schemas and calls edges into schema nodes
// (model_validate/model_dump targets), bounded by max recursion depth and a
// visited set keyed by NodeId.
func (e *Extractor) followHandlerCalls(handler model.NodeId, visited map[model.NodeId]bool, depth int) []handlerMatch {
	if depth > e.maxRecursionDepth {
		return nil
	}
	var out []handlerMatch
	for _, edge := range e.g.OutEdges(handler) {
		if visited[edge.Dst] {
			continue
		}
		if edge.Kind == model.EdgePersistsAs {
			if s, ok := e.g.Schema(edge.Dst); ok && s.Flavor == model.FlavorORM {
				out = append(out, handlerMatch{kind: model.StitchPersist, ref: edge.Dst})
			}
			continue
		}
		if edge.Kind == model.EdgeCalls {
			if _, ok := e.g.Schema(edge.Dst); ok {
				out = append(out, handlerMatch{kind: model.StitchTransform, ref: edge.Dst})
				continue
			}
			visitedCopy := copyVisited(visited)
			visitedCopy[edge.Dst] = true
			out = append(out, e.followHandlerCalls(edge.Dst, visitedCopy, depth+1)...)
		}
	}
	return out
}

func classify(entryPath string, route model.Route) model.ChainType {
	hasFrontend := entryPath != ""
	hasBackend := route.HasHandler() || route.Origin == model.RouteOriginOpenAPIVirtual || route.Origin == model.RouteOriginCode
	switch {
	case hasFrontend && hasBackend:
		return model.ChainFull
	case hasFrontend:
		return model.ChainFrontendInternal
	default:
		return model.ChainBackendInternal
	}
}
