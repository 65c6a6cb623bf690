// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package pipeline wires the core stages together: scan each configured
// adapter's source tree, extract per-file graph contributions, assemble
// and freeze the unified graph, link an optional OpenAPI document, walk
// chains, check them, and build the report. It is the single-threaded
// cooperative-phase orchestrator spec.md §5 describes, with per-file
// extraction running independently within a phase.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contractlens/contractlens/internal/cache"
	"github.com/contractlens/contractlens/internal/chain"
	"github.com/contractlens/contractlens/internal/check"
	"github.com/contractlens/contractlens/internal/config"
	"github.com/contractlens/contractlens/internal/extract/fastapi"
	"github.com/contractlens/contractlens/internal/extract/nestjs"
	"github.com/contractlens/contractlens/internal/extract/tsfrontend"
	"github.com/contractlens/contractlens/internal/graph"
	"github.com/contractlens/contractlens/internal/openapi"
	"github.com/contractlens/contractlens/internal/report"
	"github.com/contractlens/contractlens/internal/resolve"
	"github.com/contractlens/contractlens/internal/scanner"
	"github.com/contractlens/contractlens/pkg/model"
)

// Diagnostic is a recovered, non-fatal problem encountered during a run:
// a file that failed to parse, an OpenAPI document that failed to load,
// and so on. Per spec.md §7's propagation policy, these never abort the
// pipeline; they are only ever collected and surfaced.
type Diagnostic struct {
	Stage   string
	Path    string
	Message string
}

// Result is everything one pipeline run produces.
type Result struct {
	Graph       *graph.Graph
	Report      report.Report
	Diagnostics []Diagnostic
}

// Pipeline runs the full stage sequence for one Config.
type Pipeline struct {
	cfg   *config.Config
	cache *cache.Cache
}

// New returns a Pipeline for cfg. c may be nil, in which case every file
// is re-extracted on every run.
func New(cfg *config.Config, c *cache.Cache) *Pipeline {
	return &Pipeline{cfg: cfg, cache: c}
}

// Run executes every stage and returns the finished report.
func (p *Pipeline) Run() (Result, error) {
	g := graph.New()
	var diags []Diagnostic

	var codeRoutes []model.Route
	var tsImports []resolve.Import
	strictImports := false
	preferredAdapter := model.Adapter("")

	for _, ad := range p.cfg.Adapters {
		if preferredAdapter == "" && ad.Type != config.AdapterTypeScript {
			preferredAdapter = model.Adapter(ad.Type)
		}
		if ad.StrictImports {
			strictImports = true
		}
		routes, imports, adDiags := p.runAdapter(g, ad)
		codeRoutes = append(codeRoutes, routes...)
		tsImports = append(tsImports, imports...)
		diags = append(diags, adDiags...)
	}

	if p.cfg.OpenAPIPath != "" {
		linkDiags := p.runOpenAPI(g, p.cfg.OpenAPIPath, codeRoutes)
		diags = append(diags, linkDiags...)
	}

	diags = append(diags, p.resolveTSImports(g, tsImports, strictImports)...)

	g.Freeze()

	chains := chain.New(g, p.cfg.MaxRecursionDepth, preferredAdapter).Extract()
	chains = check.New(g, p.cfg.Rules).CheckChains(chains)
	rep := report.Build(p.cfg.ProjectName, chains, g.Schemas())

	return Result{Graph: g, Report: rep, Diagnostics: diags}, nil
}

// runAdapter scans and extracts one configured adapter's source tree,
// adding every contribution to g, and returns the routes it discovered
// (the linker needs the full cross-adapter route list, not just one
// adapter's) plus any raw TypeScript import bindings found, left for
// resolveTSImports to resolve once every adapter's modules are known.
func (p *Pipeline) runAdapter(g *graph.Graph, ad config.AdapterConfig) ([]model.Route, []resolve.Import, []Diagnostic) {
	var diags []Diagnostic

	roots, extensions := adapterScanTargets(ad)
	files, err := scanner.New(scanner.Config{
		IncludePatterns: includePatternsFor(extensions),
		Extensions:      extensions,
	}).ScanPaths(roots)
	if err != nil {
		diags = append(diags, Diagnostic{Stage: "scan", Path: fmt.Sprint(roots), Message: err.Error()})
		return nil, nil, diags
	}

	var routes []model.Route
	var imports []resolve.Import

	switch ad.Type {
	case config.AdapterFastAPI:
		e := fastapi.New()
		defer e.Close()
		for _, f := range files {
			res, ok, d := extractWithCache(p.cache, "fastapi", f, e.Extract)
			diags = append(diags, d...)
			if !ok {
				continue
			}
			addCommon(g, res.Module, res.Symbols, res.Schemas, res.Edges, &diags)
			for _, r := range res.Routes {
				if err := g.AddRoute(r); err != nil {
					diags = append(diags, Diagnostic{Stage: "assemble", Path: f.Path, Message: err.Error()})
					continue
				}
				routes = append(routes, r)
			}
		}

	case config.AdapterNestJS:
		e := nestjs.New()
		defer e.Close()
		for _, f := range files {
			res, ok, d := extractWithCache(p.cache, "nestjs", f, e.Extract)
			diags = append(diags, d...)
			if !ok {
				continue
			}
			addCommon(g, res.Module, res.Symbols, res.Schemas, res.Edges, &diags)
			for _, r := range res.Routes {
				if err := g.AddRoute(r); err != nil {
					diags = append(diags, Diagnostic{Stage: "assemble", Path: f.Path, Message: err.Error()})
					continue
				}
				routes = append(routes, r)
			}
		}

	case config.AdapterTypeScript:
		e := tsfrontend.New()
		defer e.Close()
		for _, f := range files {
			res, ok, d := extractWithCache(p.cache, "typescript", f, e.Extract)
			diags = append(diags, d...)
			if !ok {
				continue
			}
			addCommon(g, res.Module, res.Symbols, res.Schemas, res.Edges, &diags)
			for _, call := range res.ApiCalls {
				if err := g.AddApiCall(call); err != nil {
					diags = append(diags, Diagnostic{Stage: "assemble", Path: f.Path, Message: err.Error()})
				}
			}
			imports = append(imports, res.Imports...)
		}
	}

	return routes, imports, diags
}

// resolveTSImports resolves every raw TypeScript import binding collected
// across adapters into an EdgeImports edge between the two modules, once
// every module's path is known (the resolver needs the full known-file set
// up front to tell a real sibling module from a missing one). A tsconfig.json
// at the working directory root is read best-effort for path aliases; its
// absence only means alias-based imports fall back to relative resolution.
func (p *Pipeline) resolveTSImports(g *graph.Graph, imports []resolve.Import, strictImports bool) []Diagnostic {
	if len(imports) == 0 {
		return nil
	}

	knownFiles := make([]string, 0, len(g.Modules()))
	for _, m := range g.Modules() {
		knownFiles = append(knownFiles, m.Path)
	}

	tsconfigPaths, _ := resolve.LoadTSConfigPaths("tsconfig.json", "")

	r := resolve.New(knownFiles, strictImports, p.cfg.MaxRecursionDepth, tsconfigPaths)

	var diags []Diagnostic
	for _, imp := range imports {
		target, err := r.ResolveTypeScript(imp.ImportingModule, imp.LocalName, imp.ModuleSpec)
		if err != nil {
			diags = append(diags, Diagnostic{Stage: "resolve", Path: imp.ImportingModule, Message: err.Error()})
			continue
		}
		src := model.NewNodeId(model.AdapterTypeScript, imp.ImportingModule, "")
		dst := model.NewNodeId(model.AdapterTypeScript, target.SourcePath, "")
		g.AddEdge(model.Edge{Kind: model.EdgeImports, Src: src, Dst: dst})
	}
	return diags
}

// extractFunc is the common shape of every adapter extractor's Extract method.
type extractFunc[T any] func(path string, content []byte) (T, error)

// extractWithCache runs extract over f, reusing a cached payload when one
// is present under f's current content hash and re-extracting (then
// writing back) otherwise. Cache read/write errors are treated the same
// as a miss: they never fail the run, only cost a re-extraction.
func extractWithCache[T any](c *cache.Cache, adapterLabel string, f scanner.SourceFile, extract extractFunc[T]) (T, bool, []Diagnostic) {
	var zero T
	hash := cache.HashContent(f.Content)

	if c != nil {
		if payload, ok, err := c.Get(context.Background(), f.Path, hash); err == nil && ok {
			var cached T
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, true, nil
			}
		}
	}

	res, err := extract(f.Path, f.Content)
	if err != nil {
		return zero, false, []Diagnostic{{Stage: "extract", Path: f.Path, Message: err.Error()}}
	}

	if c != nil {
		if payload, err := json.Marshal(res); err == nil {
			_ = c.Put(context.Background(), f.Path, hash, adapterLabel, payload)
		}
	}

	return res, true, nil
}

// addCommon adds the parts of an extractor Result shared by every adapter:
// its module, symbols, schemas and edges.
func addCommon(g *graph.Graph, module model.Module, symbols []model.Symbol, schemas []model.Schema, edges []model.Edge, diags *[]Diagnostic) {
	g.AddModule(module)
	for _, s := range symbols {
		if err := g.AddSymbol(s); err != nil {
			*diags = append(*diags, Diagnostic{Stage: "assemble", Path: module.Path, Message: err.Error()})
		}
	}
	for _, s := range schemas {
		if err := g.AddSchema(s); err != nil {
			*diags = append(*diags, Diagnostic{Stage: "assemble", Path: module.Path, Message: err.Error()})
		}
	}
	for _, e := range edges {
		g.AddEdge(e)
	}
}

// runOpenAPI loads and links an OpenAPI document, adding its virtual
// routes and component schemas to g. A load failure is recorded as a
// diagnostic and linking is skipped entirely, per spec.md §7's OpenAPIError
// handling ("linking is skipped ... pipeline continues without OpenAPI").
func (p *Pipeline) runOpenAPI(g *graph.Graph, path string, codeRoutes []model.Route) []Diagnostic {
	doc, err := openapi.Load(path)
	if err != nil {
		return []Diagnostic{{Stage: "openapi", Path: path, Message: err.Error()}}
	}

	result := openapi.Link(doc, path, codeRoutes, g)

	for _, r := range result.MatchedRoutes {
		g.UpdateRoute(r)
	}

	var diags []Diagnostic
	for _, r := range result.VirtualRoutes {
		if err := g.AddRoute(r); err != nil {
			diags = append(diags, Diagnostic{Stage: "assemble", Path: path, Message: err.Error()})
		}
	}
	for _, s := range result.Schemas {
		if err := g.AddSchema(s); err != nil {
			diags = append(diags, Diagnostic{Stage: "assemble", Path: path, Message: err.Error()})
		}
	}
	return diags
}

// adapterScanTargets returns the source roots and file extensions to scan
// for one AdapterConfig.
func adapterScanTargets(ad config.AdapterConfig) ([]string, []string) {
	switch ad.Type {
	case config.AdapterFastAPI:
		return []string{ad.AppPath}, []string{".py"}
	case config.AdapterNestJS, config.AdapterTypeScript:
		return ad.SrcPaths, []string{".ts", ".tsx"}
	default:
		return nil, nil
	}
}

// includePatternsFor builds an IncludePatterns set matching extensions.
// scanner.New defaults IncludePatterns to Go/TS/JS globs whenever it's left
// empty, which would silently drop every .py file regardless of the
// Extensions filter; passing an explicit "**/*<ext>" pattern per extension
// keeps the two filters in sync instead of relying on that default.
func includePatternsFor(extensions []string) []string {
	patterns := make([]string, len(extensions))
	for i, ext := range extensions {
		patterns[i] = "**/*" + ext
	}
	return patterns
}
