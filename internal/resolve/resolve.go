// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package resolve implements the import resolver: translating a reference
// (importing-module, local-name) into a model.NodeId across the Python and
// TypeScript module graphs, per the import resolution rules.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"

	"github.com/contractlens/contractlens/pkg/model"
)

// parseJSONC decodes a tsconfig.json, which commonly carries comments and
// trailing commas that encoding/json rejects outright.
func parseJSONC(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ErrorKind is the sub-kind of an ImportError.
type ErrorKind string

const (
	ErrModuleNotFound   ErrorKind = "ModuleNotFound"
	ErrSymbolNotFound   ErrorKind = "SymbolNotFound"
	ErrCyclicReExport   ErrorKind = "CyclicReExport"
	ErrMaxDepthExceeded ErrorKind = "MaxDepthExceeded"
)

// ImportError reports a failed import resolution.
type ImportError struct {
	Kind           ErrorKind
	ImportingModule string
	LocalName       string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("resolve: %s resolving %q in %s", e.Kind, e.LocalName, e.ImportingModule)
}

// ReExport records a `export * from "m"` / `from .m import *` re-export:
// every public symbol of Target is visible under Source's namespace.
type ReExport struct {
	Source string
	Target string
}

// Import is one resolvable reference recorded by an extractor: the
// importing module, the local name it binds, and the raw module
// specifier as written in source (e.g. ".models", "@/app/user", "./user").
type Import struct {
	ImportingModule string
	LocalName       string
	ModuleSpec      string
	IsWildcard      bool
}

// cacheEntry memoizes both resolution hits and misses, per the resolver's
// "cached variant memoizes both hits and misses" rule.
type cacheEntry struct {
	id    model.NodeId
	found bool
}

// Resolver resolves (module, local-name) references against a known file
// set, honoring tsconfig.json path aliases and Python package layout.
type Resolver struct {
	strictImports     bool
	maxRecursionDepth int

	// knownFiles is the set of source paths the scanner discovered, used to
	// confirm a module-to-path mapping actually exists on disk.
	knownFiles map[string]bool

	// tsconfigPaths maps an alias prefix (e.g. "@/app/") to its replacement
	// (e.g. "src/app/"), applied before falling back to relative resolution.
	tsconfigPaths map[string]string

	reExports []ReExport

	cache map[string]cacheEntry
}

// New returns a Resolver over the given known file set.
func New(knownFiles []string, strictImports bool, maxRecursionDepth int, tsconfigPaths map[string]string) *Resolver {
	known := make(map[string]bool, len(knownFiles))
	for _, f := range knownFiles {
		known[filepath.ToSlash(f)] = true
	}
	if maxRecursionDepth <= 0 {
		maxRecursionDepth = 64
	}
	return &Resolver{
		strictImports:     strictImports,
		maxRecursionDepth: maxRecursionDepth,
		knownFiles:        known,
		tsconfigPaths:     tsconfigPaths,
		cache:             make(map[string]cacheEntry),
	}
}

// AddReExport registers a `export * from`/`from .m import *` relationship
// discovered by an extractor, so ResolvePython/ResolveTypeScript can follow
// it when the requested local name isn't bound directly.
func (r *Resolver) AddReExport(re ReExport) {
	r.reExports = append(r.reExports, re)
}

func cacheKey(importingModule, localName string) string {
	return importingModule + "\x00" + localName
}

// ResolvePython resolves a Python import into the NodeId of the module it
// names. moduleSpec is the raw text captured by PythonImport.Module:
// relative (leading dots) against the importing module's package, or
// absolute against projectRoot.
func (r *Resolver) ResolvePython(importingModule, localName, moduleSpec, projectRoot string) (model.NodeId, error) {
	key := cacheKey(importingModule, localName)
	if e, ok := r.cache[key]; ok {
		if e.found {
			return e.id, nil
		}
		return model.NodeId{}, &ImportError{Kind: ErrModuleNotFound, ImportingModule: importingModule, LocalName: localName}
	}

	target, err := r.resolvePythonModule(importingModule, moduleSpec, projectRoot, 0)
	if err != nil {
		r.cache[key] = cacheEntry{found: false}
		return model.NodeId{}, err
	}

	id := model.NewNodeId(model.AdapterFastAPI, target, localName)
	r.cache[key] = cacheEntry{id: id, found: true}
	return id, nil
}

func (r *Resolver) resolvePythonModule(importingModule, moduleSpec, projectRoot string, depth int) (string, error) {
	if depth > r.maxRecursionDepth {
		return "", &ImportError{Kind: ErrMaxDepthExceeded, ImportingModule: importingModule}
	}

	var dotted string
	var leadingDots int
	for leadingDots < len(moduleSpec) && moduleSpec[leadingDots] == '.' {
		leadingDots++
	}
	dotted = strings.TrimLeft(moduleSpec, ".")

	var base string
	if leadingDots > 0 {
		pkgDir := filepath.Dir(importingModule)
		for i := 1; i < leadingDots; i++ {
			pkgDir = filepath.Dir(pkgDir)
		}
		base = pkgDir
	} else {
		base = projectRoot
	}

	rel := strings.ReplaceAll(dotted, ".", "/")
	candidate := filepath.ToSlash(filepath.Join(base, rel))

	for _, suffix := range []string{".py", "/__init__.py"} {
		p := candidate + suffix
		if r.knownFiles[p] {
			return p, nil
		}
	}

	if !r.strictImports {
		return candidate + ".py", nil
	}
	return "", &ImportError{Kind: ErrModuleNotFound, ImportingModule: importingModule, LocalName: moduleSpec}
}

// ResolveTypeScript resolves a TypeScript import specifier into the NodeId
// of the module it names, applying tsconfig path aliases before relative
// resolution.
func (r *Resolver) ResolveTypeScript(importingModule, localName, moduleSpec string) (model.NodeId, error) {
	key := cacheKey(importingModule, localName)
	if e, ok := r.cache[key]; ok {
		if e.found {
			return e.id, nil
		}
		return model.NodeId{}, &ImportError{Kind: ErrModuleNotFound, ImportingModule: importingModule, LocalName: localName}
	}

	target, err := r.resolveTSModule(importingModule, moduleSpec, 0)
	if err != nil {
		r.cache[key] = cacheEntry{found: false}
		return model.NodeId{}, err
	}

	id := model.NewNodeId(model.AdapterTypeScript, target, localName)
	r.cache[key] = cacheEntry{id: id, found: true}
	return id, nil
}

func (r *Resolver) resolveTSModule(importingModule, moduleSpec string, depth int) (string, error) {
	if depth > r.maxRecursionDepth {
		return "", &ImportError{Kind: ErrMaxDepthExceeded, ImportingModule: importingModule}
	}

	candidate := moduleSpec
	for alias, replacement := range r.tsconfigPaths {
		if strings.HasPrefix(moduleSpec, alias) {
			candidate = replacement + strings.TrimPrefix(moduleSpec, alias)
			break
		}
	}

	if strings.HasPrefix(candidate, ".") {
		candidate = path.Join(path.Dir(importingModule), candidate)
	}
	candidate = filepath.ToSlash(candidate)

	for _, suffix := range []string{"", ".ts", ".tsx", ".d.ts", "/index.ts", "/index.tsx"} {
		p := candidate + suffix
		if r.knownFiles[p] {
			return p, nil
		}
	}

	if !r.strictImports {
		return candidate + ".ts", nil
	}
	return "", &ImportError{Kind: ErrModuleNotFound, ImportingModule: importingModule, LocalName: moduleSpec}
}

// ResolveReExport follows `export * from`/`import *` chains to find which
// module ultimately defines localName when source does not bind it
// directly, detecting cycles via a per-call visited set.
func (r *Resolver) ResolveReExport(source, localName string) (string, error) {
	visited := make(map[string]bool)
	return r.followReExports(source, localName, visited, 0)
}

func (r *Resolver) followReExports(source, localName string, visited map[string]bool, depth int) (string, error) {
	if depth > r.maxRecursionDepth {
		return "", &ImportError{Kind: ErrMaxDepthExceeded, ImportingModule: source, LocalName: localName}
	}
	if visited[source] {
		return "", &ImportError{Kind: ErrCyclicReExport, ImportingModule: source, LocalName: localName}
	}
	visited[source] = true

	for _, re := range r.reExports {
		if re.Source != source {
			continue
		}
		if r.knownFiles[re.Target] {
			return re.Target, nil
		}
		next, err := r.followReExports(re.Target, localName, visited, depth+1)
		if err == nil {
			return next, nil
		}
		if ie, ok := err.(*ImportError); ok && ie.Kind != ErrSymbolNotFound {
			return "", err
		}
	}
	return "", &ImportError{Kind: ErrSymbolNotFound, ImportingModule: source, LocalName: localName}
}

// LoadTSConfigPaths reads the `compilerOptions.paths` map of a tsconfig.json
// and flattens it into a simple prefix→replacement table, stripping the
// trailing `/*` wildcard both sides use.
func LoadTSConfigPaths(tsconfigPath string, baseURL string) (map[string]string, error) {
	raw, err := os.ReadFile(tsconfigPath)
	if err != nil {
		return nil, fmt.Errorf("resolve: reading tsconfig: %w", err)
	}
	doc, err := parseJSONC(raw)
	if err != nil {
		return nil, fmt.Errorf("resolve: parsing tsconfig: %w", err)
	}

	out := make(map[string]string)
	compilerOptions, _ := doc["compilerOptions"].(map[string]any)
	if compilerOptions == nil {
		return out, nil
	}
	paths, _ := compilerOptions["paths"].(map[string]any)
	for alias, targets := range paths {
		list, ok := targets.([]any)
		if !ok || len(list) == 0 {
			continue
		}
		target, ok := list[0].(string)
		if !ok {
			continue
		}
		aliasPrefix := strings.TrimSuffix(alias, "*")
		targetPrefix := strings.TrimSuffix(target, "*")
		if baseURL != "" {
			targetPrefix = filepath.ToSlash(filepath.Join(baseURL, targetPrefix))
		}
		out[aliasPrefix] = targetPrefix
	}
	return out, nil
}
