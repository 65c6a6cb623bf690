// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"regexp"
	"strings"

	"github.com/contractlens/contractlens/pkg/model"
	"github.com/contractlens/contractlens/pkg/types"
)

// Bridge links an OpenAPI component to its backend (Pydantic) and frontend
// (TS interface/alias or Zod) counterparts by name. HTTP stitches are
// anchored directly on MatchedRoutes/VirtualRoutes's RequestSchemaRef and
// ResponseSchemaRef instead (both point at the same OpenAPI component
// schemas a Bridge would link); Bridges is kept as component-level
// bookkeeping for callers that want the backend/frontend pairing itself,
// e.g. a future orphaned-component report.
type Bridge struct {
	ComponentName string
	OpenAPIRef    model.NodeId
	BackendRef    model.NodeId
	FrontendRef   model.NodeId
}

// LinkResult is everything the linker contributes to the unified graph.
type LinkResult struct {
	VirtualRoutes []model.Route
	// MatchedRoutes holds the enriched copy of every code route that matched
	// a document endpoint, its RequestSchemaRef/ResponseSchemaRef filled in
	// from that endpoint's request body / success response component — the
	// caller replaces the graph's un-enriched copy with these so the chain
	// extractor's HTTP stitch has real schema refs on the backend side too.
	MatchedRoutes []model.Route
	Schemas       []model.Schema
	Bridges       []Bridge
}

// componentLookup resolves a schema by name and flavor; implemented by
// *graph.Graph without importing it here, to avoid a loader<->graph cycle.
type componentLookup interface {
	SchemaByName(name string, flavor model.SchemaFlavor) (model.Schema, bool)
}

// Link matches a loaded OpenAPI document against the code-discovered
// routes already in the graph, synthesizes virtual routes for document
// endpoints no code route matched, and links each component to its
// backend/frontend counterpart by name.
func Link(doc *types.OpenAPI, docPath string, codeRoutes []model.Route, lookup componentLookup) LinkResult {
	var res LinkResult

	matched := make(map[string]bool, len(codeRoutes))

	for rawPath, item := range doc.Paths {
		for method, op := range operationsOf(item) {
			normPath := NormalizePath(rawPath)
			if route, ok := findCodeRoute(codeRoutes, method, normPath); ok {
				matched[route.Id.String()] = true
				if op != nil {
					if ref := requestSchemaRef(op, docPath); !ref.IsZero() {
						route.RequestSchemaRef = ref
					}
					if ref := responseSchemaRef(op, docPath); !ref.IsZero() {
						route.ResponseSchemaRef = ref
					}
				}
				res.MatchedRoutes = append(res.MatchedRoutes, route)
				continue
			}

			routeId := model.NewNodeId(model.AdapterOpenAPI, docPath, "route:"+method+" "+normPath)
			route := model.Route{
				Id:      routeId,
				Method:  method,
				Path:    normPath,
				Origin:  model.RouteOriginOpenAPIVirtual,
				Adapter: model.AdapterOpenAPI,
			}
			if op != nil {
				if ref := requestSchemaRef(op, docPath); !ref.IsZero() {
					route.RequestSchemaRef = ref
				}
				if ref := responseSchemaRef(op, docPath); !ref.IsZero() {
					route.ResponseSchemaRef = ref
				}
			}
			res.VirtualRoutes = append(res.VirtualRoutes, route)
		}
	}

	if doc.Components != nil {
		for name, schema := range doc.Components.Schemas {
			ms := convertComponentSchema(docPath, name, schema)
			res.Schemas = append(res.Schemas, ms)

			bridge := Bridge{ComponentName: name, OpenAPIRef: ms.Id}
			if backend, ok := lookup.SchemaByName(name, model.FlavorPydantic); ok {
				bridge.BackendRef = backend.Id
			}
			if frontend, ok := lookup.SchemaByName(name, model.FlavorTSInterface); ok {
				bridge.FrontendRef = frontend.Id
			} else if frontend, ok := lookup.SchemaByName(name, model.FlavorZod); ok {
				bridge.FrontendRef = frontend.Id
			} else if frontend, ok := lookup.SchemaByName(name, model.FlavorTSAlias); ok {
				bridge.FrontendRef = frontend.Id
			}
			res.Bridges = append(res.Bridges, bridge)
		}
	}

	return res
}

func operationsOf(item types.PathItem) map[string]*types.Operation {
	ops := map[string]*types.Operation{}
	if item.Get != nil {
		ops["GET"] = item.Get
	}
	if item.Post != nil {
		ops["POST"] = item.Post
	}
	if item.Put != nil {
		ops["PUT"] = item.Put
	}
	if item.Delete != nil {
		ops["DELETE"] = item.Delete
	}
	if item.Patch != nil {
		ops["PATCH"] = item.Patch
	}
	return ops
}

var bracePathParamRegex = regexp.MustCompile(`\{[^}]+\}`)
var colonPathParamRegex = regexp.MustCompile(`:[a-zA-Z_][a-zA-Z0-9_]*`)

// NormalizePath canonicalizes a route path so `{name}` and `:name` holes
// compare equal, order-preserving, per the endpoint-matching rule.
func NormalizePath(p string) string {
	p = bracePathParamRegex.ReplaceAllString(p, "{}")
	p = colonPathParamRegex.ReplaceAllString(p, "{}")
	return strings.TrimSuffix(p, "/")
}

// findCodeRoute applies the tie-breaking rule: prefer origin=code over
// openapi-virtual (trivially true here, since codeRoutes only holds code
// routes); among multiple code routes this returns the first in input
// order, which the caller is expected to have already sorted by adapter
// preference.
func findCodeRoute(routes []model.Route, method, normPath string) (model.Route, bool) {
	for _, r := range routes {
		if r.Method == method && NormalizePath(r.Path) == normPath {
			return r, true
		}
	}
	return model.Route{}, false
}

func requestSchemaRef(op *types.Operation, docPath string) model.NodeId {
	if op.RequestBody == nil {
		return model.NodeId{}
	}
	for _, media := range op.RequestBody.Content {
		if name := componentNameOf(media.Schema); name != "" {
			return model.NewNodeId(model.AdapterOpenAPI, docPath, name)
		}
	}
	return model.NodeId{}
}

func responseSchemaRef(op *types.Operation, docPath string) model.NodeId {
	for _, code := range []string{"200", "201"} {
		resp, ok := op.Responses[code]
		if !ok {
			continue
		}
		for _, media := range resp.Content {
			if name := componentNameOf(media.Schema); name != "" {
				return model.NewNodeId(model.AdapterOpenAPI, docPath, name)
			}
		}
	}
	return model.NodeId{}
}

func componentNameOf(s *types.Schema) string {
	if s == nil || s.Ref == "" {
		return ""
	}
	parts := strings.Split(s.Ref, "/")
	return parts[len(parts)-1]
}

func convertComponentSchema(docPath, name string, s *types.Schema) model.Schema {
	out := model.Schema{
		Id:     model.NewNodeId(model.AdapterOpenAPI, docPath, name),
		Flavor: model.FlavorOpenAPIComponent,
		Name:   name,
	}
	if s == nil {
		return out
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	for propName, prop := range s.Properties {
		out.Fields = append(out.Fields, model.Field{
			Name:         propName,
			DeclaredType: prop.Type,
			Required:     required[propName],
		})
	}
	return out
}
