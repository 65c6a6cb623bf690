// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/pkg/model"
	"github.com/contractlens/contractlens/pkg/types"
)

type fakeLookup map[string]map[model.SchemaFlavor]model.Schema

func (f fakeLookup) SchemaByName(name string, flavor model.SchemaFlavor) (model.Schema, bool) {
	byFlavor, ok := f[name]
	if !ok {
		return model.Schema{}, false
	}
	s, ok := byFlavor[flavor]
	return s, ok
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/users/{}", NormalizePath("/users/{id}"))
	assert.Equal(t, "/users/{}", NormalizePath("/users/:id"))
	assert.Equal(t, "/users/{}/posts/{}", NormalizePath("/users/{userId}/posts/:postId"))
	assert.Equal(t, "/users", NormalizePath("/users/"))
}

func TestLink_MatchesExistingCodeRoute(t *testing.T) {
	doc := &types.OpenAPI{
		OpenAPI: "3.0.3",
		Paths: map[string]types.PathItem{
			"/users/{id}": {Get: &types.Operation{}},
		},
	}
	codeRouteId := model.NewNodeId(model.AdapterFastAPI, "app/routes.py", "route:GET /users/{id}")
	codeRoutes := []model.Route{{Id: codeRouteId, Method: "GET", Path: "/users/{id}", Origin: model.RouteOriginCode}}

	res := Link(doc, "openapi.yaml", codeRoutes, fakeLookup{})

	assert.Empty(t, res.VirtualRoutes)
	require.Len(t, res.MatchedRoutes, 1)
	assert.Equal(t, codeRouteId, res.MatchedRoutes[0].Id)
}

func TestLink_EnrichesMatchedCodeRouteWithSchemaRefs(t *testing.T) {
	doc := &types.OpenAPI{
		OpenAPI: "3.0.3",
		Paths: map[string]types.PathItem{
			"/items": {
				Post: &types.Operation{
					RequestBody: &types.RequestBody{
						Content: map[string]types.MediaType{
							"application/json": {Schema: &types.Schema{Ref: "#/components/schemas/ItemCreate"}},
						},
					},
					Responses: map[string]types.Response{
						"201": {
							Content: map[string]types.MediaType{
								"application/json": {Schema: &types.Schema{Ref: "#/components/schemas/Item"}},
							},
						},
					},
				},
			},
		},
	}
	codeRouteId := model.NewNodeId(model.AdapterFastAPI, "app/routes.py", "route:POST /items")
	codeRoutes := []model.Route{{Id: codeRouteId, Method: "POST", Path: "/items", Origin: model.RouteOriginCode}}

	res := Link(doc, "openapi.yaml", codeRoutes, fakeLookup{})

	assert.Empty(t, res.VirtualRoutes)
	require.Len(t, res.MatchedRoutes, 1)
	matched := res.MatchedRoutes[0]
	assert.Equal(t, model.NewNodeId(model.AdapterOpenAPI, "openapi.yaml", "ItemCreate"), matched.RequestSchemaRef)
	assert.Equal(t, model.NewNodeId(model.AdapterOpenAPI, "openapi.yaml", "Item"), matched.ResponseSchemaRef)
}

func TestLink_SynthesizesVirtualRouteForUnmatchedEndpoint(t *testing.T) {
	doc := &types.OpenAPI{
		OpenAPI: "3.0.3",
		Paths: map[string]types.PathItem{
			"/health": {Get: &types.Operation{}},
		},
	}

	res := Link(doc, "openapi.yaml", nil, fakeLookup{})

	require.Len(t, res.VirtualRoutes, 1)
	assert.Equal(t, "GET", res.VirtualRoutes[0].Method)
	assert.Equal(t, "/health", res.VirtualRoutes[0].Path)
	assert.Equal(t, model.RouteOriginOpenAPIVirtual, res.VirtualRoutes[0].Origin)
}

func TestLink_VirtualRouteCarriesSchemaRefs(t *testing.T) {
	doc := &types.OpenAPI{
		OpenAPI: "3.0.3",
		Paths: map[string]types.PathItem{
			"/items": {
				Post: &types.Operation{
					RequestBody: &types.RequestBody{
						Content: map[string]types.MediaType{
							"application/json": {Schema: &types.Schema{Ref: "#/components/schemas/ItemCreate"}},
						},
					},
					Responses: map[string]types.Response{
						"201": {
							Content: map[string]types.MediaType{
								"application/json": {Schema: &types.Schema{Ref: "#/components/schemas/Item"}},
							},
						},
					},
				},
			},
		},
	}

	res := Link(doc, "openapi.yaml", nil, fakeLookup{})

	require.Len(t, res.VirtualRoutes, 1)
	route := res.VirtualRoutes[0]
	assert.Equal(t, model.NewNodeId(model.AdapterOpenAPI, "openapi.yaml", "ItemCreate"), route.RequestSchemaRef)
	assert.Equal(t, model.NewNodeId(model.AdapterOpenAPI, "openapi.yaml", "Item"), route.ResponseSchemaRef)
}

func TestLink_BridgesComponentToBackendAndFrontend(t *testing.T) {
	doc := &types.OpenAPI{
		OpenAPI: "3.0.3",
		Paths:   map[string]types.PathItem{},
		Components: &types.Components{
			Schemas: map[string]*types.Schema{
				"User": {
					Type:     "object",
					Required: []string{"id"},
					Properties: map[string]*types.Schema{
						"id": {Type: "string"},
					},
				},
			},
		},
	}

	backendId := model.NewNodeId(model.AdapterFastAPI, "app/schemas.py", "User")
	frontendId := model.NewNodeId(model.AdapterTypeScript, "src/types.ts", "User")
	lookup := fakeLookup{
		"User": {
			model.FlavorPydantic:    {Id: backendId},
			model.FlavorTSInterface: {Id: frontendId},
		},
	}

	res := Link(doc, "openapi.yaml", nil, lookup)

	require.Len(t, res.Bridges, 1)
	bridge := res.Bridges[0]
	assert.Equal(t, "User", bridge.ComponentName)
	assert.Equal(t, backendId, bridge.BackendRef)
	assert.Equal(t, frontendId, bridge.FrontendRef)

	require.Len(t, res.Schemas, 1)
	assert.Equal(t, model.FlavorOpenAPIComponent, res.Schemas[0].Flavor)
	required, ok := res.Schemas[0].FieldByName("id")
	require.True(t, ok)
	assert.True(t, required.Required)
}

func TestLink_FallsBackToZodThenTSAliasWhenNoInterface(t *testing.T) {
	doc := &types.OpenAPI{
		OpenAPI: "3.0.3",
		Paths:   map[string]types.PathItem{},
		Components: &types.Components{
			Schemas: map[string]*types.Schema{"Order": {Type: "object"}},
		},
	}

	zodId := model.NewNodeId(model.AdapterTypeScript, "src/schemas.ts", "Order")
	lookup := fakeLookup{"Order": {model.FlavorZod: {Id: zodId}}}

	res := Link(doc, "openapi.yaml", nil, lookup)

	require.Len(t, res.Bridges, 1)
	assert.Equal(t, zodId, res.Bridges[0].FrontendRef)
}
