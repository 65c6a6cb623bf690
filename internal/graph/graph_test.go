// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/pkg/model"
)

func TestAddRoute_RejectsDuplicateId(t *testing.T) {
	g := New()
	id := model.NewNodeId(model.AdapterFastAPI, "app/routes.py", "route:GET /users")
	route := model.Route{Id: id, Method: "GET", Path: "/users"}

	require.NoError(t, g.AddRoute(route))
	err := g.AddRoute(route)
	require.Error(t, err)
	assert.IsType(t, &DuplicateIdError{}, err)
}

func TestUpdateRoute_ReplacesExistingEntry(t *testing.T) {
	g := New()
	id := model.NewNodeId(model.AdapterFastAPI, "app/routes.py", "route:GET /users")
	require.NoError(t, g.AddRoute(model.Route{Id: id, Method: "GET", Path: "/users"}))

	refId := model.NewNodeId(model.AdapterOpenAPI, "openapi.yaml", "User")
	g.UpdateRoute(model.Route{Id: id, Method: "GET", Path: "/users", ResponseSchemaRef: refId})

	got, ok := g.Route(id)
	require.True(t, ok)
	assert.Equal(t, refId, got.ResponseSchemaRef)
}

func TestUpdateRoute_PanicsAfterFreeze(t *testing.T) {
	g := New()
	id := model.NewNodeId(model.AdapterFastAPI, "app/routes.py", "route:GET /users")
	require.NoError(t, g.AddRoute(model.Route{Id: id, Method: "GET", Path: "/users"}))
	g.Freeze()

	assert.Panics(t, func() {
		g.UpdateRoute(model.Route{Id: id, Method: "GET", Path: "/users"})
	})
}
