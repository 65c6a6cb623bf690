// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package nestjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/pkg/model"
)

const sampleController = `
import { Controller, Get, Post, Param, Body } from '@nestjs/common';
import { IsEmail, IsOptional, IsInt } from 'class-validator';

export class CreateUserDto {
  @IsEmail()
  email: string;

  @IsOptional()
  @IsInt()
  age: number;
}

@Controller('users')
export class UsersController {
  @Get(':id')
  findOne(@Param('id') id: string) {
    return id;
  }

  @Post()
  create(@Body() payload: CreateUserDto) {
    return payload;
  }
}
`

func TestExtract_NonNestJSFileIsEmpty(t *testing.T) {
	e := New()
	defer e.Close()

	res, err := e.Extract("src/util.ts", []byte("export function add(a: number, b: number) { return a + b; }"))
	require.NoError(t, err)
	assert.Empty(t, res.Routes)
	assert.Empty(t, res.Schemas)
}

func TestExtract_ControllerRoutes(t *testing.T) {
	e := New()
	defer e.Close()

	res, err := e.Extract("src/users/users.controller.ts", []byte(sampleController))
	require.NoError(t, err)

	require.Len(t, res.Routes, 2)

	byMethod := map[string]model.Route{}
	for _, r := range res.Routes {
		byMethod[r.Method] = r
	}

	get, ok := byMethod["GET"]
	require.True(t, ok)
	assert.Equal(t, "/users/{id}", get.Path)
	assert.False(t, get.HandlerSymbol.IsZero())

	post, ok := byMethod["POST"]
	require.True(t, ok)
	assert.Equal(t, "/users", post.Path)
	assert.Equal(t, model.NewNodeId(model.AdapterNestJS, "src/users/users.controller.ts", "CreateUserDto"), post.RequestSchemaRef)
}

func TestExtract_ImplementsRouteEdges(t *testing.T) {
	e := New()
	defer e.Close()

	res, err := e.Extract("src/users/users.controller.ts", []byte(sampleController))
	require.NoError(t, err)

	var count int
	for _, edge := range res.Edges {
		if edge.Kind == model.EdgeImplementsRoute {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestExtract_DTOSchemaFields(t *testing.T) {
	e := New()
	defer e.Close()

	res, err := e.Extract("src/users/users.controller.ts", []byte(sampleController))
	require.NoError(t, err)

	require.Len(t, res.Schemas, 1)
	dto := res.Schemas[0]
	assert.Equal(t, "CreateUserDto", dto.Name)
	assert.Equal(t, model.FlavorDTO, dto.Flavor)

	email, ok := dto.FieldByName("email")
	require.True(t, ok)
	assert.True(t, email.Required)
	assert.Contains(t, email.Validators, model.ValidatorEmail)

	age, ok := dto.FieldByName("age")
	require.True(t, ok)
	assert.False(t, age.Required)
	assert.Contains(t, age.Validators, model.ValidatorInt)
}

func TestNormalizeRoutePath(t *testing.T) {
	assert.Equal(t, "/users/{id}", normalizeRoutePath("/users/:id"))
	assert.Equal(t, "/users/{id}/posts/{postId}", normalizeRoutePath("/users/:id/posts/:postId"))
}

func TestJoinControllerPath(t *testing.T) {
	assert.Equal(t, "/users/id", joinControllerPath("users", "id"))
	assert.Equal(t, "/users", joinControllerPath("users", ""))
	assert.Equal(t, "/", joinControllerPath("", ""))
}
