// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/internal/cache"
	"github.com/contractlens/contractlens/internal/config"
	"github.com/contractlens/contractlens/pkg/model"
)

const fastapiSource = `
from fastapi import FastAPI, APIRouter
from pydantic import BaseModel

app = FastAPI()
router = APIRouter(prefix="/users")


class UserCreate(BaseModel):
    name: str
    email: EmailStr
    age: Optional[int] = None


@router.post("/{user_id}", response_model=UserCreate)
async def create_user(user_id: str, payload: UserCreate):
    return payload
`

const frontendSource = `
import { z } from "zod";
import { useQuery } from "@tanstack/react-query";

export const UserCreateSchema = z.object({
  name: z.string(),
  email: z.string().email(),
  age: z.number().optional(),
});

export function useCreateUser(id: string) {
  return useQuery(["user", id], () => client.post("/users/{user_id}"));
}
`

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(appPath, srcPath string) *config.Config {
	cfg := config.Default()
	cfg.ProjectName = "demo"
	cfg.Adapters = []config.AdapterConfig{
		{Type: config.AdapterFastAPI, AppPath: appPath},
		{Type: config.AdapterTypeScript, SrcPaths: []string{srcPath}},
	}
	return cfg
}

func TestRun_AssemblesGraphAcrossAdapters(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "app")
	srcDir := filepath.Join(dir, "frontend")
	writeFile(t, appDir, "routes/users.py", fastapiSource)
	writeFile(t, srcDir, "hooks/useUser.ts", frontendSource)

	p := New(testConfig(appDir, srcDir), nil)
	result, err := p.Run()
	require.NoError(t, err)

	modules := result.Graph.Modules()
	assert.Len(t, modules, 2)

	var sawFastAPI, sawTypeScript bool
	for _, m := range modules {
		switch m.Adapter {
		case model.AdapterFastAPI:
			sawFastAPI = true
		case model.AdapterTypeScript:
			sawTypeScript = true
		}
	}
	assert.True(t, sawFastAPI, "expected a fastapi module in the graph")
	assert.True(t, sawTypeScript, "expected a typescript module in the graph")

	assert.NotEmpty(t, result.Graph.Routes())
	assert.NotEmpty(t, result.Graph.Schemas())
	assert.NotEmpty(t, result.Graph.ApiCalls())
}

func TestRun_ProducesReport(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "app")
	srcDir := filepath.Join(dir, "frontend")
	writeFile(t, appDir, "routes/users.py", fastapiSource)
	writeFile(t, srcDir, "hooks/useUser.ts", frontendSource)

	p := New(testConfig(appDir, srcDir), nil)
	result, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, "demo", result.Report.ProjectName)
	assert.NotEmpty(t, result.Report.RunID)
	assert.Equal(t, len(result.Report.Chains), result.Report.Summary.TotalChains)
}

func TestRun_NoAdaptersProducesEmptyReport(t *testing.T) {
	cfg := config.Default()
	cfg.ProjectName = "empty"

	p := New(cfg, nil)
	result, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Report.Summary.TotalChains)
	assert.Empty(t, result.Diagnostics)
}

const hookSource = `
import { useQuery } from "@tanstack/react-query";

export function useUser(id: string) {
  return useQuery(["user", id], () => client.get("/users/" + id));
}
`

const pageSource = `
import { useUser } from "../hooks/useUser";

export function UserPage() {
  return useUser("1");
}
`

func TestRun_ResolvesTypeScriptImportsIntoEdges(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "app")
	srcDir := filepath.Join(dir, "frontend")
	writeFile(t, appDir, "routes/users.py", fastapiSource)
	writeFile(t, srcDir, "hooks/useUser.ts", hookSource)
	writeFile(t, srcDir, "pages/UserPage.ts", pageSource)

	p := New(testConfig(appDir, srcDir), nil)
	result, err := p.Run()
	require.NoError(t, err)

	var sawImportEdge bool
	for _, e := range result.Graph.Edges() {
		if e.Kind == model.EdgeImports {
			sawImportEdge = true
			assert.Contains(t, e.Src.SourcePath, "UserPage.ts")
			assert.Contains(t, e.Dst.SourcePath, "useUser.ts")
		}
	}
	assert.True(t, sawImportEdge, "expected an EdgeImports edge between the page and the hook it imports")
}

func TestRun_UnreadableRootIsDiagnosedNotFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "does-not-exist"), filepath.Join(dir, "also-missing"))

	p := New(cfg, nil)
	result, err := p.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, result.Diagnostics)
	for _, d := range result.Diagnostics {
		assert.Equal(t, "scan", d.Stage)
	}
}

func TestRun_ReusesCacheOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, "app")
	srcDir := filepath.Join(dir, "frontend")
	writeFile(t, appDir, "routes/users.py", fastapiSource)
	writeFile(t, srcDir, "hooks/useUser.ts", frontendSource)

	c, err := cache.Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	cfg := testConfig(appDir, srcDir)

	first := New(cfg, c)
	r1, err := first.Run()
	require.NoError(t, err)
	require.NotEmpty(t, r1.Graph.Modules())

	paths, err := c.Paths(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, paths, "extraction results should have been cached")

	second := New(cfg, c)
	r2, err := second.Run()
	require.NoError(t, err)

	assert.Equal(t, len(r1.Graph.Modules()), len(r2.Graph.Modules()))
	assert.Equal(t, len(r1.Graph.Routes()), len(r2.Graph.Routes()))
}
