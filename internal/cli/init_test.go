// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/internal/config"
)

func TestInferProjectName_FromPyproject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(`[project]
name = "orders-api"
version = "0.1.0"
`), 0o644))

	assert.Equal(t, "orders-api", inferProjectName(dir))
}

func TestInferProjectName_FromPackageJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "orders-web"}`), 0o644))

	assert.Equal(t, "orders-web", inferProjectName(dir))
}

func TestInferProjectName_FallsBackToDirName(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Base(dir), inferProjectName(dir))
}

func TestDetectAdapters_FastAPI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.py"), []byte("app = object()"), 0o644))

	adapters := detectAdapters(dir)
	require.Len(t, adapters, 1)
	assert.Equal(t, config.AdapterFastAPI, adapters[0].Type)
	assert.Equal(t, "app/main.py", adapters[0].AppPath)
}

func TestDetectAdapters_NestJS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"dependencies":{"@nestjs/core":"^10.0.0"}}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))

	adapters := detectAdapters(dir)
	require.Len(t, adapters, 1)
	assert.Equal(t, config.AdapterNestJS, adapters[0].Type)
	assert.Equal(t, []string{"src"}, adapters[0].SrcPaths)
}

func TestDetectAdapters_GenericTypeScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "frontend", "src"), 0o755))

	adapters := detectAdapters(dir)
	require.Len(t, adapters, 1)
	assert.Equal(t, config.AdapterTypeScript, adapters[0].Type)
	assert.Equal(t, []string{"frontend/src"}, adapters[0].SrcPaths)
}

func TestDetectAdapters_FastAPIAndFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.py"), []byte("app = object()"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "frontend", "src"), 0o755))

	adapters := detectAdapters(dir)
	require.Len(t, adapters, 2)
}

func TestDetectAdapters_NoneFound(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, detectAdapters(dir))
}

func TestRunInit_WritesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.py"), []byte("app = object()"), 0o644))

	_, err = executeCommand(rootCmd, "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, templateConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# contractlens configuration file")
	assert.Contains(t, string(data), "fastapi")
}

func TestRunInit_RefusesToOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	require.NoError(t, os.WriteFile(filepath.Join(dir, templateConfigFile), []byte("project_name: existing\n"), 0o644))

	_, err = executeCommand(rootCmd, "init")
	assert.Error(t, err)
}
