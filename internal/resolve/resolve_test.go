// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/pkg/model"
)

func TestResolvePython_AbsoluteImport(t *testing.T) {
	known := []string{"app/models/user.py", "app/routes.py"}
	r := New(known, true, 0, nil)

	id, err := r.ResolvePython("app/routes.py", "User", "app.models.user", "")
	require.NoError(t, err)
	assert.Equal(t, model.NewNodeId(model.AdapterFastAPI, "app/models/user.py", "User"), id)
}

func TestResolvePython_RelativeImport(t *testing.T) {
	known := []string{"app/models/user.py", "app/routes/users.py"}
	r := New(known, true, 0, nil)

	id, err := r.ResolvePython("app/routes/users.py", "User", "..models.user", "")
	require.NoError(t, err)
	assert.Equal(t, model.NewNodeId(model.AdapterFastAPI, "app/models/user.py", "User"), id)
}

func TestResolvePython_StrictModeMissingModule(t *testing.T) {
	r := New(nil, true, 0, nil)

	_, err := r.ResolvePython("app/routes.py", "User", "app.models.user", "")
	require.Error(t, err)

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, ErrModuleNotFound, importErr.Kind)
}

func TestResolvePython_SafeModeGuessesPath(t *testing.T) {
	r := New(nil, false, 0, nil)

	id, err := r.ResolvePython("app/routes.py", "User", "app.models.user", "")
	require.NoError(t, err)
	assert.Equal(t, "app/models/user.py", id.SourcePath)
}

func TestResolvePython_CachesMisses(t *testing.T) {
	r := New(nil, true, 0, nil)

	_, err1 := r.ResolvePython("app/routes.py", "User", "app.models.user", "")
	_, err2 := r.ResolvePython("app/routes.py", "User", "app.models.user", "")
	require.Error(t, err1)
	require.Error(t, err2)
}

func TestResolveTypeScript_RelativeImport(t *testing.T) {
	known := []string{"src/api/user.ts", "src/hooks/useUser.ts"}
	r := New(known, true, 0, nil)

	id, err := r.ResolveTypeScript("src/hooks/useUser.ts", "fetchUser", "../api/user")
	require.NoError(t, err)
	assert.Equal(t, "src/api/user.ts", id.SourcePath)
}

func TestResolveTypeScript_AliasPath(t *testing.T) {
	known := []string{"src/app/user.ts"}
	aliases := map[string]string{"@/": "src/"}
	r := New(known, true, 0, aliases)

	id, err := r.ResolveTypeScript("src/hooks/useUser.ts", "User", "@/app/user")
	require.NoError(t, err)
	assert.Equal(t, "src/app/user.ts", id.SourcePath)
}

func TestResolveTypeScript_StrictModeMissingModule(t *testing.T) {
	r := New(nil, true, 0, nil)

	_, err := r.ResolveTypeScript("src/hooks/useUser.ts", "User", "../api/user")
	require.Error(t, err)

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, ErrModuleNotFound, importErr.Kind)
}

func TestResolveReExport_FollowsChain(t *testing.T) {
	r := New([]string{"src/api/index.ts"}, true, 0, nil)
	r.AddReExport(ReExport{Source: "src/index.ts", Target: "src/api/index.ts"})

	target, err := r.ResolveReExport("src/index.ts", "fetchUser")
	require.NoError(t, err)
	assert.Equal(t, "src/api/index.ts", target)
}

func TestResolveReExport_DetectsCycle(t *testing.T) {
	r := New(nil, true, 0, nil)
	r.AddReExport(ReExport{Source: "a.ts", Target: "b.ts"})
	r.AddReExport(ReExport{Source: "b.ts", Target: "a.ts"})

	_, err := r.ResolveReExport("a.ts", "x")
	require.Error(t, err)

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, ErrCyclicReExport, importErr.Kind)
}

func TestResolveReExport_MaxDepthExceeded(t *testing.T) {
	r := New(nil, true, 1, nil)
	r.AddReExport(ReExport{Source: "a.ts", Target: "b.ts"})
	r.AddReExport(ReExport{Source: "b.ts", Target: "c.ts"})
	r.AddReExport(ReExport{Source: "c.ts", Target: "d.ts"})

	_, err := r.ResolveReExport("a.ts", "x")
	require.Error(t, err)

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, ErrMaxDepthExceeded, importErr.Kind)
}

func TestLoadTSConfigPaths(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{
  // comment is stripped before decoding
  "compilerOptions": {
    "baseUrl": ".",
    "paths": {
      "@/*": ["src/*"],
      "@components/*": ["src/components/*"],
    },
  },
}`
	path := filepath.Join(tmpDir, "tsconfig.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	paths, err := LoadTSConfigPaths(path, tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(tmpDir, "src/")), paths["@/"])
	assert.Equal(t, filepath.ToSlash(filepath.Join(tmpDir, "src/components/")), paths["@components/"])
}
