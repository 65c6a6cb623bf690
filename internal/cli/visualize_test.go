// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVisualize_WritesDOTFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	writeCheckProject(t, dir)

	outputPath := filepath.Join(dir, "graph.dot")
	_, err = executeCommand(rootCmd, "visualize", "--output", outputPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph fastapi {")
	assert.Contains(t, string(data), "digraph typescript {")
}

func TestRunVisualize_MissingConfigIsConfigError(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	_, err = executeCommand(rootCmd, "visualize")
	require.Error(t, err)
	require.IsType(t, &exitCodeError{}, err)
	assert.Equal(t, ExitCodeConfigError, err.(*exitCodeError).code)
}
