// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "api", cfg.ProjectName)
	assert.Equal(t, defaultMaxRecursionDepth, cfg.MaxRecursionDepth)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "contractlens-report.json", cfg.Output.Path)
	assert.Equal(t, SeverityCritical, cfg.Rules.TypeMismatch)
	assert.Equal(t, SeverityCritical, cfg.Rules.MissingField)
	assert.Equal(t, SeverityWarning, cfg.Rules.UnnormalizedData)
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	require.NoError(t, os.Chdir(tmpDir))

	_, err = Load("")
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_YAMLConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	configContent := `
project_name: payments
max_recursion_depth: 32
adapters:
  - type: fastapi
    app_path: app/main.py
  - type: typescript
    src_paths: ["src"]
output:
  format: markdown
  path: report.md
rules:
  type_mismatch: critical
  missing_field: warning
  unnormalized_data: info
`
	configPath := filepath.Join(tmpDir, "contractlens.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	require.NoError(t, os.Chdir(tmpDir))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "payments", cfg.ProjectName)
	assert.Equal(t, 32, cfg.MaxRecursionDepth)
	require.Len(t, cfg.Adapters, 2)
	assert.Equal(t, AdapterFastAPI, cfg.Adapters[0].Type)
	assert.Equal(t, "app/main.py", cfg.Adapters[0].AppPath)
	assert.Equal(t, AdapterTypeScript, cfg.Adapters[1].Type)
	assert.Equal(t, []string{"src"}, cfg.Adapters[1].SrcPaths)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.Equal(t, "report.md", cfg.Output.Path)
	assert.Equal(t, Severity("info"), cfg.Rules.UnnormalizedData)
}

func TestLoad_JSONConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	configContent := `{
  "project_name": "orders",
  "adapters": [{"type": "nestjs", "src_paths": ["src"]}]
}`
	configPath := filepath.Join(tmpDir, "contractlens.json")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	require.NoError(t, os.Chdir(tmpDir))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.ProjectName)
	require.Len(t, cfg.Adapters, 1)
	assert.Equal(t, AdapterNestJS, cfg.Adapters[0].Type)
}

func TestLoad_JSONCConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `{
  // inline comment, stripped before decoding
  "project_name": "carts",
  "adapters": [
    {"type": "typescript", "src_paths": ["src"]}, // trailing comma below
  ],
}`
	configPath := filepath.Join(tmpDir, "contractlens.jsonc")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "carts", cfg.ProjectName)
	assert.Equal(t, defaultMaxRecursionDepth, cfg.MaxRecursionDepth)
}

func TestLoad_DotPrefixedConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	configContent := "project_name: hidden\n"
	configPath := filepath.Join(tmpDir, ".contractlens.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	require.NoError(t, os.Chdir(tmpDir))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "hidden", cfg.ProjectName)
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := "project_name: explicit\n"
	configPath := filepath.Join(tmpDir, "custom-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.ProjectName)
}

func TestLoad_ConfigFilePriority(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalDir)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "contractlens.yaml"), []byte("project_name: yaml-wins\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "contractlens.json"), []byte(`{"project_name": "json-loses"}`), 0644))

	require.NoError(t, os.Chdir(tmpDir))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "yaml-wins", cfg.ProjectName)
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: AdapterFastAPI, AppPath: "app/main.py"}}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NoAdapters(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Contains(t, valErrs.Error(), "adapters")
}

func TestValidate_InvalidOutputFormat(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: AdapterFastAPI, AppPath: "app/main.py"}}
	cfg.Output.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	require.Len(t, valErrs, 1)
	assert.Equal(t, "output.format", valErrs[0].Field)
}

func TestValidate_UnsupportedAdapterType(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: "flask", AppPath: "app.py"}}

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Equal(t, "adapters[0].type", valErrs[0].Field)
}

func TestValidate_FastAPIMissingAppPath(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: AdapterFastAPI}}

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Equal(t, "adapters[0].app_path", valErrs[0].Field)
}

func TestValidate_TypeScriptMissingSrcPaths(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: AdapterTypeScript}}

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Equal(t, "adapters[0].src_paths", valErrs[0].Field)
}

func TestValidate_NegativeMaxRecursionDepth(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: AdapterFastAPI, AppPath: "app.py"}}
	cfg.MaxRecursionDepth = -1

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Equal(t, "max_recursion_depth", valErrs[0].Field)
}

func TestValidate_InvalidSeverity(t *testing.T) {
	cfg := Default()
	cfg.Adapters = []AdapterConfig{{Type: AdapterFastAPI, AppPath: "app.py"}}
	cfg.Rules.TypeMismatch = "fatal"

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Equal(t, "rules.type_mismatch", valErrs[0].Field)
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "xml"
	cfg.MaxRecursionDepth = -5

	err := cfg.Validate()
	require.Error(t, err)

	var valErrs ValidationErrors
	require.ErrorAs(t, err, &valErrs)
	assert.Len(t, valErrs, 3) // no adapters, bad format, negative depth
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "project_name", Message: "project_name is required"}
	assert.Contains(t, err.Error(), "project_name")
	assert.Contains(t, err.Error(), "required")
}

func TestValidationErrors_ErrorEmpty(t *testing.T) {
	errs := ValidationErrors{}
	assert.Equal(t, "no validation errors", errs.Error())
}

func TestValidationErrors_ErrorSingle(t *testing.T) {
	errs := ValidationErrors{{Field: "field1", Message: "error1"}}
	assert.Contains(t, errs.Error(), "config validation error")
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := "project_name: from-path\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "contractlens.yaml"), []byte(configContent), 0644))

	cfg, err := LoadFromPath(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "from-path", cfg.ProjectName)
}

func TestLoadFromPath_NoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFromPath(tmpDir)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
