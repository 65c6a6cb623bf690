// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/contractlens/contractlens/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a template contractlens configuration file",
	Long: `Write a template contractlens configuration file in the current
directory, auto-detecting the FastAPI, NestJS and generic TypeScript
source roots already present in the project.

Example:
  contractlens init                   # Auto-detect adapters and write config
  contractlens init --force           # Overwrite an existing config file`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

const templateConfigFile = "contractlens.yaml"

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(templateConfigFile); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", templateConfigFile)
	}

	projectRoot, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("failed to determine project root: %w", err)
	}

	cfg := config.Default()
	cfg.ProjectName = inferProjectName(projectRoot)
	cfg.Adapters = detectAdapters(projectRoot)

	if len(cfg.Adapters) == 0 {
		printInfo("No adapter source roots auto-detected; edit %s to add fastapi/nestjs/typescript adapters manually", templateConfigFile)
	} else {
		var names []string
		for _, a := range cfg.Adapters {
			names = append(names, string(a.Type))
		}
		printInfo("Detected adapters: %s", strings.Join(names, ", "))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	output := configFileHeader + string(data)

	if err := os.WriteFile(templateConfigFile, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	printInfo("Created %s", templateConfigFile)
	printVerbose("Project name: %s", cfg.ProjectName)
	printVerbose("Max recursion depth: %d", cfg.MaxRecursionDepth)

	return nil
}

const configFileHeader = `# contractlens configuration file
# https://github.com/contractlens/contractlens

`

// inferProjectName derives a project name from pyproject.toml or
// package.json in projectRoot, falling back to the directory name.
func inferProjectName(projectRoot string) string {
	if name := nameFromPyproject(filepath.Join(projectRoot, "pyproject.toml")); name != "" {
		return name
	}
	if name := nameFromPackageJSON(filepath.Join(projectRoot, "package.json")); name != "" {
		return name
	}
	return filepath.Base(projectRoot)
}

func nameFromPyproject(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "name") && strings.Contains(line, "=") {
			value := strings.TrimSpace(strings.SplitN(line, "=", 2)[1])
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

func nameFromPackageJSON(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}

// detectAdapters looks for the conventional source roots of each adapter
// this module supports, returning one AdapterConfig per match. A project
// may legitimately mix a FastAPI backend with both a NestJS gateway and a
// generic TypeScript frontend, so every match is kept.
func detectAdapters(projectRoot string) []config.AdapterConfig {
	var adapters []config.AdapterConfig

	for _, candidate := range []string{"app/main.py", "main.py", "app.py"} {
		if fileExists(filepath.Join(projectRoot, candidate)) {
			adapters = append(adapters, config.AdapterConfig{Type: config.AdapterFastAPI, AppPath: candidate})
			break
		}
	}

	if hasDependency(filepath.Join(projectRoot, "package.json"), "@nestjs/core") {
		for _, candidate := range []string{"src"} {
			if dirExists(filepath.Join(projectRoot, candidate)) {
				adapters = append(adapters, config.AdapterConfig{Type: config.AdapterNestJS, SrcPaths: []string{candidate}})
				break
			}
		}
	}

	for _, candidate := range []string{"frontend/src", "web/src", "src"} {
		full := filepath.Join(projectRoot, candidate)
		if !dirExists(full) {
			continue
		}
		if hasDependency(filepath.Join(projectRoot, "package.json"), "@nestjs/core") && candidate == "src" {
			continue
		}
		adapters = append(adapters, config.AdapterConfig{Type: config.AdapterTypeScript, SrcPaths: []string{candidate}})
		break
	}

	return adapters
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// hasDependency reports whether the quoted name appears anywhere in a
// package.json's text. The file is not parsed, so the match is not limited
// to the dependencies or devDependencies lists.
func hasDependency(packageJSONPath, name string) bool {
	content, err := os.ReadFile(packageJSONPath)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), `"`+name+`"`)
}
