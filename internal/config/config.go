// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package config provides configuration loading and validation for contractlens.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/spf13/viper"
)

// Severity is the configured mismatch severity, mirrored here (rather than
// imported from pkg/model) so this package has no dependency on the domain
// model and can be validated before the pipeline exists.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// AdapterType identifies which extractor an AdapterConfig feeds.
type AdapterType string

const (
	AdapterFastAPI    AdapterType = "fastapi"
	AdapterTypeScript AdapterType = "typescript"
	AdapterNestJS     AdapterType = "nestjs"
)

// AdapterConfig configures one backend or frontend source tree to scan.
type AdapterConfig struct {
	Type         AdapterType `mapstructure:"type" yaml:"type" json:"type"`
	AppPath      string      `mapstructure:"app_path" yaml:"app_path" json:"app_path"`
	SrcPaths     []string    `mapstructure:"src_paths" yaml:"src_paths" json:"src_paths"`
	OpenAPIPath  string      `mapstructure:"openapi_path" yaml:"openapi_path" json:"openapi_path"`
	StrictImports bool       `mapstructure:"strict_imports" yaml:"strict_imports" json:"strict_imports"`
}

// RulesConfig maps each mismatch kind to the severity the checker reports it at.
type RulesConfig struct {
	TypeMismatch     Severity `mapstructure:"type_mismatch" yaml:"type_mismatch" json:"type_mismatch"`
	MissingField     Severity `mapstructure:"missing_field" yaml:"missing_field" json:"missing_field"`
	UnnormalizedData Severity `mapstructure:"unnormalized_data" yaml:"unnormalized_data" json:"unnormalized_data"`
}

// OutputConfig controls the report writer.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Path   string `mapstructure:"path" yaml:"path" json:"path"`
}

// Config is the contractlens run configuration: adapters to scan, the
// optional OpenAPI document to link against, severity rules, and the
// bounds that keep the resolver and chain walker terminating.
type Config struct {
	ProjectName       string          `mapstructure:"project_name" yaml:"project_name" json:"project_name"`
	MaxRecursionDepth int             `mapstructure:"max_recursion_depth" yaml:"max_recursion_depth" json:"max_recursion_depth"`
	OpenAPIPath       string          `mapstructure:"openapi_path" yaml:"openapi_path" json:"openapi_path"`
	Output            OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	Adapters          []AdapterConfig `mapstructure:"adapters" yaml:"adapters" json:"adapters"`
	Rules             RulesConfig     `mapstructure:"rules" yaml:"rules" json:"rules"`
}

// defaultMaxRecursionDepth is the safety bound applied when the option is
// absent or non-positive. spec.md requires a bound even when the user asks
// for "unlimited"; this is the implementer-chosen default that keeps the
// resolver and chain walker from ever looping on pathological input.
const defaultMaxRecursionDepth = 64

// configFileNames is the list of config file names to search for (in order).
// The .jsonc variants are decoded with comment stripping before unmarshalling.
var configFileNames = []string{
	"contractlens.yaml",
	"contractlens.json",
	"contractlens.jsonc",
	".contractlens.yaml",
	".contractlens.json",
}

var supportedFormats = []string{"json", "markdown", "dot"}
var supportedAdapterTypes = []string{"fastapi", "typescript", "nestjs"}
var supportedSeverities = []string{"critical", "warning", "info"}

// ErrConfigNotFound is returned when no config file is found.
var ErrConfigNotFound = errors.New("config file not found")

// ValidationError represents a single configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every failure found during Validate, so a
// user sees every problem in one run instead of fixing them one at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Field)
		sb.WriteString(": ")
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Default returns a Config with no adapters configured. Load does not fall
// back to it; the init subcommand starts its template from it.
func Default() *Config {
	return &Config{
		ProjectName:       "api",
		MaxRecursionDepth: defaultMaxRecursionDepth,
		Output:            OutputConfig{Format: "json", Path: "contractlens-report.json"},
		Rules: RulesConfig{
			TypeMismatch:     SeverityCritical,
			MissingField:     SeverityCritical,
			UnnormalizedData: SeverityWarning,
		},
	}
}

// Load loads the configuration from a file, searching the usual names in
// the current directory when configPath is empty.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		for _, name := range configFileNames {
			if _, err := os.Stat(name); err == nil {
				configPath = name
				break
			}
		}
		if configPath == "" {
			return nil, ErrConfigNotFound
		}
	}

	if strings.HasSuffix(configPath, ".jsonc") {
		return loadJSONC(configPath)
	}

	v := viper.New()
	applyDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyGoDefaults(&cfg)
	return &cfg, nil
}

// loadJSONC reads a JSON-with-comments config file by stripping comments
// before handing the result to the standard decoder; viper has no native
// JSONC support, so this bypasses it entirely for that one extension.
func loadJSONC(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	stripped := jsonc.ToJSON(raw)

	var cfg Config
	if err := json.Unmarshal(stripped, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyGoDefaults(&cfg)
	return &cfg, nil
}

// LoadFromPath loads the configuration from a specific directory.
func LoadFromPath(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, ErrConfigNotFound
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("max_recursion_depth", defaultMaxRecursionDepth)
	v.SetDefault("output.format", "json")
	v.SetDefault("output.path", "contractlens-report.json")
}

// applyGoDefaults fills in fields the file left unset, after unmarshalling,
// since neither viper nor encoding/json apply defaults to a value it never
// saw a key for.
func applyGoDefaults(cfg *Config) {
	if cfg.MaxRecursionDepth <= 0 {
		cfg.MaxRecursionDepth = defaultMaxRecursionDepth
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "contractlens-report." + extensionFor(cfg.Output.Format)
	}
	if cfg.Rules.TypeMismatch == "" {
		cfg.Rules.TypeMismatch = SeverityCritical
	}
	if cfg.Rules.MissingField == "" {
		cfg.Rules.MissingField = SeverityCritical
	}
	if cfg.Rules.UnnormalizedData == "" {
		cfg.Rules.UnnormalizedData = SeverityWarning
	}
}

func extensionFor(format string) string {
	switch format {
	case "markdown":
		return "md"
	case "dot":
		return "dot"
	default:
		return "json"
	}
}

// Validate validates the configuration, returning every problem found
// rather than stopping at the first one.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.ProjectName == "" {
		errs = append(errs, ValidationError{Field: "project_name", Message: "project_name is required"})
	}

	if !contains(supportedFormats, c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: %s", c.Output.Format, strings.Join(supportedFormats, ", ")),
		})
	}

	if len(c.Adapters) == 0 {
		errs = append(errs, ValidationError{Field: "adapters", Message: "at least one adapter must be configured"})
	}

	for i, a := range c.Adapters {
		field := fmt.Sprintf("adapters[%d]", i)
		if !contains(supportedAdapterTypes, string(a.Type)) {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unsupported adapter type %q, must be one of: %s", a.Type, strings.Join(supportedAdapterTypes, ", ")),
			})
			continue
		}
		if a.Type == AdapterFastAPI && a.AppPath == "" {
			errs = append(errs, ValidationError{Field: field + ".app_path", Message: "app_path is required for a fastapi adapter"})
		}
		if a.Type != AdapterFastAPI && len(a.SrcPaths) == 0 {
			errs = append(errs, ValidationError{Field: field + ".src_paths", Message: "src_paths is required for a typescript or nestjs adapter"})
		}
	}

	for _, sev := range []struct {
		field string
		value Severity
	}{
		{"rules.type_mismatch", c.Rules.TypeMismatch},
		{"rules.missing_field", c.Rules.MissingField},
		{"rules.unnormalized_data", c.Rules.UnnormalizedData},
	} {
		if sev.value != "" && !contains(supportedSeverities, string(sev.value)) {
			errs = append(errs, ValidationError{
				Field:   sev.field,
				Message: fmt.Sprintf("unsupported severity %q, must be one of: %s", sev.value, strings.Join(supportedSeverities, ", ")),
			})
		}
	}

	if c.MaxRecursionDepth < 0 {
		errs = append(errs, ValidationError{Field: "max_recursion_depth", Message: "max_recursion_depth must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ConfigFilePath returns the path of the config file that would be loaded
// from the current directory, if any.
func ConfigFilePath() string {
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
