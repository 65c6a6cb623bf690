// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"bytes"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/contractlens/contractlens/pkg/types"
)

// structuralSchemaJSON is a minimal structural check on an OpenAPI
// document: the fields the linker actually reads must be present and of
// the right shape. Full OpenAPI 3.0/3.1 schema validation is out of scope;
// see DESIGN.md.
const structuralSchemaJSON = `{
  "type": "object",
  "required": ["openapi", "paths"],
  "properties": {
    "openapi": {"type": "string"},
    "paths": {"type": "object"}
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func structuralSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(structuralSchemaJSON)))
		if err != nil {
			compileErr = fmt.Errorf("decode structural schema: %w", err)
			return
		}
		if err := c.AddResource("mem://openapi/structural.json", doc); err != nil {
			compileErr = fmt.Errorf("register structural schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile("mem://openapi/structural.json")
	})
	return compiled, compileErr
}

// OpenAPIError wraps a document that failed to load or failed structural
// validation.
type OpenAPIError struct {
	Path string
	Err  error
}

func (e *OpenAPIError) Error() string {
	return fmt.Sprintf("openapi: %s: %v", e.Path, e.Err)
}

func (e *OpenAPIError) Unwrap() error { return e.Err }

// Load reads and structurally validates an OpenAPI document from path,
// returning the parsed document on success. Format (YAML/JSON) is inferred
// from the extension, per ReadFile.
func Load(path string) (*types.OpenAPI, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, &OpenAPIError{Path: path, Err: err}
	}

	schema, err := structuralSchema()
	if err != nil {
		return nil, &OpenAPIError{Path: path, Err: err}
	}

	// Re-decode to a generic map for jsonschema validation, omitting a key
	// entirely when the typed struct left it at its zero value, so the
	// schema's "required" check actually catches an absent field instead of
	// an empty string/map that was present but vacuous.
	generic := map[string]any{}
	if doc.OpenAPI != "" {
		generic["openapi"] = doc.OpenAPI
	}
	if doc.Paths != nil {
		generic["paths"] = pathsToGeneric(doc.Paths)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, &OpenAPIError{Path: path, Err: fmt.Errorf("structural validation failed: %w", err)}
	}

	return doc, nil
}

func pathsToGeneric(paths map[string]types.PathItem) map[string]any {
	out := make(map[string]any, len(paths))
	for k := range paths {
		out[k] = map[string]any{}
	}
	return out
}
