// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package model

// Language is the source dialect a Module was parsed from.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
)

// Module is one source file.
type Module struct {
	Path     string   `json:"path" yaml:"path"`
	Adapter  Adapter  `json:"adapter" yaml:"adapter"`
	Language Language `json:"language" yaml:"language"`
}

// SymbolKind distinguishes what a Symbol names.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolClass    SymbolKind = "class"
	SymbolMethod   SymbolKind = "method"
	SymbolConst    SymbolKind = "const"
	SymbolSchema   SymbolKind = "schema"
	SymbolRoute    SymbolKind = "route"
)

// Span is a byte-offset-free source position, line/column only; parsers
// translate tree-sitter byte offsets into this shape once, at extraction
// time, so nothing downstream needs the tree.
type Span struct {
	StartLine int `json:"start_line" yaml:"start_line"`
	StartCol  int `json:"start_col" yaml:"start_col"`
	EndLine   int `json:"end_line" yaml:"end_line"`
	EndCol    int `json:"end_col" yaml:"end_col"`
}

// Symbol is a named top-level binding: a function, class, method, constant,
// schema or route declaration.
type Symbol struct {
	Id     NodeId     `json:"id" yaml:"id"`
	Kind   SymbolKind `json:"kind" yaml:"kind"`
	Module string     `json:"module" yaml:"module"`
	Span   Span       `json:"span" yaml:"span"`
}

// RouteOrigin distinguishes routes discovered in code from ones synthesized
// purely from an OpenAPI document.
type RouteOrigin string

const (
	RouteOriginCode           RouteOrigin = "code"
	RouteOriginOpenAPIVirtual RouteOrigin = "openapi-virtual"
)

// Route is an HTTP endpoint, whether discovered in code or synthesized from
// an OpenAPI document as a virtual route.
type Route struct {
	Id                NodeId      `json:"id" yaml:"id"`
	Method            string      `json:"method" yaml:"method"`
	Path              string      `json:"path" yaml:"path"`
	HandlerSymbol     NodeId      `json:"handler_symbol,omitempty" yaml:"handler_symbol,omitempty"`
	RequestSchemaRef  NodeId      `json:"request_schema_ref,omitempty" yaml:"request_schema_ref,omitempty"`
	ResponseSchemaRef NodeId      `json:"response_schema_ref,omitempty" yaml:"response_schema_ref,omitempty"`
	Origin            RouteOrigin `json:"origin" yaml:"origin"`
	Adapter           Adapter     `json:"adapter" yaml:"adapter"`
}

// HasHandler reports whether the route resolved to a concrete handler
// symbol, as opposed to an OpenAPI-virtual route with no code behind it.
func (r Route) HasHandler() bool {
	return !r.HandlerSymbol.IsZero()
}

// SchemaFlavor is the tagged variant that lets the contract checker treat
// every backend/frontend/document schema representation uniformly.
type SchemaFlavor string

const (
	FlavorPydantic        SchemaFlavor = "pydantic"
	FlavorZod             SchemaFlavor = "zod"
	FlavorTSInterface     SchemaFlavor = "ts-interface"
	FlavorTSAlias         SchemaFlavor = "ts-alias"
	FlavorOpenAPIComponent SchemaFlavor = "openapi-component"
	FlavorDTO             SchemaFlavor = "dto"
	FlavorORM             SchemaFlavor = "orm"
)

// Validator is a normalization predicate attached to a Field: the kinds of
// shape constraint the contract checker compares across a stitch.
type Validator string

const (
	ValidatorEmail Validator = "email"
	ValidatorURL   Validator = "url"
	ValidatorRegex Validator = "regex"
	ValidatorInt   Validator = "int"
	ValidatorUUID  Validator = "uuid"
)

// Field is one field of a Schema.
type Field struct {
	Name          string      `json:"name" yaml:"name"`
	DeclaredType  string      `json:"declared_type" yaml:"declared_type"`
	Required      bool        `json:"required" yaml:"required"`
	Validators    []Validator `json:"validators,omitempty" yaml:"validators,omitempty"`
	HasDefault    bool        `json:"has_default" yaml:"has_default"`
}

// Schema is a data shape: a Pydantic model, a Zod schema, a TS interface or
// type alias, an OpenAPI component, a class-validator DTO, or an ORM model.
type Schema struct {
	Id             NodeId       `json:"id" yaml:"id"`
	Flavor         SchemaFlavor `json:"flavor" yaml:"flavor"`
	Name           string       `json:"name" yaml:"name"`
	Fields         []Field      `json:"fields" yaml:"fields"`
	FromAttributes bool         `json:"from_attributes,omitempty" yaml:"from_attributes,omitempty"`
}

// FieldByName looks up a field by name, returning false if absent.
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// LibraryTag identifies the frontend data-fetching library an ApiCall was
// recognized from.
type LibraryTag string

const (
	LibraryTanstack    LibraryTag = "tanstack"
	LibrarySWR         LibraryTag = "swr"
	LibraryRTK         LibraryTag = "rtk"
	LibraryTRPC        LibraryTag = "trpc"
	LibraryApollo      LibraryTag = "apollo"
	LibraryNextAction  LibraryTag = "next-action"
	LibrarySDK         LibraryTag = "sdk"
	LibraryGeneric     LibraryTag = "generic"
)

// ApiCall is a frontend-side invocation of a backend endpoint.
type ApiCall struct {
	Id               NodeId     `json:"id" yaml:"id"`
	Library          LibraryTag `json:"library" yaml:"library"`
	Method           string     `json:"method" yaml:"method"`
	URLPattern       string     `json:"url_pattern" yaml:"url_pattern"`
	RequestTypeRef   NodeId     `json:"request_type_ref,omitempty" yaml:"request_type_ref,omitempty"`
	ResponseTypeRef  NodeId     `json:"response_type_ref,omitempty" yaml:"response_type_ref,omitempty"`
}

// EdgeKind is the relation an Edge represents.
type EdgeKind string

const (
	EdgeCalls           EdgeKind = "calls"
	EdgeImports         EdgeKind = "imports"
	EdgeDefines         EdgeKind = "defines"
	EdgeImplementsRoute EdgeKind = "implements-route"
	EdgeParsesWith      EdgeKind = "parses-with"
	EdgePersistsAs      EdgeKind = "persists-as"
	EdgeSDKShim         EdgeKind = "sdk-shim"
)

// Edge is a directed relation between two nodes.
type Edge struct {
	Kind EdgeKind `json:"kind" yaml:"kind"`
	Src  NodeId   `json:"src" yaml:"src"`
	Dst  NodeId   `json:"dst" yaml:"dst"`
}
