// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package fastapi extracts routes, Pydantic schemas and ORM models from a
// FastAPI backend source tree, per the FastAPI extractor design.
package fastapi

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/contractlens/contractlens/internal/parser"
	"github.com/contractlens/contractlens/pkg/model"
)

var httpMethods = map[string]string{
	"get":     "GET",
	"post":    "POST",
	"put":     "PUT",
	"delete":  "DELETE",
	"patch":   "PATCH",
}

// ormBaseMarkers identify a SQLAlchemy declarative base.
var ormBaseMarkers = []string{"DeclarativeBase", "declarative_base", "Base"}

// knownRouteGenerators are dynamic-route include_router() generators this
// extractor recognizes by name; any other generator silently produces no
// virtual routes, per the open question in the design notes.
var knownRouteGenerators = []string{"fastapi_users"}

// Result is everything one module contributes to the unified graph.
type Result struct {
	Module   model.Module
	Symbols  []model.Symbol
	Routes   []model.Route
	Schemas  []model.Schema
	Edges    []model.Edge
}

// Extractor walks FastAPI source files.
type Extractor struct {
	py *parser.PythonParser
}

// New returns a FastAPI extractor.
func New() *Extractor {
	return &Extractor{py: parser.NewPythonParser()}
}

// Close releases the underlying tree-sitter parser.
func (e *Extractor) Close() { e.py.Close() }

// Extract parses one Python source file and emits its contribution to the
// graph. Files that don't import fastapi produce an empty Result with no
// error; extraction is best-effort per spec.md's error-handling design —
// a parse failure is returned to the caller to record as a ParseError
// diagnostic, not to abort the run.
func (e *Extractor) Extract(path string, content []byte) (Result, error) {
	pf, err := e.py.Parse(path, content)
	if err != nil {
		return Result{}, err
	}
	defer pf.Close()

	res := Result{Module: model.Module{Path: path, Adapter: model.AdapterFastAPI, Language: model.LanguagePython}}

	if !hasFastAPIImport(pf) {
		return res, nil
	}

	routers := findRouters(e.py, pf.RootNode, content)

	for _, fn := range pf.DecoratedFunctions {
		for _, dec := range fn.Decorators {
			route, reqSchemaName := e.routeFromDecorator(path, dec, fn, routers)
			if route == nil {
				continue
			}
			handlerId := model.NewNodeId(model.AdapterFastAPI, path, fn.Name)
			route.HandlerSymbol = handlerId
			res.Symbols = append(res.Symbols, model.Symbol{
				Id:     handlerId,
				Kind:   model.SymbolFunction,
				Module: path,
				Span:   model.Span{StartLine: fn.Line, EndLine: fn.Line},
			})
			res.Routes = append(res.Routes, *route)
			res.Edges = append(res.Edges, model.Edge{Kind: model.EdgeImplementsRoute, Src: handlerId, Dst: route.Id})

			if reqSchemaName != "" {
				res.Edges = append(res.Edges, model.Edge{
					Kind: model.EdgeCalls,
					Src:  handlerId,
					Dst:  model.NewNodeId(model.AdapterFastAPI, path, reqSchemaName),
				})
			}
			for _, edge := range transformEdges(path, handlerId, fn, content) {
				res.Edges = append(res.Edges, edge)
			}
		}
	}

	for _, generatorCall := range findRouterGenerators(e.py, pf.RootNode, content) {
		res.Routes = append(res.Routes, generatorCall)
	}

	classByName := make(map[string]parser.PythonClass, len(pf.Classes))
	for _, cls := range pf.Classes {
		classByName[cls.Name] = cls
	}

	for _, pm := range pf.PydanticModels {
		cls := classByName[pm.Name]
		schema := pydanticSchema(path, pm, cls)
		res.Schemas = append(res.Schemas, schema)
		res.Symbols = append(res.Symbols, model.Symbol{
			Id:     schema.Id,
			Kind:   model.SymbolSchema,
			Module: path,
			Span:   model.Span{StartLine: pm.Line, EndLine: pm.Line},
		})
	}

	for _, cls := range pf.Classes {
		if _, isPydantic := classByName[cls.Name]; isPydantic && isDeclaredPydantic(pf, cls.Name) {
			continue
		}
		if isORMClass(cls) {
			schema := ormSchema(path, cls)
			res.Schemas = append(res.Schemas, schema)
			res.Symbols = append(res.Symbols, model.Symbol{
				Id:     schema.Id,
				Kind:   model.SymbolSchema,
				Module: path,
				Span:   model.Span{StartLine: cls.Line, EndLine: cls.Line},
			})
		}
	}

	return res, nil
}

func isDeclaredPydantic(pf *parser.ParsedPythonFile, name string) bool {
	for _, pm := range pf.PydanticModels {
		if pm.Name == name {
			return true
		}
	}
	return false
}

func hasFastAPIImport(pf *parser.ParsedPythonFile) bool {
	for _, imp := range pf.Imports {
		if strings.Contains(strings.ToLower(imp.Module), "fastapi") {
			return true
		}
	}
	return false
}

type routerInfo struct {
	name   string
	prefix string
}

func findRouters(py *parser.PythonParser, root *sitter.Node, content []byte) map[string]*routerInfo {
	routers := make(map[string]*routerInfo)
	py.WalkNodes(root, func(node *sitter.Node) bool {
		if node.Type() == "assignment" {
			if r := parseRouter(py, node, content); r != nil {
				routers[r.name] = r
			}
		}
		return true
	})
	return routers
}

func parseRouter(py *parser.PythonParser, node *sitter.Node, content []byte) *routerInfo {
	var varName, prefix string
	var isRouter bool
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if varName == "" {
				varName = child.Content(content)
			}
		case "call":
			callText := child.Content(content)
			if strings.Contains(callText, "APIRouter") || strings.Contains(callText, "FastAPI") {
				isRouter = true
				prefix = extractRouterPrefix(py, child, content)
			}
		}
	}
	if isRouter && varName != "" {
		return &routerInfo{name: varName, prefix: prefix}
	}
	return nil
}

var prefixRegex = regexp.MustCompile(`prefix\s*=\s*['"]([^'"]+)['"]`)

func extractRouterPrefix(py *parser.PythonParser, node *sitter.Node, content []byte) string {
	for _, arg := range py.GetCallArguments(node, content) {
		if arg.Type() == "keyword_argument" {
			if m := prefixRegex.FindStringSubmatch(arg.Content(content)); len(m) > 1 {
				return m[1]
			}
		}
	}
	return ""
}

// findRouterGenerators recognizes include_router(<generator-produced-router>)
// calls against the known-generator name list; unknown generators are
// skipped, per the design notes' explicit open question.
func findRouterGenerators(py *parser.PythonParser, root *sitter.Node, content []byte) []model.Route {
	var routes []model.Route
	py.WalkNodes(root, func(node *sitter.Node) bool {
		if node.Type() != "call" {
			return true
		}
		callee := py.GetCalleeText(node, content)
		if !strings.HasSuffix(callee, "include_router") {
			return true
		}
		text := node.Content(content)
		for _, gen := range knownRouteGenerators {
			if strings.Contains(text, gen) {
				routes = append(routes, model.Route{
					Id:      model.NewNodeId(model.AdapterFastAPI, "", gen+":generated"),
					Method:  "ANY",
					Path:    "/" + gen,
					Origin:  model.RouteOriginCode,
					Adapter: model.AdapterFastAPI,
				})
			}
		}
		return true
	})
	return routes
}

var braceParamRegex = regexp.MustCompile(`\{([^}:]+)(?::[^}]+)?\}`)

func normalizePathParams(path string) string { return braceParamRegex.ReplaceAllString(path, "{$1}") }

func combinePaths(prefix, path string) string {
	if prefix == "" {
		return path
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

func (e *Extractor) routeFromDecorator(path string, dec parser.PythonDecorator, fn parser.PythonDecoratedFunction, routers map[string]*routerInfo) (*model.Route, string) {
	parts := strings.Split(dec.Name, ".")
	if len(parts) < 2 {
		return nil, ""
	}
	httpMethod, ok := httpMethods[strings.ToLower(parts[1])]
	if !ok {
		return nil, ""
	}

	prefix := ""
	if r, ok := routers[parts[0]]; ok {
		prefix = r.prefix
	}

	var routePath string
	if len(dec.Arguments) > 0 {
		routePath = dec.Arguments[0]
	}
	if routePath == "" {
		return nil, ""
	}
	fullPath := normalizePathParams(combinePaths(prefix, routePath))

	route := &model.Route{
		Id:      model.NewNodeId(model.AdapterFastAPI, path, "route:"+httpMethod+":"+fullPath),
		Method:  httpMethod,
		Path:    fullPath,
		Origin:  model.RouteOriginCode,
		Adapter: model.AdapterFastAPI,
	}

	if responseModel, ok := dec.KeywordArguments["response_model"]; ok {
		route.ResponseSchemaRef = model.NewNodeId(model.AdapterFastAPI, path, responseModel)
	}

	reqSchemaName := requestSchemaName(fn)
	if reqSchemaName != "" {
		route.RequestSchemaRef = model.NewNodeId(model.AdapterFastAPI, path, reqSchemaName)
	}

	return route, reqSchemaName
}

var builtinPyTypes = map[string]bool{
	"str": true, "int": true, "float": true, "bool": true,
	"list": true, "dict": true, "set": true, "tuple": true,
	"bytes": true, "none": true, "any": true,
}

func requestSchemaName(fn parser.PythonDecoratedFunction) string {
	for _, param := range fn.Parameters {
		if param.Type == "" {
			continue
		}
		if param.Name == "self" || param.Name == "request" || param.Name == "db" ||
			param.Name == "session" || param.Name == "background_tasks" {
			continue
		}
		if strings.Contains(param.Type, "Query") || strings.Contains(param.Type, "Path") ||
			strings.Contains(param.Type, "Header") || strings.Contains(param.Type, "Cookie") {
			continue
		}
		typeName := param.Type
		if strings.Contains(typeName, "[") {
			typeName = extractGenericType(typeName)
		}
		if builtinPyTypes[strings.ToLower(typeName)] {
			continue
		}
		if len(typeName) > 0 && typeName[0] >= 'A' && typeName[0] <= 'Z' {
			return typeName
		}
	}
	return ""
}

func extractGenericType(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(s[start+1 : end])
}

func isORMClass(cls parser.PythonClass) bool {
	for _, base := range cls.Bases {
		for _, marker := range ormBaseMarkers {
			if base == marker || strings.Contains(base, marker) {
				return true
			}
		}
	}
	return false
}

var emailMarkers = []string{"EmailStr"}
var urlMarkers = []string{"HttpUrl", "AnyUrl"}
var fieldPatternRegex = regexp.MustCompile(`pattern\s*=\s*['"]`)
var fieldUUIDMarkers = []string{"UUID"}

func fieldValidators(typ, defaultExpr string) []model.Validator {
	var vs []model.Validator
	for _, m := range emailMarkers {
		if strings.Contains(typ, m) {
			vs = append(vs, model.ValidatorEmail)
		}
	}
	for _, m := range urlMarkers {
		if strings.Contains(typ, m) {
			vs = append(vs, model.ValidatorURL)
		}
	}
	for _, m := range fieldUUIDMarkers {
		if strings.Contains(typ, m) {
			vs = append(vs, model.ValidatorUUID)
		}
	}
	if fieldPatternRegex.MatchString(defaultExpr) {
		vs = append(vs, model.ValidatorRegex)
	}
	if strings.Contains(typ, "int") {
		vs = append(vs, model.ValidatorInt)
	}
	return vs
}

func pydanticSchema(path string, pm parser.PydanticModel, cls parser.PythonClass) model.Schema {
	id := model.NewNodeId(model.AdapterFastAPI, path, pm.Name)
	schema := model.Schema{Id: id, Flavor: model.FlavorPydantic, Name: pm.Name, FromAttributes: hasFromAttributes(cls)}
	for _, field := range pm.Fields {
		schema.Fields = append(schema.Fields, model.Field{
			Name:         field.Name,
			DeclaredType: normalizeType(field.Type),
			Required:     !field.IsOptional && field.Default == "",
			HasDefault:   field.Default != "",
			Validators:   fieldValidators(field.Type, field.Default),
		})
	}
	return schema
}

// hasFromAttributes reports whether the class carries a Pydantic config
// marker: a decorator whose name contains ConfigDict, or a method named
// Config. The from_attributes setting itself is not read, so a model_config
// = ConfigDict(from_attributes=True) class attribute is not detected.
func hasFromAttributes(cls parser.PythonClass) bool {
	for _, dec := range cls.Decorators {
		if strings.Contains(dec.Name, "ConfigDict") {
			return true
		}
	}
	for _, m := range cls.Methods {
		if strings.EqualFold(m.Name, "Config") {
			return true
		}
	}
	return false
}

func ormSchema(path string, cls parser.PythonClass) model.Schema {
	id := model.NewNodeId(model.AdapterFastAPI, path, cls.Name)
	schema := model.Schema{Id: id, Flavor: model.FlavorORM, Name: cls.Name}
	return schema
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	if strings.HasPrefix(t, "Optional[") {
		return extractGenericType(t)
	}
	return t
}

// transformEdges records model_validate(...)/model_dump() calls found in a
// handler's source text as calls-edges. A model_validate edge targets the
// receiver class; a model_dump edge targets a node named after the receiver
// expression (usually an instance variable), which is not resolved to the
// instance's schema. The chain extractor turns edges that land on a schema
// into transform stitches.
var modelValidateRegex = regexp.MustCompile(`(\w+)\.model_validate\(`)
var modelDumpRegex = regexp.MustCompile(`(\w+)\.model_dump\(`)

func transformEdges(path string, handlerId model.NodeId, fn parser.PythonDecoratedFunction, content []byte) []model.Edge {
	if fn.Node == nil {
		return nil
	}
	body := fn.Node.Content(content)
	var edges []model.Edge
	for _, m := range modelValidateRegex.FindAllStringSubmatch(body, -1) {
		edges = append(edges, model.Edge{
			Kind: model.EdgeCalls,
			Src:  handlerId,
			Dst:  model.NewNodeId(model.AdapterFastAPI, path, m[1]),
		})
	}
	for _, m := range modelDumpRegex.FindAllStringSubmatch(body, -1) {
		edges = append(edges, model.Edge{
			Kind: model.EdgeCalls,
			Src:  handlerId,
			Dst:  model.NewNodeId(model.AdapterFastAPI, path, m[1]),
		})
	}
	return edges
}
