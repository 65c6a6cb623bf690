// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package nestjs extracts controllers, routes and class-validator DTOs from
// a NestJS backend source tree, per the NestJS extractor design.
package nestjs

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/contractlens/contractlens/internal/parser"
	"github.com/contractlens/contractlens/pkg/model"
)

var httpMethodDecorators = map[string]string{
	"Get":     "GET",
	"Post":    "POST",
	"Put":     "PUT",
	"Delete":  "DELETE",
	"Patch":   "PATCH",
	"Head":    "HEAD",
	"Options": "OPTIONS",
	"All":     "ALL",
}

// classValidatorDecorators maps class-validator field decorators to the
// Validator they imply, per the DTO-recognition rule.
var classValidatorDecorators = map[string]model.Validator{
	"IsEmail": model.ValidatorEmail,
	"IsUrl":   model.ValidatorURL,
	"Matches": model.ValidatorRegex,
	"IsInt":   model.ValidatorInt,
	"IsUUID":  model.ValidatorUUID,
}

// Result is everything one module contributes to the unified graph.
type Result struct {
	Module  model.Module
	Symbols []model.Symbol
	Routes  []model.Route
	Schemas []model.Schema
	Edges   []model.Edge
}

// Extractor walks NestJS controller and DTO source files.
type Extractor struct {
	ts *parser.TypeScriptParser
}

// New returns a NestJS extractor.
func New() *Extractor {
	return &Extractor{ts: parser.NewTypeScriptParser()}
}

// Close releases the underlying tree-sitter parser.
func (e *Extractor) Close() { e.ts.Close() }

// controllerInfo holds the base path of a @Controller class while its
// methods are being walked.
type controllerInfo struct {
	name      string
	basePath  string
	classNode *sitter.Node
}

// Extract parses one TypeScript source file and emits its contribution:
// routes from @Controller classes, DTO schemas from class-validator-
// decorated classes, or both when a file mixes the two.
func (e *Extractor) Extract(path string, content []byte) (Result, error) {
	pf, err := e.ts.Parse(path, content)
	if err != nil {
		return Result{}, err
	}
	defer pf.Close()

	res := Result{Module: model.Module{Path: path, Adapter: model.AdapterNestJS, Language: model.LanguageTypeScript}}

	if !hasNestJSImport(pf.RootNode, pf.Content) {
		return res, nil
	}

	for _, ctrl := range findControllers(e.ts, pf.RootNode, pf.Content) {
		e.extractRoutesFromController(path, ctrl, pf.Content, &res)
	}

	for _, cls := range findDTOClasses(pf.RootNode, pf.Content) {
		schema := dtoSchema(path, cls, pf.Content)
		if schema.Id.IsZero() || len(schema.Fields) == 0 {
			continue
		}
		res.Schemas = append(res.Schemas, schema)
		res.Symbols = append(res.Symbols, model.Symbol{
			Id:     schema.Id,
			Kind:   model.SymbolSchema,
			Module: path,
			Span:   model.Span{StartLine: int(cls.node.StartPoint().Row) + 1},
		})
	}

	return res, nil
}

func hasNestJSImport(root *sitter.Node, content []byte) bool {
	found := false
	walk(root, func(n *sitter.Node) bool {
		if n.Type() == "import_statement" {
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child.Type() == "string" {
					source := strings.Trim(child.Content(content), `"'`)
					if strings.HasPrefix(source, "@nestjs/") {
						found = true
						return false
					}
				}
			}
		}
		return true
	})
	return found
}

func findControllers(ts *parser.TypeScriptParser, root *sitter.Node, content []byte) []*controllerInfo {
	var controllers []*controllerInfo
	walk(root, func(n *sitter.Node) bool {
		var decorators []*sitter.Node
		var classDecl *sitter.Node

		switch n.Type() {
		case "export_statement":
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child.Type() == "decorator" {
					decorators = append(decorators, child)
				}
				if child.Type() == "class_declaration" {
					classDecl = child
				}
			}
			if classDecl == nil {
				return true
			}
		case "class_declaration":
			decorators = precedingDecorators(n)
			classDecl = n
		default:
			return true
		}

		if ctrl := parseController(ts, classDecl, decorators, content); ctrl != nil {
			controllers = append(controllers, ctrl)
		}
		return n.Type() != "export_statement" && n.Type() != "class_declaration"
	})
	return controllers
}

func precedingDecorators(classNode *sitter.Node) []*sitter.Node {
	parent := classNode.Parent()
	if parent == nil {
		return nil
	}
	var decorators []*sitter.Node
	for i := 0; i < int(parent.ChildCount()); i++ {
		sibling := parent.Child(i)
		if sibling == classNode {
			break
		}
		if sibling.Type() == "decorator" {
			decorators = append(decorators, sibling)
		}
	}
	return decorators
}

func parseController(ts *parser.TypeScriptParser, classNode *sitter.Node, decorators []*sitter.Node, content []byte) *controllerInfo {
	var controllerDecorator *sitter.Node
	for _, dec := range decorators {
		if strings.Contains(dec.Content(content), "@Controller") {
			controllerDecorator = dec
			break
		}
	}
	if controllerDecorator == nil {
		return nil
	}

	ctrl := &controllerInfo{classNode: classNode}
	for i := 0; i < int(classNode.ChildCount()); i++ {
		child := classNode.Child(i)
		if child.Type() == "type_identifier" || child.Type() == "identifier" {
			ctrl.name = child.Content(content)
			break
		}
	}
	ctrl.basePath = controllerBasePath(ts, controllerDecorator, content)
	return ctrl
}

func controllerBasePath(ts *parser.TypeScriptParser, decorator *sitter.Node, content []byte) string {
	callExpr := firstCallExpression(decorator)
	if callExpr == nil {
		return ""
	}
	args := ts.GetCallArguments(callExpr, content)
	if len(args) == 0 {
		return ""
	}
	if args[0].Type() == "string" {
		path, _ := ts.ExtractStringLiteral(args[0], content)
		return path
	}
	if args[0].Type() == "object" {
		var path string
		walk(args[0], func(n *sitter.Node) bool {
			if n.Type() == "pair" {
				key, value := pairKeyValue(n, content)
				if key == "path" {
					path = strings.Trim(value, `"'`)
				}
			}
			return true
		})
		return path
	}
	return ""
}

func pairKeyValue(node *sitter.Node, content []byte) (key, value string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "property_identifier", "identifier", "string":
			if key == "" {
				key = strings.Trim(child.Content(content), `"'`)
			} else if value == "" {
				value = child.Content(content)
			}
		}
	}
	return key, value
}

func (e *Extractor) extractRoutesFromController(path string, ctrl *controllerInfo, content []byte, res *Result) {
	var classBody *sitter.Node
	for i := 0; i < int(ctrl.classNode.ChildCount()); i++ {
		if child := ctrl.classNode.Child(i); child.Type() == "class_body" {
			classBody = child
			break
		}
	}
	if classBody == nil {
		return
	}

	var pendingDecorators []*sitter.Node
	for i := 0; i < int(classBody.ChildCount()); i++ {
		child := classBody.Child(i)
		if child.Type() == "decorator" {
			pendingDecorators = append(pendingDecorators, child)
			continue
		}
		if child.Type() == "method_definition" {
			e.extractMethodRoute(path, child, pendingDecorators, ctrl, content, res)
			pendingDecorators = nil
		}
	}
}

func (e *Extractor) extractMethodRoute(path string, methodNode *sitter.Node, decorators []*sitter.Node, ctrl *controllerInfo, content []byte, res *Result) {
	var httpMethod, subPath string
	for _, dec := range decorators {
		text := dec.Content(content)
		for name, httpVerb := range httpMethodDecorators {
			if strings.Contains(text, "@"+name+"(") || text == "@"+name {
				httpMethod = httpVerb
				subPath = decoratorPathArg(e.ts, dec, content)
			}
		}
	}
	if httpMethod == "" {
		return
	}

	methodName := methodIdentifier(methodNode, content)
	fullPath := normalizeRoutePath(joinControllerPath(ctrl.basePath, subPath))
	handlerId := model.NewNodeId(model.AdapterNestJS, path, ctrl.name+"."+methodName)
	routeId := model.NewNodeId(model.AdapterNestJS, path, "route:"+httpMethod+" "+fullPath)

	route := model.Route{
		Id:            routeId,
		Method:        httpMethod,
		Path:          fullPath,
		HandlerSymbol: handlerId,
		Origin:        model.RouteOriginCode,
		Adapter:       model.AdapterNestJS,
	}
	if bodyType := bodyParamType(e.ts, methodNode, content); bodyType != "" {
		route.RequestSchemaRef = model.NewNodeId(model.AdapterNestJS, path, bodyType)
	}

	res.Routes = append(res.Routes, route)
	res.Symbols = append(res.Symbols, model.Symbol{
		Id:     handlerId,
		Kind:   model.SymbolMethod,
		Module: path,
		Span:   model.Span{StartLine: int(methodNode.StartPoint().Row) + 1},
	})
	res.Edges = append(res.Edges, model.Edge{Kind: model.EdgeImplementsRoute, Src: handlerId, Dst: routeId})
}

func methodIdentifier(methodNode *sitter.Node, content []byte) string {
	for i := 0; i < int(methodNode.ChildCount()); i++ {
		child := methodNode.Child(i)
		if child.Type() == "property_identifier" || child.Type() == "identifier" {
			return child.Content(content)
		}
	}
	return ""
}

func decoratorPathArg(ts *parser.TypeScriptParser, decorator *sitter.Node, content []byte) string {
	callExpr := firstCallExpression(decorator)
	if callExpr == nil {
		return ""
	}
	args := ts.GetCallArguments(callExpr, content)
	if len(args) == 0 || args[0].Type() != "string" {
		return ""
	}
	path, _ := ts.ExtractStringLiteral(args[0], content)
	return path
}

func firstCallExpression(decorator *sitter.Node) *sitter.Node {
	var call *sitter.Node
	walk(decorator, func(n *sitter.Node) bool {
		if n.Type() == "call_expression" {
			call = n
			return false
		}
		return true
	})
	return call
}

func joinControllerPath(basePath, subPath string) string {
	var parts []string
	if basePath != "" {
		parts = append(parts, strings.Trim(basePath, "/"))
	}
	if subPath != "" {
		parts = append(parts, strings.Trim(subPath, "/"))
	}
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}

var colonParamRegex = regexp.MustCompile(`:([a-zA-Z_][a-zA-Z0-9_]*)`)

// normalizeRoutePath converts NestJS-style path params (:id) into the
// brace form every adapter's routes share, per the path canonicalization
// rule the contract checker relies on for matching.
func normalizeRoutePath(path string) string {
	return colonParamRegex.ReplaceAllString(path, "{$1}")
}

func bodyParamType(ts *parser.TypeScriptParser, methodNode *sitter.Node, content []byte) string {
	var formalParams *sitter.Node
	walk(methodNode, func(n *sitter.Node) bool {
		if n.Type() == "formal_parameters" {
			formalParams = n
			return false
		}
		return true
	})
	if formalParams == nil {
		return ""
	}

	var bodyType string
	walk(formalParams, func(n *sitter.Node) bool {
		if n.Type() != "required_parameter" && n.Type() != "optional_parameter" {
			return true
		}
		hasBody := false
		var typeAnnotation string
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() == "decorator" && strings.Contains(child.Content(content), "@Body") {
				hasBody = true
			}
			if child.Type() == "type_annotation" && child.ChildCount() > 1 {
				typeAnnotation = child.Child(1).Content(content)
			}
		}
		if hasBody && typeAnnotation != "" {
			bodyType = typeAnnotation
			return false
		}
		return true
	})
	return bodyType
}

// dtoClass is a class-validator-decorated DTO candidate, carrying its
// field decorators alongside the parsed class body.
type dtoClass struct {
	name string
	node *sitter.Node
}

func findDTOClasses(root *sitter.Node, content []byte) []dtoClass {
	var out []dtoClass
	walk(root, func(n *sitter.Node) bool {
		if n.Type() != "class_declaration" {
			return true
		}
		if !strings.HasSuffix(classNameOf(n, content), "Dto") && !hasClassValidatorField(n, content) {
			return false
		}
		out = append(out, dtoClass{name: classNameOf(n, content), node: n})
		return false
	})
	return out
}

func classNameOf(classNode *sitter.Node, content []byte) string {
	for i := 0; i < int(classNode.ChildCount()); i++ {
		child := classNode.Child(i)
		if child.Type() == "type_identifier" || child.Type() == "identifier" {
			return child.Content(content)
		}
	}
	return ""
}

func hasClassValidatorField(classNode *sitter.Node, content []byte) bool {
	found := false
	walk(classNode, func(n *sitter.Node) bool {
		if n.Type() == "decorator" {
			text := n.Content(content)
			for name := range classValidatorDecorators {
				if strings.Contains(text, "@"+name) {
					found = true
					return false
				}
			}
			if strings.Contains(text, "@IsOptional") || strings.Contains(text, "@IsString") || strings.Contains(text, "@IsNumber") || strings.Contains(text, "@IsBoolean") {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// dtoSchema converts a class-validator-decorated class into a model.Schema,
// per the DTO field-recognition rule: each class property's decorators
// determine its Validators and @IsOptional marks it not Required.
func dtoSchema(path string, cls dtoClass, content []byte) model.Schema {
	out := model.Schema{
		Id:     model.NewNodeId(model.AdapterNestJS, path, cls.name),
		Flavor: model.FlavorDTO,
		Name:   cls.name,
	}

	var classBody *sitter.Node
	for i := 0; i < int(cls.node.ChildCount()); i++ {
		if child := cls.node.Child(i); child.Type() == "class_body" {
			classBody = child
			break
		}
	}
	if classBody == nil {
		return out
	}

	var pendingDecorators []*sitter.Node
	for i := 0; i < int(classBody.ChildCount()); i++ {
		child := classBody.Child(i)
		if child.Type() == "decorator" {
			pendingDecorators = append(pendingDecorators, child)
			continue
		}
		if child.Type() == "public_field_definition" {
			if field, ok := dtoField(child, pendingDecorators, content); ok {
				out.Fields = append(out.Fields, field)
			}
			pendingDecorators = nil
		}
	}
	return out
}

func dtoField(fieldNode *sitter.Node, decorators []*sitter.Node, content []byte) (model.Field, bool) {
	var name, declType string
	optional := false
	for i := 0; i < int(fieldNode.ChildCount()); i++ {
		child := fieldNode.Child(i)
		switch child.Type() {
		case "decorator":
			decorators = append(decorators, child)
		case "property_identifier":
			name = child.Content(content)
		case "type_annotation":
			if child.ChildCount() > 1 {
				declType = child.Child(1).Content(content)
			}
		}
	}
	if name == "" {
		return model.Field{}, false
	}

	var validators []model.Validator
	for _, dec := range decorators {
		text := dec.Content(content)
		if strings.Contains(text, "@IsOptional") {
			optional = true
		}
		for decName, v := range classValidatorDecorators {
			if strings.Contains(text, "@"+decName) {
				validators = append(validators, v)
			}
		}
	}

	return model.Field{
		Name:         name,
		DeclaredType: declType,
		Required:     !optional,
		Validators:   validators,
	}, true
}

func walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}
