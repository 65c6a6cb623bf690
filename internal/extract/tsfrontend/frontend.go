// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package tsfrontend extracts Zod schemas, TypeScript interfaces/aliases and
// frontend API calls from a generic TypeScript source tree, per the
// TypeScript extractor and frontend-library-recognition designs.
package tsfrontend

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/contractlens/contractlens/internal/parser"
	"github.com/contractlens/contractlens/internal/resolve"
	"github.com/contractlens/contractlens/internal/schema"
	"github.com/contractlens/contractlens/pkg/model"
	"github.com/contractlens/contractlens/pkg/types"
)

// Result is everything one module contributes to the unified graph.
type Result struct {
	Module   model.Module
	Symbols  []model.Symbol
	Schemas  []model.Schema
	ApiCalls []model.ApiCall
	Edges    []model.Edge
	IsSDK    bool
	Exports  []string

	// Imports is the module's raw import bindings, left unresolved here
	// since resolution needs the full cross-module known-file set the
	// pipeline assembles only once every module has been scanned.
	Imports []resolve.Import
}

// Extractor walks generic TypeScript source files.
type Extractor struct {
	ts  *parser.TypeScriptParser
	zod *schema.ZodParser
}

// New returns a TypeScript frontend extractor.
func New() *Extractor {
	ts := parser.NewTypeScriptParser()
	return &Extractor{ts: ts, zod: schema.NewZodParser(ts)}
}

// Close releases the underlying tree-sitter parser.
func (e *Extractor) Close() { e.ts.Close() }

// Extract parses one TypeScript source file and emits its contribution.
func (e *Extractor) Extract(path string, content []byte) (Result, error) {
	pf, err := e.ts.Parse(path, content)
	if err != nil {
		return Result{}, err
	}
	defer pf.Close()

	res := Result{
		Module:  model.Module{Path: path, Adapter: model.AdapterTypeScript, Language: model.LanguageTypeScript},
		IsSDK:   isSDKModule(path, pf.Exports),
		Exports: pf.Exports,
	}

	for _, zs := range pf.ZodSchemas {
		s, err := e.zod.ParseZodSchema(zs.Node, pf.Content)
		if err != nil {
			continue
		}
		ms := convertSchema(path, zs.Name, model.FlavorZod, s)
		res.Schemas = append(res.Schemas, ms)
		res.Symbols = append(res.Symbols, model.Symbol{
			Id:     ms.Id,
			Kind:   model.SymbolSchema,
			Module: path,
			Span:   model.Span{StartLine: zs.Line, EndLine: zs.Line},
		})
	}

	for _, iface := range pf.Interfaces {
		ms := interfaceSchema(path, iface)
		res.Schemas = append(res.Schemas, ms)
		res.Symbols = append(res.Symbols, model.Symbol{
			Id:     ms.Id,
			Kind:   model.SymbolSchema,
			Module: path,
			Span:   model.Span{StartLine: iface.Line, EndLine: iface.Line},
		})
	}

	for _, alias := range pf.TypeAliases {
		ms := model.Schema{
			Id:     model.NewNodeId(model.AdapterTypeScript, path, alias.Name),
			Flavor: model.FlavorTSAlias,
			Name:   alias.Name,
		}
		res.Schemas = append(res.Schemas, ms)
		res.Symbols = append(res.Symbols, model.Symbol{
			Id:     ms.Id,
			Kind:   model.SymbolSchema,
			Module: path,
			Span:   model.Span{StartLine: alias.Line, EndLine: alias.Line},
		})
	}

	schemaByName := make(map[string]model.NodeId, len(res.Schemas))
	for _, s := range res.Schemas {
		schemaByName[s.Name] = s.Id
	}

	moduleId := model.NewNodeId(model.AdapterTypeScript, path, "")
	calls := findApiCalls(e.ts, path, pf.RootNode, pf.Content, schemaByName)
	res.ApiCalls = append(res.ApiCalls, calls...)
	for _, call := range calls {
		res.Edges = append(res.Edges, model.Edge{Kind: model.EdgeCalls, Src: moduleId, Dst: call.Id})
	}

	for _, imp := range pf.Imports {
		res.Imports = append(res.Imports, resolve.Import{
			ImportingModule: path,
			LocalName:       imp.Name,
			ModuleSpec:      imp.ModuleSpec,
			IsWildcard:      imp.IsWildcard,
		})
	}

	return res, nil
}

// isSDKModule recognizes generated-SDK modules by path: a file named
// sdk.gen.ts, or a path containing openapi-client or api-client. exports is
// not consulted, so a module that only re-exports from an SDK module is not
// recognized.
func isSDKModule(path string, exports []string) bool {
	base := filepath.Base(path)
	if base == "sdk.gen.ts" {
		return true
	}
	if strings.Contains(path, "openapi-client") || strings.Contains(path, "api-client") {
		return true
	}
	return false
}

func convertSchema(path, name string, flavor model.SchemaFlavor, s *types.Schema) model.Schema {
	out := model.Schema{Id: model.NewNodeId(model.AdapterTypeScript, path, name), Flavor: flavor, Name: name}
	if s == nil {
		return out
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for propName := range s.Properties {
		names = append(names, propName)
	}
	sort.Strings(names)
	for _, propName := range names {
		prop := s.Properties[propName]
		out.Fields = append(out.Fields, model.Field{
			Name:         propName,
			DeclaredType: canonicalPropType(prop),
			Required:     required[propName],
			Validators:   propValidators(prop),
		})
	}
	return out
}

func canonicalPropType(s *types.Schema) string {
	if s == nil {
		return ""
	}
	if s.Type == "array" && s.Items != nil {
		return s.Items.Type + "[]"
	}
	return s.Type
}

func propValidators(s *types.Schema) []model.Validator {
	if s == nil {
		return nil
	}
	var vs []model.Validator
	switch s.Format {
	case "email":
		vs = append(vs, model.ValidatorEmail)
	case "uri":
		vs = append(vs, model.ValidatorURL)
	case "uuid":
		vs = append(vs, model.ValidatorUUID)
	}
	if s.Pattern != "" {
		vs = append(vs, model.ValidatorRegex)
	}
	if s.Type == "integer" {
		vs = append(vs, model.ValidatorInt)
	}
	return vs
}

func interfaceSchema(path string, iface parser.TSInterface) model.Schema {
	out := model.Schema{
		Id:     model.NewNodeId(model.AdapterTypeScript, path, iface.Name),
		Flavor: model.FlavorTSInterface,
		Name:   iface.Name,
	}
	for _, prop := range iface.Properties {
		declType, nullable := tsNullability(prop.Type)
		out.Fields = append(out.Fields, model.Field{
			Name:         prop.Name,
			DeclaredType: declType,
			Required:     !prop.IsOptional && !nullable,
		})
	}
	return out
}

var nullableUnionRegex = regexp.MustCompile(`\s*\|\s*(null|undefined)\b`)

// tsNullability strips `| null`/`| undefined` union members, which unify
// with Zod's `.nullish()/.optional()` and Pydantic's `Optional[T]` during
// contract checking.
func tsNullability(t string) (string, bool) {
	if !nullableUnionRegex.MatchString(t) {
		return t, false
	}
	return strings.TrimSpace(nullableUnionRegex.ReplaceAllString(t, "")), true
}

// --- Frontend library recognition (spec.md §4.5) ---

func findApiCalls(ts *parser.TypeScriptParser, path string, root *sitter.Node, content []byte, schemaByName map[string]model.NodeId) []model.ApiCall {
	var calls []model.ApiCall
	seen := 0
	ts.WalkNodes(root, func(node *sitter.Node) bool {
		if node.Type() != "call_expression" {
			return true
		}
		callee := ts.GetCalleeText(node, content)
		call := recognizeCall(ts, callee, node, content)
		if call == nil {
			return true
		}
		seen++
		call.Id = model.NewNodeId(model.AdapterTypeScript, path, "apicall:"+itoa(seen))
		resolveCallSchemas(call, ts, node, path, schemaByName, content)
		calls = append(calls, *call)
		return true
	})
	return calls
}

// resolveCallSchemas fills in a recognized ApiCall's request/response schema
// refs. It first looks at the call's own explicit generic type arguments
// (the react-query/SDK convention `useMutation<TData, TError, TVariables>` /
// `client.post<Req, Resp>`); if the call carries none, it falls back to the
// one same-file Zod/interface/alias schema whose name matches the URL's
// trailing resource segment, the common "useUser hook + UserSchema in the
// same file" pairing.
func resolveCallSchemas(call *model.ApiCall, ts *parser.TypeScriptParser, node *sitter.Node, path string, schemaByName map[string]model.NodeId, content []byte) {
	if typeArgs := ts.GetTypeArguments(node, content); len(typeArgs) > 0 {
		request, response := requestResponseTypeArgs(call.Library, typeArgs)
		if request != "" {
			call.RequestTypeRef = schemaRef(path, request, schemaByName)
		}
		if response != "" {
			call.ResponseTypeRef = schemaRef(path, response, schemaByName)
		}
		return
	}

	if name, ok := coLocatedSchemaName(call.URLPattern, schemaByName); ok {
		call.ResponseTypeRef = schemaByName[name]
	}
}

// requestResponseTypeArgs maps a call's generic type argument texts to
// (request, response) type names per each library's own generic-ordering
// convention. Libraries with no call-site generic convention (tRPC, RTK
// Query, server actions) are left for the co-located-naming fallback.
func requestResponseTypeArgs(lib model.LibraryTag, args []string) (request, response string) {
	switch lib {
	case model.LibraryTanstack:
		response = args[0]
		if len(args) >= 3 {
			request = args[2]
		}
	case model.LibrarySWR:
		response = args[0]
	case model.LibrarySDK, model.LibraryGeneric:
		if len(args) >= 2 {
			request, response = args[0], args[1]
		} else {
			response = args[0]
		}
	}
	return stripArrayWrapper(request), stripArrayWrapper(response)
}

var arrayWrapperRegex = regexp.MustCompile(`^Array<(.+)>$|^(.+)\[\]$`)

// stripArrayWrapper unwraps `Array<T>`/`T[]` to the element type T, since
// the schema the field checker cares about is T, not its collection.
func stripArrayWrapper(t string) string {
	t = strings.TrimSpace(t)
	if m := arrayWrapperRegex.FindStringSubmatch(t); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	return t
}

// schemaRef resolves name to a same-file schema's real Id when one was
// parsed from this file, or otherwise builds a best-effort NodeId naming it
// directly, the same graceful-miss convention the checker already applies
// to any ref that fails to resolve.
func schemaRef(path, name string, schemaByName map[string]model.NodeId) model.NodeId {
	if name == "" {
		return model.NodeId{}
	}
	if id, ok := schemaByName[name]; ok {
		return id
	}
	return model.NewNodeId(model.AdapterTypeScript, path, name)
}

// coLocatedSchemaName finds the one same-file schema whose name starts with
// the URL pattern's trailing resource segment, case-insensitively and
// singularized. Returns false when there is no such segment or more than
// one schema matches, since an ambiguous match is worse than none.
func coLocatedSchemaName(urlPattern string, schemaByName map[string]model.NodeId) (string, bool) {
	resource := resourceNoun(urlPattern)
	if resource == "" {
		return "", false
	}
	var match string
	for name := range schemaByName {
		if strings.HasPrefix(strings.ToLower(name), resource) {
			if match != "" {
				return "", false
			}
			match = name
		}
	}
	return match, match != ""
}

// resourceNoun extracts the last non-parameter path segment of a URL
// pattern and singularizes it by trimming a trailing "s", e.g.
// "/api/users/:id" -> "user".
func resourceNoun(urlPattern string) string {
	segments := strings.Split(urlPattern, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "{") {
			continue
		}
		return strings.TrimSuffix(strings.ToLower(seg), "s")
	}
	return ""
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

var tanstackHooks = map[string]bool{"useQuery": true, "useMutation": true}
var swrHooks = map[string]bool{"useSWR": true, "useSWRMutation": true}
var sdkMethods = map[string]string{"get": "GET", "post": "POST", "put": "PUT", "patch": "PATCH", "delete": "DELETE"}
var genericCallees = map[string]bool{"fetch": true}

func recognizeCall(ts *parser.TypeScriptParser, callee string, node *sitter.Node, content []byte) *model.ApiCall {
	args := ts.GetCallArguments(node, content)

	if tanstackHooks[callee] {
		return &model.ApiCall{Library: model.LibraryTanstack, Method: tanstackMethod(callee), URLPattern: firstStringArg(ts, args, content)}
	}
	if swrHooks[callee] {
		return &model.ApiCall{Library: model.LibrarySWR, Method: "GET", URLPattern: firstStringArg(ts, args, content)}
	}
	if strings.Contains(callee, "useQuery") || strings.Contains(callee, "useMutation") {
		if strings.HasSuffix(callee, ".useQuery") || strings.HasSuffix(callee, ".useMutation") {
			return &model.ApiCall{Library: model.LibraryTRPC, Method: trpcMethod(callee), URLPattern: callee}
		}
	}
	if strings.Contains(callee, "use") && (strings.HasSuffix(callee, "Query") || strings.HasSuffix(callee, "Mutation")) {
		return &model.ApiCall{Library: model.LibraryRTK, Method: rtkMethod(callee), URLPattern: callee}
	}
	var obj, method string
	if cn := calleeNode(node); cn != nil {
		obj, method = ts.GetMemberExpressionParts(cn, content)
	}
	if obj == "client" || obj == "sdk" {
		if httpMethod, ok := sdkMethods[strings.ToLower(method)]; ok {
			return &model.ApiCall{Library: model.LibrarySDK, Method: httpMethod, URLPattern: firstStringArg(ts, args, content)}
		}
	}
	if genericCallees[callee] {
		httpMethod := "GET"
		if len(args) > 1 && args[1].Type() == "object" {
			for i := 0; i < int(args[1].NamedChildCount()); i++ {
				pair := args[1].NamedChild(i)
				key, value := pair.ChildByFieldName("key"), pair.ChildByFieldName("value")
				if pair.Type() != "pair" || key == nil || value == nil || strings.Trim(key.Content(content), `"'`) != "method" {
					continue
				}
				if m, ok := ts.ExtractStringLiteral(value, content); ok {
					httpMethod = strings.ToUpper(m)
				}
			}
		}
		return &model.ApiCall{Library: model.LibraryGeneric, Method: httpMethod, URLPattern: firstStringArg(ts, args, content)}
	}
	if obj == "axios" || obj == "api" {
		httpMethod, ok := sdkMethods[strings.ToLower(method)]
		if !ok {
			httpMethod = "GET"
		}
		return &model.ApiCall{Library: model.LibraryGeneric, Method: httpMethod, URLPattern: firstStringArg(ts, args, content)}
	}
	if strings.Contains(callee, "actions.") {
		return &model.ApiCall{Library: model.LibraryNextAction, Method: "", URLPattern: callee}
	}
	return nil
}

func calleeNode(call *sitter.Node) *sitter.Node {
	if call.Type() != "call_expression" {
		return call
	}
	fn := call.ChildByFieldName("function")
	if fn == nil && call.ChildCount() > 0 {
		fn = call.Child(0)
	}
	return fn
}

func firstStringArg(ts *parser.TypeScriptParser, args []*sitter.Node, content []byte) string {
	for _, a := range args {
		if s, ok := ts.ExtractStringLiteral(a, content); ok {
			return s
		}
	}
	return ""
}

func tanstackMethod(callee string) string {
	if callee == "useMutation" {
		return "POST"
	}
	return "GET"
}

func trpcMethod(callee string) string {
	if strings.HasSuffix(callee, ".useMutation") {
		return "POST"
	}
	return "GET"
}

func rtkMethod(callee string) string {
	if strings.HasSuffix(callee, "Mutation") {
		return "POST"
	}
	return "GET"
}
