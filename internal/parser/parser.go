package parser

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	"strings"

	"github.com/dshills/idtk/pkg/types"
)

// Parser handles AST-based extraction of identifiers from Go source files
type Parser struct {
	fset *token.FileSet
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		fset: token.NewFileSet(),
	}
}

// ParseFile parses a Go source file and extracts identifiers, imports, and package information
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseSource(filePath, content), nil
}

// ParseSource parses already loaded source. Syntax errors are recorded in the
// result and whatever partial AST the Go parser recovered is still extracted.
func (p *Parser) ParseSource(filePath string, content []byte) *types.ParseResult {
	result := &types.ParseResult{}

	file, err := parser.ParseFile(p.fset, filePath, content, parser.SkipObjectResolution)
	if err != nil {
		result.AddSyntaxError(filePath, syntaxErrorPosition(err), fmt.Sprintf("syntax error: %v", err))
	}

	if file == nil {
		return result
	}

	if file.Name != nil {
		result.PackageName = file.Name.Name
	}
	result.Imports = p.extractImports(file)

	state := &extraction{
		fset:        p.fset,
		packageName: result.PackageName,
		identifiers: make([]types.Identifier, 0, 64),
		namedTypes:  make(map[string]int),
	}
	ast.Walk(&identifierExtractor{state: state}, file)
	state.classifyEnums()

	result.Identifiers = state.identifiers
	return result
}

// extractImports extracts import statements from the AST
func (p *Parser) extractImports(file *ast.File) []types.Import {
	imports := make([]types.Import, 0, len(file.Imports))

	for _, imp := range file.Imports {
		importSpec := types.Import{
			Path: strings.Trim(imp.Path.Value, `"`),
		}

		// Check for alias
		if imp.Name != nil {
			importSpec.Alias = imp.Name.Name
		}

		imports = append(imports, importSpec)
	}

	return imports
}

// extraction is the state shared by every visitor of one file
type extraction struct {
	fset        *token.FileSet
	packageName string
	identifiers []types.Identifier

	// namedTypes maps package-level defined types with a basic underlying
	// type to their index in identifiers
	namedTypes map[string]int
}

// identifierExtractor walks the AST. Each nested scope gets its own copy
// carrying the enclosing declaration name.
type identifierExtractor struct {
	state     *extraction
	container string
	inFunc    bool
}

func (e *identifierExtractor) enter(container string) *identifierExtractor {
	return &identifierExtractor{state: e.state, container: container, inFunc: true}
}

// Visit implements ast.Visitor
func (e *identifierExtractor) Visit(node ast.Node) ast.Visitor {
	switch n := node.(type) {
	case nil:
		return nil
	case *ast.FuncDecl:
		e.extractFunction(n)
		return nil
	case *ast.FuncLit:
		scope := e.enter(e.container)
		if scope.container == "" {
			scope.container = "func"
		}
		scope.extractFieldList(scope.container, n.Type.Params)
		scope.extractFieldList(scope.container, n.Type.Results)
		ast.Walk(scope, n.Body)
		return nil
	case *ast.GenDecl:
		e.extractGenDecl(n)
		return nil
	case *ast.AssignStmt:
		if n.Tok == token.DEFINE {
			e.extractDefine(n)
		}
	case *ast.RangeStmt:
		if n.Tok == token.DEFINE {
			for _, expr := range []ast.Expr{n.Key, n.Value} {
				if ident, ok := expr.(*ast.Ident); ok {
					e.add(ident.Name, types.SpeciesLocalVariable, types.NoTypeDescriptor, ident, ident)
				}
			}
		}
	case *ast.LabeledStmt:
		e.add(n.Label.Name, types.SpeciesLabel, types.NoTypeDescriptor, n.Label, n.Label)
	}
	return e
}

// extractFunction records a function or method, its receiver, parameters and
// results, then walks its body
func (e *identifierExtractor) extractFunction(fn *ast.FuncDecl) {
	name := fn.Name.Name
	species := functionSpecies(fn)

	container := ""
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		container = receiverTypeName(fn.Recv.List[0].Type)
	}

	id := e.newIdentifier(name, species, resultDescriptor(fn.Type.Results), fn, fn)
	id.Container = container
	id.Modifiers = modifiers(name, fn.Recv == nil, false)
	e.append(id)

	scope := e.enter(name)
	scope.extractFieldList(name, fn.Recv)
	scope.extractFieldList(name, fn.Type.Params)
	scope.extractFieldList(name, fn.Type.Results)

	if fn.Body != nil {
		ast.Walk(scope, fn.Body)
	}
}

// extractFieldList records named parameters or results as formal arguments
func (e *identifierExtractor) extractFieldList(container string, fields *ast.FieldList) {
	if fields == nil {
		return
	}

	for _, field := range fields.List {
		descriptor := typeDescriptor(field.Type)
		for _, name := range field.Names {
			id := e.newIdentifier(name.Name, types.SpeciesFormalArgument, descriptor, name, name)
			id.Container = container
			id.Modifiers = modifiers(name.Name, false, false)
			e.append(id)
		}
	}
}

// extractGenDecl extracts type, const, and var declarations
func (e *identifierExtractor) extractGenDecl(decl *ast.GenDecl) {
	// Constants without a type or value repeat the previous spec
	var implicitType ast.Expr

	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			e.extractTypeSpec(s)
		case *ast.ValueSpec:
			if decl.Tok == token.CONST {
				if s.Type != nil || len(s.Values) > 0 {
					implicitType = s.Type
				}
				e.extractValueSpec(s, implicitType, true)
			} else {
				e.extractValueSpec(s, s.Type, false)
			}
		}
	}
}

// extractTypeSpec records a named type, then its fields or methods
func (e *identifierExtractor) extractTypeSpec(spec *ast.TypeSpec) {
	name := spec.Name.Name
	species := types.SpeciesClass
	if _, ok := spec.Type.(*ast.InterfaceType); ok {
		species = types.SpeciesInterface
	}
	if e.inFunc {
		species = localSpecies(species)
	}

	id := e.newIdentifier(name, species, declaredTypeDescriptor(spec), spec, spec)
	id.Container = e.container
	id.Modifiers = modifiers(name, !e.inFunc, false)
	if !e.append(id) {
		return
	}

	if !e.inFunc {
		if _, ok := spec.Type.(*ast.Ident); ok {
			e.state.namedTypes[name] = len(e.state.identifiers) - 1
		}
	}

	switch t := spec.Type.(type) {
	case *ast.StructType:
		e.extractStructFields(name, t)
	case *ast.InterfaceType:
		e.extractInterfaceMethods(name, t)
	}
}

// extractStructFields records fields, including embedded ones under the name
// of their type. Fields of anonymous struct types belong to the enclosing field.
func (e *identifierExtractor) extractStructFields(container string, st *ast.StructType) {
	if st.Fields == nil {
		return
	}

	for _, field := range st.Fields.List {
		descriptor := typeDescriptor(field.Type)

		if len(field.Names) == 0 {
			name := embeddedName(field.Type)
			if name == "" {
				continue
			}
			id := e.newIdentifier(name, types.SpeciesField, descriptor, field, field)
			id.Container = container
			id.Modifiers = modifiers(name, false, false)
			e.append(id)
			continue
		}

		for _, name := range field.Names {
			id := e.newIdentifier(name.Name, types.SpeciesField, descriptor, name, field)
			id.Container = container
			id.Modifiers = modifiers(name.Name, false, false)
			e.append(id)

			if nested, ok := field.Type.(*ast.StructType); ok {
				e.extractStructFields(name.Name, nested)
			}
		}
	}
}

// extractInterfaceMethods records method signatures and their parameters.
// Embedded interfaces and type constraints are not declarations and are skipped.
func (e *identifierExtractor) extractInterfaceMethods(container string, it *ast.InterfaceType) {
	if it.Methods == nil {
		return
	}

	for _, method := range it.Methods.List {
		fn, ok := method.Type.(*ast.FuncType)
		if !ok {
			continue
		}
		for _, name := range method.Names {
			id := e.newIdentifier(name.Name, types.SpeciesMethod, resultDescriptor(fn.Results), method, method)
			id.Container = container
			id.Modifiers = modifiers(name.Name, false, false)
			e.append(id)

			e.extractFieldList(name.Name, fn.Params)
			e.extractFieldList(name.Name, fn.Results)
		}
	}
}

// extractValueSpec records constants and variables. At package level they are
// static fields; inside functions they are locals.
func (e *identifierExtractor) extractValueSpec(spec *ast.ValueSpec, typ ast.Expr, isConst bool) {
	species := types.SpeciesField
	if e.inFunc {
		species = types.SpeciesLocalVariable
	}

	for i, name := range spec.Names {
		descriptor := typeDescriptor(typ)
		if typ == nil && i < len(spec.Values) {
			descriptor = inferDescriptor(spec.Values[i])
		}

		id := e.newIdentifier(name.Name, species, descriptor, name, spec)
		id.Container = e.container
		id.Modifiers = modifiers(name.Name, !e.inFunc, isConst)
		e.append(id)
	}

	// Function literals in initialisers belong to the variable
	for i, value := range spec.Values {
		container := e.container
		if i < len(spec.Names) && spec.Names[i].Name != "_" {
			container = spec.Names[i].Name
		}
		ast.Walk(e.enter(container), value)
	}
}

// extractDefine records the variables declared by a short variable declaration
func (e *identifierExtractor) extractDefine(assign *ast.AssignStmt) {
	for i, lhs := range assign.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok {
			continue
		}

		descriptor := types.NoTypeDescriptor
		if len(assign.Lhs) == len(assign.Rhs) {
			descriptor = inferDescriptor(assign.Rhs[i])
		}
		e.add(ident.Name, types.SpeciesLocalVariable, descriptor, ident, ident)
	}
}

// add records a name declared inside the current container
func (e *identifierExtractor) add(name string, species types.Species, descriptor string, start, end ast.Node) {
	id := e.newIdentifier(name, species, descriptor, start, end)
	id.Container = e.container
	id.Modifiers = modifiers(name, false, false)
	e.append(id)
}

// append skips blank identifiers and reports whether id was recorded
func (e *identifierExtractor) append(id types.Identifier) bool {
	if id.Name == "" || id.Name == "_" {
		return false
	}
	e.state.identifiers = append(e.state.identifiers, id)
	return true
}

func (e *identifierExtractor) newIdentifier(name string, species types.Species, descriptor string, start, end ast.Node) types.Identifier {
	return types.Identifier{
		Name:           name,
		Species:        species,
		Package:        e.state.packageName,
		TypeDescriptor: descriptor,
		Start:          e.state.position(start.Pos()),
		End:            e.state.position(end.End()),
	}
}

// position converts a token position to our Position type
func (s *extraction) position(pos token.Pos) types.Position {
	position := s.fset.Position(pos)
	return types.Position{
		Line:   position.Line,
		Column: position.Column,
	}
}

// syntaxErrorPosition returns the location of the first error the Go parser reported
func syntaxErrorPosition(err error) types.Position {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return types.Position{Line: list[0].Pos.Line, Column: list[0].Pos.Column}
	}
	return types.Position{}
}

// receiverTypeName extracts the receiver type name from a method, dropping
// pointers and type parameters
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.ParenExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

// embeddedName returns the field name Go gives an embedded field
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}
