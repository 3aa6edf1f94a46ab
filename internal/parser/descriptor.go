package parser

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/dshills/idtk/pkg/types"
)

// typeDescriptor renders a Go type expression in descriptor form: slices and
// arrays as "T[]", pointers as their element, generic instantiations and the
// builtin containers in angle brackets ("map<K,V>", "chan<T>", "Set<T>").
// Function and anonymous composite types collapse to a keyword.
func typeDescriptor(expr ast.Expr) string {
	var b strings.Builder
	if !writeDescriptor(&b, expr) {
		return types.NoTypeDescriptor
	}
	return b.String()
}

func writeDescriptor(b *strings.Builder, expr ast.Expr) bool {
	switch t := expr.(type) {
	case nil:
		return false
	case *ast.Ident:
		b.WriteString(t.Name)
	case *ast.StarExpr:
		return writeDescriptor(b, t.X)
	case *ast.ParenExpr:
		return writeDescriptor(b, t.X)
	case *ast.ArrayType:
		if !writeDescriptor(b, t.Elt) {
			return false
		}
		b.WriteString("[]")
	case *ast.Ellipsis:
		if !writeDescriptor(b, t.Elt) {
			return false
		}
		b.WriteString("[]")
	case *ast.SelectorExpr:
		if !writeDescriptor(b, t.X) {
			return false
		}
		b.WriteByte('.')
		b.WriteString(t.Sel.Name)
	case *ast.MapType:
		b.WriteString("map")
		return writeParams(b, t.Key, t.Value)
	case *ast.ChanType:
		b.WriteString("chan")
		return writeParams(b, t.Value)
	case *ast.IndexExpr:
		if !writeDescriptor(b, t.X) {
			return false
		}
		return writeParams(b, t.Index)
	case *ast.IndexListExpr:
		if !writeDescriptor(b, t.X) {
			return false
		}
		return writeParams(b, t.Indices...)
	case *ast.FuncType:
		b.WriteString("func")
	case *ast.StructType:
		b.WriteString("struct")
	case *ast.InterfaceType:
		b.WriteString("interface")
	default:
		return false
	}
	return true
}

func writeParams(b *strings.Builder, params ...ast.Expr) bool {
	b.WriteByte('<')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		if !writeDescriptor(b, p) {
			return false
		}
	}
	b.WriteByte('>')
	return true
}

// resultDescriptor is the declared type of a function: its first result
func resultDescriptor(results *ast.FieldList) string {
	if results == nil || len(results.List) == 0 {
		return types.NoTypeDescriptor
	}
	return typeDescriptor(results.List[0].Type)
}

// declaredTypeDescriptor is the descriptor of a named type declaration: the
// type's own name with its type parameters, or the aliased type for aliases
func declaredTypeDescriptor(spec *ast.TypeSpec) string {
	if spec.Assign.IsValid() {
		return typeDescriptor(spec.Type)
	}

	if spec.TypeParams == nil || len(spec.TypeParams.List) == 0 {
		return spec.Name.Name
	}

	var params []string
	for _, field := range spec.TypeParams.List {
		for _, name := range field.Names {
			params = append(params, name.Name)
		}
	}
	return spec.Name.Name + "<" + strings.Join(params, ",") + ">"
}

// inferDescriptor guesses the type of an initialiser from its syntax alone.
// Anything that needs type checking yields NoTypeDescriptor.
func inferDescriptor(expr ast.Expr) string {
	switch v := expr.(type) {
	case *ast.CompositeLit:
		return typeDescriptor(v.Type)
	case *ast.UnaryExpr:
		if v.Op == token.AND {
			return inferDescriptor(v.X)
		}
	case *ast.ParenExpr:
		return inferDescriptor(v.X)
	case *ast.BasicLit:
		switch v.Kind {
		case token.INT:
			return "int"
		case token.FLOAT:
			return "float64"
		case token.IMAG:
			return "complex128"
		case token.CHAR:
			return "rune"
		case token.STRING:
			return "string"
		}
	case *ast.FuncLit:
		return "func"
	case *ast.Ident:
		if v.Name == "true" || v.Name == "false" {
			return "bool"
		}
	case *ast.CallExpr:
		if fn, ok := v.Fun.(*ast.Ident); ok && (fn.Name == "make" || fn.Name == "new") && len(v.Args) > 0 {
			return typeDescriptor(v.Args[0])
		}
	}
	return types.NoTypeDescriptor
}
