// Package parser extracts declared identifiers from Go source files using AST parsing.
//
// Every declared name becomes a types.Identifier carrying its species, modifiers,
// enclosing container and declared type in descriptor form.
//
// # Basic Usage
//
//	p := parser.New()
//	result, err := p.ParseFile("/path/to/file.go")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, id := range result.Identifiers {
//	    fmt.Printf("%s %s : %s\n", id.Species, id.Name, id.TypeDescriptor)
//	}
//
// # Species
//
// Go declarations are mapped onto the species set:
//   - functions and methods: method; New and NewXxx functions: constructor; init: initialiser
//   - named types: class, or interface; inside a function: local class or nested interface
//   - defined basic types with typed package constants: enum, with enum constants
//   - struct fields, package variables and constants: field
//   - parameters, receivers and named results: formal argument
//   - short variable declarations, local var/const and range variables: local
//   - labels: label name
//
// Exported names are public, others private. Package-level declarations are
// static and constants are final.
//
// # Type Descriptors
//
// Types are rendered for the typename package: []T and [N]T become T[],
// pointers are dropped, map[K]V becomes map<K,V>, chan T becomes chan<T> and
// G[A, B] becomes G<A,B>. Functions use their first result type. Locals
// without an explicit type get one only when the initialiser makes it
// obvious (composite literals, basic literals, make and new).
//
// # Error Handling
//
// Syntax errors are recorded in the result, not returned. Partial results are
// still extracted from whatever the Go parser recovered.
package parser
