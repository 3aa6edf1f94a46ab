// Package typename parses textual type descriptors into TypeName trees.
//
// A descriptor is a possibly qualified type name with optional generic
// parameters and array brackets:
//
//	tn, err := typename.Parse("org.foo.Bar.Inner<java.lang.String,List<Integer>>[][]")
//	tn.IdentifierName()          // "Inner"
//	tn.PackageName()             // "org.foo"
//	tn.FQN()                     // "org.foo.Bar.Inner"
//	tn.ArrayDimensions()         // 2
//	len(tn.ParameterisedTypes()) // 2
//	tn.TypeAcronym()             // "i"
//
// # Leniency
//
// The parser does not validate brackets or dots. Malformed descriptors produce
// a best-effort tree rather than an error. Only an empty descriptor
// (types.ErrInvalidArgument) and generic nesting beyond Parser.MaxDepth
// (types.ErrNestingTooDeep) are rejected.
//
// Package segments are recognised by case: the package is everything before
// the first segment that starts with an ASCII upper case letter, and only when
// the descriptor itself starts with a lower case letter.
//
// # No type
//
// The NoType descriptor stands for "no declared type" and is returned as a
// sentinel TypeName without being parsed.
package typename
