// Package types provides shared type definitions for idtk.
//
// # Closed Sets
//
// Modifier and Species are closed enumerations with a description table.
// Reverse lookup fails with ErrInvalidArgument for unknown text:
//
//	m, err := types.ModifierFor("static")
//	s, err := types.SpeciesFor("formal argument")
//	if errors.Is(err, types.ErrInvalidArgument) {
//	    // not a known description
//	}
//
// Species carries grouping predicates used by analysis callers:
//
//	types.SpeciesMemberClass.IsClass()          // true
//	types.SpeciesFormalArgument.IsReference()   // true
//	types.SpeciesMethod.IsContainer()           // true
//
// # Identifiers
//
// Identifier is a declared name extracted from source code together with its
// species, modifiers, enclosing container and declared type descriptor:
//
//	id := &types.Identifier{
//	    Name:           "maxRetryCount",
//	    Species:        types.SpeciesField,
//	    Modifiers:      []types.Modifier{types.ModifierPrivate, types.ModifierStatic},
//	    Package:        "client",
//	    TypeDescriptor: "int",
//	}
//
// Identifiers without a declared type use NoTypeDescriptor.
package types
