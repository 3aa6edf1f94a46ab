// Package analysis combines name tokenization, contraction expansion, sub
// particle normalisation and type descriptor parsing into one Analyzer.
//
// Parsed descriptors are memoized in an LRU cache keyed by descriptor text.
// TypeName values are immutable, so cached trees are shared without copying.
//
//	a := analysis.New(analysis.Options{
//	    Dictionary:         contraction.MustLoadDefault(),
//	    ExpandContractions: true,
//	    SubPolicy:          subtoken.Concatenate,
//	})
//	res, err := a.Analyze("cantSubmitOrder", "java.util.List<Order>")
//	// res.Tokens     ["cant", "Submit", "Order"]
//	// res.Normalized ["can", "not", "Submit", "Order"]
//	// res.Acronym    "cso"
//	// res.Type.IdentifierName() "List"
package analysis
