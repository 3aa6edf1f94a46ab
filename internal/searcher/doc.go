// Package searcher finds indexed identifiers by the words they are made of.
//
// A search runs in two stages. The full-text index is queried first: every
// query term is matched as a prefix of the identifier's name, its words, its
// normalized words, or its declared type. The candidates are then reranked.
//
// # Search Modes
//
//   - keyword: BM25 order from the full-text index
//   - name: similarity between the query and the identifier, computed as
//     1 - levenshtein/maxLen over the lower cased name with separators removed
//   - hybrid (default): both orders fused with Reciprocal Rank Fusion
//
// Hybrid scores are divided by the best possible fused score so every mode
// reports RelevanceScore in [0, 1]. Ranks are 1-based and contiguous.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store)
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    ProjectID: project.ID,
//	    Query:     "user count",
//	    Limit:     10,
//	    Filters:   &storage.SearchFilters{Species: []string{"field"}},
//	})
//	for _, r := range resp.Results {
//	    fmt.Printf("%d. %s (%.2f) %s:%d\n", r.Rank, r.Name, r.RelevanceScore,
//	        r.File.Path, r.File.StartLine)
//	}
//
// # Caching
//
// With UseCache set, responses are kept in an LRU cache for CacheTTL
// (default one hour). Call InvalidateCache after reindexing.
package searcher
