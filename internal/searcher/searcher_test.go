package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/types"
)

type fixture struct {
	store   *storage.SQLiteStorage
	project *storage.Project
	ids     map[string]*storage.Identifier
}

// setupFixture stores a small project with a handful of identifiers
func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	project := &storage.Project{RootPath: "/src/app", IndexVersion: "1.0.0"}
	require.NoError(t, store.CreateProject(ctx, project))

	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    "user/store.go",
		PackageName: "user",
		ModTime:     time.Now(),
	}
	require.NoError(t, store.UpsertFile(ctx, file))

	f := &fixture{store: store, project: project, ids: make(map[string]*storage.Identifier)}
	add := func(name, species, tokens, typeName string, line int) {
		id := &storage.Identifier{
			FileID:           file.ID,
			Name:             name,
			Species:          species,
			PackageName:      "user",
			Container:        "Store",
			TypeDescriptor:   typeName,
			TypeIdentifier:   typeName,
			Tokens:           tokens,
			NormalizedTokens: tokens,
			StartLine:        line,
			StartCol:         2,
			EndLine:          line,
			EndCol:           20,
		}
		require.NoError(t, store.UpsertIdentifier(ctx, id))
		f.ids[name] = id
	}
	add("userCount", "field", "user Count", "int", 5)
	add("userCounter", "method", "user Counter", "int", 10)
	add("loadUser", "method", "load User", "User", 20)
	add("timeout", "field", "timeout", "Duration", 30)
	return f
}

func TestSearch_Modes(t *testing.T) {
	f := setupFixture(t)
	s := NewSearcher(f.store)
	ctx := context.Background()

	for _, mode := range []SearchMode{SearchModeHybrid, SearchModeName, SearchModeKeyword} {
		t.Run(string(mode), func(t *testing.T) {
			resp, err := s.Search(ctx, SearchRequest{
				ProjectID: f.project.ID,
				Query:     "userCount",
				Mode:      mode,
			})
			require.NoError(t, err)
			assert.Equal(t, mode, resp.SearchMode)
			require.Len(t, resp.Results, 2)
			assert.Equal(t, resp.TotalResults, len(resp.Results))
			assert.Equal(t, 2, resp.Candidates)

			for i, r := range resp.Results {
				assert.Equal(t, i+1, r.Rank)
				assert.NoError(t, r.Validate())
			}
			if mode != SearchModeKeyword {
				assert.Equal(t, "userCount", resp.Results[0].Name)
			}
		})
	}
}

func TestSearch_NameModeScores(t *testing.T) {
	f := setupFixture(t)
	s := NewSearcher(f.store)

	resp, err := s.Search(context.Background(), SearchRequest{
		ProjectID: f.project.ID,
		Query:     "user count",
		Mode:      SearchModeName,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	top := resp.Results[0]
	assert.Equal(t, "userCount", top.Name)
	assert.InDelta(t, 1.0, top.RelevanceScore, 1e-9)
	assert.Equal(t, types.SpeciesField, top.Species)
	assert.Equal(t, []string{"user", "Count"}, top.Tokens)
	assert.Equal(t, "user/store.go", top.File.Path)
	assert.Equal(t, "user", top.File.Package)
	assert.Equal(t, 5, top.File.StartLine)

	for i := 1; i < len(resp.Results); i++ {
		assert.LessOrEqual(t, resp.Results[i].RelevanceScore, resp.Results[i-1].RelevanceScore)
	}
}

func TestSearch_Filters(t *testing.T) {
	f := setupFixture(t)
	s := NewSearcher(f.store)
	ctx := context.Background()

	t.Run("species", func(t *testing.T) {
		resp, err := s.Search(ctx, SearchRequest{
			ProjectID: f.project.ID,
			Query:     "user",
			Filters:   &storage.SearchFilters{Species: []string{"method"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		for _, r := range resp.Results {
			assert.Equal(t, types.SpeciesMethod, r.Species)
		}
	})

	t.Run("min relevance", func(t *testing.T) {
		resp, err := s.Search(ctx, SearchRequest{
			ProjectID: f.project.ID,
			Query:     "user count",
			Mode:      SearchModeName,
			Filters:   &storage.SearchFilters{MinRelevance: 0.99},
		})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "userCount", resp.Results[0].Name)
	})

	t.Run("limit", func(t *testing.T) {
		resp, err := s.Search(ctx, SearchRequest{
			ProjectID: f.project.ID,
			Query:     "user",
			Limit:     1,
		})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, 1, resp.Results[0].Rank)
	})

	t.Run("no match", func(t *testing.T) {
		resp, err := s.Search(ctx, SearchRequest{ProjectID: f.project.ID, Query: "zebra"})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
	})
}

func TestSearch_InvalidRequests(t *testing.T) {
	f := setupFixture(t)
	s := NewSearcher(f.store)
	ctx := context.Background()

	_, err := s.Search(ctx, SearchRequest{ProjectID: f.project.ID, Query: "  "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = s.Search(ctx, SearchRequest{ProjectID: f.project.ID, Query: "(("})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = s.Search(ctx, SearchRequest{ProjectID: f.project.ID, Query: "user", Mode: "vector"})
	assert.Error(t, err)
}

func TestSearch_Cache(t *testing.T) {
	f := setupFixture(t)
	s := NewSearcher(f.store)
	ctx := context.Background()

	req := SearchRequest{ProjectID: f.project.ID, Query: "timeout", UseCache: true}

	first, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	require.Len(t, first.Results, 1)
	assert.Equal(t, 1, s.CacheLen())

	// Mutating a response must not leak into the cache
	first.Results[0].Tokens[0] = "changed"
	first.Results[0].File.Path = "changed.go"

	second, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, []string{"timeout"}, second.Results[0].Tokens)
	assert.Equal(t, "user/store.go", second.Results[0].File.Path)

	s.InvalidateCache()
	assert.Equal(t, 0, s.CacheLen())

	third, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
}

func TestSearch_CacheExpiry(t *testing.T) {
	f := setupFixture(t)
	s := NewSearcher(f.store)
	ctx := context.Background()

	req := SearchRequest{ProjectID: f.project.ID, Query: "timeout", UseCache: true, CacheTTL: time.Nanosecond}
	_, err := s.Search(ctx, req)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	resp, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		query string
		id    *storage.Identifier
		want  float64
	}{
		{"exact", "userCount", &storage.Identifier{Name: "userCount"}, 1},
		{"case and spaces", "USER count", &storage.Identifier{Name: "userCount"}, 1},
		{"separators", "max_size", &storage.Identifier{Name: "MAX_SIZE"}, 1},
		{"one edit", "userCount", &storage.Identifier{Name: "userCounts"}, 0.9},
		{"normalized words", "subtotal", &storage.Identifier{Name: "subTotal", NormalizedTokens: "subTotal"}, 1},
		{"nothing shared", "abc", &storage.Identifier{Name: "xyz"}, 0},
		{"empty", "", &storage.Identifier{Name: ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NameSimilarity(tt.query, tt.id), 1e-9)
		})
	}
}

func TestApplyRRF(t *testing.T) {
	a := &storage.Identifier{ID: 1, Name: "a"}
	b := &storage.Identifier{ID: 2, Name: "b"}
	candidates := []candidate{
		{identifier: a, bm25: 0.9, textRank: 1},
		{identifier: b, bm25: 0.5, textRank: 2},
	}

	// a is first in both orders
	results := applyRRF(candidates, []float64{1, 0.5}, 60)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].score, 1e-9)
	assert.Less(t, results[1].score, results[0].score)

	// Opposite orders tie
	results = applyRRF(candidates, []float64{0.1, 0.9}, 60)
	assert.InDelta(t, results[0].score, results[1].score, 1e-12)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, SearchModeHybrid, mode)

	mode, err = ParseMode(" Keyword ")
	require.NoError(t, err)
	assert.Equal(t, SearchModeKeyword, mode)

	_, err = ParseMode("vector")
	assert.Error(t, err)
}

func TestValidateRequest_Defaults(t *testing.T) {
	req := SearchRequest{Query: "x", Limit: 1000}
	require.NoError(t, validateRequest(&req))
	assert.Equal(t, MaxLimit, req.Limit)
	assert.Equal(t, SearchModeHybrid, req.Mode)
	assert.Equal(t, 60.0, req.RRFConstant)
	assert.Equal(t, time.Hour, req.CacheTTL)

	req = SearchRequest{Query: "x"}
	require.NoError(t, validateRequest(&req))
	assert.Equal(t, DefaultLimit, req.Limit)
}

func TestComputeQueryHash(t *testing.T) {
	base := SearchRequest{Query: "user", Mode: SearchModeHybrid, ProjectID: 1}
	other := base
	other.Filters = &storage.SearchFilters{Species: []string{"field"}}

	assert.Equal(t, computeQueryHash(base), computeQueryHash(base))
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(other))

	// Close relevance thresholds filter differently and must not share an entry
	low := base
	low.Filters = &storage.SearchFilters{MinRelevance: 0.501}
	high := base
	high.Filters = &storage.SearchFilters{MinRelevance: 0.504}
	assert.NotEqual(t, computeQueryHash(low), computeQueryHash(high))
}
