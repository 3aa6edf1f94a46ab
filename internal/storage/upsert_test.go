package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpsertIdentifier_UniqueConstraint verifies that the UPSERT operation
// works with the unique index on (file_id, name, start_line, start_col)
func TestUpsertIdentifier_UniqueConstraint(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	_, file := setupTestFile(t, store)

	// First insert - should succeed
	first := newTestIdentifier(file.ID, "userCount", "field", "user count", 10)
	require.NoError(t, store.UpsertIdentifier(ctx, first))
	assert.NotZero(t, first.ID)

	// Second insert with same unique key - should update, not fail
	second := newTestIdentifier(file.ID, "userCount", "field", "user count", 10)
	second.TypeDescriptor = "long"
	second.TypeIdentifier = "long"
	second.EndCol = 30
	require.NoError(t, store.UpsertIdentifier(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	identifiers, err := store.ListIdentifiersByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, identifiers, 1)
	assert.Equal(t, "long", identifiers[0].TypeDescriptor)
	assert.Equal(t, 30, identifiers[0].EndCol)

	// Different position creates a new row
	third := newTestIdentifier(file.ID, "userCount", "field", "user count", 40)
	require.NoError(t, store.UpsertIdentifier(ctx, third))
	assert.NotEqual(t, first.ID, third.ID)

	identifiers, err = store.ListIdentifiersByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, identifiers, 2)
}

// TestUpsertIdentifier_FTSStaysInSync checks that the triggers replace FTS
// rows on update and remove them on delete
func TestUpsertIdentifier_FTSStaysInSync(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	project, file := setupTestFile(t, store)

	id := newTestIdentifier(file.ID, "userCount", "field", "user count", 10)
	require.NoError(t, store.UpsertIdentifier(ctx, id))

	renamed := newTestIdentifier(file.ID, "userCount", "field", "member total", 10)
	require.NoError(t, store.UpsertIdentifier(ctx, renamed))

	results, err := store.SearchText(ctx, project.ID, "count", 10, nil)
	require.NoError(t, err)
	// The name column still holds userCount; only the words changed
	assert.Empty(t, results)

	results, err = store.SearchText(ctx, project.ID, "member", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id.ID, results[0].IdentifierID)

	require.NoError(t, store.DeleteIdentifiersByFile(ctx, file.ID))
	results, err = store.SearchText(ctx, project.ID, "member", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	var ftsRows int
	require.NoError(t, store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identifiers_fts").Scan(&ftsRows))
	assert.Equal(t, 0, ftsRows)
}

// TestUpsertIdentifier_InTransaction runs upserts on the transaction's
// connection; this would block if the tx delegated to the pooled DB
func TestUpsertIdentifier_InTransaction(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	_, file := setupTestFile(t, store)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	for line := 1; line <= 5; line++ {
		require.NoError(t, tx.UpsertIdentifier(ctx, newTestIdentifier(file.ID, "value", "local variable", "value", line)))
	}
	got, err := tx.GetFileByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.FilePath, got.FilePath)

	require.NoError(t, tx.Commit())

	identifiers, err := store.ListIdentifiersByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, identifiers, 5)
}
