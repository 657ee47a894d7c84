package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "data", "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryEmpty(t *testing.T) {
	repo := newTestRepository(t)
	recs, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestRepositorySaveReplacesAndKeepsOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []core.Expense{
		{Amount: 1, Category: "food", Impulse: "no", Date: "01/06/2024"},
	}))

	want := []core.Expense{
		{Amount: 30, Category: "fun", Impulse: "yes", Date: "10/06/2024", Label: "concert"},
		{Amount: 12.5, Category: "food", Impulse: "no", Date: "09/06/2024"},
		{Amount: 4, Category: "food", Impulse: "", Date: ""},
	}
	require.NoError(t, repo.Save(ctx, want))

	recs, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, core.NormalizeAll(recs))

	counts, err := repo.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fun": 1, "food": 2}, counts)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, RunMigrations(repo.db))
	require.NoError(t, repo.Ping(context.Background()))
}

func TestRepositoryInMemory(t *testing.T) {
	repo, err := NewRepository(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	want := []core.Expense{{Amount: 8, Category: "food", Impulse: "no", Date: "01/06/2024"}}
	require.NoError(t, repo.Save(ctx, want))

	recs, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, core.NormalizeAll(recs))
}
