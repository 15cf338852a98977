package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeatelie/lume-backend/internal/app/model"
)

func setupCartRepositoryTest(t *testing.T) *MemoryCartRepository {
	return NewMemoryCartRepository()
}

func TestMemoryCartRepository_LoadMissingSession(t *testing.T) {
	repo := setupCartRepositoryTest(t)

	lines, err := repo.Load(context.Background(), "unknown-session")

	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines)
}

func TestMemoryCartRepository_SaveAndLoad(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	ctx := context.Background()

	saved := []model.CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 4, Quantity: 1, PersonalizationNote: "Gravar: Família Souza"},
	}
	require.NoError(t, repo.Save(ctx, "session-a", saved))

	lines, err := repo.Load(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Gravar: Família Souza", lines[1].PersonalizationNote)
}

func TestMemoryCartRepository_SaveReplacesDocument(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-a", []model.CartLine{{ProductID: 1, Quantity: 2}}))
	require.NoError(t, repo.Save(ctx, "session-a", []model.CartLine{{ProductID: 9, Quantity: 1}}))

	lines, err := repo.Load(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint(9), lines[0].ProductID)
}

func TestMemoryCartRepository_LoadReturnsCopy(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-a", []model.CartLine{{ProductID: 1, Quantity: 2}}))

	lines, err := repo.Load(ctx, "session-a")
	require.NoError(t, err)
	lines[0].Quantity = 99

	reloaded, err := repo.Load(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded[0].Quantity)
}

func TestMemoryCartRepository_Delete(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-a", []model.CartLine{{ProductID: 1, Quantity: 1}}))
	require.NoError(t, repo.Delete(ctx, "session-a"))

	lines, err := repo.Load(ctx, "session-a")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemoryCartRepository_SessionIsolation(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-a", []model.CartLine{{ProductID: 1, Quantity: 1}}))
	require.NoError(t, repo.Save(ctx, "session-b", []model.CartLine{{ProductID: 2, Quantity: 3}}))

	linesA, err := repo.Load(ctx, "session-a")
	require.NoError(t, err)
	linesB, err := repo.Load(ctx, "session-b")
	require.NoError(t, err)

	require.Len(t, linesA, 1)
	require.Len(t, linesB, 1)
	assert.Equal(t, uint(1), linesA[0].ProductID)
	assert.Equal(t, uint(2), linesB[0].ProductID)
}

func TestMemoryCartRepository_PruneIdle(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "stale", []model.CartLine{{ProductID: 1, Quantity: 1}}))

	// Backdate the stale entry past the idle cutoff.
	repo.mu.Lock()
	entry := repo.carts["stale"]
	entry.updatedAt = time.Now().Add(-48 * time.Hour)
	repo.carts["stale"] = entry
	repo.mu.Unlock()

	require.NoError(t, repo.Save(ctx, "fresh", []model.CartLine{{ProductID: 2, Quantity: 1}}))

	removed := repo.PruneIdle(24 * time.Hour)
	assert.Equal(t, 1, removed)

	lines, err := repo.Load(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = repo.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
