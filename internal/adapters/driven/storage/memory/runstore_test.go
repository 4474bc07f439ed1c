package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

func TestRunStore_SaveGetIsolated(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.FinalState{
		RunID:      "r1",
		ClientURL:  "https://client.example.com",
		Selections: []domain.EntitySelection{{EntityName: "refund", RelevanceScore: 0.8}},
		FinishedAt: time.Now(),
	}
	require.NoError(t, store.Save(ctx, run))

	// Mutating the caller's copy does not change the archive
	run.Selections[0].EntityName = "changed"

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "refund", got.Selections[0].EntityName)
}

func TestRunStore_Errors(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, &domain.FinalState{}), domain.ErrInvalidInput)
	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "nope"), domain.ErrNotFound)
}

func TestRunStore_ListOrderAndLimit(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &domain.FinalState{RunID: id, FinishedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})

	list, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ID)

	require.NoError(t, store.Delete(ctx, "c"))
	list, _ = store.List(ctx, 0)
	assert.Len(t, list, 2)
}
