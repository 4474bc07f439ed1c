package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gapscope/internal/core/domain"
)

func TestHistoryService_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryService(memory.NewRunStore())

	older := &domain.FinalState{RunID: "old", ClientURL: clientURL, FinishedAt: runStart}
	newer := &domain.FinalState{RunID: "new", ClientURL: clientURL, FinishedAt: runStart.Add(time.Hour)}
	require.NoError(t, s.Record(ctx, older))
	require.NoError(t, s.Record(ctx, newer))

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)

	got, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, clientURL, got.ClientURL)

	require.NoError(t, s.Delete(ctx, "old"))
	_, err = s.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_InvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryService(memory.NewRunStore())

	assert.ErrorIs(t, s.Record(ctx, &domain.FinalState{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Record(ctx, nil), domain.ErrInvalidInput)

	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Delete(ctx, ""), domain.ErrInvalidInput)
}

func TestHistoryService_NoStore(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryService(nil)

	assert.NoError(t, s.Record(ctx, finishedState()))

	_, err := s.List(ctx, 10)
	assert.ErrorIs(t, err, errNoArchive)
	_, err = s.Get(ctx, "run-1")
	assert.ErrorIs(t, err, errNoArchive)
	assert.ErrorIs(t, s.Delete(ctx, "run-1"), errNoArchive)
}
