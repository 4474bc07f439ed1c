package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory run archive. Runs are stored as JSON so callers
// never share state with the store.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string][]byte
	meta map[string]domain.RunSummary
}

// NewRunStore creates an empty in-memory run archive.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string][]byte),
		meta: make(map[string]domain.RunSummary),
	}
}

// Save stores or replaces a run.
func (s *RunStore) Save(_ context.Context, state *domain.FinalState) error {
	if state == nil || state.RunID == "" {
		return fmt.Errorf("%w: run without ID", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[state.RunID] = data
	s.meta[state.RunID] = state.Summary()
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.FinalState, error) {
	s.mu.RLock()
	data, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	var state domain.FinalState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshaling run: %w", err)
	}
	return &state, nil
}

// List returns run summaries, newest first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	runs := make([]domain.RunSummary, 0, len(s.meta))
	for _, summary := range s.meta {
		runs = append(runs, summary)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Delete removes a run.
func (s *RunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, id)
	delete(s.meta, id)
	return nil
}
