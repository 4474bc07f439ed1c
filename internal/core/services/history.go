package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// errNoArchive is returned when history is read without a run store.
var errNoArchive = errors.New("run archive not configured")

// HistoryService exposes the archive of completed runs.
type HistoryService struct {
	store driven.RunStore
}

// NewHistoryService creates a history service. store may be nil, in which
// case Record is a no-op and reads fail.
func NewHistoryService(store driven.RunStore) *HistoryService {
	return &HistoryService{store: store}
}

// Record archives a completed run.
func (s *HistoryService) Record(ctx context.Context, state *domain.FinalState) error {
	if s.store == nil {
		return nil
	}
	if state == nil || state.RunID == "" {
		return fmt.Errorf("%w: run without ID", domain.ErrInvalidInput)
	}
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("archive run %s: %w", state.RunID, err)
	}
	return nil
}

// List returns archived runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if s.store == nil {
		return nil, errNoArchive
	}
	return s.store.List(ctx, limit)
}

// Get returns one archived run.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.FinalState, error) {
	if s.store == nil {
		return nil, errNoArchive
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty run ID", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// Delete removes one archived run.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return errNoArchive
	}
	if id == "" {
		return fmt.Errorf("%w: empty run ID", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}
