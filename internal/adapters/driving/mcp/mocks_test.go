package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.GapAnalysisService.
type mockAnalysisService struct {
	state   *domain.FinalState
	err     error
	lastReq domain.AnalysisRequest
}

func (m *mockAnalysisService) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.FinalState, error) {
	m.lastReq = req
	return m.state, m.err
}

// mockReportService is a mock implementation of driving.ReportService.
// Render returns "<format>:<run id>".
type mockReportService struct {
	err error
}

func (m *mockReportService) Render(state *domain.FinalState, format domain.ReportFormat) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte(fmt.Sprintf("%s:%s", format, state.RunID)), nil
}

func (m *mockReportService) Export(
	_ context.Context,
	_ *domain.FinalState,
	_ string,
	_ []domain.ReportFormat,
) ([]string, error) {
	return nil, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	runs      []domain.RunSummary
	states    map[string]*domain.FinalState
	recorded  []string
	lastLimit int
	err       error
	recordErr error
}

func (m *mockHistoryService) Record(_ context.Context, state *domain.FinalState) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, state.RunID)
	return nil
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	m.lastLimit = limit
	return m.runs, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.FinalState, error) {
	if m.err != nil {
		return nil, m.err
	}
	state, ok := m.states[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return state, nil
}

func (m *mockHistoryService) Delete(_ context.Context, _ string) error {
	return m.err
}

func newTestPorts() *Ports {
	return &Ports{
		Analysis: &mockAnalysisService{},
		Report:   &mockReportService{},
	}
}
