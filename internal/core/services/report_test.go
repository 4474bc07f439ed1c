package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

func finishedState() *domain.FinalState {
	return &domain.FinalState{RunID: "run-1", ClientURL: clientURL, FinishedAt: runStart}
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "analysis_report_20240102_030405.md", ReportFileName(runStart, domain.ReportFormatMarkdown))
	assert.Equal(t, "analysis_report_20240102_030405.xlsx", ReportFileName(runStart, domain.ReportFormatXLSX))
}

func TestReportService_Render(t *testing.T) {
	s := NewReportService(&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("# report")})

	data, err := s.Render(finishedState(), domain.ReportFormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# report", string(data))

	_, err = s.Render(finishedState(), domain.ReportFormatHTML)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = s.Render(nil, domain.ReportFormatMarkdown)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportService_RenderFailure(t *testing.T) {
	s := NewReportService(&mockRenderer{format: domain.ReportFormatXLSX, err: errors.New("bad sheet")})

	_, err := s.Render(finishedState(), domain.ReportFormatXLSX)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Contains(t, err.Error(), "bad sheet")
}

func TestReportService_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewReportService(
		&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("# report")},
		&mockRenderer{format: domain.ReportFormatJSON, data: []byte(`{"run_id":"run-1"}`)},
	)

	paths, err := s.Export(context.Background(), finishedState(), dir,
		[]domain.ReportFormat{domain.ReportFormatJSON, domain.ReportFormatMarkdown})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "analysis_report_20240102_030405.json"),
		filepath.Join(dir, "analysis_report_20240102_030405.md"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "# report", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestReportService_ExportWritesNothingOnRenderFailure(t *testing.T) {
	dir := t.TempDir()
	s := NewReportService(
		&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("# report")},
		&mockRenderer{format: domain.ReportFormatXLSX, err: errors.New("bad sheet")},
	)

	_, err := s.Export(context.Background(), finishedState(), dir,
		[]domain.ReportFormat{domain.ReportFormatMarkdown, domain.ReportFormatXLSX})
	require.ErrorIs(t, err, domain.ErrRenderFailed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportService_ExportNoFormats(t *testing.T) {
	_, err := NewReportService().Export(context.Background(), finishedState(), t.TempDir(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportService_ExportCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewReportService(&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("x")})

	_, err := s.Export(ctx, finishedState(), dir, []domain.ReportFormat{domain.ReportFormatMarkdown})
	assert.ErrorIs(t, err, context.Canceled)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestReportService_ExportRemovesPlacedFilesOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s := NewReportService(
		&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("# report")},
		&mockRenderer{format: domain.ReportFormatJSON, data: []byte(`{}`)},
	)

	calls := 0
	renameFile = func(from, to string) error {
		calls++
		if calls == 2 {
			return errors.New("disk full")
		}
		return os.Rename(from, to)
	}
	t.Cleanup(func() { renameFile = os.Rename })

	_, err := s.Export(context.Background(), finishedState(), dir,
		[]domain.ReportFormat{domain.ReportFormatJSON, domain.ReportFormatMarkdown})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write markdown report")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "neither finished reports nor temp files remain")
}

func TestReportService_ExportKeepsEarlierReports(t *testing.T) {
	dir := t.TempDir()
	earlier := filepath.Join(dir, "analysis_report_20240102_030405.md")
	require.NoError(t, os.WriteFile(earlier, []byte("earlier run"), 0o644))

	s := NewReportService(
		&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("# report")},
		&mockRenderer{format: domain.ReportFormatJSON, data: []byte(`{}`)},
	)

	paths, err := s.Export(context.Background(), finishedState(), dir,
		[]domain.ReportFormat{domain.ReportFormatJSON, domain.ReportFormatMarkdown})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "analysis_report_20240102_030405_2.json"),
		filepath.Join(dir, "analysis_report_20240102_030405_2.md"),
	}, paths)

	data, err := os.ReadFile(earlier)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(data))
}

func TestReportService_ExportDirectoryAtTargetPath(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "analysis_report_20240102_030405.md")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o755))

	s := NewReportService(
		&mockRenderer{format: domain.ReportFormatMarkdown, data: []byte("# report")},
		&mockRenderer{format: domain.ReportFormatJSON, data: []byte(`{}`)},
	)

	paths, err := s.Export(context.Background(), finishedState(), dir,
		[]domain.ReportFormat{domain.ReportFormatJSON, domain.ReportFormatMarkdown})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "analysis_report_20240102_030405_2.md"), paths[1])

	_, err = os.Stat(filepath.Join(dir, "analysis_report_20240102_030405.json"))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "the unsuffixed json is not written")
}
