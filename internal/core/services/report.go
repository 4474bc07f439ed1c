package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
	"github.com/custodia-labs/gapscope/internal/logger"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// reportTimeLayout stamps report file names.
const reportTimeLayout = "20060102_150405"

// maxReportSuffix bounds the search for a free file name when earlier runs
// finished in the same second.
const maxReportSuffix = 100

// renameFile moves a finished temp file into place. Tests replace it.
var renameFile = os.Rename

// ReportFileName returns the file name of a report finished at t.
func ReportFileName(t time.Time, format domain.ReportFormat) string {
	return reportFileName(t, 1, format)
}

// reportFileName returns the name for the nth set of reports stamped t.
// The first set carries no suffix, later ones end in _2, _3 and so on.
func reportFileName(t time.Time, n int, format domain.ReportFormat) string {
	stem := "analysis_report_" + t.Format(reportTimeLayout)
	if n > 1 {
		stem += "_" + strconv.Itoa(n)
	}
	return stem + "." + format.Extension()
}

// freeReportPaths picks the first suffix under which no format's file exists,
// so every report of one run shares a name and no earlier report is replaced.
func freeReportPaths(dir string, t time.Time, formats []domain.ReportFormat) ([]string, error) {
	for n := 1; n <= maxReportSuffix; n++ {
		paths := make([]string, len(formats))
		taken := false
		for i, format := range formats {
			paths[i] = filepath.Join(dir, reportFileName(t, n, format))
			_, err := os.Lstat(paths[i])
			if err == nil {
				taken = true
				break
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("check report path: %w", err)
			}
		}
		if !taken {
			return paths, nil
		}
	}
	return nil, fmt.Errorf("%w: no free report name in %s", domain.ErrInvalidInput, dir)
}

// ReportService renders reports and writes them to disk.
type ReportService struct {
	renderers map[domain.ReportFormat]driven.ReportRenderer
}

// NewReportService creates a report service. A later renderer replaces an
// earlier one for the same format.
func NewReportService(renderers ...driven.ReportRenderer) *ReportService {
	s := &ReportService{renderers: make(map[domain.ReportFormat]driven.ReportRenderer, len(renderers))}
	for _, r := range renderers {
		s.renderers[r.Format()] = r
	}
	return s
}

// Render returns one report in memory.
func (s *ReportService) Render(state *domain.FinalState, format domain.ReportFormat) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: no run state", domain.ErrInvalidInput)
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: report format %q", domain.ErrUnsupportedType, format)
	}
	data, err := renderer.Render(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRenderFailed, format, err)
	}
	return data, nil
}

// Export renders every format first and writes files only when all renders
// succeed. Each file is written under a temporary name and renamed into place.
// If any write fails, the files already placed are removed again. Existing
// reports are never replaced, and a clash gets a numeric suffix instead.
func (s *ReportService) Export(
	ctx context.Context, state *domain.FinalState, dir string, formats []domain.ReportFormat,
) ([]string, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no report formats", domain.ErrInvalidInput)
	}

	rendered := make([][]byte, len(formats))
	for i, format := range formats {
		data, err := s.Render(state, format)
		if err != nil {
			return nil, err
		}
		rendered[i] = data
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	finished := state.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	paths, err := freeReportPaths(dir, finished, formats)
	if err != nil {
		return nil, err
	}

	temps := make([]string, 0, len(formats))
	placed := 0
	cleanup := func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
		for _, path := range paths[:placed] {
			_ = os.Remove(path)
		}
	}
	for _, data := range rendered {
		tmp, err := writeTemp(dir, data)
		if err != nil {
			cleanup()
			return nil, err
		}
		temps = append(temps, tmp)
	}

	for i, format := range formats {
		if err := renameFile(temps[i], paths[i]); err != nil {
			cleanup()
			return nil, fmt.Errorf("write %s report: %w", format, err)
		}
		placed++
	}
	for _, path := range paths {
		logger.Debug("Wrote %s", path)
	}
	return paths, nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".analysis_report_*.tmp")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	_, werr := f.Write(data)
	merr := f.Chmod(0o644)
	cerr := f.Close()
	if err := errors.Join(werr, merr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write report file: %w", err)
	}
	return f.Name(), nil
}
