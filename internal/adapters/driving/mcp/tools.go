package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/logger"
)

// defaultRunLimit is used by list_runs when no limit is given.
const defaultRunLimit = 20

// AnalyzeInput is the input schema for the analyze_content_gaps tool.
type AnalyzeInput struct {
	ClientURL      string   `json:"client_url" jsonschema:"the page to improve"`
	CompetitorURLs []string `json:"competitor_urls" jsonschema:"at least two competitor pages covering the same topic"`
}

// AnalyzeOutput is the output schema for the analyze_content_gaps tool.
type AnalyzeOutput struct {
	RunID               string             `json:"run_id"`
	ClientURL           string             `json:"client_url"`
	Competitors         []CompetitorOutput `json:"competitors"`
	MissingEntityCount  int                `json:"missing_entity_count"`
	MissingKeywordCount int                `json:"missing_keyword_count"`
	Selections          []SelectionOutput  `json:"selected_entities"`
	Skipped             []SkippedOutput    `json:"skipped,omitempty"`
	Report              string             `json:"report"`
}

// CompetitorOutput is one competitor that made it into the comparison.
type CompetitorOutput struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SelectionOutput is one shortlisted entity.
type SelectionOutput struct {
	EntityName      string   `json:"entity_name"`
	EntityType      string   `json:"entity_type"`
	RelevanceScore  float64  `json:"relevance_score"`
	Reasoning       string   `json:"reasoning"`
	Competitors     []string `json:"competitors,omitempty"`
	Recommendations int      `json:"recommendation_count"`
}

// SkippedOutput is one item the run left out.
type SkippedOutput struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 20)"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// RunOutput is the listing of one archived run.
type RunOutput struct {
	ID                  string `json:"id"`
	ClientURL           string `json:"client_url"`
	CompetitorCount     int    `json:"competitor_count"`
	MissingEntityCount  int    `json:"missing_entity_count"`
	MissingKeywordCount int    `json:"missing_keyword_count"`
	SelectedCount       int    `json:"selected_count"`
	CreatedAt           string `json:"created_at"`
}

// GetRunReportInput is the input schema for the get_run_report tool.
type GetRunReportInput struct {
	ID     string `json:"id" jsonschema:"the run id from list_runs"`
	Format string `json:"format,omitempty" jsonschema:"markdown (default) or json"`
}

// GetRunReportOutput is the output schema for the get_run_report tool.
type GetRunReportOutput struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Report string `json:"report"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_content_gaps",
		Description: "Compare a client page against competitor pages and return the entities " +
			"competitors cover that the client page lacks, with integration advice",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List archived content-gap runs, newest first",
	}, s.handleListRuns)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_run_report",
		Description: "Return the report of an archived run",
	}, s.handleGetRunReport)
}

// handleAnalyze handles the analyze_content_gaps tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	req := domain.AnalysisRequest{
		ClientURL:      input.ClientURL,
		CompetitorURLs: input.CompetitorURLs,
	}

	state, err := s.ports.Analysis.Analyze(ctx, req)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	report, err := s.ports.Report.Render(state, domain.ReportFormatMarkdown)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	if s.ports.History != nil {
		if err := s.ports.History.Record(ctx, state); err != nil {
			logger.Warn("archive run %s: %v", state.RunID, err)
		}
	}

	return nil, analyzeOutput(state, string(report)), nil
}

func analyzeOutput(state *domain.FinalState, report string) AnalyzeOutput {
	output := AnalyzeOutput{
		RunID:               state.RunID,
		ClientURL:           state.ClientURL,
		Competitors:         make([]CompetitorOutput, len(state.Competitors)),
		MissingEntityCount:  len(state.Comparison.MissingEntities),
		MissingKeywordCount: len(state.Comparison.MissingKeywords),
		Selections:          make([]SelectionOutput, len(state.Selections)),
		Report:              report,
	}

	for i, c := range state.Competitors {
		output.Competitors[i] = CompetitorOutput{Label: c.Label, URL: c.URL}
	}

	for i, sel := range state.Selections {
		count := 0
		if rec, ok := state.Recommendation(sel.EntityName); ok {
			count = len(rec.IntegrationOpportunities)
		}
		output.Selections[i] = SelectionOutput{
			EntityName:      sel.EntityName,
			EntityType:      sel.EntityType,
			RelevanceScore:  sel.RelevanceScore,
			Reasoning:       sel.Reasoning,
			Competitors:     sel.Competitors,
			Recommendations: count,
		}
	}

	for _, f := range state.Failures {
		output.Skipped = append(output.Skipped, SkippedOutput{
			Stage:   string(f.Stage),
			Subject: f.Subject,
			Message: f.Message,
		})
	}

	return output
}

// handleListRuns handles the list_runs tool invocation.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	if s.ports.History == nil {
		return nil, ListRunsOutput{}, ErrMissingHistoryService
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := s.ports.History.List(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	output := ListRunsOutput{
		Runs:  make([]RunOutput, len(runs)),
		Count: len(runs),
	}
	for i, run := range runs {
		output.Runs[i] = RunOutput{
			ID:                  run.ID,
			ClientURL:           run.ClientURL,
			CompetitorCount:     run.CompetitorCount,
			MissingEntityCount:  run.MissingEntityCount,
			MissingKeywordCount: run.MissingKeywordCount,
			SelectedCount:       run.SelectedCount,
			CreatedAt:           run.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

// handleGetRunReport handles the get_run_report tool invocation.
func (s *Server) handleGetRunReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRunReportInput,
) (*mcp.CallToolResult, GetRunReportOutput, error) {
	if s.ports.History == nil {
		return nil, GetRunReportOutput{}, ErrMissingHistoryService
	}

	format := domain.ReportFormat(input.Format)
	switch format {
	case "", "md":
		format = domain.ReportFormatMarkdown
	case domain.ReportFormatMarkdown, domain.ReportFormatJSON:
	default:
		return nil, GetRunReportOutput{}, fmt.Errorf("%w: report format %q", domain.ErrUnsupportedType, input.Format)
	}

	state, err := s.ports.History.Get(ctx, input.ID)
	if err != nil {
		return nil, GetRunReportOutput{}, err
	}

	report, err := s.ports.Report.Render(state, format)
	if err != nil {
		return nil, GetRunReportOutput{}, err
	}

	return nil, GetRunReportOutput{
		ID:     state.RunID,
		Format: string(format),
		Report: string(report),
	}, nil
}
