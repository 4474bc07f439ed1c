// Package mcp provides an MCP (Model Context Protocol) server adapter for gapscope.
// It lets AI assistants run content-gap analyses and read archived runs.
package mcp

import "errors"

var (
	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// ErrMissingReportService is returned when the report service is not provided.
	ErrMissingReportService = errors.New("mcp: report service is required")

	// ErrMissingHistoryService is returned by run tools when no archive is wired.
	ErrMissingHistoryService = errors.New("mcp: run archive is not available")
)
