// Package report holds the renderers that serialise a completed run.
//
// Each subpackage implements driven.ReportRenderer for one format:
//
//   - markdown: the human-readable report and the source of the HTML report
//   - spreadsheet: a seven-sheet xlsx workbook
//   - htmlreport: the markdown report as a standalone HTML page
//   - jsonreport: the FinalState itself
//
// Renderers only read the FinalState and keep everything in memory.
package report
