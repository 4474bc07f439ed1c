package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Faint(true)
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// paint renders s with style only when styled is set.
func paint(style lipgloss.Style, s string, styled bool) string {
	if !styled {
		return s
	}
	return style.Render(s)
}

// writeSummary prints the console summary of a finished run.
func writeSummary(w io.Writer, state *domain.FinalState, paths []string, styled bool) {
	fmt.Fprintln(w, paint(titleStyle, "Content gap analysis: "+state.ClientURL, styled))
	fmt.Fprintf(w, "%s %s\n", paint(labelStyle, "Run:", styled), state.RunID)
	fmt.Fprintf(w, "%s %d analysed\n", paint(labelStyle, "Competitors:", styled), len(state.Competitors))
	fmt.Fprintf(w, "%s %d entities, %d keywords\n", paint(labelStyle, "Missing:", styled),
		len(state.Comparison.MissingEntities), len(state.Comparison.MissingKeywords))
	fmt.Fprintln(w)

	if len(state.Selections) == 0 {
		fmt.Fprintln(w, "No entities were selected.")
	} else {
		fmt.Fprintln(w, paint(titleStyle, "Selected entities", styled))
		width := 0
		for _, sel := range state.Selections {
			width = max(width, len(sel.EntityName))
		}
		for i, sel := range state.Selections {
			advice := 0
			if rec, ok := state.Recommendation(sel.EntityName); ok {
				advice = len(rec.IntegrationOpportunities)
			}
			score := strconv.FormatFloat(sel.RelevanceScore, 'f', 2, 64)
			fmt.Fprintf(w, "  %2d. %-*s  %s  %d suggestions\n",
				i+1, width, sel.EntityName, paint(scoreStyle, score, styled), advice)
		}
	}

	if len(state.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint(warnStyle, fmt.Sprintf("Skipped %d item(s):", len(state.Failures)), styled))
		for _, f := range state.Failures {
			fmt.Fprintf(w, "  %s %s: %s\n", f.Stage, f.Subject, f.Message)
		}
	}

	if len(paths) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint(titleStyle, "Reports", styled))
		for _, p := range paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
