package commands

// render.go - report, comparison, and history rendering

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/leapstack-labs/framebench/internal/bench"
	"github.com/leapstack-labs/framebench/internal/state"
)

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.4f", s)
}

// renderReport writes one run's stage timings, optionally followed by a
// bar chart of the stage durations.
func renderReport(w io.Writer, report *bench.Report, format string, withChart bool) error {
	if format == "json" {
		return renderJSON(w, report)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "Seconds"})
	for _, s := range report.Stages {
		t.AppendRow(table.Row{s.Name, formatSeconds(s.Seconds)})
	}
	t.AppendFooter(table.Row{"total", formatSeconds(report.Total())})
	t.Render()

	if withChart && len(report.Stages) > 0 {
		_, _ = fmt.Fprintln(w)
		renderChart(w, report)
	}
	return nil
}

// renderChart draws a horizontal bar per stage, scaled to the widest stage
// duration and the terminal width. Reporting only; no correctness contract.
func renderChart(w io.Writer, report *bench.Report) {
	labelWidth := 0
	maxSeconds := 0.0
	for _, s := range report.Stages {
		if len(s.Name) > labelWidth {
			labelWidth = len(s.Name)
		}
		if s.Seconds > maxSeconds {
			maxSeconds = s.Seconds
		}
	}
	if maxSeconds <= 0 {
		maxSeconds = 1
	}

	// Leave room for the label, the value column, and padding.
	barSpace := chartWidth(w) - labelWidth - 14
	if barSpace < 10 {
		barSpace = 10
	}
	colored := termenv.ColorProfile() != termenv.Ascii

	for _, s := range report.Stages {
		n := int(math.Round(s.Seconds / maxSeconds * float64(barSpace)))
		if n < 1 && s.Seconds > 0 {
			n = 1
		}
		bar := strings.Repeat("█", n)
		if colored {
			bar = barStyle.Render(bar)
		}
		_, _ = fmt.Fprintf(w, "%-*s  %s %ss\n", labelWidth, s.Name, bar, formatSeconds(s.Seconds))
	}
}

// chartWidth returns the terminal width of the chart's own writer, so
// redirected output never scales to the interactive terminal.
func chartWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 40 {
			return width
		}
	}
	return 80
}

// renderComparison writes a side-by-side stage table for several engines.
// The first report is the baseline; every other engine gets a speedup
// column (baseline seconds divided by its own).
func renderComparison(w io.Writer, reports []*bench.Report, format string) error {
	if format == "json" {
		return renderJSON(w, reports)
	}
	if len(reports) == 0 {
		_, _ = fmt.Fprintln(w, "(no results)")
		return nil
	}

	baseline := reports[0]
	header := table.Row{"Stage", baseline.Engine + " (s)"}
	for _, r := range reports[1:] {
		header = append(header, r.Engine+" (s)", r.Engine+" speedup")
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)

	for _, s := range baseline.Stages {
		row := table.Row{s.Name, formatSeconds(s.Seconds)}
		for _, r := range reports[1:] {
			row = append(row, comparisonCells(s.Seconds, r, s.Name)...)
		}
		t.AppendRow(row)
	}

	footer := table.Row{"total", formatSeconds(baseline.Total())}
	for _, r := range reports[1:] {
		footer = append(footer, formatSeconds(r.Total()), formatSpeedup(baseline.Total(), r.Total()))
	}
	t.AppendFooter(footer)
	t.Render()
	return nil
}

func comparisonCells(baselineSeconds float64, r *bench.Report, stage string) table.Row {
	seconds, ok := r.Seconds(stage)
	if !ok {
		return table.Row{"-", "-"}
	}
	return table.Row{formatSeconds(seconds), formatSpeedup(baselineSeconds, seconds)}
}

func formatSpeedup(baseline, other float64) string {
	if other <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fx", baseline/other)
}

// renderRuns writes the run history listing. totals maps run ID to the sum
// of its recorded stage timings.
func renderRuns(w io.Writer, runs []*state.Run, totals map[string]float64, format string) error {
	if format == "json" {
		type jsonRun struct {
			*state.Run
			TotalSeconds float64 `json:"total_seconds"`
		}
		out := make([]jsonRun, len(runs))
		for i, run := range runs {
			out[i] = jsonRun{Run: run, TotalSeconds: totals[run.ID]}
		}
		return renderJSON(w, out)
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "(no recorded runs)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Engine", "Size", "Bins", "Status", "Total (s)", "Started"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Engine,
			fmt.Sprintf("%dx%d", run.Rows, run.Cols),
			run.Bins,
			string(run.Status),
			formatSeconds(totals[run.ID]),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
