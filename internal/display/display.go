// Package display renders pipeline activity and history views to the
// terminal.
package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/rerun/internal/events"
	"github.com/fakeyudi/rerun/internal/executor"
	"github.com/fakeyudi/rerun/internal/history"
)

// ── Styles ────────────

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	warnText     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Display writes formatted pipeline output to a single destination.
type Display struct {
	out      io.Writer
	showTime bool
}

// New returns a Display writing to out. showTime controls whether
// execution durations appear in result headers.
func New(out io.Writer, showTime bool) *Display {
	return &Display{out: out, showTime: showTime}
}

// Result prints one execution outcome as a headed block: status line,
// separator, then indented output or error detail.
func (d *Display) Result(res executor.Result) {
	parts := make([]string, 0, 4)
	if res.Success {
		parts = append(parts, successStyle.Render("✓ SUCCESS"))
	} else {
		parts = append(parts, failStyle.Render("✗ FAILED"))
	}
	parts = append(parts, fileStyle.Render(filepath.Base(res.FilePath)))
	parts = append(parts, "at "+dimStyle.Render(res.Timestamp.Format("15:04:05")))
	if d.showTime {
		parts = append(parts, "("+dimStyle.Render(formatDuration(res.Duration))+")")
	}
	fmt.Fprintln(d.out, strings.Join(parts, " "))
	fmt.Fprintln(d.out, dimStyle.Render(strings.Repeat("─", 60)))

	if res.Success {
		if res.Output == "" {
			fmt.Fprintf(d.out, "  %s\n", dimStyle.Render("(no output)"))
		} else {
			for _, line := range strings.Split(strings.TrimRight(res.Output, "\n"), "\n") {
				fmt.Fprintf(d.out, "  %s\n", line)
			}
		}
	} else {
		msg := res.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
			fmt.Fprintf(d.out, "  %s\n", errTextStyle.Render(line))
		}
		if res.ExitCode >= 0 {
			fmt.Fprintf(d.out, "  %s %s\n",
				dimStyle.Render("Exit code:"),
				failStyle.Render(strconv.Itoa(res.ExitCode)))
		}
	}
	fmt.Fprintln(d.out)
}

func formatDuration(dur time.Duration) string {
	if dur.Milliseconds() > 0 {
		return fmt.Sprintf("%dms", dur.Milliseconds())
	}
	return fmt.Sprintf("%dμs", dur.Microseconds())
}

// FileChange prints the notice that a save was detected and execution is
// about to begin.
func (d *Display) FileChange(path string) {
	fmt.Fprintf(d.out, "%s %s %s %s %s\n",
		"📝",
		dimStyle.Render(time.Now().Format("15:04:05")),
		sectionStyle.Render("File changed:"),
		fileStyle.Render(filepath.Base(path)),
		dimStyle.Render("- executing..."))
}

// Startup prints the watch-mode banner and usage hints.
func (d *Display) Startup(dir string, extensions []string) {
	banner := []string{
		"╔══════════════════════════════════════════════════════════════╗",
		"║                            Rerun                             ║",
		"║                 File Watcher & Auto Executor                 ║",
		"╚══════════════════════════════════════════════════════════════╝",
	}
	for _, line := range banner {
		fmt.Fprintln(d.out, bannerStyle.Render(line))
	}
	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "📁 Watching directory: %s\n", successStyle.Render(dir))
	fmt.Fprintf(d.out, "📄 Supported files: %s\n", timeStyle.Render("."+strings.Join(extensions, ", .")))
	fmt.Fprintln(d.out)
	for _, line := range []string{
		"💡 Instructions:",
		"   • Save any supported file to execute it automatically",
		"   • Press Ctrl+C to stop watching and exit",
		"   • Check the output below for execution results",
	} {
		fmt.Fprintln(d.out, dimStyle.Render(line))
	}
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, successStyle.Render("Waiting for file changes..."))
	fmt.Fprintln(d.out, dimStyle.Render(strings.Repeat("═", 60)))
	fmt.Fprintln(d.out)
}

// Stats prints an aggregate statistics block under the given heading.
func (d *Display) Stats(heading string, s history.Stats) {
	fmt.Fprintf(d.out, "%s %s:\n", "📊", headingStyle.Render(heading))
	fmt.Fprintf(d.out, "  Total executions: %s\n", fileStyle.Render(strconv.Itoa(s.TotalExecutions)))
	fmt.Fprintf(d.out, "  Successful: %s (%s%%)\n",
		successStyle.Render(strconv.Itoa(s.SuccessfulExecutions)),
		successStyle.Render(fmt.Sprintf("%.1f", s.SuccessRate()*100)))
	fmt.Fprintf(d.out, "  Failed: %s\n", failStyle.Render(strconv.Itoa(s.FailedExecutions)))
	if s.AverageExecutionTime > 0 {
		fmt.Fprintf(d.out, "  Average execution time: %s\n",
			timeStyle.Render(fmt.Sprintf("%.3fs", s.AverageExecutionTime)))
	}
	if s.MostExecutedFile != "" {
		fmt.Fprintf(d.out, "  Most executed file: %s\n", fileStyle.Render(s.MostExecutedFile))
	}
	if s.LastExecution != nil {
		fmt.Fprintf(d.out, "  Last execution: %s\n",
			dimStyle.Render(s.LastExecution.Format("2006-01-02 15:04:05")))
	}
}

// History lists execution records, newest first.
func (d *Display) History(recs []history.Record, limit int) {
	fmt.Fprintf(d.out, "%s Recent executions (last %s):\n", "📋", fileStyle.Render(strconv.Itoa(limit)))
	if len(recs) == 0 {
		fmt.Fprintf(d.out, "  %s\n", dimStyle.Render("No execution history found"))
		return
	}
	for _, rec := range recs {
		icon := successStyle.Render("✓")
		if !rec.Success {
			icon = failStyle.Render("✗")
		}
		fmt.Fprintf(d.out, "  %s %s %s (%s) - %s\n",
			icon,
			dimStyle.Render(rec.Timestamp.Format("2006-01-02 15:04:05")),
			fileStyle.Render(rec.FilePath),
			timeStyle.Render(fmt.Sprintf("%.3fs", rec.ExecutionTime)),
			sectionStyle.Render(rec.Section))
		if rec.OutputPreview != "" {
			fmt.Fprintf(d.out, "    %s\n", dimStyle.Render(rec.OutputPreview))
		}
	}
}

// SectionInfo is one row of the sections listing.
type SectionInfo struct {
	Name  string
	Files int
}

// Sections lists the exercise sections found under dir.
func (d *Display) Sections(dir string, sections []SectionInfo) {
	fmt.Fprintf(d.out, "%s Available sections in %s:\n", "📚", fileStyle.Render(dir))
	if len(sections) == 0 {
		fmt.Fprintf(d.out, "  %s\n", dimStyle.Render("No sections found"))
		return
	}
	for _, s := range sections {
		fmt.Fprintf(d.out, "  %s %s (%s)\n",
			sectionStyle.Render("•"),
			boldStyle.Render(s.Name),
			dimStyle.Render(fmt.Sprintf("%d files", s.Files)))
	}
}

// FileSummary prints the supported-file share for a directory tree.
func (d *Display) FileSummary(stats events.FileStats) {
	fmt.Fprintf(d.out, "  %s\n", dimStyle.Render(fmt.Sprintf(
		"%d files total, %d supported (%.1f%%)",
		stats.Total, stats.Supported, stats.SupportPercentage())))
}

// TopFiles prints the most-executed ranking.
func (d *Display) TopFiles(files []history.TopFile) {
	fmt.Fprintf(d.out, "%s %s:\n", "🏆", headingStyle.Render("Most Executed Files"))
	if len(files) == 0 {
		fmt.Fprintf(d.out, "  %s\n", dimStyle.Render("No execution history found"))
		return
	}
	for i, f := range files {
		fmt.Fprintf(d.out, "  %2d. %s %s\n",
			i+1,
			fileStyle.Render(f.FilePath),
			dimStyle.Render(fmt.Sprintf("(%d runs, avg %.3fs)", f.Count, f.AvgTime)))
	}
}

// SectionBreakdown prints per-section execution summaries.
func (d *Display) SectionBreakdown(sums []history.SectionSummary) {
	fmt.Fprintf(d.out, "%s %s:\n", "📂", headingStyle.Render("Executions by Section"))
	if len(sums) == 0 {
		fmt.Fprintf(d.out, "  %s\n", dimStyle.Render("No execution history found"))
		return
	}
	for _, s := range sums {
		rate := 0.0
		if s.Count > 0 {
			rate = float64(s.Successes) / float64(s.Count) * 100
		}
		fmt.Fprintf(d.out, "  %s %s %s\n",
			sectionStyle.Render("•"),
			boldStyle.Render(s.Section),
			dimStyle.Render(fmt.Sprintf("(%d runs, %.1f%% success, avg %.3fs)", s.Count, rate, s.AvgTime)))
	}
}

// Trends prints per-day execution counts for the recent period.
func (d *Display) Trends(days int, trends []history.DayTrend) {
	fmt.Fprintf(d.out, "%s %s:\n", "📈", headingStyle.Render(fmt.Sprintf("Last %d Days", days)))
	if len(trends) == 0 {
		fmt.Fprintf(d.out, "  %s\n", dimStyle.Render("No executions in this period"))
		return
	}
	for _, tr := range trends {
		fmt.Fprintf(d.out, "  %s %d executions, %s successful\n",
			dimStyle.Render(tr.Date),
			tr.Total,
			successStyle.Render(strconv.Itoa(tr.Successful)))
	}
}

// OK prints a green confirmation line.
func (d *Display) OK(msg string) {
	fmt.Fprintf(d.out, "%s %s\n", successStyle.Render("✓"), msg)
}

// Fail prints a red failure line.
func (d *Display) Fail(msg string) {
	fmt.Fprintf(d.out, "%s %s\n", failStyle.Render("✗"), msg)
}

// Warning prints a highlighted warning line.
func (d *Display) Warning(msg string) {
	fmt.Fprintf(d.out, "%s %s\n", warnStyle.Render("⚠️  Warning:"), warnText.Render(msg))
}

// Info prints an informational line.
func (d *Display) Info(msg string) {
	fmt.Fprintf(d.out, "%s %s\n", infoStyle.Render("ℹ"), msg)
}

// ClearScreen wipes the terminal and homes the cursor.
func (d *Display) ClearScreen() {
	fmt.Fprint(d.out, "\x1b[2J\x1b[H")
}
