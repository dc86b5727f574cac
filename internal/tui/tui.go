// Package tui provides a Bubble Tea TUI for browsing execution history.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fakeyudi/rerun/internal/history"
	"github.com/fakeyudi/rerun/internal/report"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Active tab: bright, underlined
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	// Inactive tab: muted
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	// Separator between tabs
	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	// Section heading inside a tab
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	failTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	okBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	// Selected row in the History list
	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabOverview tabID = iota
	tabHistory
	tabFiles
	tabSections
	tabActivity
	tabCount
)

var tabNames = [tabCount]string{
	"Overview", "History", "Files", "Sections", "Activity",
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	rep       *report.Report
	dbname    string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	// History tab: cursor position and expanded set
	histCursor   int
	expandedRuns map[int]bool
}

// New creates a new TUI model for the given report and database path.
func New(rep *report.Report, dbPath string) Model {
	return Model{
		rep:          rep,
		dbname:       filepath.Base(dbPath),
		sortAsc:      false,
		expandedRuns: make(map[int]bool),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabHistory {
				m.sortAsc = !m.sortAsc
				m.histCursor = 0
				m.expandedRuns = make(map[int]bool)
				m.rebuildHistoryViewport()
				m.viewports[tabHistory].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabHistory && m.histCursor > 0 {
				m.histCursor--
				m.rebuildHistoryViewport()
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabHistory && m.histCursor < len(m.rep.Recent)-1 {
				m.histCursor++
				m.rebuildHistoryViewport()
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabHistory && len(m.rep.Recent) > 0 {
				rec := m.sortedRecords()[m.histCursor]
				if rec.OutputPreview != "" { // only expandable when output exists
					if m.expandedRuns[m.histCursor] {
						delete(m.expandedRuns, m.histCursor)
					} else {
						m.expandedRuns[m.histCursor] = true
					}
					m.rebuildHistoryViewport()
				}
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	// ── Row 1: title bar ──────────────────────────────────────────────────────
	title := titleStyle.Width(m.width).Render("  rerun  " + m.dbname)

	// ── Row 2: tab bar ────────────────────────────────────────────────────────
	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	// ── Row 3…N-1: scrollable content ────────────────────────────────────────
	content := m.viewports[m.activeTab].View()

	// ── Row N: status / hint bar ──────────────────────────────────────────────
	hint := "  ←/→ tab  ↑/↓ scroll  1-5 jump  q quit"
	if m.activeTab == tabHistory {
		dir := "newest first"
		if m.sortAsc {
			dir = "oldest first"
		}
		hint += "  ↑/↓ select  enter expand/collapse  s sort (" + dir + ")"
	}
	// show scroll % on the right
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuildHistoryViewport() {
	m.viewports[tabHistory].SetContent(m.renderTab(tabHistory))
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabOverview:
		return m.renderOverview()
	case tabHistory:
		return m.renderHistory()
	case tabFiles:
		return m.renderFiles()
	case tabSections:
		return m.renderSections()
	case tabActivity:
		return m.renderActivity()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func (m *Model) renderOverview() string {
	o := m.rep.Overall
	var sb strings.Builder
	sb.WriteString(heading("Execution Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Database:", m.dbname)
	row("Generated:", m.rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	sb.WriteString("\n")
	sb.WriteString(heading("Totals"))
	row("Executions:", fmt.Sprintf("%d", o.TotalExecutions))
	row("Successful:", okStyle.Render(fmt.Sprintf("%d", o.SuccessfulExecutions)))
	row("Failed:", failStyle.Render(fmt.Sprintf("%d", o.FailedExecutions)))
	if o.TotalExecutions > 0 {
		row("Success Rate:", fmt.Sprintf("%.1f%%", o.SuccessRate()*100))
		row("Avg Time:", fmt.Sprintf("%.3fs", o.AverageExecutionTime))
	}
	if o.MostExecutedFile != "" {
		row("Most Run:", o.MostExecutedFile)
	}
	if o.LastExecution != nil {
		row("Last Run:", o.LastExecution.Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}

func (m *Model) renderHistory() string {
	recs := m.sortedRecords()
	var sb strings.Builder

	dir := "newest first"
	if m.sortAsc {
		dir = "oldest first"
	}
	sb.WriteString(heading(fmt.Sprintf("Recent Executions (%d, %s)", len(recs), dir)))
	if len(recs) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, rec := range recs {
		ts := timeStyle.Render(rec.Timestamp.Format("15:04:05"))

		var icon string
		if rec.Success {
			icon = okStyle.Render("✓ ")
		} else {
			icon = failStyle.Render("✗ ")
		}

		expanded := m.expandedRuns[i]
		toggle := dimStyle.Render("  ▶ ")
		if expanded {
			toggle = dimStyle.Render("  ▼ ")
		}
		if rec.OutputPreview == "" {
			toggle = "    " // no arrow, not expandable
		}

		detail := dimStyle.Render(fmt.Sprintf("(%.3fs, %s)", rec.ExecutionTime, rec.Section))
		row := fmt.Sprintf("%s%s%s  %s  %s", toggle, icon, ts, rec.FilePath, detail)
		if i == m.histCursor {
			// Pad to width so the highlight fills the line
			row = selectedRowStyle.Width(m.width - 2).Render(row)
		}
		sb.WriteString(row + "\n")

		// Expanded output block
		if expanded && rec.OutputPreview != "" {
			sb.WriteString(renderPreview(rec, m.width))
			sb.WriteString("\n")
		} else {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// renderPreview renders the captured output of one execution.
func renderPreview(rec history.Record, width int) string {
	var sb strings.Builder
	n := width - 4
	if n < 1 {
		n = 1
	}
	border := dimStyle.Render("  " + strings.Repeat("─", n))
	sb.WriteString(border + "\n")
	style := dimStyle
	if !rec.Success {
		style = failTextStyle
	}
	for _, line := range strings.Split(rec.OutputPreview, "\n") {
		sb.WriteString(style.Render("      "+line) + "\n")
	}
	sb.WriteString(border + "\n")
	return sb.String()
}

func (m *Model) renderFiles() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Most Executed Files (%d)", len(m.rep.TopFiles))))
	if len(m.rep.TopFiles) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, tf := range m.rep.TopFiles {
		num := dimStyle.Render(fmt.Sprintf("  %3d.", i+1))
		detail := dimStyle.Render(fmt.Sprintf("%d runs, avg %.3fs", tf.Count, tf.AvgTime))
		sb.WriteString(num + "  " + tf.FilePath + "  " + detail + "\n\n")
	}
	return sb.String()
}

func (m *Model) renderSections() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Sections (%d)", len(m.rep.Sections))))
	if len(m.rep.Sections) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, sec := range m.rep.Sections {
		rate := 0.0
		if sec.Count > 0 {
			rate = float64(sec.Successes) / float64(sec.Count) * 100
		}
		detail := dimStyle.Render(fmt.Sprintf("%d runs, %.1f%% success, avg %.3fs", sec.Count, rate, sec.AvgTime))
		sb.WriteString(bullet(labelStyle.Render(sec.Section) + "  " + detail))
		sb.WriteString("\n")
	}
	return sb.String()
}

const activityBarWidth = 30

func (m *Model) renderActivity() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Daily Activity (last %d days)", len(m.rep.Trends))))
	if len(m.rep.Trends) == 0 {
		sb.WriteString(dimStyle.Render("  (no executions recorded)") + "\n")
		return sb.String()
	}

	maxTotal := 0
	for _, d := range m.rep.Trends {
		if d.Total > maxTotal {
			maxTotal = d.Total
		}
	}
	for _, d := range m.rep.Trends {
		cells := 0
		if maxTotal > 0 {
			cells = d.Total * activityBarWidth / maxTotal
		}
		if d.Total > 0 && cells == 0 {
			cells = 1
		}
		ok := 0
		if d.Total > 0 {
			ok = cells * d.Successful / d.Total
		}
		bar := okBarStyle.Render(strings.Repeat("█", ok)) +
			failBarStyle.Render(strings.Repeat("█", cells-ok)) +
			strings.Repeat(" ", activityBarWidth-cells)
		counts := dimStyle.Render(fmt.Sprintf("%d runs, %d ok", d.Total, d.Successful))
		sb.WriteString("  " + timeStyle.Render(d.Date) + "  " + bar + "  " + counts + "\n\n")
	}
	return sb.String()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// sortedRecords returns the recent records in the current sort order. The
// store hands them over newest first; the toggle flips that.
func (m *Model) sortedRecords() []history.Record {
	recs := make([]history.Record, len(m.rep.Recent))
	copy(recs, m.rep.Recent)
	if m.sortAsc {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Timestamp.Before(recs[j].Timestamp) })
	} else {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Timestamp.After(recs[j].Timestamp) })
	}
	return recs
}

// Run starts the TUI over the given report.
func Run(rep *report.Report, dbPath string) error {
	p := tea.NewProgram(New(rep, dbPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
