package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(rep *Report) ([]byte, error)
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rep *Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

// MarkdownRenderer renders a Report as human-readable Markdown.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(rep *Report) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Rerun Progress Report - %s\n\n",
		rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	// ## Summary
	sb.WriteString("## Summary\n\n")
	if rep.Overall.TotalExecutions == 0 {
		sb.WriteString("_No executions recorded._\n")
	} else {
		fmt.Fprintf(&sb, "- Total executions: %d\n", rep.Overall.TotalExecutions)
		fmt.Fprintf(&sb, "- Successful: %d (%.1f%%)\n",
			rep.Overall.SuccessfulExecutions, rep.Overall.SuccessRate()*100)
		fmt.Fprintf(&sb, "- Failed: %d\n", rep.Overall.FailedExecutions)
		fmt.Fprintf(&sb, "- Average execution time: %.3fs\n", rep.Overall.AverageExecutionTime)
		if rep.Overall.MostExecutedFile != "" {
			fmt.Fprintf(&sb, "- Most executed file: %s\n", rep.Overall.MostExecutedFile)
		}
		if rep.Overall.LastExecution != nil {
			fmt.Fprintf(&sb, "- Last execution: %s\n",
				rep.Overall.LastExecution.Format("2006-01-02 15:04:05"))
		}
	}
	sb.WriteString("\n")

	// ## Sections
	sb.WriteString("## Sections\n\n")
	if len(rep.Sections) == 0 {
		sb.WriteString("_No sections recorded._\n")
	} else {
		sb.WriteString("| Section | Runs | Success Rate | Avg Time |\n")
		sb.WriteString("|---------|------|--------------|----------|\n")
		for _, s := range rep.Sections {
			rate := 0.0
			if s.Count > 0 {
				rate = float64(s.Successes) / float64(s.Count) * 100
			}
			fmt.Fprintf(&sb, "| %s | %d | %.1f%% | %.3fs |\n",
				s.Section, s.Count, rate, s.AvgTime)
		}
	}
	sb.WriteString("\n")

	// ## Top Files
	sb.WriteString("## Top Files\n\n")
	if len(rep.TopFiles) == 0 {
		sb.WriteString("_No executions recorded._\n")
	} else {
		for i, f := range rep.TopFiles {
			fmt.Fprintf(&sb, "%d. `%s` - %d runs, avg %.3fs\n", i+1, f.FilePath, f.Count, f.AvgTime)
		}
	}
	sb.WriteString("\n")

	// ## Daily Activity
	fmt.Fprintf(&sb, "## Daily Activity (last %d days)\n\n", trendDays)
	if len(rep.Trends) == 0 {
		sb.WriteString("_No recent activity._\n")
	} else {
		for _, tr := range rep.Trends {
			fmt.Fprintf(&sb, "- %s: %d executions, %d successful\n", tr.Date, tr.Total, tr.Successful)
		}
	}
	sb.WriteString("\n")

	// ## Recent Executions
	sb.WriteString("## Recent Executions\n\n")
	if len(rep.Recent) == 0 {
		sb.WriteString("_No executions recorded._\n")
	} else {
		sb.WriteString("| Status | Time | File | Duration | Section |\n")
		sb.WriteString("|--------|------|------|----------|--------|\n")
		for _, rec := range rep.Recent {
			status := "ok"
			if !rec.Success {
				status = "failed"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %.3fs | %s |\n",
				status,
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.FilePath,
				rec.ExecutionTime,
				rec.Section)
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}
