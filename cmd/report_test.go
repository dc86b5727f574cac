package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fakeyudi/rerun/internal/report"
)

func TestReportWritesMarkdownFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	db := newTestDB(t, testRecord("a", "x/a.py", "x", true, 1.5, time.Now().UTC()))
	outPath := filepath.Join(t.TempDir(), "report.md")

	out, err := executeCommand(rootCmd, "report", "--db", db, "-o", outPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "Report written: "+outPath) {
		t.Errorf("expected written confirmation, got:\n%s", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"# Rerun Progress Report", "## Summary", "x/a.py"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, data)
		}
	}
}

func TestReportJSONToStdout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	db := newTestDB(t, testRecord("a", "x/a.py", "x", true, 1.5, time.Now().UTC()))

	out, err := executeCommand(rootCmd, "report", "--db", db, "--format", "json", "-o", "-")
	if err != nil {
		t.Fatalf("report --format json: %v", err)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, out)
	}
	if rep.Overall.TotalExecutions != 1 {
		t.Errorf("TotalExecutions = %d, want 1", rep.Overall.TotalExecutions)
	}
	if len(rep.Recent) != 1 || rep.Recent[0].FilePath != "x/a.py" {
		t.Errorf("unexpected recent records: %+v", rep.Recent)
	}
}
