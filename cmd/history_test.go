package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"pgregory.net/rapid"

	"github.com/fakeyudi/rerun/internal/history"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetFlags restores flag-backed variables to their defaults between runs.
// cobra only overwrites a variable when its flag is passed again.
func resetFlags() {
	verbose = false
	dbPath = ""
	watchDir = ""
	historyLimit = 10
	statsFile = ""
	statsSection = ""
	statsTop = 5
	statsSections = false
	statsTrends = 0
	sectionsDir = ""
	clearForce = false
	reportFormat = "markdown"
	reportOut = ""
	plainOutput = false
}

// newTestDB creates an isolated database seeded with the given records and
// returns its path.
func newTestDB(t testing.TB, recs ...history.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	for _, rec := range recs {
		if err := store.RecordExecution(context.Background(), rec); err != nil {
			t.Fatalf("RecordExecution: %v", err)
		}
	}
	return path
}

func testRecord(id, filePath, section string, success bool, secs float64, ts time.Time) history.Record {
	return history.Record{
		ID:            id,
		FilePath:      filePath,
		Section:       section,
		Success:       success,
		ExecutionTime: secs,
		Timestamp:     ts,
		OutputPreview: "output for " + id,
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	db := newTestDB(t)
	out, err := executeCommand(rootCmd, "history", "--db", db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No execution history found") {
		t.Errorf("expected empty-history message, got:\n%s", out)
	}
}

func TestHistoryShowsRecords(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	now := time.Now().UTC()
	db := newTestDB(t,
		testRecord("a", "examples/s1/one.py", "s1", true, 0.5, now.Add(-time.Minute)),
		testRecord("b", "examples/s2/two.py", "s2", false, 1.25, now),
	)

	out, err := executeCommand(rootCmd, "history", "--db", db, "-n", "10")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{
		"Recent executions (last 10)",
		"examples/s1/one.py",
		"examples/s2/two.py",
		"(1.250s)",
		"- s2",
		"output for a",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "two.py") > strings.Index(out, "one.py") {
		t.Errorf("expected newest record first, got:\n%s", out)
	}
}

func TestHistoryHonorsLimit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	now := time.Now().UTC()
	var recs []history.Record
	for i := 0; i < 5; i++ {
		recs = append(recs, testRecord(
			fmt.Sprintf("rec-%d", i),
			fmt.Sprintf("examples/s/f%d.py", i),
			"s", true, 0.1,
			now.Add(time.Duration(i)*time.Second)))
	}
	db := newTestDB(t, recs...)

	out, err := executeCommand(rootCmd, "history", "--db", db, "-n", "2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if got := strings.Count(out, "examples/s/f"); got != 2 {
		t.Errorf("expected 2 records shown, got %d:\n%s", got, out)
	}
	// The two newest.
	if !strings.Contains(out, "f4.py") || !strings.Contains(out, "f3.py") {
		t.Errorf("expected the newest records, got:\n%s", out)
	}
}

// The displayed history always reflects exactly the stored success and
// failure counts.
func TestHistoryCountsMatchStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rapid.Check(t, func(rt *rapid.T) {
		resetFlags()
		n := rapid.IntRange(0, 15).Draw(rt, "n")

		now := time.Now().UTC()
		recs := make([]history.Record, n)
		okCount := 0
		for i := range recs {
			success := rapid.Bool().Draw(rt, "success")
			if success {
				okCount++
			}
			recs[i] = testRecord(
				fmt.Sprintf("rec-%d", i),
				fmt.Sprintf("examples/s/f%d.py", i),
				"s", success, 0.1,
				now.Add(time.Duration(i)*time.Second))
		}
		db := newTestDB(t, recs...)

		out, err := executeCommand(rootCmd, "history", "--db", db, "-n", strconv.Itoa(n+1))
		if err != nil {
			rt.Fatalf("history: %v", err)
		}
		if got := strings.Count(out, "✓"); got != okCount {
			rt.Errorf("success lines: got %d, want %d\n%s", got, okCount, out)
		}
		if got := strings.Count(out, "✗"); got != n-okCount {
			rt.Errorf("failure lines: got %d, want %d\n%s", got, n-okCount, out)
		}
	})
}
