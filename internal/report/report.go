// Package report assembles execution-history snapshots and renders them
// to shareable files.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/fakeyudi/rerun/internal/history"
)

// Report is a point-in-time snapshot of execution history.
type Report struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Overall     history.Stats            `json:"overall"`
	Sections    []history.SectionSummary `json:"sections"`
	TopFiles    []history.TopFile        `json:"top_files"`
	Trends      []history.DayTrend       `json:"trends"`
	Recent      []history.Record         `json:"recent"`
}

// trendDays is the activity window included in every report.
const trendDays = 7

// Build queries store and assembles a complete report, including the
// recentLimit newest records.
func Build(ctx context.Context, store *history.Store, recentLimit int) (*Report, error) {
	overall, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	sections, err := store.SectionSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load section summaries: %w", err)
	}
	top, err := store.TopFiles(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("load top files: %w", err)
	}
	trends, err := store.Trends(ctx, trendDays)
	if err != nil {
		return nil, fmt.Errorf("load trends: %w", err)
	}
	recent, err := store.History(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent history: %w", err)
	}

	return &Report{
		GeneratedAt: time.Now().UTC(),
		Overall:     overall,
		Sections:    sections,
		TopFiles:    top,
		Trends:      trends,
		Recent:      recent,
	}, nil
}
