// Package history stores every execution attempt in a local SQLite database
// and derives aggregate statistics from the stored records on demand.
package history

import "time"

// Record is the durable form of one execution attempt. Records are
// append-only: once written they are never updated, only bulk-cleared.
type Record struct {
	ID            string    `json:"id"`
	FilePath      string    `json:"file_path"`
	Section       string    `json:"section"`
	Success       bool      `json:"success"`
	ExecutionTime float64   `json:"execution_time"` // seconds
	Timestamp     time.Time `json:"timestamp"`
	OutputPreview string    `json:"output_preview"` // first 100 chars of output or error
}

// Stats is a read-time aggregation over a set of records. It is never
// stored; every call recomputes it from the table.
type Stats struct {
	TotalExecutions      int        `json:"total_executions"`
	SuccessfulExecutions int        `json:"successful_executions"`
	FailedExecutions     int        `json:"failed_executions"`
	MostExecutedFile     string     `json:"most_executed_file,omitempty"`
	AverageExecutionTime float64    `json:"average_execution_time"` // seconds
	LastExecution        *time.Time `json:"last_execution,omitempty"`
}

// SuccessRate returns the fraction of successful executions, 0 for an
// empty record set.
func (s Stats) SuccessRate() float64 {
	if s.TotalExecutions == 0 {
		return 0
	}
	return float64(s.SuccessfulExecutions) / float64(s.TotalExecutions)
}

// TopFile is one row of the most-executed-files ranking.
type TopFile struct {
	FilePath string  `json:"file_path"`
	Count    int     `json:"count"`
	AvgTime  float64 `json:"avg_time"` // seconds
}

// SectionSummary aggregates the executions recorded for one section.
type SectionSummary struct {
	Section   string  `json:"section"`
	Count     int     `json:"count"`
	Successes int     `json:"successes"`
	AvgTime   float64 `json:"avg_time"` // seconds
}

// DayTrend is one day's execution counts.
type DayTrend struct {
	Date       string `json:"date"` // YYYY-MM-DD
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
}
