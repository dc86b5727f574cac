package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed append-only log of execution records. It is safe
// for concurrent use; each operation is a single statement and relies on
// SQLite's own transactional guarantees.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path, creating the file and schema if
// needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	// WAL lets the watch pipeline append while the CLI reads.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the execution_history table and its indexes. Uses
// IF NOT EXISTS so it is safe to run on every startup.
func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS execution_history (
		id TEXT PRIMARY KEY,
		file_path TEXT NOT NULL,
		section TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		execution_time REAL NOT NULL,
		timestamp TEXT NOT NULL,
		output_preview TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create execution_history table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_execution_history_timestamp ON execution_history(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_execution_history_file_path ON execution_history(file_path);",
		"CREATE INDEX IF NOT EXISTS idx_execution_history_section ON execution_history(section);",
		"CREATE INDEX IF NOT EXISTS idx_execution_history_success ON execution_history(success);",
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

const recordColumns = "id, file_path, section, success, execution_time, timestamp, output_preview"

// RecordExecution appends one record. It fails only on storage I/O errors.
func (s *Store) RecordExecution(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO execution_history ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID,
		rec.FilePath,
		rec.Section,
		rec.Success,
		rec.ExecutionTime,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.OutputPreview,
	)
	if err != nil {
		return fmt.Errorf("insert execution record: %w", err)
	}
	return nil
}

// History returns records newest first. A limit <= 0 returns all records.
func (s *Store) History(ctx context.Context, limit int) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM execution_history ORDER BY timestamp DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

// FileHistory returns all records for one file, newest first.
func (s *Store) FileHistory(ctx context.Context, filePath string) ([]Record, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM execution_history WHERE file_path = ? ORDER BY timestamp DESC",
		filePath)
}

// SectionHistory returns all records for one section, newest first.
func (s *Store) SectionHistory(ctx context.Context, section string) ([]Record, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM execution_history WHERE section = ? ORDER BY timestamp DESC",
		section)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		if err := rows.Scan(&rec.ID, &rec.FilePath, &rec.Section, &rec.Success,
			&rec.ExecutionTime, &ts, &rec.OutputPreview); err != nil {
			return nil, fmt.Errorf("scan execution record: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse record timestamp %q: %w", ts, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates all recorded executions. An empty store yields a zeroed
// Stats value.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	return s.statsWhere(ctx, "", nil)
}

// FileStats aggregates the executions of one file.
func (s *Store) FileStats(ctx context.Context, filePath string) (Stats, error) {
	stats, err := s.statsWhere(ctx, "WHERE file_path = ?", []any{filePath})
	if err != nil || stats.TotalExecutions == 0 {
		return stats, err
	}
	stats.MostExecutedFile = filePath
	return stats, nil
}

// SectionStats aggregates the executions of one section.
func (s *Store) SectionStats(ctx context.Context, section string) (Stats, error) {
	return s.statsWhere(ctx, "WHERE section = ?", []any{section})
}

func (s *Store) statsWhere(ctx context.Context, where string, args []any) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(AVG(execution_time), 0) FROM execution_history "+where,
		args...,
	).Scan(&stats.TotalExecutions, &stats.SuccessfulExecutions, &stats.AverageExecutionTime)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate execution stats: %w", err)
	}
	if stats.TotalExecutions == 0 {
		return Stats{}, nil
	}
	stats.FailedExecutions = stats.TotalExecutions - stats.SuccessfulExecutions

	// Ties on the execution count are broken by whatever order SQLite
	// returns groups in.
	err = s.db.QueryRowContext(ctx,
		"SELECT file_path FROM execution_history "+where+" GROUP BY file_path ORDER BY COUNT(*) DESC LIMIT 1",
		args...,
	).Scan(&stats.MostExecutedFile)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, fmt.Errorf("most executed file: %w", err)
	}

	var last string
	err = s.db.QueryRowContext(ctx,
		"SELECT MAX(timestamp) FROM execution_history "+where,
		args...,
	).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, fmt.Errorf("last execution timestamp: %w", err)
	}
	if last != "" {
		ts, err := time.Parse(time.RFC3339Nano, last)
		if err != nil {
			return Stats{}, fmt.Errorf("parse last execution timestamp %q: %w", last, err)
		}
		stats.LastExecution = &ts
	}
	return stats, nil
}

// TopFiles returns the n most executed files with per-file average duration.
func (s *Store) TopFiles(ctx context.Context, n int) ([]TopFile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT file_path, COUNT(*) AS execution_count, COALESCE(AVG(execution_time), 0) FROM execution_history GROUP BY file_path ORDER BY execution_count DESC LIMIT ?",
		n)
	if err != nil {
		return nil, fmt.Errorf("query top files: %w", err)
	}
	defer rows.Close()

	var top []TopFile
	for rows.Next() {
		var tf TopFile
		if err := rows.Scan(&tf.FilePath, &tf.Count, &tf.AvgTime); err != nil {
			return nil, fmt.Errorf("scan top file: %w", err)
		}
		top = append(top, tf)
	}
	return top, rows.Err()
}

// SectionSummaries returns per-section execution aggregates, most executed
// section first.
func (s *Store) SectionSummaries(ctx context.Context) ([]SectionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT section, COUNT(*) AS total, COALESCE(SUM(success), 0), COALESCE(AVG(execution_time), 0) FROM execution_history GROUP BY section ORDER BY total DESC")
	if err != nil {
		return nil, fmt.Errorf("query section summaries: %w", err)
	}
	defer rows.Close()

	var summaries []SectionSummary
	for rows.Next() {
		var ss SectionSummary
		if err := rows.Scan(&ss.Section, &ss.Count, &ss.Successes, &ss.AvgTime); err != nil {
			return nil, fmt.Errorf("scan section summary: %w", err)
		}
		summaries = append(summaries, ss)
	}
	return summaries, rows.Err()
}

// Trends returns per-day execution counts for the last `days` days, newest
// day first.
func (s *Store) Trends(ctx context.Context, days int) ([]DayTrend, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DATE(timestamp) AS day, COUNT(*), COALESCE(SUM(success), 0) FROM execution_history WHERE timestamp >= datetime('now', ?) GROUP BY day ORDER BY day DESC",
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("query execution trends: %w", err)
	}
	defer rows.Close()

	var trends []DayTrend
	for rows.Next() {
		var dt DayTrend
		if err := rows.Scan(&dt.Date, &dt.Total, &dt.Successful); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		trends = append(trends, dt)
	}
	return trends, rows.Err()
}

// Clear deletes all records and reports how many were removed. Irreversible.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM execution_history")
	if err != nil {
		return 0, fmt.Errorf("clear execution history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared records: %w", err)
	}
	return n, nil
}

// Healthy reports whether the backing database still answers queries.
func (s *Store) Healthy(ctx context.Context) bool {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one) == nil
}
