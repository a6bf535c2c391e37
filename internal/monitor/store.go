package monitor

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Mode identifies which entry point produced an invocation.
type Mode string

const (
	ModeChat      Mode = "chat"
	ModeQuery     Mode = "query"
	ModeVectorize Mode = "vectorize"
	ModeSlack     Mode = "slack"
	ModeTelegram  Mode = "telegram"
	ModeMCP       Mode = "mcp"
	ModeAgent     Mode = "agent"
)

// AllModes lists every tracked mode, in display order.
var AllModes = []Mode{ModeChat, ModeQuery, ModeVectorize, ModeSlack, ModeTelegram, ModeMCP, ModeAgent}

// Store persists usage metrics in SQLite: per-day invocation counts by mode
// and per-agent task outcomes with durations.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at ~/.bmasterai/metrics.db, creating the
// directory and schema as needed.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".bmasterai")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .bmasterai directory: %w", err)
	}

	return NewStoreWithPath(filepath.Join(dir, "metrics.db"))
}

// NewStoreWithPath opens the database at a custom path. Useful for testing.
func NewStoreWithPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS invocation_counts (
			mode TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER DEFAULT 0,
			PRIMARY KEY (mode, date)
		);
		CREATE TABLE IF NOT EXISTS task_outcomes (
			agent_id TEXT NOT NULL,
			task TEXT NOT NULL,
			success INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Increment bumps today's count for the given mode.
func (s *Store) Increment(mode Mode) error {
	today := time.Now().Format("2006-01-02")

	upsert := `
		INSERT INTO invocation_counts (mode, date, count)
		VALUES (?, ?, 1)
		ON CONFLICT(mode, date) DO UPDATE SET count = count + 1;
	`
	if _, err := s.db.Exec(upsert, string(mode), today); err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}
	return nil
}

// RecordTask stores one task outcome for an agent.
func (s *Store) RecordTask(agentID, task string, success bool, duration time.Duration) error {
	successInt := 0
	if success {
		successInt = 1
	}
	_, err := s.db.Exec(
		"INSERT INTO task_outcomes (agent_id, task, success, duration_ms, recorded_at) VALUES (?, ?, ?, ?, ?)",
		agentID, task, successInt, duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record task outcome: %w", err)
	}
	return nil
}

// GetTotalByMode returns the cumulative invocation count for one mode.
func (s *Store) GetTotalByMode(mode Mode) (int64, error) {
	var total int64
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(count), 0) FROM invocation_counts WHERE mode = ?",
		string(mode),
	)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total for mode %s: %w", mode, err)
	}
	return total, nil
}

// GetAllTotals returns cumulative invocation counts for every mode.
func (s *Store) GetAllTotals() (map[Mode]int64, error) {
	result := make(map[Mode]int64)
	for _, mode := range AllModes {
		result[mode] = 0
	}

	rows, err := s.db.Query(
		"SELECT mode, COALESCE(SUM(count), 0) FROM invocation_counts GROUP BY mode",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var modeStr string
		var total int64
		if err := rows.Scan(&modeStr, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[Mode(modeStr)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// AgentStats summarises recorded task outcomes for one agent.
type AgentStats struct {
	AgentID       string
	TaskCount     int64
	ErrorCount    int64
	AvgDurationMS float64
}

// GetAgentStats aggregates task outcomes grouped by agent.
func (s *Store) GetAgentStats() ([]AgentStats, error) {
	rows, err := s.db.Query(`
		SELECT agent_id,
		       COUNT(*),
		       SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		       AVG(duration_ms)
		FROM task_outcomes
		GROUP BY agent_id
		ORDER BY agent_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent stats: %w", err)
	}
	defer rows.Close()

	var stats []AgentStats
	for rows.Next() {
		var st AgentStats
		if err := rows.Scan(&st.AgentID, &st.TaskCount, &st.ErrorCount, &st.AvgDurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan agent stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent stats: %w", err)
	}

	return stats, nil
}

// ErrorRate returns the fraction of failed tasks for an agent over the given
// window. Returns 0 when no tasks were recorded.
func (s *Store) ErrorRate(agentID string, window time.Duration) (float64, error) {
	since := time.Now().UTC().Add(-window).Format(time.RFC3339)
	var total, failed int64
	row := s.db.QueryRow(`
		SELECT COUNT(*), SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END)
		FROM task_outcomes
		WHERE agent_id = ? AND recorded_at >= ?
	`, agentID, since)

	var failedNull sql.NullInt64
	if err := row.Scan(&total, &failedNull); err != nil {
		return 0, fmt.Errorf("failed to compute error rate: %w", err)
	}
	if failedNull.Valid {
		failed = failedNull.Int64
	}
	if total == 0 {
		return 0, nil
	}
	return float64(failed) / float64(total), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
