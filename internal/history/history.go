package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// History records verified interaction deliveries in SQLite
type History struct {
	db *sql.DB
}

// NewHistory opens (and if needed creates) the history database
func NewHistory(dbPath string) (*History, error) {
	// Open database connection
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite (single writer)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &History{db: db}

	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return h, nil
}

// Close closes the database connection
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) initSchema() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conn_id TEXT NOT NULL,
			remote_addr TEXT NOT NULL,
			interaction_type INTEGER NOT NULL,
			command TEXT,
			outcome TEXT NOT NULL,
			received_at TEXT NOT NULL,
			duration_ms INTEGER
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	_, err = h.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_interactions_received
		ON interactions(received_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// RecordInteraction stores a delivery. A zero ReceivedAt is stamped with the
// current time.
func (h *History) RecordInteraction(ctx context.Context, record *InteractionRecord) (int64, error) {
	receivedAt := record.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	result, err := h.db.ExecContext(ctx, `
		INSERT INTO interactions
		(conn_id, remote_addr, interaction_type, command, outcome, received_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.ConnID,
		record.RemoteAddr,
		record.InteractionType,
		record.Command,
		record.Outcome,
		receivedAt.UTC().Format(time.RFC3339Nano),
		record.DurationMillis,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert interaction record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetLatestInteraction returns the most recent delivery, or nil if none
func (h *History) GetLatestInteraction(ctx context.Context) (*InteractionRecord, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT id, conn_id, remote_addr, interaction_type, command, outcome,
		       received_at, duration_ms
		FROM interactions
		ORDER BY id DESC
		LIMIT 1
	`)

	record, err := scanInteractionRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest interaction: %w", err)
	}

	return record, nil
}

// GetRecentInteractions returns up to limit deliveries, most recent first
func (h *History) GetRecentInteractions(ctx context.Context, limit int) ([]InteractionRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, conn_id, remote_addr, interaction_type, command, outcome,
		       received_at, duration_ms
		FROM interactions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction history: %w", err)
	}
	defer rows.Close()

	records := []InteractionRecord{}
	for rows.Next() {
		record, err := scanInteractionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// CountByOutcome returns the number of deliveries per outcome
func (h *History) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*)
		FROM interactions
		GROUP BY outcome
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// scanner is an interface that both *sql.Row and *sql.Rows implement
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInteractionRecord(s scanner) (*InteractionRecord, error) {
	var record InteractionRecord
	var receivedAtStr string

	err := s.Scan(
		&record.ID,
		&record.ConnID,
		&record.RemoteAddr,
		&record.InteractionType,
		&record.Command,
		&record.Outcome,
		&receivedAtStr,
		&record.DurationMillis,
	)
	if err != nil {
		return nil, err
	}

	receivedAt, err := time.Parse(time.RFC3339Nano, receivedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse received_at timestamp: %w", err)
	}
	record.ReceivedAt = receivedAt

	return &record, nil
}
