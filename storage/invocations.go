package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an invocation does not exist
var ErrNotFound = errors.New("invocation not found")

// Invocation records one host call of send_ctrl_key
type Invocation struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Key          string    `json:"key"`
	Source       string    `json:"source"`
	Result       int       `json:"result"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	LatencyMs    int64     `json:"latencyMs"`
}

// SaveInvocation saves an invocation, assigning ID and Timestamp when unset
func (db *DB) SaveInvocation(inv *Invocation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Timestamp.IsZero() {
		inv.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO invocations (id, timestamp_ms, key, source, result, error_message, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.Exec(query,
		inv.ID, inv.Timestamp.UnixMilli(), inv.Key, inv.Source, inv.Result, inv.ErrorMessage, inv.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("failed to save invocation: %w", err)
	}

	return nil
}

// GetInvocations retrieves invocations with pagination, newest first
func (db *DB) GetInvocations(limit, offset int) ([]Invocation, error) {
	query := `
		SELECT id, timestamp_ms, key, source, result, error_message, latency_ms
		FROM invocations
		ORDER BY timestamp_ms DESC, rowid DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var invocations []Invocation
	for rows.Next() {
		var inv Invocation
		var timestampMs int64
		var errorMessage sql.NullString

		err := rows.Scan(
			&inv.ID, &timestampMs, &inv.Key, &inv.Source, &inv.Result, &errorMessage, &inv.LatencyMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}

		inv.Timestamp = time.UnixMilli(timestampMs).UTC()
		if errorMessage.Valid {
			inv.ErrorMessage = errorMessage.String
		}

		invocations = append(invocations, inv)
	}

	return invocations, rows.Err()
}

// DeleteInvocation deletes an invocation by ID
func (db *DB) DeleteInvocation(id string) error {
	result, err := db.conn.Exec(`DELETE FROM invocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invocation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetInvocationCount returns the total number of invocations
func (db *DB) GetInvocationCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM invocations").Scan(&count)
	return count, err
}
