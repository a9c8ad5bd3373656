package storage

import (
	"fmt"
	"time"
)

// KeyStats summarizes invocations of one key
type KeyStats struct {
	Key          string  `json:"key"`
	Total        int     `json:"total"`
	SuccessCount int     `json:"successCount"`
	FailureCount int     `json:"failureCount"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// GetKeyStats retrieves statistics grouped by key for the last N days
func (db *DB) GetKeyStats(days int) ([]KeyStats, error) {
	query := `
		SELECT
			key,
			COUNT(*) as total,
			SUM(CASE WHEN result = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN result = 1 THEN 0 ELSE 1 END) as failure_count,
			AVG(latency_ms) as avg_latency
		FROM invocations
		WHERE timestamp_ms >= ?
		GROUP BY key
		ORDER BY key
	`

	since := time.Now().AddDate(0, 0, -days).UnixMilli()

	rows, err := db.conn.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query key stats: %w", err)
	}
	defer rows.Close()

	var stats []KeyStats
	for rows.Next() {
		var s KeyStats
		if err := rows.Scan(&s.Key, &s.Total, &s.SuccessCount, &s.FailureCount, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("failed to scan key stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
