package models

import (
	"encoding/json"
	"time"
)

// Alert is the database model for the alerts table.
type Alert struct {
	AlertID     string          `db:"alert_id"`
	Type        string          `db:"alert_type"`
	Severity    string          `db:"severity"`
	Message     string          `db:"message"`
	Detail      json.RawMessage `db:"detail"`
	TriggeredAt time.Time       `db:"triggered_at"`
	ResolvedAt  *time.Time      `db:"resolved_at"`
}

// HealthSnapshot is the database model for the health_snapshots table.
type HealthSnapshot struct {
	SnapshotID   string    `db:"snapshot_id"`
	QueueDepth   int       `db:"queue_depth"`
	FailedCount  int       `db:"failed_count"`
	AvgLatencyMS float64   `db:"avg_latency_ms"`
	Status       string    `db:"status"`
	TakenAt      time.Time `db:"taken_at"`
}
