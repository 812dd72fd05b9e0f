package domain

import (
	"encoding/json"
	"time"
)

// AlertType classifies what a monitoring alert is about.
type AlertType string

const (
	AlertQueueBackup       AlertType = "QUEUE_BACKUP"
	AlertSyncFailures      AlertType = "SYNC_FAILURES"
	AlertDataInconsistency AlertType = "DATA_INCONSISTENCY"
	AlertSystemDown        AlertType = "SYSTEM_DOWN"
)

// AlertSeverity ranks how urgent an alert is.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is an operator-facing notification. Alerts are informational only:
// they never block, reverse, or alter ledger state. At most one unresolved
// alert per type is kept live.
type Alert struct {
	AlertID     string          `json:"alertID"`
	Type        AlertType       `json:"type"`
	Severity    AlertSeverity   `json:"severity"`
	Message     string          `json:"message"`
	Detail      json.RawMessage `json:"detail,omitempty"`
	TriggeredAt time.Time       `json:"triggeredAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
}

// HealthStatus is the threshold-based classification of queue health.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthWarning  HealthStatus = "WARNING"
	HealthCritical HealthStatus = "CRITICAL"
)

// HealthSnapshot captures queue and failure metrics at one instant.
type HealthSnapshot struct {
	SnapshotID   string        `json:"snapshotID"`
	QueueDepth   int           `json:"queueDepth"`
	FailedCount  int           `json:"failedCount"`
	AvgLatencyMS float64       `json:"avgLatencyMS"`
	Status       HealthStatus  `json:"status"`
	TakenAt      time.Time     `json:"takenAt"`
}
