package dto

import (
	"encoding/json"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// AlertResponse defines the data returned for an alert.
type AlertResponse struct {
	AlertID     string          `json:"alertID"`
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Message     string          `json:"message"`
	Detail      json.RawMessage `json:"detail,omitempty"`
	TriggeredAt time.Time       `json:"triggeredAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
}

// ToAlertResponse converts a domain.Alert to AlertResponse DTO.
func ToAlertResponse(a *domain.Alert) AlertResponse {
	return AlertResponse{
		AlertID:     a.AlertID,
		Type:        string(a.Type),
		Severity:    string(a.Severity),
		Message:     a.Message,
		Detail:      a.Detail,
		TriggeredAt: a.TriggeredAt,
		ResolvedAt:  a.ResolvedAt,
	}
}

// ToAlertResponses converts a slice of domain alerts.
func ToAlertResponses(alerts []domain.Alert) []AlertResponse {
	responses := make([]AlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = ToAlertResponse(&alerts[i])
	}
	return responses
}

// HealthSnapshotResponse defines the data returned for a health snapshot.
type HealthSnapshotResponse struct {
	QueueDepth   int       `json:"queueDepth"`
	FailedCount  int       `json:"failedCount"`
	AvgLatencyMS float64   `json:"avgLatencyMS"`
	Status       string    `json:"status"`
	TakenAt      time.Time `json:"takenAt"`
}

// ToHealthSnapshotResponse converts a domain.HealthSnapshot to its DTO.
func ToHealthSnapshotResponse(s *domain.HealthSnapshot) HealthSnapshotResponse {
	return HealthSnapshotResponse{
		QueueDepth:   s.QueueDepth,
		FailedCount:  s.FailedCount,
		AvgLatencyMS: s.AvgLatencyMS,
		Status:       string(s.Status),
		TakenAt:      s.TakenAt,
	}
}

// ToHealthSnapshotResponses converts a slice of snapshots.
func ToHealthSnapshotResponses(snapshots []domain.HealthSnapshot) []HealthSnapshotResponse {
	responses := make([]HealthSnapshotResponse, len(snapshots))
	for i := range snapshots {
		responses[i] = ToHealthSnapshotResponse(&snapshots[i])
	}
	return responses
}
