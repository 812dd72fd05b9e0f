package domain

import "time"

// ReconciliationReport summarizes one reconciliation pass.
type ReconciliationReport struct {
	GapsEnqueued   int       `json:"gapsEnqueued"`   // Missing postings queued for repair
	OrphansFound   int       `json:"orphansFound"`   // POSTED entries with no source record
	GlobalBalanced bool      `json:"globalBalanced"` // Σdebit == Σcredit across POSTED entries
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}
