package domain

import "time"

// AuditLog records a significant action: who did what, and how it ended.
type AuditLog struct {
	ID          int64
	ActionType  string
	Status      string
	PerformedBy string
	Details     string
	Timestamp   time.Time
}
