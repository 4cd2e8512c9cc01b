package models

import "time"

// AuditEntry records one invocation of an analysis operation.
type AuditEntry struct {
	ID             string    `json:"id"`
	Route          string    `json:"route"          validate:"required"`
	At             time.Time `json:"atISO"`
	InputsSummary  string    `json:"inputsSummary"  validate:"required"`
	OutputsSummary string    `json:"outputsSummary" validate:"required"`
	Success        bool      `json:"success"`
}

// AuditExport is the downloadable audit log document.
type AuditExport struct {
	ExportedAt   time.Time    `json:"exported_at"`
	TotalEntries int          `json:"total_entries"`
	Logs         []AuditEntry `json:"logs"`
}
