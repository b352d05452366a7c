package model

import "time"

// StatusCount is one row of the per-status breakdown in a monthly report.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ApprovedEntry is one supervisor-signed schedule in a monthly report.
type ApprovedEntry struct {
	CleanerName string    `json:"cleaner_name"`
	RoomName    string    `json:"room_name"`
	ApprovedAt  time.Time `json:"approved_at"`
}

// MonthlyReport aggregates every schedule whose date falls in (year, month).
// StatusCounts covers all four statuses, zeros included; ApprovedEntries is
// ordered by ascending schedule id.
type MonthlyReport struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	StatusCounts    []StatusCount   `json:"status_counts"`
	ApprovedEntries []ApprovedEntry `json:"approved_entries"`
}
