package model

import (
	"time"
)

// Schedule statuses form a closed set. A schedule enters "approved" only
// through the dedicated approve operation, never through a generic edit.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusApproved  = "approved"
)

// Statuses lists every valid schedule status in reporting order.
var Statuses = []string{StatusPending, StatusCompleted, StatusCancelled, StatusApproved}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusCancelled, StatusApproved:
		return true
	}
	return false
}

// Schedule books one room to one cleaner for one calendar date. Date is a
// plain YYYY-MM-DD string, StartTime/EndTime are HH:MM clock values. Room
// double-booking is guarded per (room_id, date), independent of the time
// range and of either record's status.
type Schedule struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID     string     `json:"room_id" bson:"room_id" validate:"required,min=1,max=64"`
	CleanerID  string     `json:"cleaner_id" bson:"cleaner_id" validate:"required,min=1,max=64"`
	Date       string     `json:"date" bson:"date" validate:"required,calendar_date"`
	StartTime  string     `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime    string     `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	Status     string     `json:"status" bson:"status" validate:"required,oneof=pending completed cancelled approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty" validate:"omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ScheduleUpdate struct {
	RoomID    string `json:"room_id,omitempty" validate:"omitempty,min=1,max=64"`
	CleanerID string `json:"cleaner_id,omitempty" validate:"omitempty,min=1,max=64"`
	Date      string `json:"date,omitempty" validate:"omitempty,calendar_date"`
	StartTime string `json:"start_time,omitempty" validate:"omitempty,clock_time"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,clock_time"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=pending completed cancelled approved"`
}

// ScheduleView is a schedule enriched with its room and cleaner for display.
// Room or Cleaner may be nil when the directory no longer knows the id.
type ScheduleView struct {
	Schedule
	Room    *Room    `json:"room,omitempty"`
	Cleaner *Cleaner `json:"cleaner,omitempty"`
}

// ScheduleFilter carries the optional read-side filters. Nil or zero values
// mean "no filter"; all present filters combine with logical AND.
type ScheduleFilter struct {
	CleanerID string
	Status    string
	Search    string
}
