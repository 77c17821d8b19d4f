package domain

import (
	"time"
)

// ScheduleEntry is one program slot in the live-TV guide.
type ScheduleEntry struct {
	ID           string    `json:"id"`
	ProgramTitle string    `json:"program_title"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Description  string    `json:"description,omitempty"`
	Live         bool      `json:"is_live"`
}

// OnAirAt reports whether the program is running at the given instant.
// The slot is half-open: a program ends exactly at EndTime.
func (e ScheduleEntry) OnAirAt(now time.Time) bool {
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}
