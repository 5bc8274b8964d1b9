package models

import "time"

// TimeSlot is an instructor-declared interval of availability. Slots do
// not expire on their own; listings filter by the current time.
type TimeSlot struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	IsAvailable  bool      `json:"is_available"`
	Recurring    bool      `json:"recurring"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
