package models

import "time"

// ElectionID is the fixed id of the singleton election row.
const ElectionID uint = 1

// Election holds the title and voting window of the single election.
// Exactly one row exists, with id = ElectionID.
type Election struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:128;not null"`
	StartDate time.Time `gorm:"not null"`
	Deadline  time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

// Started reports whether the voting window has opened at t.
func (e *Election) Started(t time.Time) bool {
	return !t.Before(e.StartDate)
}

// Remaining returns the time left until the deadline at t (negative when past).
func (e *Election) Remaining(t time.Time) time.Duration {
	return e.Deadline.Sub(t)
}
