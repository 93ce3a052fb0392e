package models

import "time"

// Ballot is one recorded (student, position, candidate) selection.
// The composite unique index makes a second ballot for the same position by
// the same student fail at the constraint instead of inflating the tally.
type Ballot struct {
	ID           uint   `gorm:"primaryKey"`
	StudentRegno string `gorm:"size:32;not null;uniqueIndex:idx_ballots_student_position"`
	PositionID   uint   `gorm:"not null;uniqueIndex:idx_ballots_student_position"`
	CandidateID  uint   `gorm:"index;not null"`
	CreatedAt    time.Time
}
