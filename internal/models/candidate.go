package models

// Candidate runs for exactly one position. StudentRegno optionally links the
// candidate to a student record; Avatar is the stored upload path, if any.
// position_id is a plain indexed column: deleting a position can leave
// candidates behind, which the admin tooling has to clean up.
type Candidate struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:64;not null"`
	PositionID   uint   `gorm:"index;not null"`
	StudentRegno string `gorm:"size:32"`
	Avatar       string `gorm:"size:255"`
}
