package models

// Position is a contestable role in the election, e.g. "President".
type Position struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:64;not null"`
}
