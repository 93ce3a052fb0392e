package models

import "time"

// Student roles. Role is an explicit column rather than being derived from
// the registration number at login time.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Student represents a voter (or the admin account) keyed by registration number.
type Student struct {
	Regno        string `gorm:"primaryKey;size:32"`
	Name         string `gorm:"size:64;not null"`
	Course       string `gorm:"size:64"`
	Batch        string `gorm:"size:16"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null;default:student"`
	Voted        bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Student) IsAdmin() bool {
	return s.Role == RoleAdmin
}
