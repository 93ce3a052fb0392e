package models

import "time"

// AuditEntry is an append-only record of a voting or administrative action.
// Rows are never updated or deleted.
type AuditEntry struct {
	ID        uint   `gorm:"primaryKey"`
	User      string `gorm:"size:32;index;not null"`
	Action    string `gorm:"size:64;not null"`
	Details   string `gorm:"size:1024"`
	IP        string `gorm:"size:64"`
	CreatedAt time.Time
}
