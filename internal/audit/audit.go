// Package audit appends immutable records of voting and administrative
// actions. Entries are write-only; the admin audit page is the only reader.
package audit

import (
	"campus-vote/internal/models"

	"gorm.io/gorm"
)

// Action names recorded in the audit log.
const (
	ActionVoteCast      = "Vote Cast"
	ActionDeleteVote    = "Delete Vote"
	ActionResetVote     = "Reset Vote"
	ActionResetPassword = "Reset Password"
	ActionAddStudent    = "Add Student"
	ActionDeleteStudent = "Delete Student"
)

// Record appends one audit entry. Failures are returned, not fatal: the
// mutation being audited has already committed by the time this runs.
func Record(db *gorm.DB, user, action, details, ip string) error {
	entry := models.AuditEntry{
		User:    user,
		Action:  action,
		Details: details,
		IP:      ip,
	}
	return db.Create(&entry).Error
}
