package handler

import (
	"path/filepath"
	"testing"

	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a migrated database backed by a per-test file.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Election{},
		&models.Position{},
		&models.Candidate{},
		&models.Ballot{},
		&models.AuditEntry{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// seedElection inserts the fixture used across the handler tests: positions
// President (John Doe, Jane Smith) and Secretary (Emily Davis), students
// S1001/S1002 and the admin account.
func seedElection(t *testing.T, db *gorm.DB) {
	t.Helper()

	positions := []models.Position{
		{ID: 1, Name: "President"},
		{ID: 2, Name: "Secretary"},
	}
	if err := db.Create(&positions).Error; err != nil {
		t.Fatalf("seed positions: %v", err)
	}

	candidates := []models.Candidate{
		{ID: 1, Name: "John Doe", PositionID: 1},
		{ID: 2, Name: "Jane Smith", PositionID: 1},
		{ID: 3, Name: "Emily Davis", PositionID: 2},
	}
	if err := db.Create(&candidates).Error; err != nil {
		t.Fatalf("seed candidates: %v", err)
	}

	for _, s := range []struct {
		regno, name, password, role string
	}{
		{"S1001", "Alice Johnson", "alice123", models.RoleStudent},
		{"S1002", "Bob Smith", "bob123", models.RoleStudent},
		{"admin", "Administrator", "admin", models.RoleAdmin},
	} {
		hash, err := util.HashPassword(s.password, 4)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		student := models.Student{
			Regno:        s.regno,
			Name:         s.name,
			Course:       "Computer Science",
			Batch:        "2023",
			PasswordHash: hash,
			Role:         s.role,
		}
		if err := db.Create(&student).Error; err != nil {
			t.Fatalf("seed student %s: %v", s.regno, err)
		}
	}
}
