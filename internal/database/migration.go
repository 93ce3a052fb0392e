package database

import (
	"fmt"
	"time"

	"campus-vote/internal/config"
	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Election{},
		&models.Position{},
		&models.Candidate{},
		&models.Ballot{},
		&models.AuditEntry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts the singleton election record, sample positions, candidates,
// a few students and the admin account. Every insert is skipped when the row
// already exists, so this is safe to run at every startup.
func Seed(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.Election{}).Where("id = ?", models.ElectionID).Count(&count).Error; err != nil {
		return fmt.Errorf("check election: %w", err)
	}
	if count == 0 {
		deadline := time.Date(2025, 12, 31, 23, 59, 0, 0, time.Local)
		election := models.Election{
			ID:        models.ElectionID,
			Title:     "Class Representative Election",
			StartDate: time.Now(),
			Deadline:  deadline,
		}
		if err := db.Create(&election).Error; err != nil {
			return fmt.Errorf("seed election: %w", err)
		}
	}

	positions := []models.Position{
		{ID: 1, Name: "President"},
		{ID: 2, Name: "Secretary"},
	}
	for _, p := range positions {
		if err := firstOrCreate(db, &models.Position{}, "id = ?", p.ID, &p); err != nil {
			return fmt.Errorf("seed position %q: %w", p.Name, err)
		}
	}

	candidates := []models.Candidate{
		{ID: 1, Name: "John Doe", PositionID: 1},
		{ID: 2, Name: "Jane Smith", PositionID: 1},
		{ID: 3, Name: "Emily Davis", PositionID: 2},
	}
	for _, c := range candidates {
		if err := firstOrCreate(db, &models.Candidate{}, "id = ?", c.ID, &c); err != nil {
			return fmt.Errorf("seed candidate %q: %w", c.Name, err)
		}
	}

	students := []struct {
		regno, name, course, batch, password, role string
	}{
		{"S1001", "Alice Johnson", "Computer Science", "2023", "alice123", models.RoleStudent},
		{"S1002", "Bob Smith", "IT", "2023", "bob123", models.RoleStudent},
		{"S1003", "Charlie Lee", "ECE", "2022", "charlie123", models.RoleStudent},
		{"admin", "Administrator", "", "", "admin", models.RoleAdmin},
	}
	for _, s := range students {
		var n int64
		if err := db.Model(&models.Student{}).Where("regno = ?", s.regno).Count(&n).Error; err != nil {
			return fmt.Errorf("check student %s: %w", s.regno, err)
		}
		if n > 0 {
			continue
		}
		hash, err := util.HashPassword(s.password, cfg.Security.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", s.regno, err)
		}
		student := models.Student{
			Regno:        s.regno,
			Name:         s.name,
			Course:       s.course,
			Batch:        s.batch,
			PasswordHash: hash,
			Role:         s.role,
		}
		if err := db.Create(&student).Error; err != nil {
			return fmt.Errorf("seed student %s: %w", s.regno, err)
		}
	}

	return nil
}

func firstOrCreate(db *gorm.DB, model interface{}, query string, id uint, value interface{}) error {
	var count int64
	if err := db.Model(model).Where(query, id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(value).Error
}
