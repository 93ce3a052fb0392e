package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"campus-vote/internal/audit"
	"campus-vote/internal/middleware"
	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StudentAdminHandler manages the student roster: creation with generated
// registration numbers, edits, deletion, vote reset and password reset.
type StudentAdminHandler struct {
	DB              *gorm.DB
	DefaultPassword string
	BcryptCost      int
	RegnoStart      int
}

func NewStudentAdminHandler(db *gorm.DB, defaultPassword string, bcryptCost, regnoStart int) *StudentAdminHandler {
	if regnoStart <= 0 {
		regnoStart = 1001
	}
	return &StudentAdminHandler{
		DB:              db,
		DefaultPassword: defaultPassword,
		BcryptCost:      bcryptCost,
		RegnoStart:      regnoStart,
	}
}

// nextRegno computes the next registration number for a course/batch prefix:
// highest existing numeric suffix plus one, or the configured start value.
// Callers must run it inside the transaction that inserts the student, so a
// concurrent duplicate fails on the regno primary key instead of colliding
// silently.
func nextRegno(tx *gorm.DB, course, batch string, start int) (string, error) {
	prefix := strings.ToUpper(strings.ReplaceAll(course, " ", "")) + batch + "_"

	var regnos []string
	if err := tx.Model(&models.Student{}).
		Where("regno LIKE ?", prefix[:len(prefix)-1]+"%").
		Pluck("regno", &regnos).Error; err != nil {
		return "", err
	}

	// LIKE treats "_" as a wildcard, so re-check the prefix here
	next := start
	for _, regno := range regnos {
		if !strings.HasPrefix(regno, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(regno, prefix))
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}

	return fmt.Sprintf("%s%d", prefix, next), nil
}

// Add creates a student with a generated regno and the default password,
// which has to be handed over out of band.
func (h *StudentAdminHandler) Add(c *gin.Context) {
	admin := middleware.CurrentStudent(c)

	name := strings.TrimSpace(c.PostForm("name"))
	course := strings.TrimSpace(c.PostForm("course"))
	batch := strings.TrimSpace(c.PostForm("batch"))
	if name == "" || course == "" || batch == "" {
		util.SetFlash(c, "Name, course and batch are required.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	hash, err := util.HashPassword(h.DefaultPassword, h.BcryptCost)
	if err != nil {
		util.SetFlash(c, "Failed to add student.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	var regno string
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		regno, err = nextRegno(tx, course, batch, h.RegnoStart)
		if err != nil {
			return err
		}
		student := models.Student{
			Regno:        regno,
			Name:         name,
			Course:       course,
			Batch:        batch,
			PasswordHash: hash,
			Role:         models.RoleStudent,
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		util.SetFlash(c, "Failed to add student.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	details := fmt.Sprintf("Added student %s (%s, %s %s)", regno, name, course, batch)
	_ = audit.Record(h.DB, admin.Regno, audit.ActionAddStudent, details, c.ClientIP())

	util.SetFlash(c, fmt.Sprintf("Student added with registration number %s.", regno))
	c.Redirect(http.StatusFound, "/admin_dashboard")
}

// Edit updates name, course and batch of an existing student.
func (h *StudentAdminHandler) Edit(c *gin.Context) {
	regno := c.Param("regno")

	name := strings.TrimSpace(c.PostForm("name"))
	course := strings.TrimSpace(c.PostForm("course"))
	batch := strings.TrimSpace(c.PostForm("batch"))
	if name == "" || course == "" || batch == "" {
		util.SetFlash(c, "Name, course and batch are required.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	result := h.DB.Model(&models.Student{}).Where("regno = ?", regno).
		Updates(map[string]interface{}{"name": name, "course": course, "batch": batch})
	if result.Error != nil || result.RowsAffected == 0 {
		util.SetFlash(c, "Student not found.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	util.SetFlash(c, "Student updated.")
	c.Redirect(http.StatusFound, "/admin_dashboard")
}

// Delete removes a student row. Ballots cast by the student are left in
// place; the vote deletion tooling is the cleanup path for those.
func (h *StudentAdminHandler) Delete(c *gin.Context) {
	admin := middleware.CurrentStudent(c)
	regno := c.Param("regno")

	result := h.DB.Delete(&models.Student{}, "regno = ?", regno)
	if result.Error != nil || result.RowsAffected == 0 {
		util.SetFlash(c, "Student not found.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	_ = audit.Record(h.DB, admin.Regno, audit.ActionDeleteStudent,
		fmt.Sprintf("Deleted student %s", regno), c.ClientIP())

	util.SetFlash(c, "Student deleted.")
	c.Redirect(http.StatusFound, "/admin_dashboard")
}

// ResetVote deletes every ballot of a student and clears the voted flag so
// they can vote again. The justification remark is mandatory.
func (h *StudentAdminHandler) ResetVote(c *gin.Context) {
	admin := middleware.CurrentStudent(c)
	regno := c.Param("regno")

	remark := strings.TrimSpace(c.PostForm("remark"))
	if remark == "" {
		util.SetFlash(c, "Remark is required to reset a vote.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	var student models.Student
	if err := h.DB.Where("regno = ?", regno).First(&student).Error; err != nil {
		util.SetFlash(c, "Student not found.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Ballot{}, "student_regno = ?", regno).Error; err != nil {
			return err
		}
		return tx.Model(&models.Student{}).Where("regno = ?", regno).
			Update("voted", false).Error
	})
	if err != nil {
		util.SetFlash(c, "Failed to reset vote.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	details := fmt.Sprintf("Reset vote for %s. Remark: %s", regno, remark)
	_ = audit.Record(h.DB, admin.Regno, audit.ActionResetVote, details, c.ClientIP())

	util.SetFlash(c, "Vote reset for "+regno+".")
	c.Redirect(http.StatusFound, "/admin_dashboard")
}

// ResetPassword sets a student's password back to the default one.
func (h *StudentAdminHandler) ResetPassword(c *gin.Context) {
	admin := middleware.CurrentStudent(c)
	regno := c.Param("regno")

	hash, err := util.HashPassword(h.DefaultPassword, h.BcryptCost)
	if err != nil {
		util.SetFlash(c, "Failed to reset password.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	result := h.DB.Model(&models.Student{}).Where("regno = ?", regno).
		Update("password_hash", hash)
	if result.Error != nil || result.RowsAffected == 0 {
		util.SetFlash(c, "Student not found.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	_ = audit.Record(h.DB, admin.Regno, audit.ActionResetPassword,
		fmt.Sprintf("Reset password for %s", regno), c.ClientIP())

	util.SetFlash(c, "Password reset for "+regno+".")
	c.Redirect(http.StatusFound, "/admin_dashboard")
}
