package handler

import (
	"net/http"

	"campus-vote/internal/middleware"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler serves the student self-service pages.
type ProfileHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewProfileHandler(db *gorm.DB, bcryptCost int) *ProfileHandler {
	return &ProfileHandler{DB: db, BcryptCost: bcryptCost}
}

// Profile renders the current student's own record and ballot summary.
func (h *ProfileHandler) Profile(c *gin.Context) {
	student := middleware.CurrentStudent(c)

	var summary []summaryRow
	_ = h.DB.Raw(`
		SELECT p.name AS position, c.name AS candidate
		FROM ballots b
		JOIN candidates c ON b.candidate_id = c.id
		JOIN positions p ON c.position_id = p.id
		WHERE b.student_regno = ?
		ORDER BY p.id`, student.Regno).Scan(&summary).Error

	c.HTML(http.StatusOK, "profile.html", gin.H{
		"title":   "Campus Vote - Profile",
		"flash":   util.PopFlash(c),
		"student": student,
		"summary": summary,
	})
}

// ChangePassword verifies the old password and stores a new bcrypt hash.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	student := middleware.CurrentStudent(c)

	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")
	if newPassword == "" || len(newPassword) < 6 {
		util.SetFlash(c, "New password must be at least 6 characters.")
		c.Redirect(http.StatusFound, "/student/profile")
		return
	}

	if !util.CheckPassword(oldPassword, student.PasswordHash) {
		util.SetFlash(c, "Current password is incorrect.")
		c.Redirect(http.StatusFound, "/student/profile")
		return
	}

	hash, err := util.HashPassword(newPassword, h.BcryptCost)
	if err != nil {
		util.SetFlash(c, "Failed to change password.")
		c.Redirect(http.StatusFound, "/student/profile")
		return
	}

	if err := h.DB.Model(student).Update("password_hash", hash).Error; err != nil {
		util.SetFlash(c, "Failed to change password.")
		c.Redirect(http.StatusFound, "/student/profile")
		return
	}

	util.SetFlash(c, "Password changed.")
	c.Redirect(http.StatusFound, "/student/profile")
}
