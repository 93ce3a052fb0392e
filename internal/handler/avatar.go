package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvatarHandler stores candidate photos under the configured upload dir.
type AvatarHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewAvatarHandler(db *gorm.DB, uploadDir string) *AvatarHandler {
	return &AvatarHandler{DB: db, UploadDir: uploadDir}
}

// allowed avatar extensions
var avatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Upload attaches an uploaded image to a candidate. Files get a fresh uuid
// name so uploads can never overwrite each other.
func (h *AvatarHandler) Upload(c *gin.Context) {
	candID := c.PostForm("candidate_id")
	if candID == "" {
		util.SetFlash(c, "Candidate is required.")
		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	var candidate models.Candidate
	if err := h.DB.First(&candidate, "id = ?", candID).Error; err != nil {
		util.SetFlash(c, "Candidate not found.")
		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		util.SetFlash(c, "Please choose an image file.")
		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExts[ext] {
		util.SetFlash(c, "Unsupported image type.")
		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	fileName := fmt.Sprintf("avatar-%d-%s%s", candidate.ID, uuid.New().String(), ext)
	dst := filepath.Join(h.UploadDir, fileName)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		util.SetFlash(c, "Failed to store image.")
		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	if err := h.DB.Model(&candidate).Update("avatar", fileName).Error; err != nil {
		util.SetFlash(c, "Failed to save avatar.")
		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	util.SetFlash(c, "Avatar updated.")
	c.Redirect(http.StatusFound, "/manage_candidates")
}
