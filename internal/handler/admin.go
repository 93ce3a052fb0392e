package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus-vote/internal/audit"
	"campus-vote/internal/middleware"
	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// electionTimeLayout matches the datetime-local form inputs.
const electionTimeLayout = "2006-01-02T15:04"

// AdminHandler serves the admin dashboard and management pages.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// Dashboard shows the roster, turnout numbers and election settings.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var students []models.Student
	if err := h.DB.Order("regno").Find(&students).Error; err != nil {
		util.SetFlash(c, "Failed to load students.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	voted := 0
	for _, s := range students {
		if s.Voted {
			voted++
		}
	}

	var election models.Election
	_ = h.DB.First(&election, models.ElectionID).Error

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"title":    "Campus Vote - Admin",
		"flash":    util.PopFlash(c),
		"students": students,
		"total":    len(students),
		"voted":    voted,
		"election": election,
	})
}

// ManagePositions handles the position list plus add/edit/delete actions.
func (h *AdminHandler) ManagePositions(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		action := c.PostForm("action")
		name := strings.TrimSpace(c.PostForm("name"))
		posID := c.PostForm("id")

		switch {
		case action == "add" && name != "":
			if err := h.DB.Create(&models.Position{Name: name}).Error; err != nil {
				util.SetFlash(c, "Failed to add position.")
			}
		case action == "edit" && name != "" && posID != "":
			if err := h.DB.Model(&models.Position{}).Where("id = ?", posID).
				Update("name", name).Error; err != nil {
				util.SetFlash(c, "Failed to update position.")
			}
		case action == "delete" && posID != "":
			if err := h.DB.Delete(&models.Position{}, "id = ?", posID).Error; err != nil {
				util.SetFlash(c, "Failed to delete position.")
			}
		default:
			util.SetFlash(c, "Please fill all required fields.")
		}

		c.Redirect(http.StatusFound, "/manage_positions")
		return
	}

	var positions []models.Position
	if err := h.DB.Order("id").Find(&positions).Error; err != nil {
		util.SetFlash(c, "Failed to load positions.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	c.HTML(http.StatusOK, "manage_positions.html", gin.H{
		"title":     "Campus Vote - Positions",
		"flash":     util.PopFlash(c),
		"positions": positions,
	})
}

// candidateRow is a candidate with its position name for the management page.
type candidateRow struct {
	ID           uint
	Name         string
	PositionID   uint
	Position     string
	StudentRegno string
	Avatar       string
}

// ManageCandidates handles the candidate list plus add/edit/delete actions.
func (h *AdminHandler) ManageCandidates(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		action := c.PostForm("action")
		name := strings.TrimSpace(c.PostForm("name"))
		posID := c.PostForm("position_id")
		candID := c.PostForm("id")

		switch {
		case action == "add" && name != "" && posID != "":
			pid, err := strconv.ParseUint(posID, 10, 32)
			if err != nil {
				util.SetFlash(c, "Invalid position.")
				break
			}
			cand := models.Candidate{
				Name:         name,
				PositionID:   uint(pid),
				StudentRegno: strings.TrimSpace(c.PostForm("student_regno")),
			}
			if err := h.DB.Create(&cand).Error; err != nil {
				util.SetFlash(c, "Failed to add candidate.")
			}
		case action == "edit" && name != "" && posID != "" && candID != "":
			pid, err := strconv.ParseUint(posID, 10, 32)
			if err != nil {
				util.SetFlash(c, "Invalid position.")
				break
			}
			updates := map[string]interface{}{
				"name":        name,
				"position_id": uint(pid),
			}
			if err := h.DB.Model(&models.Candidate{}).Where("id = ?", candID).
				Updates(updates).Error; err != nil {
				util.SetFlash(c, "Failed to update candidate.")
			}
		case action == "delete" && candID != "":
			if err := h.DB.Delete(&models.Candidate{}, "id = ?", candID).Error; err != nil {
				util.SetFlash(c, "Failed to delete candidate.")
			}
		default:
			util.SetFlash(c, "Please fill all required fields.")
		}

		c.Redirect(http.StatusFound, "/manage_candidates")
		return
	}

	var positions []models.Position
	if err := h.DB.Order("id").Find(&positions).Error; err != nil {
		util.SetFlash(c, "Failed to load positions.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	var candidates []candidateRow
	if err := h.DB.Raw(`
		SELECT c.id, c.name, c.position_id, c.student_regno, c.avatar,
		       p.name AS position
		FROM candidates c
		JOIN positions p ON c.position_id = p.id
		ORDER BY c.id`).Scan(&candidates).Error; err != nil {
		util.SetFlash(c, "Failed to load candidates.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	c.HTML(http.StatusOK, "manage_candidates.html", gin.H{
		"title":      "Campus Vote - Candidates",
		"flash":      util.PopFlash(c),
		"positions":  positions,
		"candidates": candidates,
	})
}

// ElectionSettings shows and updates the singleton election record.
func (h *AdminHandler) ElectionSettings(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		title := strings.TrimSpace(c.PostForm("title"))
		startStr := c.PostForm("start")
		deadlineStr := c.PostForm("deadline")

		if title == "" || startStr == "" || deadlineStr == "" {
			util.SetFlash(c, "Please fill all fields.")
			c.Redirect(http.StatusFound, "/election_settings")
			return
		}

		start, err := time.ParseInLocation(electionTimeLayout, startStr, time.Local)
		if err != nil {
			util.SetFlash(c, "Invalid start date.")
			c.Redirect(http.StatusFound, "/election_settings")
			return
		}
		deadline, err := time.ParseInLocation(electionTimeLayout, deadlineStr, time.Local)
		if err != nil {
			util.SetFlash(c, "Invalid deadline.")
			c.Redirect(http.StatusFound, "/election_settings")
			return
		}
		if deadline.Before(start) {
			util.SetFlash(c, "Deadline must not be before the start date.")
			c.Redirect(http.StatusFound, "/election_settings")
			return
		}

		updates := map[string]interface{}{
			"title":      title,
			"start_date": start,
			"deadline":   deadline,
		}
		if err := h.DB.Model(&models.Election{}).Where("id = ?", models.ElectionID).
			Updates(updates).Error; err != nil {
			util.SetFlash(c, "Failed to update election settings.")
			c.Redirect(http.StatusFound, "/election_settings")
			return
		}

		util.SetFlash(c, "Election settings updated.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	var election models.Election
	_ = h.DB.First(&election, models.ElectionID).Error

	c.HTML(http.StatusOK, "election_settings.html", gin.H{
		"title":    "Campus Vote - Election Settings",
		"flash":    util.PopFlash(c),
		"election": election,
	})
}

// AuditLog lists every audit entry, newest first.
func (h *AdminHandler) AuditLog(c *gin.Context) {
	var entries []models.AuditEntry
	if err := h.DB.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		util.SetFlash(c, "Failed to load audit log.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	c.HTML(http.StatusOK, "audit_log.html", gin.H{
		"title":   "Campus Vote - Audit Log",
		"flash":   util.PopFlash(c),
		"entries": entries,
	})
}

// voteRow is one ballot with its names resolved, for the admin vote list and
// the delete-vote confirmation page.
type voteRow struct {
	ID            uint
	StudentRegno  string
	Position      string
	CandidateName string
	CreatedAt     time.Time
}

func (h *AdminHandler) voteByID(id string) (*voteRow, error) {
	var vote voteRow
	err := h.DB.Raw(`
		SELECT b.id, b.student_regno, b.created_at,
		       c.name AS candidate_name, p.name AS position
		FROM ballots b
		JOIN candidates c ON b.candidate_id = c.id
		JOIN positions p ON b.position_id = p.id
		WHERE b.id = ?`, id).Scan(&vote).Error
	if err != nil {
		return nil, err
	}
	if vote.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &vote, nil
}

// Votes lists every recorded ballot.
func (h *AdminHandler) Votes(c *gin.Context) {
	var votes []voteRow
	if err := h.DB.Raw(`
		SELECT b.id, b.student_regno, b.created_at,
		       c.name AS candidate_name, p.name AS position
		FROM ballots b
		JOIN candidates c ON b.candidate_id = c.id
		JOIN positions p ON b.position_id = p.id
		ORDER BY b.id`).Scan(&votes).Error; err != nil {
		util.SetFlash(c, "Failed to load votes.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	c.HTML(http.StatusOK, "admin_votes.html", gin.H{
		"title": "Campus Vote - All Votes",
		"flash": util.PopFlash(c),
		"votes": votes,
	})
}

// DeleteVoteForm shows the confirmation page for removing a single ballot.
func (h *AdminHandler) DeleteVoteForm(c *gin.Context) {
	vote, err := h.voteByID(c.Param("id"))
	if err != nil {
		util.SetFlash(c, "Vote not found.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	c.HTML(http.StatusOK, "delete_vote.html", gin.H{
		"title": "Campus Vote - Delete Vote",
		"flash": util.PopFlash(c),
		"vote":  vote,
	})
}

// DeleteVote removes a single ballot. A non-empty remark is mandatory and
// goes into the audit log together with the vote id.
func (h *AdminHandler) DeleteVote(c *gin.Context) {
	admin := middleware.CurrentStudent(c)
	id := c.Param("id")

	vote, err := h.voteByID(id)
	if err != nil {
		util.SetFlash(c, "Vote not found.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	remark := strings.TrimSpace(c.PostForm("remark"))
	if remark == "" {
		util.SetFlash(c, "Remark is required to delete a vote.")
		c.Redirect(http.StatusFound, "/admin/delete_vote/"+id)
		return
	}

	if err := h.DB.Delete(&models.Ballot{}, "id = ?", vote.ID).Error; err != nil {
		util.SetFlash(c, "Failed to delete vote.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	details := fmt.Sprintf("Deleted vote ID %d (student %s, %s). Remark: %s",
		vote.ID, vote.StudentRegno, vote.CandidateName, remark)
	_ = audit.Record(h.DB, admin.Regno, audit.ActionDeleteVote, details, c.ClientIP())

	util.SetFlash(c, "Vote deleted successfully.")
	c.Redirect(http.StatusFound, "/admin_dashboard")
}
