package handler

import (
	"errors"
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

// VoteHandler serves the student dashboard and the ballot flow.
type VoteHandler struct {
	DB *gorm.DB
}

func NewVoteHandler(db *gorm.DB) *VoteHandler {
	return &VoteHandler{DB: db}
}

var (
	errAlreadyVoted = errors.New("already voted")
	errBadSelection = errors.New("candidate does not belong to position")
)

// StudentDashboard shows the election window, a countdown and current leaders.
func (h *VoteHandler) StudentDashboard(c *gin.Context) {
	student := middleware.CurrentStudent(c)

	var election models.Election
	if err := h.DB.First(&election, models.ElectionID).Error; err != nil {
		util.SetFlash(c, "Election is not configured yet.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	now := time.Now()
	leaders, err := tallyRows(h.DB)
	if err != nil {
		util.SetFlash(c, "Failed to load results.")
		leaders = nil
	}

	c.HTML(http.StatusOK, "student_dashboard.html", gin.H{
		"title":     "Campus Vote - Dashboard",
		"flash":     util.PopFlash(c),
		"student":   student,
		"election":  election,
		"started":   election.Started(now),
		"remaining": int64(election.Remaining(now).Seconds()),
		"leaders":   leaders,
	})
}

// positionGroup is one position with its selectable candidates.
type positionGroup struct {
	Position   models.Position
	Candidates []models.Candidate
}

// VoteForm renders the ballot. The voted check uses the student row loaded
// for this request, so a cast from another tab is seen immediately.
func (h *VoteHandler) VoteForm(c *gin.Context) {
	student := middleware.CurrentStudent(c)
	if student.Voted {
		c.Redirect(http.StatusFound, "/ballot_summary")
		return
	}

	var positions []models.Position
	if err := h.DB.Order("id").Find(&positions).Error; err != nil {
		util.SetFlash(c, "Failed to load ballot.")
		c.Redirect(http.StatusFound, "/student_dashboard")
		return
	}
	var candidates []models.Candidate
	if err := h.DB.Order("id").Find(&candidates).Error; err != nil {
		util.SetFlash(c, "Failed to load ballot.")
		c.Redirect(http.StatusFound, "/student_dashboard")
		return
	}

	grouped := make([]positionGroup, 0, len(positions))
	for _, pos := range positions {
		group := positionGroup{Position: pos}
		for _, cand := range candidates {
			if cand.PositionID == pos.ID {
				group.Candidates = append(group.Candidates, cand)
			}
		}
		grouped = append(grouped, group)
	}

	c.HTML(http.StatusOK, "vote.html", gin.H{
		"title":   "Campus Vote - Ballot",
		"flash":   util.PopFlash(c),
		"student": student,
		"grouped": grouped,
	})
}

// SubmitVote records one ballot per submitted position and flips the voted
// flag, all inside a single transaction. The unique (student, position) index
// on ballots turns a racing duplicate submission into a clean failure.
func (h *VoteHandler) SubmitVote(c *gin.Context) {
	student := middleware.CurrentStudent(c)

	if err := c.Request.ParseForm(); err != nil {
		util.SetFlash(c, "Invalid ballot submission.")
		c.Redirect(http.StatusFound, "/vote")
		return
	}

	type selection struct {
		positionID  uint
		candidateID uint
	}
	var selections []selection
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, "position_") || len(values) == 0 {
			continue
		}
		posID, err := strconv.ParseUint(strings.TrimPrefix(key, "position_"), 10, 32)
		if err != nil {
			continue
		}
		candID, err := strconv.ParseUint(values[0], 10, 32)
		if err != nil {
			continue
		}
		selections = append(selections, selection{positionID: uint(posID), candidateID: uint(candID)})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var fresh models.Student
		if err := tx.Where("regno = ?", student.Regno).First(&fresh).Error; err != nil {
			return err
		}
		if fresh.Voted {
			return errAlreadyVoted
		}

		for _, sel := range selections {
			var count int64
			if err := tx.Model(&models.Candidate{}).
				Where("id = ? AND position_id = ?", sel.candidateID, sel.positionID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return errBadSelection
			}

			ballot := models.Ballot{
				StudentRegno: student.Regno,
				PositionID:   sel.positionID,
				CandidateID:  sel.candidateID,
			}
			if err := tx.Create(&ballot).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Student{}).
			Where("regno = ?", student.Regno).
			Update("voted", true).Error
	})

	switch {
	case err == nil:
		_ = audit.Record(h.DB, student.Regno, audit.ActionVoteCast, "Ballot submitted", c.ClientIP())
		c.Redirect(http.StatusFound, "/ballot_summary")
	case errors.Is(err, errAlreadyVoted):
		util.SetFlash(c, "You have already voted.")
		c.Redirect(http.StatusFound, "/ballot_summary")
	case errors.Is(err, errBadSelection):
		util.SetFlash(c, "Invalid candidate selection.")
		c.Redirect(http.StatusFound, "/vote")
	default:
		// a racing duplicate submit trips the unique ballot index in here
		util.SetFlash(c, "Ballot could not be recorded.")
		c.Redirect(http.StatusFound, "/ballot_summary")
	}
}

// summaryRow is one line of the per-student ballot summary.
type summaryRow struct {
	Position  string
	Candidate string
}

// BallotSummary lists what the current student voted for.
func (h *VoteHandler) BallotSummary(c *gin.Context) {
	student := middleware.CurrentStudent(c)

	var summary []summaryRow
	err := h.DB.Raw(`
		SELECT p.name AS position, c.name AS candidate
		FROM ballots b
		JOIN candidates c ON b.candidate_id = c.id
		JOIN positions p ON c.position_id = p.id
		WHERE b.student_regno = ?
		ORDER BY p.id`, student.Regno).Scan(&summary).Error
	if err != nil {
		util.SetFlash(c, "Failed to load ballot summary.")
		c.Redirect(http.StatusFound, "/student_dashboard")
		return
	}

	c.HTML(http.StatusOK, "ballot_summary.html", gin.H{
		"title":   "Campus Vote - Your Ballot",
		"flash":   util.PopFlash(c),
		"student": student,
		"summary": summary,
	})
}
