package handler

import (
	"net/http"

	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ResultsHandler serves the tally pages. The aggregation is recomputed on
// every request; at single-election scale that is cheaper than keeping any
// incremental state correct.
type ResultsHandler struct {
	DB *gorm.DB
}

func NewResultsHandler(db *gorm.DB) *ResultsHandler {
	return &ResultsHandler{DB: db}
}

// tallyRow is one (position, candidate, count) line of the tally. Candidate
// is empty for a position with no candidates; Votes is zero for a candidate
// with no ballots. Both must still appear, hence the outer joins.
type tallyRow struct {
	PositionID uint
	Position   string
	Candidate  string
	Votes      int64
}

func tallyRows(db *gorm.DB) ([]tallyRow, error) {
	var rows []tallyRow
	err := db.Raw(`
		SELECT p.id AS position_id, p.name AS position,
		       COALESCE(c.name, '') AS candidate,
		       COUNT(b.id) AS votes
		FROM positions p
		LEFT JOIN candidates c ON p.id = c.position_id
		LEFT JOIN ballots b ON c.id = b.candidate_id AND p.id = b.position_id
		GROUP BY p.id, c.id
		ORDER BY p.id, votes DESC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// positionResult groups tally rows under their position, in position order.
type positionResult struct {
	Position string
	Rows     []tallyRow
}

func groupTally(rows []tallyRow) []positionResult {
	var results []positionResult
	for _, row := range rows {
		if len(results) == 0 || results[len(results)-1].Position != row.Position {
			results = append(results, positionResult{Position: row.Position})
		}
		results[len(results)-1].Rows = append(results[len(results)-1].Rows, row)
	}
	return results
}

// Results renders vote counts per candidate, grouped by position.
func (h *ResultsHandler) Results(c *gin.Context) {
	rows, err := tallyRows(h.DB)
	if err != nil {
		util.SetFlash(c, "Failed to load results.")
		c.Redirect(http.StatusFound, "/student_dashboard")
		return
	}

	c.HTML(http.StatusOK, "results.html", gin.H{
		"title":   "Campus Vote - Results",
		"flash":   util.PopFlash(c),
		"results": groupTally(rows),
	})
}

// LiveVoteCount renders the tally plus turnout, on a self-refreshing page.
func (h *ResultsHandler) LiveVoteCount(c *gin.Context) {
	rows, err := tallyRows(h.DB)
	if err != nil {
		util.SetFlash(c, "Failed to load vote count.")
		c.Redirect(http.StatusFound, "/student_dashboard")
		return
	}

	var totalStudents, votedStudents, totalBallots int64
	h.DB.Model(&models.Student{}).Where("role = ?", models.RoleStudent).Count(&totalStudents)
	h.DB.Model(&models.Student{}).Where("role = ? AND voted = ?", models.RoleStudent, true).Count(&votedStudents)
	h.DB.Model(&models.Ballot{}).Count(&totalBallots)

	c.HTML(http.StatusOK, "live_vote_count.html", gin.H{
		"title":         "Campus Vote - Live Count",
		"results":       groupTally(rows),
		"totalStudents": totalStudents,
		"votedStudents": votedStudents,
		"totalBallots":  totalBallots,
	})
}
