package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler writes votes and the student roster as CSV or XLSX files.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

func (h *ExportHandler) allVotes() ([]voteRow, error) {
	var votes []voteRow
	err := h.DB.Raw(`
		SELECT b.id, b.student_regno, b.created_at,
		       c.name AS candidate_name, p.name AS position
		FROM ballots b
		JOIN candidates c ON b.candidate_id = c.id
		JOIN positions p ON b.position_id = p.id
		ORDER BY b.id`).Scan(&votes).Error
	return votes, err
}

// VotesCSV exports every ballot as CSV.
func (h *ExportHandler) VotesCSV(c *gin.Context) {
	votes, err := h.allVotes()
	if err != nil {
		util.SetFlash(c, "Failed to export votes.")
		c.Redirect(http.StatusFound, "/admin/votes")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"votes_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"ID", "Student", "Position", "Candidate", "Cast At"})
	for _, v := range votes {
		writer.Write([]string{
			strconv.FormatUint(uint64(v.ID), 10),
			v.StudentRegno,
			v.Position,
			v.CandidateName,
			v.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// VotesXLSX exports every ballot as an XLSX workbook.
func (h *ExportHandler) VotesXLSX(c *gin.Context) {
	votes, err := h.allVotes()
	if err != nil {
		util.SetFlash(c, "Failed to export votes.")
		c.Redirect(http.StatusFound, "/admin/votes")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Votes"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Student", "Position", "Candidate", "Cast At"}
	for i, head := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, head)
	}
	for row, v := range votes {
		values := []interface{}{
			v.ID,
			v.StudentRegno,
			v.Position,
			v.CandidateName,
			v.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"votes_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.SetFlash(c, "Failed to export votes.")
		c.Redirect(http.StatusFound, "/admin/votes")
	}
}

// StudentsCSV exports the roster with voted flags as CSV.
func (h *ExportHandler) StudentsCSV(c *gin.Context) {
	var students []models.Student
	if err := h.DB.Order("regno").Find(&students).Error; err != nil {
		util.SetFlash(c, "Failed to export students.")
		c.Redirect(http.StatusFound, "/admin_dashboard")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"students_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Regno", "Name", "Course", "Batch", "Voted"})
	for _, s := range students {
		writer.Write([]string{
			s.Regno,
			s.Name,
			s.Course,
			s.Batch,
			strconv.FormatBool(s.Voted),
		})
	}
}
