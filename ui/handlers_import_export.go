package ui

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"gometa/adapters/excel"
	"gometa/adapters/export"
	"gometa/models"
)

// handleImportStudies accepts an uploaded xlsx/csv study sheet, persists
// every valid row and reports per-row failures.
func (s *Server) handleImportStudies(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	// excelize needs a real file; stage the upload under the import dir.
	if err := os.MkdirAll(s.config.Data.ImportDir, 0o755); err != nil {
		s.respondError(c, err)
		return
	}
	tmpDir, err := os.MkdirTemp(s.config.Data.ImportDir, "import-*")
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		s.respondError(c, err)
		return
	}

	result, err := excel.NewStudyReader(tmpPath).ReadStudies()
	if err != nil {
		s.respondError(c, err)
		return
	}

	sess, reviewID, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}

	imported := 0
	for _, rec := range result.Records {
		row, err := models.StudyRowFromRecord(reviewID, rec)
		if err != nil {
			result.Errors = append(result.Errors, excel.RowError{Message: err.Error()})
			continue
		}
		if err := s.studies.Create(c.Request.Context(), row); err != nil {
			result.Errors = append(result.Errors, excel.RowError{Message: err.Error()})
			continue
		}
		sess.AddStudy(rec)
		imported++
	}

	s.logger.Info("imported %d/%d studies into review %s", imported, result.RowsRead, reviewID)
	c.JSON(http.StatusOK, gin.H{
		"mode":      result.Mode,
		"rows_read": result.RowsRead,
		"imported":  imported,
		"errors":    result.Errors,
	})
}

// handleExportSummary streams the verbatim text summary of the main analysis
func (s *Server) handleExportSummary(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := sess.Main()
	if err != nil {
		s.respondError(c, err)
		return
	}

	text := export.SummaryText(review.Title, sess.Studies(), result)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", review.Title+"-summary.txt"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// handleExportWorkbook streams the xlsx results workbook
func (s *Server) handleExportWorkbook(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := sess.Main()
	if err != nil {
		s.respondError(c, err)
		return
	}

	buf, err := export.Workbook(review.Title, sess.Studies(), result)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", review.Title+"-results.xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
