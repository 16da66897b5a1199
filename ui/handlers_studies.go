package ui

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gometa/app"
	"gometa/domain/core"
	"gometa/domain/meta"
	"gometa/domain/study"
	"gometa/models"
)

// studyRequest carries one study submission; data must match the mode
type studyRequest struct {
	Label    string          `json:"label" binding:"required"`
	Year     int             `json:"year"`
	Subgroup string          `json:"subgroup"`
	Mode     string          `json:"mode" binding:"required"`
	Data     json.RawMessage `json:"data" binding:"required"`
}

func (r studyRequest) toRawData() (study.RawData, error) {
	mode, err := study.ParseInputMode(r.Mode)
	if err != nil {
		return nil, err
	}
	switch mode {
	case study.ModeContinuous:
		var d study.ContinuousData
		if err := json.Unmarshal(r.Data, &d); err != nil {
			return nil, fmt.Errorf("invalid continuous data: %w", err)
		}
		return d, nil
	case study.ModeBinary:
		var d study.BinaryData
		if err := json.Unmarshal(r.Data, &d); err != nil {
			return nil, fmt.Errorf("invalid binary data: %w", err)
		}
		return d, nil
	default:
		var d study.PrecalculatedData
		if err := json.Unmarshal(r.Data, &d); err != nil {
			return nil, fmt.Errorf("invalid precalculated data: %w", err)
		}
		return d, nil
	}
}

func (s *Server) handleCreateStudy(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}

	var req studyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := req.toRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := study.NewRecord(req.Label, req.Year, req.Subgroup, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Hydrate the session before persisting: a cold session loads the study
	// list from the store, and persisting first would make AddStudy append
	// the freshly loaded row a second time.
	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}

	row, err := models.StudyRowFromRecord(review.ID, rec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.studies.Create(c.Request.Context(), row); err != nil {
		s.respondError(c, err)
		return
	}

	// Cache invalidation happens inside AddStudy.
	sess.AddStudy(rec)

	c.JSON(http.StatusCreated, row)
}

func (s *Server) handleListStudies(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	rows, err := s.studies.ListByReview(c.Request.Context(), review.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// Annotate each study with computability under the review's measure so
	// the list can show a "not computable" marker without running pooling.
	measure, err := meta.ParseMeasure(review.Measure)
	if err != nil {
		s.respondError(c, err)
		return
	}
	type studyView struct {
		*models.StudyRow
		Computable bool   `json:"computable"`
		Reason     string `json:"reason,omitempty"`
	}
	views := make([]studyView, 0, len(rows))
	for _, row := range rows {
		view := studyView{StudyRow: row, Computable: true}
		if rec, err := row.ToRecord(); err != nil {
			view.Computable = false
			view.Reason = err.Error()
		} else if _, err := meta.Normalize(rec, measure); err != nil {
			view.Computable = false
			view.Reason = err.Error()
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"studies": views, "count": len(views)})
}

func (s *Server) handleUpdateStudy(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	studyID, ok := s.uuidParam(c, "studyID")
	if !ok {
		return
	}

	row, err := s.studies.GetByID(c.Request.Context(), studyID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if row.ReviewID != review.ID {
		s.respondError(c, core.ErrStudyNotFound)
		return
	}

	var req studyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := req.toRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := study.Record{
		ID:       core.StudyID(studyID.String()),
		Label:    req.Label,
		Year:     req.Year,
		Subgroup: req.Subgroup,
		Data:     data,
		Excluded: row.Excluded,
	}
	updated, err := models.StudyRowFromRecord(review.ID, rec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	updated.CreatedAt = row.CreatedAt
	updated.Excluded = row.Excluded
	if err := s.studies.Update(c.Request.Context(), updated); err != nil {
		s.respondError(c, err)
		return
	}

	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := sess.UpdateStudy(rec); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteStudy(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	studyID, ok := s.uuidParam(c, "studyID")
	if !ok {
		return
	}

	row, err := s.studies.GetByID(c.Request.Context(), studyID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if row.ReviewID != review.ID {
		s.respondError(c, core.ErrStudyNotFound)
		return
	}

	if err := s.studies.Delete(c.Request.Context(), studyID); err != nil {
		s.respondError(c, err)
		return
	}

	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	_ = sess.RemoveStudy(core.StudyID(studyID.String())) // already gone from the store

	c.Status(http.StatusNoContent)
}

func (s *Server) handleExcludeStudy(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	studyID, ok := s.uuidParam(c, "studyID")
	if !ok {
		return
	}

	var req struct {
		Excluded bool `json:"excluded"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := s.studies.GetByID(c.Request.Context(), studyID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if row.ReviewID != review.ID {
		s.respondError(c, core.ErrStudyNotFound)
		return
	}
	row.Excluded = req.Excluded
	if err := s.studies.Update(c.Request.Context(), row); err != nil {
		s.respondError(c, err)
		return
	}

	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := sess.SetExcluded(core.StudyID(studyID.String()), req.Excluded); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

// session returns the review's analysis session, hydrating the study list
// from the store on first access.
func (s *Server) session(c *gin.Context, review *models.Review) (*app.Session, uuid.UUID, error) {
	measure, err := meta.ParseMeasure(review.Measure)
	if err != nil {
		return nil, uuid.Nil, err
	}
	model, err := meta.ParseModel(review.Method)
	if err != nil {
		return nil, uuid.Nil, err
	}

	sess := s.service.Session(core.ReviewID(review.ID.String()), measure, model)
	if len(sess.Studies()) == 0 {
		rows, err := s.studies.ListByReview(c.Request.Context(), review.ID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		records := make([]study.Record, 0, len(rows))
		for _, row := range rows {
			rec, err := row.ToRecord()
			if err != nil {
				s.logger.Warn("skipping undecodable study %s: %v", row.ID, err)
				continue
			}
			records = append(records, rec)
		}
		if len(records) > 0 {
			sess.SetStudies(records)
		}
	}
	return sess, review.ID, nil
}
