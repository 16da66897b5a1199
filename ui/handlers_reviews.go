package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gometa/domain/core"
	"gometa/domain/meta"
	apperrors "gometa/internal/errors"
	"gometa/models"
)

type reviewRequest struct {
	Title    string `json:"title" binding:"required"`
	Question string `json:"question"`
	Measure  string `json:"measure" binding:"required"`
	Method   string `json:"method" binding:"required"`
}

func (s *Server) handleCreateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	measure, err := meta.ParseMeasure(req.Measure)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	model, err := meta.ParseModel(req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review := models.NewReview(req.Title, req.Question, string(measure), string(model))
	if err := s.reviews.Create(c.Request.Context(), review); err != nil {
		s.respondError(c, apperrors.Wrap(err, "failed to create review"))
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (s *Server) handleListReviews(c *gin.Context) {
	reviews, err := s.reviews.List(c.Request.Context(), 100)
	if err != nil {
		s.respondError(c, apperrors.Wrap(err, "failed to list reviews"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

func (s *Server) handleGetReview(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, review)
}

func (s *Server) handleUpdateReview(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	measure, err := meta.ParseMeasure(req.Measure)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	model, err := meta.ParseModel(req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review.Title = req.Title
	review.Question = req.Question
	review.Measure = string(measure)
	review.Method = string(model)
	if err := s.reviews.Update(c.Request.Context(), review); err != nil {
		s.respondError(c, err)
		return
	}

	// Reconfiguring the measure or model invalidates every cached result.
	sess := s.service.Session(core.ReviewID(review.ID.String()), measure, model)
	sess.Configure(measure, model)

	c.JSON(http.StatusOK, review)
}

func (s *Server) handleDeleteReview(c *gin.Context) {
	id, ok := s.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := s.reviews.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	s.service.Drop(core.ReviewID(id.String()))
	c.Status(http.StatusNoContent)
}

// reviewFromPath resolves the :id path param into a stored review
func (s *Server) reviewFromPath(c *gin.Context) (*models.Review, bool) {
	id, ok := s.uuidParam(c, "id")
	if !ok {
		return nil, false
	}
	review, err := s.reviews.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return review, true
}

func (s *Server) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain and app errors onto HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case core.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrInsufficientStudies), errors.Is(err, core.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperrors.GetCode(err) == apperrors.CodeInvalidInput,
		apperrors.GetCode(err) == apperrors.CodeValidationError,
		apperrors.GetCode(err) == apperrors.CodeImportError:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
