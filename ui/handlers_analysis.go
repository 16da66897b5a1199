package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gometa/app"
	"gometa/domain/meta"
	"gometa/models"
)

// handleRunAnalysis executes the requested analysis type and persists the
// resulting snapshot. type=main (default) | subgroups | sensitivity.
func (s *Server) handleRunAnalysis(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	sess, reviewID, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}

	switch c.DefaultQuery("type", "main") {
	case "main":
		result, err := sess.Main()
		if err != nil {
			s.respondError(c, err)
			return
		}
		run := models.NewAnalysisRun(reviewID, app.KeyMain, result)
		if err := s.analyses.SaveRun(c.Request.Context(), run); err != nil {
			s.logger.Error("failed to persist analysis run: %v", err)
		}
		c.JSON(http.StatusOK, result)

	case "subgroups":
		results, err := s.service.RunSubgroups(c.Request.Context(), sess)
		if err != nil {
			s.respondError(c, err)
			return
		}
		for _, sub := range results {
			if sub.Result == nil {
				continue
			}
			run := models.NewAnalysisRun(reviewID, app.SubgroupKey(sub.Label), sub.Result)
			if err := s.analyses.SaveRun(c.Request.Context(), run); err != nil {
				s.logger.Error("failed to persist subgroup run %q: %v", sub.Label, err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"subgroups": results, "count": len(results)})

	case "sensitivity":
		results, err := s.service.RunLeaveOneOut(c.Request.Context(), sess)
		if err != nil {
			s.respondError(c, err)
			return
		}
		for _, sens := range results {
			if sens.Result == nil {
				continue
			}
			run := models.NewAnalysisRun(reviewID, app.SensitivityKey(sens.ExcludedStudy), sens.Result)
			if err := s.analyses.SaveRun(c.Request.Context(), run); err != nil {
				s.logger.Error("failed to persist sensitivity run %s: %v", sens.ExcludedStudy, err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"sensitivity": results, "count": len(results)})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be main, subgroups or sensitivity"})
	}
}

// handleAnalysisSummary returns the text, markdown and HTML renderings of
// the main analysis.
func (s *Server) handleAnalysisSummary(c *gin.Context) {
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

	profile, err := meta.Describe(result.Estimates)
	if err != nil {
		s.respondError(c, err)
		return
	}

	studies := sess.Studies()
	c.JSON(http.StatusOK, gin.H{
		"text":     s.renderService.SummaryText(review.Title, studies, result),
		"markdown": s.renderService.SummaryMarkdown(review.Title, studies, result),
		"html":     s.renderService.SummaryHTML(review.Title, studies, result),
		"profile":  profile,
	})
}

func (s *Server) handleForestLayout(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	layout, err := sess.ForestLayout()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (s *Server) handleFunnelLayout(c *gin.Context) {
	review, ok := s.reviewFromPath(c)
	if !ok {
		return
	}
	sess, _, err := s.session(c, review)
	if err != nil {
		s.respondError(c, err)
		return
	}
	layout, err := sess.FunnelLayout()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}
