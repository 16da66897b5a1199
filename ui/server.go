package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gometa/app"
	"gometa/internal"
	"gometa/internal/config"
	"gometa/ports"
	"gometa/ui/services"
)

// Server is the review product's web server: review and study CRUD,
// analysis runs, plot layouts, import and export.
type Server struct {
	router        *gin.Engine
	config        *config.Config
	logger        *internal.Logger
	renderService *services.RenderService

	reviews  ports.ReviewRepository
	studies  ports.StudyRepository
	analyses ports.AnalysisRepository
	service  *app.AnalysisService
}

// NewServer wires the server with its repositories and analysis service
func NewServer(
	cfg *config.Config,
	logger *internal.Logger,
	reviews ports.ReviewRepository,
	studies ports.StudyRepository,
	analyses ports.AnalysisRepository,
	service *app.AnalysisService,
) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:        gin.New(),
		config:        cfg,
		logger:        logger,
		renderService: services.NewRenderService(),
		reviews:       reviews,
		studies:       studies,
		analyses:      analyses,
		service:       service,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(logger.With("http")))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.POST("/reviews", s.handleCreateReview)
		api.GET("/reviews", s.handleListReviews)
		api.GET("/reviews/:id", s.handleGetReview)
		api.PUT("/reviews/:id", s.handleUpdateReview)
		api.DELETE("/reviews/:id", s.handleDeleteReview)

		api.POST("/reviews/:id/studies", s.handleCreateStudy)
		api.GET("/reviews/:id/studies", s.handleListStudies)
		api.PUT("/reviews/:id/studies/:studyID", s.handleUpdateStudy)
		api.DELETE("/reviews/:id/studies/:studyID", s.handleDeleteStudy)
		api.POST("/reviews/:id/studies/:studyID/exclude", s.handleExcludeStudy)

		api.POST("/reviews/:id/analysis/run", s.handleRunAnalysis)
		api.GET("/reviews/:id/analysis/summary", s.handleAnalysisSummary)
		api.GET("/reviews/:id/plots/forest", s.handleForestLayout)
		api.GET("/reviews/:id/plots/funnel", s.handleFunnelLayout)

		api.POST("/reviews/:id/import", s.handleImportStudies)
		api.GET("/reviews/:id/export/summary", s.handleExportSummary)
		api.GET("/reviews/:id/export/workbook", s.handleExportWorkbook)
	}
}

// Run starts the HTTP server on the configured port
func (s *Server) Run() error {
	addr := ":" + s.config.Server.Port
	s.logger.Info("review server listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine { return s.router }

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
