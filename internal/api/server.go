// Package api exposes the elicitation pipeline and the study administration
// endpoints over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"priorelicit/app"
	"priorelicit/internal"
)

// Server holds the gin engine and the services behind it
type Server struct {
	router      *gin.Engine
	elicitation *app.ElicitationService
	study       *app.StudyService
	logger      *internal.Logger
}

// NewServer creates a server with recovery, access logging and every route registered
func NewServer(elicitation *app.ElicitationService, study *app.StudyService, logger *internal.Logger) *Server {
	s := &Server{
		router:      gin.New(),
		elicitation: elicitation,
		study:       study,
		logger:      logger.With("api"),
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler for http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.POST("/priors/fit", s.handleFitPriors)
		api.POST("/distributions/fit", s.handleFitDistribution)
		api.POST("/distributions/fit-histogram", s.handleFitHistogram)
		api.POST("/predictive-checks", s.handlePredictiveChecks)

		api.GET("/admin/study-settings", s.handleGetSettings)
		api.POST("/admin/study-settings", s.handleSaveSettings)

		api.GET("/records", s.handleListRecords)
		api.POST("/records", s.handleCreateRecord)
		api.GET("/records/active", s.handleActiveRecord)
		api.GET("/records/:id", s.handleGetRecord)
		api.GET("/records/:id/report", s.handleRecordReport)
	}
}
