package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"priorelicit/app"
	"priorelicit/internal/errors"
)

type fitSamplesRequest struct {
	Samples []float64 `json:"samples"`
	TopN    int       `json:"top_n"`
}

type fitHistogramRequest struct {
	BinEdges []float64 `json:"bin_edges"`
	Counts   []float64 `json:"counts"`
	TopN     int       `json:"top_n"`
}

func (s *Server) handleFitPriors(c *gin.Context) {
	var req app.PriorRequest
	if !s.bindJSON(c, &req) {
		return
	}
	res, err := s.elicitation.FitPriors(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleFitDistribution(c *gin.Context) {
	var req fitSamplesRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TopN < 0 {
		s.respondError(c, errors.InvalidInput("top_n must not be negative"))
		return
	}
	fits, err := s.elicitation.FitSamples(c.Request.Context(), req.Samples, req.TopN)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fits)
}

func (s *Server) handleFitHistogram(c *gin.Context) {
	var req fitHistogramRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.TopN < 0 {
		s.respondError(c, errors.InvalidInput("top_n must not be negative"))
		return
	}
	fits, err := s.elicitation.FitHistogram(c.Request.Context(), req.BinEdges, req.Counts, req.TopN)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fits)
}

func (s *Server) handlePredictiveChecks(c *gin.Context) {
	var req app.PredictiveCheckRequest
	if !s.bindJSON(c, &req) {
		return
	}
	checks, err := s.elicitation.RunPredictiveCheck(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictive_checks": checks})
}
