package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"priorelicit/internal/errors"
	"priorelicit/models"
)

const defaultListLimit = 50

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.study.Settings(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(c *gin.Context) {
	var settings models.StudySettings
	if !s.bindJSON(c, &settings) {
		return
	}
	saved, err := s.study.SaveSettings(c.Request.Context(), &settings)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) handleListRecords(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(c, errors.InvalidInput("limit must be an integer"))
			return
		}
		limit = n
	}
	records, err := s.study.Records(c.Request.Context(), c.Query("task_id"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) handleCreateRecord(c *gin.Context) {
	var rec models.Record
	if !s.bindJSON(c, &rec) {
		return
	}
	// identity and timestamp are assigned by the store
	rec.ID = ""
	rec.CreatedAt = time.Time{}
	created, err := s.study.CreateRecord(c.Request.Context(), &rec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	rec, err := s.study.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleActiveRecord(c *gin.Context) {
	rec, err := s.study.ActiveRecord(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleRecordReport(c *gin.Context) {
	page, err := s.study.RecordReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
