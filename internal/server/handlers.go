package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/report"
)

// ComparisonStore is implemented by stores that can pick comparison baselines.
type ComparisonStore interface {
	ComparisonPair(ctx context.Context, site string, withID int64, since time.Time) (previous, current *database.StoredReport, err error)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) listSites(c *gin.Context) {
	sites, err := s.store.ListSites(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	if sites == nil {
		sites = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

func (s *Server) listAudits(c *gin.Context) {
	since, err := parseSince(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	history, err := s.store.GetAuditHistory(c.Request.Context(), c.Query("site"), since)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if history == nil {
		history = []database.AuditMetadata{}
	}
	c.JSON(http.StatusOK, gin.H{"audits": history})
}

func (s *Server) latestAudit(c *gin.Context) {
	stored, err := s.store.GetLatestAuditReport(c.Request.Context(), c.Query("site"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audit found"})
		return
	}
	c.JSON(http.StatusOK, stored)
}

// getAudit accepts a numeric database ID or a run ID.
func (s *Server) getAudit(c *gin.Context) {
	param := c.Param("id")

	var (
		stored *database.StoredReport
		err    error
	)
	if id, convErr := strconv.ParseInt(param, 10, 64); convErr == nil {
		stored, err = s.store.GetAuditReportByID(c.Request.Context(), id)
	} else {
		stored, err = s.store.GetAuditReportByRunID(c.Request.Context(), param)
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit " + param + " not found"})
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (s *Server) compare(c *gin.Context) {
	cs, ok := s.store.(ComparisonStore)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "comparison is not supported by this store"})
		return
	}

	site := c.Query("site")
	if site == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site is required"})
		return
	}
	var withID int64
	if v := c.Query("with"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "with must be a positive audit ID"})
			return
		}
		withID = id
	}
	since, err := parseSince(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previous, current, err := cs.ComparisonPair(c.Request.Context(), site, withID, since)
	switch {
	case errors.Is(err, database.ErrNoHistory), errors.Is(err, database.ErrAuditNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, database.ErrNotEnoughAudits), errors.Is(err, database.ErrSiteMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Compare(site, previous.Report, current.Report))
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

var errInvalidSince = errors.New("since must be YYYY-MM-DD")

func parseSince(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, errInvalidSince
	}
	return t, nil
}
