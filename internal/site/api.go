package site

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/queries"
)

func (s *Server) apiError(c *gin.Context, err error) {
	if errors.Is(err, content.ErrSingletonNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.logger.Error("content api error", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

func writeResult[T any](s *Server, c *gin.Context, res queries.Result[T]) {
	if res.Err != nil {
		s.apiError(c, res.Err)
		return
	}
	c.JSON(http.StatusOK, res.Data)
}

func (s *Server) apiPersonalInfo(c *gin.Context) {
	writeResult(s, c, s.queries.PersonalInfo.Fetch(c.Request.Context()))
}

func (s *Server) apiProjects(c *gin.Context) {
	res := s.queries.Projects.Fetch(c.Request.Context())
	if res.Err == nil {
		res.Data = content.FilterProjects(res.Data, c.Query("category"))
		if c.Query("featured") == "true" {
			res.Data = content.FeaturedProjects(res.Data)
		}
	}
	writeResult(s, c, res)
}

func (s *Server) apiSkills(c *gin.Context) {
	res := s.queries.Skills.Fetch(c.Request.Context())
	if res.Err == nil {
		res.Data = content.FilterSkills(res.Data, c.Query("category"))
	}
	writeResult(s, c, res)
}

func (s *Server) apiSkillStats(c *gin.Context) {
	res := s.queries.Skills.Fetch(c.Request.Context())
	if res.Err != nil {
		s.apiError(c, res.Err)
		return
	}
	c.JSON(http.StatusOK, content.ComputeSkillStats(res.Data))
}

func (s *Server) apiCertifications(c *gin.Context) {
	writeResult(s, c, s.queries.Certifications.Fetch(c.Request.Context()))
}

func (s *Server) apiJourneyTimeline(c *gin.Context) {
	writeResult(s, c, s.queries.JourneyTimeline.Fetch(c.Request.Context()))
}
