package site

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
)

func (s *Server) render(c *gin.Context, status int, name, title string, data gin.H) {
	data["Title"] = title
	data["SiteName"] = s.siteName
	data["Path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

// fetchFailed renders the reload prompt for a failed content read.
func (s *Server) fetchFailed(c *gin.Context, what string, err error) {
	s.logger.Error("error fetching content", "what", what, "error", err)
	s.render(c, http.StatusServiceUnavailable, "error.html", "Something went wrong", gin.H{
		"What":   what,
		"Reload": c.Request.URL.RequestURI(),
	})
}

func (s *Server) home(c *gin.Context) {
	ctx := c.Request.Context()
	info := s.queries.PersonalInfo.Fetch(ctx)
	if info.Err != nil {
		s.fetchFailed(c, "profile", info.Err)
		return
	}
	projects := s.queries.Projects.Fetch(ctx)
	if projects.Err != nil {
		s.fetchFailed(c, "projects", projects.Err)
		return
	}

	featured := content.FeaturedProjects(projects.Data)
	views := make([]content.ProjectView, 0, len(featured))
	for _, p := range featured {
		views = append(views, content.ViewOf(p))
	}
	s.render(c, http.StatusOK, "home.html", info.Data.Name, gin.H{
		"Info":     info.Data,
		"Featured": views,
	})
}

type tab struct {
	Label  string
	Active bool
}

func tabsFor(labels []string, active string) []tab {
	tabs := make([]tab, 0, len(labels))
	for i, l := range labels {
		tabs = append(tabs, tab{Label: l, Active: l == active || (active == "" && i == 0)})
	}
	return tabs
}

func (s *Server) projects(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !slices.Contains(content.ProjectTabs(), category) {
		category = ""
	}
	res := s.queries.Projects.Fetch(c.Request.Context())
	if res.Err != nil {
		s.fetchFailed(c, "projects", res.Err)
		return
	}

	filtered := content.FilterProjects(res.Data, category)
	views := make([]content.ProjectView, 0, len(filtered))
	for _, p := range filtered {
		views = append(views, content.ViewOf(p))
	}
	s.render(c, http.StatusOK, "projects.html", "Projects", gin.H{
		"Tabs":     tabsFor(content.ProjectTabs(), category),
		"Projects": views,
	})
}

func (s *Server) skills(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !slices.Contains(content.SkillTabs(), category) {
		category = ""
	}
	res := s.queries.Skills.Fetch(c.Request.Context())
	if res.Err != nil {
		s.fetchFailed(c, "skills", res.Err)
		return
	}

	s.render(c, http.StatusOK, "skills.html", "Skills", gin.H{
		"Tabs":   tabsFor(content.SkillTabs(), category),
		"Stats":  content.ComputeSkillStats(res.Data),
		"Groups": content.GroupSkills(content.FilterSkills(res.Data, category)),
	})
}

func (s *Server) about(c *gin.Context) {
	ctx := c.Request.Context()
	info := s.queries.PersonalInfo.Fetch(ctx)
	if info.Err != nil {
		s.fetchFailed(c, "profile", info.Err)
		return
	}
	journey := s.queries.JourneyTimeline.Fetch(ctx)
	if journey.Err != nil {
		s.fetchFailed(c, "journey timeline", journey.Err)
		return
	}
	certs := s.queries.Certifications.Fetch(ctx)
	if certs.Err != nil {
		s.fetchFailed(c, "certifications", certs.Err)
		return
	}

	s.render(c, http.StatusOK, "about.html", "About", gin.H{
		"Info":           info.Data,
		"Journey":        journey.Data,
		"Certifications": certs.Data,
	})
}

// contactInfo is best effort: the form works without the profile.
func (s *Server) contactInfo(ctx context.Context) *content.PersonalInfo {
	res := s.queries.PersonalInfo.Fetch(ctx)
	if res.Err != nil {
		return nil
	}
	return &res.Data
}

func (s *Server) contactForm(c *gin.Context) {
	s.render(c, http.StatusOK, "contact.html", "Contact", gin.H{
		"Info":   s.contactInfo(c.Request.Context()),
		"Fields": contact.Submission{},
		"State":  contact.StateIdle.String(),
	})
}

// inFlight tracks clients with a contact submission pending.
type inFlight struct {
	mu      sync.Mutex
	clients map[string]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{clients: make(map[string]struct{})}
}

func (f *inFlight) acquire(client string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.clients[client]; busy {
		return false
	}
	f.clients[client] = struct{}{}
	return true
}

func (f *inFlight) release(client string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, client)
}

const inFlightMessage = "Your message is already being sent."

func (s *Server) contactSubmit(c *gin.Context) {
	form := contact.NewForm(s.submitter, s.logger, s.metrics)
	form.SetAll(contact.Submission{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	})
	data := gin.H{"Info": s.contactInfo(c.Request.Context())}

	client := c.ClientIP()
	if !s.contactInFlight.acquire(client) {
		s.logger.Warn("duplicate contact submission while one is pending")
		data["State"] = contact.StateSubmitting.String()
		data["Message"] = inFlightMessage
		data["Fields"] = form.Fields()
		s.render(c, http.StatusConflict, "contact.html", "Contact", data)
		return
	}
	defer s.contactInFlight.release(client)

	status := http.StatusOK
	err := form.Submit(c.Request.Context())
	switch {
	case errors.Is(err, contact.ErrInvalidSubmission):
		status = http.StatusBadRequest
		data["Invalid"] = "Please fill in your name, a valid email address, and a message."
	case errors.Is(err, contact.ErrNoSubmitter):
		status = http.StatusServiceUnavailable
	case err != nil:
		status = http.StatusBadGateway
	}
	data["State"] = form.State().String()
	data["Message"] = form.StatusMessage()
	data["Fields"] = form.Fields()
	s.render(c, status, "contact.html", "Contact", data)
}

func (s *Server) notFound(c *gin.Context) {
	s.logger.Warn("route not found", "path", c.Request.URL.Path)
	s.render(c, http.StatusNotFound, "not_found.html", "Page not found", gin.H{})
}
