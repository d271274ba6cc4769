package ui

import (
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"csvquery/adapters/excel"
	"csvquery/internal/api"
	"csvquery/internal/errors"
	"csvquery/internal/profiling"
	"csvquery/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionMaxAge = 24 * 60 * 60

// sectionToggle is one checkbox of the overview section selector
type sectionToggle struct {
	Name    profiling.Section
	Enabled bool
}

// pageData is everything the index template renders
type pageData struct {
	SessionID   string
	Filename    string
	Overview    *profiling.OverviewReport
	Transcript  []session.Entry
	Sections    []sectionToggle
	UploadError string
	AskError    string
	Question    string
	Accept      string
	MaxUploadMB int64
	UploadURL   template.URL
	AskURL      template.URL
}

// currentSession resolves the browser's session and refreshes its cookie
func (s *Server) currentSession(c *gin.Context) *session.Session {
	id, _ := c.Cookie(api.SessionCookie)
	sess := s.store.GetOrCreate(id)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(api.SessionCookie, sess.ID().String(), sessionMaxAge, "/", "", s.secure, true)
	return sess
}

// selectedSections reads ?sections=... falling back to the configured defaults
func (s *Server) selectedSections(c *gin.Context) []profiling.Section {
	names := c.QueryArray("sections")
	if len(names) == 0 {
		return s.sections
	}
	sections, err := profiling.ParseSections(names)
	if err != nil || len(sections) == 0 {
		log.Printf("[Server] ignoring section selection %v: %v", names, err)
		return s.sections
	}
	return sections
}

// buildPage assembles the full page for a session
func (s *Server) buildPage(c *gin.Context, sess *session.Session) pageData {
	sections := s.selectedSections(c)

	query := ""
	if names := c.QueryArray("sections"); len(names) > 0 {
		query = "?" + url.Values{"sections": names}.Encode()
	}

	data := pageData{
		SessionID:   sess.ID().String(),
		Filename:    sess.Source(),
		Transcript:  sess.Transcript(),
		Accept:      strings.Join(excel.SupportedExtensions, ","),
		MaxUploadMB: s.maxUpload >> 20,
		UploadURL:   template.URL("/upload" + query),
		AskURL:      template.URL("/ask" + query),
	}

	enabled := make(map[profiling.Section]bool, len(sections))
	for _, sec := range sections {
		enabled[sec] = true
	}
	for _, sec := range profiling.AllSections() {
		data.Sections = append(data.Sections, sectionToggle{Name: sec, Enabled: enabled[sec]})
	}

	if report := sess.Overview(); report != nil {
		view := report.WithSections(sections)
		data.Overview = &view
	}
	return data
}

// handleIndex renders the upload form, overview and transcript
func (s *Server) handleIndex(c *gin.Context) {
	sess := s.currentSession(c)
	s.renderTemplate(c, http.StatusOK, "index.html", s.buildPage(c, sess))
}

// handleUpload loads a new table into the session and re-renders the page
func (s *Server) handleUpload(c *gin.Context) {
	sess := s.currentSession(c)

	status := http.StatusOK
	var uploadErr error

	filename, data, err := api.ReadUpload(c.Writer, c.Request, s.maxUpload)
	if err == nil {
		_, err = sess.Load(filename, data)
	}
	if err != nil {
		uploadErr = err
		status = api.StatusFor(err)
	}

	page := s.buildPage(c, sess)
	if uploadErr != nil {
		page.UploadError = errors.UserMessage(uploadErr)
	}
	s.renderTemplate(c, status, "index.html", page)
}

// handleAsk submits a question and re-renders the page with the answer or the error
func (s *Server) handleAsk(c *gin.Context) {
	sess := s.currentSession(c)
	question := c.PostForm("question")

	status := http.StatusOK
	_, err := sess.Ask(c.Request.Context(), question)

	page := s.buildPage(c, sess)
	if err != nil {
		status = api.StatusFor(err)
		page.AskError = errors.UserMessage(err)
		page.Question = question
	}
	s.renderTemplate(c, status, "index.html", page)
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
}
