package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"csvquery/internal/profiling"
	"csvquery/internal/session"

	"github.com/gin-gonic/gin"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Options configures the web server
type Options struct {
	Store          *session.Store
	API            http.Handler // mounted under /api when set
	MaxUploadBytes int64
	Sections       []profiling.Section // default overview sections
	SecureCookie   bool
}

// Server represents the web server for the upload and question page
type Server struct {
	router    *gin.Engine
	store     *session.Store
	templates *template.Template
	maxUpload int64
	sections  []profiling.Section
	secure    bool
}

// NewServer creates the server, parses the embedded templates and registers routes
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if len(opts.Sections) == 0 {
		opts.Sections = profiling.AllSections()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}

	funcMap := template.FuncMap{
		"num":      formatNumber,
		"add":      func(a, b int) int { return a + b },
		"markdown": renderMarkdown,
		"clock":    func(t time.Time) string { return t.Format("15:04:05") },
		"upper":    strings.ToUpper,
	}

	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		router:    router,
		store:     opts.Store,
		templates: templates,
		maxUpload: opts.MaxUploadBytes,
		sections:  opts.Sections,
		secure:    opts.SecureCookie,
	}

	if err := s.setupStatic(); err != nil {
		return nil, err
	}
	s.setupRoutes(opts.API)
	return s, nil
}

// setupStatic serves the embedded stylesheet
func (s *Server) setupStatic() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes(api http.Handler) {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/ask", s.handleAsk)
	s.router.GET("/healthz", s.handleHealth)

	if api != nil {
		s.router.Any("/api/*path", gin.WrapH(http.StripPrefix("/api", api)))
	}
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("[Server] Starting csvquery UI on http://%s", addr)
	return s.router.Run(addr)
}
