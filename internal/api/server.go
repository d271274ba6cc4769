package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"csvquery/internal/errors"
	"csvquery/internal/profiling"
	"csvquery/internal/session"
	"csvquery/internal/usage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// SessionHeader carries the session ID on API requests and responses
	SessionHeader = "X-Session-ID"
	// SessionCookie is shared with the web UI
	SessionCookie = "csvquery_session"
)

type contextKey struct{}

// Server is the JSON API
type Server struct {
	router    *chi.Mux
	store     *session.Store
	usage     *usage.Service
	maxUpload int64
}

// NewServer creates the API router. Routes are relative; mount it under a prefix
// with http.StripPrefix.
func NewServer(store *session.Store, usageSvc *usage.Service, maxUploadBytes int64) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		store:     store,
		usage:     usageSvc,
		maxUpload: maxUploadBytes,
	}

	router.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Post("/table", s.uploadTable)
		r.Get("/overview", s.overview)
		r.Post("/questions", s.askQuestion)
		r.Get("/transcript", s.transcript)
		r.Get("/history", s.history)
	})

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// withSession resolves the caller's session from the header or cookie
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}
		}

		sess := s.store.GetOrCreate(id)
		w.Header().Set(SessionHeader, sess.ID().String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(contextKey{}).(*session.Session)
}

// uploadTable handles POST /table
func (s *Server) uploadTable(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	filename, data, err := ReadUpload(w, r, s.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := sess.Load(filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": sess.ID(),
		"filename":   filename,
		"overview":   report,
	})
}

// overview handles GET /overview?section=shape&section=missing
func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	report := sess.Overview()
	if report == nil {
		writeError(w, errors.InvalidInput("upload a CSV file first"))
		return
	}

	if names := r.URL.Query()["section"]; len(names) > 0 {
		sections, err := profiling.ParseSections(names)
		if err != nil {
			writeError(w, errors.InvalidInput(err.Error()))
			return
		}
		filtered := report.WithSections(sections)
		report = &filtered
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   sess.ID(),
		"filename":     sess.Source(),
		"overview":     report,
		"missing_view": report.MissingView(),
	})
}

type askRequest struct {
	Question string `json:"question"`
}

// askQuestion handles POST /questions
func (s *Server) askQuestion(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("expected a JSON body like {\"question\": \"...\"}"))
		return
	}

	entry, err := sess.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// transcript handles GET /transcript
func (s *Server) transcript(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID(),
		"entries":    sess.Transcript(),
	})
}

// history handles GET /history?limit=20, listing logged attempts including failures
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	if !s.usage.Enabled() {
		writeError(w, errors.New(errors.CodeNotFound, "question log is not enabled"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := s.usage.History(r.Context(), sess.ID().String(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID(),
		"entries":    entries,
	})
}

// StatusFor maps an error code to its HTTP status
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeParseError:
		return http.StatusBadRequest
	case errors.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.CodeAgentError:
		return http.StatusBadGateway
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] ERROR: %v", err)
	}

	code := errors.GetCode(err)
	if code == "UNKNOWN" {
		code = errors.CodeInternalError
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": errors.UserMessage(err),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}
