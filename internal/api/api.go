package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/joescharf/board/internal/editsession"
	"github.com/joescharf/board/internal/elevation"
	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/route"
	"github.com/joescharf/board/internal/store"
	"github.com/joescharf/board/internal/ui"
)

// Server provides the REST API and page handlers.
type Server struct {
	store    store.Store
	sessions *editsession.Manager
	pages    *ui.Renderer
	logger   *slog.Logger

	mu     sync.Mutex
	scroll map[string]*scrollState
}

// scrollState links a session's editing surface to its elevation trigger.
type scrollState struct {
	surface *elevation.Offset
	trigger *elevation.Trigger
}

// NewServer creates a new API server. A nil logger uses slog.Default().
func NewServer(s store.Store, logger *slog.Logger, opts ...editsession.Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := ui.NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{
		store:    s,
		sessions: editsession.NewManager(s, opts...),
		pages:    pages,
		logger:   logger,
		scroll:   make(map[string]*scrollState),
	}, nil
}

// Sessions exposes the edit-session registry, e.g. to cancel open
// sessions on shutdown.
func (s *Server) Sessions() *editsession.Manager { return s.sessions }

// Router returns an http.Handler for the API and page routes.
func (s *Server) Router() (http.Handler, error) {
	static, err := ui.StaticHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/projects", s.listProjects)
	mux.HandleFunc("GET /api/v1/projects/{id}", s.getProject)
	mux.HandleFunc("GET /api/v1/projects/{id}/issues", s.listProjectIssues)

	mux.HandleFunc("GET /api/v1/issues", s.listIssues)
	mux.HandleFunc("GET /api/v1/issues/{id}", s.getIssue)
	mux.HandleFunc("POST /api/v1/issues/{id}/edit", s.openSession)

	mux.HandleFunc("GET /api/v1/people", s.listPeople)
	mux.HandleFunc("GET /api/v1/route", s.resolveRoute)

	mux.HandleFunc("GET /api/v1/sessions/{id}", s.getSession)
	mux.HandleFunc("PATCH /api/v1/sessions/{id}", s.patchSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/scroll", s.scrollSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/save", s.saveSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/cancel", s.cancelSession)

	mux.HandleFunc("GET /{$}", s.homePage)
	mux.HandleFunc("GET /projects/{projectId}", s.projectPage)
	mux.HandleFunc("GET /projects/", s.issuePage)
	mux.Handle("GET /static/", static)

	return s.logRequests(corsMiddleware(mux)), nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps lookup failures to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// issueFilter builds a list filter from query parameters.
func issueFilter(r *http.Request) (store.IssueListFilter, error) {
	q := r.URL.Query()
	filter := store.IssueListFilter{
		ProjectID:  q.Get("project"),
		AssigneeID: q.Get("assignee"),
	}
	if v := q.Get("status"); v != "" {
		st, err := models.ParseIssueStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}
	if v := q.Get("priority"); v != "" {
		p, err := models.ParseIssuePriority(v)
		if err != nil {
			return filter, err
		}
		filter.Priority = p
	}
	return filter, nil
}

// --- Projects ---

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) listProjectIssues(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	filter, err := issueFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.ProjectID = project.ID

	issues, err := s.store.ListIssues(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

// --- Issues ---

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	filter, err := issueFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	issues, err := s.store.ListIssues(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.store.GetIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// --- People ---

func (s *Server) listPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.store.ListPeople(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, people)
}

// --- Routes ---

type routeView struct {
	ProjectID string `json:"projectId"`
	IssueID   string `json:"issueId"`
}

func (s *Server) resolveRoute(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	params, err := route.IssueDetail.Match(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, routeView{ProjectID: params["projectId"], IssueID: params["issueId"]})
}
