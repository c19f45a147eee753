package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/joescharf/board/internal/route"
	"github.com/joescharf/board/internal/store"
)

func (s *Server) writePage(w http.ResponseWriter, status int, render func(w http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := render(w); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) notFoundPage(w http.ResponseWriter, title, message string) {
	s.writePage(w, http.StatusNotFound, func(w http.ResponseWriter) error {
		return s.pages.NotFound(w, title, message)
	})
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.pages.Home(w, projects)
	})
}

func (s *Server) projectPage(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), r.PathValue("projectId"))
	if errors.Is(err, store.ErrNotFound) {
		s.notFoundPage(w, "Project not found", err.Error())
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	issues, err := s.store.ListIssues(r.Context(), store.IssueListFilter{ProjectID: project.ID})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.pages.Project(w, project, issues)
	})
}

// issuePage serves every other path under /projects/. Paths that do not
// match the issue detail route get a "route not recognized" page.
func (s *Server) issuePage(w http.ResponseWriter, r *http.Request) {
	params, err := route.IssueDetail.Match(r.URL.Path)
	if err != nil {
		s.notFoundPage(w, "Route not recognized", err.Error())
		return
	}
	projectID, issueID := params["projectId"], params["issueId"]

	issue, err := s.store.GetIssue(r.Context(), issueID)
	if errors.Is(err, store.ErrNotFound) {
		s.notFoundPage(w, "Issue not found", err.Error())
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if issue.ProjectID != projectID {
		s.notFoundPage(w, "Issue not found", fmt.Sprintf("issue %s is not part of project %s", issueID, projectID))
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.pages.IssueDetail(w, project, issue)
	})
}
