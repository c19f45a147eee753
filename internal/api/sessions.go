package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joescharf/board/internal/editsession"
	"github.com/joescharf/board/internal/elevation"
	"github.com/joescharf/board/internal/models"
)

type personView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type selectionView struct {
	State  string      `json:"state"`
	Person *personView `json:"person"`
}

type sessionView struct {
	ID          string               `json:"id"`
	IssueID     string               `json:"issueId"`
	ProjectID   string               `json:"projectId"`
	Type        models.IssueType     `json:"type"`
	Summary     string               `json:"summary"`
	Description string               `json:"description"`
	Status      models.IssueStatus   `json:"status"`
	Priority    models.IssuePriority `json:"priority"`
	Reporter    selectionView        `json:"reporter"`
	Assignee    selectionView        `json:"assignee"`
	Due         string               `json:"due"`
	Changed     []editsession.Field  `json:"changed"`
	Header      string               `json:"header"`
	Footer      string               `json:"footer"`
	People      []personView         `json:"people,omitempty"`
}

func toPersonView(p *models.Person) *personView {
	if p == nil {
		return nil
	}
	return &personView{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
}

func toSelectionView(sel editsession.Selection, def *models.Person) selectionView {
	return selectionView{State: sel.State().String(), Person: toPersonView(sel.Resolve(def))}
}

func (s *Server) viewSession(id string, sess *editsession.Session, withPeople bool) sessionView {
	def := sess.DefaultPerson()
	v := sessionView{
		ID:          id,
		IssueID:     sess.IssueID(),
		ProjectID:   sess.ProjectID(),
		Type:        sess.IssueType(),
		Summary:     sess.Summary(),
		Description: sess.Description().Text,
		Status:      sess.Status(),
		Priority:    sess.Priority(),
		Reporter:    toSelectionView(sess.Reporter(), def),
		Assignee:    toSelectionView(sess.Assignee(), def),
		Due:         models.FormatDate(sess.DueDate()),
		Changed:     sess.Changed(),
		Header:      elevation.Flat.String(),
		Footer:      elevation.Raised.String(),
	}
	if st := s.scrollFor(id); st != nil {
		v.Header = st.trigger.Header().String()
		v.Footer = st.trigger.Footer().String()
	}
	if withPeople {
		for _, p := range sess.People() {
			v.People = append(v.People, *toPersonView(&p))
		}
	}
	return v
}

func (s *Server) scrollFor(id string) *scrollState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll[id]
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	issueID := r.PathValue("id")

	var id string
	id, sess, err := s.sessions.Open(r.Context(), issueID, func(o editsession.Outcome) {
		s.mu.Lock()
		st := s.scroll[id]
		delete(s.scroll, id)
		s.mu.Unlock()
		if st != nil {
			st.trigger.Stop()
		}
		s.logger.Info("edit session closed", "session", id, "issue", issueID, "outcome", o.String())
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	surface := elevation.NewOffset()
	s.mu.Lock()
	s.scroll[id] = &scrollState{surface: surface, trigger: elevation.Watch(surface, 0, nil)}
	s.mu.Unlock()

	s.logger.Info("edit session opened", "session", id, "issue", issueID)
	writeJSON(w, http.StatusCreated, s.viewSession(id, sess, true))
}

// lookupSession writes a 404 and returns false when the session is not open.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (string, *editsession.Session, bool) {
	id := r.PathValue("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("edit session not found: %s", id))
		return "", nil, false
	}
	return id, sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.viewSession(id, sess, true))
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, editsession.ErrClosed) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// patchSession applies the fields present in the JSON body. A null
// reporter or assignee clears the selector; a null or empty due clears the
// date.
func (s *Server) patchSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.applyPatch(r, sess, patch); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewSession(id, sess, false))
}

// applyPatch validates every present key before touching the session, so
// a rejected patch leaves the session as it was.
func (s *Server) applyPatch(r *http.Request, sess *editsession.Session, patch map[string]any) error {
	str := func(key string) (string, bool, error) {
		v, present := patch[key]
		if !present {
			return "", false, nil
		}
		if v == nil {
			return "", true, nil
		}
		sv, ok := v.(string)
		if !ok {
			return "", true, fmt.Errorf("%s must be a string", key)
		}
		return sv, true, nil
	}

	var edits []func() error

	if v, ok, err := str("summary"); err != nil {
		return err
	} else if ok {
		edits = append(edits, func() error { return sess.SetSummary(v) })
	}
	if v, ok, err := str("description"); err != nil {
		return err
	} else if ok {
		edits = append(edits, func() error { return sess.SetDescription(v) })
	}
	if v, ok, err := str("status"); err != nil {
		return err
	} else if ok {
		st, err := models.ParseIssueStatus(v)
		if err != nil {
			return err
		}
		edits = append(edits, func() error { return sess.SetStatus(st) })
	}
	if v, ok, err := str("priority"); err != nil {
		return err
	} else if ok {
		pr, err := models.ParseIssuePriority(v)
		if err != nil {
			return err
		}
		edits = append(edits, func() error { return sess.SetPriority(pr) })
	}

	for _, sel := range []struct {
		key   string
		apply func(*models.Person) error
	}{
		{"reporter", sess.SelectReporter},
		{"assignee", sess.SelectAssignee},
	} {
		v, ok, err := str(sel.key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		var person *models.Person
		if v != "" {
			person, err = s.store.GetPerson(r.Context(), v)
			if err != nil {
				return fmt.Errorf("%s: %w", sel.key, err)
			}
		}
		apply := sel.apply
		edits = append(edits, func() error { return apply(person) })
	}

	if v, ok, err := str("due"); err != nil {
		return err
	} else if ok {
		var due *time.Time
		if v != "" {
			d, err := time.Parse(models.DateLayout, v)
			if err != nil {
				return fmt.Errorf("due must be YYYY-MM-DD: %w", err)
			}
			due = &d
		}
		edits = append(edits, func() error { return sess.SetDueDate(due) })
	}

	if closed, _ := sess.Closed(); closed {
		return editsession.ErrClosed
	}
	for _, edit := range edits {
		if err := edit(); err != nil {
			return err
		}
	}
	return nil
}

type scrollRequest struct {
	Offset int `json:"offset"`
}

type scrollResponse struct {
	Scrolled bool   `json:"scrolled"`
	Header   string `json:"header"`
	Footer   string `json:"footer"`
}

func (s *Server) scrollSession(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	st := s.scrollFor(id)
	if st == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("edit session not found: %s", id))
		return
	}
	st.surface.SetOffset(req.Offset)
	writeJSON(w, http.StatusOK, scrollResponse{
		Scrolled: st.trigger.Scrolled(),
		Header:   st.trigger.Header().String(),
		Footer:   st.trigger.Footer().String(),
	})
}

type closeResponse struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		if errors.Is(err, editsession.ErrClosed) {
			writeSessionError(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, closeResponse{ID: id, Outcome: editsession.OutcomeSaved.String()})
}

func (s *Server) cancelSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if err := sess.Cancel(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closeResponse{ID: id, Outcome: editsession.OutcomeCancelled.String()})
}
