package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/board/internal/editsession"
)

func openTestSession(t *testing.T, router http.Handler) sessionView {
	t.Helper()
	w := do(t, router, "POST", "/api/v1/issues/"+sampleIssueID+"/edit", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var v sessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestOpenSession_SeedsView(t *testing.T) {
	_, router, _ := setupTestServer(t)
	v := openTestSession(t, router)

	assert.Len(t, v.ID, 26)
	assert.Equal(t, sampleIssueID, v.IssueID)
	assert.Equal(t, "project1", v.ProjectID)
	assert.Equal(t, "2023-01-01", v.Due)
	assert.Equal(t, editsession.DefaultPriority, v.Priority)
	assert.Equal(t, "selected", v.Reporter.State)
	require.NotNil(t, v.Reporter.Person)
	assert.Equal(t, "Tomasz Keller", v.Reporter.Person.Name)
	assert.Equal(t, "flat", v.Header)
	assert.Equal(t, "raised", v.Footer)
	assert.Len(t, v.People, 4)
	assert.Empty(t, v.Changed)
}

func TestOpenSession_UnknownIssue(t *testing.T) {
	_, router, _ := setupTestServer(t)
	w := do(t, router, "POST", "/api/v1/issues/missing/edit", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchSession(t *testing.T) {
	_, router, _ := setupTestServer(t)
	v := openTestSession(t, router)
	people := v.People

	body := `{"summary":" exact ","status":"done","priority":"lowest","assignee":"` + people[2].ID + `","reporter":null,"due":"2024-05-06"}`
	w := do(t, router, "PATCH", "/api/v1/sessions/"+v.ID, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got sessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, " exact ", got.Summary)
	assert.Equal(t, "done", string(got.Status))
	assert.Equal(t, "lowest", string(got.Priority))
	assert.Equal(t, people[2].ID, got.Assignee.Person.ID)
	assert.Equal(t, "cleared", got.Reporter.State)
	require.NotNil(t, got.Reporter.Person)
	assert.Equal(t, people[0].ID, got.Reporter.Person.ID)
	assert.Equal(t, "2024-05-06", got.Due)
	assert.ElementsMatch(t, []editsession.Field{
		editsession.FieldSummary, editsession.FieldStatus, editsession.FieldPriority,
		editsession.FieldAssignee, editsession.FieldReporter, editsession.FieldDueDate,
	}, got.Changed)

	w = do(t, router, "PATCH", "/api/v1/sessions/"+v.ID, `{"due":null,"description":"text"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "", got.Due)
	assert.Equal(t, "text", got.Description)
}

func TestPatchSession_BadInput(t *testing.T) {
	_, router, _ := setupTestServer(t)
	v := openTestSession(t, router)

	for _, body := range []string{
		`not json`,
		`{"status":"blocked"}`,
		`{"priority":"p0"}`,
		`{"summary":42}`,
		`{"due":"01/02/2023"}`,
		`{"assignee":"nobody"}`,
	} {
		w := do(t, router, "PATCH", "/api/v1/sessions/"+v.ID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := do(t, router, "PATCH", "/api/v1/sessions/unknown", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchSession_RejectedPatchChangesNothing(t *testing.T) {
	_, router, _ := setupTestServer(t)
	v := openTestSession(t, router)

	for _, body := range []string{
		`{"summary":"half applied","status":"blocked"}`,
		`{"description":"half applied","assignee":"nobody"}`,
		`{"priority":"low","due":"tomorrow"}`,
	} {
		w := do(t, router, "PATCH", "/api/v1/sessions/"+v.ID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := do(t, router, "GET", "/api/v1/sessions/"+v.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got sessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, v.Summary, got.Summary)
	assert.Equal(t, v.Description, got.Description)
	assert.Equal(t, v.Priority, got.Priority)
	assert.Empty(t, got.Changed)
}

func TestScrollSession(t *testing.T) {
	_, router, _ := setupTestServer(t)
	v := openTestSession(t, router)

	w := do(t, router, "POST", "/api/v1/sessions/"+v.ID+"/scroll", `{"offset":12}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sr scrollResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sr))
	assert.True(t, sr.Scrolled)
	assert.Equal(t, "raised", sr.Header)
	assert.Equal(t, "flat", sr.Footer)

	w = do(t, router, "GET", "/api/v1/sessions/"+v.ID, "")
	var got sessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "raised", got.Header)

	w = do(t, router, "POST", "/api/v1/sessions/"+v.ID+"/scroll", `{"offset":0}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sr))
	assert.False(t, sr.Scrolled)
	assert.Equal(t, "flat", sr.Header)
}

func TestCloseSession_LeavesStoreUnchanged(t *testing.T) {
	for _, action := range []string{"save", "cancel"} {
		t.Run(action, func(t *testing.T) {
			srv, router, s := setupTestServer(t)
			before, err := s.GetIssue(context.Background(), sampleIssueID)
			require.NoError(t, err)

			v := openTestSession(t, router)
			w := do(t, router, "PATCH", "/api/v1/sessions/"+v.ID, `{"summary":"changed","reporter":null}`)
			require.Equal(t, http.StatusOK, w.Code)

			w = do(t, router, "POST", "/api/v1/sessions/"+v.ID+"/"+action, "")
			require.Equal(t, http.StatusOK, w.Code)
			var cr closeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
			assert.Equal(t, v.ID, cr.ID)

			after, err := s.GetIssue(context.Background(), sampleIssueID)
			require.NoError(t, err)
			assert.Equal(t, before, after)

			assert.Equal(t, 0, srv.Sessions().Len())
			assert.Nil(t, srv.scrollFor(v.ID))

			w = do(t, router, "GET", "/api/v1/sessions/"+v.ID, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}
