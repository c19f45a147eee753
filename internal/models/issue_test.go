package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueClone_DoesNotAliasPeople(t *testing.T) {
	orig := &Issue{
		ID:       "i1",
		Summary:  "Fix login",
		Reporter: &Person{ID: "p1", Name: "Ada"},
		Assignee: &Person{ID: "p2", Name: "Linus"},
	}

	c := orig.Clone()
	c.Reporter.Name = "changed"
	c.Assignee = nil
	c.Summary = "other"

	assert.Equal(t, "Ada", orig.Reporter.Name)
	assert.NotNil(t, orig.Assignee)
	assert.Equal(t, "Fix login", orig.Summary)
}

func TestIssueClone_Nil(t *testing.T) {
	var i *Issue
	assert.Nil(t, i.Clone())
}

func TestIssueDueDate(t *testing.T) {
	i := &Issue{Due: "2023-01-01"}
	d, err := i.DueDate()
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), *d)
	assert.Equal(t, "2023-01-01", FormatDate(d))

	empty := &Issue{}
	d, err = empty.DueDate()
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Equal(t, "", FormatDate(nil))

	bad := &Issue{Due: "01/01/2023"}
	_, err = bad.DueDate()
	assert.Error(t, err)
}

func TestParseEnumerations(t *testing.T) {
	s, err := ParseIssueStatus("In_Progress")
	require.NoError(t, err)
	assert.Equal(t, IssueStatusInProgress, s)

	_, err = ParseIssueStatus("blocked")
	assert.ErrorContains(t, err, "invalid status")

	p, err := ParseIssuePriority("highest")
	require.NoError(t, err)
	assert.Equal(t, IssuePriorityHighest, p)

	_, err = ParseIssuePriority("urgent")
	assert.ErrorContains(t, err, "invalid priority")

	ty, err := ParseIssueType("bug")
	require.NoError(t, err)
	assert.Equal(t, IssueTypeBug, ty)

	_, err = ParseIssueType("")
	assert.Error(t, err)
}
