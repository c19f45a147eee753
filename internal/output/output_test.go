package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/sampledata"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestMessages(t *testing.T) {
	u, out, errOut := newTestUI()

	u.Info("hello %s", "world")
	u.Success("done %d", 42)
	u.Warning("careful %s", "now")
	u.Error("failed %s", "badly")

	assert.Contains(t, out.String(), "hello world")
	assert.Contains(t, out.String(), "done 42")
	assert.Contains(t, errOut.String(), "careful now")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog(t *testing.T) {
	u, out, _ := newTestUI()
	u.VerboseLog("hidden")
	assert.Empty(t, out.String())

	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestDryRunMsg(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRunMsg("would import %d issues", 4)
	assert.Empty(t, errOut.String())

	u.DryRun = true
	u.DryRunMsg("would import %d issues", 4)
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would import 4 issues")
}

func TestStatusAndPriorityColor(t *testing.T) {
	for _, s := range models.IssueStatuses {
		assert.Contains(t, StatusColor(s), string(s))
	}
	for _, p := range models.IssuePriorities {
		assert.Contains(t, PriorityColor(p), string(p))
	}
	assert.Equal(t, "unknown", StatusColor("unknown"))
	assert.Equal(t, "unknown", PriorityColor("unknown"))
}

func TestPersonName(t *testing.T) {
	assert.Equal(t, "Ada", PersonName(&models.Person{Name: "Ada"}))
	assert.Contains(t, PersonName(nil), "-")
}

func TestIssueTable(t *testing.T) {
	u, out, _ := newTestUI()
	ds := sampledata.Default()

	require.NoError(t, u.IssueTable(ds.Issues))

	result := out.String()
	for _, i := range ds.Issues {
		assert.Contains(t, result, i.ID)
	}
	assert.Contains(t, result, "Mara Oyelaran")
	assert.Contains(t, result, "2023-01-01")
}

func TestPeopleTable(t *testing.T) {
	u, out, _ := newTestUI()
	ds := sampledata.Default()

	require.NoError(t, u.PeopleTable(ds.People))
	assert.Contains(t, out.String(), "Unassigned")
	assert.Contains(t, out.String(), "Priya Raman")
}

func TestJSON(t *testing.T) {
	u, out, _ := newTestUI()
	require.NoError(t, u.JSON(map[string]int{"count": 3}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got["count"])
}
