package editsession

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/board/internal/store"
)

func TestManager_OpenGetClose(t *testing.T) {
	m := NewManager(newSource())
	ctx := context.Background()

	var got Outcome = -1
	id, sess, err := m.Open(ctx, sampleIssueID, func(o Outcome) { got = o })
	require.NoError(t, err)
	assert.Len(t, id, 26)

	found, ok := m.Get(id)
	require.True(t, ok)
	assert.Same(t, sess, found)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, sess.Save(ctx))
	assert.Equal(t, OutcomeSaved, got)
	_, ok = m.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestManager_OpenUnknownIssue(t *testing.T) {
	m := NewManager(newSource())
	_, _, err := m.Open(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestManager_ConcurrentOpenAndCancelAll(t *testing.T) {
	m := NewManager(newSource(), WithStoredPriority())
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _, err := m.Open(ctx, sampleIssueID, nil)
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 20)
	assert.Equal(t, 20, m.Len())

	m.CancelAll()
	assert.Equal(t, 0, m.Len())
}
