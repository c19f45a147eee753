package elevation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrigger_FlipsOnThreshold(t *testing.T) {
	surface := NewOffset()
	var changes []bool
	trig := Watch(surface, 0, func(scrolled bool) { changes = append(changes, scrolled) })
	defer trig.Stop()

	assert.False(t, trig.Scrolled())
	assert.Equal(t, Flat, trig.Header())
	assert.Equal(t, Raised, trig.Footer())

	surface.SetOffset(0)
	assert.Empty(t, changes, "offset at threshold is not scrolled")

	surface.SetOffset(1)
	surface.SetOffset(40)
	assert.True(t, trig.Scrolled())
	assert.Equal(t, Raised, trig.Header())
	assert.Equal(t, Flat, trig.Footer())

	surface.SetOffset(0)
	assert.Equal(t, []bool{true, false}, changes)
	assert.Equal(t, Flat, trig.Header())
}

func TestTrigger_CustomThreshold(t *testing.T) {
	surface := NewOffset()
	trig := Watch(surface, 10, nil)
	surface.SetOffset(10)
	assert.False(t, trig.Scrolled())
	surface.SetOffset(11)
	assert.True(t, trig.Scrolled())
}

func TestTrigger_StopIgnoresLaterEvents(t *testing.T) {
	surface := NewOffset()
	calls := 0
	trig := Watch(surface, 0, func(bool) { calls++ })

	trig.Stop()
	trig.Stop()
	surface.SetOffset(5)

	assert.Equal(t, 0, calls)
	assert.False(t, trig.Scrolled())
	assert.Equal(t, 5, surface.Current())
}

func TestOffset_NegativeClampsToZero(t *testing.T) {
	surface := NewOffset()
	surface.SetOffset(-3)
	assert.Equal(t, 0, surface.Current())
}

func TestOffset_MultipleSubscribers(t *testing.T) {
	surface := NewOffset()
	a := Watch(surface, 0, nil)
	b := Watch(surface, 0, nil)
	a.Stop()

	surface.SetOffset(3)
	assert.False(t, a.Scrolled())
	assert.True(t, b.Scrolled())
}

func TestOffset_ConcurrentUse(t *testing.T) {
	surface := NewOffset()
	trig := Watch(surface, 0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			surface.SetOffset(i)
			_ = trig.Header()
		}(i)
	}
	wg.Wait()
	trig.Stop()
	assert.Equal(t, "raised", Raised.String())
	assert.Equal(t, "flat", Flat.String())
}
