package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// countingHandlers is a minimal AtomicHandlers fixture: it schedules a
// planned event every tick, counts its planned events, and records the
// elapsed duration passed to its finalization event.
type countingHandlers struct {
	*AtomicNode
	tick     quantity.Duration
	planned  int
	finalElapsed quantity.Duration
}

func newCountingNode(name string, ctx *NodeContext, precision quantity.Scale, tick quantity.Duration) *countingHandlers {
	h := &countingHandlers{AtomicNode: NewAtomicNode(name, ctx, precision), tick: tick}
	h.Handlers = h
	return h
}

func (h *countingHandlers) HandleInitializationEvent() quantity.Duration { return h.tick }
func (h *countingHandlers) HandleUnplannedEvent(quantity.Duration) quantity.Duration {
	return h.tick
}
func (h *countingHandlers) HandlePlannedEvent() quantity.Duration {
	h.planned++
	return h.tick
}
func (h *countingHandlers) HandleFinalizationEvent(elapsed quantity.Duration) {
	h.finalElapsed = elapsed
}

func TestAtomicNode_NewAtomicNode_RejectsNoScalePrecision(t *testing.T) {
	assert.Panics(t, func() {
		NewAtomicNode("bad", NewRootContext(0, nil, nil), NoScale)
	})
}

func TestAtomicNode_InitializationEvent_RescalesReturnedDurationToPrecision(t *testing.T) {
	h := newCountingNode("n", NewRootContext(0, nil, nil), quantity.Milli, quantity.Seconds(1))
	dt := h.InitializationEvent()
	assert.Equal(t, quantity.Milli, dt.Precision())
	assert.True(t, dt.Equal(quantity.Seconds(1)))
}

func TestAtomicNode_InitializationEvent_RejectsNegativeDuration(t *testing.T) {
	h := newCountingNode("n", NewRootContext(0, nil, nil), quantity.Milli, quantity.Seconds(-1))
	assert.Panics(t, func() { h.InitializationEvent() })
}

func TestAtomicNode_PlannedEvent_InvokesHandlerAndTimesIt(t *testing.T) {
	h := newCountingNode("n", NewRootContext(0, nil, nil), quantity.Milli, quantity.Seconds(1))
	h.InitializationEvent()
	h.PlannedEvent()
	h.PlannedEvent()
	assert.Equal(t, 2, h.planned)
	assert.Equal(t, int64(3), h.EventTimer().Count()) // initialization plus two planned events
}

func TestAtomicNode_FinalizationEvent_PassesThroughElapsedDuration(t *testing.T) {
	h := newCountingNode("n", NewRootContext(0, nil, nil), quantity.Milli, quantity.Seconds(1))
	h.InitializationEvent()
	h.FinalizationEvent(quantity.Milliseconds(250))
	assert.True(t, h.finalElapsed.Equal(quantity.Milliseconds(250)))
}

func TestAtomicNode_Dispatch_ConvertsBareStringPanicsIntoNodeError(t *testing.T) {
	h := newCountingNode("panicking", NewRootContext(0, nil, nil), quantity.Milli, quantity.Seconds(1))
	h.Handlers = panicHandlers{h.AtomicNode}
	assert.PanicsWithError(t, `node "panicking": logic error: boom`, func() { h.InitializationEvent() })
}

// panicHandlers always panics with a bare string, exercising dispatch's
// generic recover() -> LogicError normalization.
type panicHandlers struct{ *AtomicNode }

func (panicHandlers) HandleInitializationEvent() quantity.Duration {
	panic("boom")
}
func (panicHandlers) HandleUnplannedEvent(quantity.Duration) quantity.Duration {
	panic("boom")
}
func (panicHandlers) HandlePlannedEvent() quantity.Duration { panic("boom") }
func (panicHandlers) HandleFinalizationEvent(quantity.Duration) {}
