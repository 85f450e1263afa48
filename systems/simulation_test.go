package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// tickerHandlers fires a message on every planned event and counts the
// messages it receives on its message input.
type tickerHandlers struct {
	*AtomicNode
	out      MessageOutput[int]
	in       MessageInput[int]
	tick     quantity.Duration
	sent     int
	received int
}

func newTicker(name string, ctx *NodeContext, tick quantity.Duration, withInput bool) *tickerHandlers {
	h := &tickerHandlers{AtomicNode: NewAtomicNode(name, ctx, quantity.Milli), tick: tick}
	h.out = NewMessageOutput[int](h.Interface(), "out")
	if withInput {
		h.in = NewMessageInput[int](h.Interface(), "in")
	}
	h.Handlers = h
	return h
}

func (h *tickerHandlers) HandleInitializationEvent() quantity.Duration { return h.tick }
func (h *tickerHandlers) HandleUnplannedEvent(quantity.Duration) quantity.Duration {
	if h.in.Received() {
		h.received++
	}
	return quantity.InfDuration()
}
func (h *tickerHandlers) HandlePlannedEvent() quantity.Duration {
	h.sent++
	h.out.Send(h.sent)
	return h.tick
}
func (h *tickerHandlers) HandleFinalizationEvent(quantity.Duration) {}

type tickerSystem struct {
	*CompositeNode
	a, b *tickerHandlers
}

func newTickerSystem(name string, ctx *NodeContext) *tickerSystem {
	sys := &tickerSystem{CompositeNode: NewCompositeNode(name, ctx)}
	sys.a = newTicker("a", sys.InternalContext(), quantity.Milliseconds(100), false)
	sys.b = newTicker("b", sys.InternalContext(), quantity.InfDuration(), true)
	sys.AddComponent(sys.a)
	sys.AddComponent(sys.b)
	InnerLinkMessage(sys.CompositeNode, sys.a.out, sys.b.in)
	return sys
}

func TestSimulation_ProcessRemainingEvents_DeliversInnerLinkedMessages(t *testing.T) {
	var sys *tickerSystem
	sim := NewTotalDurationSimulation(quantity.Seconds(1), 0, nil, nil, func(ctx *NodeContext) SystemNode {
		sys = newTickerSystem("sys", ctx)
		return sys
	})
	sim.ProcessRemainingEvents()
	assert.True(t, sim.Finished())
	assert.Equal(t, sys.a.sent, sys.b.received)
	assert.Greater(t, sys.a.sent, 0)
}

func TestSimulation_NewSimulation_RejectsRootWithPorts(t *testing.T) {
	assert.Panics(t, func() {
		NewTotalDurationSimulation(quantity.Seconds(1), 0, nil, nil, func(ctx *NodeContext) SystemNode {
			h := newTicker("root", ctx, quantity.Milliseconds(100), false)
			NewFlowInput[int](h.Interface(), "stray")
			return h
		})
	})
}

func TestSimulation_ProcessNextEvents_ProcessesExactlyTheImminentBatch(t *testing.T) {
	var sys *tickerSystem
	sim := NewTotalDurationSimulation(quantity.Seconds(1), 0, nil, nil, func(ctx *NodeContext) SystemNode {
		sys = newTickerSystem("sys", ctx)
		return sys
	})
	count := sim.ProcessNextEvents()
	assert.Equal(t, int64(1), count)
	assert.False(t, sim.Finished())
}
