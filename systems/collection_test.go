package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/core"
	"github.com/sydevs-sim/sydevs-sim/quantity"
)

func registerIntAgentID() {
	core.Register(core.QualifiedType{
		Name:     "systems_test.intAgentID",
		Sortable: true,
		Compare:  func(a, b any) int { return a.(int) - b.(int) },
	})
}

// collectionAgentHandlers is a minimal message-node agent: it fires once,
// on its own tick, and emits its assigned identity on a message output.
type collectionAgentHandlers struct {
	*AtomicNode
	tick quantity.Duration
	out  MessageOutput[int]
}

func newCollectionAgent(name string, ctx *NodeContext) SystemNode {
	h := &collectionAgentHandlers{AtomicNode: NewAtomicNode(name, ctx, quantity.Milli), tick: quantity.Milliseconds(10)}
	h.out = NewMessageOutput[int](h.Interface(), "value")
	h.Handlers = h
	return h
}

func (h *collectionAgentHandlers) HandleInitializationEvent() quantity.Duration { return h.tick }
func (h *collectionAgentHandlers) HandleUnplannedEvent(quantity.Duration) quantity.Duration {
	return quantity.InfDuration()
}
func (h *collectionAgentHandlers) HandlePlannedEvent() quantity.Duration {
	h.out.Send(1)
	return quantity.InfDuration()
}
func (h *collectionAgentHandlers) HandleFinalizationEvent(quantity.Duration) {}

// populationHandlers never creates agents on its own; tests drive
// CreateAgent/AffectAgent/RemoveAgent directly.
type populationHandlers struct {
	*CollectionNode[int]
}

func newPopulationHandlers(ctx *NodeContext) *populationHandlers {
	h := &populationHandlers{}
	h.CollectionNode = NewCollectionNode[int](
		"population", ctx, quantity.Milli, MessageAgents, "systems_test.intAgentID",
		newCollectionAgent, newCollectionAgent,
	)
	h.Handlers = h
	return h
}

func (h *populationHandlers) MacroInitializationEvent() quantity.Duration { return quantity.InfDuration() }
func (h *populationHandlers) MacroUnplannedEvent(quantity.Duration) quantity.Duration {
	return quantity.InfDuration()
}
func (h *populationHandlers) MicroPlannedEvent(int, quantity.Duration) quantity.Duration {
	return quantity.InfDuration()
}
func (h *populationHandlers) MacroPlannedEvent(quantity.Duration) quantity.Duration {
	return quantity.InfDuration()
}
func (h *populationHandlers) MacroFinalizationEvent(quantity.Duration) {}

func TestCollectionNode_NewCollectionNode_PanicsOnAnUnregisteredAgentIDType(t *testing.T) {
	assert.Panics(t, func() {
		NewCollectionNode[int]("bad", NewRootContext(0, nil, nil), quantity.Milli, MessageAgents,
			"systems_test.neverRegistered", newCollectionAgent, newCollectionAgent)
	})
}

func TestCollectionNode_CreateAgent_RegistersAgentAndSchedulesItsFirstEvent(t *testing.T) {
	registerIntAgentID()
	h := newPopulationHandlers(NewRootContext(0, nil, nil))
	h.InitializationEvent()

	h.CreateAgent(3)

	assert.True(t, h.AgentExists(3))
	assert.Equal(t, int64(1), h.AgentCount())
	assert.Equal(t, []int{3}, h.AgentIDs())
}

func TestCollectionNode_CreateAgent_PanicsOnADuplicateAgentID(t *testing.T) {
	registerIntAgentID()
	h := newPopulationHandlers(NewRootContext(0, nil, nil))
	h.InitializationEvent()
	h.CreateAgent(3)

	assert.Panics(t, func() { h.CreateAgent(3) })
}

func TestCollectionNode_RemoveAgent_ReportsTheAgentGoneImmediately(t *testing.T) {
	registerIntAgentID()
	h := newPopulationHandlers(NewRootContext(0, nil, nil))
	h.InitializationEvent()
	h.CreateAgent(3)

	h.RemoveAgent(3)

	assert.False(t, h.AgentExists(3))
}

func TestCollectionNode_AgentIDs_SortsByTheRegisteredComparator(t *testing.T) {
	registerIntAgentID()
	h := newPopulationHandlers(NewRootContext(0, nil, nil))
	h.InitializationEvent()
	h.CreateAgent(5)
	h.CreateAgent(1)
	h.CreateAgent(3)

	assert.Equal(t, []int{1, 3, 5}, h.AgentIDs())
}

// autoPopulationHandlers creates two agents as soon as it initializes, so a
// full Simulation run exercises the macro/micro event dispatch together.
type autoPopulationHandlers struct {
	*CollectionNode[int]
	microHits map[int]int
}

func newAutoPopulationHandlers(ctx *NodeContext) *autoPopulationHandlers {
	h := &autoPopulationHandlers{microHits: make(map[int]int)}
	h.CollectionNode = NewCollectionNode[int](
		"population", ctx, quantity.Milli, MessageAgents, "systems_test.intAgentID",
		newCollectionAgent, newCollectionAgent,
	)
	h.Handlers = h
	return h
}

func (h *autoPopulationHandlers) MacroInitializationEvent() quantity.Duration {
	h.CreateAgent(1)
	h.CreateAgent(2)
	return quantity.InfDuration()
}
func (h *autoPopulationHandlers) MacroUnplannedEvent(quantity.Duration) quantity.Duration {
	return quantity.InfDuration()
}
func (h *autoPopulationHandlers) MicroPlannedEvent(agentID int, elapsed quantity.Duration) quantity.Duration {
	h.microHits[agentID]++
	return quantity.InfDuration()
}
func (h *autoPopulationHandlers) MacroPlannedEvent(quantity.Duration) quantity.Duration {
	return quantity.InfDuration()
}
func (h *autoPopulationHandlers) MacroFinalizationEvent(quantity.Duration) {}

func TestCollectionNode_ProcessRemainingEvents_FiresOneMicroPlannedEventPerAgentEmission(t *testing.T) {
	registerIntAgentID()
	var pop *autoPopulationHandlers
	sim := NewTotalDurationSimulation(quantity.Milliseconds(100), 0, nil, nil, func(ctx *NodeContext) SystemNode {
		pop = newAutoPopulationHandlers(ctx)
		return pop
	})

	sim.ProcessRemainingEvents()

	assert.Equal(t, map[int]int{1: 1, 2: 1}, pop.microHits)
}

func TestCollectionNode_ProcessRemainingEvents_RemovesEveryAgentAtFinalization(t *testing.T) {
	registerIntAgentID()
	var pop *autoPopulationHandlers
	sim := NewTotalDurationSimulation(quantity.Milliseconds(100), 0, nil, nil, func(ctx *NodeContext) SystemNode {
		pop = newAutoPopulationHandlers(ctx)
		return pop
	})

	sim.ProcessRemainingEvents()

	assert.Equal(t, int64(0), pop.AgentCount())
}
