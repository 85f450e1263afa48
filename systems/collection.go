package systems

import (
	"math"

	"github.com/sydevs-sim/sydevs-sim/core"
	"github.com/sydevs-sim/sydevs-sim/devtime"
	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// macroEventID is the sentinel scheduled alongside agent indices in a
// collection's own TimeQueue/TimeCache; it must never collide with a real
// agent index, so agent indices are assigned starting at 0 and macro events
// always sort last.
const macroEventID = int64(math.MaxInt64)

// AgentMode distinguishes a collection of message-node agents (driven by
// CreateAgent/AffectAgent/RemoveAgent) from a collection of flow-only agents
// (driven by InvokeAgent only).
type AgentMode int

const (
	MessageAgents AgentMode = iota
	FlowAgents
)

// CollectionHandlers is the user-supplied procedural behavior a
// CollectionNode dispatches into: the macro events fire against the
// collection as a whole, while a micro event fires once per message an
// agent emits during its planned event.
type CollectionHandlers[AgentID any] interface {
	MacroInitializationEvent() quantity.Duration
	MacroUnplannedEvent(elapsed quantity.Duration) quantity.Duration
	MicroPlannedEvent(agentID AgentID, elapsed quantity.Duration) quantity.Duration
	MacroPlannedEvent(elapsed quantity.Duration) quantity.Duration
	MacroFinalizationEvent(elapsed quantity.Duration)
}

// CollectionNode is a variable-length, homogeneous population of agent
// nodes sharing one AgentID key type. Data crosses the collection/agent
// boundary through Prototype, a standing agent instance whose ports are the
// same FlowInput[T]/MessageInput[T]/MessageOutput[T]/FlowOutput[T] handles
// any node uses — Go's generic port handles already give every access a
// concrete type, so the C++ implementation's separate flow/message port
// proxy classes have no Go counterpart: Prototype's ports serve that role
// directly.
type CollectionNode[AgentID any] struct {
	iface     *NodeInterface
	timer     core.EventTimer
	precision quantity.Scale
	mode      AgentMode
	idType    string

	agentCtx  *NodeContext
	NewAgent  func(name string, ctx *NodeContext) SystemNode
	Prototype SystemNode

	agentIndices map[string]int64
	agentIDs     map[int64]AgentID
	agents       map[int64]SystemNode
	removed      map[int64]struct{}
	nextIndex    int64

	tq *devtime.TimeQueue
	tc *devtime.TimeCache

	initialized bool
	finalized   bool

	Handlers CollectionHandlers[AgentID]
}

// NewCollectionNode constructs the embeddable base for a collection node
// named nodeName within ctx. idType must already be registered with core as
// a sortable qualified type — a collection's agent ids must be totally
// ordered so agent iteration is deterministic. newPrototype constructs the
// standing prototype instance; newAgent constructs a fresh agent each time
// CreateAgent/InvokeAgent is called.
func NewCollectionNode[AgentID any](
	nodeName string,
	ctx *NodeContext,
	precision quantity.Scale,
	mode AgentMode,
	idType string,
	newPrototype func(ctx *NodeContext) SystemNode,
	newAgent func(name string, ctx *NodeContext) SystemNode,
) *CollectionNode[AgentID] {
	if _, ok := core.Lookup(idType); !ok {
		panic(newInvalidArgument("collection node (%s): agent id type (%s) is not a registered qualified type", nodeName, idType))
	}
	iface := NewNodeInterface(nodeName, ctx)
	c := &CollectionNode[AgentID]{
		iface:        iface,
		precision:    precision,
		mode:         mode,
		idType:       idType,
		agentCtx:     ctx.NewChildContext(iface),
		NewAgent:     newAgent,
		agentIndices: make(map[string]int64),
		agentIDs:     make(map[int64]AgentID),
		agents:       make(map[int64]SystemNode),
		removed:      make(map[int64]struct{}),
	}
	c.Prototype = newPrototype(ctx.NewChildContext(iface))
	if c.Prototype.NodeDMode() != c.NodeDMode() {
		panic(newInvalidArgument("collection node (%s): agent mode does not match the prototype's data mode (%s)", nodeName, c.Prototype.NodeDMode()))
	}
	return c
}

func (c *CollectionNode[AgentID]) Interface() *NodeInterface    { return c.iface }
func (c *CollectionNode[AgentID]) NodeDMode() DataMode {
	if c.mode == FlowAgents {
		return Flow
	}
	return Message
}
func (c *CollectionNode[AgentID]) TimePrecision() quantity.Scale { return c.precision }
func (c *CollectionNode[AgentID]) EventTimer() *core.EventTimer  { return &c.timer }

func (c *CollectionNode[AgentID]) AgentExists(agentID AgentID) bool {
	_, ok := c.agentIndices[core.ToString(c.idType, agentID)]
	return ok
}

func (c *CollectionNode[AgentID]) AgentCount() int64 { return int64(len(c.agentIndices)) }

// AgentIDs returns every live agent id, sorted by the registered comparator
// for a deterministic iteration order.
func (c *CollectionNode[AgentID]) AgentIDs() []AgentID {
	keys := make([]any, 0, len(c.agentIndices))
	byKey := make(map[string]AgentID, len(c.agentIndices))
	for name, idx := range c.agentIndices {
		id := c.agentIDs[idx]
		keys = append(keys, id)
		byKey[name] = id
	}
	core.SortKeys(c.idType, keys)
	ids := make([]AgentID, len(keys))
	for i, k := range keys {
		ids[i] = k.(AgentID)
	}
	return ids
}

func (c *CollectionNode[AgentID]) agentName(agentID AgentID) string {
	return core.ToString(c.idType, agentID)
}

func (c *CollectionNode[AgentID]) InitializationEvent() quantity.Duration {
	if c.initialized {
		panic(newLogicError("attempt to initialize collection node (%s) more than once", c.iface.FullName()))
	}
	currentT := c.iface.context.EventTime().T()
	c.tq = devtime.NewTimeQueueAtPoint(currentT)
	c.tc = devtime.NewTimeCacheAtPoint(currentT)
	dt, err := dispatch(c.iface, InitializationEvent, &c.timer, nil, func() (quantity.Duration, error) {
		raw := c.Handlers.MacroInitializationEvent()
		return scalePlannedDt(raw, c.precision)
	})
	if err != nil {
		panic(err)
	}
	c.Prototype.Interface().ClearFlowInputs()
	c.Prototype.Interface().ClearMessageInput()
	c.Prototype.Interface().ClearFlowOutputs()
	if dt.Finite() {
		c.tq.PlanEvent(macroEventID, dt)
	}
	if c.precision != NoScale {
		c.tc.RetainEvent(macroEventID, c.precision)
	}
	planned := c.tq.ImminentDuration()
	c.initialized = true
	c.eraseRemovedAgents()
	return planned
}

func (c *CollectionNode[AgentID]) UnplannedEvent(elapsed quantity.Duration) quantity.Duration {
	currentT := c.iface.context.EventTime().T()
	c.tq.AdvanceTimeTo(currentT)
	c.tc.AdvanceTime(currentT.Diff(c.tc.CurrentTime()))
	dt, err := dispatch(c.iface, UnplannedEvent, &c.timer, &elapsed, func() (quantity.Duration, error) {
		raw := c.Handlers.MacroUnplannedEvent(elapsed)
		return scalePlannedDt(raw, c.precision)
	})
	c.Prototype.Interface().ClearFlowInputs()
	c.Prototype.Interface().ClearMessageInput()
	c.Prototype.Interface().ClearFlowOutputs()
	if err != nil {
		panic(err)
	}
	if dt.Finite() {
		c.tq.PlanEvent(macroEventID, dt)
	} else {
		c.tq.CancelEvent(macroEventID)
	}
	if c.precision != NoScale {
		c.tc.RetainEvent(macroEventID, c.precision)
	}
	planned := c.tq.ImminentDuration()
	c.eraseRemovedAgents()
	return planned
}

func (c *CollectionNode[AgentID]) PlannedEvent() quantity.Duration {
	currentT := c.iface.context.EventTime().T()
	c.tq.AdvanceTimeTo(currentT)
	c.tc.AdvanceTime(currentT.Diff(c.tc.CurrentTime()))
	ids := c.tq.ImminentEventIDs()
	agentIndex := ids[0]
	for _, id := range ids[1:] {
		if id < agentIndex {
			agentIndex = id
		}
	}
	if agentIndex < macroEventID {
		c.handleAgentPlannedEvent(agentIndex)
	} else {
		c.handleMacroPlannedEvent()
	}
	planned := c.tq.ImminentDuration()
	c.eraseRemovedAgents()
	return planned
}

func (c *CollectionNode[AgentID]) handleMacroPlannedEvent() {
	iface := c.iface
	iface.PrintEvent("macro-planned")
	elapsed := quantity.Duration{}
	if c.precision != NoScale {
		elapsed = c.tc.DurationSince(macroEventID).FixedAt(c.precision)
	}
	dt, err := dispatch(iface, PlannedEvent, &c.timer, &elapsed, func() (quantity.Duration, error) {
		raw := c.Handlers.MacroPlannedEvent(elapsed)
		return scalePlannedDt(raw, c.precision)
	})
	c.Prototype.Interface().ClearFlowInputs()
	c.Prototype.Interface().ClearMessageInput()
	c.Prototype.Interface().ClearFlowOutputs()
	if err != nil {
		panic(err)
	}
	if dt.Finite() {
		c.tq.PlanEvent(macroEventID, dt)
	} else {
		c.tq.PopImminentEvent(macroEventID)
	}
	if c.precision != NoScale {
		c.tc.RetainEvent(macroEventID, c.precision)
	}
}

func (c *CollectionNode[AgentID]) handleAgentPlannedEvent(agentIndex int64) {
	agent := c.agents[agentIndex]
	agentID := c.agentIDs[agentIndex]
	agentIface := agent.Interface()
	agentIface.PrintEvent("planned")
	collectionElapsed := quantity.Duration{}
	if c.precision != NoScale {
		collectionElapsed = c.tc.DurationSince(macroEventID).FixedAt(c.precision)
	}
	agentIface.activate(Message, Output)
	c.timer.Start()
	plannedDt := agent.PlannedEvent()
	c.timer.Stop()
	agentIface.deactivate()
	if plannedDt.Finite() {
		c.tq.PlanEvent(agentIndex, plannedDt)
	} else {
		c.tq.PopImminentEvent(agentIndex)
	}
	if agent.TimePrecision() != NoScale {
		c.tc.RetainEvent(agentIndex, agent.TimePrecision())
	}
	listSize := agentIface.MessageOutputListSize()
	microElapsed := collectionElapsed
	for i := int64(0); i < listSize; i++ {
		portIndex := agentIface.MessageOutputPortAt(i)
		val := agentIface.MessageOutputValueAt(i)
		c.iface.PrintEvent("micro-planned")
		c.Prototype.Interface().appendMessageOutput(portIndex, val)
		dt, err := dispatch(c.iface, PlannedEvent, nil, &microElapsed, func() (quantity.Duration, error) {
			raw := c.Handlers.MicroPlannedEvent(agentID, microElapsed)
			return scalePlannedDt(raw, c.precision)
		})
		c.Prototype.Interface().ClearFlowInputs()
		c.Prototype.Interface().ClearMessageInput()
		c.Prototype.Interface().ClearMessageOutputs()
		c.Prototype.Interface().ClearFlowOutputs()
		if err != nil {
			panic(err)
		}
		microElapsed = quantity.Duration{}
		if dt.Finite() {
			c.tq.PlanEvent(macroEventID, dt)
		} else {
			c.tq.CancelEvent(macroEventID)
		}
		if c.precision != NoScale {
			c.tc.RetainEvent(macroEventID, c.precision)
		}
	}
	agentIface.ClearMessageOutputs()
}

func (c *CollectionNode[AgentID]) FinalizationEvent(elapsed quantity.Duration) {
	if c.finalized {
		panic(newLogicError("attempt to finalize collection node (%s) more than once", c.iface.FullName()))
	}
	currentT := c.iface.context.EventTime().T()
	c.tq.AdvanceTimeTo(currentT)
	c.tc.AdvanceTime(currentT.Diff(c.tc.CurrentTime()))
	_, err := dispatch(c.iface, FinalizationEvent, &c.timer, &elapsed, func() (quantity.Duration, error) {
		c.Handlers.MacroFinalizationEvent(elapsed)
		for _, id := range c.AgentIDs() {
			c.RemoveAgent(id)
		}
		return quantity.Duration{}, nil
	})
	c.eraseRemovedAgents()
	if err != nil {
		panic(err)
	}
	c.finalized = true
}

// CreateAgent constructs a new message-node agent, initializes it with the
// prototype's staged flow inputs, and schedules its first planned event.
func (c *CollectionNode[AgentID]) CreateAgent(agentID AgentID) {
	if c.mode != MessageAgents {
		panic(newLogicError("attempt to use CreateAgent to create a flow node agent of collection node (%s); use InvokeAgent instead", c.iface.FullName()))
	}
	name := c.agentName(agentID)
	if c.AgentExists(agentID) {
		panic(newLogicError("created agent (%s.%s) already exists", c.iface.FullName(), name))
	}
	agent := c.NewAgent(name, c.agentCtx)
	index := c.agentCtx.AddNode(agent)
	c.agentIndices[name] = index
	c.agentIDs[index] = agentID
	c.agents[index] = agent
	c.nextIndex = index + 1

	agentIface := agent.Interface()
	agentIface.PrintEvent("initialization")
	proto := c.Prototype.Interface()
	if missing := proto.MissingFlowInput(); missing != -1 {
		panic(newLogicError("flow input port (%s) of created agent (%s) has no value", proto.flowInputNames[missing], agentIface.FullName()))
	}
	for i := int64(0); i < proto.FlowInputPortCount(); i++ {
		agentIface.AssignFlowInput(i, proto.flowInputs[i])
	}
	plannedDt := agent.InitializationEvent()
	if plannedDt.Finite() {
		c.tq.PlanEvent(index, plannedDt)
	}
	if agent.TimePrecision() != NoScale {
		c.tc.RetainEvent(index, agent.TimePrecision())
	}
}

// AffectAgent delivers the prototype's staged message input to the named
// agent's unplanned event.
func (c *CollectionNode[AgentID]) AffectAgent(agentID AgentID) {
	if c.mode != MessageAgents {
		panic(newLogicError("attempt to use AffectAgent to affect a flow node agent of collection node (%s); use InvokeAgent instead", c.iface.FullName()))
	}
	index, ok := c.agentIndices[c.agentName(agentID)]
	if !ok {
		panic(newLogicError("attempt to affect agent (%s.%s) that does not exist", c.iface.FullName(), c.agentName(agentID)))
	}
	agent := c.agents[index]
	agentIface := agent.Interface()
	proto := c.Prototype.Interface()
	portIndex := proto.messageInputIndex
	if portIndex == -1 {
		panic(newLogicError("attempt to affect agent (%s), but none of the prototype's message input ports have been accessed", agentIface.FullName()))
	}
	val := proto.messageInputs[portIndex]
	if val == nil {
		panic(newLogicError("attempt to affect agent (%s), but none of the prototype's message input ports have been assigned a value", agentIface.FullName()))
	}
	agentIface.PrintEvent("unplanned")
	agentIface.SetMessageInput(portIndex, val)
	elapsed := quantity.Duration{}
	if agent.TimePrecision() != NoScale {
		elapsed = c.tc.DurationSince(index).FixedAt(agent.TimePrecision())
	}
	plannedDt := agent.UnplannedEvent(elapsed)
	if plannedDt.Finite() {
		c.tq.PlanEvent(index, plannedDt)
	} else {
		c.tq.CancelEvent(index)
	}
	if agent.TimePrecision() != NoScale {
		c.tc.RetainEvent(index, agent.TimePrecision())
	}
	proto.ClearMessageInput()
}

// RemoveAgent finalizes the named agent, copies its flow outputs back to
// the prototype, and marks it for removal at the next macro-event boundary.
func (c *CollectionNode[AgentID]) RemoveAgent(agentID AgentID) {
	if c.mode != MessageAgents {
		panic(newLogicError("attempt to use RemoveAgent to remove a flow node agent of collection node (%s); use InvokeAgent instead", c.iface.FullName()))
	}
	name := c.agentName(agentID)
	index, ok := c.agentIndices[name]
	if !ok {
		panic(newLogicError("attempt to remove agent (%s.%s) that does not exist", c.iface.FullName(), name))
	}
	agent := c.agents[index]
	agentIface := agent.Interface()
	agentIface.PrintEvent("finalization")
	elapsed := quantity.Duration{}
	if agent.TimePrecision() != NoScale {
		elapsed = c.tc.DurationSince(index).FixedAt(agent.TimePrecision())
	}
	agent.FinalizationEvent(elapsed)
	if missing := agentIface.MissingFlowOutput(); missing != -1 {
		panic(newLogicError("flow output port (%s) of removed agent (%s) not assigned", agentIface.flowOutputNames[missing], agentIface.FullName()))
	}
	proto := c.Prototype.Interface()
	for i := int64(0); i < agentIface.FlowOutputPortCount(); i++ {
		proto.AssignFlowOutput(i, agentIface.FlowOutputValue(i))
	}
	delete(c.agentIndices, name)
	c.removed[index] = struct{}{}
	c.tq.CancelEvent(index)
	c.tc.ReleaseEvent(index)
}

// InvokeAgent constructs, initializes, finalizes, and discards a flow-only
// agent in one step, copying flow inputs in and flow outputs back out.
func (c *CollectionNode[AgentID]) InvokeAgent(agentID AgentID) {
	if c.mode != FlowAgents {
		panic(newLogicError("attempt to use InvokeAgent to invoke a message node agent of collection node (%s); use CreateAgent/AffectAgent/RemoveAgent instead", c.iface.FullName()))
	}
	name := c.agentName(agentID)
	agent := c.NewAgent(name, c.agentCtx)
	agentIface := agent.Interface()
	agentIface.PrintEvent("flow")
	proto := c.Prototype.Interface()
	if missing := proto.MissingFlowInput(); missing != -1 {
		panic(newLogicError("flow input port (%s) of invoked agent (%s) has no value", proto.flowInputNames[missing], agentIface.FullName()))
	}
	for i := int64(0); i < proto.FlowInputPortCount(); i++ {
		agentIface.AssignFlowInput(i, proto.flowInputs[i])
	}
	agent.InitializationEvent()
	if missing := agentIface.MissingFlowOutput(); missing != -1 {
		panic(newLogicError("flow output port (%s) of invoked agent (%s) not assigned", agentIface.flowOutputNames[missing], agentIface.FullName()))
	}
	for i := int64(0); i < agentIface.FlowOutputPortCount(); i++ {
		proto.AssignFlowOutput(i, agentIface.FlowOutputValue(i))
	}
}

func (c *CollectionNode[AgentID]) eraseRemovedAgents() {
	for index := range c.removed {
		delete(c.agentIDs, index)
		delete(c.agents, index)
	}
	c.removed = make(map[int64]struct{})
}
