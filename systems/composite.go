package systems

import (
	"github.com/sydevs-sim/sydevs-sim/core"
	"github.com/sydevs-sim/sydevs-sim/devtime"
	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// nodePort identifies one port on one registered component: the component's
// index within the composite's internal structure, and the port's index
// within that component's port list of a given kind.
type nodePort struct {
	nodeIndex int64
	portIndex int64
}

// CompositeNode is a fixed-structure network of component nodes connected
// by links. Unlike the C++ template methods that connect a single src/dst
// port pair for either data mode, linking here is split into a
// flow/message pair of generic free functions (InwardLinkFlow/
// InwardLinkMessage, and so on) — Go has no single type that is both a
// FlowInput[T] and a MessageInput[T], so one template parameterized on
// dmode becomes two free functions parameterized on T alone.
type CompositeNode struct {
	iface *NodeInterface
	timer core.EventTimer

	internalCtx *NodeContext
	components  []SystemNode

	flowInwardLinks  map[int64][]nodePort
	flowInnerLinks   map[nodePort][]nodePort
	flowOutwardLinks map[nodePort][]int64

	msgInwardLinks  map[int64][]nodePort
	msgInnerLinks   map[nodePort][]nodePort
	msgOutwardLinks map[nodePort][]int64

	tq *devtime.TimeQueue
	tc *devtime.TimeCache

	dmode          DataMode
	dmodeComputed  bool
	initialized    bool
	finalized      bool
	unprocessedFlow []int64
	processedFlow   []int64
	uninitMessage   []int64
	initMessage     []int64
}

// NewCompositeNode constructs the embeddable base for a composite node
// named nodeName within ctx. Components must be constructed against
// InternalContext() and registered with AddComponent before any link is
// declared.
func NewCompositeNode(nodeName string, ctx *NodeContext) *CompositeNode {
	iface := NewNodeInterface(nodeName, ctx)
	return &CompositeNode{
		iface:            iface,
		internalCtx:      ctx.NewChildContext(iface),
		flowInwardLinks:  make(map[int64][]nodePort),
		flowInnerLinks:   make(map[nodePort][]nodePort),
		flowOutwardLinks: make(map[nodePort][]int64),
		msgInwardLinks:   make(map[int64][]nodePort),
		msgInnerLinks:    make(map[nodePort][]nodePort),
		msgOutwardLinks:  make(map[nodePort][]int64),
	}
}

// InternalContext returns the context component nodes must be constructed
// against.
func (c *CompositeNode) InternalContext() *NodeContext { return c.internalCtx }

// AddComponent registers node as a component and returns its index, the
// handle every link and dispatch call addresses it by.
func (c *CompositeNode) AddComponent(node SystemNode) int64 {
	index := c.internalCtx.AddNode(node)
	c.components = append(c.components, node)
	return index
}

func (c *CompositeNode) Interface() *NodeInterface { return c.iface }
func (c *CompositeNode) TimePrecision() quantity.Scale { return NoScale }
func (c *CompositeNode) EventTimer() *core.EventTimer  { return &c.timer }

// NodeDMode reports Flow only if every component is itself flow-only,
// computed once and cached (the network is fixed, so this never changes).
func (c *CompositeNode) NodeDMode() DataMode {
	if !c.dmodeComputed {
		c.dmode = Flow
		for _, comp := range c.components {
			if comp.NodeDMode() == Message {
				c.dmode = Message
				break
			}
		}
		c.dmodeComputed = true
	}
	return c.dmode
}

// InwardLinkFlow connects a flow input port on the composite's own
// interface to a flow input port on one of its components.
func InwardLinkFlow[T any](c *CompositeNode, src FlowInput[T], dst FlowInput[T]) {
	if src.iface != c.iface {
		panic(newLogicError("inward link on composite node (%s) does not originate from one of the composite's own ports", c.iface.FullName()))
	}
	if dst.iface.context != c.internalCtx {
		panic(newLogicError("inward link on composite node (%s) does not end at one of its components", c.iface.FullName()))
	}
	c.flowInwardLinks[src.index] = append(c.flowInwardLinks[src.index], nodePort{componentIndex(c, dst.iface), dst.index})
}

// InwardLinkMessage connects a message input port on the composite's own
// interface to a message input port on one of its components.
func InwardLinkMessage[T any](c *CompositeNode, src MessageInput[T], dst MessageInput[T]) {
	if src.iface != c.iface {
		panic(newLogicError("inward link on composite node (%s) does not originate from one of the composite's own ports", c.iface.FullName()))
	}
	if dst.iface.context != c.internalCtx {
		panic(newLogicError("inward link on composite node (%s) does not end at one of its components", c.iface.FullName()))
	}
	c.msgInwardLinks[src.index] = append(c.msgInwardLinks[src.index], nodePort{componentIndex(c, dst.iface), dst.index})
}

// InnerLinkFlow connects a flow output port on one component to a flow
// input port on another.
func InnerLinkFlow[T any](c *CompositeNode, src FlowOutput[T], dst FlowInput[T]) {
	srcIdx := requireComponent(c, src.iface, "inner")
	dstIdx := requireComponent(c, dst.iface, "inner")
	key := nodePort{srcIdx, src.index}
	c.flowInnerLinks[key] = append(c.flowInnerLinks[key], nodePort{dstIdx, dst.index})
}

// InnerLinkMessage connects a message output port on one component to a
// message input port on another.
func InnerLinkMessage[T any](c *CompositeNode, src MessageOutput[T], dst MessageInput[T]) {
	srcIdx := requireComponent(c, src.iface, "inner")
	dstIdx := requireComponent(c, dst.iface, "inner")
	key := nodePort{srcIdx, src.index}
	c.msgInnerLinks[key] = append(c.msgInnerLinks[key], nodePort{dstIdx, dst.index})
}

// OutwardLinkFlow connects a flow output port on one component to a flow
// output port on the composite's own interface.
func OutwardLinkFlow[T any](c *CompositeNode, src FlowOutput[T], dst FlowOutput[T]) {
	srcIdx := requireComponent(c, src.iface, "outward")
	if dst.iface != c.iface {
		panic(newLogicError("outward link on composite node (%s) does not end at one of the composite's own ports", c.iface.FullName()))
	}
	key := nodePort{srcIdx, src.index}
	c.flowOutwardLinks[key] = append(c.flowOutwardLinks[key], dst.index)
}

// OutwardLinkMessage connects a message output port on one component to a
// message output port on the composite's own interface.
func OutwardLinkMessage[T any](c *CompositeNode, src MessageOutput[T], dst MessageOutput[T]) {
	srcIdx := requireComponent(c, src.iface, "outward")
	if dst.iface != c.iface {
		panic(newLogicError("outward link on composite node (%s) does not end at one of the composite's own ports", c.iface.FullName()))
	}
	key := nodePort{srcIdx, src.index}
	c.msgOutwardLinks[key] = append(c.msgOutwardLinks[key], dst.index)
}

func requireComponent(c *CompositeNode, iface *NodeInterface, kind string) int64 {
	if iface.context != c.internalCtx {
		panic(newLogicError("%s link on composite node (%s) does not involve one of its components", kind, c.iface.FullName()))
	}
	return componentIndex(c, iface)
}

func componentIndex(c *CompositeNode, iface *NodeInterface) int64 {
	for i, comp := range c.components {
		if comp.Interface() == iface {
			return int64(i)
		}
	}
	panic(newLogicError("port does not belong to a registered component of composite node (%s)", c.iface.FullName()))
}

func (c *CompositeNode) InitializationEvent() quantity.Duration {
	if c.initialized {
		panic(newLogicError("attempt to initialize composite node (%s) more than once", c.iface.FullName()))
	}
	currentT := c.iface.context.EventTime().T()
	c.tq = devtime.NewTimeQueueAtPoint(currentT)
	c.tc = devtime.NewTimeCacheAtPoint(currentT)
	c.categorizeComponents()
	c.activateFlowInwardLinks()
	c.processFlowComponents(c.NodeDMode() == Flow)
	c.handleInitializationEvents()
	c.initialized = true
	return c.tq.ImminentDuration()
}

func (c *CompositeNode) categorizeComponents() {
	for i, comp := range c.components {
		idx := int64(i)
		if comp.NodeDMode() == Flow {
			c.unprocessedFlow = append(c.unprocessedFlow, idx)
		} else {
			c.uninitMessage = append(c.uninitMessage, idx)
		}
	}
}

// processFlowComponents fires every flow-only component whose flow inputs
// have all been assigned, repeating until none remain ready — propagation
// reaches a fixed point because assigning one component's outputs may
// ready another. finalize requires every component to end up processed.
func (c *CompositeNode) processFlowComponents(finalize bool) {
	for {
		progressed := false
		remaining := c.unprocessedFlow[:0:0]
		for _, idx := range c.unprocessedFlow {
			comp := c.components[idx]
			compIface := comp.Interface()
			if missing := compIface.MissingFlowInput(); missing != -1 {
				if finalize {
					panic(newLogicError("flow input port (%s) of node (%s) has no value", compIface.flowInputNames[missing], compIface.FullName()))
				}
				remaining = append(remaining, idx)
				continue
			}
			compIface.PrintEvent("flow")
			comp.InitializationEvent()
			if missing := compIface.MissingFlowOutput(); missing != -1 {
				panic(newLogicError("flow output port (%s) of flow node (%s) not assigned", compIface.flowOutputNames[missing], compIface.FullName()))
			}
			c.activateFlowInnerLinks(idx)
			c.activateFlowOutwardLinks(idx)
			c.processedFlow = append(c.processedFlow, idx)
			progressed = true
		}
		c.unprocessedFlow = remaining
		if !progressed || len(c.unprocessedFlow) == 0 {
			break
		}
	}
}

func (c *CompositeNode) handleInitializationEvents() {
	for len(c.uninitMessage) > 0 {
		idx := c.uninitMessage[0]
		c.uninitMessage = c.uninitMessage[1:]
		comp := c.components[idx]
		compIface := comp.Interface()
		compIface.PrintEvent("initialization")
		if missing := compIface.MissingFlowInput(); missing != -1 {
			panic(newLogicError("flow input port (%s) of message node (%s) has no value", compIface.flowInputNames[missing], compIface.FullName()))
		}
		plannedDt := comp.InitializationEvent()
		if plannedDt.Finite() {
			c.tq.PlanEvent(idx, plannedDt)
		}
		if comp.TimePrecision() != NoScale {
			c.tc.RetainEvent(idx, comp.TimePrecision())
		}
		c.initMessage = append(c.initMessage, idx)
	}
}

func (c *CompositeNode) activateFlowInwardLinks() {
	for portIndex, dsts := range c.flowInwardLinks {
		val := c.iface.flowInputs[portIndex]
		for _, dst := range dsts {
			dstIface := c.components[dst.nodeIndex].Interface()
			if dstIface.flowInputs[dst.portIndex] != nil {
				panic(newLogicError("flow input port (%s) of node (%s) receiving multiple values", dstIface.flowInputNames[dst.portIndex], dstIface.FullName()))
			}
			dstIface.AssignFlowInput(dst.portIndex, val)
		}
	}
}

func (c *CompositeNode) activateFlowInnerLinks(nodeIndex int64) {
	compIface := c.components[nodeIndex].Interface()
	for portIndex := int64(0); portIndex < compIface.FlowOutputPortCount(); portIndex++ {
		val := compIface.flowOutputs[portIndex]
		for _, dst := range c.flowInnerLinks[nodePort{nodeIndex, portIndex}] {
			dstIface := c.components[dst.nodeIndex].Interface()
			if dstIface.flowInputs[dst.portIndex] != nil {
				panic(newLogicError("flow input port (%s) of node (%s) receiving multiple values", dstIface.flowInputNames[dst.portIndex], dstIface.FullName()))
			}
			dstIface.AssignFlowInput(dst.portIndex, val)
		}
	}
}

func (c *CompositeNode) activateFlowOutwardLinks(nodeIndex int64) {
	compIface := c.components[nodeIndex].Interface()
	for portIndex := int64(0); portIndex < compIface.FlowOutputPortCount(); portIndex++ {
		val := compIface.flowOutputs[portIndex]
		for _, dstPort := range c.flowOutwardLinks[nodePort{nodeIndex, portIndex}] {
			c.iface.AssignFlowOutput(dstPort, val)
		}
	}
}

func (c *CompositeNode) UnplannedEvent(elapsed quantity.Duration) quantity.Duration {
	currentT := c.iface.context.EventTime().T()
	c.tq.AdvanceTimeTo(currentT)
	c.tc.AdvanceTime(currentT.Diff(c.tc.CurrentTime()))
	portIndex := c.iface.messageInputIndex
	val := c.iface.messageInputs[portIndex]
	c.handleDstEvents(c.msgInwardLinks[portIndex], val)
	return c.tq.ImminentDuration()
}

func (c *CompositeNode) handleDstEvents(dsts []nodePort, val any) {
	for _, dst := range dsts {
		dstComp := c.components[dst.nodeIndex]
		dstIface := dstComp.Interface()
		dstIface.PrintEvent("unplanned")
		dstIface.SetMessageInput(dst.portIndex, val)
		elapsed := quantity.Duration{}
		if dstComp.TimePrecision() != NoScale {
			elapsed = c.tc.DurationSince(dst.nodeIndex).FixedAt(dstComp.TimePrecision())
		}
		plannedDt := dstComp.UnplannedEvent(elapsed)
		if plannedDt.Finite() {
			c.tq.PlanEvent(dst.nodeIndex, plannedDt)
		} else {
			c.tq.CancelEvent(dst.nodeIndex)
		}
		if dstComp.TimePrecision() != NoScale {
			c.tc.RetainEvent(dst.nodeIndex, dstComp.TimePrecision())
		}
		dstIface.ClearMessageInput()
	}
}

func (c *CompositeNode) PlannedEvent() quantity.Duration {
	currentT := c.iface.context.EventTime().T()
	c.tq.AdvanceTimeTo(currentT)
	c.tc.AdvanceTime(currentT.Diff(c.tc.CurrentTime()))
	srcIndex := c.tq.ImminentEventIDs()[0]
	srcComp := c.components[srcIndex]
	srcIface := srcComp.Interface()
	srcIface.PrintEvent("planned")
	elapsed := quantity.Duration{}
	if srcComp.TimePrecision() != NoScale {
		elapsed = c.tc.DurationSince(srcIndex).FixedAt(srcComp.TimePrecision())
	}
	plannedDt := srcComp.PlannedEvent()
	if plannedDt.Finite() {
		c.tq.PlanEvent(srcIndex, plannedDt)
	} else {
		c.tq.PopImminentEvent(srcIndex)
	}
	if srcComp.TimePrecision() != NoScale {
		c.tc.RetainEvent(srcIndex, srcComp.TimePrecision())
	}
	listSize := srcIface.MessageOutputListSize()
	for i := int64(0); i < listSize; i++ {
		portIndex := srcIface.MessageOutputPortAt(i)
		val := srcIface.MessageOutputValueAt(i)
		key := nodePort{srcIndex, portIndex}
		c.handleDstEvents(c.msgInnerLinks[key], val)
		for _, outPort := range c.msgOutwardLinks[key] {
			c.iface.appendMessageOutput(outPort, val)
		}
	}
	srcIface.ClearMessageOutputs()
	_ = elapsed
	return c.tq.ImminentDuration()
}

func (c *CompositeNode) FinalizationEvent(elapsed quantity.Duration) {
	if c.finalized {
		panic(newLogicError("attempt to finalize composite node (%s) more than once", c.iface.FullName()))
	}
	currentT := c.iface.context.EventTime().T()
	c.tq.AdvanceTimeTo(currentT)
	c.tc.AdvanceTime(currentT.Diff(c.tc.CurrentTime()))
	for _, idx := range c.initMessage {
		comp := c.components[idx]
		compIface := comp.Interface()
		compIface.PrintEvent("finalization")
		compElapsed := quantity.Duration{}
		if comp.TimePrecision() != NoScale {
			compElapsed = c.tc.DurationSince(idx).FixedAt(comp.TimePrecision())
		}
		comp.FinalizationEvent(compElapsed)
		if missing := compIface.MissingFlowOutput(); missing != -1 {
			panic(newLogicError("flow output port (%s) of message node (%s) not assigned", compIface.flowOutputNames[missing], compIface.FullName()))
		}
		c.activateFlowInnerLinks(idx)
		c.activateFlowOutwardLinks(idx)
	}
	c.processFlowComponents(true)
	c.finalized = true
}
