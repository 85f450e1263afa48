package systems

import "github.com/sydevs-sim/sydevs-sim/quantity"

// FunctionHandlers is the user-supplied computation a FunctionNode runs:
// pure flow-to-flow logic with no timed behavior at all.
type FunctionHandlers interface {
	HandleFlowEvent()
}

// FunctionNode is the base embedded by a flow-only node: it participates
// only in a composite's flow-propagation pass (initialization/finalization
// in the dispatch contract's terms) and never appears in a TimeQueue.
type FunctionNode struct {
	iface    *NodeInterface
	Handlers FunctionHandlers
}

// NewFunctionNode constructs the embeddable base for a function node named
// nodeName within ctx.
func NewFunctionNode(nodeName string, ctx *NodeContext) *FunctionNode {
	return &FunctionNode{iface: NewNodeInterface(nodeName, ctx)}
}

func (f *FunctionNode) Interface() *NodeInterface        { return f.iface }
func (f *FunctionNode) NodeDMode() DataMode               { return Flow }
func (f *FunctionNode) TimePrecision() quantity.Scale     { return NoScale }

// InitializationEvent runs the function's handler with its flow inputs
// active, assigns its flow outputs, and reports no planned duration — a
// function node is never scheduled.
func (f *FunctionNode) InitializationEvent() quantity.Duration {
	f.iface.activate(Flow, Input)
	defer f.iface.deactivate()
	func() {
		defer func() {
			if r := recover(); r != nil {
				rerr, ok := r.(error)
				if !ok {
					rerr = newLogicError("%v", r)
				}
				panic(wrapNodeError(f.iface.FullName(), rerr))
			}
		}()
		f.Handlers.HandleFlowEvent()
	}()
	f.iface.ClearFlowInputs()
	return quantity.InfDuration()
}

// UnplannedEvent never fires on a function node.
func (f *FunctionNode) UnplannedEvent(quantity.Duration) quantity.Duration {
	panic(newLogicError("function node (%s) cannot receive an unplanned event", f.iface.FullName()))
}

// PlannedEvent never fires on a function node.
func (f *FunctionNode) PlannedEvent() quantity.Duration {
	panic(newLogicError("function node (%s) cannot receive a planned event", f.iface.FullName()))
}

// FinalizationEvent is a no-op: a function node's output was already
// produced during InitializationEvent.
func (f *FunctionNode) FinalizationEvent(quantity.Duration) {}
