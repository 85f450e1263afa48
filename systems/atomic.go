package systems

import (
	"github.com/sydevs-sim/sydevs-sim/core"
	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// AtomicHandlers is the user-supplied state machine an AtomicNode dispatches
// into. Each handler runs with the interface activated in the (mode, goal)
// pair appropriate to its phase — initialization and finalization in flow
// mode, unplanned and planned in message mode — so a handler that reads or
// writes the wrong kind of port panics with a LogicError before any damage
// is done.
type AtomicHandlers interface {
	HandleInitializationEvent() quantity.Duration
	HandleUnplannedEvent(elapsed quantity.Duration) quantity.Duration
	HandlePlannedEvent() quantity.Duration
	HandleFinalizationEvent(elapsed quantity.Duration)
}

// AtomicNode is the base embedded by every leaf, user-coded node: it owns
// the NodeInterface, the event timer, and the declared time precision, and
// translates the SystemNode dispatch contract into calls on Handlers.
type AtomicNode struct {
	iface     *NodeInterface
	timer     core.EventTimer
	precision quantity.Scale
	Handlers  AtomicHandlers
}

// NewAtomicNode constructs the embeddable base for an atomic node named
// nodeName within ctx, reporting elapsed/planned durations at precision
// (NoScale is not a valid atomic-node precision — every atomic node commits
// to a time quantum of its own).
func NewAtomicNode(nodeName string, ctx *NodeContext, precision quantity.Scale) *AtomicNode {
	if precision == NoScale {
		panic(newInvalidArgument("atomic node (%s) must declare a time precision other than no_scale", nodeName))
	}
	return &AtomicNode{iface: NewNodeInterface(nodeName, ctx), precision: precision}
}

func (a *AtomicNode) Interface() *NodeInterface        { return a.iface }
func (a *AtomicNode) NodeDMode() DataMode               { return Message }
func (a *AtomicNode) TimePrecision() quantity.Scale     { return a.precision }
func (a *AtomicNode) EventTimer() *core.EventTimer      { return &a.timer }

func (a *AtomicNode) InitializationEvent() quantity.Duration {
	dt, err := dispatch(a.iface, InitializationEvent, &a.timer, nil, func() (quantity.Duration, error) {
		raw := a.Handlers.HandleInitializationEvent()
		return scalePlannedDt(raw, a.precision)
	})
	if err != nil {
		panic(err)
	}
	a.iface.ClearFlowInputs()
	return dt
}

func (a *AtomicNode) UnplannedEvent(elapsed quantity.Duration) quantity.Duration {
	dt, err := dispatch(a.iface, UnplannedEvent, &a.timer, &elapsed, func() (quantity.Duration, error) {
		raw := a.Handlers.HandleUnplannedEvent(elapsed)
		return scalePlannedDt(raw, a.precision)
	})
	a.iface.ClearMessageInput()
	if err != nil {
		panic(err)
	}
	return dt
}

func (a *AtomicNode) PlannedEvent() quantity.Duration {
	dt, err := dispatch(a.iface, PlannedEvent, &a.timer, nil, func() (quantity.Duration, error) {
		raw := a.Handlers.HandlePlannedEvent()
		return scalePlannedDt(raw, a.precision)
	})
	if err != nil {
		panic(err)
	}
	return dt
}

func (a *AtomicNode) FinalizationEvent(elapsed quantity.Duration) {
	_, err := dispatch(a.iface, FinalizationEvent, &a.timer, &elapsed, func() (quantity.Duration, error) {
		a.Handlers.HandleFinalizationEvent(elapsed)
		return quantity.Duration{}, nil
	})
	if err != nil {
		panic(err)
	}
}
