package systems

import (
	"github.com/sydevs-sim/sydevs-sim/core"
	"github.com/sydevs-sim/sydevs-sim/devtime"
	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// DiscreteEventTime is the superdense time coordinate every event is
// dispatched at: a TimePoint t, a serial index tIndex identifying t among
// the distinct time points the simulation has reached (so printed output
// never has to restate the full digit vector), and a generation counter c
// that increases on every event processed at the same t and resets to 0
// whenever t itself advances.
type DiscreteEventTime struct {
	t      devtime.TimePoint
	tIndex int64
	c      int64
}

// NewDiscreteEventTime constructs the initial coordinate at t, t_index 0, c 0.
func NewDiscreteEventTime(t devtime.TimePoint) DiscreteEventTime {
	return DiscreteEventTime{t: t}
}

func (d DiscreteEventTime) T() devtime.TimePoint { return d.t }
func (d DiscreteEventTime) TIndex() int64        { return d.tIndex }
func (d DiscreteEventTime) C() int64             { return d.c }

// AdvancedTo returns the coordinate after the clock advances to a new,
// distinct TimePoint: t_index increments, c resets to 0.
func (d DiscreteEventTime) AdvancedTo(t devtime.TimePoint) DiscreteEventTime {
	return DiscreteEventTime{t: t, tIndex: d.tIndex + 1, c: 0}
}

// NextEvent returns the coordinate for the next event processed at the same
// t: t_index stays fixed, c increments.
func (d DiscreteEventTime) NextEvent() DiscreteEventTime {
	return DiscreteEventTime{t: d.t, tIndex: d.tIndex, c: d.c + 1}
}

// EventKind tags which of the four dispatch phases a node is currently
// processing, for tracing and for the simulation-determinism invariant's
// (t_index, c, node, event_kind) tuple stream.
type EventKind int

const (
	InitializationEvent EventKind = iota
	UnplannedEvent
	PlannedEvent
	FinalizationEvent
)

func (k EventKind) String() string {
	switch k {
	case InitializationEvent:
		return "initialization_event"
	case UnplannedEvent:
		return "unplanned_event"
	case PlannedEvent:
		return "planned_event"
	case FinalizationEvent:
		return "finalization_event"
	default:
		return "unknown_event"
	}
}

// SystemNode is the dispatch contract every node class (atomic, composite,
// collection, function) implements. The framework (a Simulation driver, or
// a composite/collection dispatching one of its own children) never calls
// a user handler directly: it always goes through these four methods, each
// of which brackets its user-supplied logic with interface activation,
// timing, and panic-to-NodeError conversion.
type SystemNode interface {
	// Interface returns the node's I/O surface.
	Interface() *NodeInterface

	// NodeDMode returns Flow if the node has data flow elements only, and
	// Message otherwise. A composite or collection computes this from its
	// components/agents; an atomic node is always Message; a function node
	// is always Flow.
	NodeDMode() DataMode

	// TimePrecision returns the scale at which this node reports planned
	// durations, or NoScale if it has no scale of its own (every composite and
	// function node; a collection reports the precision it was constructed
	// with).
	TimePrecision() quantity.Scale

	// InitializationEvent runs once, with all flow inputs assigned, and
	// returns the duration until this node's first planned event.
	InitializationEvent() quantity.Duration

	// UnplannedEvent runs when an inward/external message arrives elapsed_dt
	// after the node's last event, and returns the new duration until the
	// next planned event.
	UnplannedEvent(elapsed quantity.Duration) quantity.Duration

	// PlannedEvent runs when the node's previously-reported duration has
	// fully elapsed, and returns the duration until the following planned
	// event.
	PlannedEvent() quantity.Duration

	// FinalizationEvent runs exactly once, after the node will never be
	// dispatched again, elapsed_dt after its last event.
	FinalizationEvent(elapsed quantity.Duration)
}

// NoScale marks a node with no time scale of its own: every composite and
// function node, and any collection constructed with it. An atomic node
// cannot use it.
const NoScale = quantity.NoScale

// dispatch brackets a single call into kind against iface and timer:
// activates the interface in the (mode, goal) appropriate to kind, times the
// call, recovers any panic or wraps any returned error into a NodeError
// naming the node's full path, deactivates the interface, and emits the
// PrintEvent/PrintElapsedDuration/PrintPlannedDuration tracing lines.
// elapsed is nil for event kinds with no elapsed duration to report
// (initialization, and an atomic node's planned event).
func dispatch(iface *NodeInterface, kind EventKind, timer *core.EventTimer, elapsed *quantity.Duration, fn func() (quantity.Duration, error)) (dt quantity.Duration, err error) {
	mode, goal := activationFor(kind)
	iface.activate(mode, goal)
	iface.PrintEvent(kind.String())
	if elapsed != nil {
		iface.PrintElapsedDuration(elapsed.String())
	}
	if timer != nil {
		timer.Start()
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		iface.deactivate()
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = newLogicError("%v", r)
			}
			err = wrapNodeError(iface.FullName(), rerr)
		}
		if err != nil {
			err = wrapNodeError(iface.FullName(), err)
			iface.PrintError(err)
		}
	}()
	dt, err = fn()
	if err == nil {
		iface.PrintPlannedDuration(dt.String())
	}
	return dt, err
}

func activationFor(kind EventKind) (DataMode, DataGoal) {
	switch kind {
	case InitializationEvent:
		return Flow, Input
	case UnplannedEvent:
		return Message, Input
	case PlannedEvent:
		return Message, Output
	case FinalizationEvent:
		return Flow, Output
	default:
		return Flow, Input
	}
}

// scalePlannedDt validates a duration returned by a node's handler (must be
// valid, non-negative, and finite or exactly Inf) and rescales it to
// precision, unless precision is NoScale, in which case it is returned
// unchanged — a node without a scale of its own defers to its components'
// own precisions.
func scalePlannedDt(plannedDt quantity.Duration, precision quantity.Scale) (quantity.Duration, error) {
	if !plannedDt.Valid() {
		return quantity.Duration{}, newInvalidArgument("planned duration is invalid")
	}
	if plannedDt.IsNegative() {
		return quantity.Duration{}, newDomainError("planned duration (%s) is negative", plannedDt.String())
	}
	if precision == NoScale {
		return plannedDt, nil
	}
	if !plannedDt.Finite() {
		return plannedDt.Rescaled(precision), nil
	}
	rescaled := plannedDt.Rescaled(precision)
	if rescaled.Multiplier() == 0 && !plannedDt.IsZero() {
		return quantity.Duration{}, newDomainError("planned duration (%s) is too small to be represented at time precision (%s)", plannedDt.String(), precision.Symbol())
	}
	return rescaled, nil
}
