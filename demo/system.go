package demo

import (
	"github.com/sydevs-sim/sydevs-sim/quantity"
	"github.com/sydevs-sim/sydevs-sim/systems"
)

// System is the composite root of scenario 6: one Source feeding one Sink
// over an inner message link, with no ports of its own — a valid
// Simulation root.
type System struct {
	*systems.CompositeNode

	Source *Source
	Sink   *Sink
}

// NewSystem constructs the composite named nodeName within ctx, with Source
// emitting arrivals averaging meanInterval apart.
func NewSystem(nodeName string, ctx *systems.NodeContext, meanInterval quantity.Duration) *System {
	sys := &System{}
	sys.CompositeNode = systems.NewCompositeNode(nodeName, ctx)

	sys.Source = NewSource("source", sys.InternalContext(), meanInterval)
	sys.Sink = NewSink("sink", sys.InternalContext())
	sys.AddComponent(sys.Source)
	sys.AddComponent(sys.Sink)

	systems.InnerLinkMessage(sys.CompositeNode, sys.Source.Output, sys.Sink.Input)

	return sys
}
