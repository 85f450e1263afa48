// Package demo is a minimal source/sink composite exercising the atomic and
// composite node classes of the systems kernel: scenario 6 of the simulation kernel's
// testable properties, built out as a small standalone domain rather than
// left as an abstract test fixture.
package demo

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sydevs-sim/sydevs-sim/quantity"
	"github.com/sydevs-sim/sydevs-sim/systems"
)

// Source emits a message at Poisson-process intervals: the inter-arrival
// time is drawn fresh after every emission from an exponential distribution
// with the configured mean rate. The draw uses distuv.Exponential's Quantile
// (inverse CDF) against the node's own partitioned RNG stream rather than
// distuv's own Rand(), so the sequence stays reproducible under
// NodeContext's deterministic, per-node RNG partitioning.
type Source struct {
	*systems.AtomicNode

	Output systems.MessageOutput[float64]

	dist    distuv.Exponential
	emitted int64
}

// NewSource constructs a source node named nodeName within ctx, emitting at
// millisecond precision with inter-arrival times averaging meanInterval.
func NewSource(nodeName string, ctx *systems.NodeContext, meanInterval quantity.Duration) *Source {
	s := &Source{}
	s.AtomicNode = systems.NewAtomicNode(nodeName, ctx, quantity.Milli)
	s.Output = systems.NewMessageOutput[float64](s.Interface(), "arrival")
	meanMs := float64(meanInterval.FixedAt(quantity.Milli).Multiplier())
	s.dist = distuv.Exponential{Rate: 1.0 / meanMs}
	s.Handlers = s
	return s
}

func (s *Source) HandleInitializationEvent() quantity.Duration {
	return s.nextInterval()
}

func (s *Source) HandleUnplannedEvent(quantity.Duration) quantity.Duration {
	panic("source node never receives an unplanned event")
}

func (s *Source) HandlePlannedEvent() quantity.Duration {
	s.emitted++
	s.Output.Send(float64(s.emitted))
	return s.nextInterval()
}

func (s *Source) HandleFinalizationEvent(quantity.Duration) {}

func (s *Source) EmittedCount() int64 { return s.emitted }

func (s *Source) nextInterval() quantity.Duration {
	u := s.Interface().RNG().Float64()
	ms := s.dist.Quantile(u)
	return quantity.Milliseconds(int64(ms)).FixedAt(quantity.Milli)
}
