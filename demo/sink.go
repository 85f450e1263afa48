package demo

import (
	"github.com/sydevs-sim/sydevs-sim/quantity"
	"github.com/sydevs-sim/sydevs-sim/systems"
)

// Sink counts the messages it receives and reports the final tally as a
// flow output at finalization. It never schedules a planned event of its
// own — it is driven entirely by incoming messages.
type Sink struct {
	*systems.AtomicNode

	Input systems.MessageInput[float64]
	Count systems.FlowOutput[int64]

	received int64
}

// NewSink constructs a sink node named nodeName within ctx.
func NewSink(nodeName string, ctx *systems.NodeContext) *Sink {
	s := &Sink{}
	s.AtomicNode = systems.NewAtomicNode(nodeName, ctx, quantity.Milli)
	s.Input = systems.NewMessageInput[float64](s.Interface(), "arrival")
	s.Count = systems.NewFlowOutput[int64](s.Interface(), "count")
	s.Handlers = s
	return s
}

func (s *Sink) HandleInitializationEvent() quantity.Duration {
	return quantity.InfDuration()
}

func (s *Sink) HandleUnplannedEvent(quantity.Duration) quantity.Duration {
	if s.Input.Received() {
		s.received++
	}
	return quantity.InfDuration()
}

func (s *Sink) HandlePlannedEvent() quantity.Duration {
	panic("sink node never schedules a planned event")
}

func (s *Sink) HandleFinalizationEvent(quantity.Duration) {
	s.Count.Assign(s.received)
}

func (s *Sink) ReceivedCount() int64 { return s.received }
