package systems

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sydevs-sim/sydevs-sim/core"
	"github.com/sydevs-sim/sydevs-sim/devtime"
	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// Simulation drives a single port-free root node through its full lifetime:
// one initialization event, a stream of planned events, and one
// finalization event, with simulated time advancing between them.
type Simulation struct {
	startT      devtime.TimePoint
	endT        devtime.TimePoint
	canEndEarly bool

	ctx *NodeContext
	Top SystemNode

	started   bool
	finishing bool
	finished  bool

	tq *devtime.TimeQueue
	tc *devtime.TimeCache

	timer core.EventTimer
}

// NewSimulation constructs a run spanning [startT, endT). canEndEarly
// allows the run to finish before endT once every event is exhausted;
// when false, the root node's finalization event fires exactly at endT
// even if nothing else remains scheduled. newTop constructs the root node
// against the simulation's own context.
func NewSimulation(startT, endT devtime.TimePoint, canEndEarly bool, seed int64, out io.Writer, log *logrus.Logger, newTop func(ctx *NodeContext) SystemNode) *Simulation {
	ctx := NewRootContext(seed, out, log)
	ctx.SetEventTime(NewDiscreteEventTime(startT))
	top := newTop(ctx)
	sim := &Simulation{
		startT:      startT,
		endT:        endT,
		canEndEarly: canEndEarly,
		ctx:         ctx,
		Top:         top,
		tq:          devtime.NewTimeQueueAtPoint(startT),
		tc:          devtime.NewTimeCacheAtPoint(startT),
	}
	sim.validate()
	return sim
}

// NewTotalDurationSimulation constructs a run starting at time zero and
// lasting totalDt; when totalDt is infinite the run can end early, and it
// finishes once its own events are exhausted.
func NewTotalDurationSimulation(totalDt quantity.Duration, seed int64, out io.Writer, log *logrus.Logger, newTop func(ctx *NodeContext) SystemNode) *Simulation {
	startT := devtime.NewTimePoint()
	var endT devtime.TimePoint
	if totalDt.Finite() {
		endT = startT.Plus(totalDt)
	} else {
		endT = startT.Plus(quantity.NewQuantity(1, farFutureScale(), quantity.DimsTime))
	}
	return NewSimulation(startT, endT, !totalDt.Finite(), seed, out, log, newTop)
}

func (s *Simulation) validate() {
	iface := s.Top.Interface()
	if iface.FlowInputPortCount() != 0 || iface.MessageInputPortCount() != 0 ||
		iface.MessageOutputPortCount() != 0 || iface.FlowOutputPortCount() != 0 {
		panic(newInvalidArgument("node to be simulated must have no ports"))
	}
}

func (s *Simulation) StartTime() devtime.TimePoint { return s.startT }
func (s *Simulation) EndTime() devtime.TimePoint   { return s.endT }
func (s *Simulation) CanEndEarly() bool            { return s.canEndEarly }
func (s *Simulation) Started() bool                { return s.started }
func (s *Simulation) Finishing() bool              { return s.finishing }
func (s *Simulation) Finished() bool               { return s.finished }
func (s *Simulation) Time() DiscreteEventTime      { return s.ctx.EventTime() }
func (s *Simulation) ImminentDuration() quantity.Duration { return s.tq.ImminentDuration() }
func (s *Simulation) EventTimer() *core.EventTimer { return &s.timer }

const rootEventID = int64(0)

// ProcessNextEvent runs exactly one event of the root node: its
// initialization event if the run hasn't started, its next planned event
// if more are scheduled, or its finalization event once the run is
// finishing. A no-op once the run has finished.
func (s *Simulation) ProcessNextEvent() {
	if s.finished {
		return
	}
	if !s.finishing {
		if !s.started {
			s.processInitializationEvent()
		} else {
			s.processPlannedEvent()
		}
		s.advanceTime()
	} else {
		s.processFinalizationEvent()
	}
}

// ProcessNextEvents runs every event occurring at the current simulated
// time, returning how many were processed.
func (s *Simulation) ProcessNextEvents() int64 {
	var count int64
	t := s.ctx.EventTime().T()
	for !s.finished && s.ctx.EventTime().T().Equal(t) {
		s.ProcessNextEvent()
		count++
	}
	return count
}

// ProcessEventsUntil runs events until simulated time reaches at least t,
// returning how many were processed.
func (s *Simulation) ProcessEventsUntil(t devtime.TimePoint) int64 {
	var count int64
	for !s.finished && s.ctx.EventTime().T().Less(t) {
		s.ProcessNextEvent()
		count++
	}
	return count
}

// ProcessRemainingEvents runs the simulation to completion, returning how
// many events were processed.
func (s *Simulation) ProcessRemainingEvents() int64 {
	var count int64
	for !s.finished {
		s.ProcessNextEvent()
		count++
	}
	return count
}

func (s *Simulation) processInitializationEvent() {
	s.started = true
	iface := s.Top.Interface()
	iface.PrintEvent("initialization")
	iface.activate(Flow, Input)
	s.timer.Start()
	plannedDt := s.Top.InitializationEvent()
	s.timer.Stop()
	iface.deactivate()
	if plannedDt.Finite() {
		s.tq.PlanEvent(rootEventID, plannedDt)
	}
	if s.Top.TimePrecision() != NoScale {
		s.tc.RetainEvent(rootEventID, s.Top.TimePrecision())
	}
}

func (s *Simulation) processPlannedEvent() {
	iface := s.Top.Interface()
	iface.PrintEvent("planned")
	elapsed := quantity.Duration{}
	if s.Top.TimePrecision() != NoScale {
		elapsed = s.tc.DurationSince(rootEventID).FixedAt(s.Top.TimePrecision())
	}
	iface.activate(Message, Output)
	s.timer.Start()
	plannedDt := s.Top.PlannedEvent()
	s.timer.Stop()
	iface.deactivate()
	if plannedDt.Finite() {
		s.tq.PlanEvent(rootEventID, plannedDt)
	} else {
		s.tq.PopImminentEvent(rootEventID)
	}
	if s.Top.TimePrecision() != NoScale {
		s.tc.RetainEvent(rootEventID, s.Top.TimePrecision())
	}
	_ = elapsed
}

func (s *Simulation) processFinalizationEvent() {
	iface := s.Top.Interface()
	iface.PrintEvent("finalization")
	elapsed := quantity.Duration{}
	if s.Top.TimePrecision() != NoScale {
		elapsed = s.tc.DurationSince(rootEventID).FixedAt(s.Top.TimePrecision())
	}
	iface.activate(Flow, Output)
	s.timer.Start()
	s.Top.FinalizationEvent(elapsed)
	s.timer.Stop()
	iface.deactivate()
	s.finished = true
}

func (s *Simulation) advanceTime() {
	if s.finishing {
		return
	}
	plannedDt := s.tq.ImminentDuration()
	if !plannedDt.Finite() && s.canEndEarly {
		s.finishing = true
		return
	}
	current := s.ctx.EventTime()
	var nextT devtime.TimePoint
	if plannedDt.Finite() {
		nextT = current.T().Plus(plannedDt)
		if nextT.GreaterEqual(s.endT) {
			nextT = s.endT
		}
	} else {
		nextT = s.endT
	}
	if nextT.Greater(current.T()) {
		s.ctx.SetEventTime(current.AdvancedTo(nextT))
		s.ctx.SetTimePrinted(false)
		s.tq.AdvanceTimeTo(nextT)
		s.tc.AdvanceTime(nextT.Diff(s.tc.CurrentTime()))
	} else {
		s.ctx.SetEventTime(current.NextEvent())
	}
	if s.ctx.EventTime().T().GreaterEqual(s.endT) {
		s.finishing = true
	}
}

func farFutureScale() quantity.Scale {
	return quantity.NoScale - 6
}
