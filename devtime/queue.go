package devtime

import (
	"fmt"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// TimeQueue is a time-ordered schedule of pending event ids. Rather than
// storing absolute TimePoint values per event (expensive to keep in sync as
// the current time advances), it stores each event's duration-until-fire as
// a "phase duration" relative to a synthetic 5-scale epoch, which is cheap
// to re-derive from the current time and supports mixing events of very
// different time precisions in one ordered structure.
type TimeQueue struct {
	defaultPrecision quantity.Scale
	ct               TimePoint

	// queue holds one phase-duration entry per distinct imminent-sorted
	// event time, nearest first.
	queue []quantity.Duration

	// eventIDSets groups event ids sharing a phase duration. Keyed by the
	// phase duration's (multiplier, precision) pair via phaseKey.
	eventIDSets map[phaseKey]map[int64]struct{}

	// eventAccounts maps an event id to the phase duration and original
	// requested precision it was planned with, so cancellation and
	// duration_until queries don't need to search the queue.
	eventAccounts map[int64]eventAccount
}

type eventAccount struct {
	pdt       quantity.Duration
	precision quantity.Scale
}

type phaseKey struct {
	multiplier int64
	precision  quantity.Scale
}

func keyOf(pdt quantity.Duration) phaseKey {
	return phaseKey{multiplier: pdt.Multiplier(), precision: pdt.Precision()}
}

// NewTimeQueue returns an empty queue whose clock starts at zero.
func NewTimeQueue() *TimeQueue {
	return newTimeQueueAt(NewTimePoint())
}

// NewTimeQueueAt returns an empty queue whose clock starts at dt0.
func NewTimeQueueAt(dt0 quantity.Duration) *TimeQueue {
	return newTimeQueueAt(NewTimePointAt(dt0))
}

// NewTimeQueueAtPoint returns an empty queue whose clock starts at t0.
func NewTimeQueueAtPoint(t0 TimePoint) *TimeQueue {
	return newTimeQueueAt(t0)
}

func newTimeQueueAt(ct TimePoint) *TimeQueue {
	tq := &TimeQueue{
		ct:            ct,
		eventIDSets:   make(map[phaseKey]map[int64]struct{}),
		eventAccounts: make(map[int64]eventAccount),
	}
	tq.defaultPrecision = ct.Precision() + quantity.Scale(ct.NScales())
	return tq
}

// CurrentTime returns the queue's current clock position.
func (tq *TimeQueue) CurrentTime() TimePoint { return tq.ct }

// Empty reports whether no events are scheduled.
func (tq *TimeQueue) Empty() bool { return len(tq.queue) == 0 }

// TimeCount returns the number of distinct pending event times.
func (tq *TimeQueue) TimeCount() int64 { return int64(len(tq.queue)) }

// AdvanceTime moves the clock forward to the next imminent event time and
// returns it. Panics if the queue is empty.
func (tq *TimeQueue) AdvanceTime() TimePoint {
	if tq.Empty() {
		panic("devtime: no events exist to constrain time advancement")
	}
	tq.ct.Advance(tq.ImminentDuration())
	return tq.ct
}

// AdvanceTimeBy moves the clock forward by dt, which must not pass any
// scheduled event.
func (tq *TimeQueue) AdvanceTimeBy(dt quantity.Duration) TimePoint {
	if !tq.CanAdvanceBy(dt) {
		panic("devtime: advancement duration must not set current time later than imminent events")
	}
	tq.ct.Advance(dt)
	return tq.ct
}

// AdvanceTimeTo moves the clock forward to an absolute time t, which must not
// precede the current time.
func (tq *TimeQueue) AdvanceTimeTo(t TimePoint) TimePoint {
	if t.Less(tq.ct) {
		panic("devtime: advancement time must be later than current time of time queue")
	}
	for tq.ct.Less(t) {
		tq.AdvanceTimeBy(t.Gap(tq.ct))
	}
	if tq.ct.NotEqual(t) {
		panic("devtime: unexpected error occurred while advancing time queue to specified time")
	}
	return tq.ct
}

// CanAdvanceBy reports whether advancing the clock by dt would not pass any
// scheduled event.
func (tq *TimeQueue) CanAdvanceBy(dt quantity.Duration) bool {
	if dt.IsZero() {
		return true
	}
	if !dt.Valid() {
		panic("devtime: advancement duration must be valid")
	}
	if dt.IsNegative() {
		panic("devtime: advancement duration must be non-negative")
	}
	if !dt.Finite() {
		panic("devtime: advancement duration must be finite")
	}
	imminentDt := tq.ImminentDuration()
	if !imminentDt.Finite() {
		return true
	}
	precision := min(dt.Precision(), imminentDt.Precision())
	return tq.refinedDuration(dt, precision).LessEqual(tq.refinedDuration(imminentDt, precision))
}

// ImminentDuration returns the duration until the next event, or an infinite
// duration if the queue is empty.
func (tq *TimeQueue) ImminentDuration() quantity.Duration {
	if tq.Empty() {
		return quantity.InfDuration()
	}
	return tq.durationFromPhase(tq.queue[0])
}

// DurationUntil returns the duration until the named event fires, or an
// infinite duration if no such event is scheduled.
func (tq *TimeQueue) DurationUntil(eventID int64) quantity.Duration {
	ea, ok := tq.eventAccounts[eventID]
	if !ok {
		return quantity.InfDuration()
	}
	return tq.rescaledDurationFromPhase(ea.pdt, ea.precision)
}

// DurationAt returns the duration until the timeIndex'th distinct event
// time (0 = imminent).
func (tq *TimeQueue) DurationAt(timeIndex int64) quantity.Duration {
	if timeIndex < 0 {
		panic("devtime: duration time index must be non-negative")
	}
	if timeIndex >= tq.TimeCount() {
		panic("devtime: duration time index must be less than the number of distinct event times")
	}
	return tq.durationFromPhase(tq.queue[timeIndex])
}

// ImminentEventIDs returns the ids of all events sharing the nearest time.
func (tq *TimeQueue) ImminentEventIDs() []int64 {
	if tq.Empty() {
		panic("devtime: no imminent events exist")
	}
	return idsOf(tq.eventIDSets[keyOf(tq.queue[0])])
}

// EventIDsAt returns the ids of all events at the timeIndex'th distinct time.
func (tq *TimeQueue) EventIDsAt(timeIndex int64) []int64 {
	if timeIndex < 0 {
		panic("devtime: event time index must be non-negative")
	}
	if timeIndex >= tq.TimeCount() {
		panic("devtime: event time index must be less than the number of distinct event times")
	}
	return idsOf(tq.eventIDSets[keyOf(tq.queue[timeIndex])])
}

func idsOf(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// PopImminentEvent removes a single named event from the imminent set.
func (tq *TimeQueue) PopImminentEvent(eventID int64) {
	if tq.Empty() {
		panic("devtime: no imminent events exist to search for specified id")
	}
	pdt := tq.queue[0]
	key := keyOf(pdt)
	set, ok := tq.eventIDSets[key]
	if !ok {
		panic("devtime: no imminent event has specified id")
	}
	if _, present := set[eventID]; !present {
		panic("devtime: no imminent event has specified id")
	}
	if len(set) > 1 {
		delete(set, eventID)
	} else {
		tq.queue = tq.queue[1:]
		delete(tq.eventIDSets, key)
	}
	delete(tq.eventAccounts, eventID)
}

// PopImminentEvents removes every event sharing the nearest time.
func (tq *TimeQueue) PopImminentEvents() {
	if tq.Empty() {
		panic("devtime: no imminent events exist to be popped")
	}
	pdt := tq.queue[0]
	key := keyOf(pdt)
	for id := range tq.eventIDSets[key] {
		delete(tq.eventAccounts, id)
	}
	tq.queue = tq.queue[1:]
	delete(tq.eventIDSets, key)
}

// PlanEvent schedules eventID to fire dt from now, replacing any existing
// schedule for the same id.
func (tq *TimeQueue) PlanEvent(eventID int64, dt quantity.Duration) {
	if !dt.Valid() {
		panic("devtime: planned duration must be valid")
	}
	if dt.IsNegative() {
		panic("devtime: planned duration must be non-negative")
	}
	if !dt.Finite() {
		panic("devtime: planned duration must be finite")
	}
	tq.CancelEvent(eventID)
	pdt := tq.phaseFromDuration(dt)
	key := keyOf(pdt)
	idx := tq.lowerBound(pdt)
	if idx == len(tq.queue) || keyOf(tq.queue[idx]) != key {
		tq.queue = append(tq.queue, quantity.Quantity{})
		copy(tq.queue[idx+1:], tq.queue[idx:])
		tq.queue[idx] = pdt
		tq.eventIDSets[key] = map[int64]struct{}{eventID: {}}
	} else {
		tq.eventIDSets[key][eventID] = struct{}{}
	}
	tq.eventAccounts[eventID] = eventAccount{pdt: pdt, precision: dt.Precision()}
}

// CancelEvent removes the named event if scheduled, reporting whether it was found.
func (tq *TimeQueue) CancelEvent(eventID int64) bool {
	ea, ok := tq.eventAccounts[eventID]
	if !ok {
		return false
	}
	key := keyOf(ea.pdt)
	set := tq.eventIDSets[key]
	if len(set) > 1 {
		delete(set, eventID)
	} else {
		idx := tq.lowerBound(ea.pdt)
		tq.queue = append(tq.queue[:idx], tq.queue[idx+1:]...)
		delete(tq.eventIDSets, key)
	}
	delete(tq.eventAccounts, eventID)
	return true
}

func (tq *TimeQueue) durationFromPhase(pdt quantity.Duration) quantity.Duration {
	multiplier := pdt.Multiplier() - tq.ct.EpochPhase(pdt.Precision())
	if multiplier < 0 {
		multiplier += quantity.QuantityLimit
	}
	return quantity.NewQuantity(multiplier, pdt.Precision(), quantity.DimsTime)
}

func (tq *TimeQueue) refinedDuration(dt quantity.Duration, precision quantity.Scale) quantity.Duration {
	multiplier := dt.Multiplier()
	if multiplier > 0 {
		for s := dt.Precision() - 1; multiplier < quantity.QuantityLimit && s >= precision; s-- {
			multiplier = 1000*multiplier - tq.ct.ScalePhase(s)
		}
	}
	return quantity.NewQuantity(multiplier, precision, quantity.DimsTime)
}

func (tq *TimeQueue) refinedDurationFromPhase(pdt quantity.Duration, precision quantity.Scale) quantity.Duration {
	return tq.refinedDuration(tq.durationFromPhase(pdt), precision)
}

func (tq *TimeQueue) rescaledDurationFromPhase(pdt quantity.Duration, precision quantity.Scale) quantity.Duration {
	dt := tq.durationFromPhase(pdt)
	if precision <= dt.Precision() {
		return tq.refinedDuration(dt, precision)
	}
	return quantity.NewQuantity(dt.Multiplier(), precision, quantity.DimsTime)
}

func (tq *TimeQueue) phaseFromDuration(dt quantity.Duration) quantity.Duration {
	precision := dt.Precision()
	if dt.Multiplier() == 0 {
		precision = tq.ct.Precision()
	}
	phase := tq.ct.EpochPhase(precision) + dt.Multiplier()

	coarsenessMaximized := false
	coarsenessUnbounded := false
	for !coarsenessMaximized && !coarsenessUnbounded {
		carry := int64(0)
		if phase >= quantity.QuantityLimit {
			phase -= quantity.QuantityLimit
			carry = 1
		}
		switch {
		case phase%1000 != 0:
			coarsenessMaximized = true
		case phase == 0 && precision+5 >= tq.ct.Precision()+quantity.Scale(tq.ct.NScales()):
			if tq.ct.Sign() == 1 {
				coarsenessUnbounded = carry == 0
			} else {
				coarsenessUnbounded = carry == 1
			}
		}
		if !coarsenessMaximized && !coarsenessUnbounded {
			phase = phase/1000 + (quantity.QuantityLimit/1000)*(tq.ct.ScalePhase(precision+5)+carry)
			precision++
		}
	}
	if coarsenessUnbounded {
		precision = tq.defaultPrecision
	}
	return quantity.NewQuantity(phase, precision, quantity.DimsTime)
}

// lowerBound finds the insertion index for pdt in queue, ordered by the
// refined duration each phase entry represents at their shared precision.
func (tq *TimeQueue) lowerBound(pdt quantity.Duration) int {
	lo, hi := 0, len(tq.queue)
	for lo < hi {
		mid := (lo + hi) / 2
		entry := tq.queue[mid]
		precision := min(entry.Precision(), pdt.Precision())
		entryDt := tq.refinedDurationFromPhase(entry, precision)
		valueDt := tq.refinedDurationFromPhase(pdt, precision)
		if entryDt.Less(valueDt) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (k phaseKey) String() string { return fmt.Sprintf("(%d, %d)", k.multiplier, k.precision) }
