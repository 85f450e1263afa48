package devtime

import "github.com/sydevs-sim/sydevs-sim/quantity"

// TimeCache tracks, for a set of retained event ids, the exact duration
// elapsed since each was retained. Unlike TimeQueue (which looks forward to
// the next event), TimeCache looks backward: it is how a node remembers
// "how long has it been since X happened" without keeping every historical
// TimePoint around forever. An id is retained at a fixed precision; once the
// elapsed time since retention can no longer be expressed as a Quantity at
// that precision (it would need a multiplier at or beyond QuantityLimit),
// the cache evicts it rather than silently losing resolution.
type TimeCache struct {
	ct       TimePoint
	retained map[int64]cachedEvent
}

type cachedEvent struct {
	at        TimePoint
	precision quantity.Scale
}

// NewTimeCache returns an empty cache whose clock starts at zero.
func NewTimeCache() *TimeCache {
	return NewTimeCacheAtPoint(NewTimePoint())
}

// NewTimeCacheAtPoint returns an empty cache whose clock starts at t0.
func NewTimeCacheAtPoint(t0 TimePoint) *TimeCache {
	return &TimeCache{ct: t0, retained: make(map[int64]cachedEvent)}
}

// CurrentTime returns the cache's current clock position.
func (tc *TimeCache) CurrentTime() TimePoint { return tc.ct }

// Empty reports whether no events are retained.
func (tc *TimeCache) Empty() bool { return len(tc.retained) == 0 }

// Size returns the number of retained events.
func (tc *TimeCache) Size() int64 { return int64(len(tc.retained)) }

// EventIDs returns the ids of all currently retained events, in no
// particular order.
func (tc *TimeCache) EventIDs() []int64 {
	ids := make([]int64, 0, len(tc.retained))
	for id := range tc.retained {
		ids = append(ids, id)
	}
	return ids
}

// RetainEvent (re-)anchors eventID to the cache's current time at the given
// precision. Calling it again for an id already retained resets its origin
// to now.
func (tc *TimeCache) RetainEvent(eventID int64, precision quantity.Scale) {
	tc.retained[eventID] = cachedEvent{at: tc.ct.clone(), precision: precision}
}

// ReleaseEvent stops tracking eventID, reporting whether it had been retained.
func (tc *TimeCache) ReleaseEvent(eventID int64) bool {
	if _, ok := tc.retained[eventID]; !ok {
		return false
	}
	delete(tc.retained, eventID)
	return true
}

// DurationSince returns the exact duration elapsed since eventID was
// retained, expressed at the precision it was retained with, or an infinite
// duration if the id is unknown or has aged out of representable range.
func (tc *TimeCache) DurationSince(eventID int64) quantity.Duration {
	ev, ok := tc.retained[eventID]
	if !ok {
		return quantity.InfDuration()
	}
	return tc.elapsedSince(ev)
}

func (tc *TimeCache) elapsedSince(ev cachedEvent) quantity.Duration {
	diff := tc.ct.Diff(ev.at)
	if !diff.Finite() {
		return quantity.InfDuration()
	}
	return diff.Rescaled(ev.precision)
}

// AdvanceTime moves the clock forward by dt and evicts any retained event
// whose elapsed duration has exceeded what its precision can represent.
func (tc *TimeCache) AdvanceTime(dt quantity.Duration) TimePoint {
	tc.ct.Advance(dt)
	for id, ev := range tc.retained {
		if !tc.elapsedSince(ev).Finite() {
			delete(tc.retained, id)
		}
	}
	return tc.ct
}
