package devtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

func TestTimeQueue_ImminentDuration_IsInfiniteWhenEmpty(t *testing.T) {
	tq := NewTimeQueue()
	assert.False(t, tq.ImminentDuration().Finite())
}

func TestTimeQueue_PlanEvent_OrdersByNearestFirst(t *testing.T) {
	tq := NewTimeQueue()
	tq.PlanEvent(1, quantity.Seconds(5))
	tq.PlanEvent(2, quantity.Seconds(2))
	assert.True(t, tq.ImminentDuration().Equal(quantity.Seconds(2)))
	assert.ElementsMatch(t, []int64{2}, tq.ImminentEventIDs())
}

func TestTimeQueue_PlanEvent_GroupsSharedTimesTogether(t *testing.T) {
	tq := NewTimeQueue()
	tq.PlanEvent(1, quantity.Seconds(3))
	tq.PlanEvent(2, quantity.Seconds(3))
	assert.Equal(t, int64(1), tq.TimeCount())
	assert.ElementsMatch(t, []int64{1, 2}, tq.ImminentEventIDs())
}

func TestTimeQueue_AdvanceTimeTo_MovesClockAndPreservesLaterEvents(t *testing.T) {
	tq := NewTimeQueue()
	tq.PlanEvent(1, quantity.Seconds(2))
	tq.PlanEvent(2, quantity.Seconds(5))
	target := tq.CurrentTime().Plus(quantity.Seconds(2))
	tq.AdvanceTimeTo(target)
	assert.True(t, tq.CurrentTime().Equal(target))
	tq.PopImminentEvent(1)
	assert.True(t, tq.ImminentDuration().Equal(quantity.Seconds(3)))
}

func TestTimeQueue_PopImminentEvent_RemovesOnlyTheNamedID(t *testing.T) {
	tq := NewTimeQueue()
	tq.PlanEvent(1, quantity.Seconds(1))
	tq.PlanEvent(2, quantity.Seconds(1))
	tq.PopImminentEvent(1)
	assert.ElementsMatch(t, []int64{2}, tq.ImminentEventIDs())
}

func TestTimeQueue_CancelEvent_ReportsWhetherTheIDWasScheduled(t *testing.T) {
	tq := NewTimeQueue()
	tq.PlanEvent(1, quantity.Seconds(1))
	assert.True(t, tq.CancelEvent(1))
	assert.False(t, tq.CancelEvent(1))
	assert.True(t, tq.Empty())
}

func TestTimeQueue_PlanEvent_ReplacesAnExistingScheduleForTheSameID(t *testing.T) {
	tq := NewTimeQueue()
	tq.PlanEvent(1, quantity.Seconds(5))
	tq.PlanEvent(1, quantity.Seconds(1))
	assert.Equal(t, int64(1), tq.TimeCount())
	assert.True(t, tq.ImminentDuration().Equal(quantity.Seconds(1)))
}

func TestTimeQueue_DurationUntil_IsInfiniteForAnUnknownID(t *testing.T) {
	tq := NewTimeQueue()
	assert.False(t, tq.DurationUntil(42).Finite())
}
