package devtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

func TestTimeCache_DurationSince_IsInfiniteForAnUnknownID(t *testing.T) {
	tc := NewTimeCache()
	assert.False(t, tc.DurationSince(7).Finite())
}

func TestTimeCache_RetainThenAdvance_TracksExactElapsedDuration(t *testing.T) {
	tc := NewTimeCache()
	tc.RetainEvent(1, quantity.Milli)
	tc.AdvanceTime(quantity.Seconds(2))
	assert.True(t, tc.DurationSince(1).Equal(quantity.Seconds(2)))
}

func TestTimeCache_ReleaseEvent_StopsTrackingAndReportsPriorPresence(t *testing.T) {
	tc := NewTimeCache()
	tc.RetainEvent(1, quantity.Unit)
	assert.True(t, tc.ReleaseEvent(1))
	assert.False(t, tc.ReleaseEvent(1))
	assert.False(t, tc.DurationSince(1).Finite())
}

func TestTimeCache_RetainEvent_ResetsOriginWhenCalledAgain(t *testing.T) {
	tc := NewTimeCache()
	tc.RetainEvent(1, quantity.Unit)
	tc.AdvanceTime(quantity.Seconds(3))
	tc.RetainEvent(1, quantity.Unit)
	tc.AdvanceTime(quantity.Seconds(1))
	assert.True(t, tc.DurationSince(1).Equal(quantity.Seconds(1)))
}

func TestTimeCache_AdvanceTime_EvictsEventsThatAgeOutOfPrecisionRange(t *testing.T) {
	tc := NewTimeCache()
	tc.RetainEvent(1, quantity.Yocto)
	tc.AdvanceTime(quantity.Yottaseconds(1))
	assert.Equal(t, int64(0), tc.Size())
	assert.False(t, tc.DurationSince(1).Finite())
}
