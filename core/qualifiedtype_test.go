package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeAgentID int

func (f fakeAgentID) CompareTo(other any) int { return int(f) - int(other.(fakeAgentID)) }
func (f fakeAgentID) String() string          { return "agent" }

func TestRegister_Lookup_RoundTripsARegisteredType(t *testing.T) {
	Register(QualifiedType{Name: "core_test.fakeAgentID", Sortable: true, Compare: func(a, b any) int {
		return a.(fakeAgentID).CompareTo(b.(fakeAgentID))
	}})
	qt, ok := Lookup("core_test.fakeAgentID")
	assert.True(t, ok)
	assert.True(t, qt.Sortable)
}

func TestLookup_UnknownName_ReportsNotFound(t *testing.T) {
	_, ok := Lookup("never_registered")
	assert.False(t, ok)
}

func TestToString_FallsBackToStringerThenFmt(t *testing.T) {
	assert.Equal(t, "agent", ToString("unregistered", fakeAgentID(3)))
	assert.Equal(t, "7", ToString("unregistered", 7))
}

func TestCompare_PanicsWhenTypeIsNotRegisteredSortable(t *testing.T) {
	assert.Panics(t, func() { Compare("never_registered", 1, 2) })
}

func TestSortKeys_OrdersInPlaceByRegisteredComparator(t *testing.T) {
	Register(QualifiedType{Name: "core_test.sortable_int", Sortable: true, Compare: func(a, b any) int {
		return a.(int) - b.(int)
	}})
	keys := []any{3, 1, 2}
	SortKeys("core_test.sortable_int", keys)
	assert.Equal(t, []any{1, 2, 3}, keys)
}

func TestCopy_FallsBackToValueUnchangedWithoutDeepCopier(t *testing.T) {
	assert.Equal(t, 5, Copy("unregistered", 5))
}
