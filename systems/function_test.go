package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// doublingHandlers is a minimal FunctionHandlers fixture: pure flow-in,
// flow-out, no timed behavior.
type doublingHandlers struct {
	*FunctionNode
	in  FlowInput[int]
	out FlowOutput[int]
}

func newDoublingNode(name string, ctx *NodeContext) *doublingHandlers {
	h := &doublingHandlers{FunctionNode: NewFunctionNode(name, ctx)}
	h.in = NewFlowInput[int](h.Interface(), "a")
	h.out = NewFlowOutput[int](h.Interface(), "sum")
	h.Handlers = h
	return h
}

func (h *doublingHandlers) HandleFlowEvent() {
	h.out.Assign(h.in.Value() * 2)
}

func TestFunctionNode_InitializationEvent_AssignsFlowOutputFromFlowInput(t *testing.T) {
	h := newDoublingNode("double", NewRootContext(0, nil, nil))
	h.Interface().AssignFlowInput(0, 21)

	dt := h.InitializationEvent()

	assert.False(t, dt.Finite())
	assert.Equal(t, 42, h.Interface().FlowOutputValue(0))
}

func TestFunctionNode_InitializationEvent_ClearsFlowInputsAfterRunning(t *testing.T) {
	h := newDoublingNode("double", NewRootContext(0, nil, nil))
	h.Interface().AssignFlowInput(0, 21)

	h.InitializationEvent()

	assert.Equal(t, int64(0), h.Interface().MissingFlowInput())
}

func TestFunctionNode_UnplannedEvent_PanicsBecauseAFunctionNodeIsNeverScheduled(t *testing.T) {
	h := newDoublingNode("double", NewRootContext(0, nil, nil))
	assert.Panics(t, func() { h.UnplannedEvent(quantity.Duration{}) })
}

func TestFunctionNode_PlannedEvent_PanicsBecauseAFunctionNodeIsNeverScheduled(t *testing.T) {
	h := newDoublingNode("double", NewRootContext(0, nil, nil))
	assert.Panics(t, func() { h.PlannedEvent() })
}
