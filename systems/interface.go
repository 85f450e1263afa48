package systems

import (
	"fmt"
	"math/rand"

	"github.com/sydevs-sim/sydevs-sim/core"
)

func typeNameOfValue(v any) string { return fmt.Sprintf("%T", v) }

// NodeInterface is the named I/O surface of a single node: the four
// parallel port-value slices (flow inputs, message inputs, message outputs,
// flow outputs), the currently-active message-input index, per-port
// printable flags, and the node's current (mode, goal) activation — which
// gates which port operations are legal at any moment. Values never live on
// the typed Port handles themselves; they live here, keyed by port index,
// so the interface is the single owner of a node's I/O state.
type NodeInterface struct {
	nodeName string
	fullName string
	context  *NodeContext

	flowInputNames    []string
	flowInputs        []any
	flowInputPrintable []bool
	flowInputTypes    []string

	messageInputNames    []string
	messageInputs        []any
	messageInputPrintable []bool
	messageInputTypes    []string
	messageInputIndex    int64

	messageOutputNames    []string
	messageOutputPrintable []bool
	messageOutputTypes    []string
	messageOutputPortIdx  []int64 // parallel to messageOutputVals: which port each queued send came from
	messageOutputVals     []any

	flowOutputNames    []string
	flowOutputs        []any
	flowOutputSet      []bool
	flowOutputPrintable []bool
	flowOutputTypes    []string

	active     bool
	activeMode DataMode
	activeGoal DataGoal

	printOnEvent           bool
	printOnElapsedDuration bool
	printOnPlannedDuration bool

	lastError error
}

// NewNodeInterface constructs the interface for a node named nodeName
// within the given parent context (nil for the root node).
func NewNodeInterface(nodeName string, ctx *NodeContext) *NodeInterface {
	iface := &NodeInterface{nodeName: nodeName, context: ctx, messageInputIndex: -1}
	if ctx != nil && ctx.owner != nil {
		iface.fullName = ctx.owner.FullName() + "." + nodeName
	} else {
		iface.fullName = nodeName
	}
	return iface
}

func (n *NodeInterface) FullName() string { return n.fullName }
func (n *NodeInterface) NodeName() string { return n.nodeName }

// RNG returns this node's own deterministic random stream, partitioned by
// its full dotted path so it never perturbs or is perturbed by any other
// node's draws.
func (n *NodeInterface) RNG() *rand.Rand { return n.context.RNG(n.fullName) }

// Active reports whether the node is currently activated in the given
// (mode, goal) combination — the gate every port operation checks before
// allowing a read or write.
func (n *NodeInterface) Active(mode DataMode, goal DataGoal) bool {
	return n.active && n.activeMode == mode && n.activeGoal == goal
}

// activate and deactivate bracket a single dispatch call, fixing which
// port operations are legal for its duration.
func (n *NodeInterface) activate(mode DataMode, goal DataGoal) {
	n.active = true
	n.activeMode = mode
	n.activeGoal = goal
}

func (n *NodeInterface) deactivate() { n.active = false }

func (n *NodeInterface) addFlowInputPort(name, typeName string) int64 {
	n.flowInputNames = append(n.flowInputNames, name)
	n.flowInputs = append(n.flowInputs, nil)
	n.flowInputPrintable = append(n.flowInputPrintable, false)
	n.flowInputTypes = append(n.flowInputTypes, typeName)
	return int64(len(n.flowInputNames) - 1)
}

func (n *NodeInterface) addMessageInputPort(name, typeName string) int64 {
	n.messageInputNames = append(n.messageInputNames, name)
	n.messageInputs = append(n.messageInputs, nil)
	n.messageInputPrintable = append(n.messageInputPrintable, false)
	n.messageInputTypes = append(n.messageInputTypes, typeName)
	return int64(len(n.messageInputNames) - 1)
}

func (n *NodeInterface) addMessageOutputPort(name, typeName string) int64 {
	n.messageOutputNames = append(n.messageOutputNames, name)
	n.messageOutputPrintable = append(n.messageOutputPrintable, false)
	n.messageOutputTypes = append(n.messageOutputTypes, typeName)
	return int64(len(n.messageOutputNames) - 1)
}

func (n *NodeInterface) addFlowOutputPort(name, typeName string) int64 {
	n.flowOutputNames = append(n.flowOutputNames, name)
	n.flowOutputs = append(n.flowOutputs, nil)
	n.flowOutputSet = append(n.flowOutputSet, false)
	n.flowOutputPrintable = append(n.flowOutputPrintable, false)
	n.flowOutputTypes = append(n.flowOutputTypes, typeName)
	return int64(len(n.flowOutputNames) - 1)
}

// FlowInputPortCount, MessageInputPortCount etc. report each port list's size.
func (n *NodeInterface) FlowInputPortCount() int64    { return int64(len(n.flowInputNames)) }
func (n *NodeInterface) MessageInputPortCount() int64 { return int64(len(n.messageInputNames)) }
func (n *NodeInterface) MessageOutputPortCount() int64 { return int64(len(n.messageOutputNames)) }
func (n *NodeInterface) FlowOutputPortCount() int64   { return int64(len(n.flowOutputNames)) }

// AssignFlowInput sets the staged value of a flow input port, used by a
// composite delivering an inward link or by a collection staging the
// prototype's inputs for the next create_agent.
func (n *NodeInterface) AssignFlowInput(portIndex int64, val any) {
	n.flowInputs[portIndex] = val
	if n.flowInputPrintable[portIndex] {
		n.printPortValue(n.flowInputNames[portIndex], core.ToString(n.flowInputTypes[portIndex], val))
	}
}

// ClearFlowInputs resets every flow input to unset, done by the framework
// after a node's initialization event completes.
func (n *NodeInterface) ClearFlowInputs() {
	for i := range n.flowInputs {
		n.flowInputs[i] = nil
	}
}

// MissingFlowInput returns the index of the first unset flow input port, or
// -1 if all are set.
func (n *NodeInterface) MissingFlowInput() int64 {
	for i, v := range n.flowInputs {
		if v == nil {
			return int64(i)
		}
	}
	return -1
}

// SetMessageInput delivers val to portIndex and marks it as the port that
// triggered the current unplanned event.
func (n *NodeInterface) SetMessageInput(portIndex int64, val any) {
	n.messageInputIndex = portIndex
	n.messageInputs[portIndex] = val
	if n.messageInputPrintable[portIndex] {
		n.printPortValue(n.messageInputNames[portIndex], core.ToString(n.messageInputTypes[portIndex], val))
	}
}

// ClearMessageInput resets the active message input, done by the framework
// after each unplanned handler.
func (n *NodeInterface) ClearMessageInput() {
	if n.messageInputIndex != -1 {
		n.messageInputs[n.messageInputIndex] = nil
		n.messageInputIndex = -1
	}
}

func (n *NodeInterface) appendMessageOutput(portIndex int64, val any) {
	n.messageOutputPortIdx = append(n.messageOutputPortIdx, portIndex)
	n.messageOutputVals = append(n.messageOutputVals, val)
	if n.messageOutputPrintable[portIndex] {
		n.printPortValue(n.messageOutputNames[portIndex], core.ToString(n.messageOutputTypes[portIndex], val))
	}
}

// MessageOutputListSize returns the number of messages queued this planned event.
func (n *NodeInterface) MessageOutputListSize() int64 { return int64(len(n.messageOutputVals)) }

// MessageOutputPortAt and MessageOutputValueAt index into the queued
// outgoing message list built up during a planned event.
func (n *NodeInterface) MessageOutputPortAt(listIndex int64) int64 {
	return n.messageOutputPortIdx[listIndex]
}
func (n *NodeInterface) MessageOutputValueAt(listIndex int64) any {
	return n.messageOutputVals[listIndex]
}

// ClearMessageOutputs empties the queued outgoing message list, done by the
// framework after each planned handler's outputs have been routed.
func (n *NodeInterface) ClearMessageOutputs() {
	n.messageOutputPortIdx = nil
	n.messageOutputVals = nil
}

// AssignFlowOutput records val as the once-only assignment of a flow output
// port. Panics with a LogicError on a duplicate assignment within one run.
func (n *NodeInterface) AssignFlowOutput(portIndex int64, val any) {
	if n.flowOutputSet[portIndex] {
		panic(newLogicError("duplicate assignment to flow output port (%s) of node (%s)", n.flowOutputNames[portIndex], n.fullName))
	}
	n.flowOutputs[portIndex] = val
	n.flowOutputSet[portIndex] = true
	if n.flowOutputPrintable[portIndex] {
		n.printPortValue(n.flowOutputNames[portIndex], core.ToString(n.flowOutputTypes[portIndex], val))
	}
}

func (n *NodeInterface) assignFlowOutput(portIndex int64, val any) { n.AssignFlowOutput(portIndex, val) }

// FlowOutputValue reads a flow output port's assigned value, used by a
// composite propagating an outward link or a collection copying an agent's
// finalized output back to the prototype.
func (n *NodeInterface) FlowOutputValue(portIndex int64) any { return n.flowOutputs[portIndex] }

// MissingFlowOutput returns the index of the first unassigned flow output
// port, or -1 if all are assigned.
func (n *NodeInterface) MissingFlowOutput() int64 {
	for i, set := range n.flowOutputSet {
		if !set {
			return int64(i)
		}
	}
	return -1
}

// ClearFlowOutputs resets every flow output to unset. A collection uses it
// to reset its prototype's staged outputs after each macro or micro event.
func (n *NodeInterface) ClearFlowOutputs() {
	for i := range n.flowOutputs {
		n.flowOutputs[i] = nil
		n.flowOutputSet[i] = false
	}
}

// print flags: observable-only tracing switches.
func (n *NodeInterface) PrintOnEvent(flag bool)           { n.printOnEvent = flag }
func (n *NodeInterface) PrintOnElapsedDuration(flag bool) { n.printOnElapsedDuration = flag }
func (n *NodeInterface) PrintOnPlannedDuration(flag bool) { n.printOnPlannedDuration = flag }

func (n *NodeInterface) setFlowInputPrintable(idx int64, flag bool)     { n.flowInputPrintable[idx] = flag }
func (n *NodeInterface) setMessageInputPrintable(idx int64, flag bool)  { n.messageInputPrintable[idx] = flag }
func (n *NodeInterface) setMessageOutputPrintable(idx int64, flag bool) { n.messageOutputPrintable[idx] = flag }
func (n *NodeInterface) setFlowOutputPrintable(idx int64, flag bool)    { n.flowOutputPrintable[idx] = flag }

// Print emits a user-supplied "print" command line unconditionally — the
// general-purpose tracing call every node class exposes to its handlers.
func (n *NodeInterface) Print(text string) { n.printCommand("print", text) }

// PrintEvent emits an event-kind announcement line if print_on_event is set.
func (n *NodeInterface) PrintEvent(kind string) {
	if n.printOnEvent {
		n.print("$" + kind)
	}
}

// PrintElapsedDuration emits an elapsed_dt command line if enabled.
func (n *NodeInterface) PrintElapsedDuration(s string) {
	if n.printOnElapsedDuration {
		n.printCommand("elapsed_dt", s)
	}
}

// PrintPlannedDuration emits a planned_dt command line if enabled.
func (n *NodeInterface) PrintPlannedDuration(s string) {
	if n.printOnPlannedDuration {
		n.printCommand("planned_dt", s)
	}
}

// PrintError emits an error command line, used by the framework when a
// handler's panic is converted into a NodeError.
func (n *NodeInterface) PrintError(err error) {
	n.lastError = err
	n.printCommand("error", err.Error())
}

// LastError returns the most recent error recorded on this interface, or nil.
func (n *NodeInterface) LastError() error { return n.lastError }

func (n *NodeInterface) printCommand(command, text string) { n.print("$" + command + ":" + text) }

// printPortValue emits a port trace line for a port with print-on-use
// tracing enabled.
func (n *NodeInterface) printPortValue(portName, valString string) {
	n.print("#" + portName + ":" + valString)
}

// print writes a line to the shared context stream, tagged with the
// current (t_index, c) coordinate and this node's full dotted path.
func (n *NodeInterface) print(text string) {
	if n.context == nil {
		return
	}
	n.context.printLine(n.fullName, text)
}
