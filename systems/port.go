package systems

// DataMode classifies a port as carrying untimed flow data or timed message
// data.
type DataMode int

const (
	Flow DataMode = iota
	Message
)

func (m DataMode) String() string {
	if m == Flow {
		return "flow"
	}
	return "message"
}

// DataGoal classifies a port as an input or an output.
type DataGoal int

const (
	Input DataGoal = iota
	Output
)

func (g DataGoal) String() string {
	if g == Input {
		return "input"
	}
	return "output"
}

// portBase holds the identity shared by every port regardless of mode/goal:
// its name, its index within the owning NodeInterface's port list of the
// same kind, and the interface it belongs to. Values never live on the port
// itself — they're looked up on the interface by index, so ports stay cheap
// to pass around and the interface is the single owner of port state.
type portBase struct {
	name      string
	index     int64
	iface     *NodeInterface
	typeName  string
}

func (p portBase) Name() string  { return p.name }
func (p portBase) Index() int64  { return p.index }

// FlowInput is a typed handle to a flow input port: a parameter supplied at
// initialization and readable only while the node is active in (flow, input)
// mode, i.e. during its initialization event.
type FlowInput[T any] struct {
	portBase
}

// NewFlowInput registers a new flow input port named name on iface and
// returns a typed handle to it.
func NewFlowInput[T any](iface *NodeInterface, name string) FlowInput[T] {
	idx := iface.addFlowInputPort(name, typeNameOf[T]())
	return FlowInput[T]{portBase{name: name, index: idx, iface: iface, typeName: typeNameOf[T]()}}
}

// Value returns the port's current value. Panics with a LogicError if the
// node is not currently active in (flow, input) mode.
func (p FlowInput[T]) Value() T {
	if !p.iface.Active(Flow, Input) {
		panic(newLogicError("attempt to get value on flow input port (%s) of inactive node (%s)", p.name, p.iface.FullName()))
	}
	v, _ := p.iface.flowInputs[p.index].(T)
	return v
}

// PrintOnUse enables or disables print-on-use tracing for this port.
func (p FlowInput[T]) PrintOnUse(flag bool) { p.iface.setFlowInputPrintable(p.index, flag) }

// MessageInput is a typed handle to a message input port: receives timed
// messages during unplanned events.
type MessageInput[T any] struct {
	portBase
}

func NewMessageInput[T any](iface *NodeInterface, name string) MessageInput[T] {
	idx := iface.addMessageInputPort(name, typeNameOf[T]())
	return MessageInput[T]{portBase{name: name, index: idx, iface: iface, typeName: typeNameOf[T]()}}
}

// Received reports whether this port is the one that triggered the current
// unplanned event.
func (p MessageInput[T]) Received() bool {
	if !p.iface.Active(Message, Input) {
		panic(newLogicError("attempt to check message input port (%s) of node (%s) outside of unplanned event", p.name, p.iface.FullName()))
	}
	return p.iface.messageInputIndex == p.index
}

// Value returns the message value currently attached to this port.
func (p MessageInput[T]) Value() T {
	if !p.iface.Active(Message, Input) {
		panic(newLogicError("attempt to get value on message input port (%s) of node (%s) outside of unplanned event", p.name, p.iface.FullName()))
	}
	v, _ := p.iface.messageInputs[p.index].(T)
	return v
}

func (p MessageInput[T]) PrintOnUse(flag bool) { p.iface.setMessageInputPrintable(p.index, flag) }

// MessageOutput is a typed handle to a message output port: emits timed
// messages during planned events.
type MessageOutput[T any] struct {
	portBase
}

func NewMessageOutput[T any](iface *NodeInterface, name string) MessageOutput[T] {
	idx := iface.addMessageOutputPort(name, typeNameOf[T]())
	return MessageOutput[T]{portBase{name: name, index: idx, iface: iface, typeName: typeNameOf[T]()}}
}

// Send appends val to the node's outgoing message list on this port. Legal
// only during a planned event.
func (p MessageOutput[T]) Send(val T) {
	if !p.iface.Active(Message, Output) {
		panic(newLogicError("attempt to send value on message output port (%s) of node (%s) outside of planned event", p.name, p.iface.FullName()))
	}
	p.iface.appendMessageOutput(p.index, val)
}

func (p MessageOutput[T]) PrintOnUse(flag bool) { p.iface.setMessageOutputPrintable(p.index, flag) }

// FlowOutput is a typed handle to a flow output port: a single value
// assigned once, during initialization or finalization.
type FlowOutput[T any] struct {
	portBase
}

func NewFlowOutput[T any](iface *NodeInterface, name string) FlowOutput[T] {
	idx := iface.addFlowOutputPort(name, typeNameOf[T]())
	return FlowOutput[T]{portBase{name: name, index: idx, iface: iface, typeName: typeNameOf[T]()}}
}

// Assign attaches val to this flow output port. Legal during any flow-mode
// event (initialization or finalization).
func (p FlowOutput[T]) Assign(val T) {
	if !p.iface.Active(Flow, Input) && !p.iface.Active(Flow, Output) {
		panic(newLogicError("attempt to assign value on flow output port (%s) of node (%s) outside of initialization or finalization event", p.name, p.iface.FullName()))
	}
	p.iface.assignFlowOutput(p.index, val)
}

func (p FlowOutput[T]) PrintOnUse(flag bool) { p.iface.setFlowOutputPrintable(p.index, flag) }

func typeNameOf[T any]() string {
	var zero T
	return typeNameOfValue(zero)
}
