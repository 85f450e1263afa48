package systems

import (
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// partitionedRNG gives every node its own deterministic random stream
// derived from one master seed, so that adding or removing an unrelated
// node never perturbs another node's draws. Each stream is seeded with the
// master seed XOR'd with an FNV-64a hash of the node's full path, and is
// created lazily and cached per path.
type partitionedRNG struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

func newPartitionedRNG(masterSeed int64) *partitionedRNG {
	return &partitionedRNG{masterSeed: masterSeed, streams: make(map[string]*rand.Rand)}
}

func (p *partitionedRNG) forPath(path string) *rand.Rand {
	if r, ok := p.streams[path]; ok {
		return r
	}
	h := fnv.New64a()
	h.Write([]byte(path))
	seed := p.masterSeed ^ int64(h.Sum64())
	r := rand.New(rand.NewSource(seed))
	p.streams[path] = r
	return r
}

// sharedCore holds the state genuinely shared by every node in a
// simulation: the superdense clock, the RNG partition, and the output
// stream. It is the same object reachable from every NodeContext in the
// tree, regardless of how deeply nested the owning composite/collection is.
type sharedCore struct {
	eventTime   DiscreteEventTime
	timePrinted bool
	rng         *partitionedRNG
	out         io.Writer
	log         *logrus.Logger
}

// NodeContext is the per-subtree handle onto the shared simulation core,
// plus the bookkeeping specific to one composite/collection's internal
// structure: which node owns this subtree (for dotted full-name
// construction) and the flat, index-addressed registry of its immediate
// children.
type NodeContext struct {
	core  *sharedCore
	owner *NodeInterface
	nodes []SystemNode
}

// NewRootContext constructs the context owned directly by a Simulation: no
// owning node, a fresh RNG partition seeded from seed, and out as the
// target of all print output.
func NewRootContext(seed int64, out io.Writer, log *logrus.Logger) *NodeContext {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NodeContext{
		core: &sharedCore{
			rng: newPartitionedRNG(seed),
			out: out,
			log: log,
		},
	}
}

// NewChildContext returns the context for a composite/collection's internal
// structure: it shares this context's clock, RNG, and stream, but is scoped
// to owner for full-name construction and keeps its own node registry.
func (ctx *NodeContext) NewChildContext(owner *NodeInterface) *NodeContext {
	return &NodeContext{core: ctx.core, owner: owner}
}

// ExternalInterface returns the NodeInterface of the node that owns this
// subtree, or nil at the root.
func (ctx *NodeContext) ExternalInterface() *NodeInterface { return ctx.owner }

// AddNode registers node in this context's internal structure and returns
// its index, the only handle composite/collection links ever store.
func (ctx *NodeContext) AddNode(node SystemNode) int64 {
	ctx.nodes = append(ctx.nodes, node)
	return int64(len(ctx.nodes) - 1)
}

// Node returns the registered child at index.
func (ctx *NodeContext) Node(index int64) SystemNode { return ctx.nodes[index] }

// NodeCount returns the number of children registered in this subtree.
func (ctx *NodeContext) NodeCount() int64 { return int64(len(ctx.nodes)) }

// EventTime returns the simulation's current superdense time coordinate.
func (ctx *NodeContext) EventTime() DiscreteEventTime { return ctx.core.eventTime }

// SetEventTime updates the shared clock. Only the Simulation driver calls this.
func (ctx *NodeContext) SetEventTime(t DiscreteEventTime) { ctx.core.eventTime = t }

// TimePrinted reports whether a "$time:" line has already been emitted for
// the current t_index.
func (ctx *NodeContext) TimePrinted() bool { return ctx.core.timePrinted }

// SetTimePrinted updates the printed-this-tick flag.
func (ctx *NodeContext) SetTimePrinted(v bool) { ctx.core.timePrinted = v }

// RNG returns the deterministic random stream partitioned for path (a
// node's full dotted name), so a node always draws from the same stream
// across a run regardless of dispatch order.
func (ctx *NodeContext) RNG(path string) *rand.Rand { return ctx.core.rng.forPath(path) }

// Log returns the shared structured logger.
func (ctx *NodeContext) Log() *logrus.Logger { return ctx.core.log }

// printLine writes one output-stream line tagged with the current
// (t_index, c) coordinate and the emitting node's full name, first emitting
// a "$time:" line if the clock has advanced since the last print.
func (ctx *NodeContext) printLine(nodeFullName, text string) {
	if ctx.core.out == nil {
		return
	}
	tIndex := ctx.core.eventTime.TIndex()
	if !ctx.core.timePrinted {
		fmt.Fprintf(ctx.core.out, "%d|0|$time:%s\n", tIndex, ctx.core.eventTime.T().String())
		ctx.core.timePrinted = true
	}
	fmt.Fprintf(ctx.core.out, "%d|%d|%s%s\n", tIndex, ctx.core.eventTime.C(), nodeFullName, text)
}
