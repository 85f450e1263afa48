package systems

import "fmt"

// InvalidArgumentError reports a passed-in value that is structurally
// unusable (an invalid duration, an out-of-scope port access).
type InvalidArgumentError struct{ Msg string }

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

// DomainError reports a value that is structurally fine but outside the
// operation's domain: a negative or infinite duration where a finite
// non-negative one is required, an advance past an imminent event, a
// dimension mismatch.
type DomainError struct{ Msg string }

func (e *DomainError) Error() string { return "domain error: " + e.Msg }

// LogicError reports a violated invariant of the framework's own state
// machine: a port accessed outside its active phase, a duplicate flow
// assignment, an agent id collision, and similar contract breaches.
type LogicError struct{ Msg string }

func (e *LogicError) Error() string { return "logic error: " + e.Msg }

// NodeError wraps any error that escaped a user handler, tagging it with
// the full dotted path of the node that raised it. The original error is
// preserved as Cause so callers can still type-switch or errors.As into it.
type NodeError struct {
	NodePath string
	Cause    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %v", e.NodePath, e.Cause)
}

func (e *NodeError) Unwrap() error { return e.Cause }

func newInvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

func newDomainError(format string, args ...any) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

func newLogicError(format string, args ...any) error {
	return &LogicError{Msg: fmt.Sprintf(format, args...)}
}

// wrapNodeError converts a panic recovered from a user handler, or an error
// it returned, into a NodeError naming the offending node.
func wrapNodeError(nodePath string, cause error) error {
	if cause == nil {
		return nil
	}
	var ne *NodeError
	if as, ok := cause.(*NodeError); ok {
		ne = as
		return ne
	}
	return &NodeError{NodePath: nodePath, Cause: cause}
}
