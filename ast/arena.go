package ast

// Arena owns every Node transitively reachable from a class's root
// ClassDecl (§3 "Lifecycles": "the class AST owns all nodes transitively
// reachable from its root"). Children are referenced by NodeID, never by
// pointer, so the optimizer can replace or splice subtrees in place by
// rewriting a parent's NodeID fields without invalidating other references
// (§9 tree-ownership option (a), chosen because "it pairs best with the
// optimizer's in-place rewrites").
type Arena struct {
	nodes []Node
}

// NewArena returns an empty arena. Index 0 is reserved for NoNode.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 1)}
}

// New allocates a node and returns its ID.
func (a *Arena) New(n Node) NodeID {
	id := NodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return id
}

// Get returns a pointer to the node for in-place mutation (used by the
// optimizer's rewrite passes).
func (a *Arena) Get(id NodeID) *Node {
	if id == NoNode {
		return nil
	}
	return &a.nodes[id]
}

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Walk visits id and every node reachable from it, depth-first, calling fn
// once per visited NodeID. Traversal order is deterministic (left to right
// as each variant's fields are declared) so it is safe to use for idempotent
// output such as the emitter or a structural diff in tests.
func (a *Arena) Walk(id NodeID, fn func(NodeID)) {
	if id == NoNode {
		return
	}
	fn(id)
	n := a.Get(id)
	switch n.Kind {
	case KindBinaryOp, KindAssignment, KindArrayAccess:
		a.Walk(n.Lhs, fn)
		a.Walk(n.Rhs, fn)
	case KindUnaryOp, KindCast, KindReturn, KindThrow, KindInstanceOf:
		a.Walk(n.Lhs, fn)
	case KindFieldAccess:
		a.Walk(n.Lhs, fn)
	case KindIf:
		a.Walk(n.Lhs, fn)
		a.Walk(n.Then, fn)
		a.Walk(n.Else, fn)
	case KindWhile:
		a.Walk(n.Lhs, fn)
		a.Walk(n.Then, fn)
	case KindDoWhile:
		a.Walk(n.Then, fn)
		a.Walk(n.Lhs, fn)
	case KindFor:
		a.Walk(n.ForInit, fn)
		a.Walk(n.Lhs, fn)
		a.Walk(n.ForStep, fn)
		a.Walk(n.Then, fn)
	case KindSwitch:
		a.Walk(n.Lhs, fn)
		for _, c := range n.Children {
			a.Walk(c, fn)
		}
	case KindTryCatch:
		a.Walk(n.Then, fn)
		for _, c := range n.Children {
			a.Walk(c, fn)
		}
		a.Walk(n.Finally, fn)
	case KindCatchClause:
		a.Walk(n.CatchBody, fn)
	case KindBlock, KindMethodCall, KindArrayNew, KindObjectNew, KindSwitchCase:
		for _, c := range n.Children {
			a.Walk(c, fn)
		}
	case KindMethodDecl, KindClassDecl:
		for _, c := range n.Children {
			a.Walk(c, fn)
		}
	case KindVariableDecl:
		a.Walk(n.Rhs, fn) // initializer, if any
	}
}

// Replace overwrites the node at id in place, preserving its NodeID so
// every existing parent reference remains valid - the mechanism the
// optimizer's constant-folding and dead-code passes rely on.
func (a *Arena) Replace(id NodeID, n Node) {
	a.nodes[id] = n
}
