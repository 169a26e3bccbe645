package optimize

import "jdec/ast"

// simplifyAlgebra implements §4.7 pass 2: algebraic identities applied
// bottom-up, after folding has already turned any Literal-op-Literal pair
// into a single Literal.
func (o *Optimizer) simplifyAlgebra(root ast.NodeID) bool {
	changed := false
	walkStmt(o.arena, root, func(e ast.NodeID) {
		changed = rewriteExpr(o.arena, e, o.simplifyOne) || changed
	}, func(ast.NodeID) {})
	return changed
}

func (o *Optimizer) simplifyOne(id ast.NodeID) bool {
	n := o.arena.Get(id)
	if n.Kind != ast.KindBinaryOp {
		return false
	}

	lhsZero := literalEquals(o.arena, n.Lhs, 0)
	rhsZero := literalEquals(o.arena, n.Rhs, 0)
	lhsOne := literalEquals(o.arena, n.Lhs, 1)
	rhsOne := literalEquals(o.arena, n.Rhs, 1)

	switch {
	case n.Op == "+" && rhsZero:
		o.replaceWith(id, n.Lhs)
	case n.Op == "+" && lhsZero:
		o.replaceWith(id, n.Rhs)
	case n.Op == "-" && rhsZero:
		o.replaceWith(id, n.Lhs)
	case n.Op == "*" && rhsOne:
		o.replaceWith(id, n.Lhs)
	case n.Op == "*" && lhsOne:
		o.replaceWith(id, n.Rhs)
	case n.Op == "*" && (rhsZero || lhsZero):
		o.arena.Replace(id, ast.Node{Kind: ast.KindLiteral, LiteralValue: zeroValueFor(n.Type), Type: n.Type})
	case n.Op == "/" && rhsOne:
		o.replaceWith(id, n.Lhs)
	case n.Op == "&" && (rhsZero || lhsZero):
		o.arena.Replace(id, ast.Node{Kind: ast.KindLiteral, LiteralValue: zeroValueFor(n.Type), Type: n.Type})
	case n.Op == "|" && rhsZero:
		o.replaceWith(id, n.Lhs)
	case n.Op == "|" && lhsZero:
		o.replaceWith(id, n.Rhs)
	default:
		return false
	}
	return true
}

// replaceWith makes id become a copy of src's current node value, so every
// existing reference to id now behaves as if it pointed at src directly.
func (o *Optimizer) replaceWith(id, src ast.NodeID) {
	o.arena.Replace(id, *o.arena.Get(src))
}

func literalEquals(a *ast.Arena, id ast.NodeID, want int64) bool {
	if !isLiteral(a, id) {
		return false
	}
	v, ok := literalInt(a.Get(id))
	return ok && v == want
}

func zeroValueFor(t ast.Type) interface{} {
	if t.Kind == ast.TypeLong {
		return int64(0)
	}
	return int32(0)
}
