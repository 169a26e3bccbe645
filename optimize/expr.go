package optimize

import "jdec/ast"

// exprChildren returns the one or two expression-child slots a node of this
// kind exposes to recursive rewriting. Array/object/method-call argument
// lists go through Children instead.
func exprChildren(n *ast.Node) []ast.NodeID {
	switch n.Kind {
	case ast.KindBinaryOp:
		return []ast.NodeID{n.Lhs, n.Rhs}
	case ast.KindUnaryOp, ast.KindCast, ast.KindInstanceOf:
		return []ast.NodeID{n.Lhs}
	case ast.KindFieldAccess:
		if n.Lhs != ast.NoNode {
			return []ast.NodeID{n.Lhs}
		}
		return nil
	case ast.KindArrayAccess:
		return []ast.NodeID{n.Lhs, n.Rhs}
	case ast.KindMethodCall, ast.KindArrayNew, ast.KindObjectNew:
		return n.Children
	}
	return nil
}

// rewriteExpr walks the expression subtree rooted at id bottom-up (children
// transformed before their parent sees them), applying transform at every
// node. transform may call arena.Replace(id, ...) to rewrite the node in
// place; it reports whether it changed anything.
func rewriteExpr(a *ast.Arena, id ast.NodeID, transform func(ast.NodeID) bool) bool {
	if id == ast.NoNode {
		return false
	}
	changed := false
	for _, c := range exprChildren(a.Get(id)) {
		changed = rewriteExpr(a, c, transform) || changed
	}
	changed = transform(id) || changed
	return changed
}

// literalInt returns the literal's value widened to int64 plus whether the
// literal is an integral (int/long) type foldable by the wraparound integer
// rules of §8 item 7, as opposed to float/double (folded with native Go
// float arithmetic, no masking).
func literalInt(n *ast.Node) (int64, bool) {
	switch v := n.LiteralValue.(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func isLiteral(a *ast.Arena, id ast.NodeID) bool {
	return id != ast.NoNode && a.Get(id).Kind == ast.KindLiteral
}
