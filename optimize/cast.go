package optimize

import "jdec/ast"

// removeRedundantCasts implements §4.7 pass 3: Cast(T, e) collapses to e
// when e already has type T (this also covers Cast(T, Cast(T, e)), since
// the inner cast's own Type is already T by construction).
func (o *Optimizer) removeRedundantCasts(root ast.NodeID) bool {
	changed := false
	walkStmt(o.arena, root, func(e ast.NodeID) {
		changed = rewriteExpr(o.arena, e, o.dropRedundantCast) || changed
	}, func(ast.NodeID) {})
	return changed
}

func (o *Optimizer) dropRedundantCast(id ast.NodeID) bool {
	n := o.arena.Get(id)
	if n.Kind != ast.KindCast || n.Lhs == ast.NoNode {
		return false
	}
	inner := o.arena.Get(n.Lhs)
	if inner.Type.Kind == ast.TypeUnknown || !sameType(inner.Type, n.TargetType) {
		return false
	}
	o.replaceWith(id, n.Lhs)
	return true
}

func sameType(a, b ast.Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.TypeReference:
		return a.ClassName == b.ClassName
	case ast.TypeArray:
		return a.ElementType != nil && b.ElementType != nil && sameType(*a.ElementType, *b.ElementType)
	default:
		return true
	}
}
