package optimize

import "jdec/ast"

// eliminateDeadCode implements §4.7 pass 4: pure expression statements are
// dropped from their enclosing block, and an If whose condition has folded
// to a constant collapses to whichever arm (or disappears, if the false arm
// is absent) is statically taken.
func (o *Optimizer) eliminateDeadCode(root ast.NodeID) bool {
	changed := false
	walkStmt(o.arena, root, func(ast.NodeID) {}, func(id ast.NodeID) {
		n := o.arena.Get(id)
		switch n.Kind {
		case ast.KindBlock:
			kept := n.Children[:0]
			for _, c := range n.Children {
				if o.isPureExpr(c) {
					changed = true
					continue
				}
				kept = append(kept, c)
			}
			n.Children = kept

		case ast.KindIf:
			taken, ok := constantBool(o.arena, n.Lhs)
			if !ok {
				return
			}
			if taken {
				o.replaceWith(id, n.Then)
			} else if n.Else != ast.NoNode {
				o.replaceWith(id, n.Else)
			} else {
				o.arena.Replace(id, ast.Node{Kind: ast.KindBlock})
			}
			changed = true
		}
	})
	return changed
}

// constantBool reports whether id is a Literal whose value is statically
// known truthy/falsy - JVM booleans are always ints under the hood, so both
// an int32 0/1 and a native Go bool literal are recognized.
func constantBool(a *ast.Arena, id ast.NodeID) (value bool, ok bool) {
	if !isLiteral(a, id) {
		return false, false
	}
	switch v := a.Get(id).LiteralValue.(type) {
	case bool:
		return v, true
	case int32:
		return v != 0, true
	}
	return false, false
}

// isPureExpr reports whether id, found directly as a block statement, has no
// observable side effect and can be dropped. Method calls and assignments
// are never pure (§4.7 pass 4); array/field access and object/array creation
// are conservatively treated as impure too since they can fault or run
// initializers.
func (o *Optimizer) isPureExpr(id ast.NodeID) bool {
	if id == ast.NoNode {
		return true
	}
	n := o.arena.Get(id)
	switch n.Kind {
	case ast.KindLiteral, ast.KindIdentifier:
		return true
	case ast.KindBinaryOp:
		return o.isPureExpr(n.Lhs) && o.isPureExpr(n.Rhs)
	case ast.KindUnaryOp, ast.KindCast:
		return o.isPureExpr(n.Lhs)
	default:
		return false
	}
}
