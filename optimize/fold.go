package optimize

import "jdec/ast"

// foldConstants implements §4.7 pass 1: BinaryOp(op, Literal, Literal)
// reduces to a single Literal, using the source language's own wraparound
// arithmetic (two's-complement add/sub/mul, truncating div/rem, masked
// shift counts) rather than Go's native int semantics for anything wider
// than what the target type actually holds.
func (o *Optimizer) foldConstants(root ast.NodeID) bool {
	changed := false
	walkStmt(o.arena, root, func(e ast.NodeID) {
		changed = rewriteExpr(o.arena, e, o.foldBinary) || changed
	}, func(ast.NodeID) {})
	return changed
}

func (o *Optimizer) foldBinary(id ast.NodeID) bool {
	n := o.arena.Get(id)
	if n.Kind != ast.KindBinaryOp || !isLiteral(o.arena, n.Lhs) || !isLiteral(o.arena, n.Rhs) {
		return false
	}
	lhs, rhs := o.arena.Get(n.Lhs), o.arena.Get(n.Rhs)

	if lv, lok := literalInt(lhs); lok {
		if rv, rok := literalInt(rhs); rok {
			folded, ok := foldIntegral(n.Op, lv, rv, n.Type.Kind == ast.TypeLong)
			if !ok {
				if n.Op == "/" || n.Op == "%" {
					o.Diagnostics = append(o.Diagnostics, "constant division/remainder by zero left unfolded")
				}
				return false
			}
			if n.Type.Kind == ast.TypeLong {
				o.arena.Replace(id, ast.Node{Kind: ast.KindLiteral, LiteralValue: folded, Type: n.Type})
			} else {
				o.arena.Replace(id, ast.Node{Kind: ast.KindLiteral, LiteralValue: int32(folded), Type: n.Type})
			}
			return true
		}
	}

	if lf, lok := literalFloat(lhs); lok {
		if rf, rok := literalFloat(rhs); rok {
			folded, ok := foldFloating(n.Op, lf, rf)
			if !ok {
				return false
			}
			if n.Type.Kind == ast.TypeDouble {
				o.arena.Replace(id, ast.Node{Kind: ast.KindLiteral, LiteralValue: folded, Type: n.Type})
			} else {
				o.arena.Replace(id, ast.Node{Kind: ast.KindLiteral, LiteralValue: float32(folded), Type: n.Type})
			}
			return true
		}
	}
	return false
}

func literalFloat(n *ast.Node) (float64, bool) {
	switch v := n.LiteralValue.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// foldIntegral applies two's-complement wraparound arithmetic over int64,
// truncating the result back to int32 range at the call site when the
// operation is 32-bit. ok is false for a literal-0 divisor on / or %,
// which §4.7 leaves unfolded rather than synthesizing a fault, and for any
// operator not folded here (comparisons among them).
func foldIntegral(op string, x, y int64, is64 bool) (int64, bool) {
	mask := int64(0x1F)
	if is64 {
		mask = 0x3F
	}
	switch op {
	case "+":
		return x + y, true
	case "-":
		return x - y, true
	case "*":
		return x * y, true
	case "/":
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case "%":
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case "&":
		return x & y, true
	case "|":
		return x | y, true
	case "^":
		return x ^ y, true
	case "<<":
		return x << (y & mask), true
	case ">>":
		return x >> (y & mask), true
	case ">>>":
		if is64 {
			return int64(uint64(x) >> (y & mask)), true
		}
		return int64(int32(uint32(x) >> (y & mask))), true
	default:
		return 0, false
	}
}

func foldFloating(op string, x, y float64) (float64, bool) {
	switch op {
	case "+":
		return x + y, true
	case "-":
		return x - y, true
	case "*":
		return x * y, true
	case "/":
		return x / y, true
	default:
		return 0, false
	}
}
