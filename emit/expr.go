package emit

import (
	"fmt"
	"strconv"
	"strings"

	"jdec/ast"
)

// precedence mirrors Java operator binding (loosely) - just enough ranking
// to decide when a child binary expression needs parenthesizing. Unlisted
// operators (identifiers, calls, casts) are treated as atomic (highest).
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "instanceof": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func opPrecedence(op string) int {
	if p, ok := precedence[op]; ok {
		return p
	}
	return 100
}

// expr renders an expression node as a single-line string. Parenthesization
// is conservative: a binary child is wrapped whenever its operator binds no
// tighter than its parent's, which over-parenthesizes same-precedence chains
// on the left (e.g. (a-b)-c) but never under-parenthesizes - §4.8 asks for
// conservative, not minimal, output.
func (p *Printer) expr(id ast.NodeID) string {
	if id == ast.NoNode {
		return ""
	}
	n := p.arena.Get(id)
	switch n.Kind {
	case ast.KindLiteral:
		return formatLiteral(n)

	case ast.KindIdentifier:
		return identifierName(n)

	case ast.KindBinaryOp:
		return fmt.Sprintf("%s %s %s", p.operand(n.Lhs, n.Op, true), n.Op, p.operand(n.Rhs, n.Op, false))

	case ast.KindUnaryOp:
		return fmt.Sprintf("%s%s", n.Op, p.operand(n.Lhs, n.Op, true))

	case ast.KindCast:
		return fmt.Sprintf("(%s) %s", p.typeName(n.Type), p.operand(n.Lhs, "cast", true))

	case ast.KindInstanceOf:
		return fmt.Sprintf("%s instanceof %s", p.expr(n.Lhs), p.typeName(n.TargetType))

	case ast.KindAssignment:
		return fmt.Sprintf("%s %s %s", p.expr(n.Lhs), assignOp(n.Op), p.expr(n.Rhs))

	case ast.KindFieldAccess:
		if n.Lhs == ast.NoNode {
			return fmt.Sprintf("%s.%s", n.FieldClass, n.Name)
		}
		return fmt.Sprintf("%s.%s", p.expr(n.Lhs), n.Name)

	case ast.KindArrayAccess:
		return fmt.Sprintf("%s[%s]", p.expr(n.Lhs), p.expr(n.Rhs))

	case ast.KindMethodCall:
		args := make([]string, len(n.Children))
		for i, a := range n.Children {
			args[i] = p.expr(a)
		}
		recv := n.TargetClass
		if n.Lhs != ast.NoNode {
			recv = p.expr(n.Lhs)
		}
		if n.IsConstructor {
			return fmt.Sprintf("new %s(%s)", recv, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%s.%s(%s)", recv, n.MethodName, strings.Join(args, ", "))

	case ast.KindObjectNew:
		args := make([]string, len(n.Children))
		for i, a := range n.Children {
			args[i] = p.expr(a)
		}
		return fmt.Sprintf("new %s(%s)", p.typeName(n.TargetType), strings.Join(args, ", "))

	case ast.KindArrayNew:
		dims := make([]string, len(n.Children))
		for i, d := range n.Children {
			dims[i] = fmt.Sprintf("[%s]", p.expr(d))
		}
		return fmt.Sprintf("new %s%s", p.typeName(n.TargetType), strings.Join(dims, ""))

	default:
		return fmt.Sprintf("<%s>", n.Kind)
	}
}

// operand renders a child expression, parenthesizing it when it is a binary
// expression whose operator binds no tighter than parentOp.
func (p *Printer) operand(id ast.NodeID, parentOp string, _ bool) string {
	if id == ast.NoNode {
		return ""
	}
	n := p.arena.Get(id)
	text := p.expr(id)
	if n.Kind == ast.KindBinaryOp && opPrecedence(n.Op) <= opPrecedence(parentOp) {
		return "(" + text + ")"
	}
	return text
}

func formatLiteral(n *ast.Node) string {
	switch v := n.LiteralValue.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case string:
		return strconv.Quote(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10) + "L"
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32) + "f"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func identifierName(n *ast.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("local%d", n.Slot)
}

// typeName renders a Type per §3's type lattice. Array element types nest
// through TypeArray's Elem until a scalar or reference kind is reached.
func (p *Printer) typeName(t ast.Type) string {
	if p.style == Pseudocode && t.Kind == ast.TypeUnknown {
		return "var"
	}
	switch t.Kind {
	case ast.TypeInt:
		return "int"
	case ast.TypeLong:
		return "long"
	case ast.TypeFloat:
		return "float"
	case ast.TypeDouble:
		return "double"
	case ast.TypeBoolean:
		return "boolean"
	case ast.TypeByte:
		return "byte"
	case ast.TypeChar:
		return "char"
	case ast.TypeShort:
		return "short"
	case ast.TypeVoid:
		return "void"
	case ast.TypeReference:
		if t.ClassName != "" {
			return t.ClassName
		}
		return "Object"
	case ast.TypeArray:
		if t.ElementType != nil {
			return p.typeName(*t.ElementType) + "[]"
		}
		return "Object[]"
	default:
		return "var"
	}
}
