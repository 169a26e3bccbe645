package rebuild

import "jdec/ast"

// binOpSymbol maps an arithmetic/bitwise opcode family to its source
// operator text.
var binOpSymbol = map[string]string{
	"add": "+", "sub": "-", "mul": "*", "div": "/", "rem": "%",
	"shl": "<<", "shr": ">>", "ushr": ">>>", "and": "&", "or": "|", "xor": "^",
}

// binary synthesizes a BinaryOp node of the given result type from the top
// two stack entries (rhs popped last is on top), mirroring gvm's
// arithAddi/arithSubi/... "compute into y, discard x" helpers in
// vm/vm.go, replayed against node references instead of machine words.
func (r *Rebuilder) binary(op string, resultType ast.Type) error {
	operands, err := r.popN(2)
	if err != nil {
		return err
	}
	lhs, rhs := operands[0], operands[1]
	node := r.newNode(ast.Node{
		Kind: ast.KindBinaryOp,
		Op:   binOpSymbol[op],
		Lhs:  lhs.node,
		Rhs:  rhs.node,
		Type: resultType,
	})
	r.push(node, resultType)
	return nil
}

// unary synthesizes a UnaryOp node (negation) from the top stack entry.
func (r *Rebuilder) unary(op string, resultType ast.Type) error {
	operand, err := r.pop()
	if err != nil {
		return err
	}
	node := r.newNode(ast.Node{
		Kind: ast.KindUnaryOp,
		Op:   op,
		Lhs:  operand.node,
		Type: resultType,
	})
	r.push(node, resultType)
	return nil
}

// compare synthesizes the three-way compare result of lcmp/fcmpl/fcmpg/
// dcmpl/dcmpg as a BinaryOp producing an int, so the downstream branch
// (ifeq/ifgt/...) composes into a single readable condition.
func (r *Rebuilder) compare(op string) error {
	operands, err := r.popN(2)
	if err != nil {
		return err
	}
	node := r.newNode(ast.Node{
		Kind: ast.KindBinaryOp,
		Op:   op,
		Lhs:  operands[0].node,
		Rhs:  operands[1].node,
		Type: ast.Type{Kind: ast.TypeInt},
	})
	r.push(node, ast.Type{Kind: ast.TypeInt})
	return nil
}

// convert synthesizes a Cast node for one of the i2l/i2f/.../d2f widening
// or narrowing conversions.
func (r *Rebuilder) convert(targetType ast.Type) error {
	operand, err := r.pop()
	if err != nil {
		return err
	}
	node := r.newNode(ast.Node{
		Kind:       ast.KindCast,
		Lhs:        operand.node,
		Type:       targetType,
		TargetType: targetType,
	})
	r.push(node, targetType)
	return nil
}

// condition synthesizes the boolean expression for a conditional branch,
// recording it in Conditions keyed by the branch instruction's own PC so
// the structure package can pick it up when assembling If/While nodes.
func (r *Rebuilder) condition(pc int, op string, operandCount int, rhsLiteral interface{}, rhsType ast.Type) error {
	operands, err := r.popN(operandCount)
	if err != nil {
		return err
	}
	lhs := operands[0].node
	var rhs ast.NodeID
	if operandCount == 2 {
		rhs = operands[1].node
	} else {
		rhs = r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: rhsLiteral, Type: rhsType})
	}
	cond := r.newNode(ast.Node{
		Kind: ast.KindBinaryOp,
		Op:   op,
		Lhs:  lhs,
		Rhs:  rhs,
		Type: ast.Type{Kind: ast.TypeBoolean},
	})
	if r.Conditions == nil {
		r.Conditions = make(map[int]ast.NodeID)
	}
	r.Conditions[pc] = cond
	return nil
}
