package rebuild

import (
	"jdec/ast"
	"jdec/bytecode"

	"github.com/pkg/errors"
)

// load pushes an Identifier reference for a local-variable load, recording
// the use against its backing VariableDecl (§4.7's usage-count bookkeeping).
func (r *Rebuilder) load(slot int, t ast.Type) error {
	id := r.locals.identifierFor(slot, t)
	r.locals.recordUse(slot)
	r.push(id, t)
	return nil
}

// store pops the top of stack and either emits the local's first
// VariableDecl (with the popped value as initializer) or an Assignment
// statement for every later store.
func (r *Rebuilder) store(slot int, t ast.Type) (ast.NodeID, error) {
	val, err := r.pop()
	if err != nil {
		return ast.NoNode, err
	}
	if decl := r.locals.declareOnFirstStore(slot, t, val.node); decl != ast.NoNode {
		return decl, nil
	}
	target := r.locals.identifierFor(slot, t)
	assign := r.newNode(ast.Node{
		Kind: ast.KindAssignment,
		Op:   "=",
		Lhs:  target,
		Rhs:  val.node,
		Type: t,
	})
	return assign, nil
}

// localIncrement synthesizes the iinc compound-assignment statement.
func (r *Rebuilder) localIncrement(slot int, delta int) (ast.NodeID, error) {
	target := r.locals.identifierFor(slot, tInt)
	r.locals.recordUse(slot)
	lit := r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: int32(delta), Type: tInt})
	op := "+="
	if delta < 0 {
		op = "-="
		lit = r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: int32(-delta), Type: tInt})
	}
	assign := r.newNode(ast.Node{
		Kind: ast.KindAssignment,
		Op:   op,
		Lhs:  target,
		Rhs:  lit,
		Type: tInt,
	})
	return assign, nil
}

// arrayLoad pops (arrayref, index) and pushes an ArrayAccess expression of
// the given element type.
func (r *Rebuilder) arrayLoad(elemType ast.Type) error {
	operands, err := r.popN(2)
	if err != nil {
		return err
	}
	arrayRef, index := operands[0], operands[1]
	node := r.newNode(ast.Node{
		Kind: ast.KindArrayAccess,
		Lhs:  arrayRef.node,
		Rhs:  index.node,
		Type: elemType,
	})
	r.push(node, elemType)
	return nil
}

// arrayStore pops (arrayref, index, value) and emits an Assignment onto an
// ArrayAccess target.
func (r *Rebuilder) arrayStore() (ast.NodeID, error) {
	operands, err := r.popN(3)
	if err != nil {
		return ast.NoNode, err
	}
	arrayRef, index, value := operands[0], operands[1], operands[2]
	target := r.newNode(ast.Node{
		Kind: ast.KindArrayAccess,
		Lhs:  arrayRef.node,
		Rhs:  index.node,
		Type: value.typ,
	})
	assign := r.newNode(ast.Node{
		Kind: ast.KindAssignment,
		Op:   "=",
		Lhs:  target,
		Rhs:  value.node,
		Type: value.typ,
	})
	return assign, nil
}

// popStatement converts a discarded top-of-stack value (pop/pop2) into a
// statement: a MethodCall is kept as an expression statement since it may
// carry side effects, anything else is simply dropped since the rebuilder
// never observed it being used.
func (r *Rebuilder) popStatement() (ast.NodeID, error) {
	top, err := r.pop()
	if err != nil {
		return ast.NoNode, err
	}
	n := r.arena.Get(top.node)
	if n.Kind == ast.KindMethodCall {
		return top.node, nil
	}
	return ast.NoNode, nil
}

// dupWide handles the category-2-aware dup forms (dup2, dup_x2, dup2_x1,
// dup2_x2) uniformly against single stack slots.
func (r *Rebuilder) dupWide(op bytecode.Opcode) error {
	switch op {
	case bytecode.Dup2:
		ops, err := r.popN(2)
		if err != nil {
			return err
		}
		r.push(ops[0].node, ops[0].typ)
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[0].node, ops[0].typ)
		r.push(ops[1].node, ops[1].typ)
		return nil
	case bytecode.DupX2:
		ops, err := r.popN(3)
		if err != nil {
			return err
		}
		r.push(ops[2].node, ops[2].typ)
		r.push(ops[0].node, ops[0].typ)
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[2].node, ops[2].typ)
		return nil
	case bytecode.Dup2X1:
		ops, err := r.popN(3)
		if err != nil {
			return err
		}
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[2].node, ops[2].typ)
		r.push(ops[0].node, ops[0].typ)
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[2].node, ops[2].typ)
		return nil
	case bytecode.Dup2X2:
		ops, err := r.popN(4)
		if err != nil {
			return err
		}
		r.push(ops[2].node, ops[2].typ)
		r.push(ops[3].node, ops[3].typ)
		r.push(ops[0].node, ops[0].typ)
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[2].node, ops[2].typ)
		r.push(ops[3].node, ops[3].typ)
		return nil
	}
	return nil
}

// stepWide re-dispatches a wide-prefixed instruction against its widened
// opcode and 16-bit local index (or, for iinc, 16-bit constant too).
func (r *Rebuilder) stepWide(insn bytecode.Instruction) (ast.NodeID, error) {
	w := insn.Wide
	slot := w.Index
	switch w.Modified {
	case bytecode.Iload:
		return ast.NoNode, r.load(slot, tInt)
	case bytecode.Lload:
		return ast.NoNode, r.load(slot, tLong)
	case bytecode.Fload:
		return ast.NoNode, r.load(slot, tFloat)
	case bytecode.Dload:
		return ast.NoNode, r.load(slot, tDouble)
	case bytecode.Aload:
		return ast.NoNode, r.load(slot, ast.Reference("java/lang/Object"))
	case bytecode.Istore:
		return r.store(slot, tInt)
	case bytecode.Lstore:
		return r.store(slot, tLong)
	case bytecode.Fstore:
		return r.store(slot, tFloat)
	case bytecode.Dstore:
		return r.store(slot, tDouble)
	case bytecode.Astore:
		return r.store(slot, ast.Reference("java/lang/Object"))
	case bytecode.Iinc:
		return r.localIncrement(slot, int(w.Const))
	case bytecode.Ret:
		return ast.NoNode, nil
	default:
		return ast.NoNode, errors.Wrapf(ErrUnsupportedOpcode, "wide %s", w.Modified)
	}
}
