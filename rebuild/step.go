package rebuild

import (
	"jdec/ast"
	"jdec/bytecode"

	"github.com/pkg/errors"
)

var (
	tInt     = ast.Type{Kind: ast.TypeInt}
	tLong    = ast.Type{Kind: ast.TypeLong}
	tFloat   = ast.Type{Kind: ast.TypeFloat}
	tDouble  = ast.Type{Kind: ast.TypeDouble}
	tBoolean = ast.Type{Kind: ast.TypeBoolean}
)

// step interprets one instruction, mutating the operand stack/locals and
// returning the NodeID of a statement to append to the current block, or
// ast.NoNode if the instruction only affects the stack.
func (r *Rebuilder) step(insn bytecode.Instruction) (ast.NodeID, error) {
	switch insn.Opcode {
	case bytecode.Nop:
		return ast.NoNode, nil

	case bytecode.AconstNull:
		r.push(r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: nil, Type: ast.Reference("java/lang/Object")}), ast.Reference("java/lang/Object"))
		return ast.NoNode, nil

	case bytecode.IconstM1, bytecode.Iconst0, bytecode.Iconst1, bytecode.Iconst2, bytecode.Iconst3, bytecode.Iconst4, bytecode.Iconst5:
		r.pushLiteral(int32(iconstValue(insn.Opcode)), tInt)
		return ast.NoNode, nil
	case bytecode.Lconst0, bytecode.Lconst1:
		r.pushLiteral(int64(insn.Opcode-bytecode.Lconst0), tLong)
		return ast.NoNode, nil
	case bytecode.Fconst0, bytecode.Fconst1, bytecode.Fconst2:
		r.pushLiteral(float32(insn.Opcode-bytecode.Fconst0), tFloat)
		return ast.NoNode, nil
	case bytecode.Dconst0, bytecode.Dconst1:
		r.pushLiteral(float64(insn.Opcode-bytecode.Dconst0), tDouble)
		return ast.NoNode, nil

	case bytecode.Bipush:
		r.pushLiteral(int32(insn.S8Operand(0)), tInt)
		return ast.NoNode, nil
	case bytecode.Sipush:
		r.pushLiteral(int32(insn.S16Operand(0)), tInt)
		return ast.NoNode, nil

	case bytecode.Ldc:
		node, t, err := r.resolveLdc(insn.U8Operand(0))
		if err != nil {
			return ast.NoNode, err
		}
		r.push(node, t)
		return ast.NoNode, nil
	case bytecode.LdcW, bytecode.Ldc2W:
		node, t, err := r.resolveLdc(insn.U16Operand(0))
		if err != nil {
			return ast.NoNode, err
		}
		r.push(node, t)
		return ast.NoNode, nil

	// --- local loads ---
	case bytecode.Iload, bytecode.Lload, bytecode.Fload, bytecode.Dload, bytecode.Aload:
		return ast.NoNode, r.load(insn.U8Operand(0), loadTypeFor(insn.Opcode))
	case bytecode.Iload0, bytecode.Iload1, bytecode.Iload2, bytecode.Iload3:
		return ast.NoNode, r.load(int(insn.Opcode-bytecode.Iload0), tInt)
	case bytecode.Lload0, bytecode.Lload1, bytecode.Lload2, bytecode.Lload3:
		return ast.NoNode, r.load(int(insn.Opcode-bytecode.Lload0), tLong)
	case bytecode.Fload0, bytecode.Fload1, bytecode.Fload2, bytecode.Fload3:
		return ast.NoNode, r.load(int(insn.Opcode-bytecode.Fload0), tFloat)
	case bytecode.Dload0, bytecode.Dload1, bytecode.Dload2, bytecode.Dload3:
		return ast.NoNode, r.load(int(insn.Opcode-bytecode.Dload0), tDouble)
	case bytecode.Aload0, bytecode.Aload1, bytecode.Aload2, bytecode.Aload3:
		return ast.NoNode, r.load(int(insn.Opcode-bytecode.Aload0), ast.Reference("java/lang/Object"))

	// --- array loads ---
	case bytecode.Iaload:
		return ast.NoNode, r.arrayLoad(tInt)
	case bytecode.Laload:
		return ast.NoNode, r.arrayLoad(tLong)
	case bytecode.Faload:
		return ast.NoNode, r.arrayLoad(tFloat)
	case bytecode.Daload:
		return ast.NoNode, r.arrayLoad(tDouble)
	case bytecode.Aaload:
		return ast.NoNode, r.arrayLoad(ast.Reference("java/lang/Object"))
	case bytecode.Baload:
		return ast.NoNode, r.arrayLoad(ast.Type{Kind: ast.TypeByte})
	case bytecode.Caload:
		return ast.NoNode, r.arrayLoad(ast.Type{Kind: ast.TypeChar})
	case bytecode.Saload:
		return ast.NoNode, r.arrayLoad(ast.Type{Kind: ast.TypeShort})

	// --- local stores ---
	case bytecode.Istore:
		return r.store(insn.U8Operand(0), tInt)
	case bytecode.Lstore:
		return r.store(insn.U8Operand(0), tLong)
	case bytecode.Fstore:
		return r.store(insn.U8Operand(0), tFloat)
	case bytecode.Dstore:
		return r.store(insn.U8Operand(0), tDouble)
	case bytecode.Astore:
		return r.store(insn.U8Operand(0), ast.Reference("java/lang/Object"))
	case bytecode.Istore0, bytecode.Istore1, bytecode.Istore2, bytecode.Istore3:
		return r.store(int(insn.Opcode-bytecode.Istore0), tInt)
	case bytecode.Lstore0, bytecode.Lstore1, bytecode.Lstore2, bytecode.Lstore3:
		return r.store(int(insn.Opcode-bytecode.Lstore0), tLong)
	case bytecode.Fstore0, bytecode.Fstore1, bytecode.Fstore2, bytecode.Fstore3:
		return r.store(int(insn.Opcode-bytecode.Fstore0), tFloat)
	case bytecode.Dstore0, bytecode.Dstore1, bytecode.Dstore2, bytecode.Dstore3:
		return r.store(int(insn.Opcode-bytecode.Dstore0), tDouble)
	case bytecode.Astore0, bytecode.Astore1, bytecode.Astore2, bytecode.Astore3:
		return r.store(int(insn.Opcode-bytecode.Astore0), ast.Reference("java/lang/Object"))

	case bytecode.Wide:
		return r.stepWide(insn)

	// --- array stores ---
	case bytecode.Iastore, bytecode.Lastore, bytecode.Fastore, bytecode.Dastore,
		bytecode.Aastore, bytecode.Bastore, bytecode.Castore, bytecode.Sastore:
		return r.arrayStore()

	// --- stack manipulation ---
	case bytecode.Pop:
		return r.popStatement()
	case bytecode.Pop2:
		if _, err := r.popStatement(); err != nil {
			return ast.NoNode, err
		}
		return r.popStatement()
	case bytecode.Dup:
		top, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		r.push(top.node, top.typ)
		r.push(top.node, top.typ)
		return ast.NoNode, nil
	case bytecode.Swap:
		ops, err := r.popN(2)
		if err != nil {
			return ast.NoNode, err
		}
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[0].node, ops[0].typ)
		return ast.NoNode, nil
	case bytecode.DupX1:
		ops, err := r.popN(2)
		if err != nil {
			return ast.NoNode, err
		}
		r.push(ops[1].node, ops[1].typ)
		r.push(ops[0].node, ops[0].typ)
		r.push(ops[1].node, ops[1].typ)
		return ast.NoNode, nil
	case bytecode.Dup2, bytecode.DupX2, bytecode.Dup2X1, bytecode.Dup2X2:
		// Category-2-aware dup forms: approximate by treating the affected
		// slots uniformly, which is exact whenever every value involved is
		// category-1 (the overwhelmingly common case in compiler-emitted
		// bytecode) and a conservative best-effort otherwise (§4.4's
		// "must not fail" degradation, not an execution-affecting choice
		// since the rebuilder never executes the program).
		return ast.NoNode, r.dupWide(insn.Opcode)

	// --- arithmetic ---
	case bytecode.Iadd:
		return ast.NoNode, r.binary("add", tInt)
	case bytecode.Ladd:
		return ast.NoNode, r.binary("add", tLong)
	case bytecode.Fadd:
		return ast.NoNode, r.binary("add", tFloat)
	case bytecode.Dadd:
		return ast.NoNode, r.binary("add", tDouble)
	case bytecode.Isub:
		return ast.NoNode, r.binary("sub", tInt)
	case bytecode.Lsub:
		return ast.NoNode, r.binary("sub", tLong)
	case bytecode.Fsub:
		return ast.NoNode, r.binary("sub", tFloat)
	case bytecode.Dsub:
		return ast.NoNode, r.binary("sub", tDouble)
	case bytecode.Imul:
		return ast.NoNode, r.binary("mul", tInt)
	case bytecode.Lmul:
		return ast.NoNode, r.binary("mul", tLong)
	case bytecode.Fmul:
		return ast.NoNode, r.binary("mul", tFloat)
	case bytecode.Dmul:
		return ast.NoNode, r.binary("mul", tDouble)
	case bytecode.Idiv:
		return ast.NoNode, r.binary("div", tInt)
	case bytecode.Ldiv:
		return ast.NoNode, r.binary("div", tLong)
	case bytecode.Fdiv:
		return ast.NoNode, r.binary("div", tFloat)
	case bytecode.Ddiv:
		return ast.NoNode, r.binary("div", tDouble)
	case bytecode.Irem:
		return ast.NoNode, r.binary("rem", tInt)
	case bytecode.Lrem:
		return ast.NoNode, r.binary("rem", tLong)
	case bytecode.Frem:
		return ast.NoNode, r.binary("rem", tFloat)
	case bytecode.Drem:
		return ast.NoNode, r.binary("rem", tDouble)
	case bytecode.Ineg:
		return ast.NoNode, r.unary("-", tInt)
	case bytecode.Lneg:
		return ast.NoNode, r.unary("-", tLong)
	case bytecode.Fneg:
		return ast.NoNode, r.unary("-", tFloat)
	case bytecode.Dneg:
		return ast.NoNode, r.unary("-", tDouble)
	case bytecode.Ishl:
		return ast.NoNode, r.binary("shl", tInt)
	case bytecode.Lshl:
		return ast.NoNode, r.binary("shl", tLong)
	case bytecode.Ishr:
		return ast.NoNode, r.binary("shr", tInt)
	case bytecode.Lshr:
		return ast.NoNode, r.binary("shr", tLong)
	case bytecode.Iushr:
		return ast.NoNode, r.binary("ushr", tInt)
	case bytecode.Lushr:
		return ast.NoNode, r.binary("ushr", tLong)
	case bytecode.Iand:
		return ast.NoNode, r.binary("and", tInt)
	case bytecode.Land:
		return ast.NoNode, r.binary("and", tLong)
	case bytecode.Ior:
		return ast.NoNode, r.binary("or", tInt)
	case bytecode.Lor:
		return ast.NoNode, r.binary("or", tLong)
	case bytecode.Ixor:
		return ast.NoNode, r.binary("xor", tInt)
	case bytecode.Lxor:
		return ast.NoNode, r.binary("xor", tLong)

	case bytecode.Iinc:
		return r.localIncrement(insn.U8Operand(0), int(insn.S8Operand(1)))

	// --- conversions ---
	case bytecode.I2l:
		return ast.NoNode, r.convert(tLong)
	case bytecode.I2f:
		return ast.NoNode, r.convert(tFloat)
	case bytecode.I2d:
		return ast.NoNode, r.convert(tDouble)
	case bytecode.L2i:
		return ast.NoNode, r.convert(tInt)
	case bytecode.L2f:
		return ast.NoNode, r.convert(tFloat)
	case bytecode.L2d:
		return ast.NoNode, r.convert(tDouble)
	case bytecode.F2i:
		return ast.NoNode, r.convert(tInt)
	case bytecode.F2l:
		return ast.NoNode, r.convert(tLong)
	case bytecode.F2d:
		return ast.NoNode, r.convert(tDouble)
	case bytecode.D2i:
		return ast.NoNode, r.convert(tInt)
	case bytecode.D2l:
		return ast.NoNode, r.convert(tLong)
	case bytecode.D2f:
		return ast.NoNode, r.convert(tFloat)
	case bytecode.I2b:
		return ast.NoNode, r.convert(ast.Type{Kind: ast.TypeByte})
	case bytecode.I2c:
		return ast.NoNode, r.convert(ast.Type{Kind: ast.TypeChar})
	case bytecode.I2s:
		return ast.NoNode, r.convert(ast.Type{Kind: ast.TypeShort})

	// --- compares ---
	case bytecode.Lcmp:
		return ast.NoNode, r.compare("cmp")
	case bytecode.Fcmpl:
		return ast.NoNode, r.compare("cmpl")
	case bytecode.Fcmpg:
		return ast.NoNode, r.compare("cmpg")
	case bytecode.Dcmpl:
		return ast.NoNode, r.compare("cmpl")
	case bytecode.Dcmpg:
		return ast.NoNode, r.compare("cmpg")

	// --- conditional branches: synthesize condition, don't pop a statement ---
	case bytecode.Ifeq:
		return ast.NoNode, r.condition(insn.PC, "==", 1, int32(0), tInt)
	case bytecode.Ifne:
		return ast.NoNode, r.condition(insn.PC, "!=", 1, int32(0), tInt)
	case bytecode.Iflt:
		return ast.NoNode, r.condition(insn.PC, "<", 1, int32(0), tInt)
	case bytecode.Ifge:
		return ast.NoNode, r.condition(insn.PC, ">=", 1, int32(0), tInt)
	case bytecode.Ifgt:
		return ast.NoNode, r.condition(insn.PC, ">", 1, int32(0), tInt)
	case bytecode.Ifle:
		return ast.NoNode, r.condition(insn.PC, "<=", 1, int32(0), tInt)
	case bytecode.IfIcmpeq:
		return ast.NoNode, r.condition(insn.PC, "==", 2, nil, tInt)
	case bytecode.IfIcmpne:
		return ast.NoNode, r.condition(insn.PC, "!=", 2, nil, tInt)
	case bytecode.IfIcmplt:
		return ast.NoNode, r.condition(insn.PC, "<", 2, nil, tInt)
	case bytecode.IfIcmpge:
		return ast.NoNode, r.condition(insn.PC, ">=", 2, nil, tInt)
	case bytecode.IfIcmpgt:
		return ast.NoNode, r.condition(insn.PC, ">", 2, nil, tInt)
	case bytecode.IfIcmple:
		return ast.NoNode, r.condition(insn.PC, "<=", 2, nil, tInt)
	case bytecode.IfAcmpeq:
		return ast.NoNode, r.condition(insn.PC, "==", 2, nil, ast.Reference("java/lang/Object"))
	case bytecode.IfAcmpne:
		return ast.NoNode, r.condition(insn.PC, "!=", 2, nil, ast.Reference("java/lang/Object"))
	case bytecode.Ifnull:
		return ast.NoNode, r.condition(insn.PC, "==", 1, nil, ast.Reference("java/lang/Object"))
	case bytecode.Ifnonnull:
		return ast.NoNode, r.condition(insn.PC, "!=", 1, nil, ast.Reference("java/lang/Object"))

	case bytecode.Goto, bytecode.GotoW, bytecode.Jsr, bytecode.JsrW, bytecode.Ret:
		return ast.NoNode, nil

	case bytecode.TableSwitch, bytecode.LookupSwitch:
		selector, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		if r.SwitchSelectors == nil {
			r.SwitchSelectors = make(map[int]ast.NodeID)
		}
		r.SwitchSelectors[insn.PC] = selector.node
		return ast.NoNode, nil

	// --- returns ---
	case bytecode.Ireturn, bytecode.Lreturn, bytecode.Freturn, bytecode.Dreturn, bytecode.Areturn:
		val, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		return r.newNode(ast.Node{Kind: ast.KindReturn, Lhs: val.node}), nil
	case bytecode.Return:
		return r.newNode(ast.Node{Kind: ast.KindReturn, Lhs: ast.NoNode}), nil

	// --- fields ---
	case bytecode.GetStatic:
		return ast.NoNode, r.getField(insn.U16Operand(0), true)
	case bytecode.GetField:
		return ast.NoNode, r.getField(insn.U16Operand(0), false)
	case bytecode.PutStatic:
		return r.putField(insn.U16Operand(0), true)
	case bytecode.PutField:
		return r.putField(insn.U16Operand(0), false)

	// --- invokes ---
	case bytecode.InvokeVirtual:
		return r.invoke(insn.U16Operand(0), false, false)
	case bytecode.InvokeSpecial:
		return r.invoke(insn.U16Operand(0), false, true)
	case bytecode.InvokeStatic:
		return r.invoke(insn.U16Operand(0), true, false)
	case bytecode.InvokeInterface:
		return r.invoke(insn.U16Operand(0), false, false)
	case bytecode.InvokeDynamic:
		return r.invokeDynamic(insn.U16Operand(0))

	case bytecode.New:
		return ast.NoNode, r.newObject(insn.U16Operand(0))
	case bytecode.NewArray:
		return ast.NoNode, r.newPrimitiveArray(insn.U8Operand(0))
	case bytecode.ANewArray:
		return ast.NoNode, r.newRefArray(insn.U16Operand(0))
	case bytecode.MultiANewArray:
		return ast.NoNode, r.newMultiArray(insn.U16Operand(0), insn.U8Operand(2))
	case bytecode.ArrayLength:
		return ast.NoNode, r.arrayLength()

	case bytecode.Athrow:
		val, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		return r.newNode(ast.Node{Kind: ast.KindThrow, Lhs: val.node}), nil

	case bytecode.CheckCast:
		return ast.NoNode, r.checkCast(insn.U16Operand(0))
	case bytecode.InstanceOf:
		return ast.NoNode, r.instanceOf(insn.U16Operand(0))

	case bytecode.MonitorEnter:
		val, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		return r.newNode(ast.Node{Kind: ast.KindMonitorEnter, Lhs: val.node}), nil
	case bytecode.MonitorExit:
		val, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		return r.newNode(ast.Node{Kind: ast.KindMonitorExit, Lhs: val.node}), nil

	default:
		return ast.NoNode, errors.Wrapf(ErrUnsupportedOpcode, "%s", insn.Opcode)
	}
}

func iconstValue(op bytecode.Opcode) int32 {
	return int32(op) - int32(bytecode.Iconst0)
}

func loadTypeFor(op bytecode.Opcode) ast.Type {
	switch op {
	case bytecode.Iload:
		return tInt
	case bytecode.Lload:
		return tLong
	case bytecode.Fload:
		return tFloat
	case bytecode.Dload:
		return tDouble
	default:
		return ast.Reference("java/lang/Object")
	}
}

func (r *Rebuilder) pushLiteral(v interface{}, t ast.Type) {
	r.push(r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: v, Type: t}), t)
}
