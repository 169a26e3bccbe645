package typeinfer

import (
	"jdec/ast"
	"jdec/bytecode"
	"jdec/cfg"
)

// Env is the inferred type of every local-variable slot at one program
// point. Category-2 values (long/double) occupy two consecutive slots; the
// upper slot holds Unknown by convention, mirroring §3's StackValue rule.
type Env []ast.Type

func (e Env) clone() Env {
	c := make(Env, len(e))
	copy(c, e)
	return c
}

// Engine runs the fixed-point local-variable type dataflow over one
// method's CFG. Grounded on gvm's `numeric32` generic constraint
// (`int32 | uint32 | float32` in vm/vm.go) as the model for expressing a
// small closed type domain without reflection; the fixed-point driver
// itself mirrors cfg.computeDominators's iterate-until-no-change shape.
type Engine struct {
	graph     *cfg.CFG
	entry     map[cfg.BlockID]Env
	maxLocals int
}

// NewEngine prepares an Engine for a method whose parameters (`this`
// included, already in slot order) have the given initial types.
func NewEngine(graph *cfg.CFG, maxLocals int, paramTypes []ast.Type) *Engine {
	e := &Engine{graph: graph, maxLocals: maxLocals, entry: make(map[cfg.BlockID]Env)}
	initial := make(Env, maxLocals)
	for i := range initial {
		initial[i] = ast.Type{Kind: ast.TypeUnknown}
	}
	for i, t := range paramTypes {
		if i < maxLocals {
			initial[i] = t
		}
	}
	e.entry[graph.EntryID] = initial
	return e
}

// EntryEnv returns the inferred local types at the start of block id.
func (e *Engine) EntryEnv(id cfg.BlockID) Env {
	env, ok := e.entry[id]
	if !ok {
		return nil
	}
	return env
}

// Run iterates the transfer function to a fixed point. Termination is
// guaranteed: the lattice is finite (primitives plus the class names
// referenced by the method plus ⊤/⊥), and Merge only ever moves a slot's
// type up the lattice or to ⊥, never back down.
func (e *Engine) Run() {
	changed := true
	for changed {
		changed = false
		for bi := range e.graph.Blocks {
			id := cfg.BlockID(bi)
			in, ok := e.entry[id]
			if !ok {
				continue // not yet reached from entry
			}
			out := e.transferBlock(in, e.graph.Blocks[bi].Instructions)
			for _, succ := range e.graph.Blocks[bi].Successors {
				merged := mergeEnv(e.entry[succ], out)
				if !envEqual(e.entry[succ], merged) {
					e.entry[succ] = merged
					changed = true
				}
			}
			for _, h := range e.graph.Blocks[bi].Handlers {
				// entering a handler, the operand stack holds only the
				// exception; locals carry over unchanged.
				merged := mergeEnv(e.entry[h], in)
				if !envEqual(e.entry[h], merged) {
					e.entry[h] = merged
					changed = true
				}
			}
		}
	}
}

func mergeEnv(existing, incoming Env) Env {
	if existing == nil {
		return incoming.clone()
	}
	out := make(Env, len(existing))
	for i := range out {
		out[i] = Merge(existing[i], incoming[i])
	}
	return out
}

func envEqual(a, b Env) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalType(a[i], b[i]) {
			return false
		}
	}
	return true
}

// transferBlock applies each instruction's effect on local-variable slots
// in order, mirroring §4.6's "transfer functions... mirror §4.4's effects
// on types only" rule, restricted to the store-family opcodes that write
// locals (load-family opcodes read but never change a slot's type).
func (e *Engine) transferBlock(in Env, instructions []bytecode.Instruction) Env {
	env := in.clone()
	for _, insn := range instructions {
		applyStore(env, insn)
	}
	return env
}

func applyStore(env Env, insn bytecode.Instruction) {
	set := func(slot int, t ast.Type) {
		if slot >= 0 && slot < len(env) {
			env[slot] = t
		}
	}
	switch insn.Opcode {
	case bytecode.Istore:
		set(insn.U8Operand(0), ast.Type{Kind: ast.TypeInt})
	case bytecode.Istore0:
		set(0, ast.Type{Kind: ast.TypeInt})
	case bytecode.Istore1:
		set(1, ast.Type{Kind: ast.TypeInt})
	case bytecode.Istore2:
		set(2, ast.Type{Kind: ast.TypeInt})
	case bytecode.Istore3:
		set(3, ast.Type{Kind: ast.TypeInt})

	case bytecode.Lstore:
		set(insn.U8Operand(0), ast.Type{Kind: ast.TypeLong})
	case bytecode.Lstore0:
		set(0, ast.Type{Kind: ast.TypeLong})
	case bytecode.Lstore1:
		set(1, ast.Type{Kind: ast.TypeLong})
	case bytecode.Lstore2:
		set(2, ast.Type{Kind: ast.TypeLong})
	case bytecode.Lstore3:
		set(3, ast.Type{Kind: ast.TypeLong})

	case bytecode.Fstore:
		set(insn.U8Operand(0), ast.Type{Kind: ast.TypeFloat})
	case bytecode.Fstore0:
		set(0, ast.Type{Kind: ast.TypeFloat})
	case bytecode.Fstore1:
		set(1, ast.Type{Kind: ast.TypeFloat})
	case bytecode.Fstore2:
		set(2, ast.Type{Kind: ast.TypeFloat})
	case bytecode.Fstore3:
		set(3, ast.Type{Kind: ast.TypeFloat})

	case bytecode.Dstore:
		set(insn.U8Operand(0), ast.Type{Kind: ast.TypeDouble})
	case bytecode.Dstore0:
		set(0, ast.Type{Kind: ast.TypeDouble})
	case bytecode.Dstore1:
		set(1, ast.Type{Kind: ast.TypeDouble})
	case bytecode.Dstore2:
		set(2, ast.Type{Kind: ast.TypeDouble})
	case bytecode.Dstore3:
		set(3, ast.Type{Kind: ast.TypeDouble})

	case bytecode.Astore:
		set(insn.U8Operand(0), ast.Reference("java/lang/Object"))
	case bytecode.Astore0:
		set(0, ast.Reference("java/lang/Object"))
	case bytecode.Astore1:
		set(1, ast.Reference("java/lang/Object"))
	case bytecode.Astore2:
		set(2, ast.Reference("java/lang/Object"))
	case bytecode.Astore3:
		set(3, ast.Reference("java/lang/Object"))

	case bytecode.Wide:
		if insn.Wide != nil {
			switch insn.Wide.Modified {
			case bytecode.Istore:
				set(insn.Wide.Index, ast.Type{Kind: ast.TypeInt})
			case bytecode.Lstore:
				set(insn.Wide.Index, ast.Type{Kind: ast.TypeLong})
			case bytecode.Fstore:
				set(insn.Wide.Index, ast.Type{Kind: ast.TypeFloat})
			case bytecode.Dstore:
				set(insn.Wide.Index, ast.Type{Kind: ast.TypeDouble})
			case bytecode.Astore:
				set(insn.Wide.Index, ast.Reference("java/lang/Object"))
			}
		}
	}
}
