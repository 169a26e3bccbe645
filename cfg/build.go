package cfg

import (
	"sort"

	"jdec/bytecode"
	"jdec/classfile"
)

// CFG is the control-flow graph of one method, per §4.3.
type CFG struct {
	Blocks  []BasicBlock
	EntryID BlockID
	ExitIDs []BlockID

	// ExceptionTable is the method's raw exception table, carried through
	// unprocessed so later passes (the expression rebuilder's handler-entry
	// stack seeding, the control-structure analyzer's try/catch recovery)
	// can resolve handler ranges and catch types without re-deriving them
	// from BasicBlock.Handlers.
	ExceptionTable []classfile.ExceptionTableEntry

	startPCToBlock map[int]BlockID
}

// BlockAt returns the block starting at pc, or NoBlock and false if pc is
// not a block-start PC.
func (cfg *CFG) BlockAt(pc int) (BlockID, bool) {
	id, ok := cfg.startPCToBlock[pc]
	if !ok {
		return NoBlock, false
	}
	return id, true
}

// Build constructs a CFG from a method's linear instruction stream and its
// exception table.
//
// Grounded on the general "label/jump table defines block boundaries" shape
// of other_examples/.../nspcc-dev-neo-go__pkg-compiler-codegen.go.go and
// other_examples/.../wudi-hey__compiler-opcodes-opcodes.go.go: both resolve
// jump targets against a flat instruction stream the way this builder
// resolves block-start PCs against the raw PC space. gvm itself has no
// structured CFG (its jumps resolve directly to addresses at execution
// time), so there is no teacher analogue for this package's core algorithm.
func Build(instructions []bytecode.Instruction, handlers []classfile.ExceptionTableEntry) (*CFG, error) {
	if len(instructions) == 0 {
		return nil, ErrEmptyMethod
	}

	byPC := make(map[int]int, len(instructions)) // pc -> index in instructions
	for i, insn := range instructions {
		byPC[insn.PC] = i
	}
	codeEnd := instructions[len(instructions)-1].NextPC()

	starts := collectBlockStarts(instructions, handlers, codeEnd)

	cfg := &CFG{ExceptionTable: handlers, startPCToBlock: make(map[int]BlockID, len(starts))}
	for i, startPC := range starts {
		endPC := codeEnd
		if i+1 < len(starts) {
			endPC = starts[i+1]
		}
		id := BlockID(len(cfg.Blocks))
		cfg.startPCToBlock[startPC] = id
		cfg.Blocks = append(cfg.Blocks, BasicBlock{
			ID:      id,
			StartPC: startPC,
			EndPC:   endPC,
			IDom:    NoBlock,
		})
	}

	for bi := range cfg.Blocks {
		b := &cfg.Blocks[bi]
		startIdx, ok := byPC[b.StartPC]
		if !ok {
			continue // empty block (a start PC that does not begin an instruction)
		}
		for idx := startIdx; idx < len(instructions) && instructions[idx].PC < b.EndPC; idx++ {
			b.Instructions = append(b.Instructions, instructions[idx])
		}
	}

	cfg.EntryID = 0
	for bi := range cfg.Blocks {
		connectSuccessors(cfg, BlockID(bi), codeEnd)
	}
	for bi := range cfg.Blocks {
		for _, succ := range cfg.Blocks[bi].Successors {
			cfg.Blocks[succ].Predecessors = append(cfg.Blocks[succ].Predecessors, BlockID(bi))
		}
		if cfg.Blocks[bi].Kind == KindExit {
			cfg.ExitIDs = append(cfg.ExitIDs, BlockID(bi))
		}
	}

	attachHandlers(cfg, handlers)
	computeDominators(cfg)
	detectNaturalLoops(cfg)

	return cfg, nil
}

func collectBlockStarts(instructions []bytecode.Instruction, handlers []classfile.ExceptionTableEntry, codeEnd int) []int {
	set := map[int]struct{}{0: {}}
	add := func(pc int) {
		if pc >= 0 && pc < codeEnd {
			set[pc] = struct{}{}
		}
	}

	for _, insn := range instructions {
		switch {
		case insn.Opcode.IsBranch() || insn.Opcode.IsWideBranch():
			add(insn.BranchTarget())
			add(insn.NextPC())
		case insn.Switch != nil:
			add(insn.Switch.Default)
			for _, t := range insn.Switch.Targets {
				add(t)
			}
			for _, p := range insn.Switch.Pairs {
				add(p.Target)
			}
			add(insn.NextPC())
		case insn.Opcode.IsReturn() || insn.Opcode == bytecode.Athrow:
			add(insn.NextPC())
		}
	}

	for _, h := range handlers {
		add(h.StartPC)
		add(h.EndPC)
		add(h.HandlerPC)
	}

	out := make([]int, 0, len(set))
	for pc := range set {
		out = append(out, pc)
	}
	sort.Ints(out)
	return out
}

func connectSuccessors(cfg *CFG, id BlockID, codeEnd int) {
	b := &cfg.Blocks[id]
	if len(b.Instructions) == 0 {
		return
	}
	last := b.Instructions[len(b.Instructions)-1]

	switch {
	case last.Opcode.IsReturn() || last.Opcode == bytecode.Athrow:
		b.Kind = KindExit

	case last.Opcode.IsWideBranch() || last.Opcode == bytecode.Goto:
		b.Kind = KindNormal
		if tgt, ok := cfg.startPCToBlock[last.BranchTarget()]; ok {
			b.Successors = append(b.Successors, tgt)
		}

	case last.Opcode.IsBranch(): // conditional (Goto/GotoW already handled above)
		b.Kind = KindBranch
		if tgt, ok := cfg.startPCToBlock[last.BranchTarget()]; ok {
			b.Successors = append(b.Successors, tgt)
		}
		if fall, ok := cfg.startPCToBlock[last.NextPC()]; ok {
			b.Successors = append(b.Successors, fall)
		}

	case last.Switch != nil:
		b.Kind = KindSwitch
		seen := map[BlockID]struct{}{}
		addSucc := func(pc int) {
			if tgt, ok := cfg.startPCToBlock[pc]; ok {
				if _, dup := seen[tgt]; !dup {
					seen[tgt] = struct{}{}
					b.Successors = append(b.Successors, tgt)
				}
			}
		}
		addSucc(last.Switch.Default)
		for _, t := range last.Switch.Targets {
			addSucc(t)
		}
		for _, p := range last.Switch.Pairs {
			addSucc(p.Target)
		}

	default:
		b.Kind = KindNormal
		if tgt, ok := cfg.startPCToBlock[last.NextPC()]; ok {
			b.Successors = append(b.Successors, tgt)
		}
	}
}

func attachHandlers(cfg *CFG, handlers []classfile.ExceptionTableEntry) {
	for _, h := range handlers {
		handlerBlock, ok := cfg.startPCToBlock[h.HandlerPC]
		if !ok {
			continue
		}
		for bi := range cfg.Blocks {
			b := &cfg.Blocks[bi]
			if b.StartPC >= h.StartPC && b.StartPC < h.EndPC {
				b.Handlers = append(b.Handlers, handlerBlock)
			}
		}
	}
}
