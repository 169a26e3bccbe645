// Package cfg builds a control-flow graph over a decoded instruction stream
// and computes dominators and natural loops, the structural scaffolding the
// later structure/rebuild packages walk (§4.3).
package cfg

import "jdec/bytecode"

// BlockKind classifies how control leaves a block.
type BlockKind int

const (
	KindNormal BlockKind = iota // single fall-through or unconditional-jump successor
	KindBranch                 // conditional branch: two successors
	KindSwitch                 // tableswitch/lookupswitch: default + case successors
	KindExit                   // return/throw: no successor
)

func (k BlockKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindBranch:
		return "branch"
	case KindSwitch:
		return "switch"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// BlockID indexes a BasicBlock within a CFG's Blocks slice.
type BlockID int

// NoBlock is the sentinel BlockID used for "no immediate dominator" (the
// entry block) and other absent-block fields.
const NoBlock BlockID = -1

// BasicBlock is a maximal straight-line run of instructions, per the
// block-start-PC algorithm in §4.3.
type BasicBlock struct {
	ID           BlockID
	StartPC      int
	EndPC        int // exclusive
	Instructions []bytecode.Instruction
	Kind         BlockKind

	Predecessors []BlockID
	Successors   []BlockID

	// Handlers lists exception handler blocks whose range covers this
	// block (populated from the Code attribute's exception table).
	Handlers []BlockID

	// IDom is this block's immediate dominator, or NoBlock for the entry block.
	IDom BlockID
	// DominatesImmediate lists blocks whose immediate dominator is this one.
	DominatesImmediate []BlockID

	// IsLoopHeader and LoopBody are populated by natural-loop detection.
	IsLoopHeader bool
	LoopBody     []BlockID // includes the header itself, unordered
}

// Dominates reports whether block a dominates block b, using the CFG's
// precomputed dominator tree (O(depth) walk up the IDom chain).
func (cfg *CFG) Dominates(a, b BlockID) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}
		if cur == NoBlock {
			return false
		}
		cur = cfg.Blocks[cur].IDom
	}
}
