package structure

import (
	"jdec/ast"
	"jdec/cfg"
)

// buildLoop recognizes a loop header's shape and returns either a While
// (condition tested at the top, the common compiled shape for `while` and
// `for`) or a DoWhile (condition tested at the bottom, `do { } while`) node,
// plus the block execution continues at once the loop exits.
func (a *Analyzer) buildLoop(header cfg.BlockID) (ast.NodeID, cfg.BlockID) {
	hb := &a.graph.Blocks[header]
	inBody := make(map[cfg.BlockID]bool, len(hb.LoopBody))
	for _, b := range hb.LoopBody {
		inBody[b] = true
	}

	if hb.Kind == cfg.KindBranch {
		s0, s1 := hb.Successors[0], hb.Successors[1]
		if in0, in1 := inBody[s0] && s0 != header, inBody[s1] && s1 != header; in0 != in1 {
			bodyStart, exit := s0, s1
			if in1 {
				bodyStart, exit = s1, s0
			}
			condID := a.conditions[lastPC(hb)]
			bodyNodes := a.region(bodyStart, header)
			node := a.arena.New(ast.Node{
				Kind: ast.KindWhile,
				Lhs:  condID,
				Then: a.blockNode(bodyNodes),
			})
			return node, exit
		}
	}

	// Bottom-tested loop: find the latch, the loop-body block whose own
	// branch jumps back to the header.
	latch := cfg.NoBlock
	for _, b := range hb.LoopBody {
		lb := &a.graph.Blocks[b]
		if lb.Kind != cfg.KindBranch {
			continue
		}
		for _, s := range lb.Successors {
			if s == header && (latch == cfg.NoBlock || lb.StartPC > a.graph.Blocks[latch].StartPC) {
				latch = b
			}
		}
	}
	if latch == cfg.NoBlock {
		// No recognizable back-edge shape (irreducible); fall back to a
		// single degenerate iteration rather than failing the method.
		bodyNodes := a.region(header, cfg.NoBlock)
		return a.blockNode(bodyNodes), cfg.NoBlock
	}

	a.visited[latch] = true
	lb := &a.graph.Blocks[latch]
	condID := a.conditions[lastPC(lb)]
	exit := cfg.NoBlock
	for _, s := range lb.Successors {
		if s != header {
			exit = s
		}
	}
	bodyNodes := a.region(header, latch)
	bodyNodes = append(bodyNodes, a.statements[latch]...)
	node := a.arena.New(ast.Node{
		Kind: ast.KindDoWhile,
		Lhs:  condID,
		Then: a.blockNode(bodyNodes),
	})
	return node, exit
}

// foldLoopInit recognizes the common `for` pattern out of an already-built
// While node: a body whose final statement increments/decrements the same
// local the loop condition tests, preceded in the enclosing region by a
// declaration or assignment of that same local. When found, the pair is
// folded into a single For node; otherwise the While node is returned
// unchanged.
func (a *Analyzer) foldLoopInit(out []ast.NodeID, loopNode ast.NodeID) []ast.NodeID {
	n := a.arena.Get(loopNode)
	if n.Kind != ast.KindWhile {
		return append(out, loopNode)
	}
	body := a.arena.Get(n.Then)
	if len(body.Children) == 0 {
		return append(out, loopNode)
	}
	stepID := body.Children[len(body.Children)-1]
	step := a.arena.Get(stepID)
	if step.Kind != ast.KindAssignment || (step.Op != "+=" && step.Op != "-=") {
		return append(out, loopNode)
	}
	stepTarget := a.arena.Get(step.Lhs)
	cond := a.arena.Get(n.Lhs)
	if cond == nil || !mentionsSlot(a.arena, cond.Lhs, stepTarget.Slot) && !mentionsSlot(a.arena, cond.Rhs, stepTarget.Slot) {
		return append(out, loopNode)
	}

	var initID ast.NodeID = ast.NoNode
	if len(out) > 0 {
		last := out[len(out)-1]
		ln := a.arena.Get(last)
		switch {
		case ln.Kind == ast.KindVariableDecl && ln.Slot == stepTarget.Slot:
			initID = last
			out = out[:len(out)-1]
		case ln.Kind == ast.KindAssignment:
			if tgt := a.arena.Get(ln.Lhs); tgt != nil && tgt.Kind == ast.KindIdentifier && tgt.Slot == stepTarget.Slot {
				initID = last
				out = out[:len(out)-1]
			}
		}
	}

	a.arena.Replace(loopNode, ast.Node{
		Kind:    ast.KindFor,
		ForInit: initID,
		Lhs:     n.Lhs,
		ForStep: stepID,
		Then:    a.blockNode(body.Children[:len(body.Children)-1]),
	})
	return append(out, loopNode)
}

func mentionsSlot(arena *ast.Arena, id ast.NodeID, slot int) bool {
	if id == ast.NoNode {
		return false
	}
	found := false
	arena.Walk(id, func(nid ast.NodeID) {
		n := arena.Get(nid)
		if n.Kind == ast.KindIdentifier && n.Slot == slot {
			found = true
		}
	})
	return found
}
