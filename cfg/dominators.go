package cfg

// reversePostorder returns block IDs in reverse postorder from the entry
// block, the order the iterative dominator dataflow in §4.3 requires for
// fast convergence.
func reversePostorder(cfg *CFG) []BlockID {
	visited := make([]bool, len(cfg.Blocks))
	var post []BlockID

	var visit func(id BlockID)
	visit = func(id BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, succ := range cfg.Blocks[id].Successors {
			visit(succ)
		}
		post = append(post, id)
	}
	visit(cfg.EntryID)

	rpo := make([]BlockID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}
	return rpo
}

// computeDominators implements the classic iterative reverse-postorder
// dominator algorithm (Cooper/Harvey/Kennedy), converging to a fixed point
// on a CFG that may contain unreachable blocks (left with IDom == NoBlock).
func computeDominators(cfg *CFG) {
	rpo := reversePostorder(cfg)
	rpoIndex := make(map[BlockID]int, len(rpo))
	for i, id := range rpo {
		rpoIndex[id] = i
	}

	idom := make([]BlockID, len(cfg.Blocks))
	for i := range idom {
		idom[i] = NoBlock
	}
	idom[cfg.EntryID] = cfg.EntryID

	changed := true
	for changed {
		changed = false
		for _, id := range rpo {
			if id == cfg.EntryID {
				continue
			}
			var newIdom BlockID = NoBlock
			for _, pred := range cfg.Blocks[id].Predecessors {
				if idom[pred] == NoBlock {
					continue
				}
				if newIdom == NoBlock {
					newIdom = pred
					continue
				}
				newIdom = intersect(idom, rpoIndex, newIdom, pred)
			}
			if newIdom != NoBlock && idom[id] != newIdom {
				idom[id] = newIdom
				changed = true
			}
		}
	}

	idom[cfg.EntryID] = NoBlock
	for i := range cfg.Blocks {
		cfg.Blocks[i].IDom = idom[i]
	}
	for i := range cfg.Blocks {
		d := idom[i]
		if d == NoBlock {
			continue
		}
		cfg.Blocks[d].DominatesImmediate = append(cfg.Blocks[d].DominatesImmediate, BlockID(i))
	}
}

func intersect(idom []BlockID, rpoIndex map[BlockID]int, a, b BlockID) BlockID {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// detectNaturalLoops finds back-edges (an edge n -> h where h dominates n)
// and computes each loop's body as the set of blocks that reach n in the
// reverse graph without passing through h, per §4.3.
func detectNaturalLoops(cfg *CFG) {
	for bi := range cfg.Blocks {
		n := BlockID(bi)
		for _, h := range cfg.Blocks[bi].Successors {
			if !cfg.Dominates(h, n) {
				continue
			}
			cfg.Blocks[h].IsLoopHeader = true
			body := naturalLoopBody(cfg, h, n)
			cfg.Blocks[h].LoopBody = mergeLoopBody(cfg.Blocks[h].LoopBody, body)
		}
	}
}

func naturalLoopBody(cfg *CFG, header, latch BlockID) []BlockID {
	body := map[BlockID]struct{}{header: {}, latch: {}}
	stack := []BlockID{latch}
	if latch == header {
		stack = nil
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, pred := range cfg.Blocks[cur].Predecessors {
			if _, ok := body[pred]; ok {
				continue
			}
			body[pred] = struct{}{}
			stack = append(stack, pred)
		}
	}
	out := make([]BlockID, 0, len(body))
	for id := range body {
		out = append(out, id)
	}
	return out
}

func mergeLoopBody(existing, add []BlockID) []BlockID {
	seen := make(map[BlockID]struct{}, len(existing)+len(add))
	out := make([]BlockID, 0, len(existing)+len(add))
	for _, id := range existing {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range add {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
