package rebuild

import (
	"fmt"

	"jdec/ast"
	"jdec/cfg"

	"github.com/pkg/errors"
)

// handlerEntryTypes returns, for every block that is some exception
// handler's target, the type its seeded entry-stack value should carry.
// The exact declared catch type isn't needed at this level (only the
// structure package's TryCatch/CatchClause construction resolves that from
// the constant pool) - a generic reference type is enough for the
// interpreter to treat the seeded value like any other stack slot.
func handlerEntryTypes(graph *cfg.CFG) map[cfg.BlockID]ast.Type {
	out := make(map[cfg.BlockID]ast.Type)
	for _, h := range graph.ExceptionTable {
		if hb, ok := graph.BlockAt(h.HandlerPC); ok {
			out[hb] = ast.Reference("java/lang/Throwable")
		}
	}
	return out
}

// isBackEdge reports whether the edge from -> to is a loop back-edge (the
// same test cfg.detectNaturalLoops uses: the edge's target dominates its
// source).
func isBackEdge(graph *cfg.CFG, from, to cfg.BlockID) bool {
	return graph.Dominates(to, from)
}

// topoOrder returns block IDs in an order where every block appears after
// all of its forward (non-back-edge) predecessors, so RebuildMethod can
// derive a block's entry stack purely from already-processed predecessors.
// Blocks unreachable from the entry by forward edges alone (chiefly
// exception-handler blocks, which carry no ordinary predecessor edge) are
// appended last, in ID order.
func topoOrder(graph *cfg.CFG) []cfg.BlockID {
	n := len(graph.Blocks)
	indegree := make([]int, n)
	for id := range graph.Blocks {
		for _, p := range graph.Blocks[id].Predecessors {
			if !isBackEdge(graph, p, cfg.BlockID(id)) {
				indegree[id]++
			}
		}
	}

	seen := make([]bool, n)
	order := make([]cfg.BlockID, 0, n)
	queue := []cfg.BlockID{graph.EntryID}
	seen[graph.EntryID] = true

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, s := range graph.Blocks[id].Successors {
			if isBackEdge(graph, id, s) {
				continue
			}
			indegree[s]--
			if indegree[s] == 0 && !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}

	for id := 0; id < n; id++ {
		if !seen[id] {
			order = append(order, cfg.BlockID(id))
		}
	}
	return order
}

// mergeEntry computes the operand stack a block should start interpreting
// with, from its forward predecessors' already-recorded exit stacks (§4.4
// "Cross-block discipline"). A block reached by a single forward
// predecessor simply continues that predecessor's stack. Two or more
// predecessors must agree on stack height - verified bytecode guarantees
// this (§8 Testable Property 5) - or mergeEntry returns ErrStackMerge
// instead of guessing. Where predecessors agree on height but push
// different values at some depth, synthesizeMerge reconciles them into a
// shared temporary.
func (r *Rebuilder) mergeEntry(graph *cfg.CFG, id cfg.BlockID, exitStacks map[cfg.BlockID][]stackSlot) ([]stackSlot, error) {
	var preds []cfg.BlockID
	for _, p := range graph.Blocks[id].Predecessors {
		if !isBackEdge(graph, p, id) {
			preds = append(preds, p)
		}
	}
	if len(preds) == 0 {
		return nil, nil
	}

	first := exitStacks[preds[0]]
	for _, p := range preds[1:] {
		if len(exitStacks[p]) != len(first) {
			return nil, errors.Wrapf(ErrStackMerge, "predecessor %d has height %d, predecessor %d has height %d",
				preds[0], len(first), p, len(exitStacks[p]))
		}
	}
	if len(preds) == 1 {
		return append([]stackSlot(nil), first...), nil
	}

	merged := make([]stackSlot, len(first))
	for depth := range first {
		agree := true
		for _, p := range preds[1:] {
			if exitStacks[p][depth].node != first[depth].node {
				agree = false
				break
			}
		}
		if agree {
			merged[depth] = first[depth]
			continue
		}
		merged[depth] = r.synthesizeMerge(graph, id, preds, depth, exitStacks)
	}
	return merged, nil
}

// synthesizeMerge declares a fresh temporary at the merge block's immediate
// dominator (the common ancestor both arms fall out of) and appends a
// closing assignment of it to every forward predecessor's statement
// list, then returns the stack slot that reads it back. This is the
// phi-node every SSA-shaped IR needs at a join point; here it's realized as
// a plain local rather than an IR construct since the emitted output is
// source text, not another IR.
func (r *Rebuilder) synthesizeMerge(graph *cfg.CFG, id cfg.BlockID, preds []cfg.BlockID, depth int, exitStacks map[cfg.BlockID][]stackSlot) stackSlot {
	t := exitStacks[preds[0]][depth].typ
	slot := r.nextMergeTemp
	r.nextMergeTemp--
	name := fmt.Sprintf("merge%d", -slot)

	identNode := r.newNode(ast.Node{Kind: ast.KindIdentifier, Name: name, Type: t, Slot: slot})

	if dom := graph.Blocks[id].IDom; dom != cfg.NoBlock {
		declNode := r.newNode(ast.Node{Kind: ast.KindVariableDecl, Name: name, Type: t, Slot: slot, Rhs: ast.NoNode})
		r.Statements[dom] = append(r.Statements[dom], declNode)
	}

	for _, p := range preds {
		src := exitStacks[p][depth]
		assign := r.newNode(ast.Node{Kind: ast.KindAssignment, Op: "=", Lhs: identNode, Rhs: src.node, Type: t})
		r.Statements[p] = append(r.Statements[p], assign)
	}

	return stackSlot{node: identNode, typ: t}
}
