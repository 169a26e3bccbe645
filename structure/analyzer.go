// Package structure implements the ControlStructureAnalyzer: it turns a
// method's control-flow graph, plus the expression/condition/selector maps
// the ExpressionRebuilder produced, into a nested tree of If/While/DoWhile/
// For/Switch/TryCatch statement nodes instead of a flat block list.
//
// Grounded on the same region-growing shape gvm's own control flow never
// needed (gvm jumps resolve directly to addresses at execution time, so
// there is no teacher analogue for structure recovery) but modeled after
// the dominance/merge-point reasoning documented in cfg/dominators.go: a
// reducible method's if/else arms converge at the nearest block both arms
// can reach, and a loop's header/latch pair is exactly what
// cfg.detectNaturalLoops already isolated.
package structure

import (
	"fmt"
	"sort"

	"jdec/ast"
	"jdec/cfg"
	"jdec/classfile"
)

// Analyzer assembles structured control flow for one method.
type Analyzer struct {
	arena *ast.Arena
	graph *cfg.CFG
	pool  *classfile.ConstantPool

	statements      map[cfg.BlockID][]ast.NodeID
	conditions      map[int]ast.NodeID
	switchSelectors map[int]ast.NodeID

	visited   map[cfg.BlockID]bool
	tryGroups map[cfg.BlockID]*tryGroup
}

// New prepares an Analyzer over one method's already-rebuilt blocks. pool
// resolves the class names a try statement's catch clauses declare.
func New(arena *ast.Arena, graph *cfg.CFG, pool *classfile.ConstantPool, statements map[cfg.BlockID][]ast.NodeID, conditions, switchSelectors map[int]ast.NodeID) *Analyzer {
	return &Analyzer{
		arena:           arena,
		graph:           graph,
		pool:            pool,
		statements:      statements,
		conditions:      conditions,
		switchSelectors: switchSelectors,
		visited:         make(map[cfg.BlockID]bool),
		tryGroups:       buildTryGroups(graph),
	}
}

// Structure builds the method body's statement list, starting from the
// CFG's entry block.
func (a *Analyzer) Structure() []ast.NodeID {
	return a.region(a.graph.EntryID, cfg.NoBlock)
}

// region walks forward from start, accumulating statements and recursing
// into nested constructs, until it reaches stop (exclusive) or runs out of
// blocks (NoBlock, meaning every path from here exits the method).
func (a *Analyzer) region(start, stop cfg.BlockID) []ast.NodeID {
	var out []ast.NodeID
	cur := start
	for cur != stop && cur != cfg.NoBlock {
		if a.visited[cur] {
			// Already folded into an enclosing construct (irreducible
			// control flow re-entering a block from a second path): degrade
			// to an explicit jump rather than looping or failing the method.
			out = append(out, a.gotoBlock(cur))
			break
		}

		if g, ok := a.tryGroups[cur]; ok {
			// buildTryCatch drives its own region() calls over the try body
			// and each handler, so cur is left unmarked here - marking it
			// visited first would make its own nested region(start, ...)
			// call immediately degrade to a goto.
			node, next := a.buildTryCatch(cur, g)
			out = append(out, node)
			cur = next
			continue
		}

		a.visited[cur] = true
		b := &a.graph.Blocks[cur]

		if b.IsLoopHeader {
			node, next := a.buildLoop(cur)
			out, cur = a.foldLoopInit(out, node), next
			continue
		}

		out = append(out, a.statements[cur]...)

		switch b.Kind {
		case cfg.KindExit:
			return out
		case cfg.KindSwitch:
			node, next := a.buildSwitch(cur, b)
			out = append(out, node)
			cur = next
		case cfg.KindBranch:
			node, next := a.buildIf(cur, b)
			out = append(out, node)
			cur = next
		default: // KindNormal
			if len(b.Successors) == 1 {
				cur = b.Successors[0]
			} else {
				cur = stop
			}
		}
	}
	return out
}

func lastPC(b *cfg.BasicBlock) int {
	if len(b.Instructions) == 0 {
		return b.StartPC
	}
	return b.Instructions[len(b.Instructions)-1].PC
}

func (a *Analyzer) blockNode(ids []ast.NodeID) ast.NodeID {
	return a.arena.New(ast.Node{Kind: ast.KindBlock, Children: ids})
}

func (a *Analyzer) gotoBlock(target cfg.BlockID) ast.NodeID {
	name := fmt.Sprintf("block_%d", a.graph.Blocks[target].StartPC)
	return a.arena.New(ast.Node{Kind: ast.KindGoto, Name: name})
}

// buildIf recognizes the branch block's two successors as then/else arms,
// converging at their nearest common reachable block.
func (a *Analyzer) buildIf(id cfg.BlockID, b *cfg.BasicBlock) (ast.NodeID, cfg.BlockID) {
	condID := a.conditions[lastPC(b)]
	thenStart, elseStart := b.Successors[0], b.Successors[1]
	merge := mergePoint(a.graph, thenStart, elseStart)

	thenNodes := a.region(thenStart, merge)
	var elseNode ast.NodeID = ast.NoNode
	if elseStart != merge {
		elseNodes := a.region(elseStart, merge)
		elseNode = a.blockNode(elseNodes)
	}
	ifNode := a.arena.New(ast.Node{
		Kind: ast.KindIf,
		Lhs:  condID,
		Then: a.blockNode(thenNodes),
		Else: elseNode,
	})
	return ifNode, merge
}

// buildSwitch recognizes a tableswitch/lookupswitch block's successors as
// case arms, converging at their nearest common reachable block.
func (a *Analyzer) buildSwitch(id cfg.BlockID, b *cfg.BasicBlock) (ast.NodeID, cfg.BlockID) {
	insn := b.Instructions[len(b.Instructions)-1]
	selectorID := a.switchSelectors[insn.PC]

	targetValues := map[int][]int32{}
	defaultTarget, _ := a.graph.BlockAt(insn.Switch.Default)
	if insn.Switch.Pairs != nil {
		for _, p := range insn.Switch.Pairs {
			if t, ok := a.graph.BlockAt(p.Target); ok {
				targetValues[int(t)] = append(targetValues[int(t)], p.Match)
			}
		}
	} else {
		for i, pc := range insn.Switch.Targets {
			if t, ok := a.graph.BlockAt(pc); ok {
				targetValues[int(t)] = append(targetValues[int(t)], int32(insn.Switch.Low+i))
			}
		}
	}

	targets := make([]int, 0, len(targetValues)+1)
	for t := range targetValues {
		targets = append(targets, t)
	}
	hasDefaultCase := false
	for t := range targetValues {
		if cfg.BlockID(t) == defaultTarget {
			hasDefaultCase = true
		}
	}
	if !hasDefaultCase {
		targets = append(targets, int(defaultTarget))
	}
	sort.Ints(targets)

	merge := mergeAcross(a.graph, targets)

	var caseNodes []ast.NodeID
	for _, t := range targets {
		target := cfg.BlockID(t)
		body := a.region(target, merge)
		values := targetValues[t]
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		if cfg.BlockID(t) == defaultTarget {
			values = nil
		}
		caseNodes = append(caseNodes, a.arena.New(ast.Node{
			Kind:       ast.KindSwitchCase,
			Children:   body,
			CaseValues: values,
		}))
	}

	switchNode := a.arena.New(ast.Node{
		Kind:     ast.KindSwitch,
		Lhs:      selectorID,
		Children: caseNodes,
	})
	return switchNode, merge
}

// reachableSet returns every block reachable from start via Successors,
// start included.
func reachableSet(g *cfg.CFG, start cfg.BlockID) map[cfg.BlockID]bool {
	seen := map[cfg.BlockID]bool{}
	queue := []cfg.BlockID{start}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if seen[b] {
			continue
		}
		seen[b] = true
		for _, s := range g.Blocks[b].Successors {
			if !seen[s] {
				queue = append(queue, s)
			}
		}
	}
	return seen
}

// mergePoint picks the nearest (lowest start PC) block reachable from both
// x and y - an approximation of the immediate post-dominator that holds for
// the straight-line if/else shapes a structured compiler emits, without
// computing a full post-dominator tree.
func mergePoint(g *cfg.CFG, x, y cfg.BlockID) cfg.BlockID {
	rx := reachableSet(g, x)
	ry := reachableSet(g, y)
	best := cfg.NoBlock
	for b := range rx {
		if ry[b] && (best == cfg.NoBlock || g.Blocks[b].StartPC < g.Blocks[best].StartPC) {
			best = b
		}
	}
	return best
}

// mergeAcross generalizes mergePoint to N arms (switch cases): the nearest
// block reachable from every one of targets.
func mergeAcross(g *cfg.CFG, targets []int) cfg.BlockID {
	if len(targets) == 0 {
		return cfg.NoBlock
	}
	common := reachableSet(g, cfg.BlockID(targets[0]))
	for _, t := range targets[1:] {
		next := reachableSet(g, cfg.BlockID(t))
		for b := range common {
			if !next[b] {
				delete(common, b)
			}
		}
	}
	best := cfg.NoBlock
	for b := range common {
		if best == cfg.NoBlock || g.Blocks[b].StartPC < g.Blocks[best].StartPC {
			best = b
		}
	}
	return best
}
