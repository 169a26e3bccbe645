package structure

import (
	"jdec/ast"
	"jdec/cfg"
	"jdec/classfile"
)

// tryGroup collects every exception-table entry protecting the same
// [StartPC, EndPC) range - the shape javac emits for one try statement with
// one or more catch clauses: one entry per clause, all sharing the same
// protected range.
type tryGroup struct {
	end     cfg.BlockID
	entries []classfile.ExceptionTableEntry
}

// catchArm is one distinct handler target within a tryGroup. A multi-catch
// clause (`catch (A | B e)`) compiles to several exception-table entries
// that share a HandlerPC, so entries are grouped here by HandlerPC before
// building one CatchClause per arm.
type catchArm struct {
	handlerPC  int
	catchTypes []int
}

// buildTryGroups indexes a method's raw exception table by the block where
// its protected range begins, so region can recognize a try statement's
// start the same way it already recognizes a loop header.
func buildTryGroups(graph *cfg.CFG) map[cfg.BlockID]*tryGroup {
	groups := make(map[cfg.BlockID]*tryGroup)
	keyed := make(map[[2]int]cfg.BlockID)
	for _, h := range graph.ExceptionTable {
		start, ok := graph.BlockAt(h.StartPC)
		if !ok {
			continue
		}
		key := [2]int{h.StartPC, h.EndPC}
		startBlock, ok := keyed[key]
		if !ok {
			startBlock = start
			keyed[key] = start
		}
		g, ok := groups[startBlock]
		if !ok {
			end, _ := graph.BlockAt(h.EndPC)
			g = &tryGroup{end: end}
			groups[startBlock] = g
		}
		g.entries = append(g.entries, h)
	}
	return groups
}

// arms groups a tryGroup's raw entries by handler target.
func (g *tryGroup) arms() []*catchArm {
	var out []*catchArm
	seen := make(map[int]*catchArm)
	for _, h := range g.entries {
		ca, ok := seen[h.HandlerPC]
		if !ok {
			ca = &catchArm{handlerPC: h.HandlerPC}
			seen[h.HandlerPC] = ca
			out = append(out, ca)
		}
		ca.catchTypes = append(ca.catchTypes, h.CatchType)
	}
	return out
}

// buildTryCatch recognizes start as the entry of a protected range, builds
// its try body plus one CatchClause per distinct handler target, and
// returns the block execution continues at once every arm has converged.
func (a *Analyzer) buildTryCatch(start cfg.BlockID, g *tryGroup) (ast.NodeID, cfg.BlockID) {
	delete(a.tryGroups, start)
	arms := g.arms()

	targets := make([]int, 0, len(arms)+1)
	targets = append(targets, int(start))
	for _, ca := range arms {
		if hb, ok := a.graph.BlockAt(ca.handlerPC); ok {
			targets = append(targets, int(hb))
		}
	}
	merge := mergeAcross(a.graph, targets)

	tryNodes := a.region(start, merge)

	var clauses []ast.NodeID
	for _, ca := range arms {
		hb, ok := a.graph.BlockAt(ca.handlerPC)
		if !ok || a.visited[hb] {
			continue
		}
		types := make([]string, 0, len(ca.catchTypes))
		for _, idx := range ca.catchTypes {
			types = append(types, a.catchTypeName(idx))
		}
		bodyNode, slot := a.buildCatchBody(hb, merge)
		clauses = append(clauses, a.arena.New(ast.Node{
			Kind:       ast.KindCatchClause,
			CatchTypes: types,
			CatchSlot:  slot,
			CatchBody:  bodyNode,
		}))
	}

	tryCatch := a.arena.New(ast.Node{
		Kind:     ast.KindTryCatch,
		Then:     a.blockNode(tryNodes),
		Children: clauses,
		Finally:  ast.NoNode,
	})
	return tryCatch, merge
}

// catchTypeName resolves a catch-type constant-pool index to a class name,
// per classfile.ExceptionTableEntry's convention that 0 means catch-all
// (the compiled form of `finally` and of a bare `catch (Throwable t)`).
func (a *Analyzer) catchTypeName(poolIdx int) string {
	if poolIdx == 0 {
		return "java/lang/Throwable"
	}
	name, err := a.pool.ClassName(poolIdx)
	if err != nil {
		return "java/lang/Throwable"
	}
	return name
}

// buildCatchBody structures one handler's body starting at its entry block.
// javac always stores the caught reference into a local right at handler
// entry (the ExpressionRebuilder records this as a VariableDecl whose Rhs is
// the synthetic "ex" value seeded by handler-entry stack seeding); that
// leading declaration is lifted into the CatchClause's own CatchSlot instead
// of being emitted again as a statement inside the body.
func (a *Analyzer) buildCatchBody(handler, stop cfg.BlockID) (ast.NodeID, int) {
	slot := -1
	if stmts := a.statements[handler]; len(stmts) > 0 {
		if decl := a.arena.Get(stmts[0]); decl != nil && decl.Kind == ast.KindVariableDecl {
			if rhs := a.arena.Get(decl.Rhs); rhs != nil && rhs.Kind == ast.KindIdentifier && rhs.Name == "ex" {
				slot = decl.Slot
				a.statements[handler] = stmts[1:]
			}
		}
	}
	body := a.region(handler, stop)
	return a.blockNode(body), slot
}
