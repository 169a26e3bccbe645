// Package optimize implements the ASTOptimizer: a multi-pass, round-bounded
// rewriter over an already-structured method body, grounded on gvm's
// compile.go staged pipeline (preprocess -> label resolution -> parse ->
// validate): a fixed sequence of independent passes run to a fixed point
// rather than one monolithic traversal.
package optimize

import "jdec/ast"

// maxRounds bounds the optimizer the way §4.7 requires: stop after this many
// rounds even if a round still reports a change, so a pathological input
// cannot loop the pipeline forever.
const maxRounds = 10

// Optimizer runs the constant-folding, algebraic-simplification,
// redundant-cast-removal, dead-code-elimination and variable-usage passes
// to a fixed point over one method body.
type Optimizer struct {
	arena *ast.Arena

	// Diagnostics accumulates short notes about rewrites the optimizer
	// deliberately declined (e.g. a constant division by zero left
	// unfolded), surfaced by the caller alongside the rest of §7's
	// per-method diagnostic list.
	Diagnostics []string
}

// New prepares an Optimizer over the given arena. The arena is shared with
// whatever rebuilt/structured the body being optimized; passes rewrite nodes
// in place via Arena.Replace.
func New(arena *ast.Arena) *Optimizer {
	return &Optimizer{arena: arena}
}

// Run optimizes the subtree rooted at root in place, iterating passes until
// a round changes nothing or maxRounds is reached. Returns the number of
// rounds actually run (mainly for Stats/diagnostics).
func (o *Optimizer) Run(root ast.NodeID) int {
	round := 0
	for ; round < maxRounds; round++ {
		changed := false
		changed = o.foldConstants(root) || changed
		changed = o.simplifyAlgebra(root) || changed
		changed = o.removeRedundantCasts(root) || changed
		changed = o.eliminateDeadCode(root) || changed
		if !changed {
			round++
			break
		}
	}
	o.analyzeUsage(root)
	return round
}

// walkStmt recurses into every statement reachable from id, calling
// visitExpr on each expression root it finds (condition, assignment RHS,
// return value, ...) and visitStmt on id itself, depth-first, statements
// before their own visitStmt call (post-order, so a pass can safely collapse
// a construct whose children have already been simplified).
func walkStmt(a *ast.Arena, id ast.NodeID, visitExpr func(ast.NodeID), visitStmt func(ast.NodeID)) {
	if id == ast.NoNode {
		return
	}
	n := a.Get(id)
	switch n.Kind {
	case ast.KindBlock:
		for _, c := range n.Children {
			walkStmt(a, c, visitExpr, visitStmt)
		}
	case ast.KindIf:
		visitExpr(n.Lhs)
		walkStmt(a, n.Then, visitExpr, visitStmt)
		walkStmt(a, n.Else, visitExpr, visitStmt)
	case ast.KindWhile, ast.KindDoWhile:
		visitExpr(n.Lhs)
		walkStmt(a, n.Then, visitExpr, visitStmt)
	case ast.KindFor:
		walkStmt(a, n.ForInit, visitExpr, visitStmt)
		visitExpr(n.Lhs)
		walkStmt(a, n.ForStep, visitExpr, visitStmt)
		walkStmt(a, n.Then, visitExpr, visitStmt)
	case ast.KindSwitch:
		visitExpr(n.Lhs)
		for _, c := range n.Children {
			walkStmt(a, c, visitExpr, visitStmt)
		}
	case ast.KindSwitchCase:
		for _, c := range n.Children {
			walkStmt(a, c, visitExpr, visitStmt)
		}
	case ast.KindTryCatch:
		walkStmt(a, n.Then, visitExpr, visitStmt)
		for _, c := range n.Children {
			walkStmt(a, c, visitExpr, visitStmt)
		}
		walkStmt(a, n.Finally, visitExpr, visitStmt)
	case ast.KindCatchClause:
		walkStmt(a, n.CatchBody, visitExpr, visitStmt)
	case ast.KindVariableDecl:
		if n.Rhs != ast.NoNode {
			visitExpr(n.Rhs)
		}
	case ast.KindAssignment:
		visitExpr(n.Lhs)
		visitExpr(n.Rhs)
	case ast.KindReturn, ast.KindThrow, ast.KindMonitorEnter, ast.KindMonitorExit:
		if n.Lhs != ast.NoNode {
			visitExpr(n.Lhs)
		}
	case ast.KindMethodCall:
		for _, c := range n.Children {
			visitExpr(c)
		}
	default: // Goto, Label, Literal-as-statement, etc: nothing to recurse into
	}
	visitStmt(id)
}
