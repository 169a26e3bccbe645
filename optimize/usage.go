package optimize

import "jdec/ast"

// analyzeUsage implements §4.7 pass 5: count how many Identifier references
// touch each local slot across the body, then stamp that count onto every
// VariableDecl declaring that slot. Per the Open Question decision recorded
// in DESIGN.md, this only annotates UseCount (ast.Node.UseCount) - it does
// not perform the substitution a future inlining pass would need.
func (o *Optimizer) analyzeUsage(root ast.NodeID) {
	counts := map[int]int{}
	var decls []ast.NodeID

	o.arena.Walk(root, func(id ast.NodeID) {
		n := o.arena.Get(id)
		switch n.Kind {
		case ast.KindIdentifier:
			counts[n.Slot]++
		case ast.KindVariableDecl:
			decls = append(decls, id)
		}
	})

	for _, id := range decls {
		n := o.arena.Get(id)
		n.UseCount = counts[n.Slot]
	}
}
