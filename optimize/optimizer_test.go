package optimize

import (
	"testing"

	"jdec/ast"

	"github.com/stretchr/testify/require"
)

func lit(a *ast.Arena, v interface{}, t ast.Type) ast.NodeID {
	return a.New(ast.Node{Kind: ast.KindLiteral, LiteralValue: v, Type: t})
}

func TestFoldConstants(t *testing.T) {
	a := ast.NewArena()
	add := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "+",
		Lhs: lit(a, int32(1), ast.Type{Kind: ast.TypeInt}),
		Rhs: lit(a, int32(2), ast.Type{Kind: ast.TypeInt}),
		Type: ast.Type{Kind: ast.TypeInt},
	})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: add})
	block := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{ret}})

	o := New(a)
	o.Run(block)

	retNode := a.Get(ret)
	foldedNode := a.Get(retNode.Lhs)
	require.Equal(t, ast.KindLiteral, foldedNode.Kind)
	require.Equal(t, int32(3), foldedNode.LiteralValue)
}

func TestFoldDivisionByZeroLeftUnfolded(t *testing.T) {
	a := ast.NewArena()
	div := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "/",
		Lhs:  lit(a, int32(5), ast.Type{Kind: ast.TypeInt}),
		Rhs:  lit(a, int32(0), ast.Type{Kind: ast.TypeInt}),
		Type: ast.Type{Kind: ast.TypeInt},
	})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: div})

	o := New(a)
	o.Run(ret)

	divNode := a.Get(ret).Lhs
	require.Equal(t, ast.KindBinaryOp, a.Get(divNode).Kind)
	require.NotEmpty(t, o.Diagnostics)
}

func TestSimplifyAlgebra(t *testing.T) {
	a := ast.NewArena()
	ident := a.New(ast.Node{Kind: ast.KindIdentifier, Slot: 0, Type: ast.Type{Kind: ast.TypeInt}})
	addZero := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "+",
		Lhs:  ident,
		Rhs:  lit(a, int32(0), ast.Type{Kind: ast.TypeInt}),
		Type: ast.Type{Kind: ast.TypeInt},
	})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: addZero})

	o := New(a)
	o.Run(ret)

	folded := a.Get(a.Get(ret).Lhs)
	require.Equal(t, ast.KindIdentifier, folded.Kind)
	require.Equal(t, 0, folded.Slot)
}

func TestRemoveRedundantCast(t *testing.T) {
	a := ast.NewArena()
	intType := ast.Type{Kind: ast.TypeInt}
	ident := a.New(ast.Node{Kind: ast.KindIdentifier, Slot: 0, Type: intType})
	cast := a.New(ast.Node{Kind: ast.KindCast, Lhs: ident, Type: intType, TargetType: intType})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: cast})

	o := New(a)
	o.Run(ret)

	result := a.Get(a.Get(ret).Lhs)
	require.Equal(t, ast.KindIdentifier, result.Kind)
}

func TestDeadCodeEliminationDropsPureStatement(t *testing.T) {
	a := ast.NewArena()
	pureStmt := lit(a, int32(42), ast.Type{Kind: ast.TypeInt})
	ret := a.New(ast.Node{Kind: ast.KindReturn})
	block := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{pureStmt, ret}})

	o := New(a)
	o.Run(block)

	require.Equal(t, []ast.NodeID{ret}, a.Get(block).Children)
}

func TestDeadCodeEliminationCollapsesConstantIf(t *testing.T) {
	a := ast.NewArena()
	thenRet := a.New(ast.Node{Kind: ast.KindReturn, Lhs: lit(a, int32(1), ast.Type{Kind: ast.TypeInt})})
	elseRet := a.New(ast.Node{Kind: ast.KindReturn, Lhs: lit(a, int32(2), ast.Type{Kind: ast.TypeInt})})
	thenBlock := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{thenRet}})
	elseBlock := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{elseRet}})
	ifNode := a.New(ast.Node{
		Kind: ast.KindIf,
		Lhs:  lit(a, int32(1), ast.Type{Kind: ast.TypeBoolean}),
		Then: thenBlock,
		Else: elseBlock,
	})
	body := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{ifNode}})

	o := New(a)
	o.Run(body)

	collapsed := a.Get(ifNode)
	require.Equal(t, ast.KindBlock, collapsed.Kind)
	require.Equal(t, []ast.NodeID{thenRet}, collapsed.Children)
}

func TestVariableUsageAnalysis(t *testing.T) {
	a := ast.NewArena()
	decl := a.New(ast.Node{Kind: ast.KindVariableDecl, Slot: 1, Name: "x", Type: ast.Type{Kind: ast.TypeInt}})
	use1 := a.New(ast.Node{Kind: ast.KindIdentifier, Slot: 1, Type: ast.Type{Kind: ast.TypeInt}})
	use2 := a.New(ast.Node{Kind: ast.KindIdentifier, Slot: 1, Type: ast.Type{Kind: ast.TypeInt}})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "+", Lhs: use1, Rhs: use2, Type: ast.Type{Kind: ast.TypeInt},
	})})
	block := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{decl, ret}})

	o := New(a)
	o.Run(block)

	require.Equal(t, 2, a.Get(decl).UseCount)
}

func TestOptimizerIdempotence(t *testing.T) {
	a := ast.NewArena()
	add := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "+",
		Lhs:  lit(a, int32(1), ast.Type{Kind: ast.TypeInt}),
		Rhs:  lit(a, int32(2), ast.Type{Kind: ast.TypeInt}),
		Type: ast.Type{Kind: ast.TypeInt},
	})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: add})

	o := New(a)
	o.Run(ret)
	first := *a.Get(ret)
	o2 := New(a)
	rounds := o2.Run(ret)
	require.Equal(t, first, *a.Get(ret))
	require.LessOrEqual(t, rounds, 10)
}
