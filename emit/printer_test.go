package emit

import (
	"testing"

	"jdec/ast"

	"github.com/stretchr/testify/require"
)

func intLit(a *ast.Arena, v int32) ast.NodeID {
	return a.New(ast.Node{Kind: ast.KindLiteral, LiteralValue: v, Type: ast.Type{Kind: ast.TypeInt}})
}

func TestPrintIfElseSameLine(t *testing.T) {
	a := ast.NewArena()
	cond := a.New(ast.Node{Kind: ast.KindIdentifier, Name: "x", Type: ast.Type{Kind: ast.TypeBoolean}})
	thenRet := a.New(ast.Node{Kind: ast.KindReturn, Lhs: intLit(a, 1)})
	elseRet := a.New(ast.Node{Kind: ast.KindReturn, Lhs: intLit(a, 2)})
	thenBlock := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{thenRet}})
	elseBlock := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{elseRet}})
	ifNode := a.New(ast.Node{Kind: ast.KindIf, Lhs: cond, Then: thenBlock, Else: elseBlock})

	p := New(a, DefaultOptions(), Java)
	out := p.Print(ifNode)

	require.Contains(t, out, "if (x) {")
	require.Contains(t, out, "return 1;")
	require.Contains(t, out, "} else {")
	require.Contains(t, out, "return 2;")
}

func TestPrintWhileNextLineBrace(t *testing.T) {
	a := ast.NewArena()
	cond := a.New(ast.Node{Kind: ast.KindIdentifier, Name: "running", Type: ast.Type{Kind: ast.TypeBoolean}})
	body := a.New(ast.Node{Kind: ast.KindBlock, Children: []ast.NodeID{
		a.New(ast.Node{Kind: ast.KindReturn}),
	}})
	loop := a.New(ast.Node{Kind: ast.KindWhile, Lhs: cond, Then: body})

	opts := DefaultOptions()
	opts.BraceStyle = NextLine
	p := New(a, opts, Java)
	out := p.Print(loop)

	require.Contains(t, out, "while (running)\n{\n")
}

func TestPrintBinaryParenthesization(t *testing.T) {
	a := ast.NewArena()
	inner := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "+",
		Lhs: intLit(a, 1), Rhs: intLit(a, 2),
		Type: ast.Type{Kind: ast.TypeInt},
	})
	outer := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "*",
		Lhs: inner, Rhs: intLit(a, 3),
		Type: ast.Type{Kind: ast.TypeInt},
	})
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: outer})

	p := New(a, DefaultOptions(), Java)
	out := p.Print(ret)

	require.Contains(t, out, "return (1 + 2) * 3;")
}

func TestPrintForLoop(t *testing.T) {
	a := ast.NewArena()
	slot := 0
	init := a.New(ast.Node{
		Kind: ast.KindAssignment, Op: "=",
		Lhs: a.New(ast.Node{Kind: ast.KindIdentifier, Slot: slot, Type: ast.Type{Kind: ast.TypeInt}}),
		Rhs: intLit(a, 0),
	})
	cond := a.New(ast.Node{
		Kind: ast.KindBinaryOp, Op: "<",
		Lhs:  a.New(ast.Node{Kind: ast.KindIdentifier, Slot: slot, Type: ast.Type{Kind: ast.TypeInt}}),
		Rhs:  intLit(a, 10),
		Type: ast.Type{Kind: ast.TypeBoolean},
	})
	step := a.New(ast.Node{
		Kind: ast.KindAssignment, Op: "+=",
		Lhs: a.New(ast.Node{Kind: ast.KindIdentifier, Slot: slot, Type: ast.Type{Kind: ast.TypeInt}}),
		Rhs: intLit(a, 1),
	})
	body := a.New(ast.Node{Kind: ast.KindBlock})
	forNode := a.New(ast.Node{Kind: ast.KindFor, ForInit: init, Lhs: cond, ForStep: step, Then: body})

	p := New(a, DefaultOptions(), Java)
	out := p.Print(forNode)

	require.Contains(t, out, "for (local0 = 0; local0 < 10; local0 += 1) {")
}

func TestDumpJSON(t *testing.T) {
	a := ast.NewArena()
	ret := a.New(ast.Node{Kind: ast.KindReturn, Lhs: intLit(a, 42)})

	out, err := DumpJSON(a, ret)
	require.NoError(t, err)
	require.Contains(t, string(out), `"kind": "Return"`)
}
