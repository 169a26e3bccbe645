package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaInPlaceReplacePreservesID(t *testing.T) {
	a := NewArena()
	lhs := a.New(Node{Kind: KindLiteral, LiteralValue: int32(2), Type: Type{Kind: TypeInt}})
	rhs := a.New(Node{Kind: KindLiteral, LiteralValue: int32(3), Type: Type{Kind: TypeInt}})
	add := a.New(Node{Kind: KindBinaryOp, Op: "+", Lhs: lhs, Rhs: rhs, Type: Type{Kind: TypeInt}})

	var visited []Kind
	a.Walk(add, func(id NodeID) { visited = append(visited, a.Get(id).Kind) })
	require.Equal(t, []Kind{KindBinaryOp, KindLiteral, KindLiteral}, visited)

	// constant-fold in place: replace the BinaryOp node with a Literal,
	// keeping the same NodeID so any parent still pointing at `add` sees 5.
	a.Replace(add, Node{Kind: KindLiteral, LiteralValue: int32(5), Type: Type{Kind: TypeInt}})
	require.Equal(t, KindLiteral, a.Get(add).Kind)
	require.Equal(t, int32(5), a.Get(add).LiteralValue)
}

func TestArenaWalkBlockAndIf(t *testing.T) {
	a := NewArena()
	cond := a.New(Node{Kind: KindLiteral, LiteralValue: true, Type: Type{Kind: TypeBoolean}})
	thenBlk := a.New(Node{Kind: KindBlock})
	elseBlk := a.New(Node{Kind: KindBlock})
	ifNode := a.New(Node{Kind: KindIf, Lhs: cond, Then: thenBlk, Else: elseBlk})

	count := 0
	a.Walk(ifNode, func(NodeID) { count++ })
	require.Equal(t, 4, count)
}

func TestDumpJSONAST(t *testing.T) {
	a := NewArena()
	lit := a.New(Node{Kind: KindLiteral, LiteralValue: int32(1), Type: Type{Kind: TypeInt}})
	ret := a.New(Node{Kind: KindReturn, Lhs: lit})

	dump := a.Dump(ret)
	require.Equal(t, "Return", dump.Kind)
	require.NotNil(t, dump.Lhs)
	require.Equal(t, "Literal", dump.Lhs.Kind)
	require.Equal(t, int32(1), dump.Lhs.Value)
}

func TestNoNodeDumpIsNil(t *testing.T) {
	a := NewArena()
	require.Nil(t, a.Dump(NoNode))
}
