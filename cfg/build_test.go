package cfg

import (
	"testing"

	"jdec/bytecode"
	"jdec/classfile"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, code []byte) []bytecode.Instruction {
	t.Helper()
	insns, err := bytecode.NewParser(code).ParseAll()
	require.NoError(t, err)
	return insns
}

func TestBuildIfThenElse(t *testing.T) {
	// 0: iload_0
	// 1: ifeq -> 8 (else branch)
	// 4: iconst_1
	// 5: goto -> 9
	// 8: iconst_0
	// 9: ireturn
	code := []byte{
		byte(bytecode.Iload0), // pc 0
		byte(bytecode.Ifeq), 0x00, 0x07, // pc 1, target = 1+7=8
		byte(bytecode.Iconst1), // pc 4
		byte(bytecode.Goto), 0x00, 0x04, // pc 5, target = 5+4=9
		byte(bytecode.Iconst0), // pc 8
		byte(bytecode.Ireturn), // pc 9
	}
	insns := mustParse(t, code)
	g, err := Build(insns, nil)
	require.NoError(t, err)

	require.Equal(t, BlockID(0), g.EntryID)
	entry := g.Blocks[g.EntryID]
	require.Equal(t, KindBranch, entry.Kind)
	require.Len(t, entry.Successors, 2)

	exitBlock, ok := g.BlockAt(9)
	require.True(t, ok)
	require.Equal(t, KindExit, g.Blocks[exitBlock].Kind)
	require.Contains(t, g.Blocks[exitBlock].Predecessors, entry.Successors[0])
}

func TestBuildWhileLoopBackEdge(t *testing.T) {
	// pc0-2: goto pc6           (jump to the condition check)
	// pc3-5: iinc 0, 1          (loop body)
	// pc6:   iload_0            (condition check)
	// pc7-9: ifne -> pc3        (back edge)
	// pc10:  return
	var code []byte
	add := func(b ...byte) { code = append(code, b...) }
	add(byte(bytecode.Goto), 0x00, 0x06) // offset 6: pc0+6=6
	add(byte(bytecode.Iinc), 0x00, 0x01)
	add(byte(bytecode.Iload0))
	add(byte(bytecode.Ifne), 0xFF, 0xFC) // offset -4: pc7-4=3
	add(byte(bytecode.Return))

	insns := mustParse(t, code)
	g, err := Build(insns, nil)
	require.NoError(t, err)

	// block@3 (body) falls through to block@6 (condition check); block@6
	// dominates block@3 (its only predecessor), so block@3 -> block@6 is the
	// back edge and block@6 is the loop header.
	headerBlock, ok := g.BlockAt(6)
	require.True(t, ok)
	require.True(t, g.Blocks[headerBlock].IsLoopHeader)
	bodyBlock, ok := g.BlockAt(3)
	require.True(t, ok)
	require.Contains(t, g.Blocks[headerBlock].LoopBody, bodyBlock)
}

func TestBuildHandlerEdges(t *testing.T) {
	code := []byte{
		byte(bytecode.Nop),    // pc0 (try region)
		byte(bytecode.Return), // pc1
		byte(bytecode.Nop),    // pc2 (handler)
		byte(bytecode.Return), // pc3
	}
	handlers := []classfile.ExceptionTableEntry{
		{StartPC: 0, EndPC: 1, HandlerPC: 2, CatchType: 0},
	}
	insns := mustParse(t, code)
	g, err := Build(insns, handlers)
	require.NoError(t, err)

	tryBlock, ok := g.BlockAt(0)
	require.True(t, ok)
	handlerBlock, ok := g.BlockAt(2)
	require.True(t, ok)
	require.Contains(t, g.Blocks[tryBlock].Handlers, handlerBlock)
}

func TestBuildEmptyMethodFails(t *testing.T) {
	_, err := Build(nil, nil)
	require.ErrorIs(t, err, ErrEmptyMethod)
}
