package structure

import (
	"testing"

	"jdec/ast"
	"jdec/bytecode"
	"jdec/cfg"
	"jdec/classfile"
	"jdec/rebuild"

	"github.com/stretchr/testify/require"
)

func mustRebuild(t *testing.T, code []byte, maxLocals int, seed func(*rebuild.Rebuilder)) (*ast.Arena, *rebuild.Rebuilder, *cfg.CFG) {
	t.Helper()
	insns, err := bytecode.NewParser(code).ParseAll()
	require.NoError(t, err)
	g, err := cfg.Build(insns, nil)
	require.NoError(t, err)

	arena := ast.NewArena()
	r := rebuild.NewRebuilder(arena, classfile.NewConstantPool(nil), maxLocals)
	if seed != nil {
		seed(r)
	}
	require.NoError(t, r.RebuildMethod(g))
	return arena, r, g
}

func mustRebuildHandlers(t *testing.T, code []byte, maxLocals int, handlers []classfile.ExceptionTableEntry, seed func(*rebuild.Rebuilder)) (*ast.Arena, *rebuild.Rebuilder, *cfg.CFG) {
	t.Helper()
	insns, err := bytecode.NewParser(code).ParseAll()
	require.NoError(t, err)
	g, err := cfg.Build(insns, handlers)
	require.NoError(t, err)

	arena := ast.NewArena()
	r := rebuild.NewRebuilder(arena, classfile.NewConstantPool(nil), maxLocals)
	if seed != nil {
		seed(r)
	}
	require.NoError(t, r.RebuildMethod(g))
	return arena, r, g
}

func TestStructureIfThenElse(t *testing.T) {
	// if (x > 0) y = 2; else y = 1; return;
	code := []byte{
		byte(bytecode.Iload0),           // pc0
		byte(bytecode.Ifgt), 0x00, 0x08, // pc1-3: target = 1+8 = 9
		byte(bytecode.Iconst1),          // pc4
		byte(bytecode.Istore1),          // pc5
		byte(bytecode.Goto), 0x00, 0x05, // pc6-8: target = 6+5 = 11
		byte(bytecode.Iconst2), // pc9
		byte(bytecode.Istore1), // pc10
		byte(bytecode.Return),  // pc11
	}
	arena, r, g := mustRebuild(t, code, 2, func(r *rebuild.Rebuilder) {
		r.SeedParam(0, ast.Type{Kind: ast.TypeInt})
	})

	an := New(arena, g, classfile.NewConstantPool(nil), r.Statements, r.Conditions, r.SwitchSelectors)
	body := an.Structure()
	require.Len(t, body, 2)

	ifNode := arena.Get(body[0])
	require.Equal(t, ast.KindIf, ifNode.Kind)
	cond := arena.Get(ifNode.Lhs)
	require.Equal(t, ">", cond.Op)
	require.NotEqual(t, ast.NoNode, ifNode.Else)

	thenBlock := arena.Get(ifNode.Then)
	require.Len(t, thenBlock.Children, 1)
	elseBlock := arena.Get(ifNode.Else)
	require.Len(t, elseBlock.Children, 1)

	require.Equal(t, ast.KindReturn, arena.Get(body[1]).Kind)
}

func TestStructureForLoopRecognition(t *testing.T) {
	// for (; x > 0; x--) { } return;  (goto-guarded top-tested loop whose
	// body is exactly the decrement the condition tests)
	code := []byte{
		byte(bytecode.Goto), 0x00, 0x06, // pc0-2: goto COND (pc6)
		byte(bytecode.Iinc), 0x00, 0xFF, // pc3-5: iinc slot0,-1
		byte(bytecode.Iload0),            // pc6
		byte(bytecode.Ifgt), 0xFF, 0xFC, // pc7-9: target = 7-4 = 3
		byte(bytecode.Return), // pc10
	}
	arena, r, g := mustRebuild(t, code, 1, func(r *rebuild.Rebuilder) {
		r.SeedParam(0, ast.Type{Kind: ast.TypeInt})
	})

	an := New(arena, g, classfile.NewConstantPool(nil), r.Statements, r.Conditions, r.SwitchSelectors)
	body := an.Structure()
	require.Len(t, body, 2)

	loopNode := arena.Get(body[0])
	require.Equal(t, ast.KindFor, loopNode.Kind)
	cond := arena.Get(loopNode.Lhs)
	require.Equal(t, ">", cond.Op)
	step := arena.Get(loopNode.ForStep)
	require.Equal(t, ast.KindAssignment, step.Kind)
	require.Equal(t, "-=", step.Op)

	ret := arena.Get(body[1])
	require.Equal(t, ast.KindReturn, ret.Kind)
}

func TestStructureDoWhile(t *testing.T) {
	// do { x--; } while (x > 0); return x;
	code := []byte{
		byte(bytecode.Iinc), 0x00, 0xFF, // pc0-2: x--
		byte(bytecode.Iload0),            // pc3
		byte(bytecode.Ifgt), 0xFF, 0xFC, // pc4-6: target = 4-4 = 0
		byte(bytecode.Iload0),  // pc7
		byte(bytecode.Ireturn), // pc8
	}
	arena, r, g := mustRebuild(t, code, 1, func(r *rebuild.Rebuilder) {
		r.SeedParam(0, ast.Type{Kind: ast.TypeInt})
	})

	an := New(arena, g, classfile.NewConstantPool(nil), r.Statements, r.Conditions, r.SwitchSelectors)
	body := an.Structure()
	require.Len(t, body, 2)

	loopNode := arena.Get(body[0])
	require.Equal(t, ast.KindDoWhile, loopNode.Kind)
	cond := arena.Get(loopNode.Lhs)
	require.Equal(t, ">", cond.Op)
	loopBody := arena.Get(loopNode.Then)
	require.Len(t, loopBody.Children, 1)
}

func TestStructureSwitch(t *testing.T) {
	// switch (x) { case 1: a=10; break; case 2: a=20; break; default: a=0; }
	// return a;
	code := []byte{
		byte(bytecode.Iload0), // pc0: x
		byte(bytecode.TableSwitch), 0x00, 0x00, // pc1-3: opcode + 2 pad bytes
		0x00, 0x00, 0x00, 0x23, // pc4-7: default = 1+35 = 36
		0x00, 0x00, 0x00, 0x01, // pc8-11: low = 1
		0x00, 0x00, 0x00, 0x02, // pc12-15: high = 2
		0x00, 0x00, 0x00, 0x17, // pc16-19: target(1) = 1+23 = 24
		0x00, 0x00, 0x00, 0x1D, // pc20-23: target(2) = 1+29 = 30
		byte(bytecode.Bipush), 10, // pc24-25
		byte(bytecode.Istore1),          // pc26
		byte(bytecode.Goto), 0x00, 0x0C, // pc27-29: target = 27+12 = 39
		byte(bytecode.Bipush), 20, // pc30-31
		byte(bytecode.Istore1),          // pc32
		byte(bytecode.Goto), 0x00, 0x06, // pc33-35: target = 33+6 = 39
		byte(bytecode.Bipush), 0, // pc36-37
		byte(bytecode.Istore1),  // pc38
		byte(bytecode.Iload1),   // pc39
		byte(bytecode.Ireturn),  // pc40
	}
	arena, r, g := mustRebuild(t, code, 2, func(r *rebuild.Rebuilder) {
		r.SeedParam(0, ast.Type{Kind: ast.TypeInt})
	})

	an := New(arena, g, classfile.NewConstantPool(nil), r.Statements, r.Conditions, r.SwitchSelectors)
	body := an.Structure()
	require.Len(t, body, 2)

	sw := arena.Get(body[0])
	require.Equal(t, ast.KindSwitch, sw.Kind)
	require.Len(t, sw.Children, 3)

	var sawDefault bool
	for _, c := range sw.Children {
		cn := arena.Get(c)
		require.Equal(t, ast.KindSwitchCase, cn.Kind)
		if len(cn.CaseValues) == 0 {
			sawDefault = true
		}
	}
	require.True(t, sawDefault)

	ret := arena.Get(body[1])
	require.Equal(t, ast.KindReturn, ret.Kind)
}

func TestStructureTryCatch(t *testing.T) {
	// try { x = 2; } catch (Exception e) { x = 1; } return x;
	code := []byte{
		byte(bytecode.Iconst2), // pc0: try body
		byte(bytecode.Istore1), // pc1
		byte(bytecode.Goto), 0x00, 0x06, // pc2-4: target = 2+6 = 8 (skip handler)
		byte(bytecode.Astore2), // pc5: handler entry, e = exception
		byte(bytecode.Iconst1), // pc6: catch body
		byte(bytecode.Istore1), // pc7
		byte(bytecode.Iload1),  // pc8: after
		byte(bytecode.Ireturn), // pc9
	}
	handlers := []classfile.ExceptionTableEntry{
		{StartPC: 0, EndPC: 5, HandlerPC: 5, CatchType: 0},
	}
	arena, r, g := mustRebuildHandlers(t, code, 3, handlers, func(r *rebuild.Rebuilder) {
		r.SeedParam(0, ast.Type{Kind: ast.TypeInt})
	})

	an := New(arena, g, classfile.NewConstantPool(nil), r.Statements, r.Conditions, r.SwitchSelectors)
	body := an.Structure()
	require.Len(t, body, 2)

	tc := arena.Get(body[0])
	require.Equal(t, ast.KindTryCatch, tc.Kind)
	require.Equal(t, ast.NoNode, tc.Finally)
	require.Len(t, tc.Children, 1)

	tryBlock := arena.Get(tc.Then)
	require.Len(t, tryBlock.Children, 1)

	clause := arena.Get(tc.Children[0])
	require.Equal(t, ast.KindCatchClause, clause.Kind)
	require.Equal(t, []string{"java/lang/Throwable"}, clause.CatchTypes)
	require.Equal(t, 2, clause.CatchSlot)
	catchBody := arena.Get(clause.CatchBody)
	require.Len(t, catchBody.Children, 1)

	ret := arena.Get(body[1])
	require.Equal(t, ast.KindReturn, ret.Kind)
}
