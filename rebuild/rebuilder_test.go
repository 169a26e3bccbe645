package rebuild

import (
	"testing"

	"jdec/ast"
	"jdec/bytecode"
	"jdec/cfg"
	"jdec/classfile"

	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, code []byte) ([]bytecode.Instruction, *cfg.CFG) {
	t.Helper()
	insns, err := bytecode.NewParser(code).ParseAll()
	require.NoError(t, err)
	g, err := cfg.Build(insns, nil)
	require.NoError(t, err)
	return insns, g
}

func TestBinaryArithmeticSynthesis(t *testing.T) {
	code := []byte{
		byte(bytecode.Iconst2), // pc0
		byte(bytecode.Iconst3), // pc1
		byte(bytecode.Iadd),    // pc2
		byte(bytecode.Istore0), // pc3
		byte(bytecode.Return),  // pc4
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, classfile.NewConstantPool(nil), 1)
	require.NoError(t, r.RebuildMethod(g))

	stmts := r.Statements[g.EntryID]
	require.Len(t, stmts, 2) // declare i0, return

	decl := arena.Get(stmts[0])
	require.Equal(t, ast.KindVariableDecl, decl.Kind)
	sum := arena.Get(decl.Rhs)
	require.Equal(t, ast.KindBinaryOp, sum.Kind)
	require.Equal(t, "+", sum.Op)
	require.Equal(t, int32(2), arena.Get(sum.Lhs).LiteralValue)
	require.Equal(t, int32(3), arena.Get(sum.Rhs).LiteralValue)
}

func TestLocalDeclareThenLoadReusesIdentifier(t *testing.T) {
	code := []byte{
		byte(bytecode.Iconst1), // pc0
		byte(bytecode.Istore0), // pc1
		byte(bytecode.Iload0),  // pc2
		byte(bytecode.Ireturn), // pc3
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, classfile.NewConstantPool(nil), 1)
	require.NoError(t, r.RebuildMethod(g))

	stmts := r.Statements[g.EntryID]
	require.Len(t, stmts, 2) // declare i0, return i0

	decl := arena.Get(stmts[0])
	require.Equal(t, ast.KindVariableDecl, decl.Kind)

	ret := arena.Get(stmts[1])
	require.Equal(t, ast.KindReturn, ret.Kind)
	loaded := arena.Get(ret.Lhs)
	require.Equal(t, ast.KindIdentifier, loaded.Kind)
	require.Equal(t, decl.Name, loaded.Name)
	require.Equal(t, 1, decl.UseCount)
}

func TestArrayAccessSynthesis(t *testing.T) {
	code := []byte{
		byte(bytecode.Aload0),  // pc0: array ref
		byte(bytecode.Iconst0), // pc1: index
		byte(bytecode.Iaload),  // pc2
		byte(bytecode.Ireturn), // pc3
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, classfile.NewConstantPool(nil), 1)
	r.SeedParam(0, ast.ArrayOf(tInt))
	require.NoError(t, r.RebuildMethod(g))

	stmts := r.Statements[g.EntryID]
	require.Len(t, stmts, 1) // return only; aload/iconst/iaload are pure stack ops

	ret := arena.Get(stmts[0])
	access := arena.Get(ret.Lhs)
	require.Equal(t, ast.KindArrayAccess, access.Kind)
	require.Equal(t, ast.TypeInt, access.Type.Kind)
	index := arena.Get(access.Rhs)
	require.Equal(t, int32(0), index.LiteralValue)
}

func TestIfElseConditionSynthesis(t *testing.T) {
	// if (x > 0) { y = 2; } else { y = 1; }
	code := []byte{
		byte(bytecode.Iload0),            // pc0: x
		byte(bytecode.Ifgt), 0x00, 0x08,   // pc1-3: target = 1+8 = 9
		byte(bytecode.Iconst1),           // pc4
		byte(bytecode.Istore1),           // pc5
		byte(bytecode.Goto), 0x00, 0x05,  // pc6-8: target = 6+5 = 11
		byte(bytecode.Iconst2),           // pc9
		byte(bytecode.Istore1),           // pc10
		byte(bytecode.Return),            // pc11
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, classfile.NewConstantPool(nil), 2)
	r.SeedParam(0, tInt)
	require.NoError(t, r.RebuildMethod(g))

	condID, ok := r.Conditions[1]
	require.True(t, ok)
	cond := arena.Get(condID)
	require.Equal(t, ast.KindBinaryOp, cond.Kind)
	require.Equal(t, ">", cond.Op)
	lhs := arena.Get(cond.Lhs)
	require.Equal(t, ast.KindIdentifier, lhs.Kind)
	rhs := arena.Get(cond.Rhs)
	require.Equal(t, int32(0), rhs.LiteralValue)
}

func methodRefPool(t *testing.T, className, methodName, descriptor string) *classfile.ConstantPool {
	t.Helper()
	entries := []classfile.Entry{
		{}, // 0: reserved
		{Tag: classfile.TagUtf8, UTF8: className},              // 1
		{Tag: classfile.TagClass, NameIndex: 1},                // 2
		{Tag: classfile.TagUtf8, UTF8: methodName},              // 3
		{Tag: classfile.TagUtf8, UTF8: descriptor},              // 4
		{Tag: classfile.TagNameAndType, NameIndex: 3, DescriptorIndex: 4}, // 5
		{Tag: classfile.TagMethodRef, ClassIndex: 2, NameAndTypeIndex: 5}, // 6
	}
	return classfile.NewConstantPool(entries)
}

func TestConstructorCallPattern(t *testing.T) {
	pool := methodRefPool(t, "Foo", "<init>", "()V")
	code := []byte{
		byte(bytecode.New), 0x00, 0x02,       // pc0-2: new #2 (Foo)
		byte(bytecode.Dup),                   // pc3
		byte(bytecode.InvokeSpecial), 0x00, 0x06, // pc4-6: invokespecial #6 (<init>)
		byte(bytecode.Astore0),               // pc7
		byte(bytecode.Return),                // pc8
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, pool, 1)
	require.NoError(t, r.RebuildMethod(g))

	stmts := r.Statements[g.EntryID]
	require.Len(t, stmts, 2) // declare local0 = new Foo(), return

	decl := arena.Get(stmts[0])
	require.Equal(t, ast.KindVariableDecl, decl.Kind)
	ctor := arena.Get(decl.Rhs)
	require.Equal(t, ast.KindObjectNew, ctor.Kind)
	require.True(t, ctor.IsConstructor)
	require.Equal(t, "Foo", ctor.TargetType.ClassName)
	require.Empty(t, ctor.Children)
}

func TestMethodCallAsStatementAndAsExpression(t *testing.T) {
	entries := []classfile.Entry{
		{}, // 0
		{Tag: classfile.TagUtf8, UTF8: "Helper"},                           // 1
		{Tag: classfile.TagClass, NameIndex: 1},                            // 2
		{Tag: classfile.TagUtf8, UTF8: "log"},                              // 3
		{Tag: classfile.TagUtf8, UTF8: "()V"},                              // 4
		{Tag: classfile.TagNameAndType, NameIndex: 3, DescriptorIndex: 4},  // 5
		{Tag: classfile.TagMethodRef, ClassIndex: 2, NameAndTypeIndex: 5},  // 6
		{Tag: classfile.TagUtf8, UTF8: "compute"},                          // 7
		{Tag: classfile.TagUtf8, UTF8: "()I"},                              // 8
		{Tag: classfile.TagNameAndType, NameIndex: 7, DescriptorIndex: 8},  // 9
		{Tag: classfile.TagMethodRef, ClassIndex: 2, NameAndTypeIndex: 9},  // 10
	}
	pool := classfile.NewConstantPool(entries)

	code := []byte{
		byte(bytecode.InvokeStatic), 0x00, 0x06,  // pc0-2: Helper.log()
		byte(bytecode.InvokeStatic), 0x00, 0x0A,  // pc3-5: Helper.compute()
		byte(bytecode.Istore0),                   // pc6
		byte(bytecode.Return),                    // pc7
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, pool, 1)
	require.NoError(t, r.RebuildMethod(g))

	stmts := r.Statements[g.EntryID]
	require.Len(t, stmts, 3) // log() as statement, declare i0 = compute(), return

	logCall := arena.Get(stmts[0])
	require.Equal(t, ast.KindMethodCall, logCall.Kind)
	require.Equal(t, "log", logCall.MethodName)

	decl := arena.Get(stmts[1])
	require.Equal(t, ast.KindVariableDecl, decl.Kind)
	computeCall := arena.Get(decl.Rhs)
	require.Equal(t, ast.KindMethodCall, computeCall.Kind)
	require.Equal(t, "compute", computeCall.MethodName)
}

func TestTernaryAsValueSynthesizesMergeTemp(t *testing.T) {
	// int r = cond ? 1 : 2;  -  the classic stack-value-across-merge shape:
	// push cond; ifeq Lelse; <push A>; goto Lend; Lelse: <push B>; Lend: <use>
	code := []byte{
		byte(bytecode.Iload0),          // pc0: cond
		byte(bytecode.Ifeq), 0x00, 0x07, // pc1-3: target = 1+7 = 8 (Lelse)
		byte(bytecode.Iconst1),          // pc4: push A
		byte(bytecode.Goto), 0x00, 0x04, // pc5-7: target = 5+4 = 9 (Lend)
		byte(bytecode.Iconst2), // pc8: Lelse, push B
		byte(bytecode.Istore1), // pc9: Lend, use
		byte(bytecode.Return),  // pc10
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, classfile.NewConstantPool(nil), 2)
	r.SeedParam(0, tInt)
	require.NoError(t, r.RebuildMethod(g))

	thenID, ok := g.BlockAt(4)
	require.True(t, ok)
	elseID, ok := g.BlockAt(8)
	require.True(t, ok)
	mergeID, ok := g.BlockAt(9)
	require.True(t, ok)

	entryDecls := r.Statements[g.EntryID]
	require.Len(t, entryDecls, 1) // merge-temp declaration, at the dominator
	tempDecl := arena.Get(entryDecls[0])
	require.Equal(t, ast.KindVariableDecl, tempDecl.Kind)
	require.Equal(t, ast.NoNode, tempDecl.Rhs)
	require.Less(t, tempDecl.Slot, 0) // negative: never a real local

	thenStmts := r.Statements[thenID]
	require.Len(t, thenStmts, 1)
	thenAssign := arena.Get(thenStmts[0])
	require.Equal(t, ast.KindAssignment, thenAssign.Kind)
	require.Equal(t, tempDecl.Slot, arena.Get(thenAssign.Lhs).Slot)
	require.Equal(t, int32(1), arena.Get(thenAssign.Rhs).LiteralValue)

	elseStmts := r.Statements[elseID]
	require.Len(t, elseStmts, 1)
	elseAssign := arena.Get(elseStmts[0])
	require.Equal(t, ast.KindAssignment, elseAssign.Kind)
	require.Equal(t, tempDecl.Slot, arena.Get(elseAssign.Lhs).Slot)
	require.Equal(t, int32(2), arena.Get(elseAssign.Rhs).LiteralValue)

	mergeStmts := r.Statements[mergeID]
	require.Len(t, mergeStmts, 2) // declares local1 from the merge temp, not from A or B directly, then return
	mergeDecl := arena.Get(mergeStmts[0])
	require.Equal(t, ast.KindVariableDecl, mergeDecl.Kind)
	mergeRhs := arena.Get(mergeDecl.Rhs)
	require.Equal(t, ast.KindIdentifier, mergeRhs.Kind)
	require.Equal(t, tempDecl.Slot, mergeRhs.Slot)
}

func TestDivergentStackHeightReturnsErrStackMerge(t *testing.T) {
	// An irreducible/malformed shape where one predecessor of the merge
	// block leaves one more value on the stack than the other - not
	// producible by a real compiler, but the rebuilder must refuse to guess
	// rather than interpret the merge block against the wrong height.
	code := []byte{
		byte(bytecode.Iload0),          // pc0: cond
		byte(bytecode.Ifeq), 0x00, 0x08, // pc1-3: target = 1+8 = 9 (Lelse)
		byte(bytecode.Iconst1),          // pc4: push A (height 1)
		byte(bytecode.Iconst1),          // pc5: push a second value (height 2)
		byte(bytecode.Goto), 0x00, 0x04, // pc6-8: target = 6+4 = 10 (Lend)
		byte(bytecode.Iconst2), // pc9: Lelse, push B (height 1)
		byte(bytecode.Return),  // pc10: Lend
	}
	_, g := mustBuild(t, code)

	arena := ast.NewArena()
	r := NewRebuilder(arena, classfile.NewConstantPool(nil), 1)
	r.SeedParam(0, tInt)
	err := r.RebuildMethod(g)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStackMerge)
}
