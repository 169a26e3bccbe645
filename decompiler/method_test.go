package decompiler

import (
	"testing"

	"jdec/ast"
	"jdec/bytecode"
	"jdec/classfile"
	"jdec/internal/jlog"

	"github.com/stretchr/testify/require"
)

func testClass() *classfile.Class {
	return &classfile.Class{
		ThisClass:    "Example",
		ConstantPool: classfile.NewConstantPool(nil),
	}
}

func TestDecompileMethodSimpleAdd(t *testing.T) {
	code := []byte{
		byte(bytecode.Iload0),
		byte(bytecode.Iload1),
		byte(bytecode.Iadd),
		byte(bytecode.Ireturn),
	}
	m := &classfile.Method{
		Name:       "add",
		Descriptor: "(II)I",
		Code:       &classfile.CodeAttribute{MaxLocals: 2, Bytecode: code},
	}

	d := New(jlog.Discard(), DefaultOptions())
	arena := ast.NewArena()
	var stats Stats
	node, diags := d.decompileMethod(arena, testClass(), m, &stats)

	require.Empty(t, diags)
	require.Equal(t, 1, stats.MethodsSucceeded)

	decl := arena.Get(node)
	require.Equal(t, ast.KindMethodDecl, decl.Kind)
	require.Equal(t, "add", decl.Name)
	require.Len(t, decl.Params, 2)
	require.Equal(t, ast.TypeInt, decl.Params[0].Type.Kind)
	require.Equal(t, ast.TypeInt, decl.Params[1].Type.Kind)
	require.Len(t, decl.Children, 1)
}

func TestDecompileMethodMalformedBytecodeDegrades(t *testing.T) {
	m := &classfile.Method{
		Name:       "broken",
		Descriptor: "()V",
		Code:       &classfile.CodeAttribute{MaxLocals: 0, Bytecode: []byte{0xFF}},
	}

	d := New(jlog.Discard(), DefaultOptions())
	arena := ast.NewArena()
	var stats Stats
	node, diags := d.decompileMethod(arena, testClass(), m, &stats)

	require.NotEmpty(t, diags)
	require.Equal(t, 1, stats.MethodsFailed)
	decl := arena.Get(node)
	require.Equal(t, ast.KindMethodDecl, decl.Kind)
	require.Empty(t, decl.Children)
}

func TestDecompileMethodAbstractIsSkipped(t *testing.T) {
	m := &classfile.Method{
		Name:        "stub",
		Descriptor:  "()V",
		AccessFlags: classfile.AccAbstract,
	}

	d := New(jlog.Discard(), DefaultOptions())
	arena := ast.NewArena()
	var stats Stats
	_, diags := d.decompileMethod(arena, testClass(), m, &stats)

	require.Empty(t, diags)
	require.Equal(t, 1, stats.MethodsSkipped)
}
