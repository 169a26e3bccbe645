package typeinfer

import (
	"testing"

	"jdec/ast"
	"jdec/bytecode"
	"jdec/cfg"

	"github.com/stretchr/testify/require"
)

func TestMergeWidensPrimitives(t *testing.T) {
	m := Merge(ast.Type{Kind: ast.TypeInt}, ast.Type{Kind: ast.TypeLong})
	require.Equal(t, ast.TypeLong, m.Kind)
}

func TestMergeUnrelatedReferencesApproximate(t *testing.T) {
	m := Merge(ast.Reference("java/lang/String"), ast.Reference("java/util/List"))
	require.Equal(t, ast.TypeReference, m.Kind)
	require.Equal(t, "java/lang/Object", m.ClassName)
}

func TestMergeUnknownIsIdentity(t *testing.T) {
	m := Merge(ast.Type{Kind: ast.TypeUnknown}, ast.Type{Kind: ast.TypeInt})
	require.Equal(t, ast.TypeInt, m.Kind)
}

func TestEngineTracksIstoreAcrossMerge(t *testing.T) {
	// if (local0) local1 = 1; else local1 = 2; return local1;
	code := []byte{
		byte(bytecode.Iload0),            // pc0
		byte(bytecode.Ifeq), 0x00, 0x08,  // pc1-3: target = 1+8 = 9
		byte(bytecode.Iconst1),           // pc4
		byte(bytecode.Istore1),           // pc5
		byte(bytecode.Goto), 0x00, 0x05,  // pc6-8: target = 6+5 = 11
		byte(bytecode.Iconst2),           // pc9
		byte(bytecode.Istore1),           // pc10
		byte(bytecode.Ireturn),           // pc11
	}
	insns, err := bytecode.NewParser(code).ParseAll()
	require.NoError(t, err)
	g, err := cfg.Build(insns, nil)
	require.NoError(t, err)

	eng := NewEngine(g, 2, []ast.Type{{Kind: ast.TypeInt}})
	eng.Run()

	exitBlock, ok := g.BlockAt(insns[len(insns)-1].PC)
	require.True(t, ok)
	env := eng.EntryEnv(exitBlock)
	require.NotNil(t, env)
	require.Equal(t, ast.TypeInt, env[1].Kind)
}
