package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAllSimpleArithmetic(t *testing.T) {
	// iconst_2, iconst_3, iadd, ireturn
	code := []byte{byte(Iconst2), byte(Iconst3), byte(Iadd), byte(Ireturn)}
	p := NewParser(code)
	insns, err := p.ParseAll()
	require.NoError(t, err)
	require.Len(t, insns, 4)
	require.Equal(t, Iconst2, insns[0].Opcode)
	require.Equal(t, 0, insns[0].PC)
	require.Equal(t, Ireturn, insns[3].Opcode)
	require.Equal(t, 3, insns[3].PC)
}

func TestParseBipushAndBranch(t *testing.T) {
	// bipush 10, ifeq +7 (to pc=2+7=9... just check decoding, not semantics)
	code := []byte{byte(Bipush), 10, byte(Ifeq), 0x00, 0x07, byte(Nop), byte(Nop), byte(Nop), byte(Nop), byte(Return)}
	p := NewParser(code)
	insns, err := p.ParseAll()
	require.NoError(t, err)
	require.Equal(t, Bipush, insns[0].Opcode)
	require.Equal(t, 10, insns[0].S8Operand(0))
	require.Equal(t, Ifeq, insns[1].Opcode)
	require.Equal(t, 2+7, insns[1].BranchTarget())
}

func TestParseUnknownOpcode(t *testing.T) {
	code := []byte{0xFE}
	_, err := NewParser(code).ParseAll()
	require.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestParseTruncatedInstruction(t *testing.T) {
	code := []byte{byte(Sipush), 0x00} // needs 2 operand bytes, only 1 present
	_, err := NewParser(code).ParseAll()
	require.ErrorIs(t, err, ErrTruncatedInstruction)
}

func TestParseTableSwitchAlignment(t *testing.T) {
	// tableswitch at pc=1 (so padding = (4-((1+1)%4))%4 = 2)
	code := []byte{byte(Nop), byte(TableSwitch),
		0x00, 0x00, // 2 padding bytes
		0x00, 0x00, 0x00, 0x14, // default = +20
		0x00, 0x00, 0x00, 0x00, // low = 0
		0x00, 0x00, 0x00, 0x01, // high = 1
		0x00, 0x00, 0x00, 0x10, // target[0] = +16
		0x00, 0x00, 0x00, 0x11, // target[1] = +17
	}
	insns, err := NewParser(code).ParseAll()
	require.NoError(t, err)
	require.Len(t, insns, 2)
	sw := insns[1].Switch
	require.NotNil(t, sw)
	require.Equal(t, 1+20, sw.Default)
	require.Equal(t, 0, sw.Low)
	require.Equal(t, 1, sw.High)
	require.Equal(t, []int{1 + 16, 1 + 17}, sw.Targets)
}

func TestParseTableSwitchBadRange(t *testing.T) {
	code := []byte{byte(TableSwitch),
		0x00, 0x00, 0x00, // padding = (4-((0+1)%4))%4 = 3
		0x00, 0x00, 0x00, 0x00, // default
		0x00, 0x00, 0x00, 0x05, // low = 5
		0x00, 0x00, 0x00, 0x01, // high = 1 (< low-1)
	}
	_, err := NewParser(code).ParseAll()
	require.ErrorIs(t, err, ErrMalformedSwitch)
}

func TestParseLookupSwitch(t *testing.T) {
	code := []byte{byte(LookupSwitch),
		0x00, 0x00, 0x00, // padding
		0x00, 0x00, 0x00, 0x0A, // default = +10
		0x00, 0x00, 0x00, 0x02, // npairs = 2
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x0B, // match=1 target=+11
		0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x0C, // match=2 target=+12
	}
	insns, err := NewParser(code).ParseAll()
	require.NoError(t, err)
	sw := insns[0].Switch
	require.Len(t, sw.Pairs, 2)
	require.Equal(t, int32(1), sw.Pairs[0].Match)
	require.Equal(t, 11, sw.Pairs[0].Target)
}

func TestParseWideIinc(t *testing.T) {
	code := []byte{byte(Wide), byte(Iinc), 0x01, 0x00, 0xFF, 0xFF}
	insns, err := NewParser(code).ParseAll()
	require.NoError(t, err)
	require.Len(t, insns, 1)
	require.Equal(t, Wide, insns[0].Opcode)
	require.Equal(t, Iinc, insns[0].Wide.Modified)
	require.Equal(t, 0x0100, insns[0].Wide.Index)
	require.Equal(t, int16(-1), insns[0].Wide.Const)
	require.Equal(t, 6, insns[0].Length)
}

func TestParseWideLoad(t *testing.T) {
	code := []byte{byte(Wide), byte(Iload), 0x01, 0x02}
	insns, err := NewParser(code).ParseAll()
	require.NoError(t, err)
	require.Equal(t, Iload, insns[0].Wide.Modified)
	require.Equal(t, 0x0102, insns[0].Wide.Index)
	require.Equal(t, 4, insns[0].Length)
}

func TestMethodDescriptorParsing(t *testing.T) {
	md, err := ParseMethodDescriptor("(ILjava/lang/String;[I)V")
	require.NoError(t, err)
	require.True(t, md.IsVoid)
	require.Len(t, md.Params, 3)
	require.Equal(t, "I", md.Params[0].Kind)
	require.Equal(t, "L", md.Params[1].Kind)
	require.Equal(t, "java/lang/String", md.Params[1].ClassName)
	require.Equal(t, "[", md.Params[2].Kind)
	require.Equal(t, "int", md.Params[2].ElementType.String())
}

func TestMethodDescriptorArityCountsWideParams(t *testing.T) {
	md, err := ParseMethodDescriptor("(JD)I")
	require.NoError(t, err)
	require.Equal(t, 4, md.Arity())
	require.False(t, md.IsVoid)
	require.Equal(t, "I", md.Return.Kind)
}

func TestFieldDescriptorMalformed(t *testing.T) {
	_, err := ParseFieldDescriptor("Ljava/lang/String")
	require.ErrorIs(t, err, ErrMalformedDescriptor)

	_, err = ParseFieldDescriptor("Q")
	require.ErrorIs(t, err, ErrMalformedDescriptor)
}
