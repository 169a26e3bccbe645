package bytecode

import "github.com/pkg/errors"

// Parser decodes a method's raw Code bytes into a linear instruction stream.
//
// Grounded on gvm/vm/compile.go's CompileSourceFromBuffer linear scan over
// its own instruction stream (there: label resolution over a token list;
// here: opcode-width-driven scan over a raw byte array), and on the opcode
// table's own NumRequiredOpArgs/NumOptionalOpArgs split for the variable
// length forms.
type Parser struct {
	code []byte
}

// NewParser wraps a method's raw Code attribute bytes for linear decoding.
func NewParser(code []byte) *Parser {
	return &Parser{code: code}
}

// ParseAll decodes every instruction in the method body. A single malformed
// instruction aborts the whole method (the caller turns this into a
// Diagnostic and skips the method, per the container-vs-method error split);
// it never silently skips bytes.
func (p *Parser) ParseAll() ([]Instruction, error) {
	var out []Instruction
	pc := 0
	for pc < len(p.code) {
		insn, err := p.parseOne(pc)
		if err != nil {
			return nil, errors.Wrapf(err, "at pc=%d", pc)
		}
		out = append(out, insn)
		pc = insn.NextPC()
	}
	return out, nil
}

func (p *Parser) byteAt(pc int) (byte, error) {
	if pc < 0 || pc >= len(p.code) {
		return 0, errors.Wrapf(ErrTruncatedInstruction, "offset %d out of bounds (len %d)", pc, len(p.code))
	}
	return p.code[pc], nil
}

func (p *Parser) slice(start, n int) ([]byte, error) {
	if start < 0 || n < 0 || start+n > len(p.code) {
		return nil, errors.Wrapf(ErrTruncatedInstruction, "need [%d:%d), have %d bytes", start, start+n, len(p.code))
	}
	return p.code[start : start+n], nil
}

func (p *Parser) parseOne(pc int) (Instruction, error) {
	opByte, err := p.byteAt(pc)
	if err != nil {
		return Instruction{}, err
	}
	op := Opcode(opByte)

	switch op {
	case TableSwitch, LookupSwitch:
		return p.parseSwitch(op, pc)
	case Wide:
		return p.parseWide(pc)
	}

	width, known := op.FixedWidth()
	if !known {
		return Instruction{}, errors.Wrapf(ErrUnknownOpcode, "0x%02X", opByte)
	}
	operands, err := p.slice(pc+1, width)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Opcode: op, PC: pc, Length: 1 + width, Operands: operands}, nil
}

// parseSwitch decodes tableswitch/lookupswitch including the alignment
// padding rule from §4.2: padding is (4 - ((pc+1) mod 4)) mod 4 zero bytes
// immediately after the opcode, bringing the default-offset field onto a
// 4-byte boundary measured from the start of the method.
func (p *Parser) parseSwitch(op Opcode, pc int) (Instruction, error) {
	padding := (4 - ((pc + 1) % 4)) % 4
	cursor := pc + 1
	padBytes, err := p.slice(cursor, padding)
	if err != nil {
		return Instruction{}, err
	}
	for _, b := range padBytes {
		if b != 0 {
			return Instruction{}, errors.Wrapf(ErrUnalignedSwitchPadding, "pc=%d", pc)
		}
	}
	cursor += padding

	defBytes, err := p.slice(cursor, 4)
	if err != nil {
		return Instruction{}, err
	}
	defaultOffset := be32(defBytes)
	cursor += 4

	payload := &SwitchPayload{Default: pc + defaultOffset}

	if op == TableSwitch {
		lowBytes, err := p.slice(cursor, 4)
		if err != nil {
			return Instruction{}, err
		}
		low := be32(lowBytes)
		cursor += 4
		highBytes, err := p.slice(cursor, 4)
		if err != nil {
			return Instruction{}, err
		}
		high := be32(highBytes)
		cursor += 4
		if high < low-1 {
			return Instruction{}, errors.Wrapf(ErrMalformedSwitch, "tableswitch high(%d) < low(%d)-1 at pc=%d", high, low, pc)
		}
		payload.Low, payload.High = low, high
		n := 0
		if high >= low {
			n = high - low + 1
		}
		payload.Targets = make([]int, 0, n)
		for i := 0; i < n; i++ {
			tb, err := p.slice(cursor, 4)
			if err != nil {
				return Instruction{}, err
			}
			payload.Targets = append(payload.Targets, pc+be32(tb))
			cursor += 4
		}
	} else {
		npairsBytes, err := p.slice(cursor, 4)
		if err != nil {
			return Instruction{}, err
		}
		npairs := be32(npairsBytes)
		cursor += 4
		if npairs < 0 {
			return Instruction{}, errors.Wrapf(ErrMalformedSwitch, "lookupswitch npairs=%d at pc=%d", npairs, pc)
		}
		payload.Pairs = make([]SwitchPair, 0, npairs)
		for i := 0; i < npairs; i++ {
			mb, err := p.slice(cursor, 4)
			if err != nil {
				return Instruction{}, err
			}
			match := int32(be32(mb))
			cursor += 4
			tb, err := p.slice(cursor, 4)
			if err != nil {
				return Instruction{}, err
			}
			target := pc + be32(tb)
			cursor += 4
			payload.Pairs = append(payload.Pairs, SwitchPair{Match: match, Target: target})
		}
	}

	return Instruction{
		Opcode: op,
		PC:     pc,
		Length: cursor - pc,
		Switch: payload,
	}, nil
}

// parseWide decodes the wide-prefixed forms: wide <opcode> <index16>, and
// the special wide iinc <index16> <const16> form.
func (p *Parser) parseWide(pc int) (Instruction, error) {
	modByte, err := p.byteAt(pc + 1)
	if err != nil {
		return Instruction{}, errors.Wrapf(ErrTruncatedInstruction, "wide prefix at pc=%d", pc)
	}
	modified := Opcode(modByte)

	switch modified {
	case Iload, Lload, Fload, Dload, Aload, Istore, Lstore, Fstore, Dstore, Astore, Ret:
		idxBytes, err := p.slice(pc+2, 2)
		if err != nil {
			return Instruction{}, err
		}
		idx := int(idxBytes[0])<<8 | int(idxBytes[1])
		return Instruction{
			Opcode: Wide, PC: pc, Length: 4,
			Wide: &WidePayload{Modified: modified, Index: idx},
		}, nil
	case Iinc:
		rest, err := p.slice(pc+2, 4)
		if err != nil {
			return Instruction{}, err
		}
		idx := int(rest[0])<<8 | int(rest[1])
		cst := int16(int(rest[2])<<8 | int(rest[3]))
		return Instruction{
			Opcode: Wide, PC: pc, Length: 6,
			Wide: &WidePayload{Modified: modified, Index: idx, Const: cst},
		}, nil
	default:
		return Instruction{}, errors.Wrapf(ErrUnknownOpcode, "wide modifier 0x%02X at pc=%d", modByte, pc)
	}
}

func be32(b []byte) int {
	return int(int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])))
}
