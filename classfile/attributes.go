package classfile

import "github.com/pkg/errors"

// RawAttribute is the generic first-stage capture of any attribute_info
// block, before it is refined into a typed form by name. Grounded on
// gvm/vm/compile.go's CompileSourceFromBuffer two-pass shape: capture
// everything generically first, then interpret it once labels/names are
// known.
type RawAttribute struct {
	Name   string
	Length uint32
	Info   []byte
}

func readRawAttribute(r *Reader, cp *ConstantPool) (RawAttribute, error) {
	nameIdx, err := r.U16()
	if err != nil {
		return RawAttribute{}, errors.Wrap(err, "attribute name_index")
	}
	name, err := cp.Utf8(int(nameIdx))
	if err != nil {
		return RawAttribute{}, errors.Wrap(err, "attribute name")
	}
	length, err := r.U32()
	if err != nil {
		return RawAttribute{}, errors.Wrap(err, "attribute length")
	}
	info, err := r.Bytes(int(length))
	if err != nil {
		return RawAttribute{}, errors.Wrapf(ErrCorruptedAttribute, "attribute %q: %s", name, err)
	}
	return RawAttribute{Name: name, Length: length, Info: info}, nil
}

func readRawAttributes(r *Reader, cp *ConstantPool) ([]RawAttribute, error) {
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "attributes_count")
	}
	attrs := make([]RawAttribute, 0, count)
	for i := 0; i < int(count); i++ {
		a, err := readRawAttribute(r, cp)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %d", i)
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// ExceptionTableEntry is one row of a Code attribute's exception table.
type ExceptionTableEntry struct {
	StartPC   int
	EndPC     int
	HandlerPC int
	CatchType int // 0 means catch-all (finally)
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPC int
	Line    int
}

// LocalVariableEntry is one row of a LocalVariableTable attribute.
type LocalVariableEntry struct {
	StartPC    int
	Length     int
	Name       string
	Descriptor string
	Slot       int
}

// CodeAttribute is the decoded form of the Code attribute (§6 byte layout).
// The absolute PC of each instruction is preserved verbatim in Bytecode (the
// caller re-derives instruction boundaries); this struct only owns the raw
// code bytes plus the structured side tables.
type CodeAttribute struct {
	MaxStack       int
	MaxLocals      int
	Bytecode       []byte
	ExceptionTable []ExceptionTableEntry
	LineNumbers    []LineNumberEntry
	LocalVariables []LocalVariableEntry
	Attributes     []RawAttribute
}

func parseCodeAttribute(raw RawAttribute, cp *ConstantPool) (*CodeAttribute, error) {
	r := NewReader(raw.Info)

	maxStack, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedAttribute, "Code.max_stack")
	}
	maxLocals, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedAttribute, "Code.max_locals")
	}
	codeLength, err := r.U32()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedAttribute, "Code.code_length")
	}
	code, err := r.Bytes(int(codeLength))
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptedAttribute, "Code.code (claimed %d bytes): %s", codeLength, err)
	}

	excCount, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedAttribute, "Code.exception_table_length")
	}
	excTable := make([]ExceptionTableEntry, 0, excCount)
	for i := 0; i < int(excCount); i++ {
		start, err1 := r.U16()
		end, err2 := r.U16()
		handler, err3 := r.U16()
		catchType, err4 := r.U16()
		if err := firstErr(err1, err2, err3, err4); err != nil {
			return nil, errors.Wrapf(ErrCorruptedAttribute, "Code.exception_table[%d]: %s", i, err)
		}
		excTable = append(excTable, ExceptionTableEntry{
			StartPC: int(start), EndPC: int(end), HandlerPC: int(handler), CatchType: int(catchType),
		})
	}

	attrs, err := readRawAttributes(r, cp)
	if err != nil {
		return nil, errors.Wrap(err, "Code nested attributes")
	}

	ca := &CodeAttribute{
		MaxStack:       int(maxStack),
		MaxLocals:      int(maxLocals),
		Bytecode:       code,
		ExceptionTable: excTable,
		Attributes:     attrs,
	}

	for _, a := range attrs {
		switch a.Name {
		case "LineNumberTable":
			lns, err := parseLineNumberTable(a)
			if err != nil {
				return nil, err
			}
			ca.LineNumbers = append(ca.LineNumbers, lns...)
		case "LocalVariableTable":
			lvs, err := parseLocalVariableTable(a, cp)
			if err != nil {
				return nil, err
			}
			ca.LocalVariables = append(ca.LocalVariables, lvs...)
		}
	}

	return ca, nil
}

func parseLineNumberTable(raw RawAttribute) ([]LineNumberEntry, error) {
	r := NewReader(raw.Info)
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedAttribute, "LineNumberTable.line_number_table_length")
	}
	out := make([]LineNumberEntry, 0, count)
	for i := 0; i < int(count); i++ {
		startPC, err1 := r.U16()
		line, err2 := r.U16()
		if err := firstErr(err1, err2); err != nil {
			return nil, errors.Wrapf(ErrCorruptedAttribute, "LineNumberTable[%d]: %s", i, err)
		}
		out = append(out, LineNumberEntry{StartPC: int(startPC), Line: int(line)})
	}
	return out, nil
}

func parseLocalVariableTable(raw RawAttribute, cp *ConstantPool) ([]LocalVariableEntry, error) {
	r := NewReader(raw.Info)
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedAttribute, "LocalVariableTable.local_variable_table_length")
	}
	out := make([]LocalVariableEntry, 0, count)
	for i := 0; i < int(count); i++ {
		startPC, err1 := r.U16()
		length, err2 := r.U16()
		nameIdx, err3 := r.U16()
		descIdx, err4 := r.U16()
		slot, err5 := r.U16()
		if err := firstErr(err1, err2, err3, err4, err5); err != nil {
			return nil, errors.Wrapf(ErrCorruptedAttribute, "LocalVariableTable[%d]: %s", i, err)
		}
		name, err := cp.Utf8(int(nameIdx))
		if err != nil {
			return nil, err
		}
		desc, err := cp.Utf8(int(descIdx))
		if err != nil {
			return nil, err
		}
		out = append(out, LocalVariableEntry{
			StartPC: int(startPC), Length: int(length), Name: name, Descriptor: desc, Slot: int(slot),
		})
	}
	return out, nil
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// FindAttribute returns the first raw attribute with the given name, or nil.
func FindAttribute(attrs []RawAttribute, name string) *RawAttribute {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}
	return nil
}
