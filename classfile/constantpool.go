package classfile

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tag identifies the kind of a ConstantPool entry (§3 "Constant pool").
type Tag byte

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldRef           Tag = 9
	TagMethodRef          Tag = 10
	TagInterfaceMethodRef Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldRef:
		return "FieldRef"
	case TagMethodRef:
		return "MethodRef"
	case TagInterfaceMethodRef:
		return "InterfaceMethodRef"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return fmt.Sprintf("Tag(%d)", byte(t))
	}
}

// Entry is one tagged constant pool slot. Only the fields relevant to Tag
// are populated; this mirrors the single-field-set-per-bytecode
// discipline in gvm/vm/compile.go's Instruction (one struct, interpreted
// differently per opcode) rather than one Go type per tag.
type Entry struct {
	Tag Tag

	// TagUtf8
	UTF8 string

	// TagInteger / TagFloat hold their bit pattern pre-decoded
	Int32 int32
	Flt32 float32

	// TagLong / TagDouble
	Int64 int64
	Flt64 float64

	// TagClass: NameIndex -> Utf8. TagString: StringIndex -> Utf8.
	// TagModule / TagPackage reuse NameIndex as well.
	NameIndex int

	// TagFieldRef / TagMethodRef / TagInterfaceMethodRef
	ClassIndex       int
	NameAndTypeIndex int

	// TagNameAndType
	DescriptorIndex int

	// TagMethodHandle
	ReferenceKind  byte
	ReferenceIndex int

	// TagMethodType
	// (DescriptorIndex reused)

	// TagDynamic / TagInvokeDynamic
	BootstrapMethodAttrIndex int
	// NameAndTypeIndex reused
}

// ConstantPool is the 1-indexed, tagged entry table described in §3.
// Index 0 is always unused; Long/Double entries consume their own slot plus
// a reserved slot immediately after (the "width 2" invariant).
type ConstantPool struct {
	// entries[0] is always the zero Entry (reserved).
	entries []Entry
}

// NewConstantPool builds a pool directly from a pre-populated entry table,
// index 0 included. Used by other packages' tests to fabricate a pool
// fixture without round-tripping through the binary container format.
func NewConstantPool(entries []Entry) *ConstantPool {
	return &ConstantPool{entries: entries}
}

// Count returns the logical entry count as recorded in the class file header
// (constant_pool_count, i.e. len(entries)).
func (cp *ConstantPool) Count() int { return len(cp.entries) }

func (cp *ConstantPool) checkIndex(idx int) error {
	if idx <= 0 || idx >= len(cp.entries) {
		return errors.Wrapf(ErrInvalidPoolIndex, "index %d (pool size %d)", idx, len(cp.entries))
	}
	return nil
}

// At returns the raw entry at idx (1-based), failing on an out-of-range or
// reserved (post-Long/Double) slot.
func (cp *ConstantPool) At(idx int) (*Entry, error) {
	if err := cp.checkIndex(idx); err != nil {
		return nil, err
	}
	e := &cp.entries[idx]
	if e.Tag == 0 {
		return nil, errors.Wrapf(ErrInvalidPoolIndex, "index %d is a reserved slot", idx)
	}
	return e, nil
}

func (cp *ConstantPool) expect(idx int, tag Tag) (*Entry, error) {
	e, err := cp.At(idx)
	if err != nil {
		return nil, err
	}
	if e.Tag != tag {
		return nil, errors.Wrapf(ErrUnexpectedPoolTag, "index %d: wanted %s, got %s", idx, tag, e.Tag)
	}
	return e, nil
}

// Utf8 resolves idx to its decoded string; fails unless the tag is Utf8.
func (cp *ConstantPool) Utf8(idx int) (string, error) {
	e, err := cp.expect(idx, TagUtf8)
	if err != nil {
		return "", err
	}
	return e.UTF8, nil
}

// ClassName resolves a Class entry through its name_index to the UTF-8 name.
func (cp *ConstantPool) ClassName(idx int) (string, error) {
	e, err := cp.expect(idx, TagClass)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.NameIndex)
}

// NameAndType is the resolved (name, descriptor) pair behind a NameAndType entry.
type NameAndType struct {
	Name       string
	Descriptor string
}

// NameAndTypeAt resolves idx to its (name, descriptor) pair.
func (cp *ConstantPool) NameAndTypeAt(idx int) (NameAndType, error) {
	e, err := cp.expect(idx, TagNameAndType)
	if err != nil {
		return NameAndType{}, err
	}
	name, err := cp.Utf8(e.NameIndex)
	if err != nil {
		return NameAndType{}, err
	}
	desc, err := cp.Utf8(e.DescriptorIndex)
	if err != nil {
		return NameAndType{}, err
	}
	return NameAndType{Name: name, Descriptor: desc}, nil
}

// MemberRef is the resolved (class, name, descriptor) behind a FieldRef,
// MethodRef, or InterfaceMethodRef entry.
type MemberRef struct {
	Class      string
	Name       string
	Descriptor string
}

// FieldRefAt resolves idx, failing unless it is a FieldRef entry.
func (cp *ConstantPool) FieldRefAt(idx int) (MemberRef, error) {
	r, err := cp.memberRefAt(idx, TagFieldRef)
	if err != nil {
		return MemberRef{}, errors.Wrap(ErrInvalidFieldRef, err.Error())
	}
	return r, nil
}

// MethodRefAt resolves idx, accepting either MethodRef or InterfaceMethodRef
// (invokeinterface uses the latter; the data shape is identical).
func (cp *ConstantPool) MethodRefAt(idx int) (MemberRef, error) {
	e, err := cp.At(idx)
	if err != nil {
		return MemberRef{}, errors.Wrap(ErrInvalidMethodRef, err.Error())
	}
	if e.Tag != TagMethodRef && e.Tag != TagInterfaceMethodRef {
		return MemberRef{}, errors.Wrapf(ErrInvalidMethodRef, "index %d: wanted MethodRef/InterfaceMethodRef, got %s", idx, e.Tag)
	}
	return cp.resolveMemberRef(e)
}

func (cp *ConstantPool) memberRefAt(idx int, tag Tag) (MemberRef, error) {
	e, err := cp.expect(idx, tag)
	if err != nil {
		return MemberRef{}, err
	}
	return cp.resolveMemberRef(e)
}

func (cp *ConstantPool) resolveMemberRef(e *Entry) (MemberRef, error) {
	class, err := cp.ClassName(e.ClassIndex)
	if err != nil {
		return MemberRef{}, err
	}
	nat, err := cp.NameAndTypeAt(e.NameAndTypeIndex)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{Class: class, Name: nat.Name, Descriptor: nat.Descriptor}, nil
}

// StringAt resolves a String entry to its backing UTF-8 literal.
func (cp *ConstantPool) StringAt(idx int) (string, error) {
	e, err := cp.expect(idx, TagString)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.NameIndex)
}

// readConstantPool parses constant_pool_count entries (the effective count is
// count-1; index 0 is reserved) per §6's container byte layout.
func readConstantPool(r *Reader) (*ConstantPool, error) {
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "constant_pool_count")
	}

	cp := &ConstantPool{entries: make([]Entry, count)}
	for i := 1; i < int(count); i++ {
		tagByte, err := r.U8()
		if err != nil {
			return nil, errors.Wrapf(err, "constant pool entry %d tag", i)
		}

		e, err := readConstantEntry(r, Tag(tagByte))
		if err != nil {
			return nil, errors.Wrapf(err, "constant pool entry %d (tag %s)", i, Tag(tagByte))
		}
		cp.entries[i] = e

		// Long and Double occupy two logical slots; the slot after is never read.
		if e.Tag == TagLong || e.Tag == TagDouble {
			i++
		}
	}
	return cp, nil
}

func readConstantEntry(r *Reader, tag Tag) (Entry, error) {
	switch tag {
	case TagUtf8:
		length, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		b, err := r.Bytes(int(length))
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, UTF8: decodeModifiedUTF8(b)}, nil
	case TagInteger:
		v, err := r.I32()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, Int32: v}, nil
	case TagFloat:
		v, err := r.F32()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, Flt32: v}, nil
	case TagLong:
		v, err := r.I64()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, Int64: v}, nil
	case TagDouble:
		v, err := r.F64()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, Flt64: v}, nil
	case TagClass, TagModule, TagPackage:
		idx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, NameIndex: int(idx)}, nil
	case TagString:
		idx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, NameIndex: int(idx)}, nil
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
		classIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		natIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, ClassIndex: int(classIdx), NameAndTypeIndex: int(natIdx)}, nil
	case TagNameAndType:
		nameIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		descIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, NameIndex: int(nameIdx), DescriptorIndex: int(descIdx)}, nil
	case TagMethodHandle:
		kind, err := r.U8()
		if err != nil {
			return Entry{}, err
		}
		refIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, ReferenceKind: kind, ReferenceIndex: int(refIdx)}, nil
	case TagMethodType:
		descIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, DescriptorIndex: int(descIdx)}, nil
	case TagDynamic, TagInvokeDynamic:
		bootstrapIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		natIdx, err := r.U16()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Tag: tag, BootstrapMethodAttrIndex: int(bootstrapIdx), NameAndTypeIndex: int(natIdx)}, nil
	default:
		return Entry{}, errors.Errorf("unrecognized constant pool tag %d", byte(tag))
	}
}

// decodeModifiedUTF8 decodes the JVM's "modified UTF-8" encoding. It differs
// from standard UTF-8 only in how it encodes NUL and supplementary
// characters; for the vast majority of class files plain UTF-8 decoding is
// byte-identical, so this keeps the common path cheap and only special-cases
// the two-byte NUL encoding (0xC0 0x80).
func decodeModifiedUTF8(b []byte) string {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == 0xC0 && i+1 < len(b) && b[i+1] == 0x80 {
			out = append(out, 0)
			i++
			continue
		}
		out = append(out, b[i])
	}
	return string(out)
}
