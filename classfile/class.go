package classfile

import "github.com/pkg/errors"

const (
	classMagic          uint32 = 0xCAFEBABE
	minSupportedMajor    uint16 = 45
	maxSupportedMajor    uint16 = 68 // Java SE 24
)

// AccessFlags is the raw access_flags bitmask shared by classes, fields, and methods.
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

// Field is a decoded field_info record (§3 "Field / Method").
type Field struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []RawAttribute
}

// Method is a decoded method_info record. Code is nil for abstract/native methods.
type Method struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []RawAttribute
	Code        *CodeAttribute
}

// IsAbstractOrNative reports whether Code is expected to be absent.
func (m *Method) IsAbstractOrNative() bool {
	return m.AccessFlags.Has(AccAbstract) || m.AccessFlags.Has(AccNative)
}

// Class is the fully decoded container (§3 "Class", §6 byte layout).
type Class struct {
	Minor, Major uint16
	ConstantPool *ConstantPool

	AccessFlags AccessFlags
	ThisClass   string
	SuperClass  string // empty for java/lang/Object
	Interfaces  []string

	Fields     []Field
	Methods    []Method
	Attributes []RawAttribute

	SourceFile string
}

func readMember(r *Reader, cp *ConstantPool) (AccessFlags, string, string, []RawAttribute, error) {
	flags, err := r.U16()
	if err != nil {
		return 0, "", "", nil, err
	}
	nameIdx, err := r.U16()
	if err != nil {
		return 0, "", "", nil, err
	}
	name, err := cp.Utf8(int(nameIdx))
	if err != nil {
		return 0, "", "", nil, errors.Wrap(err, "member name")
	}
	descIdx, err := r.U16()
	if err != nil {
		return 0, "", "", nil, err
	}
	desc, err := cp.Utf8(int(descIdx))
	if err != nil {
		return 0, "", "", nil, errors.Wrap(err, "member descriptor")
	}
	attrs, err := readRawAttributes(r, cp)
	if err != nil {
		return 0, "", "", nil, err
	}
	return AccessFlags(flags), name, desc, attrs, nil
}

func readFields(r *Reader, cp *ConstantPool) ([]Field, error) {
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "fields_count")
	}
	fields := make([]Field, 0, count)
	for i := 0; i < int(count); i++ {
		flags, name, desc, attrs, err := readMember(r, cp)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i)
		}
		fields = append(fields, Field{AccessFlags: flags, Name: name, Descriptor: desc, Attributes: attrs})
	}
	return fields, nil
}

func readMethods(r *Reader, cp *ConstantPool) ([]Method, error) {
	count, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "methods_count")
	}
	methods := make([]Method, 0, count)
	for i := 0; i < int(count); i++ {
		flags, name, desc, attrs, err := readMember(r, cp)
		if err != nil {
			return nil, errors.Wrapf(err, "method %d", i)
		}
		m := Method{AccessFlags: flags, Name: name, Descriptor: desc, Attributes: attrs}
		if codeRaw := FindAttribute(attrs, "Code"); codeRaw != nil {
			code, err := parseCodeAttribute(*codeRaw, cp)
			if err != nil {
				return nil, errors.Wrapf(err, "method %s%s Code attribute", name, desc)
			}
			m.Code = code
		} else if !m.IsAbstractOrNative() {
			return nil, errors.Errorf("method %s%s has no Code attribute and is not abstract or native", name, desc)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// ReadClass decodes a full class file container per §6. Container-level
// errors (bad magic, unsupported version, truncated input, an unresolved
// constant pool reference) abort decoding entirely and are returned as-is;
// per-method bytecode/rebuild errors are the concern of later pipeline
// stages, not this reader.
func ReadClass(data []byte) (*Class, error) {
	r := NewReader(data)

	magic, err := r.U32()
	if err != nil {
		return nil, errors.Wrap(err, "magic")
	}
	if magic != classMagic {
		return nil, errors.Wrapf(ErrInvalidMagic, "got 0x%08X", magic)
	}

	minor, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "minor_version")
	}
	major, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "major_version")
	}
	if major < minSupportedMajor || major > maxSupportedMajor {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "major version %d", major)
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, errors.Wrap(err, "constant pool")
	}

	accessFlags, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "access_flags")
	}

	thisClassIdx, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "this_class")
	}
	thisClass, err := cp.ClassName(int(thisClassIdx))
	if err != nil {
		return nil, errors.Wrap(err, "this_class")
	}

	superClassIdx, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "super_class")
	}
	var superClass string
	if superClassIdx != 0 {
		superClass, err = cp.ClassName(int(superClassIdx))
		if err != nil {
			return nil, errors.Wrap(err, "super_class")
		}
	}

	interfaceCount, err := r.U16()
	if err != nil {
		return nil, errors.Wrap(err, "interfaces_count")
	}
	interfaces := make([]string, 0, interfaceCount)
	for i := 0; i < int(interfaceCount); i++ {
		idx, err := r.U16()
		if err != nil {
			return nil, errors.Wrapf(err, "interfaces[%d]", i)
		}
		name, err := cp.ClassName(int(idx))
		if err != nil {
			return nil, errors.Wrapf(err, "interfaces[%d]", i)
		}
		interfaces = append(interfaces, name)
	}

	fields, err := readFields(r, cp)
	if err != nil {
		return nil, errors.Wrap(err, "fields")
	}

	methods, err := readMethods(r, cp)
	if err != nil {
		return nil, errors.Wrap(err, "methods")
	}

	classAttrs, err := readRawAttributes(r, cp)
	if err != nil {
		return nil, errors.Wrap(err, "class attributes")
	}

	c := &Class{
		Minor:        minor,
		Major:        major,
		ConstantPool: cp,
		AccessFlags:  AccessFlags(accessFlags),
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   classAttrs,
	}

	if sf := FindAttribute(classAttrs, "SourceFile"); sf != nil && len(sf.Info) >= 2 {
		sr := NewReader(sf.Info)
		idx, err := sr.U16()
		if err == nil {
			if name, err := cp.Utf8(int(idx)); err == nil {
				c.SourceFile = name
			}
		}
	}

	return c, nil
}
