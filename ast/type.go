package ast

// TypeKind is the tag of the small closed type lattice shared between the
// AST and the type-inference engine (§4.6): primitives, reference types,
// arrays, void, plus top/bottom for "not yet inferred" / "conflicting".
type TypeKind int

const (
	TypeUnknown TypeKind = iota // lattice top (⊤)
	TypeConflict                // lattice bottom (⊥)
	TypeVoid
	TypeBoolean
	TypeByte
	TypeChar
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeReference
	TypeArray
)

// Type is a value of the lattice: a kind plus, for Reference/Array, the
// class name or element type.
type Type struct {
	Kind        TypeKind
	ClassName   string // set when Kind == TypeReference
	ElementType *Type  // set when Kind == TypeArray
}

func (t Type) String() string {
	switch t.Kind {
	case TypeUnknown:
		return "<unknown>"
	case TypeConflict:
		return "<conflict>"
	case TypeVoid:
		return "void"
	case TypeBoolean:
		return "boolean"
	case TypeByte:
		return "byte"
	case TypeChar:
		return "char"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeReference:
		return t.ClassName
	case TypeArray:
		return t.ElementType.String() + "[]"
	default:
		return "?"
	}
}

// IsCategory2 reports whether the type occupies two stack/local slots
// (long, double), per §3's StackValue category rule.
func (t Type) IsCategory2() bool {
	return t.Kind == TypeLong || t.Kind == TypeDouble
}

// Reference constructs a TypeReference type for the given class name.
func Reference(className string) Type {
	return Type{Kind: TypeReference, ClassName: className}
}

// ArrayOf constructs a TypeArray type with the given element type.
func ArrayOf(elem Type) Type {
	return Type{Kind: TypeArray, ElementType: &elem}
}
