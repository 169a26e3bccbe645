package bytecode

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldType is a parsed JVM field type descriptor component (primitive,
// array, or class reference).
type FieldType struct {
	Kind string // "B","C","D","F","I","J","S","Z","L","["
	// ClassName is set when Kind == "L" (e.g. "java/lang/String").
	ClassName string
	// ElementType is set when Kind == "[".
	ElementType *FieldType
}

// String renders a Go-ish rendering of the descriptor's source type, the
// way instruction operands get rendered for debug printing
// (gvm/vm/vm.go's formatInstructionStr).
func (t FieldType) String() string {
	switch t.Kind {
	case "B":
		return "byte"
	case "C":
		return "char"
	case "D":
		return "double"
	case "F":
		return "float"
	case "I":
		return "int"
	case "J":
		return "long"
	case "S":
		return "short"
	case "Z":
		return "boolean"
	case "L":
		return strings.ReplaceAll(t.ClassName, "/", ".")
	case "[":
		return t.ElementType.String() + "[]"
	default:
		return "?" + t.Kind
	}
}

// IsWide reports whether this type occupies two local-variable slots or two
// operand-stack words (long, double).
func (t FieldType) IsWide() bool {
	return t.Kind == "J" || t.Kind == "D"
}

// FieldDescriptor is a parsed field_info descriptor string (e.g. "I",
// "[Ljava/lang/String;").
type FieldDescriptor struct {
	Type FieldType
}

// MethodDescriptor is a parsed method_info descriptor string
// (e.g. "(ILjava/lang/String;)V").
type MethodDescriptor struct {
	Params []FieldType
	Return FieldType // Kind == "V" for void
	IsVoid bool
}

// ParseFieldDescriptor parses a single field type descriptor.
//
// Grounded on gvm/vm/compile.go's inputArgToUint32 style: a small
// hand-rolled recursive-descent parser over a constrained grammar, stdlib
// strings only - no general descriptor-grammar library exists
// anywhere in the corpus, and the grammar here (one BNF production with a
// handful of single-letter terminals) does not warrant importing one.
func ParseFieldDescriptor(s string) (FieldDescriptor, error) {
	t, rest, err := parseFieldType(s)
	if err != nil {
		return FieldDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "field descriptor %q: %s", s, err)
	}
	if rest != "" {
		return FieldDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "field descriptor %q: trailing %q", s, rest)
	}
	return FieldDescriptor{Type: t}, nil
}

// ParseMethodDescriptor parses a full method descriptor "(params)return".
func ParseMethodDescriptor(s string) (MethodDescriptor, error) {
	if !strings.HasPrefix(s, "(") {
		return MethodDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "method descriptor %q: missing (", s)
	}
	rest := s[1:]
	var params []FieldType
	for {
		if rest == "" {
			return MethodDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "method descriptor %q: unterminated parameter list", s)
		}
		if rest[0] == ')' {
			rest = rest[1:]
			break
		}
		t, next, err := parseFieldType(rest)
		if err != nil {
			return MethodDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "method descriptor %q: %s", s, err)
		}
		params = append(params, t)
		rest = next
	}
	if rest == "V" {
		return MethodDescriptor{Params: params, Return: FieldType{Kind: "V"}, IsVoid: true}, nil
	}
	retType, tail, err := parseFieldType(rest)
	if err != nil {
		return MethodDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "method descriptor %q return type: %s", s, err)
	}
	if tail != "" {
		return MethodDescriptor{}, errors.Wrapf(ErrMalformedDescriptor, "method descriptor %q: trailing %q after return type", s, tail)
	}
	return MethodDescriptor{Params: params, Return: retType}, nil
}

// Arity returns the number of operand-stack slots the parameters occupy
// (longs/doubles count as 2), matching JVM invoke-instruction stack effects.
func (m MethodDescriptor) Arity() int {
	n := 0
	for _, p := range m.Params {
		if p.IsWide() {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func parseFieldType(s string) (FieldType, string, error) {
	if s == "" {
		return FieldType{}, "", errors.New("empty type")
	}
	switch s[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return FieldType{Kind: string(s[0])}, s[1:], nil
	case 'L':
		idx := strings.IndexByte(s, ';')
		if idx < 0 {
			return FieldType{}, "", errors.Errorf("unterminated class type in %q", s)
		}
		return FieldType{Kind: "L", ClassName: s[1:idx]}, s[idx+1:], nil
	case '[':
		elem, rest, err := parseFieldType(s[1:])
		if err != nil {
			return FieldType{}, "", err
		}
		return FieldType{Kind: "[", ElementType: &elem}, rest, nil
	default:
		return FieldType{}, "", errors.Errorf("unrecognized type tag %q in %q", s[0], s)
	}
}
