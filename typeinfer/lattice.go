// Package typeinfer computes the lattice type of every stack value and
// local-variable slot by dataflow over a method's CFG (§4.6).
package typeinfer

import "jdec/ast"

// primitiveRank orders the primitive types for implicit widening: Merge
// keeps the higher-ranked of two primitives. Mirrors the
// byte→short→int→long / int→float→double ladder of §4.6.
var primitiveRank = map[ast.TypeKind]int{
	ast.TypeByte: 0, ast.TypeShort: 1, ast.TypeChar: 1, ast.TypeInt: 2,
	ast.TypeLong: 3, ast.TypeFloat: 4, ast.TypeDouble: 5,
}

// Merge computes the least upper bound of two types at a CFG merge point
// (§4.6 "Merge"): equal types stay; primitive widenings apply in rank
// order; unrelated references over-approximate to reference(Object);
// Unknown is the identity element, Conflict the absorbing element.
func Merge(a, b ast.Type) ast.Type {
	if a.Kind == ast.TypeUnknown {
		return b
	}
	if b.Kind == ast.TypeUnknown {
		return a
	}
	if equalType(a, b) {
		return a
	}
	if a.Kind == ast.TypeConflict || b.Kind == ast.TypeConflict {
		return ast.Type{Kind: ast.TypeConflict}
	}

	ra, aOK := primitiveRank[a.Kind]
	rb, bOK := primitiveRank[b.Kind]
	if aOK && bOK {
		if ra >= rb {
			return a
		}
		return b
	}

	if a.Kind == ast.TypeReference && b.Kind == ast.TypeReference {
		return ast.Reference("java/lang/Object")
	}
	if a.Kind == ast.TypeArray && b.Kind == ast.TypeArray {
		elem := Merge(*a.ElementType, *b.ElementType)
		return ast.ArrayOf(elem)
	}

	return ast.Type{Kind: ast.TypeConflict}
}

func equalType(a, b ast.Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.TypeReference:
		return a.ClassName == b.ClassName
	case ast.TypeArray:
		return equalType(*a.ElementType, *b.ElementType)
	default:
		return true
	}
}
