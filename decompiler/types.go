package decompiler

import (
	"fmt"

	"jdec/ast"
	"jdec/bytecode"
)

// fieldTypeToAST mirrors rebuild/pool.go's unexported toASTType: the same
// descriptor-tag-to-lattice mapping, duplicated here because the
// orchestrator needs it before a Rebuilder exists (to seed parameter
// types) and the rebuild package does not export the conversion.
func fieldTypeToAST(t bytecode.FieldType) ast.Type {
	switch t.Kind {
	case "B":
		return ast.Type{Kind: ast.TypeByte}
	case "C":
		return ast.Type{Kind: ast.TypeChar}
	case "D":
		return ast.Type{Kind: ast.TypeDouble}
	case "F":
		return ast.Type{Kind: ast.TypeFloat}
	case "I":
		return ast.Type{Kind: ast.TypeInt}
	case "J":
		return ast.Type{Kind: ast.TypeLong}
	case "S":
		return ast.Type{Kind: ast.TypeShort}
	case "Z":
		return ast.Type{Kind: ast.TypeBoolean}
	case "L":
		return ast.Reference(t.ClassName)
	case "[":
		return ast.ArrayOf(fieldTypeToAST(*t.ElementType))
	default:
		return ast.Type{Kind: ast.TypeUnknown}
	}
}

// paramSlotName mirrors rebuild/locals.go's localSlots.name(): the same
// deterministic slot-to-identifier-text rule, so a MethodDecl's printed
// parameter list matches the identifiers the rebuilder assigns the same
// slots inside the body.
func paramSlotName(slot int, t ast.Type) string {
	if t.Kind == ast.TypeReference || t.Kind == ast.TypeArray {
		return fmt.Sprintf("local%d", slot)
	}
	prefix := map[ast.TypeKind]string{
		ast.TypeInt: "i", ast.TypeLong: "l", ast.TypeFloat: "f",
		ast.TypeDouble: "d", ast.TypeBoolean: "z",
	}[t.Kind]
	if prefix == "" {
		prefix = "var"
	}
	return fmt.Sprintf("%s%d", prefix, slot)
}

// methodSignature derives the ordered parameter list (slot, type, name), the
// local slot each parameter occupies (paramSlots, same length/order as
// params), and the per-slot type environment slotTypes used to seed
// TypeInferenceEngine - given the method's descriptor and whether it is an
// instance method (`this` occupies slot 0 when so, left as TypeUnknown for
// the caller to fill in with the class's own type).
func methodSignature(desc bytecode.MethodDescriptor, isStatic bool) (params []ast.Param, paramSlots []int, slotTypes []ast.Type) {
	slot := 0
	if !isStatic {
		slotTypes = append(slotTypes, ast.Type{Kind: ast.TypeUnknown}) // `this`, filled by caller
		slot = 1
	}
	for _, p := range desc.Params {
		t := fieldTypeToAST(p)
		params = append(params, ast.Param{Name: paramSlotName(slot, t), Type: t})
		paramSlots = append(paramSlots, slot)
		slotTypes = append(slotTypes, t)
		if p.IsWide() {
			slotTypes = append(slotTypes, ast.Type{Kind: ast.TypeUnknown})
			slot += 2
		} else {
			slot++
		}
	}
	return params, paramSlots, slotTypes
}
