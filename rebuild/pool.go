package rebuild

import (
	"jdec/ast"
	"jdec/bytecode"
	"jdec/classfile"

	"github.com/pkg/errors"
)

// resolveLdc resolves an Ldc/LdcW/Ldc2W index into a literal AST node.
func (r *Rebuilder) resolveLdc(idx int) (ast.NodeID, ast.Type, error) {
	entry, err := r.pool.At(idx)
	if err != nil {
		return ast.NoNode, ast.Type{}, err
	}
	switch entry.Tag {
	case classfile.TagInteger:
		t := ast.Type{Kind: ast.TypeInt}
		return r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: entry.Int32, Type: t}), t, nil
	case classfile.TagFloat:
		t := ast.Type{Kind: ast.TypeFloat}
		return r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: entry.Flt32, Type: t}), t, nil
	case classfile.TagLong:
		t := ast.Type{Kind: ast.TypeLong}
		return r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: entry.Int64, Type: t}), t, nil
	case classfile.TagDouble:
		t := ast.Type{Kind: ast.TypeDouble}
		return r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: entry.Flt64, Type: t}), t, nil
	case classfile.TagString:
		s, err := r.pool.StringAt(idx)
		if err != nil {
			return ast.NoNode, ast.Type{}, err
		}
		t := ast.Reference("java/lang/String")
		return r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: s, Type: t}), t, nil
	case classfile.TagClass:
		name, err := r.pool.ClassName(idx)
		if err != nil {
			return ast.NoNode, ast.Type{}, err
		}
		t := ast.Reference("java/lang/Class")
		return r.newNode(ast.Node{Kind: ast.KindLiteral, LiteralValue: name + ".class", Type: t}), t, nil
	default:
		return ast.NoNode, ast.Type{}, errors.Wrapf(ErrUnresolvedPoolRef, "ldc tag %s", entry.Tag)
	}
}

// fieldDescriptorType parses a field reference's descriptor into an ast.Type.
func fieldDescriptorType(desc string) ast.Type {
	fd, err := bytecode.ParseFieldDescriptor(desc)
	if err != nil {
		return ast.Type{Kind: ast.TypeUnknown}
	}
	return toASTType(fd.Type)
}

func toASTType(t bytecode.FieldType) ast.Type {
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
		return ast.ArrayOf(toASTType(*t.ElementType))
	default:
		return ast.Type{Kind: ast.TypeUnknown}
	}
}
