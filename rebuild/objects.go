package rebuild

import (
	"jdec/ast"

	"github.com/pkg/errors"
)

// newArrayElementType maps the `newarray` atype operand to its primitive
// element type (JVM spec Table 6.5-1).
var newArrayElementType = map[int]ast.Type{
	4:  {Kind: ast.TypeBoolean},
	5:  {Kind: ast.TypeChar},
	6:  {Kind: ast.TypeFloat},
	7:  {Kind: ast.TypeDouble},
	8:  {Kind: ast.TypeByte},
	9:  {Kind: ast.TypeShort},
	10: tInt,
	11: tLong,
}

// newObject pushes an unfinalized KindObjectNew placeholder for a `new`
// instruction: IsConstructor stays false until the matching invokespecial
// <init> finalizes it via Arena.Replace, so every `dup`-copied reference to
// this same NodeID updates together.
func (r *Rebuilder) newObject(poolIdx int) error {
	className, err := r.pool.ClassName(poolIdx)
	if err != nil {
		return err
	}
	t := ast.Reference(className)
	node := r.newNode(ast.Node{
		Kind:       ast.KindObjectNew,
		TargetType: t,
		Type:       t,
	})
	r.push(node, t)
	return nil
}

// newPrimitiveArray pops the length and pushes a KindArrayNew node for a
// single-dimension primitive array.
func (r *Rebuilder) newPrimitiveArray(atype int) error {
	length, err := r.pop()
	if err != nil {
		return err
	}
	elem, ok := newArrayElementType[atype]
	if !ok {
		return errors.Wrapf(ErrUnresolvedPoolRef, "newarray atype %d", atype)
	}
	arrType := ast.ArrayOf(elem)
	node := r.newNode(ast.Node{
		Kind:       ast.KindArrayNew,
		Children:   []ast.NodeID{length.node},
		TargetType: arrType,
		Type:       arrType,
	})
	r.push(node, arrType)
	return nil
}

// newRefArray pops the length and pushes a KindArrayNew node for a
// single-dimension reference-type array.
func (r *Rebuilder) newRefArray(poolIdx int) error {
	length, err := r.pop()
	if err != nil {
		return err
	}
	className, err := r.pool.ClassName(poolIdx)
	if err != nil {
		return err
	}
	arrType := ast.ArrayOf(ast.Reference(className))
	node := r.newNode(ast.Node{
		Kind:       ast.KindArrayNew,
		Children:   []ast.NodeID{length.node},
		TargetType: arrType,
		Type:       arrType,
	})
	r.push(node, arrType)
	return nil
}

// newMultiArray pops `dims` dimension-length expressions and pushes a
// KindArrayNew node for a multianewarray.
func (r *Rebuilder) newMultiArray(poolIdx int, dims int) error {
	lengths, err := r.popN(dims)
	if err != nil {
		return err
	}
	className, err := r.pool.ClassName(poolIdx)
	if err != nil {
		return err
	}
	lengthIDs := make([]ast.NodeID, len(lengths))
	for i, l := range lengths {
		lengthIDs[i] = l.node
	}
	arrType := ast.Reference(className)
	node := r.newNode(ast.Node{
		Kind:       ast.KindArrayNew,
		Children:   lengthIDs,
		TargetType: arrType,
		Type:       arrType,
	})
	r.push(node, arrType)
	return nil
}

// arrayLength pops an array reference and pushes its `.length` expression.
func (r *Rebuilder) arrayLength() error {
	arrayRef, err := r.pop()
	if err != nil {
		return err
	}
	node := r.newNode(ast.Node{
		Kind: ast.KindUnaryOp,
		Op:   ".length",
		Lhs:  arrayRef.node,
		Type: tInt,
	})
	r.push(node, tInt)
	return nil
}

// checkCast pops an expression and pushes a Cast node against the resolved
// class, leaving the original value's runtime identity unchanged (the
// check itself has no surface-visible effect beyond a potential
// ClassCastException, which decompiled source models implicitly).
func (r *Rebuilder) checkCast(poolIdx int) error {
	className, err := r.pool.ClassName(poolIdx)
	if err != nil {
		return err
	}
	val, err := r.pop()
	if err != nil {
		return err
	}
	t := ast.Reference(className)
	node := r.newNode(ast.Node{
		Kind:       ast.KindCast,
		Lhs:        val.node,
		Type:       t,
		TargetType: t,
	})
	r.push(node, t)
	return nil
}

// instanceOf pops an expression and pushes an InstanceOf boolean test.
func (r *Rebuilder) instanceOf(poolIdx int) error {
	className, err := r.pool.ClassName(poolIdx)
	if err != nil {
		return err
	}
	val, err := r.pop()
	if err != nil {
		return err
	}
	node := r.newNode(ast.Node{
		Kind:       ast.KindInstanceOf,
		Lhs:        val.node,
		TargetType: ast.Reference(className),
		Type:       tBoolean,
	})
	r.push(node, tBoolean)
	return nil
}
