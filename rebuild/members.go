package rebuild

import (
	"jdec/ast"
	"jdec/bytecode"
)

// getField pushes a FieldAccess expression for getstatic/getfield.
func (r *Rebuilder) getField(poolIdx int, static bool) error {
	ref, err := r.pool.FieldRefAt(poolIdx)
	if err != nil {
		return err
	}
	t := fieldDescriptorType(ref.Descriptor)
	var object ast.NodeID = ast.NoNode
	if !static {
		obj, err := r.pop()
		if err != nil {
			return err
		}
		object = obj.node
	}
	node := r.newNode(ast.Node{
		Kind:       ast.KindFieldAccess,
		Lhs:        object,
		Name:       ref.Name,
		FieldClass: ref.Class,
		IsStatic:   static,
		Type:       t,
	})
	r.push(node, t)
	return nil
}

// putField pops the value (and, for putfield, the object reference too)
// and emits an Assignment onto a FieldAccess target.
func (r *Rebuilder) putField(poolIdx int, static bool) (ast.NodeID, error) {
	ref, err := r.pool.FieldRefAt(poolIdx)
	if err != nil {
		return ast.NoNode, err
	}
	t := fieldDescriptorType(ref.Descriptor)
	val, err := r.pop()
	if err != nil {
		return ast.NoNode, err
	}
	var object ast.NodeID = ast.NoNode
	if !static {
		obj, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		object = obj.node
	}
	target := r.newNode(ast.Node{
		Kind:       ast.KindFieldAccess,
		Lhs:        object,
		Name:       ref.Name,
		FieldClass: ref.Class,
		IsStatic:   static,
		Type:       t,
	})
	assign := r.newNode(ast.Node{
		Kind: ast.KindAssignment,
		Op:   "=",
		Lhs:  target,
		Rhs:  val.node,
		Type: t,
	})
	return assign, nil
}

// invoke resolves a method reference, pops its receiver (unless static) and
// arguments in declared order, and synthesizes a MethodCall node. A void
// call is returned as a statement. A non-void call is left on the stack for
// a discarding pop to later convert into a statement (popStatement), or
// consumed directly as an expression by whatever follows.
func (r *Rebuilder) invoke(poolIdx int, static bool, special bool) (ast.NodeID, error) {
	ref, err := r.pool.MethodRefAt(poolIdx)
	if err != nil {
		return ast.NoNode, err
	}
	desc, err := bytecode.ParseMethodDescriptor(ref.Descriptor)
	if err != nil {
		return ast.NoNode, err
	}
	args, err := r.popN(len(desc.Params))
	if err != nil {
		return ast.NoNode, err
	}
	argIDs := make([]ast.NodeID, len(args))
	for i, a := range args {
		argIDs[i] = a.node
	}

	var receiver ast.NodeID = ast.NoNode
	if !static {
		recv, err := r.pop()
		if err != nil {
			return ast.NoNode, err
		}
		receiver = recv.node
	}

	if special && ref.Name == "<init>" {
		// Constructor call: objectref is a reference to the same NodeID
		// `new` pushed (and `dup` copied), so finalizing it in place via
		// Replace updates every outstanding stack copy at once.
		pending := r.arena.Get(receiver)
		r.arena.Replace(receiver, ast.Node{
			Kind:          ast.KindObjectNew,
			TargetType:    pending.TargetType,
			Children:      argIDs,
			IsConstructor: true,
			Type:          pending.TargetType,
		})
		return ast.NoNode, nil
	}

	resultType := toASTType(desc.Return)
	node := r.newNode(ast.Node{
		Kind:        ast.KindMethodCall,
		Lhs:         receiver,
		TargetClass: ref.Class,
		MethodName:  ref.Name,
		Children:    argIDs,
		IsStatic:    static,
		Type:        resultType,
	})
	if desc.IsVoid {
		return node, nil
	}
	r.push(node, resultType)
	return ast.NoNode, nil
}

// invokeDynamic resolves the call-site's name_and_type (the bootstrap
// method itself is not modeled - its handle/args live in the
// BootstrapMethods attribute, which no package here decodes) and
// synthesizes a best-effort MethodCall against a synthetic receiver-less
// target, keeping decompilation progressing rather than aborting the
// method (§4.4's "must not fail" rule).
func (r *Rebuilder) invokeDynamic(poolIdx int) (ast.NodeID, error) {
	entry, err := r.pool.At(poolIdx)
	if err != nil {
		return ast.NoNode, err
	}
	nat, err := r.pool.NameAndTypeAt(entry.NameAndTypeIndex)
	if err != nil {
		return ast.NoNode, err
	}
	desc, err := bytecode.ParseMethodDescriptor(nat.Descriptor)
	if err != nil {
		return ast.NoNode, err
	}
	args, err := r.popN(desc.Arity())
	if err != nil {
		return ast.NoNode, err
	}
	argIDs := make([]ast.NodeID, len(args))
	for i, a := range args {
		argIDs[i] = a.node
	}
	resultType := toASTType(desc.Return)
	node := r.newNode(ast.Node{
		Kind:        ast.KindMethodCall,
		Lhs:         ast.NoNode,
		TargetClass: "<dynamic>",
		MethodName:  nat.Name,
		Children:    argIDs,
		IsStatic:    true,
		Type:        resultType,
	})
	if desc.IsVoid {
		return node, nil
	}
	r.push(node, resultType)
	return ast.NoNode, nil
}
