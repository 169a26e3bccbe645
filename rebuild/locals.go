package rebuild

import (
	"fmt"

	"jdec/ast"
)

// localSlots tracks, per local-variable slot, the Identifier node that
// names it and how many times it has been read - the "usage counts are
// collected" half of §4.7's variable-usage analysis (Open Question #2: the
// substitution itself is never performed here or in optimize).
type localSlots struct {
	arena   *ast.Arena
	decl    []ast.NodeID // Identifier node per slot, lazily created
	useDecl []*ast.Node  // cached pointer to each slot's VariableDecl node
}

func newLocalSlots(arena *ast.Arena, maxLocals int) *localSlots {
	return &localSlots{
		arena:   arena,
		decl:    make([]ast.NodeID, maxLocals),
		useDecl: make([]*ast.Node, maxLocals),
	}
}

func (l *localSlots) name(slot int, t ast.Type) string {
	switch t.Kind {
	case ast.TypeReference, ast.TypeArray:
		return fmt.Sprintf("local%d", slot)
	default:
		return fmt.Sprintf("%s%d", shortPrefix(t), slot)
	}
}

func shortPrefix(t ast.Type) string {
	switch t.Kind {
	case ast.TypeInt:
		return "i"
	case ast.TypeLong:
		return "l"
	case ast.TypeFloat:
		return "f"
	case ast.TypeDouble:
		return "d"
	case ast.TypeBoolean:
		return "z"
	default:
		return "var"
	}
}

// identifierFor returns the Identifier NodeID for slot, creating its
// backing VariableDecl on first use so every later load/store shares one
// declaration.
func (l *localSlots) identifierFor(slot int, t ast.Type) ast.NodeID {
	if l.decl[slot] != ast.NoNode {
		id := l.arena.Get(l.decl[slot])
		id.Type = t
		return l.decl[slot]
	}
	id := l.arena.New(ast.Node{
		Kind: ast.KindIdentifier,
		Name: l.name(slot, t),
		Type: t,
		Slot: slot,
	})
	l.decl[slot] = id
	return id
}

// recordUse increments the use count of the VariableDecl backing slot, if
// one has been emitted, for the decl-analysis annotation §4.7.5 promises.
func (l *localSlots) recordUse(slot int) {
	if slot < 0 || slot >= len(l.useDecl) || l.useDecl[slot] == nil {
		return
	}
	l.useDecl[slot].UseCount++
}

// declareOnFirstStore emits a VariableDecl statement the first time a slot
// is stored to, returning its NodeID (nil NodeID if already declared).
func (l *localSlots) declareOnFirstStore(slot int, t ast.Type, initializer ast.NodeID) ast.NodeID {
	if l.useDecl[slot] != nil {
		return ast.NoNode
	}
	id := l.identifierFor(slot, t)
	ident := l.arena.Get(id)
	declID := l.arena.New(ast.Node{
		Kind: ast.KindVariableDecl,
		Name: ident.Name,
		Type: t,
		Slot: slot,
		Rhs:  initializer,
	})
	l.useDecl[slot] = l.arena.Get(declID)
	return declID
}
