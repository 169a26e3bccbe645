package decompiler

import (
	"jdec/ast"
	"jdec/bytecode"
	"jdec/cfg"
	"jdec/classfile"
	"jdec/optimize"
	"jdec/rebuild"
	"jdec/structure"
	"jdec/typeinfer"
)

// decompileMethod runs one method through the full per-method pipeline,
// degrading to a placeholder declaration (body omitted) plus a Diagnostic
// on any bytecode/rebuild failure, per §7's "the method is emitted in a
// degraded form" policy. It never returns an error: a method-scoped failure
// is reported, not propagated, so one bad method can never abort the class.
func (d *Decompiler) decompileMethod(arena *ast.Arena, class *classfile.Class, m *classfile.Method, stats *Stats) (ast.NodeID, []Diagnostic) {
	desc, err := bytecode.ParseMethodDescriptor(m.Descriptor)
	if err != nil {
		stats.recordFailed()
		d.log.Warnf("%s: %s", m.Name, err)
		return placeholderMethod(arena, m, nil, ast.Type{}), []Diagnostic{
			newDiagnostic(Warn, m.Name, -1, "malformed descriptor: %s", err),
		}
	}
	params, paramSlots, slotTypes := methodSignature(desc, m.AccessFlags.Has(classfile.AccStatic))
	if !m.AccessFlags.Has(classfile.AccStatic) {
		slotTypes[0] = ast.Reference(class.ThisClass)
	}

	if m.IsAbstractOrNative() {
		stats.recordSkipped()
		return placeholderMethod(arena, m, params, fieldTypeToAST(desc.Return)), nil
	}

	instructions, err := bytecode.NewParser(m.Code.Bytecode).ParseAll()
	if err != nil {
		stats.recordFailed()
		d.log.Warnf("%s: %s", m.Name, err)
		return placeholderMethod(arena, m, params, fieldTypeToAST(desc.Return)), []Diagnostic{
			newDiagnostic(Warn, m.Name, -1, "bytecode parse error: %s", err),
		}
	}

	graph, err := cfg.Build(instructions, m.Code.ExceptionTable)
	if err != nil {
		stats.recordFailed()
		d.log.Warnf("%s: %s", m.Name, err)
		return placeholderMethod(arena, m, params, fieldTypeToAST(desc.Return)), []Diagnostic{
			newDiagnostic(Warn, m.Name, -1, "control-flow graph error: %s", err),
		}
	}

	engine := typeinfer.NewEngine(graph, m.Code.MaxLocals, slotTypes)
	engine.Run()
	var typeDiags []Diagnostic
	for bi := range graph.Blocks {
		id := cfg.BlockID(bi)
		env := engine.EntryEnv(id)
		for slot, t := range env {
			if t.Kind == ast.TypeConflict {
				typeDiags = append(typeDiags, newDiagnostic(Info, m.Name, graph.Blocks[bi].StartPC,
					"local slot %d has conflicting types at block entry", slot))
			}
		}
	}

	r := rebuild.NewRebuilder(arena, class.ConstantPool, m.Code.MaxLocals)
	if !m.AccessFlags.Has(classfile.AccStatic) {
		r.SeedParam(0, slotTypes[0])
	}
	for i, p := range params {
		r.SeedParam(paramSlots[i], p.Type)
	}
	if err := r.RebuildMethod(graph); err != nil {
		stats.recordFailed()
		d.log.Warnf("%s: %s", m.Name, err)
		return placeholderMethod(arena, m, params, fieldTypeToAST(desc.Return)), []Diagnostic{
			newDiagnostic(Warn, m.Name, -1, "expression rebuild error: %s", err),
		}
	}

	an := structure.New(arena, graph, class.ConstantPool, r.Statements, r.Conditions, r.SwitchSelectors)
	body := an.Structure()

	bodyBlock := arena.New(ast.Node{Kind: ast.KindBlock, Children: body})
	rounds := 0
	if !d.opt.NoOptimize {
		opt := optimize.New(arena)
		rounds = opt.Run(bodyBlock)
		for _, note := range opt.Diagnostics {
			d.log.Debugf("%s: %s", m.Name, note)
		}
	}

	methodNode := arena.New(ast.Node{
		Kind:      ast.KindMethodDecl,
		Name:      m.Name,
		Type:      fieldTypeToAST(desc.Return),
		Modifiers: accessModifiers(m.AccessFlags),
		Params:    params,
		Children:  []ast.NodeID{bodyBlock},
	})

	stats.recordSucceeded(len(instructions), countStructures(arena, bodyBlock), len(body), rounds)
	return methodNode, typeDiags
}

func placeholderMethod(arena *ast.Arena, m *classfile.Method, params []ast.Param, ret ast.Type) ast.NodeID {
	return arena.New(ast.Node{
		Kind:      ast.KindMethodDecl,
		Name:      m.Name,
		Type:      ret,
		Modifiers: accessModifiers(m.AccessFlags),
		Params:    params,
	})
}

// countStructures counts the control-structure nodes (If/While/DoWhile/For/
// Switch/TryCatch) the structuring pass produced, for Stats.StructuresIdentified.
func countStructures(arena *ast.Arena, root ast.NodeID) int {
	n := 0
	arena.Walk(root, func(id ast.NodeID) {
		switch arena.Get(id).Kind {
		case ast.KindIf, ast.KindWhile, ast.KindDoWhile, ast.KindFor, ast.KindSwitch, ast.KindTryCatch:
			n++
		}
	})
	return n
}
