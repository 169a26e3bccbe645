// Package decompiler implements the orchestrator that strings together
// every pipeline stage (§5): ClassReader -> BytecodeParser -> CFG builder ->
// TypeInferenceEngine -> ExpressionRebuilder -> ControlStructureAnalyzer ->
// ASTOptimizer -> CodeGenerator.
//
// Resource lifetimes mirror gvm/vm/vm.go's NewVirtualMachine constructor:
// a Decompiler owns everything it needs for one run (its arena, its
// logger) and nothing outlives it implicitly. There is no register-based
// second ISA here (spec.md §9's open question) - acknowledged and left
// unimplemented, same as upstream.
package decompiler

import (
	"time"

	"jdec/ast"
	"jdec/classfile"
	"jdec/emit"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Decompiler runs the full pipeline over one class file at a time. Each
// call to DecompileClass is independent and safe to run concurrently with
// another Decompiler's call against a different class, per §5's "no
// cross-thread synchronization required in the core" - the parallelism
// itself belongs to the external CLI collaborator, not this package.
type Decompiler struct {
	log *logrus.Logger
	opt Options
}

// New prepares a Decompiler. log must not be nil; use internal/jlog.Discard
// for callers that don't want log output.
func New(log *logrus.Logger, opt Options) *Decompiler {
	return &Decompiler{log: log, opt: opt}
}

// Result is the per-class outcome, mirroring §7's "the class result always
// surfaces" list: produced source text, the AST root, aggregate counters,
// and the diagnostic list.
type Result struct {
	Source      string
	Arena       *ast.Arena
	ClassRoot   ast.NodeID
	Stats       Stats
	Diagnostics []Diagnostic
}

// DecompileClass runs the whole pipeline over one class file's raw bytes.
// Container-level errors (bad magic, unsupported version, truncated input,
// unresolved constant-pool reference) abort entirely and are returned as-is,
// per §7's policy; per-method errors never reach this return value; they
// degrade that single method and are recorded in Result.Diagnostics.
func (d *Decompiler) DecompileClass(data []byte) (*Result, error) {
	start := time.Now()

	class, err := classfile.ReadClass(data)
	if err != nil {
		d.log.Errorf("container-level abort: %s", err)
		return nil, errors.Wrap(err, "reading class file")
	}
	d.log.Debugf("read class %s (%d methods)", class.ThisClass, len(class.Methods))

	arena := ast.NewArena()
	res := &Result{Arena: arena}

	var methodNodes []ast.NodeID
	for i := range class.Methods {
		m := &class.Methods[i]
		d.log.Debugf("decompiling method %s%s", m.Name, m.Descriptor)
		node, diags := d.decompileMethod(arena, class, m, &res.Stats)
		res.Diagnostics = append(res.Diagnostics, diags...)
		if node != ast.NoNode {
			methodNodes = append(methodNodes, node)
		}
	}

	classRoot := arena.New(ast.Node{
		Kind:      ast.KindClassDecl,
		Name:      class.ThisClass,
		Modifiers: accessModifiers(class.AccessFlags),
		Children:  methodNodes,
	})
	res.ClassRoot = classRoot
	res.Stats.WallTime = time.Since(start)

	style := emit.Java
	if d.opt.Format == Pseudocode {
		style = emit.Pseudocode
	}
	if d.opt.Format == JSONAST {
		out, err := emit.DumpJSON(arena, classRoot)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling json-ast output")
		}
		res.Source = string(out)
		return res, nil
	}
	printer := emit.New(arena, d.opt.CodeGen, style)
	res.Source = printer.Print(classRoot)
	return res, nil
}

func accessModifiers(f classfile.AccessFlags) []string {
	var mods []string
	if f.Has(classfile.AccPublic) {
		mods = append(mods, "public")
	}
	if f.Has(classfile.AccFinal) {
		mods = append(mods, "final")
	}
	if f.Has(classfile.AccAbstract) {
		mods = append(mods, "abstract")
	}
	return mods
}
