// Package emit implements the code generator: a recursive pretty-printer
// that turns a structured, optimized AST back into Java-shaped source text
// (or, in pseudocode mode, a looser untyped rendering of the same tree).
// Grounded on gvm/vm/vm.go's only "turn internal state into text" code -
// PrintCurrentState/PrintProgram/Instruction.String - as the template for a
// small set of per-variant formatting rules built directly on
// strings.Builder rather than a templating library.
package emit

import (
	"fmt"
	"strings"

	"jdec/ast"
)

// Style selects which surface syntax Print produces.
type Style int

const (
	Java       Style = iota // full Java-like source with declared types
	Pseudocode              // looser rendering, declared types elided
)

// Printer walks one method (or class) body and renders it to text.
type Printer struct {
	arena *ast.Arena
	opts  Options
	style Style
	buf   strings.Builder
	depth int
}

// New prepares a Printer over arena using opts and the given output style.
func New(arena *ast.Arena, opts Options, style Style) *Printer {
	return &Printer{arena: arena, opts: opts, style: style}
}

// Print renders the subtree rooted at id and returns the accumulated text.
// Safe to call once per Printer; construct a new Printer to render again.
func (p *Printer) Print(id ast.NodeID) string {
	p.writeStmt(id)
	return p.buf.String()
}

func (p *Printer) indent() string {
	return strings.Repeat(p.opts.indentUnit(), p.depth)
}

func (p *Printer) line(format string, args ...interface{}) {
	p.buf.WriteString(p.indent())
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// openBrace emits header followed by its opening brace, on the same line
// (same-line style) or on a line of its own (next-line style), honoring
// §4.8's BraceStyle option.
func (p *Printer) openBrace(header string) {
	if p.opts.BraceStyle == NextLine {
		p.line("%s", header)
		p.line("{")
	} else {
		p.line("%s {", header)
	}
}

func (p *Printer) closeBrace() {
	p.line("}")
}

func (p *Printer) block(id ast.NodeID) {
	p.depth++
	n := p.arena.Get(id)
	if n != nil && n.Kind == ast.KindBlock {
		for _, c := range n.Children {
			p.writeStmt(c)
		}
	} else if id != ast.NoNode {
		p.writeStmt(id)
	}
	p.depth--
}

// writeStmt renders one statement node, indented at the current depth.
func (p *Printer) writeStmt(id ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	n := p.arena.Get(id)
	switch n.Kind {
	case ast.KindBlock:
		for _, c := range n.Children {
			p.writeStmt(c)
		}

	case ast.KindVariableDecl:
		if n.Rhs != ast.NoNode {
			p.line("%s %s = %s;", p.typeName(n.Type), n.Name, p.expr(n.Rhs))
		} else {
			p.line("%s %s;", p.typeName(n.Type), n.Name)
		}

	case ast.KindAssignment:
		p.line("%s %s %s;", p.expr(n.Lhs), assignOp(n.Op), p.expr(n.Rhs))

	case ast.KindReturn:
		if n.Lhs == ast.NoNode {
			p.line("return;")
		} else {
			p.line("return %s;", p.expr(n.Lhs))
		}

	case ast.KindThrow:
		p.line("throw %s;", p.expr(n.Lhs))

	case ast.KindMonitorEnter:
		p.line("synchronized_enter(%s);", p.expr(n.Lhs))
	case ast.KindMonitorExit:
		p.line("synchronized_exit(%s);", p.expr(n.Lhs))

	case ast.KindIf:
		p.writeIf(n)

	case ast.KindWhile:
		p.openBrace(fmt.Sprintf("while (%s)", p.expr(n.Lhs)))
		p.block(n.Then)
		p.closeBrace()

	case ast.KindDoWhile:
		p.line("do {")
		p.block(n.Then)
		p.line("} while (%s);", p.expr(n.Lhs))

	case ast.KindFor:
		p.writeFor(n)

	case ast.KindSwitch:
		p.writeSwitch(n)

	case ast.KindSwitchCase:
		// rendered inline by writeSwitch

	case ast.KindTryCatch:
		p.writeTryCatch(n)

	case ast.KindCatchClause:
		// rendered inline by writeTryCatch

	case ast.KindGoto:
		p.line("goto %s;", n.Name)

	case ast.KindLabel:
		p.line("%s:", n.Name)

	case ast.KindMethodDecl:
		p.writeMethodDecl(n)

	case ast.KindClassDecl:
		p.writeClassDecl(n)

	case ast.KindFieldDecl:
		p.line("%s%s %s;", modifiersPrefix(n.Modifiers), p.typeName(n.Type), n.Name)

	default:
		// A bare expression reached statement position (e.g. a surviving
		// MethodCall the dead-code pass kept for its side effect).
		p.line("%s;", p.expr(id))
	}
}

func (p *Printer) writeIf(n *ast.Node) {
	p.openBrace(fmt.Sprintf("if (%s)", p.expr(n.Lhs)))
	p.block(n.Then)
	if n.Else != ast.NoNode {
		elseNode := p.arena.Get(n.Else)
		if elseNode.Kind == ast.KindIf {
			p.buf.WriteString(p.indent())
			p.buf.WriteString("} else ")
			p.writeChainedIf(elseNode)
			return
		}
		p.line("} else {")
		p.block(n.Else)
	}
	p.closeBrace()
}

// writeChainedIf renders "else if (...) { ... }" continuing the previous
// line instead of starting a fresh indented header.
func (p *Printer) writeChainedIf(n *ast.Node) {
	fmt.Fprintf(&p.buf, "if (%s) {\n", p.expr(n.Lhs))
	p.block(n.Then)
	if n.Else != ast.NoNode {
		elseNode := p.arena.Get(n.Else)
		if elseNode.Kind == ast.KindIf {
			p.buf.WriteString(p.indent())
			p.buf.WriteString("} else ")
			p.writeChainedIf(elseNode)
			return
		}
		p.line("} else {")
		p.block(n.Else)
	}
	p.closeBrace()
}

func (p *Printer) writeFor(n *ast.Node) {
	init := ""
	if n.ForInit != ast.NoNode {
		init = strings.TrimSuffix(strings.TrimSpace(p.inlineStmt(n.ForInit)), ";")
	}
	step := ""
	if n.ForStep != ast.NoNode {
		step = strings.TrimSuffix(strings.TrimSpace(p.inlineStmt(n.ForStep)), ";")
	}
	cond := ""
	if n.Lhs != ast.NoNode {
		cond = p.expr(n.Lhs)
	}
	p.openBrace(fmt.Sprintf("for (%s; %s; %s)", init, cond, step))
	p.block(n.Then)
	p.closeBrace()
}

// inlineStmt renders a single statement's text without its own indent/
// newline, for embedding into a for(...) header.
func (p *Printer) inlineStmt(id ast.NodeID) string {
	saved := p.buf
	p.buf = strings.Builder{}
	savedDepth := p.depth
	p.depth = 0
	p.writeStmt(id)
	out := p.buf.String()
	p.buf = saved
	p.depth = savedDepth
	return out
}

func (p *Printer) writeSwitch(n *ast.Node) {
	p.openBrace(fmt.Sprintf("switch (%s)", p.expr(n.Lhs)))
	p.depth++
	for _, c := range n.Children {
		cn := p.arena.Get(c)
		if len(cn.CaseValues) == 0 {
			p.line("default:")
		} else {
			for _, v := range cn.CaseValues {
				p.line("case %d:", v)
			}
		}
		p.depth++
		for _, s := range cn.Children {
			p.writeStmt(s)
		}
		p.depth--
	}
	p.depth--
	p.closeBrace()
}

func (p *Printer) writeTryCatch(n *ast.Node) {
	p.line("try {")
	p.block(n.Then)
	for _, c := range n.Children {
		cn := p.arena.Get(c)
		p.line("} catch (%s e%d) {", strings.Join(cn.CatchTypes, " | "), cn.CatchSlot)
		p.block(cn.CatchBody)
	}
	if n.Finally != ast.NoNode {
		p.line("} finally {")
		p.block(n.Finally)
	}
	p.closeBrace()
}

func (p *Printer) writeMethodDecl(n *ast.Node) {
	params := make([]string, len(n.Params))
	for i, prm := range n.Params {
		params[i] = fmt.Sprintf("%s %s", p.typeName(prm.Type), prm.Name)
	}
	header := fmt.Sprintf("%s%s %s(%s)", modifiersPrefix(n.Modifiers), p.typeName(n.Type), n.Name, strings.Join(params, ", "))
	p.openBrace(header)
	for _, c := range n.Children {
		p.writeStmt(c)
	}
	p.closeBrace()
}

func (p *Printer) writeClassDecl(n *ast.Node) {
	p.openBrace(fmt.Sprintf("%sclass %s", modifiersPrefix(n.Modifiers), n.Name))
	p.depth++
	for _, c := range n.Children {
		p.writeStmt(c)
		p.buf.WriteByte('\n')
	}
	p.depth--
	p.closeBrace()
}

func modifiersPrefix(mods []string) string {
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}

func assignOp(op string) string {
	if op == "" {
		return "="
	}
	return op
}
