// Package surfprint is the verbatim unparser consumed by the CPS
// Emitter's Verbatim node (spec.md §6): given an untransformed AST
// subtree, it produces syntactically valid surface source. It never
// sees CPS IR — only surfast nodes — and never reformats transformed
// code, matching spec.md's "the transform is textual" scope note.
package surfprint

import (
	"fmt"
	"strings"

	"github.com/cwbudde/cpst/internal/surfast"
)

const indentUnit = "    "

// Printer renders surfast nodes back to source text with 4-space
// indentation, mirroring the Emitter's writer (spec.md §4.4).
type Printer struct {
	sb    strings.Builder
	level int
}

// New returns a ready-to-use Printer.
func New() *Printer {
	return &Printer{}
}

func (p *Printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat(indentUnit, p.level))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteString("\n")
}

func (p *Printer) indent() { p.level++ }
func (p *Printer) dedent() { p.level-- }

// PrintModule renders an entire module.
func (p *Printer) PrintModule(m *surfast.Module) string {
	p.sb.Reset()
	p.level = 0
	p.printBody(m.Body)
	return p.sb.String()
}

// PrintStmt renders a single statement (and any nested block) starting
// at the printer's current indentation level. Used by the Emitter to
// splice a Verbatim subtree into otherwise-transformed output.
func (p *Printer) PrintStmt(s surfast.Stmt) string {
	p.sb.Reset()
	p.level = 0
	p.printStmt(s)
	return p.sb.String()
}

func (p *Printer) printBody(body []surfast.Stmt) {
	if len(body) == 0 {
		p.line("pass")
		return
	}
	for _, s := range body {
		p.printStmt(s)
	}
}

func (p *Printer) printStmt(s surfast.Stmt) {
	switch n := s.(type) {
	case *surfast.FunctionDef:
		for _, d := range n.Decorators {
			p.line("@%s", d.Name)
		}
		p.line("def %s(%s):", n.Name, strings.Join(n.Formals, ", "))
		p.indent()
		p.printBody(n.Body)
		p.dedent()
	case *surfast.If:
		p.line("if %s:", exprString(n.Test))
		p.indent()
		p.printBody(n.Body)
		p.dedent()
		if n.Orelse != nil {
			p.line("else:")
			p.indent()
			p.printBody(n.Orelse)
			p.dedent()
		}
	case *surfast.While:
		p.line("while %s:", exprString(n.Test))
		p.indent()
		p.printBody(n.Body)
		p.dedent()
		if n.Orelse != nil {
			p.line("else:")
			p.indent()
			p.printBody(n.Orelse)
			p.dedent()
		}
	case *surfast.For:
		p.line("for %s in %s:", exprString(n.Target), exprString(n.Iter))
		p.indent()
		p.printBody(n.Body)
		p.dedent()
		if n.Orelse != nil {
			p.line("else:")
			p.indent()
			p.printBody(n.Orelse)
			p.dedent()
		}
	case *surfast.Return:
		if n.Value != nil {
			p.line("return %s", exprString(n.Value))
		} else {
			p.line("return")
		}
	case *surfast.Assign:
		p.line("%s = %s", exprString(n.Target), exprString(n.Value))
	case *surfast.TupleAssign:
		parts := make([]string, len(n.Targets))
		for i, t := range n.Targets {
			parts[i] = exprString(t)
		}
		p.line("%s = %s", strings.Join(parts, ", "), exprString(n.Value))
	case *surfast.Print:
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = exprString(v)
		}
		p.line("print(%s)", strings.Join(parts, ", "))
	case *surfast.ExprStmt:
		p.line("%s", exprString(n.Value))
	case *surfast.Pass:
		p.line("pass")
	case *surfast.Import:
		p.line("%s", n.Raw)
	case *surfast.ClassDef:
		if len(n.Bases) > 0 {
			p.line("class %s(%s):", n.Name, strings.Join(n.Bases, ", "))
		} else {
			p.line("class %s:", n.Name)
		}
		p.indent()
		p.printBody(n.Body)
		p.dedent()
	case *surfast.Try:
		p.line("try:")
		p.indent()
		p.printBody(n.Body)
		p.dedent()
		for _, h := range n.Handlers {
			switch {
			case h.ExceptionType == "":
				p.line("except:")
			case h.Name == "":
				p.line("except %s:", h.ExceptionType)
			default:
				p.line("except %s as %s:", h.ExceptionType, h.Name)
			}
			p.indent()
			p.printBody(h.Body)
			p.dedent()
		}
		if n.Orelse != nil {
			p.line("else:")
			p.indent()
			p.printBody(n.Orelse)
			p.dedent()
		}
		if n.Finally != nil {
			p.line("finally:")
			p.indent()
			p.printBody(n.Finally)
			p.dedent()
		}
	case *surfast.With:
		if n.As != "" {
			p.line("with %s as %s:", exprString(n.Context), n.As)
		} else {
			p.line("with %s:", exprString(n.Context))
		}
		p.indent()
		p.printBody(n.Body)
		p.dedent()
	default:
		p.line("%s", s.String())
	}
}

// exprString renders an expression using each node's own String(), which
// is already source-faithful for every surfast.Expr kind.
func exprString(e surfast.Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}
