// Package cpserr formats transformer diagnostics with source context,
// line/column information, and a caret pointing at the offending text —
// the same presentation the teacher's internal/errors package uses for
// DWScript compiler errors.
package cpserr

import (
	"fmt"
	"strings"

	"github.com/cwbudde/cpst/internal/surftoken"
)

// Kind classifies a Diagnostic into one of the four fatal error
// categories named in spec.md §7.
type Kind int

const (
	// ParseError: the surface source is not valid.
	ParseError Kind = iota
	// UnsupportedConstruct: the lowerer has no handler for an AST kind
	// appearing inside a CPS-transformed region.
	UnsupportedConstruct
	// StructuralAssertionFailure: an invariant of the IR was violated
	// (multiple assignment targets, a non-Name attribute root, ...).
	StructuralAssertionFailure
	// IOError: a file could not be opened, read, or written.
	IOError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case UnsupportedConstruct:
		return "UnsupportedConstruct"
	case StructuralAssertionFailure:
		return "StructuralAssertionFailure"
	case IOError:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// Diagnostic is a single fatal error, aborting emission for the file it
// refers to (spec.md §7: "the first fatal error aborts emission for
// that file so partial output is not written").
type Diagnostic struct {
	Kind    Kind
	File    string
	Pos     surftoken.Position
	Message string
	// Construct names the offending AST kind, when Kind is
	// UnsupportedConstruct or StructuralAssertionFailure.
	Construct string
	Source    string
}

func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with a source-context line and caret,
// mirroring CompilerError.Format in the teacher repo. If color is true,
// the caret is wrapped in ANSI red-bold escapes.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "%s: %s in %s:%d:%d\n", d.Kind, d.Message, d.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: %s at %d:%d\n", d.Kind, d.Message, d.Pos.Line, d.Pos.Column)
	}

	if line := d.sourceLine(d.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+d.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}

	if d.Construct != "" {
		fmt.Fprintf(&sb, "\n(construct: %s)", d.Construct)
	}
	return sb.String()
}

func (d *Diagnostic) sourceLine(line int) string {
	if d.Source == "" {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// NewUnsupported builds an UnsupportedConstruct diagnostic naming the
// offending kind, as required by spec.md §7.
func NewUnsupported(file, source, construct string, pos surftoken.Position) *Diagnostic {
	return &Diagnostic{
		Kind:      UnsupportedConstruct,
		File:      file,
		Pos:       pos,
		Source:    source,
		Construct: construct,
		Message:   fmt.Sprintf("unsupported construct %q in a CPS-transformed region", construct),
	}
}

// NewStructural builds a StructuralAssertionFailure diagnostic.
func NewStructural(file, source, construct, reason string, pos surftoken.Position) *Diagnostic {
	return &Diagnostic{
		Kind:      StructuralAssertionFailure,
		File:      file,
		Pos:       pos,
		Source:    source,
		Construct: construct,
		Message:   reason,
	}
}

// NewParse builds a ParseError diagnostic.
func NewParse(file, source, message string, pos surftoken.Position) *Diagnostic {
	return &Diagnostic{
		Kind:    ParseError,
		File:    file,
		Pos:     pos,
		Source:  source,
		Message: message,
	}
}

// NewIO builds an IOError diagnostic. IOError has no useful source
// position, so Pos is left zero.
func NewIO(file, message string) *Diagnostic {
	return &Diagnostic{
		Kind:    IOError,
		File:    file,
		Message: message,
	}
}
