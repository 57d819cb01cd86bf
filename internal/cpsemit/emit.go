// Package cpsemit is the Emitter (spec.md §4.4): it implements
// cpsir.Writer with 4-space indentation, in the style of
// original_source/transform.py's writer class and the teacher's own
// line-buffered code generators, and drives a lowered module's
// continuation chain to source text.
package cpsemit

import (
	"fmt"
	"strings"

	"github.com/cwbudde/cpst/internal/cpsir"
)

const indentUnit = "    "

// Writer accumulates emitted lines at a tracked indentation level.
type Writer struct {
	sb    strings.Builder
	level int
}

// New returns an empty Writer.
func New() *Writer { return &Writer{} }

// Line writes one indented, newline-terminated line.
func (w *Writer) Line(format string, args ...any) {
	w.sb.WriteString(strings.Repeat(indentUnit, w.level))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteString("\n")
}

// Indent increases the indentation level by one.
func (w *Writer) Indent() { w.level++ }

// Dedent decreases the indentation level by one.
func (w *Writer) Dedent() { w.level-- }

// String returns everything written so far.
func (w *Writer) String() string { return w.sb.String() }

// Emit renders a lowered, scope-analyzed module to surface-language
// source text.
func Emit(m *cpsir.Module) string {
	w := New()
	m.EmitSelf(w)
	return w.String()
}
