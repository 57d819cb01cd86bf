// Package surfast defines the Abstract Syntax Tree for the surface
// scripting language, following the teacher's Node/Expr/Stmt interface
// split (TokenLiteral/String/Pos) but scoped to the indentation-based
// grammar subset spec.md transforms plus the handful of constructs
// (class bodies, for, try, with, destructuring, decorators) that must
// survive as Verbatim.
package surfast

import (
	"strings"

	"github.com/cwbudde/cpst/internal/surftoken"
)

// Kind tags every node with its concrete grammar production. The CPS
// Lowerer dispatches with Go type switches; Kind names the construct
// in diagnostics such as UnsupportedConstruct.
type Kind int

const (
	KindModule Kind = iota
	KindFunctionDef
	KindIf
	KindWhile
	KindFor
	KindReturn
	KindAssign
	KindBinOp
	KindBoolOp
	KindUnaryOp
	KindCompare
	KindCall
	KindAttribute
	KindSubscript
	KindName
	KindNum
	KindStr
	KindPrint
	KindExprStmt
	KindPass
	KindImport
	KindClassDef
	KindTry
	KindWith
	KindTupleAssign
)

func (k Kind) String() string {
	names := [...]string{
		"Module", "FunctionDef", "If", "While", "For", "Return", "Assign",
		"BinOp", "BoolOp", "UnaryOp", "Compare", "Call", "Attribute",
		"Subscript", "Name", "Num", "Str", "Print", "ExprStmt", "Pass",
		"Import", "ClassDef", "Try", "With", "TupleAssign",
	}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Kind() Kind
	Pos() surftoken.Position
	TokenLiteral() string
	String() string
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action in statement position.
type Stmt interface {
	Node
	stmtNode()
}

type base struct {
	kind Kind
	pos  surftoken.Position
	lit  string
}

func (b base) Kind() Kind                    { return b.kind }
func (b base) Pos() surftoken.Position       { return b.pos }
func (b base) TokenLiteral() string          { return b.lit }

// Module is the root of a parsed file.
type Module struct {
	base
	Body []Stmt
}

func NewModule(body []Stmt) *Module {
	return &Module{base: base{kind: KindModule, lit: "<module>"}, Body: body}
}
func (m *Module) stmtNode() {}
func (m *Module) String() string {
	var sb strings.Builder
	for _, s := range m.Body {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Decorator is a bare `@name` line preceding a FunctionDef.
type Decorator struct {
	Name string
	Pos_ surftoken.Position
}

// FunctionDef is a `def name(formals): <body>` statement.
type FunctionDef struct {
	base
	Name       string
	Formals    []string
	Decorators []Decorator
	Body       []Stmt
}

func NewFunctionDef(pos surftoken.Position, name string, formals []string, decs []Decorator, body []Stmt) *FunctionDef {
	return &FunctionDef{base: base{kind: KindFunctionDef, pos: pos, lit: "def"}, Name: name, Formals: formals, Decorators: decs, Body: body}
}
func (f *FunctionDef) stmtNode() {}
func (f *FunctionDef) String() string {
	return "def " + f.Name + "(" + strings.Join(f.Formals, ", ") + "):"
}

// HasDecorator reports whether name appears in f's decorator list.
func (f *FunctionDef) HasDecorator(name string) bool {
	for _, d := range f.Decorators {
		if d.Name == name {
			return true
		}
	}
	return false
}

// If is an `if test: body [else: orelse]` statement. Body/Orelse are
// statement lists; Orelse may be nil.
type If struct {
	base
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

func NewIf(pos surftoken.Position, test Expr, body, orelse []Stmt) *If {
	return &If{base: base{kind: KindIf, pos: pos, lit: "if"}, Test: test, Body: body, Orelse: orelse}
}
func (n *If) stmtNode()      {}
func (n *If) String() string { return "if " + n.Test.String() + ":" }

// While is a `while test: body [else: orelse]` statement.
type While struct {
	base
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

func NewWhile(pos surftoken.Position, test Expr, body, orelse []Stmt) *While {
	return &While{base: base{kind: KindWhile, pos: pos, lit: "while"}, Test: test, Body: body, Orelse: orelse}
}
func (n *While) stmtNode()      {}
func (n *While) String() string { return "while " + n.Test.String() + ":" }

// For is a `for target in iter: body [else: orelse]` statement. Never
// lowered: wrapped Verbatim outside a CPS function, and reported as an
// UnsupportedConstruct inside one.
type For struct {
	base
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
}

func NewFor(pos surftoken.Position, target, iter Expr, body, orelse []Stmt) *For {
	return &For{base: base{kind: KindFor, pos: pos, lit: "for"}, Target: target, Iter: iter, Body: body, Orelse: orelse}
}
func (n *For) stmtNode()      {}
func (n *For) String() string { return "for " + n.Target.String() + " in " + n.Iter.String() + ":" }

// Return is a `return value` statement.
type Return struct {
	base
	Value Expr
}

func NewReturn(pos surftoken.Position, value Expr) *Return {
	return &Return{base: base{kind: KindReturn, pos: pos, lit: "return"}, Value: value}
}
func (n *Return) stmtNode()      {}
func (n *Return) String() string { return "return " + n.Value.String() }

// Assign is a `target = value` statement with a single target, which
// must be a Name or an Attribute chain rooted at a Name.
type Assign struct {
	base
	Target Expr
	Value  Expr
}

func NewAssign(pos surftoken.Position, target, value Expr) *Assign {
	return &Assign{base: base{kind: KindAssign, pos: pos, lit: "="}, Target: target, Value: value}
}
func (n *Assign) stmtNode()      {}
func (n *Assign) String() string { return n.Target.String() + " = " + n.Value.String() }

// TupleAssign is `a, b = ...` or any other multi-target/destructuring
// assignment. Never lowered: Verbatim outside a CPS function, an
// UnsupportedConstruct inside one.
type TupleAssign struct {
	base
	Targets []Expr
	Value   Expr
}

func NewTupleAssign(pos surftoken.Position, targets []Expr, value Expr) *TupleAssign {
	return &TupleAssign{base: base{kind: KindTupleAssign, pos: pos, lit: "="}, Targets: targets, Value: value}
}
func (n *TupleAssign) stmtNode()      {}
func (n *TupleAssign) String() string { return "<tuple-assign>" }

// BinOp is a binary arithmetic/bitwise operator expression.
type BinOp struct {
	base
	Left, Right Expr
	Op          surftoken.Kind
}

func NewBinOp(pos surftoken.Position, left, right Expr, op surftoken.Kind) *BinOp {
	return &BinOp{base: base{kind: KindBinOp, pos: pos, lit: op.String()}, Left: left, Right: right, Op: op}
}
func (n *BinOp) exprNode()      {}
func (n *BinOp) String() string { return n.Left.String() + " " + n.Op.String() + " " + n.Right.String() }

// BoolOp is a chained `and`/`or` expression over 2+ operands.
type BoolOp struct {
	base
	Values []Expr
	Op     surftoken.Kind // AND or OR
}

func NewBoolOp(pos surftoken.Position, values []Expr, op surftoken.Kind) *BoolOp {
	return &BoolOp{base: base{kind: KindBoolOp, pos: pos, lit: op.String()}, Values: values, Op: op}
}
func (n *BoolOp) exprNode() {}
func (n *BoolOp) String() string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = v.String()
	}
	return strings.Join(parts, " "+n.Op.String()+" ")
}

// UnaryOp is `not x` / `-x`. The lowerer has no rule for it: any
// UnaryOp reached while lowering is reported as an UnsupportedConstruct,
// whatever its operator or operand (there is no IR node for it).
type UnaryOp struct {
	base
	Operand Expr
	Op      surftoken.Kind
}

func NewUnaryOp(pos surftoken.Position, operand Expr, op surftoken.Kind) *UnaryOp {
	return &UnaryOp{base: base{kind: KindUnaryOp, pos: pos, lit: op.String()}, Operand: operand, Op: op}
}
func (n *UnaryOp) exprNode()      {}
func (n *UnaryOp) String() string { return n.Op.String() + " " + n.Operand.String() }

// Compare is a chained comparison `a < b <= c`.
type Compare struct {
	base
	Operands []Expr
	Ops      []surftoken.Kind
}

func NewCompare(pos surftoken.Position, operands []Expr, ops []surftoken.Kind) *Compare {
	return &Compare{base: base{kind: KindCompare, pos: pos, lit: "compare"}, Operands: operands, Ops: ops}
}
func (n *Compare) exprNode() {}
func (n *Compare) String() string {
	var sb strings.Builder
	sb.WriteString(n.Operands[0].String())
	for i, op := range n.Ops {
		sb.WriteString(" " + op.String() + " " + n.Operands[i+1].String())
	}
	return sb.String()
}

// Call is `fun(args...)`.
type Call struct {
	base
	Fun  Expr
	Args []Expr
}

func NewCall(pos surftoken.Position, fun Expr, args []Expr) *Call {
	return &Call{base: base{kind: KindCall, pos: pos, lit: "call"}, Fun: fun, Args: args}
}
func (n *Call) exprNode() {}
func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Fun.String() + "(" + strings.Join(parts, ", ") + ")"
}

// Attribute is `obj.name`.
type Attribute struct {
	base
	Value Expr
	Name  string
}

func NewAttribute(pos surftoken.Position, value Expr, name string) *Attribute {
	return &Attribute{base: base{kind: KindAttribute, pos: pos, lit: name}, Value: value, Name: name}
}
func (n *Attribute) exprNode()      {}
func (n *Attribute) String() string { return n.Value.String() + "." + n.Name }

// Subscript is `obj[index]`. Not part of the transformed grammar
// subset; appearing inside a CPS-transformed function is fatal.
type Subscript struct {
	base
	Value Expr
	Index Expr
}

func NewSubscript(pos surftoken.Position, value, index Expr) *Subscript {
	return &Subscript{base: base{kind: KindSubscript, pos: pos, lit: "subscript"}, Value: value, Index: index}
}
func (n *Subscript) exprNode()      {}
func (n *Subscript) String() string { return n.Value.String() + "[" + n.Index.String() + "]" }

// Name is a bare identifier reference.
type Name struct {
	base
	Id string
}

func NewName(pos surftoken.Position, id string) *Name {
	return &Name{base: base{kind: KindName, pos: pos, lit: id}, Id: id}
}
func (n *Name) exprNode()      {}
func (n *Name) String() string { return n.Id }

// Num is a numeric literal, stored as its exact source text so integer
// and float formatting is preserved on round-trip.
type Num struct {
	base
	Literal string
}

func NewNum(pos surftoken.Position, literal string) *Num {
	return &Num{base: base{kind: KindNum, pos: pos, lit: literal}, Literal: literal}
}
func (n *Num) exprNode()      {}
func (n *Num) String() string { return n.Literal }

// Str is a string literal, not part of the core grammar subset.
type Str struct {
	base
	Value string
}

func NewStr(pos surftoken.Position, value string) *Str {
	return &Str{base: base{kind: KindStr, pos: pos, lit: value}, Value: value}
}
func (n *Str) exprNode()      {}
func (n *Str) String() string { return "\"" + n.Value + "\"" }

// Print is a `print(args...)` statement.
type Print struct {
	base
	Values []Expr
}

func NewPrint(pos surftoken.Position, values []Expr) *Print {
	return &Print{base: base{kind: KindPrint, pos: pos, lit: "print"}, Values: values}
}
func (n *Print) stmtNode() {}
func (n *Print) String() string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = v.String()
	}
	return "print(" + strings.Join(parts, ", ") + ")"
}

// ExprStmt is an expression evaluated for its side effect and discarded.
type ExprStmt struct {
	base
	Value Expr
}

func NewExprStmt(pos surftoken.Position, value Expr) *ExprStmt {
	return &ExprStmt{base: base{kind: KindExprStmt, pos: pos, lit: "exprstmt"}, Value: value}
}
func (n *ExprStmt) stmtNode()      {}
func (n *ExprStmt) String() string { return n.Value.String() }

// Pass is the `pass` no-op statement.
type Pass struct{ base }

func NewPass(pos surftoken.Position) *Pass {
	return &Pass{base: base{kind: KindPass, pos: pos, lit: "pass"}}
}
func (n *Pass) stmtNode()      {}
func (n *Pass) String() string { return "pass" }

// Import is an `import name` or `from pkg import name` statement.
// Always Verbatim.
type Import struct {
	base
	Raw string
}

func NewImport(pos surftoken.Position, raw string) *Import {
	return &Import{base: base{kind: KindImport, pos: pos, lit: "import"}, Raw: raw}
}
func (n *Import) stmtNode()      {}
func (n *Import) String() string { return n.Raw }

// ClassDef is a `class Name(bases): body` statement. Always Verbatim.
type ClassDef struct {
	base
	Name  string
	Bases []string
	Body  []Stmt
}

func NewClassDef(pos surftoken.Position, name string, bases []string, body []Stmt) *ClassDef {
	return &ClassDef{base: base{kind: KindClassDef, pos: pos, lit: "class"}, Name: name, Bases: bases, Body: body}
}
func (n *ClassDef) stmtNode()      {}
func (n *ClassDef) String() string { return "class " + n.Name + ":" }

// TryHandler is one `except [Type [as name]]:` clause.
type TryHandler struct {
	ExceptionType string
	Name          string
	Body          []Stmt
}

// Try is a `try/except/finally` statement. Verbatim outside a CPS
// function, an UnsupportedConstruct inside one.
type Try struct {
	base
	Body     []Stmt
	Handlers []TryHandler
	Orelse   []Stmt
	Finally  []Stmt
}

func NewTry(pos surftoken.Position, body []Stmt, handlers []TryHandler, orelse, finally []Stmt) *Try {
	return &Try{base: base{kind: KindTry, pos: pos, lit: "try"}, Body: body, Handlers: handlers, Orelse: orelse, Finally: finally}
}
func (n *Try) stmtNode()      {}
func (n *Try) String() string { return "try:" }

// With is a `with expr as name: body` statement. Verbatim outside a
// CPS function, an UnsupportedConstruct inside one.
type With struct {
	base
	Context Expr
	As      string
	Body    []Stmt
}

func NewWith(pos surftoken.Position, context Expr, as string, body []Stmt) *With {
	return &With{base: base{kind: KindWith, pos: pos, lit: "with"}, Context: context, As: as, Body: body}
}
func (n *With) stmtNode()      {}
func (n *With) String() string { return "with " + n.Context.String() + ":" }
